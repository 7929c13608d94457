package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		APIKey:            "test-key",
		BaseURL:           srv.URL + "/",
		Timeout:           2 * time.Second,
		RequestsPerSecond: 100,
	})
	require.NoError(t, err)
	return client, srv
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://example.com"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestClient_SearchNear(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/nearbysearch/json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "37.5,127.01", q.Get("location"))
		assert.Equal(t, "5000", q.Get("radius"))
		assert.Equal(t, "cafe", q.Get("type"))
		assert.Equal(t, "test-key", q.Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [
				{"place_id": "p1", "name": "Bean There", "vicinity": "1 Main St",
				 "geometry": {"location": {"lat": 37.51, "lng": 127.02}},
				 "photos": [{"photo_reference": "ref1", "width": 400, "height": 300}]}
			]
		}`))
	})

	results, err := client.SearchNear(context.Background(), 37.5, 127.01, 5000)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].PlaceID)
	assert.Equal(t, "1 Main St", results[0].Address())
	assert.Equal(t, 37.51, results[0].Geometry.Location.Lat)
	require.Len(t, results[0].Photos, 1)
	assert.Equal(t, "ref1", results[0].Photos[0].PhotoReference)
}

func TestClient_SearchNear_ZeroResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	results, err := client.SearchNear(context.Background(), 0, 0, 1000)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClient_SearchNear_ProviderStatusError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "bad key"}`))
	})

	_, err := client.SearchNear(context.Background(), 0, 0, 1000)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestClient_SearchNear_HTTPErrorNotRetried(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.SearchNear(context.Background(), 0, 0, 1000)
	assert.ErrorIs(t, err, ErrUpstream)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestClient_SearchByText(t *testing.T) {
	tests := []struct {
		name         string
		lat, lng     *float64
		wantLocation string
		wantRadius   string
	}{
		{name: "Global search", wantLocation: "", wantRadius: ""},
		{name: "Biased search", lat: ptr(1.5), lng: ptr(2.5), wantLocation: "1.5,2.5", wantRadius: "10000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/place/textsearch/json", r.URL.Path)
				q := r.URL.Query()
				assert.Equal(t, "latte cafe", q.Get("query"))
				assert.Equal(t, tt.wantLocation, q.Get("location"))
				assert.Equal(t, tt.wantRadius, q.Get("radius"))
				_, _ = w.Write([]byte(`{"status": "OK", "results": [{"place_id": "p9", "name": "Latte Lab"}]}`))
			})

			results, err := client.SearchByText(context.Background(), "latte", tt.lat, tt.lng)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, "p9", results[0].PlaceID)
		})
	}
}

func TestClient_GetDetails(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/details/json", r.URL.Path)
		assert.Equal(t, "p1", r.URL.Query().Get("place_id"))
		assert.Contains(t, r.URL.Query().Get("fields"), "formatted_phone_number")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"result": {
				"place_id": "p1", "name": "Bean There", "formatted_address": "1 Main St",
				"geometry": {"location": {"lat": 1, "lng": 2}},
				"formatted_phone_number": "010-0000-0000",
				"website": "https://bean.example",
				"rating": 4.5, "user_ratings_total": 120,
				"opening_hours": {"open_now": true, "weekday_text": ["Mon: 8-18"]}
			}
		}`))
	})

	details, err := client.GetDetails(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, details)
	assert.Equal(t, "Bean There", details.Name)
	assert.Equal(t, "010-0000-0000", details.FormattedPhoneNumber)
	assert.Equal(t, "https://bean.example", details.Website)
	require.NotNil(t, details.Rating)
	assert.Equal(t, 4.5, *details.Rating)
	require.NotNil(t, details.OpeningHours)
	assert.Equal(t, []string{"Mon: 8-18"}, details.OpeningHours.WeekdayText)
}

func TestClient_GetDetails_NotOKReturnsNil(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "NOT_FOUND"}`))
	})

	details, err := client.GetDetails(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, details)
}

func TestClient_Observer(t *testing.T) {
	var gotEndpoint string
	var gotStatus int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS"}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		APIKey:  "k",
		BaseURL: srv.URL,
		Observer: func(endpoint string, status int, d time.Duration) {
			gotEndpoint = endpoint
			gotStatus = status
		},
	})
	require.NoError(t, err)

	_, err = client.SearchNear(context.Background(), 0, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, "place/nearbysearch/json", gotEndpoint)
	assert.Equal(t, http.StatusOK, gotStatus)
}

func TestClient_PhotoURL(t *testing.T) {
	client, err := NewClient(Config{APIKey: "k", BaseURL: "https://maps.example/api"})
	require.NoError(t, err)

	assert.Equal(t, "https://maps.example/api/place/photo?maxwidth=800&photo_reference=abc&key=k", client.PhotoURL("abc", 0))
	assert.Equal(t, "https://maps.example/api/place/photo?maxwidth=400&photo_reference=abc&key=k", client.PhotoURL("abc", 400))
}

func TestClient_DistanceKm(t *testing.T) {
	client, err := NewClient(Config{APIKey: "k", BaseURL: "https://maps.example/api"})
	require.NoError(t, err)

	assert.InDelta(t, 111.19, client.DistanceKm(0, 0, 1, 0), 0.01)
}

func ptr(f float64) *float64 { return &f }
