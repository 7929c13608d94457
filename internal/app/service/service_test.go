package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/app/repository"
	"github.com/ikkim/sipit-backend/internal/db"
	"github.com/ikkim/sipit-backend/pkg/places"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db            *gorm.DB
	users         repository.UserRepository
	cafes         repository.CafeRepository
	reviews       repository.ReviewRepository
	follows       repository.FollowRepository
	notifications repository.NotificationRepository
	prefs         repository.PreferencesRepository
	menus         repository.MenuRepository
	collections   repository.CollectionRepository
	aggregator    *RatingAggregator
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	env := &testEnv{
		db:            testDB,
		users:         repository.NewUserRepository(testDB),
		cafes:         repository.NewCafeRepository(testDB),
		reviews:       repository.NewReviewRepository(testDB),
		follows:       repository.NewFollowRepository(testDB),
		notifications: repository.NewNotificationRepository(testDB),
		prefs:         repository.NewPreferencesRepository(testDB),
		menus:         repository.NewMenuRepository(testDB),
		collections:   repository.NewCollectionRepository(testDB),
	}
	env.aggregator = NewRatingAggregator(env.reviews, env.cafes)
	return env
}

// createUser inserts a user with default preferences
func (e *testEnv) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	ctx := context.Background()
	user := &model.User{Email: email, Name: email}
	require.NoError(t, e.users.Create(ctx, user))
	require.NoError(t, e.prefs.Create(ctx, model.DefaultPreferences(user.ID)))
	return user
}

func (e *testEnv) createCafe(t *testing.T, placeID string, lat, lng float64) *model.Cafe {
	t.Helper()
	cafe, err := e.cafes.UpsertFromCatalogRecord(context.Background(), repository.CatalogRecord{
		ExternalID: placeID,
		Name:       "Cafe " + placeID,
		Address:    "1 Main St",
		Latitude:   lat,
		Longitude:  lng,
	})
	require.NoError(t, err)
	return cafe
}

func (e *testEnv) follow(t *testing.T, followerID, followingID string) {
	t.Helper()
	require.NoError(t, e.follows.Create(context.Background(), &model.Follow{FollowerID: followerID, FollowingID: followingID}))
}

func actorOf(u *model.User) Actor {
	return Actor{UserID: u.ID, Email: u.Email}
}

func ratingsInput(cafeID string, food, drinks, ambience, service float64) CreateReviewInput {
	return CreateReviewInput{
		CafeID:         cafeID,
		FoodRating:     food,
		DrinksRating:   drinks,
		AmbienceRating: ambience,
		ServiceRating:  service,
	}
}

func f64(v float64) *float64 { return &v }

// fakeNearbyCache is an in-memory NearbyCache that counts invalidations
type fakeNearbyCache struct {
	mu            sync.Mutex
	entries       map[[3]float64][]model.Cafe
	invalidations int
}

func newFakeNearbyCache() *fakeNearbyCache {
	return &fakeNearbyCache{entries: make(map[[3]float64][]model.Cafe)}
}

func (c *fakeNearbyCache) Get(_ context.Context, lat, lng, radiusKm float64) ([]model.Cafe, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cafes, ok := c.entries[[3]float64{lat, lng, radiusKm}]
	return cafes, ok
}

func (c *fakeNearbyCache) Set(_ context.Context, lat, lng, radiusKm float64, cafes []model.Cafe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[[3]float64{lat, lng, radiusKm}] = cafes
}

func (c *fakeNearbyCache) InvalidateAll(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[[3]float64][]model.Cafe)
	c.invalidations++
	return nil
}

func (c *fakeNearbyCache) invalidated() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations
}

// recordingDispatcher captures pushed notifications
type recordingDispatcher struct {
	mu   sync.Mutex
	sent map[string][]model.Notification
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{sent: make(map[string][]model.Notification)}
}

func (d *recordingDispatcher) Dispatch(userID string, n *model.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent[userID] = append(d.sent[userID], *n)
}

func (d *recordingDispatcher) count(userID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent[userID])
}

// fakeCatalog serves canned place data
type fakeCatalog struct {
	mu          sync.Mutex
	nearby      []places.Place
	text        []places.Place
	details     map[string]*places.PlaceDetails
	err         error
	detailsErr  error
	nearbyCalls int
	lastRadius  int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{details: make(map[string]*places.PlaceDetails)}
}

func (c *fakeCatalog) SearchNear(_ context.Context, _, _ float64, radiusMeters int) ([]places.Place, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nearbyCalls++
	c.lastRadius = radiusMeters
	return c.nearby, c.err
}

func (c *fakeCatalog) SearchByText(context.Context, string, *float64, *float64) ([]places.Place, error) {
	return c.text, c.err
}

func (c *fakeCatalog) GetDetails(_ context.Context, placeID string) (*places.PlaceDetails, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detailsErr != nil {
		return nil, c.detailsErr
	}
	return c.details[placeID], nil
}

func (c *fakeCatalog) PhotoURL(ref string, _ int) string {
	return "https://photos.example/" + ref
}

func (c *fakeCatalog) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nearbyCalls
}

func place(id, name string, lat, lng float64, photoRefs ...string) places.Place {
	p := places.Place{
		PlaceID:          id,
		Name:             name,
		FormattedAddress: name + " street",
		Geometry:         places.Geometry{Location: places.Location{Lat: lat, Lng: lng}},
	}
	for _, ref := range photoRefs {
		p.Photos = append(p.Photos, places.Photo{PhotoReference: ref})
	}
	return p
}

// fakeUploader signs nothing and returns predictable URLs
type fakeUploader struct {
	lastKey    string
	lastExpiry time.Duration
	err        error
}

func (u *fakeUploader) PresignPut(_ context.Context, key, _ string, expiry time.Duration) (string, error) {
	u.lastKey = key
	u.lastExpiry = expiry
	if u.err != nil {
		return "", u.err
	}
	return "https://upload.example/" + key + "?signed=1", nil
}

func (u *fakeUploader) PublicURL(key string) string {
	return "https://cdn.example/" + key
}
