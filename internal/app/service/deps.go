package service

import (
	"context"
	"time"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/pkg/places"
)

// Actor 인증된 요청 사용자
type Actor struct {
	UserID string
	Email  string
}

// CatalogClient is the subset of the places client the services use
type CatalogClient interface {
	SearchNear(ctx context.Context, lat, lng float64, radiusMeters int) ([]places.Place, error)
	SearchByText(ctx context.Context, query string, lat, lng *float64) ([]places.Place, error)
	GetDetails(ctx context.Context, placeID string) (*places.PlaceDetails, error)
	PhotoURL(photoReference string, maxWidth int) string
}

type NearbyCache interface {
	Get(ctx context.Context, lat, lng, radiusKm float64) ([]model.Cafe, bool)
	Set(ctx context.Context, lat, lng, radiusKm float64, cafes []model.Cafe)
	InvalidateAll(ctx context.Context) error
}

type PreferencesCache interface {
	Get(ctx context.Context, userID string) (*model.UserPreferences, bool)
	Set(ctx context.Context, prefs *model.UserPreferences)
	Invalidate(ctx context.Context, userID string)
}

// NotificationDispatcher pushes stored notifications to connected clients
type NotificationDispatcher interface {
	Dispatch(userID string, notification *model.Notification)
}

// Uploader issues presigned object-storage uploads
type Uploader interface {
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	PublicURL(key string) string
}

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(string, *model.Notification) {}

// Pagination 목록 응답 페이지 정보
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func newPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// normalizePage clamps page to >= 1 and limit to [1, max], defaulting to def
func normalizePage(page, limit, def, max int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit, (page - 1) * limit
}
