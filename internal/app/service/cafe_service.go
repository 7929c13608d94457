package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/app/repository"
	apperrors "github.com/ikkim/sipit-backend/internal/errors"
	"github.com/ikkim/sipit-backend/pkg/logger"
	"github.com/ikkim/sipit-backend/pkg/places"
	"github.com/ikkim/sipit-backend/pkg/util"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	DefaultNearbyRadiusKm = 5.0
	defaultNearbyPageSize = 20
	maxNearbyPageSize     = 100
	searchResultLimit     = 20
	reconcileConcurrency  = 8

	addressUnavailable = "Address not available"
)

// NearbyQuery 주변 카페 검색 조건 (0 값은 기본값 사용)
type NearbyQuery struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
	SortBy   model.RatingMetric
	Page     int
	Limit    int
}

// CafeWithDistance 검색 지점으로부터의 거리(km)를 포함한 카페
type CafeWithDistance struct {
	model.Cafe
	Distance float64 `json:"distance"`
}

type NearbyResult struct {
	Cafes      []CafeWithDistance `json:"cafes"`
	Pagination Pagination         `json:"pagination"`
	SortedBy   model.RatingMetric `json:"sorted_by"`
}

// GoogleDetails 카탈로그 상세 정보 (조회 실패 시 생략)
type GoogleDetails struct {
	PhoneNumber        string               `json:"phone_number,omitempty"`
	Website            string               `json:"website,omitempty"`
	OpeningHours       *places.OpeningHours `json:"opening_hours,omitempty"`
	GoogleRating       *float64             `json:"google_rating,omitempty"`
	GoogleRatingsTotal *int                 `json:"google_ratings_total,omitempty"`
}

// CafeDetails 카페 상세 화면 응답
type CafeDetails struct {
	model.Cafe
	FollowersCount   int64          `json:"followers_count"`
	ReviewsCount     int64          `json:"reviews_count"`
	IsFollowing      bool           `json:"is_following"`
	IsSaved          bool           `json:"is_saved"`
	IsVisited        bool           `json:"is_visited"`
	SipItRating      float64        `json:"sip_it_rating"`
	MostPopularItems []PopularItem  `json:"most_popular_items"`
	BestForTags      []TagCount     `json:"best_for_tags"`
	GoogleDetails    *GoogleDetails `json:"google_details"`
}

// PlaceSummary 저장하지 않는 이름 검색 결과
type PlaceSummary struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal *int     `json:"user_ratings_total,omitempty"`
	Photo            string   `json:"photo,omitempty"`
}

type CafeService interface {
	Nearby(ctx context.Context, query NearbyQuery) (*NearbyResult, error)
	Search(ctx context.Context, query string, lat, lng *float64) ([]model.Cafe, error)
	SearchByName(ctx context.Context, query string, limit int) ([]PlaceSummary, error)
	Details(ctx context.Context, placeID, viewerID string) (*CafeDetails, error)
	GetByID(ctx context.Context, id string) (*CafeDetails, error)
	Sync(ctx context.Context, placeID string) (*model.Cafe, error)
	Follow(ctx context.Context, userID, placeID string) (*model.Cafe, error)
	Unfollow(ctx context.Context, userID, placeID string) error
	RefreshStale(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

type cafeService struct {
	cafeRepo       repository.CafeRepository
	reviewRepo     repository.ReviewRepository
	menuRepo       repository.MenuRepository
	collectionRepo repository.CollectionRepository
	catalog        CatalogClient
	nearbyCache    NearbyCache
}

func NewCafeService(
	cafeRepo repository.CafeRepository,
	reviewRepo repository.ReviewRepository,
	menuRepo repository.MenuRepository,
	collectionRepo repository.CollectionRepository,
	catalog CatalogClient,
	nearbyCache NearbyCache,
) CafeService {
	return &cafeService{
		cafeRepo:       cafeRepo,
		reviewRepo:     reviewRepo,
		menuRepo:       menuRepo,
		collectionRepo: collectionRepo,
		catalog:        catalog,
		nearbyCache:    nearbyCache,
	}
}

func (s *cafeService) Nearby(ctx context.Context, query NearbyQuery) (*NearbyResult, error) {
	if query.RadiusKm == 0 {
		query.RadiusKm = DefaultNearbyRadiusKm
	}
	if query.SortBy == "" {
		query.SortBy = model.MetricFood
	}
	if err := validateNearby(query); err != nil {
		return nil, err
	}
	page, limit, offset := normalizePage(query.Page, query.Limit, defaultNearbyPageSize, maxNearbyPageSize)

	cafes, hit := s.cachedNearby(ctx, query)
	if !hit {
		found, err := s.catalog.SearchNear(ctx, query.Lat, query.Lng, radiusMeters(query.RadiusKm))
		if err != nil {
			logger.Error("Nearby catalog search failed", err, map[string]interface{}{
				"lat":       query.Lat,
				"lng":       query.Lng,
				"radius_km": query.RadiusKm,
			})
			return nil, upstreamError(err)
		}

		cafes, err = s.reconcile(ctx, found)
		if err != nil {
			return nil, err
		}
		if s.nearbyCache != nil {
			s.nearbyCache.Set(ctx, query.Lat, query.Lng, query.RadiusKm, cafes)
		}
	}

	withDistance := make([]CafeWithDistance, 0, len(cafes))
	for _, cafe := range cafes {
		withDistance = append(withDistance, CafeWithDistance{
			Cafe:     cafe,
			Distance: util.CalculateDistance(query.Lat, query.Lng, cafe.Latitude, cafe.Longitude),
		})
	}

	metric := query.SortBy
	sort.SliceStable(withDistance, func(a, b int) bool {
		return withDistance[a].Ratings.Average(metric) > withDistance[b].Ratings.Average(metric)
	})

	total := int64(len(withDistance))
	start := offset
	if start > len(withDistance) {
		start = len(withDistance)
	}
	end := start + limit
	if end > len(withDistance) {
		end = len(withDistance)
	}

	return &NearbyResult{
		Cafes:      withDistance[start:end],
		Pagination: newPagination(page, limit, total),
		SortedBy:   metric,
	}, nil
}

func (s *cafeService) cachedNearby(ctx context.Context, query NearbyQuery) ([]model.Cafe, bool) {
	if s.nearbyCache == nil {
		return nil, false
	}
	return s.nearbyCache.Get(ctx, query.Lat, query.Lng, query.RadiusKm)
}

func validateNearby(query NearbyQuery) error {
	if query.Lat < -90 || query.Lat > 90 {
		return validationError(apperrors.ValidationInvalidRange, "Latitude must be between -90 and 90")
	}
	if query.Lng < -180 || query.Lng > 180 {
		return validationError(apperrors.ValidationInvalidRange, "Longitude must be between -180 and 180")
	}
	if query.RadiusKm < model.MinPreferredRadiusKm || query.RadiusKm > model.MaxPreferredRadiusKm {
		return validationError(apperrors.ValidationInvalidRange, "Radius must be between 0.5 and 50 km")
	}
	if !query.SortBy.IsValid() {
		return validationError(apperrors.ValidationInvalidInput, "sortBy must be one of FOOD, DRINKS, AMBIENCE, SERVICE")
	}
	if query.Limit < 0 || query.Limit > maxNearbyPageSize {
		return validationError(apperrors.ValidationInvalidRange, "Limit must be between 1 and 100")
	}
	return nil
}

// reconcile 카탈로그 결과를 로컬 카페로 동기화 (있으면 touch, 없으면 생성)
// 결과 순서는 입력 순서를 유지
func (s *cafeService) reconcile(ctx context.Context, found []places.Place) ([]model.Cafe, error) {
	cafes := make([]*model.Cafe, len(found))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)
	for i := range found {
		i := i
		g.Go(func() error {
			cafe, err := s.reconcileOne(gctx, found[i])
			if err != nil {
				return err
			}
			cafes[i] = cafe
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Failed to reconcile catalog results", err, map[string]interface{}{
			"count": len(found),
		})
		return nil, err
	}

	result := make([]model.Cafe, 0, len(cafes))
	for _, cafe := range cafes {
		result = append(result, *cafe)
	}
	return result, nil
}

func (s *cafeService) reconcileOne(ctx context.Context, place places.Place) (*model.Cafe, error) {
	existing, err := s.cafeRepo.FindByExternalID(ctx, place.PlaceID)
	if err == nil {
		if err := s.cafeRepo.Touch(ctx, place.PlaceID); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.cafeRepo.UpsertFromCatalogRecord(ctx, s.catalogRecord(place))
}

func (s *cafeService) catalogRecord(place places.Place) repository.CatalogRecord {
	photos := make([]string, 0, len(place.Photos))
	for _, photo := range place.Photos {
		photos = append(photos, s.catalog.PhotoURL(photo.PhotoReference, 0))
	}
	address := place.Address()
	if address == "" {
		address = addressUnavailable
	}
	return repository.CatalogRecord{
		ExternalID: place.PlaceID,
		Name:       place.Name,
		Address:    address,
		Latitude:   place.Geometry.Location.Lat,
		Longitude:  place.Geometry.Location.Lng,
		Photos:     photos,
	}
}

func (s *cafeService) Search(ctx context.Context, query string, lat, lng *float64) ([]model.Cafe, error) {
	if query == "" {
		return nil, validationError(apperrors.ValidationRequired, "Search query is required")
	}

	found, err := s.catalog.SearchByText(ctx, query, lat, lng)
	if err != nil {
		logger.Error("Cafe text search failed", err, map[string]interface{}{
			"query": query,
		})
		return nil, upstreamError(err)
	}
	if len(found) > searchResultLimit {
		found = found[:searchResultLimit]
	}
	return s.reconcile(ctx, found)
}

func (s *cafeService) SearchByName(ctx context.Context, query string, limit int) ([]PlaceSummary, error) {
	if query == "" {
		return nil, validationError(apperrors.ValidationRequired, "Search query is required")
	}
	if limit <= 0 {
		limit = searchResultLimit
	}

	found, err := s.catalog.SearchByText(ctx, query, nil, nil)
	if err != nil {
		return nil, upstreamError(err)
	}
	if len(found) > limit {
		found = found[:limit]
	}

	summaries := make([]PlaceSummary, 0, len(found))
	for _, place := range found {
		summary := PlaceSummary{
			PlaceID:          place.PlaceID,
			Name:             place.Name,
			Address:          place.Address(),
			Latitude:         place.Geometry.Location.Lat,
			Longitude:        place.Geometry.Location.Lng,
			Rating:           place.Rating,
			UserRatingsTotal: place.UserRatingsTotal,
		}
		if len(place.Photos) > 0 {
			summary.Photo = s.catalog.PhotoURL(place.Photos[0].PhotoReference, 0)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// fetchDetails is a repository.FetchFunc backed by the catalog details call.
// The fetched details are kept in *out so callers can reuse them.
func (s *cafeService) fetchDetails(out **places.PlaceDetails) repository.FetchFunc {
	return func(ctx context.Context, placeID string) (*repository.CatalogRecord, error) {
		details, err := s.catalog.GetDetails(ctx, placeID)
		if err != nil {
			return nil, upstreamError(err)
		}
		if details == nil {
			return nil, nil
		}
		if out != nil {
			*out = details
		}
		record := s.catalogRecord(details.Place)
		record.ExternalID = placeID
		return &record, nil
	}
}

func (s *cafeService) getOrFetch(ctx context.Context, placeID string, details **places.PlaceDetails) (*model.Cafe, error) {
	cafe, err := s.cafeRepo.GetOrFetch(ctx, placeID, s.fetchDetails(details))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCafeNotFound
		}
		return nil, err
	}
	return cafe, nil
}

func (s *cafeService) Details(ctx context.Context, placeID, viewerID string) (*CafeDetails, error) {
	var fetched *places.PlaceDetails
	cafe, err := s.getOrFetch(ctx, placeID, &fetched)
	if err != nil {
		return nil, err
	}

	details, err := s.assemble(ctx, cafe, fetched)
	if err != nil {
		return nil, err
	}

	if viewerID != "" {
		if details.IsFollowing, err = s.collectionRepo.IsFollowingCafe(ctx, viewerID, cafe.ID); err != nil {
			return nil, err
		}
		if details.IsSaved, err = s.collectionRepo.IsSaved(ctx, viewerID, cafe.ID); err != nil {
			return nil, err
		}
		if details.IsVisited, err = s.collectionRepo.IsVisited(ctx, viewerID, cafe.ID); err != nil {
			return nil, err
		}
	}
	return details, nil
}

func (s *cafeService) GetByID(ctx context.Context, id string) (*CafeDetails, error) {
	cafe, err := s.cafeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCafeNotFound
		}
		return nil, err
	}
	return s.assemble(ctx, cafe, nil)
}

// assemble 집계 수치와 인사이트, 카탈로그 상세를 합쳐 상세 응답 생성
func (s *cafeService) assemble(ctx context.Context, cafe *model.Cafe, fetched *places.PlaceDetails) (*CafeDetails, error) {
	followers, err := s.cafeRepo.CountFollowers(ctx, cafe.ID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.ListAllByCafe(ctx, cafe.ID)
	if err != nil {
		return nil, err
	}
	items, err := s.menuRepo.ListByCafePlaceID(ctx, cafe.GooglePlaceID)
	if err != nil {
		return nil, err
	}

	if fetched == nil {
		fetched = s.lookupDetails(ctx, cafe.GooglePlaceID)
	}

	return &CafeDetails{
		Cafe:             *cafe,
		FollowersCount:   followers,
		ReviewsCount:     int64(len(reviews)),
		SipItRating:      SipItRating(cafe.Ratings),
		MostPopularItems: PopularMenuItems(items),
		BestForTags:      BestForTags(reviews),
		GoogleDetails:    toGoogleDetails(fetched),
	}, nil
}

// lookupDetails 상세 조회 실패는 응답에서 생략
func (s *cafeService) lookupDetails(ctx context.Context, placeID string) *places.PlaceDetails {
	details, err := s.catalog.GetDetails(ctx, placeID)
	if err != nil {
		logger.Warn("Failed to fetch catalog details", map[string]interface{}{
			"google_place_id": placeID,
			"error":           err.Error(),
		})
		return nil
	}
	return details
}

func toGoogleDetails(details *places.PlaceDetails) *GoogleDetails {
	if details == nil {
		return nil
	}
	return &GoogleDetails{
		PhoneNumber:        details.FormattedPhoneNumber,
		Website:            details.Website,
		OpeningHours:       details.OpeningHours,
		GoogleRating:       details.Rating,
		GoogleRatingsTotal: details.UserRatingsTotal,
	}
}

func (s *cafeService) Sync(ctx context.Context, placeID string) (*model.Cafe, error) {
	record, err := s.fetchDetails(nil)(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, &Error{Kind: ErrNotFound, Code: apperrors.CafeNotFound, Message: "Cafe not found in Google Places"}
	}

	cafe, err := s.cafeRepo.UpsertFromCatalogRecord(ctx, *record)
	if err != nil {
		return nil, err
	}
	invalidateNearby(ctx, s.nearbyCache)

	logger.Info("Cafe synced from catalog", map[string]interface{}{
		"cafe_id":         cafe.ID,
		"google_place_id": placeID,
	})
	return cafe, nil
}

// Follow 카페 팔로우 (이미 팔로우 중이어도 성공)
func (s *cafeService) Follow(ctx context.Context, userID, placeID string) (*model.Cafe, error) {
	cafe, err := s.getOrFetch(ctx, placeID, nil)
	if err != nil {
		return nil, err
	}
	if err := s.collectionRepo.FollowCafe(ctx, userID, cafe.ID); err != nil {
		logger.Error("Failed to follow cafe", err, map[string]interface{}{
			"user_id": userID,
			"cafe_id": cafe.ID,
		})
		return nil, err
	}
	return cafe, nil
}

func (s *cafeService) Unfollow(ctx context.Context, userID, placeID string) error {
	cafe, err := s.cafeRepo.FindByExternalID(ctx, placeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCafeNotFound
		}
		return err
	}
	_, err = s.collectionRepo.UnfollowCafe(ctx, userID, cafe.ID)
	return err
}

// RefreshStale 오래된 카페 정보를 카탈로그에서 다시 가져옴
// 개별 실패는 로그만 남기고 갱신된 카페 수를 반환
func (s *cafeService) RefreshStale(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	stale, err := s.cafeRepo.ListStale(ctx, time.Now().Add(-olderThan), limit)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	refreshed := make([]bool, len(stale))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)
	for i := range stale {
		i := i
		g.Go(func() error {
			placeID := stale[i].GooglePlaceID
			record, err := s.fetchDetails(nil)(gctx, placeID)
			if err != nil || record == nil {
				logger.Warn("Skipping stale cafe refresh", map[string]interface{}{
					"google_place_id": placeID,
					"error":           errString(err),
				})
				return nil
			}
			if _, err := s.cafeRepo.UpsertFromCatalogRecord(gctx, *record); err != nil {
				logger.Warn("Failed to refresh stale cafe", map[string]interface{}{
					"google_place_id": placeID,
					"error":           err.Error(),
				})
				return nil
			}
			refreshed[i] = true
			return nil
		})
	}
	_ = g.Wait()

	count := 0
	for _, ok := range refreshed {
		if ok {
			count++
		}
	}
	if count > 0 {
		invalidateNearby(ctx, s.nearbyCache)
	}

	logger.Info("Stale cafes refreshed", map[string]interface{}{
		"candidates": len(stale),
		"refreshed":  count,
	})
	return count, nil
}

func errString(err error) string {
	if err == nil {
		return "not found in catalog"
	}
	return err.Error()
}

func radiusMeters(km float64) int {
	return int(math.Round(km * 1000))
}
