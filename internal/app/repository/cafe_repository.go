package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/sipit-backend/internal/app/model"
	apperrors "github.com/ikkim/sipit-backend/internal/errors"
	"github.com/ikkim/sipit-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRecord 외부 장소 카탈로그에서 가져온 카페 기본 정보
type CatalogRecord struct {
	ExternalID string
	Name       string
	Address    string
	Latitude   float64
	Longitude  float64
	Photos     []string // 표시 가능한 URL (순서 유지)
}

// FetchFunc loads one catalog record. A nil record means the catalog has no such place.
type FetchFunc func(ctx context.Context, externalID string) (*CatalogRecord, error)

type CafeRepository interface {
	WithTx(tx *gorm.DB) CafeRepository
	FindByExternalID(ctx context.Context, externalID string) (*model.Cafe, error)
	FindByID(ctx context.Context, id string) (*model.Cafe, error)
	UpsertFromCatalogRecord(ctx context.Context, record CatalogRecord) (*model.Cafe, error)
	Touch(ctx context.Context, externalID string) error
	GetOrFetch(ctx context.Context, externalID string, fetch FetchFunc) (*model.Cafe, error)
	ListStale(ctx context.Context, olderThan time.Time, limit int) ([]model.Cafe, error)
	CountFollowers(ctx context.Context, cafeID string) (int64, error)
	FindRatings(ctx context.Context, cafeID string) (*model.CafeRatings, error)
	FindRatingsForUpdate(ctx context.Context, cafeID string) (*model.CafeRatings, error)
	SaveRatings(ctx context.Context, ratings *model.CafeRatings) error
}

type cafeRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCafeRepository(db *gorm.DB) CafeRepository {
	return &cafeRepository{db: db, now: time.Now}
}

func (r *cafeRepository) WithTx(tx *gorm.DB) CafeRepository {
	return &cafeRepository{db: tx, now: r.now}
}

func (r *cafeRepository) FindByExternalID(ctx context.Context, externalID string) (*model.Cafe, error) {
	logger.Debug("Finding cafe by external ID in database", map[string]interface{}{
		"google_place_id": externalID,
	})

	var cafe model.Cafe
	err := r.db.WithContext(ctx).
		Preload("Ratings").
		Where("google_place_id = ?", externalID).
		First(&cafe).Error
	if err != nil {
		return nil, err
	}
	return &cafe, nil
}

func (r *cafeRepository) FindByID(ctx context.Context, id string) (*model.Cafe, error) {
	logger.Debug("Finding cafe by ID in database", map[string]interface{}{
		"cafe_id": id,
	})

	var cafe model.Cafe
	if err := r.db.WithContext(ctx).Preload("Ratings").Where("id = ?", id).First(&cafe).Error; err != nil {
		return nil, err
	}
	return &cafe, nil
}

// UpsertFromCatalogRecord 카탈로그 레코드로 카페 생성 또는 갱신
// 신규 카페는 0으로 초기화된 평점 집계와 함께 하나의 트랜잭션으로 생성
// 동시 생성으로 유니크 제약 위반 시 조회 후 갱신으로 처리
func (r *cafeRepository) UpsertFromCatalogRecord(ctx context.Context, record CatalogRecord) (*model.Cafe, error) {
	existing, err := r.FindByExternalID(ctx, record.ExternalID)
	if err == nil {
		return r.refresh(ctx, existing, record)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to look up cafe for upsert", err, map[string]interface{}{
			"google_place_id": record.ExternalID,
		})
		return nil, err
	}

	cafe := &model.Cafe{
		GooglePlaceID: record.ExternalID,
		Name:          record.Name,
		Address:       record.Address,
		Latitude:      record.Latitude,
		Longitude:     record.Longitude,
		Photos:        model.StringArray(record.Photos),
		LastSyncedAt:  r.now(),
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Ratings").Create(cafe).Error; err != nil {
			return err
		}
		ratings := &model.CafeRatings{CafeID: cafe.ID}
		if err := tx.Create(ratings).Error; err != nil {
			return err
		}
		cafe.Ratings = ratings
		return nil
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			logger.Info("Cafe created concurrently, updating instead", map[string]interface{}{
				"google_place_id": record.ExternalID,
			})
			existing, findErr := r.FindByExternalID(ctx, record.ExternalID)
			if findErr != nil {
				return nil, findErr
			}
			return r.refresh(ctx, existing, record)
		}
		logger.Error("Failed to create cafe in database", err, map[string]interface{}{
			"google_place_id": record.ExternalID,
		})
		return nil, err
	}

	logger.Info("Cafe created from catalog", map[string]interface{}{
		"cafe_id":         cafe.ID,
		"google_place_id": cafe.GooglePlaceID,
	})
	return cafe, nil
}

// refresh 이름·주소·좌표·사진·동기화 시각만 갱신 (ID와 평점은 유지)
func (r *cafeRepository) refresh(ctx context.Context, cafe *model.Cafe, record CatalogRecord) (*model.Cafe, error) {
	now := r.now()
	updates := map[string]interface{}{
		"name":           record.Name,
		"address":        record.Address,
		"latitude":       record.Latitude,
		"longitude":      record.Longitude,
		"photos":         model.StringArray(record.Photos),
		"last_synced_at": now,
	}
	if err := r.db.WithContext(ctx).Model(&model.Cafe{}).Where("id = ?", cafe.ID).Updates(updates).Error; err != nil {
		logger.Error("Failed to refresh cafe in database", err, map[string]interface{}{
			"cafe_id": cafe.ID,
		})
		return nil, err
	}

	cafe.Name = record.Name
	cafe.Address = record.Address
	cafe.Latitude = record.Latitude
	cafe.Longitude = record.Longitude
	cafe.Photos = model.StringArray(record.Photos)
	cafe.LastSyncedAt = now
	return cafe, nil
}

func (r *cafeRepository) Touch(ctx context.Context, externalID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Cafe{}).
		Where("google_place_id = ?", externalID).
		Update("last_synced_at", r.now()).Error
}

// GetOrFetch 로컬에 없으면 fetch로 카탈로그에서 가져와 저장
func (r *cafeRepository) GetOrFetch(ctx context.Context, externalID string, fetch FetchFunc) (*model.Cafe, error) {
	cafe, err := r.FindByExternalID(ctx, externalID)
	if err == nil {
		return cafe, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record, err := fetch(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.UpsertFromCatalogRecord(ctx, *record)
}

// ListStale 마지막 동기화가 오래된 카페부터 조회
func (r *cafeRepository) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]model.Cafe, error) {
	var cafes []model.Cafe
	err := r.db.WithContext(ctx).
		Where("last_synced_at < ?", olderThan).
		Order("last_synced_at ASC").
		Limit(limit).
		Find(&cafes).Error
	return cafes, err
}

func (r *cafeRepository) CountFollowers(ctx context.Context, cafeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CafeFollow{}).Where("cafe_id = ?", cafeID).Count(&count).Error
	return count, err
}

func (r *cafeRepository) FindRatings(ctx context.Context, cafeID string) (*model.CafeRatings, error) {
	var ratings model.CafeRatings
	if err := r.db.WithContext(ctx).Where("cafe_id = ?", cafeID).First(&ratings).Error; err != nil {
		return nil, err
	}
	return &ratings, nil
}

// FindRatingsForUpdate 평점 행을 트랜잭션 종료까지 잠금 (SELECT ... FOR UPDATE)
// 같은 카페의 재계산을 직렬화. SQLite는 잠금 절을 무시
func (r *cafeRepository) FindRatingsForUpdate(ctx context.Context, cafeID string) (*model.CafeRatings, error) {
	var ratings model.CafeRatings
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cafe_id = ?", cafeID).
		First(&ratings).Error
	if err != nil {
		return nil, err
	}
	return &ratings, nil
}

// SaveRatings 평점 집계 저장 (절대값 덮어쓰기)
func (r *cafeRepository) SaveRatings(ctx context.Context, ratings *model.CafeRatings) error {
	if ratings.ID == "" {
		return r.db.WithContext(ctx).Create(ratings).Error
	}
	return r.db.WithContext(ctx).
		Model(&model.CafeRatings{}).
		Where("id = ?", ratings.ID).
		Updates(map[string]interface{}{
			"avg_food":      ratings.AvgFood,
			"avg_drinks":    ratings.AvgDrinks,
			"avg_ambience":  ratings.AvgAmbience,
			"avg_service":   ratings.AvgService,
			"total_reviews": ratings.TotalReviews,
			"updated_at":    r.now(),
		}).Error
}
