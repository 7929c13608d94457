package repository

import (
	"context"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/pkg/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const hasPhotos = "photos IS NOT NULL AND photos <> '[]'"

type ReviewRepository interface {
	WithTx(tx *gorm.DB) ReviewRepository
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id string) (*model.Review, error)
	FindByUserAndCafe(ctx context.Context, userID, cafeID string) (*model.Review, error)
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id string) error
	ListAllByCafe(ctx context.Context, cafeID string) ([]model.Review, error)
	ListByCafe(ctx context.Context, cafeID string, offset, limit int) ([]model.Review, int64, error)
	ListAllByUser(ctx context.Context, userID string) ([]model.Review, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Review, int64, error)
	ListByUsers(ctx context.Context, userIDs []string, offset, limit int) ([]model.Review, int64, error)
	ListInBox(ctx context.Context, box *util.BoundingBox, offset, limit int) ([]model.Review, int64, error)
	ListWithPhotosByCafe(ctx context.Context, cafeID string) ([]model.Review, error)
	ListWithPhotosByUser(ctx context.Context, userID string) ([]model.Review, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	CountByCafe(ctx context.Context, cafeID string) (int64, error)
	CountCafesByUser(ctx context.Context, userID string) (int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) WithTx(tx *gorm.DB) ReviewRepository {
	return &reviewRepository{db: tx}
}

// Create 리뷰 생성
func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error
}

// FindByID ID로 리뷰 조회
func (r *reviewRepository) FindByID(ctx context.Context, id string) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).Preload("User").Preload("Cafe").Where("id = ?", id).First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByUserAndCafe(ctx context.Context, userID, cafeID string) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).Where("user_id = ? AND cafe_id = ?", userID, cafeID).First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Update 리뷰 수정 (연관 엔티티는 저장하지 않음)
func (r *reviewRepository) Update(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(review).Error
}

// Delete 리뷰 삭제
func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Review{}).Error
}

// ListAllByCafe 카페의 전체 리뷰 (평점 집계·인사이트 계산용)
func (r *reviewRepository) ListAllByCafe(ctx context.Context, cafeID string) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Where("cafe_id = ?", cafeID).
		Order("created_at ASC").
		Find(&reviews).Error
	return reviews, err
}

// ListByCafe 카페별 리뷰 목록 조회 (최신순)
func (r *reviewRepository) ListByCafe(ctx context.Context, cafeID string, offset, limit int) ([]model.Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Review{}).Where("cafe_id = ?", cafeID)
	return r.page(query, "User", offset, limit)
}

func (r *reviewRepository) ListAllByUser(ctx context.Context, userID string) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&reviews).Error
	return reviews, err
}

// ListByUser 사용자별 리뷰 목록 조회 (최신순)
func (r *reviewRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Review{}).Where("user_id = ?", userID)
	return r.page(query, "Cafe", offset, limit)
}

// ListByUsers 여러 사용자의 리뷰 (팔로잉 피드)
func (r *reviewRepository) ListByUsers(ctx context.Context, userIDs []string, offset, limit int) ([]model.Review, int64, error) {
	if len(userIDs) == 0 {
		return []model.Review{}, 0, nil
	}
	query := r.db.WithContext(ctx).Model(&model.Review{}).Where("user_id IN ?", userIDs)
	return r.page(query.Preload("User"), "Cafe", offset, limit)
}

// ListInBox 카페 좌표가 범위 안에 있는 리뷰 (box가 nil이면 전체)
func (r *reviewRepository) ListInBox(ctx context.Context, box *util.BoundingBox, offset, limit int) ([]model.Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Review{})
	if box != nil {
		cafesInBox := r.db.WithContext(ctx).
			Model(&model.Cafe{}).
			Select("id").
			Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
			Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng)
		query = query.Where("cafe_id IN (?)", cafesInBox)
	}
	return r.page(query.Preload("User"), "Cafe", offset, limit)
}

func (r *reviewRepository) ListWithPhotosByCafe(ctx context.Context, cafeID string) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("cafe_id = ?", cafeID).
		Where(hasPhotos).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) ListWithPhotosByUser(ctx context.Context, userID string) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Preload("Cafe").
		Where("user_id = ?", userID).
		Where(hasPhotos).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *reviewRepository) CountByCafe(ctx context.Context, cafeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).Where("cafe_id = ?", cafeID).Count(&count).Error
	return count, err
}

// CountCafesByUser 리뷰를 남긴 서로 다른 카페 수
func (r *reviewRepository) CountCafesByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("user_id = ?", userID).
		Distinct("cafe_id").
		Count(&count).Error
	return count, err
}

func (r *reviewRepository) page(query *gorm.DB, preload string, offset, limit int) ([]model.Review, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []model.Review
	err := query.Preload(preload).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}
