package repository

import (
	"context"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollectionRepository 카페 팔로우·저장·방문 기록
type CollectionRepository interface {
	FollowCafe(ctx context.Context, userID, cafeID string) error
	UnfollowCafe(ctx context.Context, userID, cafeID string) (int64, error)
	IsFollowingCafe(ctx context.Context, userID, cafeID string) (bool, error)

	Save(ctx context.Context, saved *model.SavedCafe) error
	Unsave(ctx context.Context, userID, cafeID string) (int64, error)
	IsSaved(ctx context.Context, userID, cafeID string) (bool, error)
	ListSaved(ctx context.Context, userID string) ([]model.SavedCafe, error)

	MarkVisited(ctx context.Context, visited *model.VisitedCafe) error
	UnmarkVisited(ctx context.Context, userID, cafeID string) (int64, error)
	IsVisited(ctx context.Context, userID, cafeID string) (bool, error)
	ListVisited(ctx context.Context, userID string) ([]model.VisitedCafe, error)
}

type collectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

// FollowCafe 이미 팔로우 중이면 아무것도 하지 않음
func (r *collectionRepository) FollowCafe(ctx context.Context, userID, cafeID string) error {
	follow := &model.CafeFollow{UserID: userID, CafeID: cafeID}
	return r.db.WithContext(ctx).
		Omit("Cafe").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(follow).Error
}

func (r *collectionRepository) UnfollowCafe(ctx context.Context, userID, cafeID string) (int64, error) {
	return r.deletePair(ctx, &model.CafeFollow{}, userID, cafeID)
}

func (r *collectionRepository) IsFollowingCafe(ctx context.Context, userID, cafeID string) (bool, error) {
	return r.pairExists(ctx, &model.CafeFollow{}, userID, cafeID)
}

func (r *collectionRepository) Save(ctx context.Context, saved *model.SavedCafe) error {
	return r.db.WithContext(ctx).Omit("Cafe").Create(saved).Error
}

func (r *collectionRepository) Unsave(ctx context.Context, userID, cafeID string) (int64, error) {
	return r.deletePair(ctx, &model.SavedCafe{}, userID, cafeID)
}

func (r *collectionRepository) IsSaved(ctx context.Context, userID, cafeID string) (bool, error) {
	return r.pairExists(ctx, &model.SavedCafe{}, userID, cafeID)
}

func (r *collectionRepository) ListSaved(ctx context.Context, userID string) ([]model.SavedCafe, error) {
	var saved []model.SavedCafe
	err := r.db.WithContext(ctx).
		Preload("Cafe.Ratings").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saved).Error
	return saved, err
}

func (r *collectionRepository) MarkVisited(ctx context.Context, visited *model.VisitedCafe) error {
	return r.db.WithContext(ctx).Omit("Cafe").Create(visited).Error
}

func (r *collectionRepository) UnmarkVisited(ctx context.Context, userID, cafeID string) (int64, error) {
	return r.deletePair(ctx, &model.VisitedCafe{}, userID, cafeID)
}

func (r *collectionRepository) IsVisited(ctx context.Context, userID, cafeID string) (bool, error) {
	return r.pairExists(ctx, &model.VisitedCafe{}, userID, cafeID)
}

func (r *collectionRepository) ListVisited(ctx context.Context, userID string) ([]model.VisitedCafe, error) {
	var visited []model.VisitedCafe
	err := r.db.WithContext(ctx).
		Preload("Cafe.Ratings").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&visited).Error
	return visited, err
}

func (r *collectionRepository) deletePair(ctx context.Context, m interface{}, userID, cafeID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ? AND cafe_id = ?", userID, cafeID).Delete(m)
	return result.RowsAffected, result.Error
}

func (r *collectionRepository) pairExists(ctx context.Context, m interface{}, userID, cafeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(m).Where("user_id = ? AND cafe_id = ?", userID, cafeID).Count(&count).Error
	return count > 0, err
}
