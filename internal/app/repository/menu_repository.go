package repository

import (
	"context"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"gorm.io/gorm"
)

type MenuRepository interface {
	Create(ctx context.Context, item *model.PersonalMenuItem) error
	FindByID(ctx context.Context, id string) (*model.PersonalMenuItem, error)
	Update(ctx context.Context, item *model.PersonalMenuItem) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]model.PersonalMenuItem, error)
	ListByCafePlaceID(ctx context.Context, placeID string) ([]model.PersonalMenuItem, error)
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) Create(ctx context.Context, item *model.PersonalMenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *menuRepository) FindByID(ctx context.Context, id string) (*model.PersonalMenuItem, error) {
	var item model.PersonalMenuItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *menuRepository) Update(ctx context.Context, item *model.PersonalMenuItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *menuRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PersonalMenuItem{}).Error
}

// ListByUser 사용자 메뉴 (최신순)
func (r *menuRepository) ListByUser(ctx context.Context, userID string) ([]model.PersonalMenuItem, error) {
	var items []model.PersonalMenuItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// ListByCafePlaceID 카페의 모든 사용자 메뉴 (등록순, 인기 메뉴 집계용)
func (r *menuRepository) ListByCafePlaceID(ctx context.Context, placeID string) ([]model.PersonalMenuItem, error) {
	var items []model.PersonalMenuItem
	err := r.db.WithContext(ctx).
		Where("cafe_place_id = ?", placeID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}
