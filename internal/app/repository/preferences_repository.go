package repository

import (
	"context"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"gorm.io/gorm"
)

type PreferencesRepository interface {
	WithTx(tx *gorm.DB) PreferencesRepository
	FindByUserID(ctx context.Context, userID string) (*model.UserPreferences, error)
	Create(ctx context.Context, prefs *model.UserPreferences) error
	Update(ctx context.Context, prefs *model.UserPreferences) error
}

type preferencesRepository struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) PreferencesRepository {
	return &preferencesRepository{db: db}
}

func (r *preferencesRepository) WithTx(tx *gorm.DB) PreferencesRepository {
	return &preferencesRepository{db: tx}
}

func (r *preferencesRepository) FindByUserID(ctx context.Context, userID string) (*model.UserPreferences, error) {
	var prefs model.UserPreferences
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error; err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *preferencesRepository) Create(ctx context.Context, prefs *model.UserPreferences) error {
	return r.db.WithContext(ctx).Create(prefs).Error
}

// Update writes every column so false flags are persisted
func (r *preferencesRepository) Update(ctx context.Context, prefs *model.UserPreferences) error {
	return r.db.WithContext(ctx).Save(prefs).Error
}
