package db

import (
	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.UserPreferences{},
		&model.Cafe{},
		&model.CafeRatings{},
		&model.Review{},
		&model.PersonalMenuItem{},
		&model.Follow{},
		&model.CafeFollow{},
		&model.SavedCafe{},
		&model.VisitedCafe{},
		&model.Notification{},
	}
}

// Migrate runs database migrations
func Migrate(gdb *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := gdb.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
