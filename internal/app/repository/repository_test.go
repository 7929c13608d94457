package repository

import (
	"context"
	"testing"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createUser(t *testing.T, gdb *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Name: email}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func createCafe(t *testing.T, gdb *gorm.DB, placeID string, lat, lng float64) *model.Cafe {
	t.Helper()
	cafe, err := NewCafeRepository(gdb).UpsertFromCatalogRecord(context.Background(), CatalogRecord{
		ExternalID: placeID,
		Name:       "Cafe " + placeID,
		Address:    "1 Main St",
		Latitude:   lat,
		Longitude:  lng,
	})
	require.NoError(t, err)
	return cafe
}
