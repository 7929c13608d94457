package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCafeRepository_UpsertCreatesZeroRatings(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewCafeRepository(gdb)
	ctx := context.Background()

	cafe, err := repo.UpsertFromCatalogRecord(ctx, CatalogRecord{
		ExternalID: "p1",
		Name:       "Bean There",
		Address:    "1 Main St",
		Latitude:   37.5,
		Longitude:  127.0,
		Photos:     []string{"u1", "u2"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cafe.ID)
	require.NotNil(t, cafe.Ratings)
	assert.Equal(t, cafe.ID, cafe.Ratings.CafeID)
	assert.Zero(t, cafe.Ratings.TotalReviews)
	assert.Zero(t, cafe.Ratings.AvgFood)

	found, err := repo.FindByExternalID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.StringArray{"u1", "u2"}, found.Photos)
	require.NotNil(t, found.Ratings)

	var count int64
	require.NoError(t, gdb.Model(&model.CafeRatings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCafeRepository_UpsertUpdatesExisting(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewCafeRepository(gdb)
	ctx := context.Background()

	first, err := repo.UpsertFromCatalogRecord(ctx, CatalogRecord{ExternalID: "p1", Name: "Old", Address: "Old St"})
	require.NoError(t, err)

	require.NoError(t, gdb.Model(&model.CafeRatings{}).
		Where("cafe_id = ?", first.ID).
		Updates(map[string]interface{}{"avg_food": 4.5, "total_reviews": 2}).Error)

	second, err := repo.UpsertFromCatalogRecord(ctx, CatalogRecord{
		ExternalID: "p1",
		Name:       "New",
		Address:    "New St",
		Latitude:   1,
		Longitude:  2,
		Photos:     []string{"u3"},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "New", second.Name)
	assert.False(t, second.LastSyncedAt.Before(first.LastSyncedAt))

	reloaded, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "New St", reloaded.Address)
	assert.Equal(t, model.StringArray{"u3"}, reloaded.Photos)
	require.NotNil(t, reloaded.Ratings)
	assert.Equal(t, 4.5, reloaded.Ratings.AvgFood)
	assert.Equal(t, 2, reloaded.Ratings.TotalReviews)
}

func TestCafeRepository_UpsertConcurrentSingleRow(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewCafeRepository(gdb)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cafe, err := repo.UpsertFromCatalogRecord(ctx, CatalogRecord{ExternalID: "p1", Name: "Race", Address: "x"})
			errs[i] = err
			if cafe != nil {
				ids[i] = cafe.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	var cafes, ratings int64
	require.NoError(t, gdb.Model(&model.Cafe{}).Count(&cafes).Error)
	require.NoError(t, gdb.Model(&model.CafeRatings{}).Count(&ratings).Error)
	assert.Equal(t, int64(1), cafes)
	assert.Equal(t, int64(1), ratings)
}

func TestCafeRepository_GetOrFetch(t *testing.T) {
	repo := NewCafeRepository(setupTestDB(t))
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context, id string) (*CatalogRecord, error) {
		calls++
		if id == "missing" {
			return nil, nil
		}
		if id == "broken" {
			return nil, errors.New("provider down")
		}
		return &CatalogRecord{ExternalID: id, Name: "Fetched", Address: "Somewhere"}, nil
	}

	cafe, err := repo.GetOrFetch(ctx, "p1", fetch)
	require.NoError(t, err)
	assert.Equal(t, "Fetched", cafe.Name)
	assert.Equal(t, 1, calls)

	again, err := repo.GetOrFetch(ctx, "p1", fetch)
	require.NoError(t, err)
	assert.Equal(t, cafe.ID, again.ID)
	assert.Equal(t, 1, calls)

	_, err = repo.GetOrFetch(ctx, "missing", fetch)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetOrFetch(ctx, "broken", fetch)
	assert.EqualError(t, err, "provider down")
}

func TestCafeRepository_TouchAndListStale(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewCafeRepository(gdb)
	ctx := context.Background()

	old := createCafe(t, gdb, "old", 0, 0)
	createCafe(t, gdb, "fresh", 0, 0)
	require.NoError(t, gdb.Model(&model.Cafe{}).
		Where("id = ?", old.ID).
		Update("last_synced_at", time.Now().Add(-30*24*time.Hour)).Error)

	stale, err := repo.ListStale(ctx, time.Now().Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "old", stale[0].GooglePlaceID)

	require.NoError(t, repo.Touch(ctx, "old"))
	stale, err = repo.ListStale(ctx, time.Now().Add(-24*time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestCafeRepository_SaveRatings(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewCafeRepository(gdb)
	ctx := context.Background()

	cafe := createCafe(t, gdb, "p1", 0, 0)
	ratings, err := repo.FindRatings(ctx, cafe.ID)
	require.NoError(t, err)

	ratings.AvgFood = 3.5
	ratings.TotalReviews = 4
	require.NoError(t, repo.SaveRatings(ctx, ratings))

	ratings.AvgFood = 0
	ratings.TotalReviews = 0
	require.NoError(t, repo.SaveRatings(ctx, ratings))

	got, err := repo.FindRatings(ctx, cafe.ID)
	require.NoError(t, err)
	assert.Zero(t, got.AvgFood)
	assert.Zero(t, got.TotalReviews)
}

func TestCafeRepository_FindRatingsForUpdate(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewCafeRepository(gdb)
	ctx := context.Background()

	cafe := createCafe(t, gdb, "p1", 0, 0)

	err := gdb.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).FindRatingsForUpdate(ctx, cafe.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, cafe.ID, locked.CafeID)

		locked.TotalReviews = 2
		return repo.WithTx(tx).SaveRatings(ctx, locked)
	})
	require.NoError(t, err)

	got, err := repo.FindRatings(ctx, cafe.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalReviews)

	_, err = repo.FindRatingsForUpdate(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
