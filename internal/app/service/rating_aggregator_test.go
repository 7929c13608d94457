package service

import (
	"context"
	"testing"
	"time"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRatingAggregator_Recompute(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	cafe := env.createCafe(t, "p1", 0, 0)

	tests := []struct {
		name   string
		scores [][4]float64
		want   [4]float64
	}{
		{name: "No reviews", scores: nil, want: [4]float64{0, 0, 0, 0}},
		{name: "Single review", scores: [][4]float64{{4.5, 3, 2, 1}}, want: [4]float64{4.5, 3, 2, 1}},
		{name: "Rounds half up", scores: [][4]float64{{4, 2, 1, 5}, {5, 2.5, 1, 4}, {5, 2, 1.5, 4}}, want: [4]float64{4.7, 2.2, 1.2, 4.3}},
		{name: "Exact half", scores: [][4]float64{{2, 1, 3, 3}, {2.5, 1.5, 3.5, 3}}, want: [4]float64{2.3, 1.3, 3.3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, env.db.Where("1 = 1").Delete(&model.Review{}).Error)
			for i, s := range tt.scores {
				user := env.createUser(t, tt.name+string(rune('a'+i))+"@example.com")
				require.NoError(t, env.reviews.Create(ctx, &model.Review{
					UserID: user.ID, CafeID: cafe.ID,
					FoodRating: s[0], DrinksRating: s[1], AmbienceRating: s[2], ServiceRating: s[3],
				}))
			}

			ratings, err := env.aggregator.Recompute(ctx, nil, cafe.ID)
			require.NoError(t, err)
			assert.Equal(t, len(tt.scores), ratings.TotalReviews)
			assert.Equal(t, tt.want, [4]float64{ratings.AvgFood, ratings.AvgDrinks, ratings.AvgAmbience, ratings.AvgService})

			stored, err := env.cafes.FindRatings(ctx, cafe.ID)
			require.NoError(t, err)
			assert.Equal(t, ratings.AvgFood, stored.AvgFood)
			assert.Equal(t, ratings.TotalReviews, stored.TotalReviews)
		})
	}
}

func TestRatingAggregator_Idempotent(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	cafe := env.createCafe(t, "p1", 0, 0)
	user := env.createUser(t, "a@example.com")
	require.NoError(t, env.reviews.Create(ctx, &model.Review{
		UserID: user.ID, CafeID: cafe.ID, FoodRating: 3.3, DrinksRating: 4, AmbienceRating: 2, ServiceRating: 5,
	}))

	first, err := env.aggregator.Recompute(ctx, nil, cafe.ID)
	require.NoError(t, err)
	second, err := env.aggregator.Recompute(ctx, nil, cafe.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.AvgFood, second.AvgFood)
	assert.Equal(t, first.TotalReviews, second.TotalReviews)
}

func TestRatingAggregator_CreatesMissingRow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	cafe := env.createCafe(t, "p1", 0, 0)
	require.NoError(t, env.db.Where("cafe_id = ?", cafe.ID).Delete(&model.CafeRatings{}).Error)

	ratings, err := env.aggregator.Recompute(ctx, nil, cafe.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, ratings.ID)
	assert.Zero(t, ratings.TotalReviews)
}

func TestRatingAggregator_RollsBackWithTransaction(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	cafe := env.createCafe(t, "p1", 0, 0)
	user := env.createUser(t, "a@example.com")

	err := env.db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, env.reviews.WithTx(tx).Create(ctx, &model.Review{
			UserID: user.ID, CafeID: cafe.ID, FoodRating: 5, DrinksRating: 5, AmbienceRating: 5, ServiceRating: 5,
			CreatedAt: time.Now(),
		}))
		_, err := env.aggregator.Recompute(ctx, tx, cafe.ID)
		require.NoError(t, err)
		return gorm.ErrInvalidTransaction
	})
	require.Error(t, err)

	ratings, err := env.cafes.FindRatings(ctx, cafe.ID)
	require.NoError(t, err)
	assert.Zero(t, ratings.TotalReviews)
	assert.Zero(t, ratings.AvgFood)
}
