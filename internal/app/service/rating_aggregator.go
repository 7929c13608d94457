package service

import (
	"context"
	"errors"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/app/repository"
	"github.com/ikkim/sipit-backend/internal/metrics"
	"github.com/ikkim/sipit-backend/pkg/logger"
	"github.com/ikkim/sipit-backend/pkg/util"
	"gorm.io/gorm"
)

// RatingAggregator 카페 평점 집계의 유일한 writer
// 평점 행을 먼저 잠근 뒤 전체 리뷰를 다시 읽어 절대값으로 저장
type RatingAggregator struct {
	reviewRepo repository.ReviewRepository
	cafeRepo   repository.CafeRepository
}

func NewRatingAggregator(reviewRepo repository.ReviewRepository, cafeRepo repository.CafeRepository) *RatingAggregator {
	return &RatingAggregator{reviewRepo: reviewRepo, cafeRepo: cafeRepo}
}

// Recompute rewrites the cafe's averages from its current review set.
// Pass the caller's transaction so the result commits with the review write.
func (a *RatingAggregator) Recompute(ctx context.Context, tx *gorm.DB, cafeID string) (*model.CafeRatings, error) {
	reviewRepo, cafeRepo := a.reviewRepo, a.cafeRepo
	if tx != nil {
		reviewRepo = reviewRepo.WithTx(tx)
		cafeRepo = cafeRepo.WithTx(tx)
	}

	// lock first: the review list must be read after any concurrent writer for this cafe commits
	ratings, err := cafeRepo.FindRatingsForUpdate(ctx, cafeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ratings = &model.CafeRatings{CafeID: cafeID}
	} else if err != nil {
		logger.Error("Failed to lock cafe ratings", err, map[string]interface{}{
			"cafe_id": cafeID,
		})
		return nil, err
	}

	reviews, err := reviewRepo.ListAllByCafe(ctx, cafeID)
	if err != nil {
		logger.Error("Failed to load reviews for rating recompute", err, map[string]interface{}{
			"cafe_id": cafeID,
		})
		return nil, err
	}

	applyAverages(ratings, reviews)

	if err := cafeRepo.SaveRatings(ctx, ratings); err != nil {
		logger.Error("Failed to save cafe ratings", err, map[string]interface{}{
			"cafe_id": cafeID,
		})
		return nil, err
	}

	metrics.ObserveRecompute()
	logger.Debug("Cafe ratings recomputed", map[string]interface{}{
		"cafe_id":       cafeID,
		"total_reviews": ratings.TotalReviews,
	})
	return ratings, nil
}

func applyAverages(ratings *model.CafeRatings, reviews []model.Review) {
	ratings.TotalReviews = len(reviews)
	if len(reviews) == 0 {
		ratings.AvgFood, ratings.AvgDrinks, ratings.AvgAmbience, ratings.AvgService = 0, 0, 0, 0
		return
	}

	var food, drinks, ambience, service float64
	for _, r := range reviews {
		food += r.FoodRating
		drinks += r.DrinksRating
		ambience += r.AmbienceRating
		service += r.ServiceRating
	}
	n := float64(len(reviews))
	ratings.AvgFood = util.RoundTo1(food / n)
	ratings.AvgDrinks = util.RoundTo1(drinks / n)
	ratings.AvgAmbience = util.RoundTo1(ambience / n)
	ratings.AvgService = util.RoundTo1(service / n)
}
