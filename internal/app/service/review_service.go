package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/app/repository"
	apperrors "github.com/ikkim/sipit-backend/internal/errors"
	"github.com/ikkim/sipit-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	defaultReviewPageSize = 20
	maxReviewPageSize     = 100
)

type CreateReviewInput struct {
	CafeID         string
	FoodRating     float64
	DrinksRating   float64
	AmbienceRating float64
	ServiceRating  float64
	Comment        *string
	Photos         []string
	MoodTags       []string
}

// UpdateReviewInput nil 필드는 변경하지 않음
type UpdateReviewInput struct {
	FoodRating     *float64
	DrinksRating   *float64
	AmbienceRating *float64
	ServiceRating  *float64
	Comment        *string
	Photos         []string
	MoodTags       []string
}

// ReviewPhoto 리뷰에 첨부된 사진 한 장
type ReviewPhoto struct {
	URL       string      `json:"url"`
	ReviewID  string      `json:"review_id"`
	User      *model.User `json:"user,omitempty"`
	Cafe      *model.Cafe `json:"cafe,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type ReviewPage struct {
	Reviews    []model.Review `json:"reviews"`
	Pagination Pagination     `json:"pagination"`
}

type ReviewService interface {
	Create(ctx context.Context, actor Actor, input CreateReviewInput) (*model.Review, error)
	Update(ctx context.Context, reviewID, userID string, input UpdateReviewInput) (*model.Review, error)
	Delete(ctx context.Context, reviewID, userID string) error
	Get(ctx context.Context, reviewID string) (*model.Review, error)
	ListForCafe(ctx context.Context, cafeID string, page, limit int) (*ReviewPage, error)
	ListForUser(ctx context.Context, userID string, page, limit int) (*ReviewPage, error)
	CafePhotos(ctx context.Context, placeID string) ([]ReviewPhoto, error)
	UserPhotos(ctx context.Context, userID string) ([]ReviewPhoto, error)
}

type reviewService struct {
	db               *gorm.DB
	reviewRepo       repository.ReviewRepository
	cafeRepo         repository.CafeRepository
	followRepo       repository.FollowRepository
	notificationRepo repository.NotificationRepository
	aggregator       *RatingAggregator
	nearbyCache      NearbyCache
	dispatcher       NotificationDispatcher
}

func NewReviewService(
	db *gorm.DB,
	reviewRepo repository.ReviewRepository,
	cafeRepo repository.CafeRepository,
	followRepo repository.FollowRepository,
	notificationRepo repository.NotificationRepository,
	aggregator *RatingAggregator,
	nearbyCache NearbyCache,
	dispatcher NotificationDispatcher,
) ReviewService {
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	return &reviewService{
		db:               db,
		reviewRepo:       reviewRepo,
		cafeRepo:         cafeRepo,
		followRepo:       followRepo,
		notificationRepo: notificationRepo,
		aggregator:       aggregator,
		nearbyCache:      nearbyCache,
		dispatcher:       dispatcher,
	}
}

func (s *reviewService) Create(ctx context.Context, actor Actor, input CreateReviewInput) (*model.Review, error) {
	logger.Info("Creating review", map[string]interface{}{
		"user_id": actor.UserID,
		"cafe_id": input.CafeID,
	})

	cafe, err := s.cafeRepo.FindByID(ctx, input.CafeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCafeNotFound
		}
		return nil, err
	}

	if _, err := s.reviewRepo.FindByUserAndCafe(ctx, actor.UserID, cafe.ID); err == nil {
		logger.Warn("Review already exists for user and cafe", map[string]interface{}{
			"user_id": actor.UserID,
			"cafe_id": cafe.ID,
		})
		return nil, ErrReviewAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &model.Review{
		UserID:         actor.UserID,
		CafeID:         cafe.ID,
		FoodRating:     input.FoodRating,
		DrinksRating:   input.DrinksRating,
		AmbienceRating: input.AmbienceRating,
		ServiceRating:  input.ServiceRating,
		Comment:        input.Comment,
		Photos:         model.StringArray(input.Photos),
		MoodTags:       model.StringArray(input.MoodTags),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reviewRepo.WithTx(tx).Create(ctx, review); err != nil {
			return err
		}
		_, err := s.aggregator.Recompute(ctx, tx, cafe.ID)
		return err
	})
	if err != nil {
		// 동시 요청이 먼저 생성한 경우
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrReviewAlreadyExists
		}
		logger.Error("Failed to create review", err, map[string]interface{}{
			"user_id": actor.UserID,
			"cafe_id": cafe.ID,
		})
		return nil, err
	}

	invalidateNearby(ctx, s.nearbyCache)
	s.notifyFollowers(ctx, actor, cafe, review)

	created, err := s.reviewRepo.FindByID(ctx, review.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Review created", map[string]interface{}{
		"review_id": review.ID,
		"cafe_id":   cafe.ID,
	})
	return created, nil
}

func (s *reviewService) Update(ctx context.Context, reviewID, userID string, input UpdateReviewInput) (*model.Review, error) {
	review, err := s.ownedReview(ctx, reviewID, userID)
	if err != nil {
		return nil, err
	}

	if input.FoodRating != nil {
		review.FoodRating = *input.FoodRating
	}
	if input.DrinksRating != nil {
		review.DrinksRating = *input.DrinksRating
	}
	if input.AmbienceRating != nil {
		review.AmbienceRating = *input.AmbienceRating
	}
	if input.ServiceRating != nil {
		review.ServiceRating = *input.ServiceRating
	}
	if input.Comment != nil {
		review.Comment = input.Comment
	}
	if input.Photos != nil {
		review.Photos = model.StringArray(input.Photos)
	}
	if input.MoodTags != nil {
		review.MoodTags = model.StringArray(input.MoodTags)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reviewRepo.WithTx(tx).Update(ctx, review); err != nil {
			return err
		}
		_, err := s.aggregator.Recompute(ctx, tx, review.CafeID)
		return err
	})
	if err != nil {
		logger.Error("Failed to update review", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return nil, err
	}

	invalidateNearby(ctx, s.nearbyCache)
	return s.reviewRepo.FindByID(ctx, reviewID)
}

func (s *reviewService) Delete(ctx context.Context, reviewID, userID string) error {
	review, err := s.ownedReview(ctx, reviewID, userID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reviewRepo.WithTx(tx).Delete(ctx, review.ID); err != nil {
			return err
		}
		_, err := s.aggregator.Recompute(ctx, tx, review.CafeID)
		return err
	})
	if err != nil {
		logger.Error("Failed to delete review", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return err
	}

	invalidateNearby(ctx, s.nearbyCache)
	logger.Info("Review deleted", map[string]interface{}{
		"review_id": reviewID,
		"cafe_id":   review.CafeID,
	})
	return nil
}

func (s *reviewService) Get(ctx context.Context, reviewID string) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) ListForCafe(ctx context.Context, cafeID string, page, limit int) (*ReviewPage, error) {
	page, limit, offset := normalizePage(page, limit, defaultReviewPageSize, maxReviewPageSize)

	reviews, total, err := s.reviewRepo.ListByCafe(ctx, cafeID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ReviewPage{Reviews: reviews, Pagination: newPagination(page, limit, total)}, nil
}

func (s *reviewService) ListForUser(ctx context.Context, userID string, page, limit int) (*ReviewPage, error) {
	page, limit, offset := normalizePage(page, limit, defaultReviewPageSize, maxReviewPageSize)

	reviews, total, err := s.reviewRepo.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ReviewPage{Reviews: reviews, Pagination: newPagination(page, limit, total)}, nil
}

// CafePhotos 카페 리뷰 사진 (최신 리뷰 순)
func (s *reviewService) CafePhotos(ctx context.Context, placeID string) ([]ReviewPhoto, error) {
	cafe, err := s.cafeRepo.FindByExternalID(ctx, placeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCafeNotFound
		}
		return nil, err
	}

	reviews, err := s.reviewRepo.ListWithPhotosByCafe(ctx, cafe.ID)
	if err != nil {
		return nil, err
	}
	return flattenPhotos(reviews), nil
}

// UserPhotos 사용자 리뷰 사진 (최신 리뷰 순)
func (s *reviewService) UserPhotos(ctx context.Context, userID string) ([]ReviewPhoto, error) {
	reviews, err := s.reviewRepo.ListWithPhotosByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return flattenPhotos(reviews), nil
}

func (s *reviewService) ownedReview(ctx context.Context, reviewID, userID string) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.UserID != userID {
		logger.Warn("Review modification forbidden", map[string]interface{}{
			"review_id": reviewID,
			"user_id":   userID,
		})
		return nil, ErrNotReviewOwner
	}
	review.User = nil
	review.Cafe = nil
	return review, nil
}

// invalidateNearby 주변 카페 캐시 전체 삭제 (실패는 경고만)
func invalidateNearby(ctx context.Context, cache NearbyCache) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateAll(ctx); err != nil {
		logger.Warn("Failed to invalidate nearby cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// notifyFollowers 친구 리뷰 알림 (실패해도 리뷰 생성은 성공)
func (s *reviewService) notifyFollowers(ctx context.Context, actor Actor, cafe *model.Cafe, review *model.Review) {
	recipients, err := s.followRepo.ActivityRecipients(ctx, actor.UserID)
	if err != nil {
		logger.Warn("Failed to load notification recipients", map[string]interface{}{
			"user_id": actor.UserID,
			"error":   err.Error(),
		})
		return
	}
	if len(recipients) == 0 {
		return
	}

	notifications := make([]model.Notification, 0, len(recipients))
	for _, recipientID := range recipients {
		notifications = append(notifications, model.Notification{
			UserID: recipientID,
			Type:   model.NotificationTypeFriendReview,
			Title:  "New Review",
			Body:   fmt.Sprintf("%s reviewed %s", actor.Email, cafe.Name),
			Data: model.JSONMap{
				"reviewId": review.ID,
				"cafeId":   cafe.ID,
				"userId":   actor.UserID,
			},
		})
	}

	if err := s.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		logger.Warn("Failed to create friend review notifications", map[string]interface{}{
			"review_id": review.ID,
			"count":     len(notifications),
			"error":     err.Error(),
		})
		return
	}

	for i := range notifications {
		s.dispatcher.Dispatch(notifications[i].UserID, &notifications[i])
	}
	logger.Info("Friend review notifications sent", map[string]interface{}{
		"review_id": review.ID,
		"count":     len(notifications),
	})
}

func flattenPhotos(reviews []model.Review) []ReviewPhoto {
	photos := make([]ReviewPhoto, 0)
	for _, r := range reviews {
		for _, url := range r.Photos {
			photos = append(photos, ReviewPhoto{
				URL:       url,
				ReviewID:  r.ID,
				User:      r.User,
				Cafe:      r.Cafe,
				CreatedAt: r.CreatedAt,
			})
		}
	}
	return photos
}
