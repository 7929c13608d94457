package service

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/app/repository"
	apperrors "github.com/ikkim/sipit-backend/internal/errors"
	"github.com/ikkim/sipit-backend/pkg/logger"
	"gorm.io/gorm"
)

// CollectedCafe 저장·방문 목록 항목
type CollectedCafe struct {
	model.Cafe
	FollowersCount int64     `json:"followers_count"`
	ReviewsCount   int64     `json:"reviews_count"`
	AddedAt        time.Time `json:"added_at"`
}

// CollectionService 저장한 카페와 방문한 카페 관리 (카페는 외부 장소 ID로 지정)
type CollectionService interface {
	Save(ctx context.Context, userID, placeID string) error
	Unsave(ctx context.Context, userID, placeID string) error
	IsSaved(ctx context.Context, userID, placeID string) (bool, error)
	ListSaved(ctx context.Context, userID string) ([]CollectedCafe, error)
	MarkVisited(ctx context.Context, userID, placeID string) error
	UnmarkVisited(ctx context.Context, userID, placeID string) error
	IsVisited(ctx context.Context, userID, placeID string) (bool, error)
	ListVisited(ctx context.Context, userID string) ([]CollectedCafe, error)
}

type collectionService struct {
	collectionRepo repository.CollectionRepository
	cafeRepo       repository.CafeRepository
	reviewRepo     repository.ReviewRepository
}

func NewCollectionService(
	collectionRepo repository.CollectionRepository,
	cafeRepo repository.CafeRepository,
	reviewRepo repository.ReviewRepository,
) CollectionService {
	return &collectionService{
		collectionRepo: collectionRepo,
		cafeRepo:       cafeRepo,
		reviewRepo:     reviewRepo,
	}
}

var errCafeNotLoaded = &Error{
	Kind:    ErrNotFound,
	Code:    apperrors.CafeNotFound,
	Message: "Cafe not found. Please visit the cafe profile first to load it into the system.",
}

func (s *collectionService) Save(ctx context.Context, userID, placeID string) error {
	cafe, err := s.knownCafe(ctx, placeID, errCafeNotLoaded)
	if err != nil {
		return err
	}

	saved, err := s.collectionRepo.IsSaved(ctx, userID, cafe.ID)
	if err != nil {
		return err
	}
	if saved {
		return ErrCafeAlreadySaved
	}

	if err := s.collectionRepo.Save(ctx, &model.SavedCafe{UserID: userID, CafeID: cafe.ID}); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return ErrCafeAlreadySaved
		}
		return err
	}

	logger.Info("Cafe saved", map[string]interface{}{
		"user_id": userID,
		"cafe_id": cafe.ID,
	})
	return nil
}

func (s *collectionService) Unsave(ctx context.Context, userID, placeID string) error {
	cafe, err := s.knownCafe(ctx, placeID, ErrCafeNotFound)
	if err != nil {
		return err
	}
	deleted, err := s.collectionRepo.Unsave(ctx, userID, cafe.ID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrSavedCafeNotFound
	}
	return nil
}

func (s *collectionService) IsSaved(ctx context.Context, userID, placeID string) (bool, error) {
	cafe, err := s.cafeRepo.FindByExternalID(ctx, placeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.collectionRepo.IsSaved(ctx, userID, cafe.ID)
}

func (s *collectionService) ListSaved(ctx context.Context, userID string) ([]CollectedCafe, error) {
	saved, err := s.collectionRepo.ListSaved(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]CollectedCafe, 0, len(saved))
	for _, entry := range saved {
		item, err := s.collected(ctx, entry.Cafe, entry.CreatedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *collectionService) MarkVisited(ctx context.Context, userID, placeID string) error {
	cafe, err := s.knownCafe(ctx, placeID, errCafeNotLoaded)
	if err != nil {
		return err
	}

	visited, err := s.collectionRepo.IsVisited(ctx, userID, cafe.ID)
	if err != nil {
		return err
	}
	if visited {
		return ErrCafeAlreadyVisited
	}

	if err := s.collectionRepo.MarkVisited(ctx, &model.VisitedCafe{UserID: userID, CafeID: cafe.ID}); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return ErrCafeAlreadyVisited
		}
		return err
	}

	logger.Info("Cafe marked as visited", map[string]interface{}{
		"user_id": userID,
		"cafe_id": cafe.ID,
	})
	return nil
}

func (s *collectionService) UnmarkVisited(ctx context.Context, userID, placeID string) error {
	cafe, err := s.knownCafe(ctx, placeID, ErrCafeNotFound)
	if err != nil {
		return err
	}
	deleted, err := s.collectionRepo.UnmarkVisited(ctx, userID, cafe.ID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrVisitedCafeNotFound
	}
	return nil
}

func (s *collectionService) IsVisited(ctx context.Context, userID, placeID string) (bool, error) {
	cafe, err := s.cafeRepo.FindByExternalID(ctx, placeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.collectionRepo.IsVisited(ctx, userID, cafe.ID)
}

func (s *collectionService) ListVisited(ctx context.Context, userID string) ([]CollectedCafe, error) {
	visited, err := s.collectionRepo.ListVisited(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]CollectedCafe, 0, len(visited))
	for _, entry := range visited {
		item, err := s.collected(ctx, entry.Cafe, entry.CreatedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *collectionService) knownCafe(ctx context.Context, placeID string, notFound error) (*model.Cafe, error) {
	cafe, err := s.cafeRepo.FindByExternalID(ctx, placeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return cafe, nil
}

func (s *collectionService) collected(ctx context.Context, cafe *model.Cafe, addedAt time.Time) (CollectedCafe, error) {
	item := CollectedCafe{AddedAt: addedAt}
	if cafe == nil {
		return item, nil
	}
	item.Cafe = *cafe

	var err error
	if item.FollowersCount, err = s.cafeRepo.CountFollowers(ctx, cafe.ID); err != nil {
		return item, err
	}
	if item.ReviewsCount, err = s.reviewRepo.CountByCafe(ctx, cafe.ID); err != nil {
		return item, err
	}
	return item, nil
}
