package service

import (
	"context"

	"github.com/ikkim/sipit-backend/internal/app/repository"
	apperrors "github.com/ikkim/sipit-backend/internal/errors"
	"github.com/ikkim/sipit-backend/pkg/util"
)

const (
	DefaultDiscoverRadiusKm = 10.0
	defaultFeedPageSize     = 20
	maxFeedPageSize         = 100
)

// DiscoverQuery 좌표가 없으면 전체 리뷰를 최신순으로 조회
type DiscoverQuery struct {
	Lat      *float64
	Lng      *float64
	RadiusKm float64
	Page     int
	Limit    int
}

type FeedService interface {
	Following(ctx context.Context, userID string, page, limit int) (*ReviewPage, error)
	Discover(ctx context.Context, query DiscoverQuery) (*ReviewPage, error)
}

type feedService struct {
	reviewRepo repository.ReviewRepository
	followRepo repository.FollowRepository
}

func NewFeedService(reviewRepo repository.ReviewRepository, followRepo repository.FollowRepository) FeedService {
	return &feedService{reviewRepo: reviewRepo, followRepo: followRepo}
}

// Following 팔로우한 사용자들의 리뷰 (최신순)
func (s *feedService) Following(ctx context.Context, userID string, page, limit int) (*ReviewPage, error) {
	page, limit, offset := normalizePage(page, limit, defaultFeedPageSize, maxFeedPageSize)

	ids, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	reviews, total, err := s.reviewRepo.ListByUsers(ctx, ids, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ReviewPage{Reviews: reviews, Pagination: newPagination(page, limit, total)}, nil
}

// Discover 주변(±radiusKm/111도) 카페의 리뷰
func (s *feedService) Discover(ctx context.Context, query DiscoverQuery) (*ReviewPage, error) {
	page, limit, offset := normalizePage(query.Page, query.Limit, defaultFeedPageSize, maxFeedPageSize)

	var box *util.BoundingBox
	if query.Lat != nil && query.Lng != nil {
		radius := query.RadiusKm
		if radius == 0 {
			radius = DefaultDiscoverRadiusKm
		}
		if radius < 0 {
			return nil, validationError(apperrors.ValidationInvalidRange, "Radius must be positive")
		}
		b := util.BoxAround(*query.Lat, *query.Lng, radius)
		box = &b
	}

	reviews, total, err := s.reviewRepo.ListInBox(ctx, box, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ReviewPage{Reviews: reviews, Pagination: newPagination(page, limit, total)}, nil
}
