package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/app/repository"
	apperrors "github.com/ikkim/sipit-backend/internal/errors"
	"github.com/ikkim/sipit-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	defaultUserSearchLimit = 20
	maxUserSearchLimit     = 50
	defaultFollowPageSize  = 20
	maxFollowPageSize      = 100
)

// UpdateProfileInput nil 필드는 변경하지 않음
type UpdateProfileInput struct {
	Name              *string
	PhoneNumber       *string
	Birthday          *time.Time
	PersonalityType   *string
	ProfilePictureURL *string
}

// UserProfile 다른 사용자에게 보이는 프로필
type UserProfile struct {
	model.User
	ReviewsCount      int64               `json:"reviews_count"`
	FollowersCount    int64               `json:"followers_count"`
	FollowingCount    int64               `json:"following_count"`
	CafesVisitedCount int64               `json:"cafes_visited_count"`
	Expertise         *model.RatingMetric `json:"expertise"`
	IsFollowing       bool                `json:"is_following"`
}

type UserPage struct {
	Users      []model.User `json:"users"`
	Pagination Pagination   `json:"pagination"`
}

type UserService interface {
	Register(ctx context.Context, email, name string) (*model.User, error)
	GetMe(ctx context.Context, userID string) (*model.User, error)
	UpdateMe(ctx context.Context, userID string, input UpdateProfileInput) (*model.User, error)
	GetProfile(ctx context.Context, userID, viewerID string) (*UserProfile, error)
	Search(ctx context.Context, query string, limit int) ([]model.User, error)
	Follow(ctx context.Context, follower Actor, targetID string) error
	Unfollow(ctx context.Context, followerID, targetID string) error
	Followers(ctx context.Context, userID string, page, limit int) (*UserPage, error)
	Following(ctx context.Context, userID string, page, limit int) (*UserPage, error)
}

type userService struct {
	db               *gorm.DB
	userRepo         repository.UserRepository
	prefsRepo        repository.PreferencesRepository
	followRepo       repository.FollowRepository
	reviewRepo       repository.ReviewRepository
	notificationRepo repository.NotificationRepository
	dispatcher       NotificationDispatcher
}

func NewUserService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	prefsRepo repository.PreferencesRepository,
	followRepo repository.FollowRepository,
	reviewRepo repository.ReviewRepository,
	notificationRepo repository.NotificationRepository,
	dispatcher NotificationDispatcher,
) UserService {
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	return &userService{
		db:               db,
		userRepo:         userRepo,
		prefsRepo:        prefsRepo,
		followRepo:       followRepo,
		reviewRepo:       reviewRepo,
		notificationRepo: notificationRepo,
		dispatcher:       dispatcher,
	}
}

// Register 인증 제공자에서 확인된 이메일로 로컬 사용자와 기본 설정 생성
func (s *userService) Register(ctx context.Context, email, name string) (*model.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" {
		return nil, validationError(apperrors.ValidationRequired, "Email is required")
	}
	if name == "" {
		return nil, validationError(apperrors.ValidationRequired, "Name is required")
	}

	logger.Info("Registering user", map[string]interface{}{
		"email": email,
	})

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{Email: email, Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		prefs := model.DefaultPreferences(user.ID)
		if err := s.prefsRepo.WithTx(tx).Create(ctx, prefs); err != nil {
			return err
		}
		user.Preferences = prefs
		return nil
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		logger.Error("Failed to register user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

func (s *userService) GetMe(ctx context.Context, userID string) (*model.User, error) {
	return s.findUser(ctx, userID)
}

func (s *userService) UpdateMe(ctx context.Context, userID string, input UpdateProfileInput) (*model.User, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, validationError(apperrors.ValidationRequired, "Name cannot be empty")
		}
		user.Name = name
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = input.PhoneNumber
	}
	if input.Birthday != nil {
		user.Birthday = input.Birthday
	}
	if input.PersonalityType != nil {
		user.PersonalityType = input.PersonalityType
	}
	if input.ProfilePictureURL != nil {
		user.ProfilePictureURL = input.ProfilePictureURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.Error("Failed to update user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID, viewerID string) (*UserProfile, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &UserProfile{User: *user}
	profile.Preferences = nil

	reviews, err := s.reviewRepo.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.ReviewsCount = int64(len(reviews))
	if metric, ok := ExpertiseBadge(reviews); ok {
		profile.Expertise = &metric
	}

	if profile.CafesVisitedCount, err = s.reviewRepo.CountCafesByUser(ctx, userID); err != nil {
		return nil, err
	}
	if profile.FollowersCount, err = s.followRepo.CountFollowers(ctx, userID); err != nil {
		return nil, err
	}
	if profile.FollowingCount, err = s.followRepo.CountFollowing(ctx, userID); err != nil {
		return nil, err
	}
	if viewerID != "" && viewerID != userID {
		if profile.IsFollowing, err = s.followRepo.Exists(ctx, viewerID, userID); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func (s *userService) Search(ctx context.Context, query string, limit int) ([]model.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationError(apperrors.ValidationRequired, "Search query is required")
	}
	if limit <= 0 {
		limit = defaultUserSearchLimit
	}
	if limit > maxUserSearchLimit {
		limit = maxUserSearchLimit
	}
	return s.userRepo.Search(ctx, query, limit)
}

func (s *userService) Follow(ctx context.Context, follower Actor, targetID string) error {
	if follower.UserID == targetID {
		return ErrSelfFollow
	}
	if _, err := s.findUser(ctx, targetID); err != nil {
		return err
	}

	exists, err := s.followRepo.Exists(ctx, follower.UserID, targetID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyFollowing
	}

	follow := &model.Follow{FollowerID: follower.UserID, FollowingID: targetID}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return ErrAlreadyFollowing
		}
		logger.Error("Failed to create follow", err, map[string]interface{}{
			"follower_id":  follower.UserID,
			"following_id": targetID,
		})
		return err
	}

	logger.Info("User followed", map[string]interface{}{
		"follower_id":  follower.UserID,
		"following_id": targetID,
	})

	notification := &model.Notification{
		UserID: targetID,
		Type:   model.NotificationTypeNewFollower,
		Title:  "New Follower",
		Body:   fmt.Sprintf("%s started following you", follower.Email),
		Data:   model.JSONMap{"followerId": follower.UserID},
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		logger.Warn("Failed to create follower notification", map[string]interface{}{
			"user_id": targetID,
			"error":   err.Error(),
		})
		return nil
	}
	s.dispatcher.Dispatch(targetID, notification)
	return nil
}

func (s *userService) Unfollow(ctx context.Context, followerID, targetID string) error {
	deleted, err := s.followRepo.Delete(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrFollowNotFound
	}
	return nil
}

func (s *userService) Followers(ctx context.Context, userID string, page, limit int) (*UserPage, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}
	page, limit, offset := normalizePage(page, limit, defaultFollowPageSize, maxFollowPageSize)

	users, total, err := s.followRepo.ListFollowers(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Pagination: newPagination(page, limit, total)}, nil
}

func (s *userService) Following(ctx context.Context, userID string, page, limit int) (*UserPage, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}
	page, limit, offset := normalizePage(page, limit, defaultFollowPageSize, maxFollowPageSize)

	users, total, err := s.followRepo.ListFollowing(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Pagination: newPagination(page, limit, total)}, nil
}

func (s *userService) findUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
