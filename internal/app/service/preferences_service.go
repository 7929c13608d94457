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

// UpdatePreferencesInput nil 필드는 변경하지 않음
type UpdatePreferencesInput struct {
	MoodMetric           *model.RatingMetric
	PreferredRadiusKm    *float64
	NotifyNewCafes       *bool
	NotifyFriendActivity *bool
	NotifyWeekly         *bool
}

// MoodPrompt 기분 선택 화면 표시 여부
type MoodPrompt struct {
	ShouldShowPrompt  bool                `json:"should_show_prompt"`
	LastMoodUpdate    *time.Time          `json:"last_mood_update"`
	CurrentMoodMetric *model.RatingMetric `json:"current_mood_metric"`
}

type PreferencesService interface {
	Get(ctx context.Context, userID string) (*model.UserPreferences, error)
	Update(ctx context.Context, userID string, input UpdatePreferencesInput) (*model.UserPreferences, error)
	MoodPrompt(ctx context.Context, userID string) (*MoodPrompt, error)
}

type preferencesService struct {
	repo  repository.PreferencesRepository
	cache PreferencesCache
	now   func() time.Time
}

func NewPreferencesService(repo repository.PreferencesRepository, cache PreferencesCache) PreferencesService {
	return &preferencesService{repo: repo, cache: cache, now: time.Now}
}

// Get 캐시 우선 조회, 설정이 없으면 기본값으로 생성
func (s *preferencesService) Get(ctx context.Context, userID string) (*model.UserPreferences, error) {
	if s.cache != nil {
		if prefs, ok := s.cache.Get(ctx, userID); ok {
			return prefs, nil
		}
	}

	prefs, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, prefs)
	}
	return prefs, nil
}

func (s *preferencesService) load(ctx context.Context, userID string) (*model.UserPreferences, error) {
	prefs, err := s.repo.FindByUserID(ctx, userID)
	if err == nil {
		return prefs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	prefs = model.DefaultPreferences(userID)
	if err := s.repo.Create(ctx, prefs); err != nil {
		// 동시 요청이 먼저 생성한 경우
		if apperrors.IsUniqueViolation(err) {
			return s.repo.FindByUserID(ctx, userID)
		}
		return nil, err
	}
	logger.Info("Default preferences created", map[string]interface{}{
		"user_id": userID,
	})
	return prefs, nil
}

func (s *preferencesService) Update(ctx context.Context, userID string, input UpdatePreferencesInput) (*model.UserPreferences, error) {
	if input.MoodMetric != nil && !input.MoodMetric.IsValid() {
		return nil, validationError(apperrors.ValidationInvalidInput, "moodMetric must be one of FOOD, DRINKS, AMBIENCE, SERVICE")
	}
	if r := input.PreferredRadiusKm; r != nil && (*r < model.MinPreferredRadiusKm || *r > model.MaxPreferredRadiusKm) {
		return nil, validationError(apperrors.ValidationInvalidRange, "Radius must be between 0.5 and 50 km")
	}

	prefs, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.MoodMetric != nil {
		metric := *input.MoodMetric
		now := s.now()
		prefs.CurrentMoodMetric = &metric
		prefs.LastMoodUpdate = &now
	}
	if input.PreferredRadiusKm != nil {
		prefs.PreferredRadiusKm = *input.PreferredRadiusKm
	}
	if input.NotifyNewCafes != nil {
		prefs.NotifyNewCafes = *input.NotifyNewCafes
	}
	if input.NotifyFriendActivity != nil {
		prefs.NotifyFriendActivity = *input.NotifyFriendActivity
	}
	if input.NotifyWeekly != nil {
		prefs.NotifyWeekly = *input.NotifyWeekly
	}

	if err := s.repo.Update(ctx, prefs); err != nil {
		logger.Error("Failed to update preferences", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	return prefs, nil
}

func (s *preferencesService) MoodPrompt(ctx context.Context, userID string) (*MoodPrompt, error) {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MoodPrompt{
		ShouldShowPrompt:  prefs.MoodPromptDue(s.now()),
		LastMoodUpdate:    prefs.LastMoodUpdate,
		CurrentMoodMetric: prefs.CurrentMoodMetric,
	}, nil
}
