package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	DefaultPreferredRadiusKm = 5.0
	MinPreferredRadiusKm     = 0.5
	MaxPreferredRadiusKm     = 50.0

	// MoodPromptInterval is how long a mood selection stays current
	MoodPromptInterval = 6 * time.Hour
)

// UserPreferences 사용자별 설정 (1:1)
type UserPreferences struct {
	ID                   string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID               string        `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	CurrentMoodMetric    *RatingMetric `gorm:"type:varchar(20)" json:"current_mood_metric,omitempty"` // 현재 기분 (우선 평가 항목)
	LastMoodUpdate       *time.Time    `json:"last_mood_update,omitempty"`
	PreferredRadiusKm    float64       `gorm:"not null" json:"preferred_radius_km"`
	NotifyNewCafes       bool          `gorm:"not null" json:"notify_new_cafes"`
	NotifyFriendActivity bool          `gorm:"not null" json:"notify_friend_activity"` // 팔로우한 사용자 리뷰 알림
	NotifyWeekly         bool          `gorm:"not null" json:"notify_weekly"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}

func (p *UserPreferences) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}

// DefaultPreferences 신규 사용자 기본 설정
func DefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:               userID,
		PreferredRadiusKm:    DefaultPreferredRadiusKm,
		NotifyNewCafes:       true,
		NotifyFriendActivity: true,
		NotifyWeekly:         false,
	}
}

// MoodPromptDue reports whether the user should be asked for their mood again
func (p *UserPreferences) MoodPromptDue(now time.Time) bool {
	if p.LastMoodUpdate == nil {
		return true
	}
	return now.Sub(*p.LastMoodUpdate) >= MoodPromptInterval
}
