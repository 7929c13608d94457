package model

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeFriendReview NotificationType = "FRIEND_REVIEW"
	NotificationTypeNewFollower  NotificationType = "NEW_FOLLOWER"
)

// Notification 알림 모델
type Notification struct {
	ID        string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string           `gorm:"type:varchar(36);not null;index" json:"user_id"` // 알림 받을 사용자
	Type      NotificationType `gorm:"type:varchar(50);not null;index" json:"type"`
	Title     string           `gorm:"type:text;not null" json:"title"`
	Body      string           `gorm:"type:text;not null" json:"body"`
	Data      JSONMap          `gorm:"type:text" json:"data"` // 관련 데이터 (reviewId, cafeId 등)
	IsRead    bool             `gorm:"not null;index" json:"is_read"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	newID(&n.ID)
	return nil
}
