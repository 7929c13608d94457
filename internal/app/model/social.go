package model

import (
	"time"

	"gorm.io/gorm"
)

// Follow 사용자 간 팔로우 관계
type Follow struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	FollowerID  string    `gorm:"type:varchar(36);not null;index:idx_follows_pair,unique,priority:1" json:"follower_id"`
	FollowingID string    `gorm:"type:varchar(36);not null;index:idx_follows_pair,unique,priority:2;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  *User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following *User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}

func (Follow) TableName() string {
	return "follows"
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	newID(&f.ID)
	return nil
}

// CafeFollow 카페 팔로우
type CafeFollow struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_cafe_follows_pair,unique,priority:1" json:"user_id"`
	CafeID    string    `gorm:"type:varchar(36);not null;index:idx_cafe_follows_pair,unique,priority:2;index" json:"cafe_id"`
	CreatedAt time.Time `json:"created_at"`

	Cafe *Cafe `gorm:"foreignKey:CafeID" json:"cafe,omitempty"`
}

func (CafeFollow) TableName() string {
	return "cafe_follows"
}

func (f *CafeFollow) BeforeCreate(tx *gorm.DB) error {
	newID(&f.ID)
	return nil
}

// SavedCafe 저장한 카페
type SavedCafe struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_saved_cafes_pair,unique,priority:1" json:"user_id"`
	CafeID    string    `gorm:"type:varchar(36);not null;index:idx_saved_cafes_pair,unique,priority:2" json:"cafe_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Cafe *Cafe `gorm:"foreignKey:CafeID" json:"cafe,omitempty"`
}

func (SavedCafe) TableName() string {
	return "saved_cafes"
}

func (s *SavedCafe) BeforeCreate(tx *gorm.DB) error {
	newID(&s.ID)
	return nil
}

// VisitedCafe 방문한 카페
type VisitedCafe struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_visited_cafes_pair,unique,priority:1" json:"user_id"`
	CafeID    string    `gorm:"type:varchar(36);not null;index:idx_visited_cafes_pair,unique,priority:2" json:"cafe_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Cafe *Cafe `gorm:"foreignKey:CafeID" json:"cafe,omitempty"`
}

func (VisitedCafe) TableName() string {
	return "visited_cafes"
}

func (v *VisitedCafe) BeforeCreate(tx *gorm.DB) error {
	newID(&v.ID)
	return nil
}
