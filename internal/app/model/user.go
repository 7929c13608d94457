package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                string     `gorm:"type:varchar(36);primaryKey" json:"id"`          // 사용자 ID (UUID)
	Email             string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"` // 이메일 (인증 제공자와 매핑)
	Name              string     `gorm:"type:varchar(100);not null" json:"name"`         // 이름
	PhoneNumber       *string    `gorm:"type:varchar(30)" json:"phone_number,omitempty"` // 전화번호
	Birthday          *time.Time `json:"birthday,omitempty"`                             // 생일
	PersonalityType   *string    `gorm:"type:varchar(50)" json:"personality_type,omitempty"`
	ProfilePictureURL *string    `gorm:"type:text" json:"profile_picture_url,omitempty"` // 프로필 이미지 URL
	CreatedAt         time.Time  `json:"created_at"`                                     // 생성 시각
	UpdatedAt         time.Time  `json:"updated_at"`                                     // 수정 시각

	Preferences *UserPreferences `gorm:"foreignKey:UserID" json:"preferences,omitempty"` // 사용자 설정
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}
