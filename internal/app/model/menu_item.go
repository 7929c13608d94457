package model

import (
	"time"

	"gorm.io/gorm"
)

type MenuItemType string

const (
	MenuItemFood  MenuItemType = "food"
	MenuItemDrink MenuItemType = "drink"
)

func (t MenuItemType) IsValid() bool {
	return t == MenuItemFood || t == MenuItemDrink
}

// PersonalMenuItem 사용자가 기록한 "나만의 메뉴" 항목 (리뷰와 독립)
type PersonalMenuItem struct {
	ID          string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string       `gorm:"type:varchar(36);not null;index" json:"user_id"`
	CafePlaceID string       `gorm:"type:varchar(255);not null;index" json:"cafe_place_id"` // 카페 외부 장소 ID
	CafeName    string       `gorm:"type:varchar(255);not null" json:"cafe_name"`           // 카페명 (비정규화)
	ItemName    string       `gorm:"type:varchar(255);not null" json:"item_name"`
	ItemType    MenuItemType `gorm:"type:varchar(10);not null" json:"item_type"`
	Rating      float64      `gorm:"not null" json:"rating"` // 1~5
	Photos      StringArray  `gorm:"type:text" json:"photos"`
	Notes       *string      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (PersonalMenuItem) TableName() string {
	return "personal_menu_items"
}

func (m *PersonalMenuItem) BeforeCreate(tx *gorm.DB) error {
	newID(&m.ID)
	return nil
}
