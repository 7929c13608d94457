package model

import (
	"time"

	"gorm.io/gorm"
)

// Cafe 외부 장소 카탈로그(Google Places)와 동기화되는 카페
type Cafe struct {
	ID            string      `gorm:"type:varchar(36);primaryKey" json:"id"`                       // 내부 ID (UUID)
	GooglePlaceID string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"google_place_id"` // 외부 장소 ID (변경 불가)
	Name          string      `gorm:"type:varchar(255);not null" json:"name"`                      // 카페명
	Address       string      `gorm:"type:text;not null" json:"address"`                           // 주소
	Latitude      float64     `gorm:"not null;index:idx_cafes_location,priority:1" json:"latitude"`  // 위도 (WGS84)
	Longitude     float64     `gorm:"not null;index:idx_cafes_location,priority:2" json:"longitude"` // 경도 (WGS84)
	Photos        StringArray `gorm:"type:text" json:"photos"`                                     // 사진 URL 목록 (순서 유지)
	LastSyncedAt  time.Time   `gorm:"not null;index" json:"last_synced_at"`                        // 마지막 동기화 시각
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Ratings *CafeRatings `gorm:"foreignKey:CafeID" json:"ratings,omitempty"` // 평점 집계 (1:1)
}

func (Cafe) TableName() string {
	return "cafes"
}

func (c *Cafe) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

// CafeRatings 카페별 4개 항목 평균 평점 (RatingAggregator만 갱신)
type CafeRatings struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CafeID       string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"cafe_id"`
	AvgFood      float64   `gorm:"not null" json:"avg_food"`
	AvgDrinks    float64   `gorm:"not null" json:"avg_drinks"`
	AvgAmbience  float64   `gorm:"not null" json:"avg_ambience"`
	AvgService   float64   `gorm:"not null" json:"avg_service"`
	TotalReviews int       `gorm:"not null" json:"total_reviews"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (CafeRatings) TableName() string {
	return "cafe_ratings"
}

func (r *CafeRatings) BeforeCreate(tx *gorm.DB) error {
	newID(&r.ID)
	return nil
}

// Average returns the stored average for one metric
func (r *CafeRatings) Average(metric RatingMetric) float64 {
	if r == nil {
		return 0
	}
	switch metric {
	case MetricFood:
		return r.AvgFood
	case MetricDrinks:
		return r.AvgDrinks
	case MetricAmbience:
		return r.AvgAmbience
	case MetricService:
		return r.AvgService
	}
	return 0
}
