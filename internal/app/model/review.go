package model

import (
	"time"

	"gorm.io/gorm"
)

// Review 사용자 카페 리뷰 (사용자·카페 쌍당 1개)
type Review struct {
	ID             string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         string      `gorm:"type:varchar(36);not null;index:idx_reviews_user_cafe,unique,priority:1" json:"user_id"`
	CafeID         string      `gorm:"type:varchar(36);not null;index:idx_reviews_user_cafe,unique,priority:2;index:idx_reviews_cafe_created,priority:1" json:"cafe_id"`
	FoodRating     float64     `gorm:"not null" json:"food_rating"`     // 음식 평점 (1~5)
	DrinksRating   float64     `gorm:"not null" json:"drinks_rating"`   // 음료 평점 (1~5)
	AmbienceRating float64     `gorm:"not null" json:"ambience_rating"` // 분위기 평점 (1~5)
	ServiceRating  float64     `gorm:"not null" json:"service_rating"`  // 서비스 평점 (1~5)
	Comment        *string     `gorm:"type:text" json:"comment,omitempty"`
	Photos         StringArray `gorm:"type:text" json:"photos"`    // 사진 URL 목록
	MoodTags       StringArray `gorm:"type:text" json:"mood_tags"` // 분위기 태그 (예: "study", "date")
	CreatedAt      time.Time   `gorm:"index:idx_reviews_cafe_created,priority:2" json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Cafe *Cafe `gorm:"foreignKey:CafeID" json:"cafe,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	newID(&r.ID)
	return nil
}

// Rating returns the review's score for one metric
func (r *Review) Rating(metric RatingMetric) float64 {
	switch metric {
	case MetricFood:
		return r.FoodRating
	case MetricDrinks:
		return r.DrinksRating
	case MetricAmbience:
		return r.AmbienceRating
	case MetricService:
		return r.ServiceRating
	}
	return 0
}
