package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// StringArray는 문자열 목록을 JSON 텍스트 컬럼으로 저장하기 위한 커스텀 타입
// (PostgreSQL과 테스트용 SQLite에서 동일한 스키마를 사용)
type StringArray []string

// Value는 database/sql/driver.Valuer 인터페이스 구현
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan은 database/sql.Scanner 인터페이스 구현
func (s *StringArray) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = StringArray{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to scan StringArray")
	}
	if len(raw) == 0 {
		*s = StringArray{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

// JSONMap은 알림 payload 등 불투명한 JSON 객체를 텍스트 컬럼으로 저장
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to scan JSONMap")
	}
	if len(raw) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// RatingMetric 리뷰 평가 항목
type RatingMetric string

const (
	MetricFood     RatingMetric = "FOOD"
	MetricDrinks   RatingMetric = "DRINKS"
	MetricAmbience RatingMetric = "AMBIENCE"
	MetricService  RatingMetric = "SERVICE"
)

// RatingMetrics is the fixed priority order used to break ties
var RatingMetrics = []RatingMetric{MetricFood, MetricDrinks, MetricAmbience, MetricService}

// IsValid 지원하는 평가 항목인지 확인
func (m RatingMetric) IsValid() bool {
	switch m {
	case MetricFood, MetricDrinks, MetricAmbience, MetricService:
		return true
	}
	return false
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
