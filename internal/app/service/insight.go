package service

import (
	"sort"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/pkg/util"
)

const insightTopN = 5

// PopularItem 카페 인기 메뉴 (사용자 메뉴 기록 기준)
type PopularItem struct {
	ItemName  string             `json:"item_name"`
	ItemType  model.MenuItemType `json:"item_type"`
	Count     int                `json:"count"`
	AvgRating float64            `json:"avg_rating"`
}

// TagCount 분위기 태그 빈도
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// PopularMenuItems groups items by name and type, ranks by count and keeps
// first-seen order on ties. items must be in insertion order.
func PopularMenuItems(items []model.PersonalMenuItem) []PopularItem {
	type key struct {
		name     string
		itemType model.MenuItemType
	}
	index := make(map[key]int)
	groups := make([]PopularItem, 0)
	sums := make([]float64, 0)

	for _, item := range items {
		k := key{item.ItemName, item.ItemType}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, PopularItem{ItemName: item.ItemName, ItemType: item.ItemType})
			sums = append(sums, 0)
		}
		groups[i].Count++
		sums[i] += item.Rating
	}

	for i := range groups {
		groups[i].AvgRating = util.RoundTo1(sums[i] / float64(groups[i].Count))
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Count > groups[b].Count
	})
	if len(groups) > insightTopN {
		groups = groups[:insightTopN]
	}
	return groups
}

// BestForTags 리뷰 분위기 태그 상위 5개
func BestForTags(reviews []model.Review) []TagCount {
	index := make(map[string]int)
	tags := make([]TagCount, 0)

	for _, r := range reviews {
		for _, tag := range r.MoodTags {
			i, ok := index[tag]
			if !ok {
				i = len(tags)
				index[tag] = i
				tags = append(tags, TagCount{Tag: tag})
			}
			tags[i].Count++
		}
	}

	sort.SliceStable(tags, func(a, b int) bool {
		return tags[a].Count > tags[b].Count
	})
	if len(tags) > insightTopN {
		tags = tags[:insightTopN]
	}
	return tags
}

// SipItRating 네 항목 평균의 평균 (리뷰가 없으면 0)
func SipItRating(r *model.CafeRatings) float64 {
	if r == nil || r.TotalReviews == 0 {
		return 0
	}
	return util.RoundTo1((r.AvgFood + r.AvgDrinks + r.AvgAmbience + r.AvgService) / 4)
}

// ExpertiseBadge returns the metric the user rates highest on average.
// Ties resolve in model.RatingMetrics order. ok is false without reviews.
func ExpertiseBadge(reviews []model.Review) (model.RatingMetric, bool) {
	if len(reviews) == 0 {
		return "", false
	}

	best := model.RatingMetrics[0]
	bestMean := -1.0
	for _, metric := range model.RatingMetrics {
		var sum float64
		for i := range reviews {
			sum += reviews[i].Rating(metric)
		}
		mean := sum / float64(len(reviews))
		if mean > bestMean {
			best, bestMean = metric, mean
		}
	}
	return best, true
}
