package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sipit-backend/internal/app/service"
)

type FeedController struct {
	feedService service.FeedService
}

func NewFeedController(feedService service.FeedService) *FeedController {
	return &FeedController{
		feedService: feedService,
	}
}

// Following 팔로우한 사용자들의 최신 리뷰
// @Summary 팔로잉 피드
// @Tags feed
// @Router /feed [get]
func (ctrl *FeedController) Following(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, limit := pageParams(c, 20)

	result, err := ctrl.feedService.Following(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err, "fetch feed")
		return
	}

	respondData(c, http.StatusOK, result)
}

// Discover 주변(또는 전체) 최신 리뷰
// @Summary 발견 피드
// @Tags feed
// @Router /feed/discover [get]
func (ctrl *FeedController) Discover(c *gin.Context) {
	page, limit := pageParams(c, 20)

	lat, ok := optionalFloat(c, "latitude")
	if !ok {
		return
	}
	lng, ok := optionalFloat(c, "longitude")
	if !ok {
		return
	}
	radius, ok := optionalFloat(c, "radiusKm")
	if !ok {
		return
	}

	query := service.DiscoverQuery{Lat: lat, Lng: lng, Page: page, Limit: limit}
	if radius != nil {
		query.RadiusKm = *radius
	}

	result, err := ctrl.feedService.Discover(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "fetch discover feed")
		return
	}

	respondData(c, http.StatusOK, result)
}
