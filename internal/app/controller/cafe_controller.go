package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/app/service"
	apperrors "github.com/ikkim/sipit-backend/internal/errors"
	"github.com/ikkim/sipit-backend/internal/middleware"
)

type CafeController struct {
	cafeService   service.CafeService
	reviewService service.ReviewService
}

func NewCafeController(cafeService service.CafeService, reviewService service.ReviewService) *CafeController {
	return &CafeController{
		cafeService:   cafeService,
		reviewService: reviewService,
	}
}

// NearbyRequest 주변 카페 검색 쿼리
type NearbyRequest struct {
	Latitude  *float64 `form:"latitude" binding:"required"`
	Longitude *float64 `form:"longitude" binding:"required"`
	RadiusKm  float64  `form:"radiusKm"`
	SortBy    string   `form:"sortBy"`
	Page      int      `form:"page"`
	Limit     int      `form:"limit"`
}

// Nearby 주변 카페 목록
// @Summary 주변 카페 검색 (평가 항목별 정렬)
// @Tags cafes
// @Router /cafes/nearby [get]
func (ctrl *CafeController) Nearby(c *gin.Context) {
	var req NearbyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "latitude and longitude are required numbers")
		return
	}

	result, err := ctrl.cafeService.Nearby(c.Request.Context(), service.NearbyQuery{
		Lat:      *req.Latitude,
		Lng:      *req.Longitude,
		RadiusKm: req.RadiusKm,
		SortBy:   model.RatingMetric(strings.ToUpper(req.SortBy)),
		Page:     req.Page,
		Limit:    req.Limit,
	})
	if err != nil {
		respondError(c, err, "fetch nearby cafes")
		return
	}

	respondData(c, http.StatusOK, result)
}

// Search 텍스트 검색 후 로컬 카페로 동기화
// @Summary 카페 검색
// @Tags cafes
// @Router /cafes/search [get]
func (ctrl *CafeController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	lat, ok := optionalFloat(c, "latitude")
	if !ok {
		return
	}
	lng, ok := optionalFloat(c, "longitude")
	if !ok {
		return
	}

	cafes, err := ctrl.cafeService.Search(c.Request.Context(), query, lat, lng)
	if err != nil {
		respondError(c, err, "search cafes")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"cafes": cafes,
		"query": query,
	})
}

// SearchByName 카탈로그 이름 검색 (저장하지 않음)
// @Summary 카페 이름 검색
// @Tags search
// @Router /search/cafes [get]
func (ctrl *CafeController) SearchByName(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	cafes, err := ctrl.cafeService.SearchByName(c.Request.Context(), strings.TrimSpace(c.Query("query")), limit)
	if err != nil {
		respondError(c, err, "search cafes")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"cafes": cafes,
		"count": len(cafes),
	})
}

// GetByID 로컬 카페 ID로 조회
// @Summary 카페 조회
// @Tags cafes
// @Router /cafes/{id} [get]
func (ctrl *CafeController) GetByID(c *gin.Context) {
	details, err := ctrl.cafeService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "fetch cafe")
		return
	}

	respondData(c, http.StatusOK, gin.H{"cafe": details})
}

// Details 카페 상세 (없으면 카탈로그에서 가져와 저장)
// @Summary 카페 상세 조회
// @Tags cafes
// @Router /cafes/details/{placeId} [get]
func (ctrl *CafeController) Details(c *gin.Context) {
	viewerID, _ := middleware.GetUserID(c)

	details, err := ctrl.cafeService.Details(c.Request.Context(), c.Param("placeId"), viewerID)
	if err != nil {
		respondError(c, err, "fetch cafe details")
		return
	}

	respondData(c, http.StatusOK, gin.H{"cafe": details})
}

// Sync 카탈로그 정보로 카페 갱신
// @Summary 카페 동기화
// @Tags cafes
// @Router /cafes/sync/{placeId} [post]
func (ctrl *CafeController) Sync(c *gin.Context) {
	cafe, err := ctrl.cafeService.Sync(c.Request.Context(), c.Param("placeId"))
	if err != nil {
		respondError(c, err, "sync cafe")
		return
	}

	respondData(c, http.StatusOK, gin.H{"cafe": cafe})
}

// Follow 카페 팔로우
// @Summary 카페 팔로우
// @Tags cafes
// @Router /cafes/{id}/follow [post]
func (ctrl *CafeController) Follow(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cafe, err := ctrl.cafeService.Follow(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err, "follow cafe")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cafe followed",
		"data":    gin.H{"cafe": cafe},
	})
}

// Unfollow 카페 언팔로우
// @Summary 카페 언팔로우
// @Tags cafes
// @Router /cafes/{id}/follow [delete]
func (ctrl *CafeController) Unfollow(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := ctrl.cafeService.Unfollow(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err, "unfollow cafe")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cafe unfollowed"})
}

// Photos 카페 리뷰 사진
// @Summary 카페 사진 목록
// @Tags cafes
// @Router /cafes/{id}/photos [get]
func (ctrl *CafeController) Photos(c *gin.Context) {
	photos, err := ctrl.reviewService.CafePhotos(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "fetch cafe photos")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"photos": photos,
		"count":  len(photos),
	})
}
