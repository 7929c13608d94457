package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sipit-backend/internal/app/service"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

// CreateReviewRequest 리뷰 작성 요청 (평점 1~5, 소수 허용)
type CreateReviewRequest struct {
	CafeID         string   `json:"cafe_id" binding:"required"`
	FoodRating     float64  `json:"food_rating" binding:"required,min=1,max=5"`
	DrinksRating   float64  `json:"drinks_rating" binding:"required,min=1,max=5"`
	AmbienceRating float64  `json:"ambience_rating" binding:"required,min=1,max=5"`
	ServiceRating  float64  `json:"service_rating" binding:"required,min=1,max=5"`
	Comment        *string  `json:"comment" binding:"omitempty,max=2000"`
	Photos         []string `json:"photos" binding:"omitempty,max=10,dive,url"`
	MoodTags       []string `json:"mood_tags" binding:"omitempty,max=10,dive,min=1,max=30"`
}

// UpdateReviewRequest 생략한 필드는 유지
type UpdateReviewRequest struct {
	FoodRating     *float64 `json:"food_rating" binding:"omitempty,min=1,max=5"`
	DrinksRating   *float64 `json:"drinks_rating" binding:"omitempty,min=1,max=5"`
	AmbienceRating *float64 `json:"ambience_rating" binding:"omitempty,min=1,max=5"`
	ServiceRating  *float64 `json:"service_rating" binding:"omitempty,min=1,max=5"`
	Comment        *string  `json:"comment" binding:"omitempty,max=2000"`
	Photos         []string `json:"photos" binding:"omitempty,max=10,dive,url"`
	MoodTags       []string `json:"mood_tags" binding:"omitempty,max=10,dive,min=1,max=30"`
}

// Create 리뷰 작성
// @Summary 리뷰 작성
// @Tags reviews
// @Router /reviews [post]
func (ctrl *ReviewController) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	review, err := ctrl.reviewService.Create(c.Request.Context(), actor, service.CreateReviewInput{
		CafeID:         req.CafeID,
		FoodRating:     req.FoodRating,
		DrinksRating:   req.DrinksRating,
		AmbienceRating: req.AmbienceRating,
		ServiceRating:  req.ServiceRating,
		Comment:        req.Comment,
		Photos:         req.Photos,
		MoodTags:       req.MoodTags,
	})
	if err != nil {
		respondError(c, err, "create review")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review created successfully",
		"data":    gin.H{"review": review},
	})
}

// Update 리뷰 수정 (작성자만)
// @Summary 리뷰 수정
// @Tags reviews
// @Router /reviews/{id} [put]
func (ctrl *ReviewController) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	review, err := ctrl.reviewService.Update(c.Request.Context(), c.Param("id"), userID, service.UpdateReviewInput{
		FoodRating:     req.FoodRating,
		DrinksRating:   req.DrinksRating,
		AmbienceRating: req.AmbienceRating,
		ServiceRating:  req.ServiceRating,
		Comment:        req.Comment,
		Photos:         req.Photos,
		MoodTags:       req.MoodTags,
	})
	if err != nil {
		respondError(c, err, "update review")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review updated successfully",
		"data":    gin.H{"review": review},
	})
}

// Delete 리뷰 삭제 (작성자만)
// @Summary 리뷰 삭제
// @Tags reviews
// @Router /reviews/{id} [delete]
func (ctrl *ReviewController) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := ctrl.reviewService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err, "delete review")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

// Get 리뷰 단건 조회
// @Summary 리뷰 조회
// @Tags reviews
// @Router /reviews/{id} [get]
func (ctrl *ReviewController) Get(c *gin.Context) {
	review, err := ctrl.reviewService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "fetch review")
		return
	}

	respondData(c, http.StatusOK, gin.H{"review": review})
}

// ListForCafe 카페 리뷰 목록 (최신순)
// @Summary 카페 리뷰 목록
// @Tags reviews
// @Router /reviews/cafe/{cafeId} [get]
func (ctrl *ReviewController) ListForCafe(c *gin.Context) {
	page, limit := pageParams(c, 20)

	result, err := ctrl.reviewService.ListForCafe(c.Request.Context(), c.Param("cafeId"), page, limit)
	if err != nil {
		respondError(c, err, "fetch reviews")
		return
	}

	respondData(c, http.StatusOK, result)
}

// ListForUser 사용자 리뷰 목록
// @Summary 사용자 리뷰 목록
// @Tags users
// @Router /users/{id}/reviews [get]
func (ctrl *ReviewController) ListForUser(c *gin.Context) {
	page, limit := pageParams(c, 20)

	result, err := ctrl.reviewService.ListForUser(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		respondError(c, err, "fetch reviews")
		return
	}

	respondData(c, http.StatusOK, result)
}

// UserPhotos 사용자 리뷰 사진
// @Summary 사용자 사진 목록
// @Tags users
// @Router /users/{id}/photos [get]
func (ctrl *ReviewController) UserPhotos(c *gin.Context) {
	photos, err := ctrl.reviewService.UserPhotos(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "fetch photos")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"photos": photos,
		"count":  len(photos),
	})
}
