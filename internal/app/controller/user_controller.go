package controller

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sipit-backend/internal/app/service"
	apperrors "github.com/ikkim/sipit-backend/internal/errors"
	"github.com/ikkim/sipit-backend/internal/middleware"
)

const birthdayLayout = "2006-01-02"

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// RegisterRequest 인증 제공자 토큰의 이메일로 로컬 사용자 생성
type RegisterRequest struct {
	Name string `json:"name" binding:"omitempty,max=100"`
}

type UpdateMeRequest struct {
	Name              *string `json:"name" binding:"omitempty,min=1,max=100"`
	PhoneNumber       *string `json:"phone_number" binding:"omitempty,max=30"`
	Birthday          *string `json:"birthday"` // YYYY-MM-DD
	PersonalityType   *string `json:"personality_type" binding:"omitempty,max=50"`
	ProfilePictureURL *string `json:"profile_picture_url" binding:"omitempty,url"`
}

// Register 회원 등록
// @Summary 회원 등록
// @Tags auth
// @Router /auth/register [post]
func (ctrl *UserController) Register(c *gin.Context) {
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req RegisterRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = c.GetString(middleware.UserNameKey)
	}

	user, err := ctrl.userService.Register(c.Request.Context(), email, name)
	if err != nil {
		respondError(c, err, "register user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data":    gin.H{"user": user},
	})
}

// GetMe 내 정보 조회
// @Summary 내 정보 조회
// @Tags users
// @Router /users/me [get]
func (ctrl *UserController) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := ctrl.userService.GetMe(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "fetch user")
		return
	}

	respondData(c, http.StatusOK, gin.H{"user": user})
}

// UpdateMe 내 정보 수정
// @Summary 내 정보 수정
// @Tags users
// @Router /users/me [put]
func (ctrl *UserController) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	input := service.UpdateProfileInput{
		Name:              req.Name,
		PhoneNumber:       req.PhoneNumber,
		PersonalityType:   req.PersonalityType,
		ProfilePictureURL: req.ProfilePictureURL,
	}
	if req.Birthday != nil {
		birthday, err := time.Parse(birthdayLayout, *req.Birthday)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "birthday must be formatted as YYYY-MM-DD")
			return
		}
		input.Birthday = &birthday
	}

	user, err := ctrl.userService.UpdateMe(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err, "update user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"data":    gin.H{"user": user},
	})
}

// GetProfile 사용자 프로필 조회
// @Summary 사용자 프로필
// @Tags users
// @Router /users/{id} [get]
func (ctrl *UserController) GetProfile(c *gin.Context) {
	viewerID, _ := middleware.GetUserID(c)

	profile, err := ctrl.userService.GetProfile(c.Request.Context(), c.Param("id"), viewerID)
	if err != nil {
		respondError(c, err, "fetch profile")
		return
	}

	respondData(c, http.StatusOK, gin.H{"user": profile})
}

// Search 사용자 검색 (이름/이메일)
// @Summary 사용자 검색
// @Tags search
// @Router /search/users [get]
func (ctrl *UserController) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, err := ctrl.userService.Search(c.Request.Context(), strings.TrimSpace(c.Query("query")), limit)
	if err != nil {
		respondError(c, err, "search users")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// Follow 사용자 팔로우
// @Summary 사용자 팔로우
// @Tags users
// @Router /users/follow/{id} [post]
func (ctrl *UserController) Follow(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := ctrl.userService.Follow(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err, "follow user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully followed user"})
}

// Unfollow 사용자 언팔로우
// @Summary 사용자 언팔로우
// @Tags users
// @Router /users/unfollow/{id} [delete]
func (ctrl *UserController) Unfollow(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := ctrl.userService.Unfollow(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err, "unfollow user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully unfollowed user"})
}

// Followers 팔로워 목록
// @Summary 팔로워 목록
// @Tags users
// @Router /users/{id}/followers [get]
func (ctrl *UserController) Followers(c *gin.Context) {
	page, limit := pageParams(c, 20)

	result, err := ctrl.userService.Followers(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		respondError(c, err, "fetch followers")
		return
	}

	respondData(c, http.StatusOK, result)
}

// Following 팔로잉 목록
// @Summary 팔로잉 목록
// @Tags users
// @Router /users/{id}/following [get]
func (ctrl *UserController) Following(c *gin.Context) {
	page, limit := pageParams(c, 20)

	result, err := ctrl.userService.Following(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		respondError(c, err, "fetch following")
		return
	}

	respondData(c, http.StatusOK, result)
}
