package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/app/service"
)

type PreferencesController struct {
	preferencesService service.PreferencesService
}

func NewPreferencesController(preferencesService service.PreferencesService) *PreferencesController {
	return &PreferencesController{
		preferencesService: preferencesService,
	}
}

type UpdateMoodRequest struct {
	MoodMetric string `json:"mood_metric" binding:"required"`
}

type UpdateRadiusRequest struct {
	RadiusKm float64 `json:"radius_km" binding:"required,min=0.5,max=50"`
}

type UpdateNotificationsRequest struct {
	NotifyNewCafes       *bool `json:"notify_new_cafes"`
	NotifyFriendActivity *bool `json:"notify_friend_activity"`
	NotifyWeekly         *bool `json:"notify_weekly"`
}

// Get 내 설정 조회
// @Summary 설정 조회
// @Tags preferences
// @Router /preferences [get]
func (ctrl *PreferencesController) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	prefs, err := ctrl.preferencesService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "fetch preferences")
		return
	}

	respondData(c, http.StatusOK, gin.H{"preferences": prefs})
}

// UpdateMood 현재 기분(우선 평가 항목) 변경
// @Summary 기분 변경
// @Tags preferences
// @Router /preferences/mood [put]
func (ctrl *PreferencesController) UpdateMood(c *gin.Context) {
	var req UpdateMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	metric := model.RatingMetric(strings.ToUpper(req.MoodMetric))
	ctrl.update(c, service.UpdatePreferencesInput{MoodMetric: &metric})
}

// UpdateRadius 선호 검색 반경 변경
// @Summary 검색 반경 변경
// @Tags preferences
// @Router /preferences/radius [put]
func (ctrl *PreferencesController) UpdateRadius(c *gin.Context) {
	var req UpdateRadiusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctrl.update(c, service.UpdatePreferencesInput{PreferredRadiusKm: &req.RadiusKm})
}

// UpdateNotifications 알림 수신 설정 변경
// @Summary 알림 설정 변경
// @Tags preferences
// @Router /preferences/notifications [put]
func (ctrl *PreferencesController) UpdateNotifications(c *gin.Context) {
	var req UpdateNotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctrl.update(c, service.UpdatePreferencesInput{
		NotifyNewCafes:       req.NotifyNewCafes,
		NotifyFriendActivity: req.NotifyFriendActivity,
		NotifyWeekly:         req.NotifyWeekly,
	})
}

func (ctrl *PreferencesController) update(c *gin.Context, input service.UpdatePreferencesInput) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	prefs, err := ctrl.preferencesService.Update(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err, "update preferences")
		return
	}

	respondData(c, http.StatusOK, gin.H{"preferences": prefs})
}

// MoodPrompt 기분 선택 프롬프트 표시 여부 (6시간 주기)
// @Summary 기분 프롬프트 여부
// @Tags preferences
// @Router /preferences/should-show-mood-prompt [get]
func (ctrl *PreferencesController) MoodPrompt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	prompt, err := ctrl.preferencesService.MoodPrompt(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "check mood prompt")
		return
	}

	respondData(c, http.StatusOK, prompt)
}
