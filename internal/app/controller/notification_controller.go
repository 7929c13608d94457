package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sipit-backend/internal/app/service"
)

// NotificationController 알림 컨트롤러
type NotificationController struct {
	service service.NotificationService
}

// NewNotificationController 알림 컨트롤러 생성자
func NewNotificationController(service service.NotificationService) *NotificationController {
	return &NotificationController{
		service: service,
	}
}

// List godoc
// @Summary 알림 목록 조회
// @Description 최신순 알림 목록과 읽지 않은 알림 수
// @Tags notifications
// @Param page query int false "페이지 번호" default(1)
// @Param limit query int false "페이지 크기" default(20)
// @Param unread_only query bool false "읽지 않은 알림만"
// @Security BearerAuth
// @Router /api/v1/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	page, limit := pageParams(ctx, 20)
	unreadOnly := ctx.Query("unread_only") == "true"

	result, err := c.service.List(ctx.Request.Context(), userID, unreadOnly, page, limit)
	if err != nil {
		respondError(ctx, err, "fetch notifications")
		return
	}

	respondData(ctx, http.StatusOK, result)
}

// UnreadCount godoc
// @Summary 읽지 않은 알림 수
// @Tags notifications
// @Security BearerAuth
// @Router /api/v1/notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	count, err := c.service.UnreadCount(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err, "count notifications")
		return
	}

	respondData(ctx, http.StatusOK, gin.H{"count": count})
}

// MarkRead godoc
// @Summary 알림 읽음 처리
// @Tags notifications
// @Security BearerAuth
// @Router /api/v1/notifications/{id}/read [put]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	notification, err := c.service.MarkRead(ctx.Request.Context(), ctx.Param("id"), userID)
	if err != nil {
		respondError(ctx, err, "mark notification as read")
		return
	}

	respondData(ctx, http.StatusOK, gin.H{"notification": notification})
}

// MarkAllRead godoc
// @Summary 모든 알림 읽음 처리
// @Tags notifications
// @Security BearerAuth
// @Router /api/v1/notifications/read-all [put]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	updated, err := c.service.MarkAllRead(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err, "mark notifications as read")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "All notifications marked as read",
		"data":    gin.H{"updated": updated},
	})
}

// Delete godoc
// @Summary 알림 삭제
// @Tags notifications
// @Security BearerAuth
// @Router /api/v1/notifications/{id} [delete]
func (c *NotificationController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.service.Delete(ctx.Request.Context(), ctx.Param("id"), userID); err != nil {
		respondError(ctx, err, "delete notification")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
