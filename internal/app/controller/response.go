package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sipit-backend/internal/app/service"
	apperrors "github.com/ikkim/sipit-backend/internal/errors"
	"github.com/ikkim/sipit-backend/internal/middleware"
)

// respondError 서비스 에러를 HTTP 상태와 에러 코드로 변환
func respondError(c *gin.Context, err error, action string) {
	log := middleware.GetLoggerFromContext(c)

	var svcErr *service.Error
	code, message := "", ""
	if errors.As(err, &svcErr) {
		code, message = svcErr.Code, svcErr.Message
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		apperrors.NotFound(c, orDefault(code, apperrors.ResourceNotFound), orDefault(message, "Resource not found"))
	case errors.Is(err, service.ErrConflict):
		apperrors.Conflict(c, orDefault(code, apperrors.ResourceConflict), orDefault(message, "Resource already exists"))
	case errors.Is(err, service.ErrForbidden):
		apperrors.Forbidden(c, code, message)
	case errors.Is(err, service.ErrValidation):
		apperrors.BadRequest(c, orDefault(code, apperrors.ValidationInvalidInput), orDefault(message, "Invalid request"))
	case errors.Is(err, service.ErrUpstream):
		log.Warn("Upstream failure", map[string]interface{}{
			"action": action,
			"error":  err.Error(),
		})
		apperrors.BadGateway(c, "")
	default:
		log.Error("Failed to "+action, err, nil)
		apperrors.InternalError(c, "Failed to "+action)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// currentActor 인증된 사용자 (Authenticate 미들웨어 이후에만 호출)
func currentActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return service.Actor{}, false
	}
	email, _ := middleware.GetUserEmail(c)
	return service.Actor{UserID: userID, Email: email}, true
}

func currentUserID(c *gin.Context) (string, bool) {
	actor, ok := currentActor(c)
	return actor.UserID, ok
}

// pageParams reads ?page=&limit= with the given default limit
func pageParams(c *gin.Context, defLimit int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defLimit)))
	if err != nil {
		limit = defLimit
	}
	return page, limit
}

// optionalFloat parses an optional float query parameter; ok is false on a malformed value
func optionalFloat(c *gin.Context, name string) (*float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid "+name)
		return nil, false
	}
	return &v, true
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}
