package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Code    string // 에러 코드 (codes.go 참조)
	Message string // 사용자에게 노출할 메시지
}

// IsUniqueViolation reports whether err is a unique-constraint failure from
// postgres ("duplicate key") or sqlite ("UNIQUE constraint failed")
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "duplicate key") || strings.Contains(lower, "unique constraint")
}

// ParseError DB 에러를 사용자 메시지와 코드로 변환
// 내부 정보는 숨기고 분류만 노출
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	if IsUniqueViolation(err) {
		return parseDuplicateKeyError(err.Error())
	}

	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "foreign key constraint") {
		return ErrorInfo{Code: ResourceNotFound, Message: "Referenced resource not found"}
	}
	if strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "timeout") {
		return ErrorInfo{Code: InternalExternalAPI, Message: "A dependent service is unavailable, please retry later"}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

// parseDuplicateKeyError 인덱스 이름으로 중복 대상을 판별
func parseDuplicateKeyError(errStr string) ErrorInfo {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "idx_users_email") || strings.Contains(lower, "users.email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "Email is already registered"}
	case strings.Contains(lower, "idx_reviews_user_cafe") || strings.Contains(lower, "reviews.user_id"):
		return ErrorInfo{Code: ReviewAlreadyExists, Message: "You have already reviewed this cafe. Use update instead."}
	case strings.Contains(lower, "idx_follows_pair") || strings.Contains(lower, "follows.follower_id"):
		return ErrorInfo{Code: FollowAlreadyExists, Message: "Already following this user"}
	}

	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Resource already exists"}
}

func notFoundMessage(context string) string {
	lower := strings.ToLower(context)
	switch {
	case strings.Contains(lower, "cafe"):
		return "Cafe not found"
	case strings.Contains(lower, "review"):
		return "Review not found"
	case strings.Contains(lower, "user"):
		return "User not found"
	case strings.Contains(lower, "menu"):
		return "Menu item not found"
	case strings.Contains(lower, "notification"):
		return "Notification not found"
	}
	return "Requested resource not found"
}

func defaultMessage(context string) string {
	lower := strings.ToLower(context)
	switch {
	case strings.Contains(lower, "create"):
		return "Failed to create resource, please retry later"
	case strings.Contains(lower, "update"):
		return "Failed to update resource, please retry later"
	case strings.Contains(lower, "delete"):
		return "Failed to delete resource, please retry later"
	}
	return "Something went wrong, please retry later"
}

// ParseAndRespond 에러를 파싱하여 응답 반환 (controller 헬퍼)
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
