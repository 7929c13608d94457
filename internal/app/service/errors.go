package service

import (
	"errors"

	apperrors "github.com/ikkim/sipit-backend/internal/errors"
)

// 에러 분류 (controller에서 HTTP 상태로 매핑)
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
	ErrUpstream   = errors.New("upstream error")
)

// Error carries a stable code and a user-facing message. It matches its
// taxonomy kind and its cause with errors.Is.
type Error struct {
	Kind    error
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

var (
	ErrCafeNotFound         = &Error{Kind: ErrNotFound, Code: apperrors.CafeNotFound, Message: "Cafe not found"}
	ErrReviewNotFound       = &Error{Kind: ErrNotFound, Code: apperrors.ReviewNotFound, Message: "Review not found"}
	ErrUserNotFound         = &Error{Kind: ErrNotFound, Code: apperrors.UserNotFound, Message: "User not found"}
	ErrFollowNotFound       = &Error{Kind: ErrNotFound, Code: apperrors.FollowNotFound, Message: "You are not following this user"}
	ErrMenuItemNotFound     = &Error{Kind: ErrNotFound, Code: apperrors.MenuItemNotFound, Message: "Menu item not found"}
	ErrNotificationNotFound = &Error{Kind: ErrNotFound, Code: apperrors.NotificationNotFound, Message: "Notification not found"}
	ErrSavedCafeNotFound    = &Error{Kind: ErrNotFound, Code: apperrors.ResourceNotFound, Message: "Cafe is not in your saved list"}
	ErrVisitedCafeNotFound  = &Error{Kind: ErrNotFound, Code: apperrors.ResourceNotFound, Message: "Cafe is not in your visited list"}

	ErrReviewAlreadyExists = &Error{Kind: ErrConflict, Code: apperrors.ReviewAlreadyExists, Message: "You have already reviewed this cafe. Use update instead."}
	ErrEmailAlreadyExists  = &Error{Kind: ErrConflict, Code: apperrors.AuthEmailAlreadyExists, Message: "User already registered"}
	ErrAlreadyFollowing    = &Error{Kind: ErrConflict, Code: apperrors.FollowAlreadyExists, Message: "Already following this user"}
	ErrCafeAlreadySaved    = &Error{Kind: ErrConflict, Code: apperrors.ResourceAlreadyExists, Message: "Cafe already saved"}
	ErrCafeAlreadyVisited  = &Error{Kind: ErrConflict, Code: apperrors.ResourceAlreadyExists, Message: "Cafe already marked as visited"}

	ErrNotReviewOwner       = &Error{Kind: ErrForbidden, Code: apperrors.AuthzOwnerOnly, Message: "You can only modify your own reviews"}
	ErrNotMenuItemOwner     = &Error{Kind: ErrForbidden, Code: apperrors.AuthzOwnerOnly, Message: "You can only modify your own menu items"}
	ErrNotNotificationOwner = &Error{Kind: ErrForbidden, Code: apperrors.AuthzOwnerOnly, Message: "You can only modify your own notifications"}

	ErrSelfFollow = &Error{Kind: ErrValidation, Code: apperrors.UserSelfFollow, Message: "You cannot follow yourself"}
)

func validationError(code, message string) error {
	return &Error{Kind: ErrValidation, Code: code, Message: message}
}

// upstreamError wraps a catalog failure
func upstreamError(err error) error {
	return &Error{Kind: ErrUpstream, Code: apperrors.InternalExternalAPI, Message: "Place provider request failed", Err: err}
}
