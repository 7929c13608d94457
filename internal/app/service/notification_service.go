package service

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/app/repository"
	"github.com/ikkim/sipit-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	defaultNotificationPageSize = 20
	maxNotificationPageSize     = 100
)

// NotificationPage 알림 목록과 안읽은 개수
type NotificationPage struct {
	Notifications []model.Notification `json:"notifications"`
	UnreadCount   int64                `json:"unread_count"`
	Pagination    Pagination           `json:"pagination"`
}

// NotificationService 알림 서비스 인터페이스
type NotificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool, page, limit int) (*NotificationPage, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID string) (*model.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, notificationID, userID string) error
	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService 알림 서비스 생성자
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// List 알림 목록 조회 (최신순)
func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, page, limit int) (*NotificationPage, error) {
	page, limit, offset := normalizePage(page, limit, defaultNotificationPageSize, maxNotificationPageSize)

	notifications, total, err := s.repo.List(ctx, userID, unreadOnly, offset, limit)
	if err != nil {
		return nil, err
	}

	// 안읽은 개수
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &NotificationPage{
		Notifications: notifications,
		UnreadCount:   unread,
		Pagination:    newPagination(page, limit, total),
	}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead 알림 읽음 처리
func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) (*model.Notification, error) {
	notification, err := s.owned(ctx, notificationID, userID)
	if err != nil {
		return nil, err
	}
	if notification.IsRead {
		return notification, nil
	}

	if err := s.repo.MarkRead(ctx, notification.ID); err != nil {
		return nil, err
	}
	notification.IsRead = true
	return notification, nil
}

// MarkAllRead 모든 알림 읽음 처리
func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	logger.Info("Notifications marked as read", map[string]interface{}{
		"user_id": userID,
		"count":   updated,
	})
	return updated, nil
}

// Delete 알림 삭제
func (s *notificationService) Delete(ctx context.Context, notificationID, userID string) error {
	notification, err := s.owned(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, notification.ID)
}

// PurgeRead 보관 기간이 지난 읽은 알림 삭제 (스케줄러 작업)
func (s *notificationService) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	deleted, err := s.repo.DeleteReadBefore(ctx, time.Now().Add(-olderThan))
	if err != nil {
		logger.Error("Failed to purge read notifications", err, nil)
		return 0, err
	}
	logger.Info("Read notifications purged", map[string]interface{}{
		"deleted": deleted,
	})
	return deleted, nil
}

func (s *notificationService) owned(ctx context.Context, notificationID, userID string) (*model.Notification, error) {
	notification, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	// 본인 알림인지 확인
	if notification.UserID != userID {
		return nil, ErrNotNotificationOwner
	}
	return notification, nil
}
