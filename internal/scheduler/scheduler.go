package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/sipit-backend/config"
	"github.com/ikkim/sipit-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const jobTimeout = 10 * time.Minute

// CafeRefresher re-syncs cafes whose catalog data is stale
type CafeRefresher interface {
	RefreshStale(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// NotificationPurger deletes read notifications past retention
type NotificationPurger interface {
	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Scheduler 카페 정보 갱신 / 오래된 알림 정리 스케줄러
type Scheduler struct {
	cron          *cron.Cron
	cfg           config.SchedulerConfig
	cafes         CafeRefresher
	notifications NotificationPurger
}

// NewScheduler 스케줄러 생성
func NewScheduler(cfg config.SchedulerConfig, cafes CafeRefresher, notifications NotificationPurger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		cfg:           cfg,
		cafes:         cafes,
		notifications: notifications,
	}
}

// Start 스케줄러 시작
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.CafeRefreshSpec, func() { s.RefreshCafes(context.Background()) }); err != nil {
		logger.Error("Failed to add cron job for cafe refresh", err, map[string]interface{}{
			"spec": s.cfg.CafeRefreshSpec,
		})
		return err
	}

	if _, err := s.cron.AddFunc(s.cfg.NotificationPurgeSpec, func() { s.PurgeNotifications(context.Background()) }); err != nil {
		logger.Error("Failed to add cron job for notification purge", err, map[string]interface{}{
			"spec": s.cfg.NotificationPurgeSpec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Scheduler started", map[string]interface{}{
		"cafe_refresh":       s.cfg.CafeRefreshSpec,
		"notification_purge": s.cfg.NotificationPurgeSpec,
	})
	return nil
}

// Stop 스케줄러 중지 (실행 중인 작업 완료 대기)
func (s *Scheduler) Stop() {
	logger.Info("Stopping scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Scheduler stopped", nil)
}

// RefreshCafes 오래된 카페 정보 재동기화
func (s *Scheduler) RefreshCafes(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	logger.Info("Starting scheduled cafe refresh", nil)
	refreshed, err := s.cafes.RefreshStale(ctx, s.cfg.CafeStaleAfter, s.cfg.CafeRefreshBatch)
	if err != nil {
		logger.Error("Scheduled cafe refresh failed", err, nil)
		return
	}
	logger.Info("Scheduled cafe refresh completed", map[string]interface{}{
		"refreshed": refreshed,
	})
}

// PurgeNotifications 보존 기간이 지난 읽은 알림 삭제
func (s *Scheduler) PurgeNotifications(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	purged, err := s.notifications.PurgeRead(ctx, s.cfg.NotificationRetention)
	if err != nil {
		logger.Error("Scheduled notification purge failed", err, nil)
		return
	}
	logger.Info("Scheduled notification purge completed", map[string]interface{}{
		"purged": purged,
	})
}
