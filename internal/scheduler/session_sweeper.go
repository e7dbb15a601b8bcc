package scheduler

import (
	"time"

	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// SessionSweeper periodically drops idle sessions and the carts they hold.
type SessionSweeper struct {
	cron     *cron.Cron
	sessions *session.Manager
	metrics  *metrics.StoreMetrics
	schedule string
	now      func() time.Time
}

// NewSessionSweeper builds a sweeper for a cron spec such as "@every 5m".
func NewSessionSweeper(sessions *session.Manager, m *metrics.StoreMetrics, schedule string) *SessionSweeper {
	return &SessionSweeper{
		cron:     cron.New(),
		sessions: sessions,
		metrics:  m,
		schedule: schedule,
		now:      time.Now,
	}
}

func (s *SessionSweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce()
	})
	if err != nil {
		logger.Error("Failed to add cron job for session sweep", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Session sweeper started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// RunOnce sweeps immediately and returns the number of sessions dropped.
func (s *SessionSweeper) RunOnce() int {
	removed := s.sessions.Sweep(s.now())
	remaining := s.sessions.Len()

	s.metrics.RecordSessionsSwept(removed)
	s.metrics.SetActiveSessions(remaining)

	if removed > 0 {
		logger.Info("Idle sessions swept", map[string]interface{}{
			"removed":   removed,
			"remaining": remaining,
		})
	}
	return removed
}

func (s *SessionSweeper) Stop() {
	logger.Info("Stopping session sweeper...")
	<-s.cron.Stop().Done()
	logger.Info("Session sweeper stopped")
}
