package service

import (
	"context"
	"log/slog"
	"time"
)

// HousekeepingService periodically drops session material whose token
// expiry has passed, so stale credentials do not sit in the database
// between operator visits.
type HousekeepingService struct {
	Sessions *SessionStore
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(sessions *SessionStore, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Sessions: sessions,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut it
// down gracefully.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts down the background worker, blocking until any in-progress
// sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep immediately on startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep clears the stored session if its expiry has passed. Sessions
// without a parseable expiry are left alone; the upstream decides their
// fate on the next request.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()

	sess, err := s.Sessions.Current(ctx)
	if err != nil {
		s.Logger.Error("housekeeping: failed to load session", "error", err)
		return
	}
	if !sess.Exists() || !sess.Expired(time.Now()) {
		return
	}

	if err := s.Sessions.Clear(ctx); err != nil {
		s.Logger.Error("housekeeping: failed to clear expired session", "error", err)
		return
	}
	s.Logger.Info("housekeeping: cleared expired session", "expiry", sess.TokenExpiry)
}
