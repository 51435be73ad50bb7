package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/omarhammouda0/task-management-system/internal/service"
)

// Scheduler runs the hourly refresh-token sweeps. Correctness never depends
// on the cadence; expired and revoked tokens are refused at verification
// regardless of when the sweep last ran.
type Scheduler struct {
	cron   *cron.Cron
	tokens *service.TokenService
	logger *zap.SugaredLogger
}

func NewScheduler(tokens *service.TokenService, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{cron: cron.New(), tokens: tokens, logger: logger}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.sweepExpired); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@hourly", s.sweepRevoked); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Infow("token sweep scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
	s.logger.Infow("token sweep scheduler stopped")
}

func (s *Scheduler) sweepExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	deleted, err := s.tokens.DeleteExpiredTokens(ctx)
	if err != nil {
		s.logger.Errorw("expired token sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Infow("expired tokens deleted", "count", deleted)
	}
}

func (s *Scheduler) sweepRevoked() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	deleted, err := s.tokens.DeleteRevokedTokens(ctx)
	if err != nil {
		s.logger.Errorw("revoked token sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Infow("revoked tokens deleted", "count", deleted)
	}
}
