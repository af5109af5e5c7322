package service

import (
	"context"
	"time"

	"direct_messenger/internal/config"
	"direct_messenger/internal/metrics"
	"direct_messenger/internal/repository"
	"direct_messenger/pkg/logger"
)

type RateLimitService interface {
	// Allow counts one request from subject within scope.
	Allow(ctx context.Context, scope, subject string) (*RateLimitDecision, error)
}

type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	cfg           config.RateLimitConfig
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, cfg config.RateLimitConfig, log logger.Logger) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		cfg:           cfg,
		log:           log,
	}
}

func (s *rateLimitService) Allow(ctx context.Context, scope, subject string) (*RateLimitDecision, error) {
	count, resetIn, err := s.rateLimitRepo.Increment(ctx, scope+":"+subject, s.cfg.Window)
	if err != nil {
		return nil, err
	}

	decision := &RateLimitDecision{
		Allowed:   count <= int64(s.cfg.Requests),
		Limit:     s.cfg.Requests,
		Remaining: max(s.cfg.Requests-int(count), 0),
		ResetIn:   resetIn,
	}
	if !decision.Allowed {
		metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
		s.log.Warn("Rate limit exceeded", "scope", scope, "subject", subject, "count", count)
	}
	return decision, nil
}
