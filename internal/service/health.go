package service

import (
	"context"
	"time"

	"github.com/Shishir-Kc/ThE-lIsT/internal/repository"
	"github.com/Shishir-Kc/ThE-lIsT/pkg/dto"
	"github.com/Shishir-Kc/ThE-lIsT/pkg/logger"
)

type HealthService interface {
	Health(ctx context.Context) (*dto.HealthStatus, error)
}

// Pinger is satisfied by the cache; nil means no cache is configured.
type Pinger interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDisabled  = "disabled"
)

type healthService struct {
	healthRepo repository.HealthRepository
	cache      Pinger
}

func NewHealthService(healthRepo repository.HealthRepository, cache Pinger) HealthService {
	return &healthService{
		healthRepo: healthRepo,
		cache:      cache,
	}
}

// Health reports unhealthy when the database check fails. A failing cache
// is reported but does not make the service unhealthy.
func (s *healthService) Health(ctx context.Context) (*dto.HealthStatus, error) {
	status := &dto.HealthStatus{
		Status:    StatusHealthy,
		Database:  StatusHealthy,
		Cache:     StatusDisabled,
		Timestamp: time.Now().UTC(),
	}

	if err := s.healthRepo.HealthCheck(ctx); err != nil {
		logger.LogError(ctx, err, "database_health_check")
		status.Status = StatusUnhealthy
		status.Database = StatusUnhealthy
	}

	if s.cache != nil && s.cache.Enabled() {
		status.Cache = StatusHealthy
		if err := s.cache.Ping(ctx); err != nil {
			logger.LogError(ctx, err, "cache_health_check")
			status.Cache = StatusUnhealthy
		}
	}

	return status, nil
}
