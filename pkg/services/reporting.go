package services

import (
	"context"
	"time"

	"github.com/pulselog/telemetry-gateway/pkg/db"
	"github.com/pulselog/telemetry-gateway/pkg/rpc"
)

// reportingService is the Postgres-backed ReportingService.
type reportingService struct {
	repo *db.Repository
}

// NewReportingService creates the reporting service.
func NewReportingService(repo *db.Repository) ReportingService {
	return &reportingService{repo: repo}
}

func (s *reportingService) EventCount(ctx context.Context, applicationID int64, start, end time.Time) (int64, error) {
	return s.repo.CountEvents(ctx, applicationID, start, end)
}

func (s *reportingService) EventCounters(ctx context.Context, applicationID int64, start, end time.Time) ([]any, error) {
	counters, err := s.repo.EventCountersByDescription(ctx, applicationID, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(counters))
	for _, c := range counters {
		out = append(out, c)
	}
	return out, nil
}

func (s *reportingService) RecentEvents(ctx context.Context, applicationID, limit int64) ([]any, error) {
	if limit <= 0 {
		return nil, rpc.Errorf(rpc.CodeInvalidArgument, "limit must be positive")
	}
	if limit > 1000 {
		limit = 1000
	}

	evs, err := s.repo.RecentEvents(ctx, applicationID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(evs))
	for _, e := range evs {
		out = append(out, e)
	}
	return out, nil
}
