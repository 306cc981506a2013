package service

import (
	"context"

	"github.com/xxxsen/docchat/internal/kb"
	"github.com/xxxsen/docchat/internal/model"
	"github.com/xxxsen/docchat/internal/repo"
)

type PerformanceReport struct {
	Latency   StatsSnapshot       `json:"latency"`
	Outcomes  model.OutcomeCounts `json:"outcomes"`
	Documents int                 `json:"documents"`
}

// ReportService combines the rolling latency window with persisted outcome
// counters for the reporting endpoint.
type ReportService struct {
	turns   *repo.TurnRepo
	store   *kb.Store
	latency *LatencyStats
}

func NewReportService(turns *repo.TurnRepo, store *kb.Store, latency *LatencyStats) *ReportService {
	return &ReportService{turns: turns, store: store, latency: latency}
}

func (s *ReportService) Performance(ctx context.Context) (*PerformanceReport, error) {
	outcomes, err := s.turns.CountOutcomes(ctx)
	if err != nil {
		return nil, err
	}
	return &PerformanceReport{
		Latency:   s.latency.Snapshot(),
		Outcomes:  *outcomes,
		Documents: s.store.Len(),
	}, nil
}
