package detectors

import (
	"fmt"

	"WaveScan/internal/domain/models"
	"WaveScan/internal/domain/service"
)

// Registry resolves a detector by strategy name.
type Registry struct {
	detectors map[models.Strategy]service.Detector
}

func NewRegistry(wt WaveTrendParams, bo BreakoutParams) *Registry {
	return &Registry{detectors: map[models.Strategy]service.Detector{
		models.StrategyWaveTrend: NewWaveTrend(wt),
		models.StrategyBreakout:  NewBreakout(bo),
	}}
}

func (r *Registry) Get(strategy models.Strategy) (service.Detector, error) {
	d, ok := r.detectors[strategy]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
	return d, nil
}
