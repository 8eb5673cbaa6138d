package usecase

import (
	"context"
	"errors"
	"strings"

	"WaveScan/internal/domain/models"
	domrepo "WaveScan/internal/domain/repository"
)

// SnapshotReader serves the latest stored aggregate to the dashboard.
type SnapshotReader struct {
	store domrepo.SnapshotStore
}

func NewSnapshotReader(store domrepo.SnapshotStore) *SnapshotReader {
	return &SnapshotReader{store: store}
}

// Latest returns the stored snapshot, or an initializing view before the first cycle.
func (r *SnapshotReader) Latest(ctx context.Context) (models.SnapshotView, error) {
	res, err := r.store.Load(ctx)
	if errors.Is(err, domrepo.ErrSnapshotNotFound) {
		return models.EmptySnapshotView(), nil
	}
	if err != nil {
		return models.SnapshotView{}, err
	}
	return models.SnapshotView{AggregateResult: res, Status: models.StatusOK}, nil
}

// Search flattens the snapshot and filters it. Group order is preserved, so each group
// keeps its own ordering.
func (r *SnapshotReader) Search(ctx context.Context, req models.SignalsSearchRequest) (models.SignalsSearchResponse, error) {
	view, err := r.Latest(ctx)
	if err != nil {
		return models.SignalsSearchResponse{}, err
	}
	out := models.SignalsSearchResponse{
		Status:    view.Status,
		UpdatedAt: view.GeneratedAt,
		Signals:   []models.Signal{},
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	for _, g := range view.Groups {
		if req.Group != "" && g.Group != req.Group {
			continue
		}
		if req.Strategy != "" && string(g.Strategy) != req.Strategy {
			continue
		}
		for _, s := range g.Signals {
			if req.Type != "" && string(s.Type) != req.Type {
				continue
			}
			if symbol != "" && s.Symbol != symbol {
				continue
			}
			if req.Limit > 0 && len(out.Signals) >= req.Limit {
				out.Count = len(out.Signals)
				return out, nil
			}
			out.Signals = append(out.Signals, s)
		}
	}
	out.Count = len(out.Signals)
	return out, nil
}
