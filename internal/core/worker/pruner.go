package worker

import (
	"context"
	"log/slog"
	"time"
)

// ArtifactPruner deletes report artifacts older than the threshold.
type ArtifactPruner interface {
	PruneOlderThan(threshold time.Time) (int, error)
}

// Pruner deletes old report artifacts based on retention policy.
type Pruner struct {
	store     ArtifactPruner
	retention time.Duration
	log       *slog.Logger
}

// NewPruner creates a new Pruner worker.
func NewPruner(store ArtifactPruner, retention time.Duration) *Pruner {
	return &Pruner{
		store:     store,
		retention: retention,
		log:       slog.Default().With("component", "pruner"),
	}
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	// Check interval: 10% of the retention period, clamped to [1m, 1h].
	interval := min(p.retention/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial prune
	p.prune()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune()
		}
	}
}

func (p *Pruner) prune() {
	threshold := time.Now().Add(-p.retention)
	removed, err := p.store.PruneOlderThan(threshold)
	if err != nil {
		p.log.Error("artifact prune failed", "error", err)
		return
	}
	if removed > 0 {
		p.log.Info("pruned old report artifacts", "removed", removed)
	}
}
