// Package monitoring gathers dashboard health metrics and raises alerts when
// the archive backlog grows faster than promotion drains it.
package monitoring

import (
	"context"
	"time"

	"github.com/sells-group/prospect-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of dashboard health.
type MetricsSnapshot struct {
	Companies       int `json:"companies"`
	Contacts        int `json:"contacts"`
	Lists           int `json:"lists"`
	Searches        int `json:"searches"`
	ArchivedResults int `json:"archived_results"`
	PromotedResults int `json:"promoted_results"`

	// ArchiveBacklog is the number of archived results never promoted.
	ArchiveBacklog int `json:"archive_backlog"`
	// PromotedRatio is promoted over archived, 0 when nothing is archived.
	PromotedRatio float64 `json:"promoted_ratio"`

	CollectedAt time.Time `json:"collected_at"`
}

// Collector gathers metrics from the store.
type Collector struct {
	store store.Store
}

func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot of the dashboard's row counts and derived
// promotion metrics.
func (c *Collector) Collect(ctx context.Context) (*MetricsSnapshot, error) {
	counts, err := c.store.Counts(ctx)
	if err != nil {
		return nil, err
	}

	snap := &MetricsSnapshot{
		Companies:       counts.Companies,
		Contacts:        counts.Contacts,
		Lists:           counts.Lists,
		Searches:        counts.Searches,
		ArchivedResults: counts.ArchivedResults,
		PromotedResults: counts.PromotedResults,
		ArchiveBacklog:  counts.ArchivedResults - counts.PromotedResults,
		CollectedAt:     time.Now().UTC(),
	}
	if counts.ArchivedResults > 0 {
		snap.PromotedRatio = float64(counts.PromotedResults) / float64(counts.ArchivedResults)
	}
	return snap, nil
}
