// Package archive records every search and its verbatim provider results.
// Archived payloads are the source of truth for later promotion; they are
// never rewritten after landing.
package archive

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/store"
)

type Archiver struct {
	store store.Store
	log   *zap.Logger
}

func NewArchiver(st store.Store) *Archiver {
	return &Archiver{store: st, log: zap.L().Named("archive")}
}

// resultID pulls the provider id out of a raw result without decoding the
// rest of the payload.
type resultID struct {
	ID string `json:"id"`
}

// Token builds the stable handle for one archived result. Results carrying a
// provider id get a deterministic token so re-archiving the same result is
// detectable; results without one get a random suffix.
func Token(searchID string, payload json.RawMessage) string {
	var r resultID
	if err := json.Unmarshal(payload, &r); err == nil && r.ID != "" {
		return searchID + ":" + r.ID
	}
	return searchID + ":" + uuid.New().String()
}

// Archive records the search and lands every result verbatim. The search row
// is written first so the archive rows always have a parent; a failure at
// either step surfaces to the caller.
func (a *Archiver) Archive(ctx context.Context, ownerID, searchType string, params json.RawMessage, results []json.RawMessage) (*lead.SearchRecord, error) {
	if searchType != lead.SearchPeople && searchType != lead.SearchCompanies {
		return nil, eris.Errorf("archive: unknown search type %q", searchType)
	}

	rec := &lead.SearchRecord{
		OwnerID:    ownerID,
		SearchType: searchType,
		Params:     params,
	}
	if err := a.store.CreateSearch(ctx, rec); err != nil {
		return nil, err
	}

	rows := make([]lead.ArchivedResult, 0, len(results))
	for _, payload := range results {
		rows = append(rows, lead.ArchivedResult{
			SearchID: rec.ID,
			Token:    Token(rec.ID, payload),
			Payload:  payload,
		})
	}
	if err := a.store.ArchiveResults(ctx, rows); err != nil {
		return nil, err
	}

	// The count is committed only after the rows land, so a half-failed
	// archive reads as zero results rather than promising rows it lost.
	if err := a.store.UpdateSearchResultCount(ctx, rec.ID, len(rows)); err != nil {
		return nil, err
	}
	rec.ResultCount = len(rows)

	a.log.Info("search archived",
		zap.String("search_id", rec.ID),
		zap.String("search_type", searchType),
		zap.Int("results", len(rows)))
	return rec, nil
}

// Results returns the archived rows for a search. Retrieval failures are
// logged and reported as an empty page so a broken archive never blocks the
// rest of the dashboard.
func (a *Archiver) Results(ctx context.Context, searchID string) []lead.ArchivedResult {
	rows, err := a.store.GetArchivedResults(ctx, searchID)
	if err != nil {
		a.log.Warn("archived results unavailable",
			zap.String("search_id", searchID), zap.Error(err))
		return nil
	}
	return rows
}

// Find returns the archived row matching a token, or nil when the token is
// unknown within the search.
func (a *Archiver) Find(ctx context.Context, searchID, token string) (*lead.ArchivedResult, error) {
	rows, err := a.store.GetArchivedResults(ctx, searchID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Token == token {
			return &rows[i], nil
		}
	}
	return nil, nil
}
