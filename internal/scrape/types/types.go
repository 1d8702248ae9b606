package types

import (
	"context"

	"pricescout-engine/internal/domain"
)

// Searcher is the orchestrator contract: one call re-executes the full
// network sequence and returns merged, detail-enriched listings. A nil
// error with an empty slice means the site really had no matches; a
// non-nil error means the primary fetch or parse failed.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) ([]domain.Listing, error)
}

type OutcomeStatus string

const (
	OutcomeFound       OutcomeStatus = "found"
	OutcomeEmpty       OutcomeStatus = "empty"
	OutcomeFetchFailed OutcomeStatus = "fetch_failed"
)

// Outcome distinguishes "zero matches exist" from "the fetch failed",
// which a bare empty slice cannot.
type Outcome struct {
	Status  OutcomeStatus `json:"status"`
	Added   int           `json:"added"`
	Updated int           `json:"updated"`
}

type ResearchStatus struct {
	LastRunAt   string `json:"last_run_at"`
	LastOkAt    string `json:"last_ok_at"`
	LastError   string `json:"last_error"`
	LastOutcome string `json:"last_outcome"`
	LastAdded   int    `json:"last_added"`
	Running     bool   `json:"running"`
}
