package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"pricescout-engine/internal/config"
	"pricescout-engine/internal/domain"
	"pricescout-engine/internal/events"
	"pricescout-engine/internal/scrape/types"
	"pricescout-engine/internal/tracker"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// Atomic stores
	CfgVal         *atomic.Value // stores config.Config
	ResearchStatus *atomic.Value // stores types.ResearchStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Tracker *tracker.Client

	// Where uploaded item photos land (dataDir/uploads)
	UploadDir string

	// Research entrypoints (inject for testability)
	NewSearcher func(cfg config.Config) types.Searcher
	RunResearch func(ctx context.Context, db *sql.DB, s types.Searcher, item domain.Item, onChange func()) (types.Outcome, error)
	RunBulk     func(ctx context.Context, db *sql.DB, s types.Searcher, items []domain.Item, limit int, onChange func()) map[int64]types.Outcome
}
