package main

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"pricescout-engine/internal/config"
	"pricescout-engine/internal/events"
	"pricescout-engine/internal/httpapi"
	"pricescout-engine/internal/scrape"
	"pricescout-engine/internal/scrape/craigslist"
	"pricescout-engine/internal/scrape/types"
	"pricescout-engine/internal/scrape/util"
	"pricescout-engine/internal/secrets"
	"pricescout-engine/internal/store"
	"pricescout-engine/internal/tracker"
	"pricescout-engine/internal/web"
)

func main() {
	// .env is optional; real env vars win.
	_ = godotenv.Load()

	// Engine data dir: use env if provided, else local folder.
	dataDir := os.Getenv("PRICESCOUT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir; a second instance would race the db
	// and the upload dir.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock failed: %v", err)
	}
	if !locked {
		log.Fatalf("another engine already holds %s", lock.Path())
	}
	defer lock.Unlock()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		err = config.OverlayRegions(&cfg, filepath.Join(dataDir, "regions.yml"))
		return cfg, err
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	db, err := store.Open(filepath.Join(dataDir, "pricescout.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	hub := events.NewHub()

	var researchStatus atomic.Value
	researchStatus.Store(types.ResearchStatus{})

	trk := tracker.New(cfg.Tracker.SiteURL, cfg.Tracker.Email, func() (string, error) {
		cur := cfgVal.Load().(config.Config)
		return secrets.GetTrackerToken(secrets.TrackerKeyringAccount(cur))
	})

	uploadDir := filepath.Join(dataDir, "uploads")

	mux := httpapi.NewMux(httpapi.Deps{
		DB:             db.Pool,
		Hub:            hub,
		CfgVal:         &cfgVal,
		ResearchStatus: &researchStatus,
		UserCfgPath:    userCfgPath,
		LoadCfg:        loadCfg,
		Tracker:        trk,
		UploadDir:      uploadDir,
		NewSearcher:    newSearcher,
		RunResearch:    scrape.RunResearch,
		RunBulk:        scrape.RunBulkResearch,
	})

	// Built-in HTML views plus uploaded photos.
	wh := web.Handlers{DB: db.Pool}
	mux.HandleFunc("/", wh.ItemsList)
	mux.HandleFunc("/view/items/", wh.ItemDetail)
	mux.Handle("/uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(uploadDir))))

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (data=%s)", addr, dataDir)

	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Recover,
		httpapi.AccessLog,
		httpapi.Cors,
	)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Shutdown needs the live srv, so it can't move into the router.
	token, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("shutdown token: %s", token)
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))

	log.Fatal(srv.Serve(ln))
}

func newSearcher(cfg config.Config) types.Searcher {
	timeout := time.Duration(cfg.Scrape.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := &http.Client{Timeout: timeout}
	pacer := util.NewHostPacer(time.Duration(cfg.Scrape.PaceMillis) * time.Millisecond)

	baseURLs := cfg.RegionBaseURLs()
	if len(baseURLs) == 0 {
		baseURLs = nil
	}
	return craigslist.New(craigslist.Config{
		Region:     cfg.Scrape.Region,
		MaxResults: cfg.Scrape.MaxResults,
		BaseURLs:   baseURLs,
	}, hc, pacer)
}
