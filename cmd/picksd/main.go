// picksd is the picks engine daemon. It periodically refreshes game and
// team data, runs batch predictions over upcoming games, grades the
// model's picks on completed games, and exposes Prometheus metrics.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickspicks/cfb-engine/pkg/backtest"
	"github.com/rickspicks/cfb-engine/pkg/cfb"
	"github.com/rickspicks/cfb-engine/pkg/engine"
	"github.com/rickspicks/cfb-engine/pkg/ingest"
	"github.com/rickspicks/cfb-engine/pkg/metrics"
	"github.com/rickspicks/cfb-engine/pkg/store"
)

var (
	dsn        = flag.String("dsn", "", "Postgres DSN (or DATABASE_URL env)")
	httpAddr   = flag.String("http", ":9090", "HTTP address for the metrics endpoint")
	interval   = flag.Duration("interval", time.Hour, "Cycle interval")
	threshold  = flag.Float64("threshold", engine.DefaultTopPlayThreshold, "Minimum confidence score for top plays")
	configPath = flag.String("config", "", "Engine config yaml (defaults when empty)")
	limit      = flag.Int("limit", 50, "Max upcoming games per cycle")
	season     = flag.Int("season", time.Now().Year(), "Season for sync and grading")
	week       = flag.Int("week", 0, "Week for sync (0 = full season)")
	sync       = flag.Bool("sync", false, "Run the ingest pipeline each cycle (needs CFBD_API_KEY)")
	verbose    = flag.Bool("verbose", false, "Verbose logging")
)

func main() {
	godotenv.Load()
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("Starting picks engine daemon")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	d, err := newDaemon(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize daemon: %v", err)
	}
	defer d.store.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", d.metrics.Handler())
	srv := &http.Server{Addr: *httpAddr, Handler: mux}
	go func() {
		log.Printf("Metrics listening on %s", *httpAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[ERROR] metrics server: %v", err)
		}
	}()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	d.runCycle(ctx)
	for {
		select {
		case <-ticker.C:
			d.runCycle(ctx)
		case sig := <-sigCh:
			log.Printf("Received %v, shutting down", sig)
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			srv.Shutdown(shutdownCtx)
			shutdownCancel()
			return
		}
	}
}

type daemon struct {
	store    *store.Postgres
	runner   *engine.Runner
	pipeline *ingest.Pipeline
	backtest *backtest.Backtest
	metrics  *metrics.EngineMetrics
}

func newDaemon(ctx context.Context) (*daemon, error) {
	dbURL := *dsn
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	pg, err := store.Open(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, err
	}

	cfg := engine.DefaultConfig()
	if *configPath != "" {
		cfg, err = engine.LoadConfig(*configPath)
		if err != nil {
			pg.Close()
			return nil, err
		}
	}

	runner := engine.NewRunner(engine.NewPredictor(cfg), &engine.RunnerConfig{
		TopPlayThreshold: *threshold,
	})
	m := metrics.NewEngineMetrics()
	runner.SetMetrics(m)

	bt := backtest.New(&backtest.Config{Engine: cfg, MinConfidence: *threshold})
	bt.SetMetrics(m)

	d := &daemon{
		store:    pg,
		runner:   runner,
		metrics:  m,
		backtest: bt,
	}
	if *sync {
		key := os.Getenv("CFBD_API_KEY")
		if key == "" {
			log.Println("[WARN] -sync set but CFBD_API_KEY is empty; sync will fail until it is provided")
		}
		d.pipeline = ingest.NewPipeline(ingest.NewClient(key), pg)
	}
	return d, nil
}

func (d *daemon) runCycle(ctx context.Context) {
	if d.pipeline != nil {
		sum, err := d.pipeline.Sync(ctx, *season, *week)
		if err != nil {
			log.Printf("[sync] error: %v", err)
		} else {
			log.Printf("[sync] %d teams, %d games (%d unmatched rows), run %s",
				sum.Teams, sum.Games, sum.Unmatched, sum.RunID)
		}
	}

	d.predictUpcoming(ctx)
	d.gradeCompleted(ctx)
}

func (d *daemon) predictUpcoming(ctx context.Context) {
	games, err := d.store.UpcomingGames(ctx, *limit)
	if err != nil {
		log.Printf("[predict] load games: %v", err)
		return
	}
	if len(games) == 0 {
		log.Println("[predict] no upcoming games")
		return
	}
	lookup, err := d.store.RatingLookup(ctx)
	if err != nil {
		log.Printf("[predict] load ratings: %v", err)
		return
	}

	result := d.runner.Run(ctx, games, lookup)
	log.Printf("[predict] run %s: %d predictions, %d failures (%.1fms)",
		result.RunID, len(result.Predictions), len(result.Failures),
		float64(result.Elapsed.Microseconds())/1000)
	for _, f := range result.Failures {
		log.Printf("[predict]   game %d failed: %s", f.GameID, f.Reason)
	}

	plays := d.runner.TopPlays(result)
	log.Printf("[predict] %d top plays at threshold %.0f", len(plays), *threshold)
	for _, p := range plays {
		log.Printf("[PLAY] %s at %s — %s tier (%.0f): %s / %s",
			p.AwayTeam, p.HomeTeam, p.ConfidenceTier, p.ConfidenceScore,
			p.RecommendedBet, p.RecommendedTotal)
		if *verbose {
			for _, note := range p.Notes {
				log.Printf("        %s", note)
			}
		}
	}
}

// gradeCompleted re-derives the model's picks for the season's
// completed games and grades them. The predictor is deterministic, so
// recomputing a past prediction reproduces the pick exactly as it
// stood before kickoff.
func (d *daemon) gradeCompleted(ctx context.Context) {
	games, err := d.store.CompletedGames(ctx, *season)
	if err != nil {
		log.Printf("[grade] load games: %v", err)
		return
	}
	if len(games) == 0 {
		return
	}
	lookup, err := d.store.RatingLookup(ctx)
	if err != nil {
		log.Printf("[grade] load ratings: %v", err)
		return
	}

	result, err := d.backtest.Run(ctx, games, lookup)
	if err != nil {
		log.Printf("[grade] %v", err)
		return
	}

	overall := result.Ledger.Overall()
	log.Printf("[grade] season %d: %s ATS %s, totals %s",
		*season, statusStr(overall.Profitable()),
		result.Ledger.Spread.String(), result.Ledger.Total.String())
	for _, tier := range []cfb.ConfidenceTier{cfb.TierHigh, cfb.TierMedium, cfb.TierLow} {
		if rec := result.Ledger.ByTier[tier]; rec != nil && rec.Settled()+rec.Pushes > 0 {
			log.Printf("[grade]   %-6s %s", tier, rec.String())
		}
	}
}

func statusStr(profitable bool) string {
	if profitable {
		return "PROFITABLE"
	}
	return "below break-even"
}
