// cfb-backtest replays the prediction engine over completed seasons and
// reports the ATS record against the posted lines.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickspicks/cfb-engine/pkg/backtest"
	"github.com/rickspicks/cfb-engine/pkg/cfb"
	"github.com/rickspicks/cfb-engine/pkg/engine"
	"github.com/rickspicks/cfb-engine/pkg/grading"
	"github.com/rickspicks/cfb-engine/pkg/store"
)

var (
	dsn           = flag.String("dsn", "", "Postgres DSN (or DATABASE_URL env)")
	seasons       = flag.String("seasons", "", "Comma-separated seasons, e.g. 2022,2023")
	dataFile      = flag.String("data", "", "JSON game file to replay instead of the database")
	configPath    = flag.String("config", "", "Engine config yaml (defaults when empty)")
	minConfidence = flag.Float64("min-confidence", 0, "Only grade picks at or above this score (0 = all)")
	outputFile    = flag.String("output", "", "Write the full result as JSON")
	verbose       = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	godotenv.Load()
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime)

	cfg := engine.DefaultConfig()
	if *configPath != "" {
		loaded, err := engine.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	ctx := context.Background()
	games, lookup, err := loadGames(ctx)
	if err != nil {
		log.Fatalf("Failed to load games: %v", err)
	}
	log.Printf("Replaying %d games", len(games))

	bt := backtest.New(&backtest.Config{Engine: cfg, MinConfidence: *minConfidence})
	start := time.Now()
	result, err := bt.Run(ctx, games, lookup)
	if err != nil {
		log.Fatalf("Backtest failed: %v", err)
	}

	printResults(result, time.Since(start))

	if *outputFile != "" {
		if err := exportResults(result, *outputFile); err != nil {
			log.Printf("Failed to export results: %v", err)
		} else {
			log.Printf("Results exported to: %s", *outputFile)
		}
	}
}

// loadGames reads the replay set from the database or, with -data, from
// a JSON file of game records (ratings still come from the database
// when a DSN is available).
func loadGames(ctx context.Context) ([]cfb.Game, cfb.RatingLookup, error) {
	var games []cfb.Game
	var lookup cfb.RatingLookup

	dbURL := *dsn
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	var pg *store.Postgres
	if dbURL != "" {
		var err error
		pg, err = store.Open(ctx, dbURL)
		if err != nil {
			return nil, nil, err
		}
		defer pg.Close()
		lookup, err = pg.RatingLookup(ctx)
		if err != nil {
			return nil, nil, err
		}
	}

	if *dataFile != "" {
		raw, err := os.ReadFile(*dataFile)
		if err != nil {
			return nil, nil, err
		}
		if err := json.Unmarshal(raw, &games); err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", *dataFile, err)
		}
		return games, lookup, nil
	}

	if pg == nil {
		return nil, nil, fmt.Errorf("either -data or a Postgres DSN is required")
	}
	if *seasons == "" {
		return nil, nil, fmt.Errorf("-seasons is required when replaying from the database")
	}
	for _, s := range strings.Split(*seasons, ",") {
		year, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, nil, fmt.Errorf("bad season %q: %w", s, err)
		}
		seasonGames, err := pg.CompletedGames(ctx, year)
		if err != nil {
			return nil, nil, err
		}
		games = append(games, seasonGames...)
	}
	return games, lookup, nil
}

func printResults(result *backtest.Result, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("=== Backtest Results ===")
	fmt.Printf("Games graded:    %d of %d (%d skipped)\n", result.Picked, result.Games, len(result.Skips))
	fmt.Printf("Elapsed:         %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()

	overall := result.Ledger.Overall()
	fmt.Printf("Overall:         %s\n", overall.String())
	fmt.Printf("ROI:             %+.1f%%\n", overall.ROI()*100)
	fmt.Printf("Break-even:      %.1f%% (%s)\n", grading.BreakEvenPct, profitStr(overall.Profitable()))
	fmt.Println()

	fmt.Printf("Spread record:   %s\n", result.Ledger.Spread.String())
	fmt.Printf("Total record:    %s\n", result.Ledger.Total.String())
	fmt.Println()

	fmt.Println("By confidence tier:")
	for _, tier := range []cfb.ConfidenceTier{cfb.TierHigh, cfb.TierMedium, cfb.TierLow} {
		if rec := result.Ledger.ByTier[tier]; rec != nil {
			fmt.Printf("  %-6s %s\n", tier, rec.String())
		}
	}
	fmt.Println()

	fmt.Printf("Model avg error:  %.2f points\n", result.ModelAbsErr)
	fmt.Printf("Market avg error: %.2f points\n", result.MarketAbsErr)
	if result.MarketAbsErr > 0 {
		diff := (result.MarketAbsErr - result.ModelAbsErr) / result.MarketAbsErr * 100
		fmt.Printf("vs market:        %+.1f%%\n", diff)
	}

	if *verbose && len(result.Skips) > 0 {
		fmt.Println()
		fmt.Println("Skipped games:")
		for _, s := range result.Skips {
			fmt.Printf("  %d: %s\n", s.GameID, s.Reason)
		}
	}
}

func profitStr(profitable bool) string {
	if profitable {
		return "PROFITABLE"
	}
	return "unprofitable"
}

func exportResults(result *backtest.Result, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
