package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
	"github.com/rickspicks/cfb-engine/pkg/metrics"
)

// DefaultTopPlayThreshold is the minimum confidence score for a
// prediction to rank as a top play.
const DefaultTopPlayThreshold = 65.0

// RunnerConfig configures the batch runner.
type RunnerConfig struct {
	// Workers bounds the prediction goroutines. Default: GOMAXPROCS.
	Workers int
	// TopPlayThreshold is the minimum confidence score for top plays.
	TopPlayThreshold float64
}

// DefaultRunnerConfig returns default configuration.
func DefaultRunnerConfig() *RunnerConfig {
	return &RunnerConfig{
		Workers:          runtime.GOMAXPROCS(0),
		TopPlayThreshold: DefaultTopPlayThreshold,
	}
}

// FailedGame records one game that could not be predicted inside a
// batch. Failures never abort the batch.
type FailedGame struct {
	GameID int64  `json:"game_id"`
	Reason string `json:"reason"`
}

// BatchResult holds the outcome of one batch run. Predictions and
// Failures are ordered by game ID, so the result is deterministic
// regardless of worker completion order.
type BatchResult struct {
	RunID       uuid.UUID        `json:"run_id"`
	Predictions []cfb.Prediction `json:"predictions"`
	Failures    []FailedGame     `json:"failures,omitempty"`
	Elapsed     time.Duration    `json:"elapsed"`
}

// Runner applies the predictor across a collection of games. Games are
// independent, so they are computed in parallel with no shared mutable
// state; the only aggregation point is the final sorted merge.
type Runner struct {
	predictor *Predictor
	cfg       *RunnerConfig
	metrics   *metrics.EngineMetrics
}

// NewRunner creates a batch runner. Nil configs use defaults.
func NewRunner(predictor *Predictor, cfg *RunnerConfig) *Runner {
	if predictor == nil {
		predictor = NewPredictor(nil)
	}
	if cfg == nil {
		cfg = DefaultRunnerConfig()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.TopPlayThreshold == 0 {
		cfg.TopPlayThreshold = DefaultTopPlayThreshold
	}
	return &Runner{predictor: predictor, cfg: cfg}
}

// SetMetrics attaches a metrics collector. Optional; a nil collector
// disables instrumentation.
func (r *Runner) SetMetrics(m *metrics.EngineMetrics) {
	r.metrics = m
}

type batchItem struct {
	pred *cfb.Prediction
	fail *FailedGame
}

// Run predicts every game in the batch. A failure on one game is
// recorded and skipped; the remaining games still produce predictions.
func (r *Runner) Run(ctx context.Context, games []cfb.Game, lookup cfb.RatingLookup) *BatchResult {
	start := time.Now()
	result := &BatchResult{RunID: uuid.New()}

	jobs := make(chan int)
	items := make(chan batchItem, len(games))

	for w := 0; w < r.cfg.Workers; w++ {
		go func() {
			for i := range jobs {
				items <- r.predictOne(&games[i], lookup)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range games {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	dispatched := len(games)
	for n := 0; n < dispatched; n++ {
		select {
		case item := <-items:
			if item.pred != nil {
				result.Predictions = append(result.Predictions, *item.pred)
			} else {
				result.Failures = append(result.Failures, *item.fail)
			}
		case <-ctx.Done():
			dispatched = 0
		}
	}

	sort.Slice(result.Predictions, func(i, j int) bool {
		return result.Predictions[i].GameID < result.Predictions[j].GameID
	})
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].GameID < result.Failures[j].GameID
	})
	result.Elapsed = time.Since(start)

	if r.metrics != nil {
		for i := range result.Predictions {
			r.metrics.RecordPrediction(&result.Predictions[i])
		}
		r.metrics.RecordBatch(result.Elapsed, len(result.Failures), len(r.TopPlays(result)))
	}

	return result
}

// predictOne wraps a single prediction, converting errors and panics
// into a recorded failure so one bad game cannot take down the batch.
func (r *Runner) predictOne(game *cfb.Game, lookup cfb.RatingLookup) (item batchItem) {
	defer func() {
		if rec := recover(); rec != nil {
			item = batchItem{fail: &FailedGame{GameID: game.ID, Reason: fmt.Sprintf("panic: %v", rec)}}
		}
	}()

	var home, away *cfb.RatingContext
	if lookup != nil {
		if rc, ok := lookup(game.HomeTeamID); ok {
			home = &rc
		}
		if rc, ok := lookup(game.AwayTeamID); ok {
			away = &rc
		}
	}

	pred, err := r.predictor.Predict(game, home, away)
	if err != nil {
		return batchItem{fail: &FailedGame{GameID: game.ID, Reason: err.Error()}}
	}
	return batchItem{pred: pred}
}

// TopPlays filters the batch down to predictions at or above the
// configured confidence threshold, ranked by score with larger spread
// edges breaking ties. Ordering is fully deterministic: game ID is the
// final tie-break.
func (r *Runner) TopPlays(result *BatchResult) []cfb.Prediction {
	var plays []cfb.Prediction
	for _, p := range result.Predictions {
		if p.ConfidenceScore >= r.cfg.TopPlayThreshold {
			plays = append(plays, p)
		}
	}
	sort.Slice(plays, func(i, j int) bool {
		if plays[i].ConfidenceScore != plays[j].ConfidenceScore {
			return plays[i].ConfidenceScore > plays[j].ConfidenceScore
		}
		if plays[i].SpreadEdge != plays[j].SpreadEdge {
			return plays[i].SpreadEdge > plays[j].SpreadEdge
		}
		return plays[i].GameID < plays[j].GameID
	})
	return plays
}
