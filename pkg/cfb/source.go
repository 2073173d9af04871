package cfb

import "context"

// GameSource provides read access to stored game records. The engines
// consume games through this interface and never write back.
type GameSource interface {
	// UpcomingGames returns games that have not been completed, ordered
	// by start date. limit <= 0 means no limit.
	UpcomingGames(ctx context.Context, limit int) ([]Game, error)

	// CompletedGames returns the completed games for a season, ordered
	// by start date.
	CompletedGames(ctx context.Context, season int) ([]Game, error)
}

// RatingSource provides read access to team rating snapshots.
type RatingSource interface {
	// Ratings returns the current rating snapshot for every known team,
	// keyed by team ID.
	Ratings(ctx context.Context) (map[int64]RatingContext, error)
}

// RatingLookup resolves a team ID to its rating snapshot. A false
// return means no snapshot is known; the engine degrades to neutral
// contributions rather than failing.
type RatingLookup func(teamID int64) (RatingContext, bool)

// LookupFromMap adapts a ratings map to a RatingLookup.
func LookupFromMap(m map[int64]RatingContext) RatingLookup {
	return func(teamID int64) (RatingContext, bool) {
		rc, ok := m[teamID]
		return rc, ok
	}
}
