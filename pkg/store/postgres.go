// Package store provides the Postgres-backed storage collaborator. The
// engines consume it read-only through the cfb source interfaces; the
// ingestion pipeline writes through the upsert methods.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
)

// Postgres implements cfb.GameSource and cfb.RatingSource over a
// Postgres database.
type Postgres struct {
	db *sql.DB
}

var (
	_ cfb.GameSource   = (*Postgres)(nil)
	_ cfb.RatingSource = (*Postgres)(nil)
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS teams (
	id              BIGINT PRIMARY KEY,
	name            TEXT NOT NULL,
	conference      TEXT NOT NULL DEFAULT '',
	poll_rank       INT,
	elo             DOUBLE PRECISION NOT NULL DEFAULT 1500,
	rating_overall  DOUBLE PRECISION,
	rating_offense  DOUBLE PRECISION,
	rating_defense  DOUBLE PRECISION,
	rating_st       DOUBLE PRECISION,
	wins            INT NOT NULL DEFAULT 0,
	losses          INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS games (
	id               BIGINT PRIMARY KEY,
	season           INT NOT NULL,
	week             INT NOT NULL,
	start_date       TIMESTAMPTZ NOT NULL,
	home_team_id     BIGINT NOT NULL,
	away_team_id     BIGINT NOT NULL,
	home_team        TEXT NOT NULL,
	away_team        TEXT NOT NULL,
	neutral_site     BOOLEAN NOT NULL DEFAULT FALSE,
	market_spread    DOUBLE PRECISION,
	market_total     DOUBLE PRECISION,
	temperature_f    DOUBLE PRECISION,
	wind_mph         DOUBLE PRECISION,
	precipitation_in DOUBLE PRECISION,
	is_dome          BOOLEAN NOT NULL DEFAULT FALSE,
	completed        BOOLEAN NOT NULL DEFAULT FALSE,
	home_score       INT,
	away_score       INT
);

CREATE INDEX IF NOT EXISTS games_season_week_idx ON games (season, week);
CREATE INDEX IF NOT EXISTS games_completed_idx ON games (completed, start_date);
`

// EnsureSchema creates the tables if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const gameColumns = `id, season, week, start_date, home_team_id, away_team_id,
	home_team, away_team, neutral_site, market_spread, market_total,
	temperature_f, wind_mph, precipitation_in, is_dome, completed,
	home_score, away_score`

// UpcomingGames returns games that have not been completed, ordered by
// start date. limit <= 0 means no limit.
func (p *Postgres) UpcomingGames(ctx context.Context, limit int) ([]cfb.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE NOT completed ORDER BY start_date`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	return p.queryGames(ctx, query, args...)
}

// CompletedGames returns the completed games for a season, ordered by
// start date.
func (p *Postgres) CompletedGames(ctx context.Context, season int) ([]cfb.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games
		WHERE completed AND season = $1 ORDER BY start_date`
	return p.queryGames(ctx, query, season)
}

func (p *Postgres) queryGames(ctx context.Context, query string, args ...any) ([]cfb.Game, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var games []cfb.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func scanGame(rows *sql.Rows) (cfb.Game, error) {
	var g cfb.Game
	var spread, total, temp, wind, precip sql.NullFloat64
	var homeScore, awayScore sql.NullInt64
	var isDome bool

	err := rows.Scan(
		&g.ID, &g.Season, &g.Week, &g.StartDate, &g.HomeTeamID, &g.AwayTeamID,
		&g.HomeTeam, &g.AwayTeam, &g.NeutralSite, &spread, &total,
		&temp, &wind, &precip, &isDome, &g.Completed,
		&homeScore, &awayScore,
	)
	if err != nil {
		return g, err
	}

	g.MarketSpread = nullFloat(spread)
	g.MarketTotal = nullFloat(total)
	if isDome || temp.Valid || wind.Valid || precip.Valid {
		g.Weather = &cfb.Weather{
			TemperatureF:    nullFloat(temp),
			WindMPH:         nullFloat(wind),
			PrecipitationIn: nullFloat(precip),
			IsDome:          isDome,
		}
	}
	g.HomeScore = nullInt(homeScore)
	g.AwayScore = nullInt(awayScore)
	return g, nil
}

// Ratings returns the current rating snapshot for every known team.
func (p *Postgres) Ratings(ctx context.Context) (map[int64]cfb.RatingContext, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, conference, poll_rank, elo,
		rating_overall, rating_offense, rating_defense, rating_st, wins, losses
		FROM teams`)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	ratings := make(map[int64]cfb.RatingContext)
	for rows.Next() {
		var rc cfb.RatingContext
		var rank sql.NullInt64
		var overall, offense, defense, st sql.NullFloat64
		if err := rows.Scan(&rc.TeamID, &rc.Conference, &rank, &rc.Elo,
			&overall, &offense, &defense, &st, &rc.Wins, &rc.Losses); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		rc.PollRank = nullInt(rank)
		if overall.Valid {
			rc.Composite = &cfb.CompositeRating{
				Overall:      overall.Float64,
				Offense:      offense.Float64,
				Defense:      defense.Float64,
				SpecialTeams: st.Float64,
			}
		}
		ratings[rc.TeamID] = rc
	}
	return ratings, rows.Err()
}

// RatingLookup loads the ratings once and returns a lookup over the
// snapshot, so a batch run sees a consistent view.
func (p *Postgres) RatingLookup(ctx context.Context) (cfb.RatingLookup, error) {
	ratings, err := p.Ratings(ctx)
	if err != nil {
		return nil, err
	}
	return cfb.LookupFromMap(ratings), nil
}

// UpsertTeam inserts or updates a team record.
func (p *Postgres) UpsertTeam(ctx context.Context, t *cfb.Team) error {
	var overall, offense, defense, st any
	if t.Composite != nil {
		overall, offense, defense, st = t.Composite.Overall, t.Composite.Offense,
			t.Composite.Defense, t.Composite.SpecialTeams
	}
	var rank any
	if t.PollRank != nil {
		rank = *t.PollRank
	}
	_, err := p.db.ExecContext(ctx, `INSERT INTO teams
		(id, name, conference, poll_rank, elo, rating_overall, rating_offense,
		 rating_defense, rating_st, wins, losses)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			conference = EXCLUDED.conference,
			poll_rank = EXCLUDED.poll_rank,
			elo = EXCLUDED.elo,
			rating_overall = EXCLUDED.rating_overall,
			rating_offense = EXCLUDED.rating_offense,
			rating_defense = EXCLUDED.rating_defense,
			rating_st = EXCLUDED.rating_st,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses`,
		t.ID, t.Name, t.Conference, rank, t.Elo, overall, offense, defense, st,
		t.Wins, t.Losses)
	if err != nil {
		return fmt.Errorf("upsert team %d: %w", t.ID, err)
	}
	return nil
}

// UpsertGame inserts or updates a game record.
func (p *Postgres) UpsertGame(ctx context.Context, g *cfb.Game) error {
	var temp, wind, precip any
	var isDome bool
	if g.Weather != nil {
		temp, wind, precip = nullableFloat(g.Weather.TemperatureF),
			nullableFloat(g.Weather.WindMPH), nullableFloat(g.Weather.PrecipitationIn)
		isDome = g.Weather.IsDome
	}
	_, err := p.db.ExecContext(ctx, `INSERT INTO games
		(id, season, week, start_date, home_team_id, away_team_id, home_team,
		 away_team, neutral_site, market_spread, market_total, temperature_f,
		 wind_mph, precipitation_in, is_dome, completed, home_score, away_score)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (id) DO UPDATE SET
			season = EXCLUDED.season,
			week = EXCLUDED.week,
			start_date = EXCLUDED.start_date,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			neutral_site = EXCLUDED.neutral_site,
			market_spread = EXCLUDED.market_spread,
			market_total = EXCLUDED.market_total,
			temperature_f = EXCLUDED.temperature_f,
			wind_mph = EXCLUDED.wind_mph,
			precipitation_in = EXCLUDED.precipitation_in,
			is_dome = EXCLUDED.is_dome,
			completed = EXCLUDED.completed,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score`,
		g.ID, g.Season, g.Week, g.StartDate, g.HomeTeamID, g.AwayTeamID,
		g.HomeTeam, g.AwayTeam, g.NeutralSite,
		nullableFloat(g.MarketSpread), nullableFloat(g.MarketTotal),
		temp, wind, precip, isDome, g.Completed,
		nullableInt(g.HomeScore), nullableInt(g.AwayScore))
	if err != nil {
		return fmt.Errorf("upsert game %d: %w", g.ID, err)
	}
	return nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
