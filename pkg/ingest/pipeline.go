package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
)

// apPoll is the poll used for the team poll-rank field.
const apPoll = "AP Top 25"

// lineProviders is the preference order when several books posted a
// line for the same game.
var lineProviders = []string{"consensus", "Bovada", "DraftKings", "ESPN Bet"}

// Writer is the store surface the pipeline writes through.
type Writer interface {
	UpsertTeam(ctx context.Context, t *cfb.Team) error
	UpsertGame(ctx context.Context, g *cfb.Game) error
}

// Summary reports what one sync run touched.
type Summary struct {
	RunID     uuid.UUID `json:"run_id"`
	Teams     int       `json:"teams"`
	Games     int       `json:"games"`
	Unmatched int       `json:"unmatched"` // rating/line rows with no team or game match
}

// Pipeline is the single configurable sync: it pulls teams, ratings,
// games, lines, and weather from the API and materializes them as Game
// and Team records. Team identity is matched exactly by school name;
// anything that does not match is counted and skipped, never guessed.
// When an observation is absent the stored field stays null — the
// engine treats that as an explicit "no data" default.
type Pipeline struct {
	client *Client
	store  Writer
}

// NewPipeline creates a sync pipeline.
func NewPipeline(client *Client, store Writer) *Pipeline {
	return &Pipeline{client: client, store: store}
}

// SyncTeams refreshes team records for a season: conference membership,
// ELO and SP+ ratings, season record, and AP rank.
func (p *Pipeline) SyncTeams(ctx context.Context, season, week int) (*Summary, error) {
	sum := &Summary{RunID: uuid.New()}

	teams, err := p.client.Teams(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch teams: %w", err)
	}
	byName := make(map[string]*cfb.Team, len(teams))
	ordered := make([]*cfb.Team, 0, len(teams))
	for _, at := range teams {
		t := &cfb.Team{
			ID:         at.ID,
			Name:       at.School,
			Conference: at.Conference,
			Elo:        cfb.DefaultElo,
		}
		byName[at.School] = t
		ordered = append(ordered, t)
	}

	elos, err := p.client.EloRatings(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("fetch elo ratings: %w", err)
	}
	for _, e := range elos {
		t, ok := byName[e.Team]
		if !ok {
			sum.Unmatched++
			continue
		}
		t.Elo = e.Elo
	}

	sps, err := p.client.SPRatings(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("fetch sp ratings: %w", err)
	}
	for _, sp := range sps {
		t, ok := byName[sp.Team]
		if !ok {
			sum.Unmatched++
			continue
		}
		comp := &cfb.CompositeRating{Overall: sp.Rating}
		if sp.Offense != nil {
			comp.Offense = sp.Offense.Rating
		}
		if sp.Defense != nil {
			comp.Defense = sp.Defense.Rating
		}
		if sp.SpecialTeams != nil {
			comp.SpecialTeams = sp.SpecialTeams.Rating
		}
		t.Composite = comp
	}

	records, err := p.client.Records(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	for _, r := range records {
		t, ok := byName[r.Team]
		if !ok {
			sum.Unmatched++
			continue
		}
		t.Wins = r.Total.Wins
		t.Losses = r.Total.Losses
	}

	rankings, err := p.client.Rankings(ctx, season, week)
	if err != nil {
		return nil, fmt.Errorf("fetch rankings: %w", err)
	}
	for _, rw := range rankings {
		for _, poll := range rw.Polls {
			if poll.Poll != apPoll {
				continue
			}
			for _, rank := range poll.Ranks {
				t, ok := byName[rank.School]
				if !ok {
					sum.Unmatched++
					continue
				}
				r := rank.Rank
				t.PollRank = &r
			}
		}
	}

	for _, t := range ordered {
		if err := p.store.UpsertTeam(ctx, t); err != nil {
			return nil, err
		}
		sum.Teams++
	}
	return sum, nil
}

// SyncGames refreshes game records for a season, optionally limited to
// one week, merging in lines and weather by game ID.
func (p *Pipeline) SyncGames(ctx context.Context, season, week int) (*Summary, error) {
	sum := &Summary{RunID: uuid.New()}

	games, err := p.client.Games(ctx, season, week)
	if err != nil {
		return nil, fmt.Errorf("fetch games: %w", err)
	}

	lines, err := p.client.Lines(ctx, season, week)
	if err != nil {
		return nil, fmt.Errorf("fetch lines: %w", err)
	}
	lineByGame := make(map[int64]*APILine, len(lines))
	for i := range lines {
		if l := pickLine(lines[i].Lines); l != nil {
			lineByGame[lines[i].ID] = l
		} else {
			sum.Unmatched++
		}
	}

	weather, err := p.client.Weather(ctx, season, week)
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	weatherByGame := make(map[int64]*APIWeather, len(weather))
	for i := range weather {
		weatherByGame[weather[i].GameID] = &weather[i]
	}

	for _, ag := range games {
		g := &cfb.Game{
			ID:          ag.ID,
			Season:      ag.Season,
			Week:        ag.Week,
			StartDate:   ag.StartDate,
			HomeTeamID:  ag.HomeID,
			AwayTeamID:  ag.AwayID,
			HomeTeam:    ag.HomeTeam,
			AwayTeam:    ag.AwayTeam,
			NeutralSite: ag.NeutralSite,
			Completed:   ag.Completed,
			HomeScore:   ag.HomePoints,
			AwayScore:   ag.AwayPoints,
		}
		if l := lineByGame[ag.ID]; l != nil {
			g.MarketSpread = l.Spread
			g.MarketTotal = l.OverUnder
		}
		if w := weatherByGame[ag.ID]; w != nil {
			g.Weather = &cfb.Weather{
				TemperatureF:    w.Temperature,
				WindMPH:         w.WindSpeed,
				PrecipitationIn: w.Precipitation,
				IsDome:          w.GameIndoors,
			}
		}
		if err := p.store.UpsertGame(ctx, g); err != nil {
			return nil, err
		}
		sum.Games++
	}
	return sum, nil
}

// Sync runs the full pipeline for a season/week: teams first so rating
// snapshots exist before games reference them.
func (p *Pipeline) Sync(ctx context.Context, season, week int) (*Summary, error) {
	teams, err := p.SyncTeams(ctx, season, week)
	if err != nil {
		return nil, err
	}
	games, err := p.SyncGames(ctx, season, week)
	if err != nil {
		return nil, err
	}
	return &Summary{
		RunID:     games.RunID,
		Teams:     teams.Teams,
		Games:     games.Games,
		Unmatched: teams.Unmatched + games.Unmatched,
	}, nil
}

// pickLine chooses one book's line by provider preference, falling back
// to the first line with a posted spread or total.
func pickLine(lines []APILine) *APILine {
	for _, provider := range lineProviders {
		for i := range lines {
			if lines[i].Provider == provider && (lines[i].Spread != nil || lines[i].OverUnder != nil) {
				return &lines[i]
			}
		}
	}
	for i := range lines {
		if lines[i].Spread != nil || lines[i].OverUnder != nil {
			return &lines[i]
		}
	}
	return nil
}
