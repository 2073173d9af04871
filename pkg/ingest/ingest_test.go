package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
)

// fakeAPI serves canned CollegeFootballData responses keyed by path.
func fakeAPI(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer test-key", auth)
		}
		body, ok := responses[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

// memWriter collects upserts in memory.
type memWriter struct {
	teams []cfb.Team
	games []cfb.Game
}

func (m *memWriter) UpsertTeam(_ context.Context, t *cfb.Team) error {
	m.teams = append(m.teams, *t)
	return nil
}

func (m *memWriter) UpsertGame(_ context.Context, g *cfb.Game) error {
	m.games = append(m.games, *g)
	return nil
}

func TestPipeline_SyncTeams(t *testing.T) {
	srv := fakeAPI(t, map[string]string{
		"/teams/fbs": `[
			{"id": 1, "school": "Michigan", "conference": "Big Ten"},
			{"id": 2, "school": "Toledo", "conference": "Mid-American"}
		]`,
		"/ratings/elo": `[
			{"year": 2024, "team": "Michigan", "elo": 1900},
			{"year": 2024, "team": "Phantom State", "elo": 1400}
		]`,
		"/ratings/sp": `[
			{"team": "Michigan", "rating": 22.4,
			 "offense": {"rating": 34.1}, "defense": {"rating": -11.7}, "specialTeams": {"rating": 0.9}},
			{"team": "Toledo", "rating": 4.2}
		]`,
		"/records": `[
			{"team": "Michigan", "total": {"wins": 10, "losses": 2}}
		]`,
		"/rankings": `[
			{"season": 2024, "week": 12, "polls": [
				{"poll": "Coaches Poll", "ranks": [{"rank": 1, "school": "Toledo"}]},
				{"poll": "AP Top 25", "ranks": [{"rank": 4, "school": "Michigan"}]}
			]}
		]`,
	})
	defer srv.Close()

	w := &memWriter{}
	p := NewPipeline(NewClient("test-key", WithBaseURL(srv.URL)), w)

	sum, err := p.SyncTeams(context.Background(), 2024, 12)
	if err != nil {
		t.Fatalf("SyncTeams() error = %v", err)
	}
	if sum.Teams != 2 {
		t.Errorf("Teams = %d, want 2", sum.Teams)
	}
	if sum.Unmatched != 1 {
		t.Errorf("Unmatched = %d, want 1 for the phantom elo row", sum.Unmatched)
	}

	if len(w.teams) != 2 {
		t.Fatalf("got %d team upserts, want 2", len(w.teams))
	}
	mich := w.teams[0]
	if mich.Name != "Michigan" || mich.Conference != "Big Ten" {
		t.Fatalf("unexpected first team: %+v", mich)
	}
	if mich.Elo != 1900 {
		t.Errorf("Elo = %v, want 1900", mich.Elo)
	}
	if mich.Composite == nil || mich.Composite.Overall != 22.4 || mich.Composite.Offense != 34.1 {
		t.Errorf("composite = %+v, want overall 22.4 offense 34.1", mich.Composite)
	}
	if mich.Wins != 10 || mich.Losses != 2 {
		t.Errorf("record = %d-%d, want 10-2", mich.Wins, mich.Losses)
	}
	if mich.PollRank == nil || *mich.PollRank != 4 {
		t.Errorf("PollRank = %v, want AP rank 4", mich.PollRank)
	}

	toledo := w.teams[1]
	if toledo.Elo != cfb.DefaultElo {
		t.Errorf("unrated team Elo = %v, want the %v default", toledo.Elo, cfb.DefaultElo)
	}
	if toledo.Composite == nil || toledo.Composite.Overall != 4.2 || toledo.Composite.Offense != 0 {
		t.Errorf("composite = %+v, want overall 4.2 with zero sub-units", toledo.Composite)
	}
	if toledo.PollRank != nil {
		t.Errorf("PollRank = %v, want nil; only the AP poll counts", *toledo.PollRank)
	}
}

func TestPipeline_SyncGames(t *testing.T) {
	srv := fakeAPI(t, map[string]string{
		"/games": `[
			{"id": 401, "season": 2024, "week": 12, "startDate": "2024-11-16T17:00:00Z",
			 "homeId": 1, "homeTeam": "Michigan", "awayId": 2, "awayTeam": "Toledo",
			 "neutralSite": false, "completed": true, "homePoints": 31, "awayPoints": 17},
			{"id": 402, "season": 2024, "week": 12, "startDate": "2024-11-16T20:00:00Z",
			 "homeId": 3, "homeTeam": "Tulane", "awayId": 4, "awayTeam": "Navy",
			 "neutralSite": true, "completed": false}
		]`,
		"/lines": `[
			{"id": 401, "lines": [
				{"provider": "SuperBook", "spread": -9.5, "overUnder": 44.5},
				{"provider": "DraftKings", "spread": -10.5, "overUnder": 45.5}
			]},
			{"id": 402, "lines": [{"provider": "consensus"}]}
		]`,
		"/games/weather": `[
			{"id": 401, "temperature": 28, "windSpeed": 17, "gameIndoors": false}
		]`,
	})
	defer srv.Close()

	w := &memWriter{}
	p := NewPipeline(NewClient("test-key", WithBaseURL(srv.URL)), w)

	sum, err := p.SyncGames(context.Background(), 2024, 12)
	if err != nil {
		t.Fatalf("SyncGames() error = %v", err)
	}
	if sum.Games != 2 {
		t.Errorf("Games = %d, want 2", sum.Games)
	}
	if sum.Unmatched != 1 {
		t.Errorf("Unmatched = %d, want 1 for the empty consensus line", sum.Unmatched)
	}

	if len(w.games) != 2 {
		t.Fatalf("got %d game upserts, want 2", len(w.games))
	}

	g := w.games[0]
	if g.ID != 401 || g.HomeTeam != "Michigan" || !g.Completed {
		t.Fatalf("unexpected first game: %+v", g)
	}
	// DraftKings outranks SuperBook in the provider preference.
	if g.MarketSpread == nil || *g.MarketSpread != -10.5 {
		t.Errorf("MarketSpread = %v, want -10.5", g.MarketSpread)
	}
	if g.MarketTotal == nil || *g.MarketTotal != 45.5 {
		t.Errorf("MarketTotal = %v, want 45.5", g.MarketTotal)
	}
	if g.HomeScore == nil || *g.HomeScore != 31 {
		t.Errorf("HomeScore = %v, want 31", g.HomeScore)
	}
	if g.Weather == nil || g.Weather.WindMPH == nil || *g.Weather.WindMPH != 17 {
		t.Errorf("Weather = %+v, want wind 17", g.Weather)
	}

	g = w.games[1]
	if g.MarketSpread != nil || g.MarketTotal != nil {
		t.Errorf("game 402 lines = %v/%v, want none", g.MarketSpread, g.MarketTotal)
	}
	if g.Weather != nil {
		t.Errorf("game 402 weather = %+v, want nil", g.Weather)
	}
	if !g.NeutralSite {
		t.Error("game 402 should be neutral site")
	}
	if g.HomeScore != nil {
		t.Errorf("game 402 HomeScore = %v, want nil before completion", g.HomeScore)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad-key", WithBaseURL(srv.URL))
	if _, err := c.Games(context.Background(), 2024, 1); err == nil {
		t.Fatal("Games() succeeded against a 401 response")
	}
}

func TestPickLine(t *testing.T) {
	spread := func(f float64) *float64 { return &f }

	tests := []struct {
		name  string
		lines []APILine
		want  string // provider, "" for nil
	}{
		{"empty", nil, ""},
		{"provider preference", []APILine{
			{Provider: "DraftKings", Spread: spread(-3)},
			{Provider: "consensus", Spread: spread(-2.5)},
		}, "consensus"},
		{"preferred book with no numbers is skipped", []APILine{
			{Provider: "consensus"},
			{Provider: "Bovada", Spread: spread(-6)},
		}, "Bovada"},
		{"unknown book fallback", []APILine{
			{Provider: "SuperBook", Spread: spread(-1)},
		}, "SuperBook"},
		{"all empty", []APILine{{Provider: "consensus"}, {Provider: "Bovada"}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pickLine(tt.lines)
			switch {
			case tt.want == "" && got != nil:
				t.Errorf("pickLine() = %+v, want nil", got)
			case tt.want != "" && (got == nil || got.Provider != tt.want):
				t.Errorf("pickLine() = %+v, want provider %s", got, tt.want)
			}
		})
	}
}
