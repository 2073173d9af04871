// Package ingest provides the CollegeFootballData API client and the
// single consolidated sync pipeline that materializes Game and Team
// records into the store.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the CollegeFootballData API base URL.
const DefaultBaseURL = "https://api.collegefootballdata.com"

// Client is a CollegeFootballData API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a CollegeFootballData API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

func seasonParams(season, week int) url.Values {
	params := url.Values{}
	params.Set("year", strconv.Itoa(season))
	if week > 0 {
		params.Set("week", strconv.Itoa(week))
	}
	return params
}

// Games fetches FBS games for a season, optionally limited to one week
// (week <= 0 fetches the whole season).
func (c *Client) Games(ctx context.Context, season, week int) ([]APIGame, error) {
	params := seasonParams(season, week)
	params.Set("division", "fbs")
	var games []APIGame
	if err := c.get(ctx, "/games", params, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// Lines fetches betting lines for a season/week.
func (c *Client) Lines(ctx context.Context, season, week int) ([]APIGameLines, error) {
	var lines []APIGameLines
	if err := c.get(ctx, "/lines", seasonParams(season, week), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Weather fetches game weather observations for a season/week.
func (c *Client) Weather(ctx context.Context, season, week int) ([]APIWeather, error) {
	var weather []APIWeather
	if err := c.get(ctx, "/games/weather", seasonParams(season, week), &weather); err != nil {
		return nil, err
	}
	return weather, nil
}

// Teams fetches the FBS team list.
func (c *Client) Teams(ctx context.Context) ([]APITeam, error) {
	var teams []APITeam
	if err := c.get(ctx, "/teams/fbs", url.Values{}, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// EloRatings fetches end-of-week ELO ratings for a season.
func (c *Client) EloRatings(ctx context.Context, season int) ([]APIElo, error) {
	var ratings []APIElo
	if err := c.get(ctx, "/ratings/elo", seasonParams(season, 0), &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

// SPRatings fetches SP+ composite ratings for a season.
func (c *Client) SPRatings(ctx context.Context, season int) ([]APISPRating, error) {
	var ratings []APISPRating
	if err := c.get(ctx, "/ratings/sp", seasonParams(season, 0), &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

// Records fetches season win/loss records.
func (c *Client) Records(ctx context.Context, season int) ([]APIRecord, error) {
	var records []APIRecord
	if err := c.get(ctx, "/records", seasonParams(season, 0), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Rankings fetches poll rankings for a season/week.
func (c *Client) Rankings(ctx context.Context, season, week int) ([]APIRankingWeek, error) {
	var rankings []APIRankingWeek
	if err := c.get(ctx, "/rankings", seasonParams(season, week), &rankings); err != nil {
		return nil, err
	}
	return rankings, nil
}
