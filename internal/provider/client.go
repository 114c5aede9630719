package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Digital-Shane/title-fetch/internal/media"
)

// Query describes one search.
type Query struct {
	Text string
	Year string
	TV   bool
}

// Selection narrows the episodes fetched for a show. Nil fields mean no
// constraint.
type Selection struct {
	Seasons  []int
	Episodes []media.EpisodeRef
}

// Client runs searches and episode lookups against a Source.
type Client struct {
	source Source
	logger *slog.Logger
}

// NewClient wraps source. A nil logger discards diagnostics.
func NewClient(source Source, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{source: source, logger: logger}
}

// Source returns the wrapped source.
func (c *Client) Source() Source {
	return c.source
}

// Search runs a movie or TV search. An empty result set is ErrNoResults.
func (c *Client) Search(ctx context.Context, q Query) ([]media.Result, error) {
	c.logger.Debug("search", "provider", c.source.Name(), "query", q.Text, "year", q.Year, "tv", q.TV)

	var results []media.Result
	if q.TV {
		shows, err := c.source.SearchShows(ctx, q.Text, q.Year)
		if err != nil {
			return nil, err
		}
		for _, show := range shows {
			results = append(results, show)
		}
	} else {
		movies, err := c.source.SearchMovies(ctx, q.Text, q.Year)
		if err != nil {
			return nil, err
		}
		for _, movie := range movies {
			results = append(results, movie)
		}
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoResults, q.Text)
	}
	c.logger.Debug("search results", "count", len(results))
	return results, nil
}

// Seasons returns the seasons to fetch for show. An episode selector wins
// over a season selector; only when neither is given is the source asked.
func (c *Client) Seasons(ctx context.Context, show *media.TVShow, sel Selection) ([]int, error) {
	if sel.Episodes != nil {
		var seasons []int
		seen := make(map[int]bool)
		for _, ref := range sel.Episodes {
			if !seen[ref.Season] {
				seen[ref.Season] = true
				seasons = append(seasons, ref.Season)
			}
		}
		return seasons, nil
	}

	if sel.Seasons != nil {
		var seasons []int
		seen := make(map[int]bool)
		for _, s := range sel.Seasons {
			if !seen[s] {
				seen[s] = true
				seasons = append(seasons, s)
			}
		}
		return seasons, nil
	}

	seasons, err := c.source.SeasonNumbers(ctx, show)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons of %s: %w", show, err)
	}
	return seasons, nil
}

// AddEpisodes appends the episodes of every selected season to show and then
// filters them by sel. The first failing season aborts.
func (c *Client) AddEpisodes(ctx context.Context, show *media.TVShow, sel Selection) error {
	seasons, err := c.Seasons(ctx, show, sel)
	if err != nil {
		return err
	}

	for _, season := range seasons {
		c.logger.Debug("fetch season", "show", show.Title, "id", show.ID, "season", season)
		episodes, err := c.source.SeasonEpisodes(ctx, show, season)
		if err != nil {
			if IsNotFound(err) {
				return fmt.Errorf("season %d not found: %w", season, err)
			}
			return fmt.Errorf("failed to fetch season %d: %w", season, err)
		}
		show.Episodes = append(show.Episodes, episodes...)
	}

	media.Filter(show, sel.Seasons, sel.Episodes)
	c.logger.Debug("episodes selected", "show", show.Title, "count", len(show.Episodes))
	return nil
}

// ShowByID looks up a show by its provider id.
func (c *Client) ShowByID(ctx context.Context, id string) (*media.TVShow, error) {
	show, err := c.source.ShowByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch show %s: %w", id, err)
	}
	return show, nil
}
