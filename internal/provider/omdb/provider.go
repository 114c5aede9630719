// Package omdb is a provider.Source backed by the Open Movie Database. OMDb
// answers title lookups with a single best match, so searches return at most
// one result. Ids are IMDb ids.
package omdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/omdb"
	"github.com/Digital-Shane/title-fetch/internal/media"
	"github.com/Digital-Shane/title-fetch/internal/provider"
)

const providerName = "omdb"

// Provider implements provider.Source for OMDb.
type Provider struct {
	client *omdb.Client
	logger *slog.Logger
}

// New creates an OMDb source from run settings.
func New(settings provider.Settings) (*Provider, error) {
	return newWithHTTPClient(settings, &http.Client{Timeout: 10 * time.Second})
}

// Factory adapts New to provider.Factory.
func Factory(settings provider.Settings) (provider.Source, error) {
	p, err := New(settings)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newWithHTTPClient(settings provider.Settings, httpClient *http.Client) (*Provider, error) {
	apiKey := strings.TrimSpace(settings.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("api_key is required")
	}
	logger := settings.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Provider{
		client: omdb.NewClient(apiKey, httpClient),
		logger: logger.With("provider", providerName),
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// SearchMovies looks up the best matching movie. No match is an empty list.
func (p *Provider) SearchMovies(ctx context.Context, query, year string) ([]*media.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := p.client.SearchByTitle(omdb.QueryData{Title: query, Year: year, SearchType: "movie"})
	if err != nil {
		return nil, p.emptyIfNotFound(err)
	}

	switch movie := result.(type) {
	case omdb.MovieResult:
		return []*media.Movie{movieFromResult(movie)}, nil
	case *omdb.MovieResult:
		return []*media.Movie{movieFromResult(*movie)}, nil
	default:
		p.logger.Debug("unexpected result type", "type", fmt.Sprintf("%T", result))
		return nil, nil
	}
}

// SearchShows looks up the best matching series. No match is an empty list.
func (p *Provider) SearchShows(ctx context.Context, query, year string) ([]*media.TVShow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	series, err := p.series(omdb.QueryData{Title: query, Year: year, SearchType: "series"})
	if err != nil {
		return nil, p.emptyIfNotFound(err)
	}
	return []*media.TVShow{showFromResult(series)}, nil
}

// ShowByID fetches a series by IMDb id.
func (p *Provider) ShowByID(ctx context.Context, id string) (*media.TVShow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	series, err := p.series(omdb.QueryData{ImdbID: strings.TrimSpace(id)})
	if err != nil {
		return nil, err
	}
	return showFromResult(series), nil
}

// SeasonNumbers returns 1..N from the series' season count.
func (p *Provider) SeasonNumbers(ctx context.Context, show *media.TVShow) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	series, err := p.series(showQuery(show))
	if err != nil {
		return nil, err
	}

	total, err := strconv.Atoi(strings.TrimSpace(series.TotalSeasons))
	if err != nil {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  fmt.Sprintf("no season count for %s", show),
		}
	}

	seasons := make([]int, 0, total)
	for n := 1; n <= total; n++ {
		seasons = append(seasons, n)
	}
	return seasons, nil
}

// SeasonEpisodes lists a season's episodes from the season listing, keeping
// the episode numbers OMDb reports.
func (p *Provider) SeasonEpisodes(ctx context.Context, show *media.TVShow, season int) ([]media.Episode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := showQuery(show)
	query.Season = strconv.Itoa(season)
	result, err := p.lookup(query)
	if err != nil {
		return nil, err
	}

	var listing []omdb.SeasonEpisode
	switch s := result.(type) {
	case omdb.SeasonResult:
		listing = s.Episodes
	case *omdb.SeasonResult:
		listing = s.Episodes
	default:
		return nil, notFound(fmt.Sprintf("season %d not found", season))
	}

	episodes := make([]media.Episode, 0, len(listing))
	for _, e := range listing {
		number, err := strconv.Atoi(strings.TrimSpace(e.Episode))
		if err != nil {
			p.logger.Debug("skipping episode without a number", "season", season, "episode", e.Episode, "title", e.Title)
			continue
		}
		episodes = append(episodes, media.Episode{Season: season, Number: number, Title: strings.TrimSpace(e.Title)})
	}
	if len(episodes) == 0 {
		return nil, notFound(fmt.Sprintf("season %d has no episodes", season))
	}
	sort.SliceStable(episodes, func(i, j int) bool { return episodes[i].Number < episodes[j].Number })
	return episodes, nil
}

func (p *Provider) series(query omdb.QueryData) (omdb.SeriesResult, error) {
	result, err := p.lookup(query)
	if err != nil {
		return omdb.SeriesResult{}, err
	}
	switch series := result.(type) {
	case omdb.SeriesResult:
		return series, nil
	case *omdb.SeriesResult:
		return *series, nil
	default:
		return omdb.SeriesResult{}, notFound("series not found")
	}
}

// lookup queries by IMDb id when one is set, else by title.
func (p *Provider) lookup(query omdb.QueryData) (any, error) {
	var result any
	var err error
	if query.ImdbID != "" {
		result, err = p.client.SearchByImdbID(query)
	} else {
		result, err = p.client.SearchByTitle(query)
	}
	if err != nil {
		return nil, p.mapError(err)
	}
	return result, nil
}

func (p *Provider) emptyIfNotFound(err error) error {
	if provider.IsNotFound(err) {
		p.logger.Debug("no match", "error", err)
		return nil
	}
	return err
}

func showQuery(show *media.TVShow) omdb.QueryData {
	if show.ID != "" {
		return omdb.QueryData{ImdbID: show.ID}
	}
	return omdb.QueryData{Title: show.Title, Year: show.Year, SearchType: "series"}
}

func movieFromResult(result omdb.MovieResult) *media.Movie {
	return &media.Movie{Title: result.Title, Year: omdb.FirstYear(result.Year), ID: result.ImdbID}
}

func showFromResult(result omdb.SeriesResult) *media.TVShow {
	return &media.TVShow{Title: result.Title, Year: omdb.FirstYear(result.Year), ID: result.ImdbID}
}

func notFound(msg string) error {
	return &provider.ProviderError{Provider: providerName, Code: provider.CodeNotFound, Message: msg}
}

func (p *Provider) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "invalid api key"), strings.Contains(lower, "missing omdb api key"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeAuthFailed, Message: "OMDb authentication failed: " + msg}
	case strings.Contains(lower, "not found"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeNotFound, Message: msg}
	case strings.Contains(lower, "limit reached"), strings.Contains(lower, "too many requests"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeRateLimited, Message: msg, Retry: true, RetryAfter: 5}
	default:
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeUnknown, Message: msg}
	}
}
