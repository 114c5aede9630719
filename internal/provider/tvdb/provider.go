package tvdb

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/Digital-Shane/title-fetch/internal/media"
	"github.com/Digital-Shane/title-fetch/internal/provider"
	tvdbapi "github.com/dashotv/tvdb"
	"github.com/dashotv/tvdb/openapi/models/operations"
	"github.com/dashotv/tvdb/openapi/models/shared"
)

const providerName = "tvdb"

const (
	episodesPageSize = 500
	maxEpisodePages  = 100
)

// TVDBClient captures the dashotv client methods used by this provider.
type TVDBClient interface {
	GetSearchResults(request operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error)
	GetSeriesExtended(id float64, meta *operations.GetSeriesExtendedQueryParamMeta, short *bool) (*tvdbapi.GetSeriesExtendedResponse, error)
	GetSeriesEpisodes(request operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error)
}

// Provider is a provider.Source backed by TheTVDB v4 API.
type Provider struct {
	client TVDBClient
	logger *slog.Logger
}

// New logs in to TVDB with the configured API key.
func New(settings provider.Settings) (*Provider, error) {
	apiKey := strings.TrimSpace(settings.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("api_key is required")
	}

	p := newWithClient(nil, settings)
	client, err := tvdbapi.Login(apiKey)
	if err != nil {
		return nil, p.mapError(err)
	}
	p.client = client
	return p, nil
}

// Factory adapts New to provider.Factory.
func Factory(settings provider.Settings) (provider.Source, error) {
	p, err := New(settings)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newWithClient(client TVDBClient, settings provider.Settings) *Provider {
	logger := settings.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Provider{client: client, logger: logger.With("provider", providerName)}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providerName
}

// SearchMovies searches TVDB for movies.
func (p *Provider) SearchMovies(ctx context.Context, query, year string) ([]*media.Movie, error) {
	records, err := p.search(ctx, query, year, "movie")
	if err != nil {
		return nil, err
	}

	movies := make([]*media.Movie, 0, len(records))
	for _, r := range records {
		movies = append(movies, &media.Movie{Title: r.Name, Year: r.Year, ID: strconv.FormatInt(r.ID, 10)})
	}
	return movies, nil
}

// SearchShows searches TVDB for series.
func (p *Provider) SearchShows(ctx context.Context, query, year string) ([]*media.TVShow, error) {
	records, err := p.search(ctx, query, year, "series")
	if err != nil {
		return nil, err
	}

	shows := make([]*media.TVShow, 0, len(records))
	for _, r := range records {
		shows = append(shows, &media.TVShow{Title: r.Name, Year: r.Year, ID: strconv.FormatInt(r.ID, 10)})
	}
	return shows, nil
}

// ShowByID fetches a series record.
func (p *Provider) ShowByID(ctx context.Context, id string) (*media.TVShow, error) {
	seriesID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := p.client.GetSeriesExtended(float64(seriesID), nil, nil)
	if err != nil {
		return nil, p.mapError(err)
	}
	if resp == nil || resp.Data == nil {
		return nil, &provider.ProviderError{Provider: providerName, Code: provider.CodeNotFound, Message: fmt.Sprintf("series %s not found", id), Retry: false}
	}

	return &media.TVShow{
		Title: pointerToString(resp.Data.Name),
		Year:  pointerToString(resp.Data.Year),
		ID:    strconv.FormatInt(seriesID, 10),
	}, nil
}

// SeasonNumbers derives the official season numbers, specials included, from
// every page of the series' episode list.
func (p *Provider) SeasonNumbers(ctx context.Context, show *media.TVShow) ([]int, error) {
	episodes, err := p.episodes(ctx, show, nil)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var seasons []int
	for _, e := range episodes {
		n := int(pointerToInt64(e.SeasonNumber))
		if n < 0 || seen[n] {
			continue
		}
		seen[n] = true
		seasons = append(seasons, n)
	}
	sort.Ints(seasons)
	return seasons, nil
}

// SeasonEpisodes lists one official season.
func (p *Provider) SeasonEpisodes(ctx context.Context, show *media.TVShow, season int) ([]media.Episode, error) {
	if season < 0 {
		return nil, &provider.ProviderError{Provider: providerName, Code: provider.CodeInvalid, Message: fmt.Sprintf("invalid season %d", season), Retry: false}
	}

	seasonNum := int64(season)
	records, err := p.episodes(ctx, show, &seasonNum)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &provider.ProviderError{Provider: providerName, Code: provider.CodeNotFound, Message: fmt.Sprintf("season %d not found", season), Retry: false}
	}

	episodes := make([]media.Episode, 0, len(records))
	for _, e := range records {
		episodes = append(episodes, media.Episode{
			Season: season,
			Number: int(pointerToInt64(e.Number)),
			Title:  pointerToString(e.Name),
		})
	}
	sort.SliceStable(episodes, func(i, j int) bool { return episodes[i].Number < episodes[j].Number })
	return episodes, nil
}

func (p *Provider) episodes(ctx context.Context, show *media.TVShow, season *int64) ([]shared.EpisodeBaseRecord, error) {
	if show == nil {
		return nil, &provider.ProviderError{Provider: providerName, Code: provider.CodeInvalid, Message: "no show given", Retry: false}
	}
	seriesID, err := parseID(show.ID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := operations.GetSeriesEpisodesRequest{
		ID:         float64(seriesID),
		SeasonType: "official",
		Season:     season,
	}
	var records []shared.EpisodeBaseRecord
	for pages := 1; ; pages++ {
		resp, err := p.client.GetSeriesEpisodes(req)
		if err != nil {
			return nil, p.mapError(err)
		}
		if resp == nil || resp.Data == nil {
			if pages == 1 {
				return nil, &provider.ProviderError{Provider: providerName, Code: provider.CodeNotFound, Message: fmt.Sprintf("series %s not found", show.ID), Retry: false}
			}
			break
		}
		records = append(records, resp.Data.Episodes...)

		// A short page is the last one.
		if len(resp.Data.Episodes) < episodesPageSize {
			break
		}
		if pages >= maxEpisodePages {
			p.logger.Warn("hit pagination limit", "series", seriesID, "pages", pages)
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req.Page++
	}
	p.logger.Debug("episodes", "series", seriesID, "count", len(records))
	return records, nil
}

// searchRecord is a search hit reduced to the fields the tool uses.
type searchRecord struct {
	ID   int64
	Name string
	Year string
}

func (p *Provider) search(ctx context.Context, query, year, kind string) ([]*searchRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &provider.ProviderError{Provider: providerName, Code: provider.CodeInvalid, Message: "search requires a title", Retry: false}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := operations.GetSearchResultsRequest{Query: &query}
	req.Type = &kind
	if yr, err := strconv.Atoi(strings.TrimSpace(year)); err == nil {
		yf := float64(yr)
		req.Year = &yf
	}

	resp, err := p.client.GetSearchResults(req)
	if err != nil {
		return nil, p.mapError(err)
	}
	if resp == nil {
		return nil, nil
	}

	var records []*searchRecord
	for _, candidate := range resp.Data {
		if t := pointerToString(candidate.Type); t != "" && !strings.EqualFold(t, kind) {
			continue
		}
		r := toSearchRecord(candidate)
		if r.ID == 0 {
			continue
		}
		records = append(records, r)
	}
	p.logger.Debug("search", "query", query, "type", kind, "year", year, "results", len(records))
	return records, nil
}

func toSearchRecord(result shared.SearchResult) *searchRecord {
	id := parseInt64(pointerToString(result.TvdbID))
	if id == 0 {
		id = parseInt64(strings.TrimPrefix(pointerToString(result.ID), "series-"))
	}
	if id == 0 {
		id = parseInt64(strings.TrimPrefix(pointerToString(result.ID), "movie-"))
	}

	name := firstNonEmptyString(pointerToString(result.Name), pointerToString(result.NameTranslated), pointerToString(result.Title))
	year := pointerToString(result.Year)
	if len(year) != 4 {
		year = ""
	}

	return &searchRecord{ID: id, Name: name, Year: year}
}

func parseID(id string) (int64, error) {
	n := parseInt64(id)
	if n <= 0 {
		return 0, &provider.ProviderError{Provider: providerName, Code: provider.CodeInvalid, Message: fmt.Sprintf("invalid TVDB id %q", id), Retry: false}
	}
	return n, nil
}

func pointerToString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func pointerToInt64(value *int64) int64 {
	if value == nil {
		return 0
	}
	return *value
}

func parseInt64(value string) int64 {
	parsed, _ := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	return parsed
}

func firstNonEmptyString(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func (p *Provider) mapError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"), strings.Contains(lower, "apikey"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeAuthFailed, Message: "TVDB authentication failed: " + msg, Retry: false}
	case strings.Contains(lower, "429"), strings.Contains(lower, "too many"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeRateLimited, Message: msg, Retry: true, RetryAfter: 5}
	case strings.Contains(lower, "404"), strings.Contains(lower, "not found"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeNotFound, Message: msg, Retry: false}
	case strings.Contains(lower, "503"), strings.Contains(lower, "unavailable"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeUnavailable, Message: msg, Retry: true, RetryAfter: 30}
	default:
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeUnknown, Message: msg, Retry: false}
	}
}
