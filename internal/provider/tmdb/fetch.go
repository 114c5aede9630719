package tmdb

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Digital-Shane/title-fetch/internal/media"
	"github.com/Digital-Shane/title-fetch/internal/provider"
	"github.com/patrickmn/go-cache"
)

// SearchMovies searches TMDB for movies matching query, optionally limited to
// a release year.
func (p *Provider) SearchMovies(ctx context.Context, query, year string) ([]*media.Movie, error) {
	options := p.options()
	if year != "" {
		options["year"] = year
	}

	key := p.cacheKey("movies", query, year)
	if cached, ok := cachedAs[[]*media.Movie](p, key); ok {
		return cached, nil
	}

	if err := p.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}
	results, err := p.client.SearchMovie(query, options)
	if err != nil {
		return nil, p.mapError(err)
	}

	var movies []*media.Movie
	if results != nil {
		movies = make([]*media.Movie, 0, len(results.Results))
		for _, r := range results.Results {
			movies = append(movies, &media.Movie{
				Title: strings.TrimSpace(r.Title),
				Year:  yearFromDate(r.ReleaseDate),
				ID:    strconv.Itoa(r.ID),
			})
		}
	}
	p.logger.Debug("movie search", "query", query, "year", year, "results", len(movies))

	p.store(key, movies)
	return movies, nil
}

// SearchShows searches TMDB for TV shows matching query, optionally limited
// to a first air year.
func (p *Provider) SearchShows(ctx context.Context, query, year string) ([]*media.TVShow, error) {
	options := p.options()
	if year != "" {
		options["first_air_date_year"] = year
	}

	key := p.cacheKey("shows", query, year)
	if cached, ok := cachedAs[[]*media.TVShow](p, key); ok {
		return cloneShows(cached), nil
	}

	if err := p.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}
	results, err := p.client.SearchTv(query, options)
	if err != nil {
		return nil, p.mapError(err)
	}

	var shows []*media.TVShow
	if results != nil {
		shows = make([]*media.TVShow, 0, len(results.Results))
		for _, r := range results.Results {
			shows = append(shows, &media.TVShow{
				Title: strings.TrimSpace(r.Name),
				Year:  yearFromDate(r.FirstAirDate),
				ID:    strconv.Itoa(r.ID),
			})
		}
	}
	p.logger.Debug("tv search", "query", query, "year", year, "results", len(shows))

	p.store(key, shows)
	return cloneShows(shows), nil
}

// ShowByID fetches a show's details.
func (p *Provider) ShowByID(ctx context.Context, id string) (*media.TVShow, error) {
	showID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	key := p.cacheKey("show", id)
	if cached, ok := cachedAs[*media.TVShow](p, key); ok {
		show := *cached
		return &show, nil
	}

	if err := p.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}
	info, err := p.client.GetTvInfo(showID, p.options())
	if err != nil {
		return nil, p.mapError(err)
	}
	if info == nil {
		return nil, notFound(fmt.Sprintf("show %s not found", id))
	}

	show := &media.TVShow{
		Title: strings.TrimSpace(info.Name),
		Year:  yearFromDate(info.FirstAirDate),
		ID:    strconv.Itoa(info.ID),
	}
	p.store(key, show)
	copied := *show
	return &copied, nil
}

// SeasonNumbers returns the numbers of the seasons TMDB lists for a show,
// specials (season 0) included.
func (p *Provider) SeasonNumbers(ctx context.Context, show *media.TVShow) ([]int, error) {
	showID, err := showIDOf(show)
	if err != nil {
		return nil, err
	}

	key := p.cacheKey("seasons", show.ID)
	if cached, ok := cachedAs[[]int](p, key); ok {
		return append([]int(nil), cached...), nil
	}

	if err := p.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}
	info, err := p.client.GetTvInfo(showID, p.options())
	if err != nil {
		return nil, p.mapError(err)
	}
	if info == nil {
		return nil, notFound(fmt.Sprintf("show %s not found", show.ID))
	}

	seasons := make([]int, 0, len(info.Seasons))
	for _, s := range info.Seasons {
		seasons = append(seasons, s.SeasonNumber)
	}
	slices.Sort(seasons)
	seasons = slices.Compact(seasons)
	p.store(key, seasons)
	return append([]int(nil), seasons...), nil
}

// SeasonEpisodes fetches one season's episode list.
func (p *Provider) SeasonEpisodes(ctx context.Context, show *media.TVShow, season int) ([]media.Episode, error) {
	showID, err := showIDOf(show)
	if err != nil {
		return nil, err
	}
	if season < 0 {
		return nil, &provider.ProviderError{Provider: providerName, Code: provider.CodeInvalid, Message: fmt.Sprintf("invalid season %d", season)}
	}

	key := p.cacheKey("season", show.ID, strconv.Itoa(season))
	if cached, ok := cachedAs[[]media.Episode](p, key); ok {
		return append([]media.Episode(nil), cached...), nil
	}

	if err := p.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}
	info, err := p.client.GetTvSeasonInfo(showID, season, p.options())
	if err != nil {
		return nil, p.mapError(err)
	}
	if info == nil {
		return nil, notFound(fmt.Sprintf("season %d not found", season))
	}

	episodes := make([]media.Episode, 0, len(info.Episodes))
	for _, e := range info.Episodes {
		episodes = append(episodes, media.Episode{
			Season: season,
			Number: e.EpisodeNumber,
			Title:  strings.TrimSpace(e.Name),
		})
	}
	p.store(key, episodes)
	return append([]media.Episode(nil), episodes...), nil
}

func (p *Provider) options() map[string]string {
	return map[string]string{"language": p.language}
}

func (p *Provider) cacheKey(kind string, parts ...string) string {
	return kind + ":" + p.language + ":" + strings.ToLower(strings.Join(parts, ":"))
}

func (p *Provider) store(key string, value any) {
	if p.cache != nil {
		p.cache.Set(key, value, cache.DefaultExpiration)
	}
}

// cachedAs returns the cached value for key if present and of type T.
func cachedAs[T any](p *Provider, key string) (T, bool) {
	var zero T
	if p.cache == nil {
		return zero, false
	}
	v, found := p.cache.Get(key)
	if !found {
		return zero, false
	}
	typed, ok := v.(T)
	if ok {
		p.logger.Debug("cache hit", "key", key)
	}
	return typed, ok
}

// cloneShows copies search results so that callers adding episodes do not
// mutate cached values.
func cloneShows(shows []*media.TVShow) []*media.TVShow {
	out := make([]*media.TVShow, len(shows))
	for i, s := range shows {
		c := *s
		c.Episodes = nil
		out[i] = &c
	}
	return out
}

func showIDOf(show *media.TVShow) (int, error) {
	if show == nil {
		return 0, &provider.ProviderError{Provider: providerName, Code: provider.CodeInvalid, Message: "no show given"}
	}
	return parseID(show.ID)
}

func parseID(id string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || n <= 0 {
		return 0, &provider.ProviderError{Provider: providerName, Code: provider.CodeInvalid, Message: fmt.Sprintf("invalid TMDB id %q", id)}
	}
	return n, nil
}

func notFound(msg string) error {
	return &provider.ProviderError{Provider: providerName, Code: provider.CodeNotFound, Message: msg}
}

// yearFromDate returns the leading year of a "YYYY-MM-DD" date, or "" when the
// date is missing or malformed.
func yearFromDate(date string) string {
	year, _, _ := strings.Cut(strings.TrimSpace(date), "-")
	if len(year) != 4 {
		return ""
	}
	for _, r := range year {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return year
}
