package tmdb

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Digital-Shane/title-fetch/internal/media"
	"github.com/Digital-Shane/title-fetch/internal/provider"
	"github.com/patrickmn/go-cache"
	"github.com/ryanbradynd05/go-tmdb"
)

const (
	providerName = "tmdb"

	cacheDuration = 7 * 24 * time.Hour
	cacheFileName = "tmdb_cache.gob"
)

func init() {
	// Cached values are stored as interface{}; gob needs the concrete types
	// before a saved cache can be decoded.
	gob.Register([]*media.Movie{})
	gob.Register([]*media.TVShow{})
	gob.Register(&media.TVShow{})
	gob.Register([]media.Episode{})
	gob.Register([]int{})
}

// Provider is a provider.Source backed by The Movie Database.
type Provider struct {
	client      TMDBClient
	cache       *cache.Cache
	cacheFile   string
	language    string
	rateLimiter *rateLimiter
	logger      *slog.Logger
}

// TMDBClient interface for testing (matches *tmdb.TMDb exactly)
type TMDBClient interface {
	SearchMovie(name string, options map[string]string) (*tmdb.MovieSearchResults, error)
	SearchTv(name string, options map[string]string) (*tmdb.TvSearchResults, error)
	GetMovieInfo(id int, options map[string]string) (*tmdb.Movie, error)
	GetTvInfo(id int, options map[string]string) (*tmdb.TV, error)
	GetTvSeasonInfo(showID, seasonID int, options map[string]string) (*tmdb.TvSeason, error)
	GetTvEpisodeInfo(showID, seasonNum, episodeNum int, options map[string]string) (*tmdb.TvEpisode, error)
}

// New creates a TMDB source from run settings.
func New(settings provider.Settings) (*Provider, error) {
	apiKey := strings.TrimSpace(settings.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("api_key is required")
	}

	client := tmdb.Init(tmdb.Config{
		APIKey:   apiKey,
		Proxies:  nil,
		UseProxy: false,
	})

	p := newWithClient(client, settings)
	if !settings.NoCache && settings.CacheDir != "" {
		p.enableCache(settings.CacheDir)
	}
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

func newWithClient(client TMDBClient, settings provider.Settings) *Provider {
	language := settings.Language
	if language == "" {
		language = "en-US"
	}
	logger := settings.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Provider{
		client:      client,
		language:    language,
		rateLimiter: newRateLimiter(38, 10*time.Second), // 38 requests per 10 seconds
		logger:      logger.With("provider", providerName),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providerName
}

// enableCache sets up the response cache and loads any saved copy from dir.
func (p *Provider) enableCache(dir string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		p.logger.Debug("cache disabled", "error", err)
		return
	}
	p.cacheFile = filepath.Join(dir, cacheFileName)
	p.cache = cache.New(cacheDuration, 10*time.Minute)

	if _, err := os.Stat(p.cacheFile); err == nil {
		if err := p.cache.LoadFile(p.cacheFile); err != nil {
			p.logger.Debug("ignoring unreadable cache", "file", p.cacheFile, "error", err)
		}
	}
}

// SaveCache persists the cache to disk
func (p *Provider) SaveCache() error {
	if p.cache != nil && p.cacheFile != "" {
		return p.cache.SaveFile(p.cacheFile)
	}
	return nil
}

// Close saves the response cache.
func (p *Provider) Close() error {
	return p.SaveCache()
}

// mapError maps TMDB errors to provider errors
func (p *Provider) mapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "invalid api key") {
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Message:  "TMDB authentication failed: " + err.Error(),
			Retry:    false,
		}
	}
	if strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") {
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeRateLimited,
			Message:    "TMDB rate limit exceeded",
			Retry:      true,
			RetryAfter: 10,
		}
	}
	if strings.Contains(errStr, "404") || strings.Contains(errStr, "not found") || strings.Contains(errStr, "could not be found") {
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  "TMDB resource not found: " + err.Error(),
			Retry:    false,
		}
	}
	if strings.Contains(errStr, "503") || strings.Contains(errStr, "unavailable") {
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeUnavailable,
			Message:    "TMDB service unavailable",
			Retry:      true,
			RetryAfter: 30,
		}
	}

	return &provider.ProviderError{
		Provider: providerName,
		Code:     provider.CodeUnknown,
		Message:  "TMDB error: " + err.Error(),
		Retry:    false,
	}
}
