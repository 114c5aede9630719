package provider

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Digital-Shane/title-fetch/internal/media"
)

// ErrNoResults is returned when a search matched nothing.
var ErrNoResults = errors.New("no results")

// Error codes carried by ProviderError.
const (
	CodeAuthFailed  = "AUTH_FAILED"
	CodeRateLimited = "RATE_LIMITED"
	CodeUnavailable = "UNAVAILABLE"
	CodeNotFound    = "NOT_FOUND"
	CodeInvalid     = "INVALID_REQUEST"
	CodeUnknown     = "UNKNOWN"
)

// Source is a metadata backend. Implementations map the remote API's result
// rows into media values; they do not filter or disambiguate.
type Source interface {
	Name() string

	// SearchMovies and SearchShows return candidates in the order the remote
	// API ranks them. Year may be empty.
	SearchMovies(ctx context.Context, query, year string) ([]*media.Movie, error)
	SearchShows(ctx context.Context, query, year string) ([]*media.TVShow, error)

	// ShowByID fetches a single show without episodes.
	ShowByID(ctx context.Context, id string) (*media.TVShow, error)

	// SeasonNumbers lists every season of a show in ascending order.
	SeasonNumbers(ctx context.Context, show *media.TVShow) ([]int, error)

	// SeasonEpisodes lists the episodes of one season in episode order.
	SeasonEpisodes(ctx context.Context, show *media.TVShow, season int) ([]media.Episode, error)
}

// Settings configures a Source when it is created from the registry.
type Settings struct {
	APIKey   string
	Language string

	// CacheDir holds on-disk response caches. Caching is skipped when empty
	// or when NoCache is set.
	CacheDir string
	NoCache  bool

	Logger *slog.Logger
}

// ProviderError represents an error from a provider
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	Retry      bool
	RetryAfter int // Seconds to wait before retry
}

func (e *ProviderError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a provider NOT_FOUND error.
func IsNotFound(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == CodeNotFound
}
