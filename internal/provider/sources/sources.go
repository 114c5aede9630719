// Package sources registers the built-in metadata sources. It lives apart
// from provider to avoid import cycles.
package sources

import (
	"fmt"

	"github.com/Digital-Shane/title-fetch/internal/provider"
	"github.com/Digital-Shane/title-fetch/internal/provider/omdb"
	"github.com/Digital-Shane/title-fetch/internal/provider/tmdb"
	"github.com/Digital-Shane/title-fetch/internal/provider/tvdb"
)

// LoadBuiltinProviders loads all built-in providers into the global registry
func LoadBuiltinProviders() error {
	return RegisterBuiltin(provider.GlobalRegistry)
}

// RegisterBuiltin registers the built-in sources into r. TMDB has the highest
// priority and is the default.
func RegisterBuiltin(r *provider.Registry) error {
	if err := r.Register("tmdb", tmdb.Factory, 100); err != nil {
		return fmt.Errorf("failed to register TMDB provider: %w", err)
	}
	if err := r.Register("tvdb", tvdb.Factory, 50); err != nil {
		return fmt.Errorf("failed to register TVDB provider: %w", err)
	}
	if err := r.Register("omdb", omdb.Factory, 10); err != nil {
		return fmt.Errorf("failed to register OMDb provider: %w", err)
	}
	return nil
}
