// Package core computes destination names for media files and performs the
// renames.
package core

import (
	"fmt"
	"path/filepath"

	"github.com/Digital-Shane/title-fetch/internal/media"
)

// MovieName returns "Title (Year){ - suffix}{ext}" for src. The destination
// is relative to the working directory.
func MovieName(movie *media.Movie, suffix, src string) (string, error) {
	name, err := sanitizeFilename(movie.String() + suffixPart(suffix))
	if err != nil {
		return "", err
	}
	return name + media.ExtractExtension(src), nil
}

// EpisodeName returns
// "Show (Year)/Show SxEE Episode Title{ - suffix}{ext}" for src.
func EpisodeName(show *media.TVShow, ep media.Episode, suffix, src string) (string, error) {
	dir, err := sanitizeFilename(show.String())
	if err != nil {
		return "", err
	}

	stem := fmt.Sprintf("%s %dx%02d %s", show.Title, ep.Season, ep.Number, ep.Title)
	name, err := sanitizeFilename(stem + suffixPart(suffix))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+media.ExtractExtension(src)), nil
}

func suffixPart(suffix string) string {
	if suffix == "" {
		return ""
	}
	return " - " + suffix
}
