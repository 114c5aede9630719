package media

import "fmt"

// Kind distinguishes the two result shapes a search can produce.
type Kind string

const (
	KindMovie Kind = "movie"
	KindShow  Kind = "show"
)

// Result is a Movie or TVShow returned from a search, before any episode
// population has happened.
type Result interface {
	fmt.Stringer
	Kind() Kind
}

// Movie is a single movie search result.
type Movie struct {
	Title string
	Year  string // empty when the source had no release date
	ID    string
}

// Kind implements Result.
func (m *Movie) Kind() Kind { return KindMovie }

// String renders "Title (Year)", or just the title when the year is unknown.
func (m *Movie) String() string {
	return titleWithYear(m.Title, m.Year)
}

// Episode is one entry of a show's episode list.
type Episode struct {
	Season int
	Number int
	Title  string
}

// Ref returns the (season, episode) pair identifying the episode.
func (e Episode) Ref() EpisodeRef {
	return EpisodeRef{Season: e.Season, Number: e.Number}
}

// String renders "1x02 Title".
func (e Episode) String() string {
	return fmt.Sprintf("%dx%02d %s", e.Season, e.Number, e.Title)
}

// EpisodeRef is a (season, episode) pair used by episode selectors.
type EpisodeRef struct {
	Season int
	Number int
}

func (r EpisodeRef) String() string {
	return fmt.Sprintf("%dx%d", r.Season, r.Number)
}

// TVShow is a show search result. Episodes stays empty until it is populated
// from the metadata source or loaded from an episode file.
type TVShow struct {
	Title    string
	Year     string
	ID       string
	Episodes []Episode
}

// Kind implements Result.
func (s *TVShow) Kind() Kind { return KindShow }

// String renders "Title (Year)", or just the title when the year is unknown.
func (s *TVShow) String() string {
	return titleWithYear(s.Title, s.Year)
}

func titleWithYear(title, year string) string {
	if year == "" {
		return title
	}
	return fmt.Sprintf("%s (%s)", title, year)
}
