package config

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Digital-Shane/title-fetch/internal/media"
)

// Picker names accepted by --picker.
const (
	PickerAuto    = "auto"
	PickerFzf     = "fzf"
	PickerBuiltin = "builtin"
)

var (
	// queryYearRe matches a trailing "(YYYY)" on a search query.
	queryYearRe = regexp.MustCompile(`^(.*?)\s*\((\d{4})\)\s*$`)

	yearRe    = regexp.MustCompile(`^\d{4}$`)
	episodeRe = regexp.MustCompile(`^(\d+)x(\d+)$`)
)

// UsageError is a bad or missing argument. It is reported before any network
// call is made.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func usagef(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// Flags holds the raw command line values for title-fetch, after the config
// file has been merged in.
type Flags struct {
	APIKey      string
	Language    string
	Provider    string
	TVShow      bool
	Seasons     []int
	AllSeasons  bool
	Episodes    []string
	File        string
	Interactive bool
	Rename      []string
	DryRun      bool
	Suffix      string
	Year        string
	Picker      string
	NoCache     bool
	NoLog       bool
	Verbose     bool
	Undo        bool
	KeepTags    bool
}

// Options is the validated configuration of one run.
type Options struct {
	APIKey      string
	Language    string
	Provider    string
	TVShow      bool
	AllSeasons  bool
	File        string
	Interactive bool
	Rename      []string
	DryRun      bool
	Suffix      string
	Query       string
	Year        string
	Picker      string
	Cache       bool
	Logging     bool
	Verbose     bool
	Undo        bool
	KeepTags    bool

	// Seasons is nil when no season selector was given.
	Seasons []int
	// Episodes is nil when no episode selector was given.
	Episodes []media.EpisodeRef
}

// Renaming reports whether the run renames files rather than printing results.
func (o *Options) Renaming() bool {
	return len(o.Rename) > 0
}

// NeedsEpisodes reports whether a TV search must be followed by fetching
// episode lists.
func (o *Options) NeedsEpisodes() bool {
	return o.TVShow && (o.AllSeasons || o.Seasons != nil || o.Episodes != nil)
}

// Resolve validates raw flags and positional query terms into Options.
func Resolve(f Flags, args []string) (*Options, error) {
	opts := &Options{
		APIKey:      strings.TrimSpace(f.APIKey),
		Language:    f.Language,
		Provider:    f.Provider,
		TVShow:      f.TVShow,
		AllSeasons:  f.AllSeasons,
		File:        f.File,
		Interactive: f.Interactive,
		Rename:      f.Rename,
		DryRun:      f.DryRun,
		Suffix:      f.Suffix,
		Year:        strings.TrimSpace(f.Year),
		Picker:      f.Picker,
		Cache:       !f.NoCache,
		Logging:     !f.NoLog,
		Verbose:     f.Verbose,
		Undo:        f.Undo,
		KeepTags:    f.KeepTags,
	}
	if opts.Picker == "" {
		opts.Picker = PickerAuto
	}

	if opts.Undo {
		return opts, nil
	}

	switch opts.Picker {
	case PickerAuto, PickerFzf, PickerBuiltin:
	default:
		return nil, usagef("unknown picker %q (want %s, %s or %s)", opts.Picker, PickerAuto, PickerFzf, PickerBuiltin)
	}

	opts.Query = strings.Join(strings.Fields(strings.Join(args, " ")), " ")
	if opts.Query == "" && opts.File == "" {
		return nil, usagef("a query or an episode file is required")
	}
	if opts.Query != "" && opts.File != "" {
		return nil, usagef("a query and an episode file cannot be combined")
	}
	if opts.APIKey == "" && opts.File == "" {
		return nil, usagef("an API key is required (use --api-key or set api-key in the config file)")
	}

	if opts.Year == "" {
		opts.Query, opts.Year = SplitYear(opts.Query)
	} else if !yearRe.MatchString(opts.Year) {
		return nil, usagef("invalid year %q", opts.Year)
	}

	if len(f.Seasons) > 0 {
		opts.Seasons = slices.Clone(f.Seasons)
		for _, s := range opts.Seasons {
			if s < 0 {
				return nil, usagef("invalid season %d", s)
			}
		}
	}

	if len(f.Episodes) > 0 {
		refs, err := ParseEpisodes(f.Episodes, opts.Seasons)
		if err != nil {
			return nil, err
		}
		opts.Episodes = refs
	}

	if opts.File != "" || opts.AllSeasons || opts.Seasons != nil || opts.Episodes != nil {
		opts.TVShow = true
	}

	if opts.Renaming() && opts.TVShow && opts.Seasons == nil && opts.Episodes == nil {
		opts.AllSeasons = true
	}

	return opts, nil
}

// SplitYear removes a trailing "(YYYY)" from a query and returns it
// separately. Queries without one are returned unchanged with an empty year.
func SplitYear(query string) (string, string) {
	m := queryYearRe.FindStringSubmatch(query)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return query, ""
	}
	return m[1], m[2]
}

// ParseEpisodes parses episode selectors. Each value is either "SxE" or a bare
// episode number; bare numbers take their season from seasons, which must
// then hold exactly one entry. Values may also be comma separated.
func ParseEpisodes(values []string, seasons []int) ([]media.EpisodeRef, error) {
	var refs []media.EpisodeRef
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			ref, err := parseEpisode(part, seasons)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func parseEpisode(value string, seasons []int) (media.EpisodeRef, error) {
	if m := episodeRe.FindStringSubmatch(value); m != nil {
		season, err := strconv.Atoi(m[1])
		if err != nil {
			return media.EpisodeRef{}, usagef("invalid episode %q", value)
		}
		number, err := strconv.Atoi(m[2])
		if err != nil {
			return media.EpisodeRef{}, usagef("invalid episode %q", value)
		}
		return media.EpisodeRef{Season: season, Number: number}, nil
	}

	number, err := strconv.Atoi(value)
	if err != nil || number < 0 {
		return media.EpisodeRef{}, usagef("invalid episode %q", value)
	}
	if len(seasons) != 1 {
		return media.EpisodeRef{}, usagef("need a single season, or full episode number")
	}
	return media.EpisodeRef{Season: seasons[0], Number: number}, nil
}
