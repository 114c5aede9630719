// Package cmd wires the title-fetch and title-lookup command lines.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"github.com/Digital-Shane/title-fetch/internal/config"
	"github.com/Digital-Shane/title-fetch/internal/provider"
	"github.com/Digital-Shane/title-fetch/internal/provider/sources"
	"github.com/Digital-Shane/title-fetch/internal/selector"
	"github.com/spf13/cobra"
)

var (
	registry    = provider.GlobalRegistry
	loadSources = sync.OnceValue(sources.LoadBuiltinProviders)
	newSelector = selector.New
)

// NewRootCmd builds the title-fetch command.
func NewRootCmd() *cobra.Command {
	var flags config.Flags

	cmd := &cobra.Command{
		Use:   "title-fetch [flags] QUERY...",
		Short: "Look up movie and TV titles and rename media files to match",
		Long: `title-fetch searches a movie/TV metadata service for a title and prints
the canonical name, or renames local media files after it.

Movies are renamed to "Title (Year).ext". Episodes are moved into a show
directory as "Show (Year)/Show 1x02 Episode Title.ext". When a search is
ambiguous the candidates are offered in a fuzzy picker (fzf when installed).`,
		Example: `  title-fetch alien
  title-fetch -r alien.mkv "alien (1979)"
  title-fetch -t -s 1 -r e1.mkv -r e2.mkv mad men
  title-fetch -f episodes.txt -e 1x02 -r ep.mkv
  title-fetch --undo`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Merge(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.Resolve(flags, args)
			if err != nil {
				return err
			}
			r := &runner{
				opts:   opts,
				out:    cmd.OutOrStdout(),
				errOut: cmd.ErrOrStderr(),
				logger: newLogger(cmd.ErrOrStderr(), opts.Verbose),
				args:   os.Args[1:],
			}
			return r.run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.APIKey, "api-key", "", "API key for the metadata provider")
	f.StringVarP(&flags.Language, "language", "l", "", "Result language, e.g. en-US")
	f.StringVar(&flags.Provider, "provider", "", "Metadata provider (tmdb, tvdb or omdb)")
	f.BoolVarP(&flags.TVShow, "tv-show", "t", false, "Search TV shows instead of movies")
	f.IntSliceVarP(&flags.Seasons, "seasons", "s", nil, "Seasons to fetch (repeatable or comma separated)")
	f.BoolVarP(&flags.AllSeasons, "all-seasons", "a", false, "Fetch every season")
	f.StringSliceVarP(&flags.Episodes, "episodes", "e", nil, `Episodes to fetch as "SxE" or a bare number with one --seasons`)
	f.StringVarP(&flags.File, "file", "f", "", "Read the show and its episodes from a file instead of searching")
	f.BoolVarP(&flags.Interactive, "interactive", "i", false, "Pick the title or episode for every file")
	f.StringArrayVarP(&flags.Rename, "rename", "r", nil, "File to rename (repeatable)")
	f.BoolVarP(&flags.DryRun, "dry-run", "n", false, "Print renames without performing them")
	f.StringVar(&flags.Suffix, "suffix", "", `Append " - SUFFIX" to renamed files`)
	f.StringVar(&flags.Year, "year", "", "Release or first-air year")
	f.StringVar(&flags.Picker, "picker", config.PickerAuto, "Picker to use: auto, fzf or builtin")
	f.BoolVar(&flags.NoCache, "no-cache", false, "Do not use the on-disk response cache")
	f.BoolVar(&flags.NoLog, "no-log", false, "Do not record renames for --undo")
	f.BoolVarP(&flags.Verbose, "verbose", "v", false, "Log diagnostics to stderr")
	f.BoolVar(&flags.Undo, "undo", false, "Revert the most recent rename session")
	f.BoolVar(&flags.KeepTags, "keep-tags", false, `Keep bracketed tags such as "[Remux]" from the source name`)
	f.String("config", "", "Config file (default ~/.title-fetch/config.ini)")

	return cmd
}

// Execute runs title-fetch and exits non-zero on failure.
func Execute() {
	execute(NewRootCmd())
}

func execute(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := loadSources(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.Name(), err)
		os.Exit(1)
	}

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.Name(), err)
		stop()
		os.Exit(1)
	}
}

// newLogger logs diagnostics to w. Only warnings and errors are shown unless
// verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// newSource creates the named metadata source, or the default one when name
// is empty.
func newSource(name string, settings provider.Settings) (provider.Source, error) {
	if name == "" {
		name = registry.Default()
	}
	if _, ok := registry.Get(name); !ok {
		return nil, &config.UsageError{Msg: fmt.Sprintf("unknown provider %q (available: %v)", name, registry.List())}
	}
	return registry.New(name, settings)
}

// closeSource releases a source that holds resources, such as a response
// cache that is saved on close.
func closeSource(source provider.Source, logger *slog.Logger) {
	c, ok := source.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("failed to close provider", "provider", source.Name(), "error", err)
	}
}

// cacheDir is where sources keep their response caches.
func cacheDir() string {
	dir, err := config.Dir()
	if err != nil {
		return ""
	}
	return dir
}
