package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Digital-Shane/title-fetch/internal/config"
	"github.com/Digital-Shane/title-fetch/internal/media"
	"github.com/Digital-Shane/title-fetch/internal/provider"
	"github.com/spf13/cobra"
)

type lookupFlags struct {
	APIKey   string
	Language string
	Provider string
	TV       bool
	ShowID   bool
	Season   int
	NoCache  bool
	Verbose  bool
}

// NewLookupCmd builds the title-lookup command.
func NewLookupCmd() *cobra.Command {
	var flags lookupFlags

	cmd := &cobra.Command{
		Use:   "title-lookup [flags] QUERY...|ID",
		Short: "Browse movie and TV metadata as tables",
		Long: `title-lookup prints metadata search results as tables.

Without --show-id it searches movies, or shows with --tv, and lists their
ids. With --show-id the argument is a show id: the show's seasons are
listed, or the episodes of one season with --season.`,
		Example: `  title-lookup alien
  title-lookup -t mad men
  title-lookup -i 1104
  title-lookup -i 1104 -s 2`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Merge(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(strings.Fields(strings.Join(args, " ")), " ")
			if query == "" {
				return &config.UsageError{Msg: "a query or show id is required"}
			}
			if strings.TrimSpace(flags.APIKey) == "" {
				return &config.UsageError{Msg: "an API key is required (use --api-key or set api-key in the config file)"}
			}
			// A season only counts when given on the command line; one from
			// the config file is ignored.
			seasonGiven := cmd.Flags().Changed("season")
			if seasonGiven && !flags.ShowID {
				return &config.UsageError{Msg: "--season needs --show-id"}
			}
			if !seasonGiven {
				flags.Season = -1
			}

			logger := newLogger(cmd.ErrOrStderr(), flags.Verbose)
			source, err := newSource(flags.Provider, provider.Settings{
				APIKey:   flags.APIKey,
				Language: flags.Language,
				CacheDir: cacheDir(),
				NoCache:  flags.NoCache,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			defer closeSource(source, logger)

			return lookup(cmd.Context(), provider.NewClient(source, logger), flags, query, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.APIKey, "api-key", "", "API key for the metadata provider")
	f.StringVarP(&flags.Language, "language", "l", "", "Result language, e.g. en-US")
	f.StringVar(&flags.Provider, "provider", "", "Metadata provider (tmdb, tvdb or omdb)")
	f.BoolVarP(&flags.TV, "tv", "t", false, "Search TV shows instead of movies")
	f.BoolVarP(&flags.ShowID, "show-id", "i", false, "Treat the argument as a show id")
	f.IntVarP(&flags.Season, "season", "s", 0, "Season whose episodes to list")
	f.BoolVar(&flags.NoCache, "no-cache", false, "Do not use the on-disk response cache")
	f.BoolVarP(&flags.Verbose, "verbose", "v", false, "Log diagnostics to stderr")
	f.String("config", "", "Config file (default ~/.title-fetch/config.ini)")

	return cmd
}

// ExecuteLookup runs title-lookup and exits non-zero on failure.
func ExecuteLookup() {
	execute(NewLookupCmd())
}

// lookup prints search results, a show's seasons, or one season's episodes.
// A negative season means no season was requested.
func lookup(ctx context.Context, client *provider.Client, flags lookupFlags, arg string, w io.Writer) error {
	if !flags.ShowID {
		results, err := client.Search(ctx, provider.Query{Text: arg, TV: flags.TV})
		if err != nil {
			return err
		}
		fmt.Fprintln(w, resultsTable(results))
		return nil
	}

	show, err := client.ShowByID(ctx, arg)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, show)

	if flags.Season < 0 {
		seasons, err := client.Seasons(ctx, show, provider.Selection{})
		if err != nil {
			return err
		}
		fmt.Fprintln(w, seasonsTable(seasons))
		return nil
	}

	if err := client.AddEpisodes(ctx, show, provider.Selection{Seasons: []int{flags.Season}}); err != nil {
		return err
	}
	fmt.Fprintln(w, episodesTable(show.Episodes))
	return nil
}

func resultsTable(results []media.Result) string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		switch v := res.(type) {
		case *media.Movie:
			rows = append(rows, []string{v.ID, v.Title, v.Year})
		case *media.TVShow:
			rows = append(rows, []string{v.ID, v.Title, v.Year})
		}
	}
	return renderTable([]string{"ID", "Title", "Year"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft})
}

func seasonsTable(seasons []int) string {
	rows := make([][]string, 0, len(seasons))
	for _, s := range seasons {
		rows = append(rows, []string{strconv.Itoa(s)})
	}
	return renderTable([]string{"Season"}, rows, []columnAlignment{alignRight})
}

func episodesTable(episodes []media.Episode) string {
	rows := make([][]string, 0, len(episodes))
	for _, ep := range episodes {
		rows = append(rows, []string{strconv.Itoa(ep.Season), strconv.Itoa(ep.Number), ep.Title})
	}
	return renderTable([]string{"Season", "Episode", "Title"}, rows, []columnAlignment{alignRight, alignRight, alignLeft})
}
