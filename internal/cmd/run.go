package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Digital-Shane/title-fetch/internal/config"
	"github.com/Digital-Shane/title-fetch/internal/core"
	"github.com/Digital-Shane/title-fetch/internal/log"
	"github.com/Digital-Shane/title-fetch/internal/media"
	"github.com/Digital-Shane/title-fetch/internal/provider"
	"github.com/Digital-Shane/title-fetch/internal/selector"
)

// errNoShowSelected aborts a run whose show search was ambiguous and the
// user picked nothing.
var errNoShowSelected = errors.New("no show selected")

// runner executes one title-fetch invocation: acquire results, then print or
// rename them.
type runner struct {
	opts   *config.Options
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
	args   []string

	sel selector.Selector
}

func (r *runner) run(ctx context.Context) error {
	if r.opts.Undo {
		return r.undo()
	}

	results, err := r.acquire(ctx)
	if err != nil {
		return err
	}

	if !r.opts.Renaming() {
		r.print(results)
		return nil
	}
	return r.rename(ctx, results)
}

// acquire loads the show from the episode file, or searches the provider and
// fetches episodes when the options ask for them.
func (r *runner) acquire(ctx context.Context) ([]media.Result, error) {
	opts := r.opts
	if opts.File != "" {
		show, err := media.LoadEpisodeFile(opts.File)
		if err != nil {
			return nil, err
		}
		media.Filter(show, opts.Seasons, opts.Episodes)
		r.logger.Debug("loaded episode file", "file", opts.File, "show", show.String(), "episodes", len(show.Episodes))
		return []media.Result{show}, nil
	}

	source, err := newSource(opts.Provider, provider.Settings{
		APIKey:   opts.APIKey,
		Language: opts.Language,
		CacheDir: cacheDir(),
		NoCache:  !opts.Cache,
		Logger:   r.logger,
	})
	if err != nil {
		return nil, err
	}
	defer closeSource(source, r.logger)

	client := provider.NewClient(source, r.logger)
	results, err := client.Search(ctx, provider.Query{Text: opts.Query, Year: opts.Year, TV: opts.TVShow})
	if err != nil {
		return nil, err
	}
	if !opts.NeedsEpisodes() {
		return results, nil
	}

	show, err := r.pickShow(ctx, results)
	if err != nil {
		return nil, err
	}
	sel := provider.Selection{Seasons: opts.Seasons, Episodes: opts.Episodes}
	if err := client.AddEpisodes(ctx, show, sel); err != nil {
		return nil, err
	}
	return []media.Result{show}, nil
}

// pickShow narrows a show search to one show, asking the user when there is
// more than one.
func (r *runner) pickShow(ctx context.Context, results []media.Result) (*media.TVShow, error) {
	var shows []*media.TVShow
	for _, res := range results {
		if show, ok := res.(*media.TVShow); ok {
			shows = append(shows, show)
		}
	}
	if len(shows) == 1 {
		return shows[0], nil
	}

	s, err := r.selector()
	if err != nil {
		return nil, err
	}
	header := fmt.Sprintf("Select a show for %q", r.opts.Query)
	show, ok := selector.Choose(ctx, s, shows, header)
	if !ok {
		return nil, errNoShowSelected
	}
	return show, nil
}

func (r *runner) print(results []media.Result) {
	for _, res := range results {
		fmt.Fprintln(r.out, res)
		if show, ok := res.(*media.TVShow); ok {
			for _, ep := range show.Episodes {
				fmt.Fprintf(r.out, "  %s\n", ep)
			}
		}
	}
}

func (r *runner) rename(ctx context.Context, results []media.Result) error {
	opts := r.opts

	log.Initialize(opts.Logging && !opts.DryRun, 0)
	if err := log.StartSession("title-fetch", r.args); err != nil {
		r.logger.Warn("operation log unavailable", "error", err)
	}
	defer func() {
		if err := log.EndSession(); err != nil {
			r.logger.Warn("failed to write operation log", "error", err)
		}
	}()

	renamer := &core.Renamer{
		Out:         r.out,
		DryRun:      opts.DryRun,
		Interactive: opts.Interactive,
		Suffix:      opts.Suffix,
		KeepTags:    opts.KeepTags,
		Selector:    selector.Func(r.lazySelect),
		Logger:      r.logger,
	}

	if opts.TVShow {
		show, ok := results[0].(*media.TVShow)
		if !ok {
			return fmt.Errorf("expected a show, got %s", results[0])
		}
		return renamer.RenameEpisodes(ctx, show, opts.Rename)
	}

	movies := make([]*media.Movie, 0, len(results))
	for _, res := range results {
		if movie, ok := res.(*media.Movie); ok {
			movies = append(movies, movie)
		}
	}
	return renamer.RenameMovies(ctx, movies, opts.Rename)
}

// selector creates the picker on first use so runs that never disambiguate
// do not need one.
func (r *runner) selector() (selector.Selector, error) {
	if r.sel != nil {
		return r.sel, nil
	}
	s, err := newSelector(r.opts.Picker, r.logger)
	if err != nil {
		return nil, err
	}
	r.sel = s
	return s, nil
}

// lazySelect adapts selector to the renamer. A picker that cannot be created
// selects nothing, which skips the file.
func (r *runner) lazySelect(ctx context.Context, labels []string, header string) (int, bool) {
	s, err := r.selector()
	if err != nil {
		r.logger.Warn("no picker available", "error", err)
		return -1, false
	}
	return s.Select(ctx, labels, header)
}

func (r *runner) undo() error {
	report, err := log.UndoLatest()
	if errors.Is(err, log.ErrNoSessions) {
		fmt.Fprintln(r.out, "nothing to undo")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(r.out, report.Describe())
	for _, e := range report.Errors {
		fmt.Fprintln(r.errOut, e)
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d operation%s could not be undone", report.Failed, plural(report.Failed))
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
