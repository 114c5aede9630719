package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Digital-Shane/title-fetch/internal/log"
	"github.com/Digital-Shane/title-fetch/internal/media"
	"github.com/Digital-Shane/title-fetch/internal/selector"
)

// CountMismatchError reports a positional episode rename whose file and
// episode counts differ.
type CountMismatchError struct {
	Files    int
	Episodes int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("%d files but %d episodes", e.Files, e.Episodes)
}

// Renamer moves media files to their canonical names. Each move is announced
// on Out as "rename 'src' to 'dst'"; DryRun stops there. Interactive routes
// every file through Selector, and KeepTags carries bracketed source tags
// over to the new name.
type Renamer struct {
	Out         io.Writer
	DryRun      bool
	Interactive bool
	Suffix      string
	KeepTags    bool
	Selector    selector.Selector
	Logger      *slog.Logger
}

func (r *Renamer) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Renamer) chooser() selector.Selector {
	if r.Selector != nil {
		return r.Selector
	}
	return selector.None{}
}

// RenameMovies renames files after movies. A single file with a single
// candidate is renamed directly unless the renamer is interactive; otherwise
// each file picks its own candidate and declined files are skipped.
func (r *Renamer) RenameMovies(ctx context.Context, movies []*media.Movie, files []string) error {
	if len(movies) == 0 || len(files) == 0 {
		return nil
	}

	if !r.Interactive && len(movies) == 1 && len(files) == 1 {
		return r.renameMovie(movies[0], files[0])
	}

	for _, file := range files {
		header := fmt.Sprintf("Select a title for %s", filepath.Base(file))
		movie, ok := selector.ChooseRanked(ctx, r.chooser(), movies, header, media.CleanName(file))
		if !ok {
			r.logger().Debug("no title chosen, skipping", "file", file)
			continue
		}
		if err := r.renameMovie(movie, file); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renamer) renameMovie(movie *media.Movie, file string) error {
	r.checkMedia(file)
	dst, err := MovieName(movie, r.Suffix, file)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	if r.KeepTags {
		dst = KeepSourceTags(dst, file)
	}
	return r.Rename(file, dst)
}

// RenameEpisodes renames files after show's episodes. Non-interactive runs
// pair files and episodes by position and need equal counts; interactive
// runs let each file pick its episode and skip declined files.
func (r *Renamer) RenameEpisodes(ctx context.Context, show *media.TVShow, files []string) error {
	if len(files) == 0 {
		return nil
	}

	if !r.Interactive {
		if len(files) != len(show.Episodes) {
			return &CountMismatchError{Files: len(files), Episodes: len(show.Episodes)}
		}
		for i, file := range files {
			if err := r.renameEpisode(show, show.Episodes[i], file); err != nil {
				return err
			}
		}
		return nil
	}

	for _, file := range files {
		header := fmt.Sprintf("Select an episode for %s", filepath.Base(file))
		target := strings.TrimSuffix(filepath.Base(file), media.ExtractExtension(file))
		ep, ok := selector.ChooseRanked(ctx, r.chooser(), show.Episodes, header, target)
		if !ok {
			r.logger().Debug("no episode chosen, skipping", "file", file)
			continue
		}
		if err := r.renameEpisode(show, ep, file); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renamer) renameEpisode(show *media.TVShow, ep media.Episode, file string) error {
	r.checkMedia(file)
	dst, err := EpisodeName(show, ep, r.Suffix, file)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	if r.KeepTags {
		dst = KeepSourceTags(dst, file)
	}
	return r.Rename(file, dst)
}

// checkMedia flags files that are neither video nor subtitles. They are
// still renamed.
func (r *Renamer) checkMedia(file string) {
	if !media.IsVideo(file) && !media.IsSubtitle(file) {
		r.logger().Warn("not a recognized media file", "file", file)
	}
}

// Rename prints the planned move and, unless dry-run, performs it: missing
// parent directories are created, an existing destination is never
// overwritten, and moves across devices fall back to copy and remove.
func (r *Renamer) Rename(src, dst string) error {
	if r.Out != nil {
		fmt.Fprintf(r.Out, "rename '%s' to '%s'\n", src, dst)
	}
	if r.DryRun {
		return nil
	}
	if filepath.Clean(src) == filepath.Clean(dst) {
		r.logger().Debug("already named", "path", src)
		return nil
	}

	if err := r.ensureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	if _, err := os.Lstat(dst); err == nil {
		err := fmt.Errorf("cannot rename %s: destination %s already exists", src, dst)
		log.LogRename(src, dst, false, err)
		return err
	}

	if err := moveFile(src, dst); err != nil {
		log.LogRename(src, dst, false, err)
		return fmt.Errorf("failed to rename %s: %w", src, err)
	}
	log.LogRename(src, dst, true, nil)
	r.logger().Debug("renamed", "from", src, "to", dst)
	return nil
}

// ensureDir creates dir and its missing parents, logging each one created so
// undo can remove them again.
func (r *Renamer) ensureDir(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}

	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		_, err := os.Stat(d)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", d, err)
		}
		missing = append(missing, d)
		if filepath.Dir(d) == d {
			break
		}
	}

	for i := len(missing) - 1; i >= 0; i-- {
		err := os.Mkdir(missing[i], 0755)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			log.LogCreateDir(missing[i], false, err)
			return fmt.Errorf("failed to create directory %s: %w", missing[i], err)
		}
		log.LogCreateDir(missing[i], true, nil)
	}
	return nil
}

// moveFile renames src to dst, copying across filesystems.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return copyAndRemove(src, dst)
}

func copyAndRemove(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
