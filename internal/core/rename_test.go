package core

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Digital-Shane/title-fetch/internal/log"
	"github.com/Digital-Shane/title-fetch/internal/media"
	"github.com/Digital-Shane/title-fetch/internal/selector"
	"github.com/google/go-cmp/cmp"
)

// inTempDir switches to a fresh directory holding the given files.
func inTempDir(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, f := range files {
		if err := os.WriteFile(f, []byte(f), 0644); err != nil {
			t.Fatalf("failed to create %s: %v", f, err)
		}
	}
	return dir
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// pickLabel selects the candidate whose label starts with prefix.
func pickLabel(prefix string) selector.Selector {
	return selector.Func(func(_ context.Context, labels []string, _ string) (int, bool) {
		for i, l := range labels {
			if strings.HasPrefix(l, prefix) {
				return i, true
			}
		}
		return -1, false
	})
}

func madMen() *media.TVShow {
	return &media.TVShow{
		Title: "Mad Men",
		Year:  "2007",
		Episodes: []media.Episode{
			{Season: 1, Number: 1, Title: "Smoke Gets in Your Eyes"},
			{Season: 1, Number: 2, Title: "Ladies Room"},
		},
	}
}

func TestRenameMovies_SingleCandidate(t *testing.T) {
	inTempDir(t, "alien.mkv")
	var out bytes.Buffer
	r := &Renamer{Out: &out}

	err := r.RenameMovies(context.Background(), []*media.Movie{{Title: "Alien", Year: "1979"}}, []string{"alien.mkv"})
	if err != nil {
		t.Fatalf("RenameMovies() error = %v", err)
	}

	if got, want := out.String(), "rename 'alien.mkv' to 'Alien (1979).mkv'\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if !exists("Alien (1979).mkv") || exists("alien.mkv") {
		t.Errorf("alien.mkv was not moved to Alien (1979).mkv")
	}
}

func TestRenameMovies_DryRun(t *testing.T) {
	inTempDir(t, "alien.mkv")
	var out bytes.Buffer
	r := &Renamer{Out: &out, DryRun: true, Suffix: "4K"}

	err := r.RenameMovies(context.Background(), []*media.Movie{{Title: "Alien", Year: "1979"}}, []string{"alien.mkv"})
	if err != nil {
		t.Fatalf("RenameMovies() error = %v", err)
	}

	if got, want := out.String(), "rename 'alien.mkv' to 'Alien (1979) - 4K.mkv'\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if !exists("alien.mkv") || exists("Alien (1979) - 4K.mkv") {
		t.Errorf("dry run touched the filesystem")
	}
}

func TestRenameMovies_PicksPerFile(t *testing.T) {
	inTempDir(t, "aliens.mkv", "skip.mkv")
	var out bytes.Buffer

	var headers []string
	sel := selector.Func(func(_ context.Context, labels []string, header string) (int, bool) {
		headers = append(headers, header)
		if strings.Contains(header, "skip.mkv") {
			return -1, false
		}
		for i, l := range labels {
			if l == "Aliens (1986)" {
				return i, true
			}
		}
		return -1, false
	})
	r := &Renamer{Out: &out, Selector: sel}

	movies := []*media.Movie{{Title: "Alien", Year: "1979"}, {Title: "Aliens", Year: "1986"}}
	if err := r.RenameMovies(context.Background(), movies, []string{"aliens.mkv", "skip.mkv"}); err != nil {
		t.Fatalf("RenameMovies() error = %v", err)
	}

	wantHeaders := []string{"Select a title for aliens.mkv", "Select a title for skip.mkv"}
	if diff := cmp.Diff(wantHeaders, headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	if !exists("Aliens (1986).mkv") {
		t.Errorf("aliens.mkv was not renamed")
	}
	if !exists("skip.mkv") {
		t.Errorf("declined file should be left alone")
	}
}

func TestRenameMovies_InteractiveSingleCandidate(t *testing.T) {
	inTempDir(t, "alien.mkv")
	r := &Renamer{Interactive: true, Selector: selector.None{}}

	err := r.RenameMovies(context.Background(), []*media.Movie{{Title: "Alien", Year: "1979"}}, []string{"alien.mkv"})
	if err != nil {
		t.Fatalf("RenameMovies() error = %v", err)
	}
	if !exists("alien.mkv") {
		t.Errorf("interactive run without a selection should skip the file")
	}
}

func TestRenameEpisodes_Positional(t *testing.T) {
	inTempDir(t, "e1.mkv", "e2.en.srt")
	var out bytes.Buffer
	r := &Renamer{Out: &out}

	if err := r.RenameEpisodes(context.Background(), madMen(), []string{"e1.mkv", "e2.en.srt"}); err != nil {
		t.Fatalf("RenameEpisodes() error = %v", err)
	}

	want := []string{
		filepath.Join("Mad Men (2007)", "Mad Men 1x01 Smoke Gets in Your Eyes.mkv"),
		filepath.Join("Mad Men (2007)", "Mad Men 1x02 Ladies Room.en.srt"),
	}
	for _, path := range want {
		if !exists(path) {
			t.Errorf("expected %s to exist", path)
		}
	}
	if lines := strings.Count(out.String(), "\n"); lines != 2 {
		t.Errorf("printed %d rename lines, want 2", lines)
	}
}

func TestRenameEpisodes_CountMismatch(t *testing.T) {
	show := madMen()
	show.Episodes = append(show.Episodes, media.Episode{Season: 1, Number: 3, Title: "Marriage of Figaro"})
	r := &Renamer{DryRun: true}

	err := r.RenameEpisodes(context.Background(), show, []string{"a.mkv", "b.mkv"})

	var mismatch *CountMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("RenameEpisodes() error = %v, want CountMismatchError", err)
	}
	if got, want := err.Error(), "2 files but 3 episodes"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestRenameEpisodes_Interactive(t *testing.T) {
	inTempDir(t, "ladies.mkv", "other.mkv")

	sel := selector.Func(func(_ context.Context, labels []string, header string) (int, bool) {
		if strings.Contains(header, "other.mkv") {
			return -1, false
		}
		return pickLabel("1x02").Select(context.Background(), labels, header)
	})
	r := &Renamer{Interactive: true, Selector: sel}

	if err := r.RenameEpisodes(context.Background(), madMen(), []string{"ladies.mkv", "other.mkv"}); err != nil {
		t.Fatalf("RenameEpisodes() error = %v", err)
	}
	if !exists(filepath.Join("Mad Men (2007)", "Mad Men 1x02 Ladies Room.mkv")) {
		t.Errorf("ladies.mkv was not renamed to episode 2")
	}
	if !exists("other.mkv") {
		t.Errorf("declined file should be left alone")
	}
}

func TestRename_RefusesOverwrite(t *testing.T) {
	inTempDir(t, "a.mkv", "b.mkv")
	r := &Renamer{}

	err := r.Rename("a.mkv", "b.mkv")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("Rename() error = %v, want already exists", err)
	}
	if got, _ := os.ReadFile("b.mkv"); string(got) != "b.mkv" {
		t.Errorf("destination was overwritten")
	}
}

func TestRename_SamePathIsNoop(t *testing.T) {
	inTempDir(t, "Alien (1979).mkv")
	if err := (&Renamer{}).Rename("Alien (1979).mkv", "./Alien (1979).mkv"); err != nil {
		t.Errorf("Rename() error = %v, want nil", err)
	}
}

func TestRename_KeepTags(t *testing.T) {
	inTempDir(t, "alien [Remux].mkv")
	r := &Renamer{KeepTags: true}

	err := r.RenameMovies(context.Background(), []*media.Movie{{Title: "Alien", Year: "1979"}}, []string{"alien [Remux].mkv"})
	if err != nil {
		t.Fatalf("RenameMovies() error = %v", err)
	}
	if !exists("Alien (1979) [Remux].mkv") {
		t.Errorf("tagged destination missing")
	}
}

func TestRename_LogsForUndo(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	inTempDir(t, "e1.mkv", "e2.mkv")

	log.Initialize(true, log.DefaultRetentionDays)
	if err := log.StartSession("title-fetch", nil); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	r := &Renamer{}
	if err := r.RenameEpisodes(context.Background(), madMen(), []string{"e1.mkv", "e2.mkv"}); err != nil {
		t.Fatalf("RenameEpisodes() error = %v", err)
	}
	if err := log.EndSession(); err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}

	report, err := log.UndoLatest()
	if err != nil {
		t.Fatalf("UndoLatest() error = %v", err)
	}
	// One directory and two renames.
	if report.Successful != 3 || report.Failed != 0 {
		t.Errorf("undo report = %d ok / %d failed, want 3 / 0", report.Successful, report.Failed)
	}
	if !exists("e1.mkv") || !exists("e2.mkv") || exists("Mad Men (2007)") {
		t.Errorf("undo did not restore the original layout")
	}
}
