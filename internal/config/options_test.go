package config

import (
	"errors"
	"testing"

	"github.com/Digital-Shane/title-fetch/internal/media"
	"github.com/google/go-cmp/cmp"
)

func TestParseEpisodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		values  []string
		seasons []int
		want    []media.EpisodeRef
		wantErr string
	}{
		{
			name:    "bare_number_with_single_season",
			values:  []string{"5"},
			seasons: []int{2},
			want:    []media.EpisodeRef{{Season: 2, Number: 5}},
		},
		{
			name:   "full_pair_without_season",
			values: []string{"3x5"},
			want:   []media.EpisodeRef{{Season: 3, Number: 5}},
		},
		{
			name:    "full_pair_ignores_season_flag",
			values:  []string{"3x5"},
			seasons: []int{1, 2},
			want:    []media.EpisodeRef{{Season: 3, Number: 5}},
		},
		{
			name:    "comma_separated",
			values:  []string{"1,2", "4"},
			seasons: []int{7},
			want:    []media.EpisodeRef{{Season: 7, Number: 1}, {Season: 7, Number: 2}, {Season: 7, Number: 4}},
		},
		{
			name:    "bare_number_without_season",
			values:  []string{"5"},
			wantErr: "need a single season, or full episode number",
		},
		{
			name:    "bare_number_with_two_seasons",
			values:  []string{"5"},
			seasons: []int{1, 2},
			wantErr: "need a single season, or full episode number",
		},
		{
			name:    "garbage",
			values:  []string{"S01E02"},
			wantErr: `invalid episode "S01E02"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseEpisodes(tc.values, tc.seasons)
			if tc.wantErr != "" {
				if err == nil || err.Error() != tc.wantErr {
					t.Fatalf("ParseEpisodes() error = %v, want %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEpisodes() error = %v, want nil", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseEpisodes() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplitYear(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, query, year string
	}{
		{"Alien (1979)", "Alien", "1979"},
		{"Alien(1979) ", "Alien", "1979"},
		{"Alien", "Alien", ""},
		{"Blade Runner 2049", "Blade Runner 2049", ""},
		{"(1979)", "(1979)", ""},
	}
	for _, tc := range tests {
		query, year := SplitYear(tc.in)
		if query != tc.query || year != tc.year {
			t.Errorf("SplitYear(%q) = (%q, %q), want (%q, %q)", tc.in, query, year, tc.query, tc.year)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		flags Flags
		args  []string
		want  *Options
	}{
		{
			name:  "movie_query_with_year",
			flags: Flags{APIKey: "k"},
			args:  []string{"Alien", "(1979)"},
			want: &Options{
				APIKey: "k", Query: "Alien", Year: "1979",
				Picker: PickerAuto, Cache: true, Logging: true,
			},
		},
		{
			name:  "explicit_year_keeps_query",
			flags: Flags{APIKey: "k", Year: "1986"},
			args:  []string{"Aliens (1979)"},
			want: &Options{
				APIKey: "k", Query: "Aliens (1979)", Year: "1986",
				Picker: PickerAuto, Cache: true, Logging: true,
			},
		},
		{
			name:  "seasons_imply_tv",
			flags: Flags{APIKey: "k", Seasons: []int{2}, Episodes: []string{"5"}},
			args:  []string{"Lost"},
			want: &Options{
				APIKey: "k", Query: "Lost", TVShow: true,
				Seasons:  []int{2},
				Episodes: []media.EpisodeRef{{Season: 2, Number: 5}},
				Picker:   PickerAuto, Cache: true, Logging: true,
			},
		},
		{
			name:  "file_mode_without_api_key",
			flags: Flags{File: "episodes.txt", Rename: []string{"a.mkv"}},
			want: &Options{
				File: "episodes.txt", TVShow: true, AllSeasons: true,
				Rename: []string{"a.mkv"},
				Picker: PickerAuto, Cache: true, Logging: true,
			},
		},
		{
			name:  "tv_rename_defaults_to_all_seasons",
			flags: Flags{APIKey: "k", TVShow: true, Rename: []string{"a.mkv", "b.mkv"}},
			args:  []string{"Lost"},
			want: &Options{
				APIKey: "k", Query: "Lost", TVShow: true, AllSeasons: true,
				Rename: []string{"a.mkv", "b.mkv"},
				Picker: PickerAuto, Cache: true, Logging: true,
			},
		},
		{
			name:  "all_seasons_implies_tv",
			flags: Flags{APIKey: "k", AllSeasons: true, Picker: PickerFzf, NoCache: true, NoLog: true},
			args:  []string{"Lost"},
			want: &Options{
				APIKey: "k", Query: "Lost", TVShow: true, AllSeasons: true,
				Picker: PickerFzf,
			},
		},
		{
			name:  "undo_needs_nothing_else",
			flags: Flags{Undo: true},
			want:  &Options{Undo: true, Picker: PickerAuto, Cache: true, Logging: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.flags, tc.args)
			if err != nil {
				t.Fatalf("Resolve() error = %v, want nil", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_UsageErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		flags Flags
		args  []string
	}{
		{"missing_api_key", Flags{}, []string{"Alien"}},
		{"missing_query_and_file", Flags{APIKey: "k"}, nil},
		{"query_and_file", Flags{APIKey: "k", File: "episodes.txt"}, []string{"Alien"}},
		{"bare_episode_without_season", Flags{APIKey: "k", Episodes: []string{"5"}}, []string{"Lost"}},
		{"bad_year", Flags{APIKey: "k", Year: "79"}, []string{"Alien"}},
		{"bad_picker", Flags{APIKey: "k", Picker: "dmenu"}, []string{"Alien"}},
		{"negative_season", Flags{APIKey: "k", Seasons: []int{-1}}, []string{"Lost"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.flags, tc.args)
			var ue *UsageError
			if !errors.As(err, &ue) {
				t.Fatalf("Resolve() error = %v, want *UsageError", err)
			}
		})
	}
}

func TestOptions_NeedsEpisodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		opts Options
		want bool
	}{
		{"movie", Options{}, false},
		{"tv_search_only", Options{TVShow: true}, false},
		{"tv_all_seasons", Options{TVShow: true, AllSeasons: true}, true},
		{"tv_season", Options{TVShow: true, Seasons: []int{1}}, true},
		{"tv_episode", Options{TVShow: true, Episodes: []media.EpisodeRef{{Season: 1, Number: 1}}}, true},
	}
	for _, tc := range tests {
		if got := tc.opts.NeedsEpisodes(); got != tc.want {
			t.Errorf("%s: NeedsEpisodes() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
