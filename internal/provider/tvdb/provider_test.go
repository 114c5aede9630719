package tvdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Digital-Shane/title-fetch/internal/media"
	"github.com/Digital-Shane/title-fetch/internal/provider"
	tvdbapi "github.com/dashotv/tvdb"
	"github.com/dashotv/tvdb/openapi/models/operations"
	"github.com/dashotv/tvdb/openapi/models/shared"
	"github.com/google/go-cmp/cmp"
)

type mockTVDBClient struct {
	searchFunc   func(operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error)
	seriesFunc   func(id float64) (*tvdbapi.GetSeriesExtendedResponse, error)
	episodesFunc func(operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error)
}

func (m *mockTVDBClient) GetSearchResults(req operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error) {
	if m.searchFunc != nil {
		return m.searchFunc(req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTVDBClient) GetSeriesExtended(id float64, meta *operations.GetSeriesExtendedQueryParamMeta, short *bool) (*tvdbapi.GetSeriesExtendedResponse, error) {
	if m.seriesFunc != nil {
		return m.seriesFunc(id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTVDBClient) GetSeriesEpisodes(req operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error) {
	if m.episodesFunc != nil {
		return m.episodesFunc(req)
	}
	return nil, errors.New("not implemented")
}

func strPtr(s string) *string { return &s }

func searchResult(id, name, year, kind string) shared.SearchResult {
	return shared.SearchResult{
		TvdbID: strPtr(id),
		Name:   strPtr(name),
		Year:   strPtr(year),
		Type:   strPtr(kind),
	}
}

func episodesFixture(t *testing.T, raw string) *tvdbapi.GetSeriesEpisodesResponse {
	t.Helper()
	var resp tvdbapi.GetSeriesEpisodesResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("failed to decode episodes fixture: %v", err)
	}
	return &resp
}

func TestSearchShows(t *testing.T) {
	var gotReq operations.GetSearchResultsRequest
	client := &mockTVDBClient{
		searchFunc: func(req operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error) {
			gotReq = req
			return &tvdbapi.GetSearchResultsResponse{
				Data: []shared.SearchResult{
					searchResult("81189", "Breaking Bad", "2008", "series"),
					searchResult("1", "Breaking Bad (film)", "2010", "movie"),
					searchResult("", "", "", "series"),
				},
			}, nil
		},
	}
	p := newWithClient(client, provider.Settings{})

	got, err := p.SearchShows(context.Background(), "Breaking Bad", "2008")
	if err != nil {
		t.Fatalf("SearchShows() error = %v, want nil", err)
	}
	want := []*media.TVShow{{Title: "Breaking Bad", Year: "2008", ID: "81189"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchShows() mismatch (-want +got):\n%s", diff)
	}

	if gotReq.Type == nil || *gotReq.Type != "series" {
		t.Errorf("search type = %v, want series", gotReq.Type)
	}
	if gotReq.Year == nil || *gotReq.Year != 2008 {
		t.Errorf("search year = %v, want 2008", gotReq.Year)
	}
}

func TestSearchMovies(t *testing.T) {
	client := &mockTVDBClient{
		searchFunc: func(req operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error) {
			if req.Year != nil {
				t.Errorf("search year = %v, want nil", *req.Year)
			}
			return &tvdbapi.GetSearchResultsResponse{
				Data: []shared.SearchResult{searchResult("348", "Alien", "1979", "movie")},
			}, nil
		},
	}
	p := newWithClient(client, provider.Settings{})

	got, err := p.SearchMovies(context.Background(), "Alien", "")
	if err != nil {
		t.Fatalf("SearchMovies() error = %v, want nil", err)
	}
	want := []*media.Movie{{Title: "Alien", Year: "1979", ID: "348"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchMovies() mismatch (-want +got):\n%s", diff)
	}
}

func TestSeasonEpisodes(t *testing.T) {
	client := &mockTVDBClient{
		episodesFunc: func(req operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error) {
			if req.Season == nil || *req.Season != 1 {
				t.Errorf("episodes season = %v, want 1", req.Season)
			}
			if req.ID != 81189 {
				t.Errorf("episodes series id = %v, want 81189", req.ID)
			}
			return episodesFixture(t, `{"data": {"episodes": [
				{"number": 2, "name": "Cat's in the Bag...", "seasonNumber": 1},
				{"number": 1, "name": "Pilot", "seasonNumber": 1}
			]}}`), nil
		},
	}
	p := newWithClient(client, provider.Settings{})

	got, err := p.SeasonEpisodes(context.Background(), &media.TVShow{ID: "81189"}, 1)
	if err != nil {
		t.Fatalf("SeasonEpisodes() error = %v, want nil", err)
	}
	want := []media.Episode{
		{Season: 1, Number: 1, Title: "Pilot"},
		{Season: 1, Number: 2, Title: "Cat's in the Bag..."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SeasonEpisodes() mismatch (-want +got):\n%s", diff)
	}
}

func TestSeasonEpisodes_EmptySeason(t *testing.T) {
	client := &mockTVDBClient{
		episodesFunc: func(req operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error) {
			return episodesFixture(t, `{"data": {"episodes": []}}`), nil
		},
	}
	p := newWithClient(client, provider.Settings{})

	_, err := p.SeasonEpisodes(context.Background(), &media.TVShow{ID: "81189"}, 9)
	if !provider.IsNotFound(err) {
		t.Errorf("SeasonEpisodes() error = %v, want NOT_FOUND", err)
	}
}

func TestSeasonNumbers(t *testing.T) {
	client := &mockTVDBClient{
		episodesFunc: func(req operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error) {
			if req.Season != nil {
				t.Errorf("episodes season = %v, want nil", *req.Season)
			}
			return episodesFixture(t, `{"data": {"episodes": [
				{"number": 1, "name": "Special", "seasonNumber": 0},
				{"number": 1, "name": "Pilot", "seasonNumber": 1},
				{"number": 2, "name": "Next", "seasonNumber": 1},
				{"number": 1, "name": "Return", "seasonNumber": 3},
				{"number": 1, "name": "Middle", "seasonNumber": 2}
			]}}`), nil
		},
	}
	p := newWithClient(client, provider.Settings{})

	got, err := p.SeasonNumbers(context.Background(), &media.TVShow{ID: "81189"})
	if err != nil {
		t.Fatalf("SeasonNumbers() error = %v, want nil", err)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3}, got); diff != "" {
		t.Errorf("SeasonNumbers() mismatch (-want +got):\n%s", diff)
	}
}

// episodesPage renders a page of episodes, 25 per season, starting at
// firstSeason.
func episodesPage(t *testing.T, firstSeason, count int) *tvdbapi.GetSeriesEpisodesResponse {
	t.Helper()
	var b strings.Builder
	b.WriteString(`{"data": {"episodes": [`)
	for i := 0; i < count; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"number": %d, "name": "Episode", "seasonNumber": %d}`, i%25+1, firstSeason+i/25)
	}
	b.WriteString(`]}}`)
	return episodesFixture(t, b.String())
}

func TestSeasonNumbers_Paged(t *testing.T) {
	var pages []string
	client := &mockTVDBClient{
		episodesFunc: func(req operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error) {
			pages = append(pages, fmt.Sprint(req.Page))
			switch len(pages) {
			case 1:
				return episodesPage(t, 1, episodesPageSize), nil
			case 2:
				return episodesPage(t, 21, 250), nil
			default:
				t.Fatalf("unexpected request for page %v", req.Page)
				return nil, nil
			}
		},
	}
	p := newWithClient(client, provider.Settings{})

	got, err := p.SeasonNumbers(context.Background(), &media.TVShow{ID: "81189"})
	if err != nil {
		t.Fatalf("SeasonNumbers() error = %v, want nil", err)
	}
	var want []int
	for n := 1; n <= 30; n++ {
		want = append(want, n)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SeasonNumbers() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"0", "1"}, pages); diff != "" {
		t.Errorf("requested pages mismatch (-want +got):\n%s", diff)
	}
}

func TestSeasonEpisodes_FullLastPage(t *testing.T) {
	calls := 0
	client := &mockTVDBClient{
		episodesFunc: func(req operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error) {
			calls++
			if calls == 1 {
				return episodesPage(t, 1, episodesPageSize), nil
			}
			return episodesFixture(t, `{"data": {"episodes": []}}`), nil
		},
	}
	p := newWithClient(client, provider.Settings{})

	got, err := p.SeasonEpisodes(context.Background(), &media.TVShow{ID: "81189"}, 1)
	if err != nil {
		t.Fatalf("SeasonEpisodes() error = %v, want nil", err)
	}
	if len(got) != episodesPageSize {
		t.Errorf("SeasonEpisodes() returned %d episodes, want %d", len(got), episodesPageSize)
	}
	if calls != 2 {
		t.Errorf("GetSeriesEpisodes() calls = %d, want 2", calls)
	}
}

func TestInvalidShowID(t *testing.T) {
	p := newWithClient(&mockTVDBClient{}, provider.Settings{})

	_, err := p.SeasonEpisodes(context.Background(), &media.TVShow{Title: "From a file"}, 1)
	var pe *provider.ProviderError
	if !errors.As(err, &pe) || pe.Code != provider.CodeInvalid {
		t.Errorf("SeasonEpisodes() error = %v, want INVALID_REQUEST", err)
	}
}

func TestMapError(t *testing.T) {
	p := newWithClient(&mockTVDBClient{}, provider.Settings{})
	tests := []struct {
		err  error
		code string
	}{
		{errors.New("401 Unauthorized"), provider.CodeAuthFailed},
		{errors.New("429 too many requests"), provider.CodeRateLimited},
		{errors.New("404 not found"), provider.CodeNotFound},
		{errors.New("503 unavailable"), provider.CodeUnavailable},
		{errors.New("boom"), provider.CodeUnknown},
	}
	for _, tt := range tests {
		var pe *provider.ProviderError
		if !errors.As(p.mapError(tt.err), &pe) || pe.Code != tt.code {
			t.Errorf("mapError(%v) = %v, want code %s", tt.err, pe, tt.code)
		}
	}
}
