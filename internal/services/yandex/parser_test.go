package yandex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/mewatch/internal/config"
	"github.com/amaumene/mewatch/internal/models"
	"github.com/amaumene/mewatch/internal/services/sources"
)

const filmPage = `<html><body>
<div class="player"><iframe src="//player.example.com/film-123"></iframe></div>
</body></html>`

const emptyPage = `<html><body><div class="no-results">nothing here</div></body></html>`

func seriesSearchPage(title string, seasons int) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="series-navigator__main">`)
	b.WriteString(fmt.Sprintf(`<a class="series-navigator__title-link"> %s </a>`, title))
	b.WriteString(`</div><div class="carousel">`)
	for i := 0; i < seasons; i++ {
		b.WriteString(`<label class="carousel__item">season</label>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func seriesEpisodePage(season, episode int, labels []string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="radio-table">`)
	for _, label := range labels {
		b.WriteString(fmt.Sprintf(`<div class="radio-table__list-row"><label><span>%s</span></label></div>`, label))
	}
	b.WriteString(`</div>`)
	b.WriteString(fmt.Sprintf(`<iframe src="//player.example.com/s%de%d"></iframe>`, season, episode))
	b.WriteString(`</body></html>`)
	return b.String()
}

func newTestParser(t *testing.T, handler http.Handler) (*Parser, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	parser, err := NewParser(&config.Config{
		YandexBaseURL:          server.URL + "/",
		UpstreamTimeoutSeconds: 5,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	return parser, server
}

func TestFetchSourcesFilm(t *testing.T) {
	parser, _ := newTestParser(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("text"); got != "test_film" {
			t.Errorf("Expected query text 'test_film', got %q", got)
		}
		fmt.Fprint(w, filmPage)
	}))

	parsed, err := parser.FetchSources(context.Background(), "test_film")
	if err != nil {
		t.Fatalf("FetchSources failed: %v", err)
	}

	if len(parsed) != 1 {
		t.Fatalf("Expected 1 source, got %d", len(parsed))
	}
	source := parsed[0]
	if source.Name != "test_film" {
		t.Errorf("Expected name 'test_film', got %q", source.Name)
	}
	if source.Type != models.PictureTypeFilm {
		t.Errorf("Expected film type, got %q", source.Type)
	}
	if source.Season != 1 || source.Episode != 1 {
		t.Errorf("Expected season=episode=1, got s%de%d", source.Season, source.Episode)
	}
	if source.SourceURL != "https://player.example.com/film-123" {
		t.Errorf("Protocol-relative source not normalized: %q", source.SourceURL)
	}
}

func TestFetchSourcesSeries(t *testing.T) {
	// Two seasons: season 1 lists episodes 1, 2 then a trailer row, season 2
	// lists episode 1 then an extras row. Expect exactly 3 sources.
	episodeLabels := map[int][]string{
		1: {"1", "2", "Трейлер"},
		2: {"1", "extras"},
	}

	var requested []string
	parser, _ := newTestParser(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		if r.URL.Path == "/search" {
			fmt.Fprint(w, seriesSearchPage("Very Famous Series", 2))
			return
		}

		var season, episode int
		if _, err := fmt.Sscanf(r.URL.Path, "/запрос/сериал/very-famous-series/%d-сезон/%d-серия", &season, &episode); err != nil {
			t.Errorf("Unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, seriesEpisodePage(season, episode, episodeLabels[season]))
	}))

	parsed, err := parser.FetchSources(context.Background(), "very_famous_series")
	if err != nil {
		t.Fatalf("FetchSources failed: %v", err)
	}

	if len(parsed) != 3 {
		t.Fatalf("Expected 3 sources, got %d", len(parsed))
	}

	expected := []struct {
		season, episode int
	}{{1, 1}, {1, 2}, {2, 1}}

	for i, want := range expected {
		got := parsed[i]
		if got.Season != want.season || got.Episode != want.episode {
			t.Errorf("Source %d: expected s%de%d, got s%de%d", i, want.season, want.episode, got.Season, got.Episode)
		}
		if got.Name != "very-famous-series" {
			t.Errorf("Source %d: internal name not normalized, got %q", i, got.Name)
		}
		if got.Type != models.PictureTypeSeries {
			t.Errorf("Source %d: expected series type, got %q", i, got.Type)
		}
		wantURL := fmt.Sprintf("https://player.example.com/s%de%d", want.season, want.episode)
		if got.SourceURL != wantURL {
			t.Errorf("Source %d: expected source %q, got %q", i, wantURL, got.SourceURL)
		}
	}

	// Enumeration must stop at the first non-numeric label: the trailer and
	// extras rows must not trigger page fetches.
	for _, path := range requested {
		if strings.Contains(path, "3-серия") {
			t.Errorf("Fetched past the end of the episode list: %s", path)
		}
	}
}

func TestFetchSourcesNoResults(t *testing.T) {
	parser, _ := newTestParser(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, emptyPage)
	}))

	parsed, err := parser.FetchSources(context.Background(), "unknown_title")
	if err != nil {
		t.Fatalf("Expected empty result without error, got: %v", err)
	}
	if len(parsed) != 0 {
		t.Fatalf("Expected 0 sources, got %d", len(parsed))
	}
}

func TestFetchSourcesUpstreamError(t *testing.T) {
	parser, _ := newTestParser(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	}))

	_, err := parser.FetchSources(context.Background(), "test_film")
	if !errors.Is(err, sources.ErrUpstreamUnavailable) {
		t.Fatalf("Expected ErrUpstreamUnavailable, got: %v", err)
	}
}

func TestFetchSourcesSeriesTitleMissing(t *testing.T) {
	// Navigator marker present but no title element: broken upstream structure
	parser, _ := newTestParser(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="series-navigator__main"></div></body></html>`)
	}))

	_, err := parser.FetchSources(context.Background(), "broken_series")
	if !errors.Is(err, sources.ErrUpstreamUnavailable) {
		t.Fatalf("Expected ErrUpstreamUnavailable, got: %v", err)
	}
}
