package controllers

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/mewatch/internal/models"
	"github.com/amaumene/mewatch/internal/services/sources"
)

func newTestDatabase(t *testing.T) *models.Database {
	t.Helper()

	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeParser returns canned sources and counts invocations
type fakeParser struct {
	results []sources.ParsedSource
	err     error
	calls   int
}

func (p *fakeParser) Name() string { return "fake" }

func (p *fakeParser) FetchSources(ctx context.Context, title string) ([]sources.ParsedSource, error) {
	p.calls++
	return p.results, p.err
}

func TestSearchStoredLinksSkipScraping(t *testing.T) {
	db := newTestDatabase(t)
	parser := &fakeParser{err: errors.New("must not be called")}
	ctrl := NewSearchController(db, []sources.Parser{parser}, newTestLogger())

	picture, err := db.GetOrCreatePicture("cached-film", models.PictureTypeFilm)
	if err != nil {
		t.Fatalf("GetOrCreatePicture failed: %v", err)
	}
	if err := db.CreateLinks([]*models.Link{{Source: "http://mock.url", Season: 1, Episode: 1, PictureID: picture.ID}}); err != nil {
		t.Fatalf("CreateLinks failed: %v", err)
	}

	found, err := ctrl.Search(context.Background(), "cached-film")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if found.ID != picture.ID {
		t.Errorf("Expected picture %d, got %d", picture.ID, found.ID)
	}
	if parser.calls != 0 {
		t.Errorf("Expected no scraping for stored links, parser was called %d times", parser.calls)
	}
}

func TestSearchScrapesAndPersists(t *testing.T) {
	db := newTestDatabase(t)
	parser := &fakeParser{results: []sources.ParsedSource{
		{Name: "famous-series", SourceURL: "http://mock.url/s1e1", Type: models.PictureTypeSeries, Season: 1, Episode: 1},
		{Name: "famous-series", SourceURL: "http://mock.url/s1e2", Type: models.PictureTypeSeries, Season: 1, Episode: 2},
	}}
	ctrl := NewSearchController(db, []sources.Parser{parser}, newTestLogger())

	picture, err := ctrl.Search(context.Background(), "Famous Series")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if picture.Name != "famous-series" {
		t.Errorf("Expected picture named after the parsed source, got %q", picture.Name)
	}
	if picture.Type != models.PictureTypeSeries {
		t.Errorf("Expected series type, got %q", picture.Type)
	}

	links, err := db.GetLinksByPictureName("famous-series")
	if err != nil {
		t.Fatalf("GetLinksByPictureName failed: %v", err)
	}
	if len(links) != 2 {
		t.Errorf("Expected 2 stored links, got %d", len(links))
	}
}

func TestSearchNoSources(t *testing.T) {
	db := newTestDatabase(t)
	parser := &fakeParser{}
	ctrl := NewSearchController(db, []sources.Parser{parser}, newTestLogger())

	_, err := ctrl.Search(context.Background(), "unknown title")
	if !errors.Is(err, ErrNoSources) {
		t.Fatalf("Expected ErrNoSources, got: %v", err)
	}
	if parser.calls != 1 {
		t.Errorf("Expected exactly one scrape attempt, got %d", parser.calls)
	}

	count, err := db.CountPictures()
	if err != nil {
		t.Fatalf("CountPictures failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no picture to be created, got %d", count)
	}
}

func TestSearchUpstreamError(t *testing.T) {
	db := newTestDatabase(t)
	parser := &fakeParser{err: sources.ErrUpstreamUnavailable}
	ctrl := NewSearchController(db, []sources.Parser{parser}, newTestLogger())

	_, err := ctrl.Search(context.Background(), "some title")
	if !errors.Is(err, sources.ErrUpstreamUnavailable) {
		t.Fatalf("Expected upstream error to propagate, got: %v", err)
	}
}

func TestSearchConcatenatesParsers(t *testing.T) {
	db := newTestDatabase(t)
	empty := &fakeParser{}
	filled := &fakeParser{results: []sources.ParsedSource{
		{Name: "Some Film", SourceURL: "http://mock.url/film", Type: models.PictureTypeFilm, Season: 1, Episode: 1},
	}}
	ctrl := NewSearchController(db, []sources.Parser{empty, filled}, newTestLogger())

	picture, err := ctrl.Search(context.Background(), "Some Film")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if picture.Name != "Some Film" || picture.Type != models.PictureTypeFilm {
		t.Errorf("Unexpected picture: %+v", picture)
	}
	if empty.calls != 1 || filled.calls != 1 {
		t.Errorf("Expected every parser to be invoked, got %d and %d calls", empty.calls, filled.calls)
	}
}
