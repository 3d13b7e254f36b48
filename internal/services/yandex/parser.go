package yandex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/mewatch/internal/config"
	"github.com/amaumene/mewatch/internal/models"
	"github.com/amaumene/mewatch/internal/services/sources"
)

const (
	seriesMarkerSelector = "div.series-navigator__main"
	seriesTitleSelector  = ".series-navigator__title-link"
	seasonSelector       = "label.carousel__item"
	episodeLabelSelector = "div.radio-table__list-row > label > span"
	seriesPathPattern    = "запрос/сериал/%s/%d-сезон/%d-серия"
	seriesNavQuery       = "source=series_nav"
)

// Parser scrapes yandex.video pages into playable source records
type Parser struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewParser creates a new yandex.video parser
func NewParser(cfg *config.Config, logger *logrus.Logger) (*Parser, error) {
	base, err := url.Parse(cfg.YandexBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid yandex base URL: %w", err)
	}

	return &Parser{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.UpstreamTimeoutSeconds) * time.Second,
		},
		logger: logger,
	}, nil
}

// Name identifies this upstream
func (p *Parser) Name() string {
	return "yandex"
}

// FetchSources searches yandex.video for the title and extracts one source per
// episode (series) or a single source (film)
func (p *Parser) FetchSources(ctx context.Context, title string) ([]sources.ParsedSource, error) {
	searchURL := p.baseURL.ResolveReference(&url.URL{
		Path:     "search",
		RawQuery: url.Values{"text": {title}}.Encode(),
	})

	p.logger.WithFields(logrus.Fields{
		"title": title,
		"url":   searchURL.String(),
	}).Debug("Searching upstream")

	doc, err := p.fetchDocument(ctx, searchURL.String())
	if err != nil {
		return nil, err
	}

	if doc.Find(seriesMarkerSelector).Length() > 0 {
		return p.parseSeries(ctx, doc)
	}
	return p.parseFilm(title, doc), nil
}

// parseFilm extracts the single embedded player frame from the search page.
// A page without a player frame means the title was not found upstream.
func (p *Parser) parseFilm(title string, doc *goquery.Document) []sources.ParsedSource {
	src, ok := doc.Find("iframe").First().Attr("src")
	if !ok {
		p.logger.WithField("title", title).Debug("No player frame on search page")
		return nil
	}

	return []sources.ParsedSource{{
		Name:      title,
		SourceURL: absoluteSource(src),
		Type:      models.PictureTypeFilm,
		Season:    1,
		Episode:   1,
	}}
}

// parseSeries walks every season of the series advertised on the search page
func (p *Parser) parseSeries(ctx context.Context, doc *goquery.Document) ([]sources.ParsedSource, error) {
	internalName := internalSeriesName(doc)
	if internalName == "" {
		return nil, fmt.Errorf("%w: series title element missing", sources.ErrUpstreamUnavailable)
	}

	seasonCount := doc.Find(seasonSelector).Length()
	p.logger.WithFields(logrus.Fields{
		"internal_name": internalName,
		"seasons":       seasonCount,
	}).Debug("Parsing series")

	var parsed []sources.ParsedSource
	for season := 1; season <= seasonCount; season++ {
		episodes, err := p.parseSeason(ctx, internalName, season)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, episodes...)
	}

	return parsed, nil
}

// parseSeason enumerates the episode table on the season's first-episode page
// and extracts a source per listed episode. The first non-numeric label ends
// the episode list.
func (p *Parser) parseSeason(ctx context.Context, internalName string, season int) ([]sources.ParsedSource, error) {
	doc, err := p.fetchDocument(ctx, p.seriesPageURL(internalName, season, 1))
	if err != nil {
		return nil, err
	}

	var parsed []sources.ParsedSource
	var fetchErr error
	doc.Find(episodeLabelSelector).EachWithBreak(func(_ int, label *goquery.Selection) bool {
		episode, err := strconv.Atoi(strings.TrimSpace(label.Text()))
		if err != nil {
			return false
		}

		source, err := p.parseEpisode(ctx, internalName, season, episode)
		if err != nil {
			fetchErr = err
			return false
		}
		parsed = append(parsed, source)
		return true
	})
	if fetchErr != nil {
		return nil, fetchErr
	}

	p.logger.WithFields(logrus.Fields{
		"internal_name": internalName,
		"season":        season,
		"episodes":      len(parsed),
	}).Debug("Season parsed")

	return parsed, nil
}

// parseEpisode fetches one season/episode page and extracts its player frame source
func (p *Parser) parseEpisode(ctx context.Context, internalName string, season, episode int) (sources.ParsedSource, error) {
	doc, err := p.fetchDocument(ctx, p.seriesPageURL(internalName, season, episode))
	if err != nil {
		return sources.ParsedSource{}, err
	}

	src, ok := doc.Find("iframe").First().Attr("src")
	if !ok {
		return sources.ParsedSource{}, fmt.Errorf("%w: player frame missing for %s s%02de%02d",
			sources.ErrUpstreamUnavailable, internalName, season, episode)
	}

	return sources.ParsedSource{
		Name:      internalName,
		SourceURL: absoluteSource(src),
		Type:      models.PictureTypeSeries,
		Season:    season,
		Episode:   episode,
	}, nil
}

// fetchDocument retrieves a page and parses it into a goquery document
func (p *Parser) fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "mewatch/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sources.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d for %s", sources.ErrUpstreamUnavailable, resp.StatusCode, rawURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sources.ErrUpstreamUnavailable, err)
	}
	return doc, nil
}

// seriesPageURL builds the upstream page URL for a season/episode pair
func (p *Parser) seriesPageURL(internalName string, season, episode int) string {
	ref := &url.URL{
		Path:     fmt.Sprintf(seriesPathPattern, internalName, season, episode),
		RawQuery: seriesNavQuery,
	}
	return p.baseURL.ResolveReference(ref).String()
}

// internalSeriesName resolves the upstream's canonical name for the series:
// title element text, trimmed, lower-cased, spaces replaced with hyphens
func internalSeriesName(doc *goquery.Document) string {
	text := strings.TrimSpace(doc.Find(seriesTitleSelector).First().Text())
	return strings.ToLower(strings.ReplaceAll(text, " ", "-"))
}

// absoluteSource normalizes a protocol-relative embed source to https
func absoluteSource(src string) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}
