package controllers

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/mewatch/internal/metrics"
	"github.com/amaumene/mewatch/internal/models"
	"github.com/amaumene/mewatch/internal/services/sources"
)

// ErrNoSources indicates no parser produced any source for the title
var ErrNoSources = errors.New("no sources found for title")

// SearchController serves title searches, preferring stored links over scraping
type SearchController struct {
	db      *models.Database
	parsers []sources.Parser
	logger  *logrus.Logger
}

// NewSearchController creates a new search controller
func NewSearchController(db *models.Database, parsers []sources.Parser, logger *logrus.Logger) *SearchController {
	return &SearchController{
		db:      db,
		parsers: parsers,
		logger:  logger,
	}
}

// Search resolves a title to its picture. If links for the title are already
// stored the upstream is never contacted; otherwise every configured parser is
// invoked, the results concatenated and persisted.
func (c *SearchController) Search(ctx context.Context, title string) (*models.Picture, error) {
	links, err := c.db.GetLinksByPictureName(title)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}

	if len(links) > 0 {
		metrics.SearchCacheHits.Inc()
		c.logger.WithFields(logrus.Fields{
			"title": title,
			"links": len(links),
		}).Debug("Search served from stored links")
		return c.db.GetPictureByID(links[0].PictureID)
	}

	metrics.SearchCacheMisses.Inc()
	parsed, err := c.scrape(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSources, title)
	}

	picture, err := c.db.GetOrCreatePicture(parsed[0].Name, parsed[0].Type)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create picture: %w", err)
	}

	newLinks := make([]*models.Link, 0, len(parsed))
	for _, source := range parsed {
		newLinks = append(newLinks, &models.Link{
			Source:    source.SourceURL,
			Season:    source.Season,
			Episode:   source.Episode,
			PictureID: picture.ID,
		})
	}
	if err := c.db.CreateLinks(newLinks); err != nil {
		return nil, fmt.Errorf("failed to save links: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"title":   title,
		"picture": picture.Name,
		"type":    picture.Type,
		"links":   len(newLinks),
	}).Info("Scraped and stored new sources")

	return picture, nil
}

// scrape invokes all configured parsers and concatenates their results
func (c *SearchController) scrape(ctx context.Context, title string) ([]sources.ParsedSource, error) {
	var all []sources.ParsedSource
	for _, parser := range c.parsers {
		metrics.ScrapeRequests.WithLabelValues(parser.Name()).Inc()

		parsed, err := parser.FetchSources(ctx, title)
		if err != nil {
			return nil, fmt.Errorf("parser %s: %w", parser.Name(), err)
		}
		all = append(all, parsed...)
	}
	return all, nil
}
