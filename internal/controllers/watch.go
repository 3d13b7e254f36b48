package controllers

import (
	"github.com/sirupsen/logrus"

	"github.com/amaumene/mewatch/internal/models"
)

// WatchController handles listing queries and per-user watch progress.
// Listing queries are pure; recording a watch start is a separate, explicit
// operation invoked by the handler after a non-empty listing.
type WatchController struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewWatchController creates a new watch controller
func NewWatchController(db *models.Database, logger *logrus.Logger) *WatchController {
	return &WatchController{
		db:     db,
		logger: logger,
	}
}

// FilmLinks lists all links for a film picture with the given name
func (c *WatchController) FilmLinks(name string) ([]*models.Link, error) {
	return c.db.GetFilmLinks(name)
}

// SeriesLinks lists links for a series picture filtered by season and episode
func (c *WatchController) SeriesLinks(name string, season, episode int) ([]*models.Link, error) {
	return c.db.GetSeriesLinks(name, season, episode)
}

// StartWatching records that the user started watching an episode/film.
// A fresh row is created on every call; repeats are kept as resume history.
func (c *WatchController) StartWatching(userID, pictureID uint64, season, episode int) (*models.WatchStatus, error) {
	status := &models.WatchStatus{
		PictureID: pictureID,
		UserID:    userID,
		Season:    season,
		Episode:   episode,
	}
	if err := c.db.CreateWatchStatus(status); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"picture_id": pictureID,
		"season":     season,
		"episode":    episode,
	}).Debug("Watch status created")

	return status, nil
}

// FinishEpisode marks the user's most recent matching watch status as
// finished. Returns models.ErrNotFound when the episode was never started.
func (c *WatchController) FinishEpisode(userID uint64, name string, season, episode int) (*models.WatchStatus, error) {
	status, err := c.db.GetLastWatchStatus(userID, name, season, episode)
	if err != nil {
		return nil, err
	}

	if err := c.db.FinishWatchStatus(status); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"picture": name,
		"season":  season,
		"episode": episode,
	}).Info("Episode finished")

	return status, nil
}

// WatchedPictures lists pictures the user has watch statuses for, by exact name
func (c *WatchController) WatchedPictures(userID uint64, name string) ([]*models.Picture, error) {
	return c.db.GetPicturesWatchedBy(userID, name)
}
