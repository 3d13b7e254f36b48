package controllers

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/mewatch/internal/metrics"
	"github.com/amaumene/mewatch/internal/models"
)

// CleanupController prunes duplicate watch status rows. Every listing view
// creates a fresh unfinished row, so long-lived accounts accumulate duplicates
// for the same (user, picture, season, episode); this keeps the newest row of
// each aged group and drops the rest.
type CleanupController struct {
	db            *models.Database
	retentionDays int
	logger        *logrus.Logger
}

// NewCleanupController creates a new cleanup controller
func NewCleanupController(db *models.Database, retentionDays int, logger *logrus.Logger) *CleanupController {
	return &CleanupController{
		db:            db,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

type statusKey struct {
	userID    uint64
	pictureID uint64
	season    int
	episode   int
}

// PruneWatchStatuses deletes aged duplicate unfinished watch statuses
func (c *CleanupController) PruneWatchStatuses() error {
	cutoff := time.Now().AddDate(0, 0, -c.retentionDays)

	statuses, err := c.db.GetUnfinishedStatusesBefore(cutoff)
	if err != nil {
		return err
	}

	// Rows arrive ordered by id, so the last of each group is the newest
	groups := make(map[statusKey][]*models.WatchStatus)
	for _, status := range statuses {
		key := statusKey{status.UserID, status.PictureID, status.Season, status.Episode}
		groups[key] = append(groups[key], status)
	}

	deleted := 0
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		for _, status := range group[:len(group)-1] {
			if err := c.db.DeleteWatchStatus(status.ID); err != nil {
				c.logger.WithError(err).WithField("status_id", status.ID).Error("Failed to delete watch status")
				continue
			}
			deleted++
		}
	}

	if deleted > 0 {
		metrics.WatchStatusesPruned.Add(float64(deleted))
		c.logger.WithField("deleted", deleted).Info("Pruned duplicate watch statuses")
	}

	return nil
}
