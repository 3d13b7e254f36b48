package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/mewatch/internal/models"
)

// StatusHandler reports stored entity counts
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	Pictures      int64 `json:"pictures"`
	Links         int64 `json:"links"`
	WatchStatuses int64 `json:"watch_statuses"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pictures, err := h.db.CountPictures()
	if err != nil {
		h.logger.WithError(err).Error("Failed to count pictures")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	links, err := h.db.CountLinks()
	if err != nil {
		h.logger.WithError(err).Error("Failed to count links")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	statuses, err := h.db.CountWatchStatuses()
	if err != nil {
		h.logger.WithError(err).Error("Failed to count watch statuses")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Pictures:      pictures,
		Links:         links,
		WatchStatuses: statuses,
	})
}
