package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/mewatch/internal/api/middleware"
	"github.com/amaumene/mewatch/internal/controllers"
	"github.com/amaumene/mewatch/internal/models"
	"github.com/amaumene/mewatch/internal/services/sources"
)

// PicturesHandler handles search, listing and watch progress endpoints
type PicturesHandler struct {
	searchCtrl *controllers.SearchController
	watchCtrl  *controllers.WatchController
	logger     *logrus.Logger
}

// NewPicturesHandler creates a new pictures handler
func NewPicturesHandler(searchCtrl *controllers.SearchController, watchCtrl *controllers.WatchController, logger *logrus.Logger) *PicturesHandler {
	return &PicturesHandler{
		searchCtrl: searchCtrl,
		watchCtrl:  watchCtrl,
		logger:     logger,
	}
}

// LinkResponse represents one playable link
type LinkResponse struct {
	ID      uint64 `json:"id"`
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
	Picture string `json:"picture"`
	Source  string `json:"source"`
}

// WatchStatusResponse represents a watch progress row
type WatchStatusResponse struct {
	ID       uint64 `json:"id"`
	Season   int    `json:"season"`
	Episode  int    `json:"episode"`
	Finished bool   `json:"finished"`
}

// PictureResponse represents a picture with the user's watch statuses
type PictureResponse struct {
	ID       uint64                `json:"id"`
	Name     string                `json:"name"`
	Type     string                `json:"type"`
	Statuses []WatchStatusResponse `json:"statuses"`
}

// pathParam returns a decoded URL path parameter; chi hands back the raw
// segment, so escaped names like "Test%20film" arrive encoded
func pathParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(value); err == nil {
		return decoded
	}
	return value
}

// ListFilms lists links for a film by exact name and records a watch start
func (h *PicturesHandler) ListFilms(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")

	links, err := h.watchCtrl.FilmLinks(name)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list film links")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !h.recordWatchStart(w, r, links, 1, 1) {
		return
	}
	writeList(w, len(links), toLinkResponses(links))
}

// ListSeries lists links for a series filtered by season/episode and records a watch start
func (h *PicturesHandler) ListSeries(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	season, episode, ok := seasonEpisodeParams(w, r)
	if !ok {
		return
	}

	links, err := h.watchCtrl.SeriesLinks(name, season, episode)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list series links")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !h.recordWatchStart(w, r, links, season, episode) {
		return
	}
	writeList(w, len(links), toLinkResponses(links))
}

// recordWatchStart creates a watch status for the requesting user when the
// listing came back non-empty. Reports false if the response was written.
func (h *PicturesHandler) recordWatchStart(w http.ResponseWriter, r *http.Request, links []*models.Link, season, episode int) bool {
	if len(links) == 0 {
		return true
	}

	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return false
	}

	if _, err := h.watchCtrl.StartWatching(user.ID, links[0].PictureID, season, episode); err != nil {
		h.logger.WithError(err).Error("Failed to record watch start")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	return true
}

// Search resolves a title (stored links or a fresh scrape) and redirects to
// the matching listing endpoint
func (h *PicturesHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "pictureName")

	picture, err := h.searchCtrl.Search(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, controllers.ErrNoSources):
			writeError(w, http.StatusNotFound, "No sources found for title")
		case errors.Is(err, sources.ErrUpstreamUnavailable):
			h.logger.WithError(err).Warn("Upstream unavailable during search")
			writeError(w, http.StatusBadGateway, "Upstream source unavailable")
		default:
			h.logger.WithError(err).Error("Search failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	var target string
	if picture.Type == models.PictureTypeSeries {
		target = fmt.Sprintf("/series/%s/1/1/", url.PathEscape(picture.Name))
	} else {
		target = fmt.Sprintf("/films/%s/", url.PathEscape(picture.Name))
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// FinishEpisode marks the user's most recent matching watch status as finished
func (h *PicturesHandler) FinishEpisode(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	season, episode, ok := seasonEpisodeParams(w, r)
	if !ok {
		return
	}

	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	status, err := h.watchCtrl.FinishEpisode(user.ID, name, season, episode)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Film is not started yet")
			return
		}
		h.logger.WithError(err).Error("Failed to finish episode")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, WatchStatusResponse{
		ID:       status.ID,
		Season:   status.Season,
		Episode:  status.Episode,
		Finished: status.Finished,
	})
}

// ListWatched lists the user's watched pictures by exact name with their statuses
func (h *PicturesHandler) ListWatched(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")

	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	pictures, err := h.watchCtrl.WatchedPictures(user.ID, name)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list watched pictures")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	results := make([]PictureResponse, 0, len(pictures))
	for _, picture := range pictures {
		statuses := make([]WatchStatusResponse, 0, len(picture.Statuses))
		for _, status := range picture.Statuses {
			statuses = append(statuses, WatchStatusResponse{
				ID:       status.ID,
				Season:   status.Season,
				Episode:  status.Episode,
				Finished: status.Finished,
			})
		}
		results = append(results, PictureResponse{
			ID:       picture.ID,
			Name:     picture.Name,
			Type:     string(picture.Type),
			Statuses: statuses,
		})
	}

	writeList(w, len(results), results)
}

// seasonEpisodeParams parses the season/episode path parameters
func seasonEpisodeParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	season, err := strconv.Atoi(chi.URLParam(r, "season"))
	if err != nil || season < 1 {
		writeError(w, http.StatusBadRequest, "Season must be a positive integer")
		return 0, 0, false
	}
	episode, err := strconv.Atoi(chi.URLParam(r, "episode"))
	if err != nil || episode < 1 {
		writeError(w, http.StatusBadRequest, "Episode must be a positive integer")
		return 0, 0, false
	}
	return season, episode, true
}

func toLinkResponses(links []*models.Link) []LinkResponse {
	results := make([]LinkResponse, 0, len(links))
	for _, link := range links {
		results = append(results, LinkResponse{
			ID:      link.ID,
			Season:  link.Season,
			Episode: link.Episode,
			Picture: link.Picture.Name,
			Source:  link.Source,
		})
	}
	return results
}
