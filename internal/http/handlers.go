package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/MrVISKman11/AppTiempo/internal/favorites"
	"github.com/MrVISKman11/AppTiempo/internal/models"
	"github.com/MrVISKman11/AppTiempo/internal/orchestrator"
	"github.com/MrVISKman11/AppTiempo/internal/prefs"
	"github.com/MrVISKman11/AppTiempo/internal/validation"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	orch         *orchestrator.Orchestrator
	prefsStore   *prefs.Store
	favStore     *favorites.Store
	logger       *zap.Logger
	stationIDMin int
	stationIDMax int
}

// NewHandler returns a new Handler.
func NewHandler(
	orch *orchestrator.Orchestrator,
	prefsStore *prefs.Store,
	favStore *favorites.Store,
	logger *zap.Logger,
	stationIDMin, stationIDMax int,
) *Handler {
	return &Handler{
		orch:         orch,
		prefsStore:   prefsStore,
		favStore:     favStore,
		logger:       logger,
		stationIDMin: stationIDMin,
		stationIDMax: stationIDMax,
	}
}

// GetStationWeather handles GET /stations/{id}/weather. It re-reads the
// preference snapshot, runs the full fetch pipeline and returns the
// assembled report. A station with no observation yields 404 with the
// not-found report body; degraded forecast/history stages still return
// 200 with their sections emptied and the error strings listed.
func (h *Handler) GetStationWeather(w http.ResponseWriter, r *http.Request) {
	stationID, err := validation.ValidateStationID(mux.Vars(r)["id"], h.stationIDMin, h.stationIDMax)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_STATION", err.Error())
		return
	}

	p, err := h.prefsStore.Load()
	if err != nil {
		h.logError(r, "load preferences", err)
		writeError(w, r, http.StatusInternalServerError, "PREFERENCES_UNAVAILABLE", "could not load preferences")
		return
	}

	report := h.orch.FetchReport(r.Context(), stationID, p)
	status := http.StatusOK
	if report.NotFound {
		status = http.StatusNotFound
	}
	writeJSON(w, status, report)
}

// GetPreferences handles GET /preferences.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := h.prefsStore.Load()
	if err != nil {
		h.logError(r, "load preferences", err)
		writeError(w, r, http.StatusInternalServerError, "PREFERENCES_UNAVAILABLE", "could not load preferences")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PutPreferences handles PUT /preferences, replacing the stored snapshot.
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var p prefs.UserPreferences
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed preferences payload")
		return
	}
	if err := h.prefsStore.Save(p); err != nil {
		h.logError(r, "save preferences", err)
		writeError(w, r, http.StatusInternalServerError, "PREFERENCES_UNAVAILABLE", "could not save preferences")
		return
	}
	saved, err := h.prefsStore.Load()
	if err != nil {
		h.logError(r, "load preferences", err)
		writeError(w, r, http.StatusInternalServerError, "PREFERENCES_UNAVAILABLE", "could not load preferences")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// ListFavorites handles GET /favorites.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	list, err := h.favStore.List()
	if err != nil {
		h.logError(r, "list favorites", err)
		writeError(w, r, http.StatusInternalServerError, "FAVORITES_UNAVAILABLE", "could not load favorites")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// AddFavorite handles POST /favorites. Re-adding an existing id updates
// its name without changing list length or order.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var fav models.FavoriteStation
	if err := json.NewDecoder(r.Body).Decode(&fav); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed favorite payload")
		return
	}
	id, err := validation.ValidateStationID(fav.ID, h.stationIDMin, h.stationIDMax)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_STATION", err.Error())
		return
	}
	fav.ID = id
	if fav.Name == "" {
		fav.Name = id
	}
	if err := h.favStore.Add(fav); err != nil {
		h.logError(r, "add favorite", err)
		writeError(w, r, http.StatusInternalServerError, "FAVORITES_UNAVAILABLE", "could not save favorite")
		return
	}
	writeJSON(w, http.StatusCreated, fav)
}

// RemoveFavorite handles DELETE /favorites/{id}. Unknown ids are a no-op.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := validation.ValidateStationID(mux.Vars(r)["id"], h.stationIDMin, h.stationIDMax)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_STATION", err.Error())
		return
	}
	if err := h.favStore.Remove(id); err != nil {
		h.logError(r, "remove favorite", err)
		writeError(w, r, http.StatusInternalServerError, "FAVORITES_UNAVAILABLE", "could not remove favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderFavorites handles PUT /favorites, replacing the whole list to
// persist a drag-reorder.
func (h *Handler) ReorderFavorites(w http.ResponseWriter, r *http.Request) {
	var list []models.FavoriteStation
	if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed favorites payload")
		return
	}
	for i, fav := range list {
		id, err := validation.ValidateStationID(fav.ID, h.stationIDMin, h.stationIDMax)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_STATION", err.Error())
			return
		}
		list[i].ID = id
	}
	if err := h.favStore.UpdateAll(list); err != nil {
		h.logError(r, "reorder favorites", err)
		writeError(w, r, http.StatusInternalServerError, "FAVORITES_UNAVAILABLE", "could not save favorites")
		return
	}
	saved, err := h.favStore.List()
	if err != nil {
		h.logError(r, "list favorites", err)
		writeError(w, r, http.StatusInternalServerError, "FAVORITES_UNAVAILABLE", "could not load favorites")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// GetFavoriteStatus handles GET /favorites/{id}.
func (h *Handler) GetFavoriteStatus(w http.ResponseWriter, r *http.Request) {
	id, err := validation.ValidateStationID(mux.Vars(r)["id"], h.stationIDMin, h.stationIDMax)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_STATION", err.Error())
		return
	}
	saved, err := h.favStore.IsFavorite(id)
	if err != nil {
		h.logError(r, "favorite status", err)
		writeError(w, r, http.StatusInternalServerError, "FAVORITES_UNAVAILABLE", "could not load favorites")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "favorite": saved})
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "apptiempo",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	logger := h.logger
	if l := loggerFromContext(r.Context()); l != nil {
		logger = l
	}
	if logger != nil {
		logger.Error(msg, zap.Error(err))
	}
}

func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		if s, ok := v.(string); ok {
			corrID = s
		}
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}
