package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/MrVISKman11/AppTiempo/internal/client"
	"github.com/MrVISKman11/AppTiempo/internal/favorites"
	"github.com/MrVISKman11/AppTiempo/internal/models"
	"github.com/MrVISKman11/AppTiempo/internal/orchestrator"
	"github.com/MrVISKman11/AppTiempo/internal/prefs"
)

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string { return &v }

type stubClient struct {
	obs    *models.StationObservation
	obsErr error
}

func (s *stubClient) CurrentObservation(ctx context.Context, stationID string) (*models.StationObservation, error) {
	return s.obs, s.obsErr
}

func (s *stubClient) FiveDayForecast(ctx context.Context, lat, lon float64, language string) (*models.ForecastResponse, error) {
	return &models.ForecastResponse{
		DayOfWeek: []string{"Mon", "Tue"},
		Narrative: []string{"Sunny", "Cloudy"},
	}, nil
}

func (s *stubClient) History(ctx context.Context, stationID string) ([]models.HistoryObservation, error) {
	return []models.HistoryObservation{
		{Epoch: 1718010000, Metric: &models.HistoryBundle{TempAvg: fptr(20)}},
	}, nil
}

func newTestRouter(t *testing.T, c client.WeatherClient) *mux.Router {
	t.Helper()
	dir := t.TempDir()
	prefsStore := prefs.NewStore(filepath.Join(dir, "preferences.yaml"))
	favStore := favorites.NewStore(filepath.Join(dir, "favorites.json"))
	orch := orchestrator.New(c, nil, time.UTC)
	h := NewHandler(orch, prefsStore, favStore, nil, 3, 32)

	r := mux.NewRouter()
	r.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	r.HandleFunc("/preferences", h.GetPreferences).Methods(http.MethodGet)
	r.HandleFunc("/preferences", h.PutPreferences).Methods(http.MethodPut)
	r.HandleFunc("/favorites", h.ListFavorites).Methods(http.MethodGet)
	r.HandleFunc("/favorites", h.AddFavorite).Methods(http.MethodPost)
	r.HandleFunc("/favorites", h.ReorderFavorites).Methods(http.MethodPut)
	r.HandleFunc("/favorites/{id}", h.GetFavoriteStatus).Methods(http.MethodGet)
	r.HandleFunc("/favorites/{id}", h.RemoveFavorite).Methods(http.MethodDelete)
	r.HandleFunc("/stations/{id}/weather", h.GetStationWeather).Methods(http.MethodGet)
	return r
}

func healthyStub() *stubClient {
	return &stubClient{
		obs: &models.StationObservation{
			StationID:    "IMADRID1",
			Latitude:     40.4,
			Longitude:    -3.7,
			Neighborhood: sptr("Centro"),
			Humidity:     fptr(55),
			Metric:       &models.MetricBundle{Temp: fptr(20)},
		},
	}
}

func doRequest(t *testing.T, r *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetStationWeather_OK(t *testing.T) {
	r := newTestRouter(t, healthyStub())
	rec := doRequest(t, r, http.MethodGet, "/stations/imadrid1/weather", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var report orchestrator.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Location != "Centro" {
		t.Errorf("location = %q, want Centro", report.Location)
	}
	if !strings.Contains(report.Conditions, "Temp:") {
		t.Errorf("conditions = %q, want formatted block", report.Conditions)
	}
	if len(report.Forecast) != 2 {
		t.Errorf("forecast days = %d, want 2", len(report.Forecast))
	}
}

func TestGetStationWeather_InvalidID(t *testing.T) {
	r := newTestRouter(t, healthyStub())
	rec := doRequest(t, r, http.MethodGet, "/stations/x/weather", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_STATION") {
		t.Errorf("body = %s, want INVALID_STATION code", rec.Body.String())
	}
}

func TestGetStationWeather_NotFound(t *testing.T) {
	r := newTestRouter(t, &stubClient{obsErr: client.ErrStationNotFound})
	rec := doRequest(t, r, http.MethodGet, "/stations/KNOWHERE9/weather", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var report orchestrator.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.NotFound {
		t.Error("NotFound = false, want true")
	}
	if report.Conditions != "Station not found" {
		t.Errorf("conditions = %q, want Station not found", report.Conditions)
	}
}

func TestPreferences_GetDefaults(t *testing.T) {
	r := newTestRouter(t, healthyStub())
	rec := doRequest(t, r, http.MethodGet, "/preferences", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var p prefs.UserPreferences
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode preferences: %v", err)
	}
	if p.TempUnit != "C" || p.Language != "es" {
		t.Errorf("defaults = %+v, want metric/es", p)
	}
}

func TestPreferences_PutRoundtrip(t *testing.T) {
	r := newTestRouter(t, healthyStub())
	body := `{"tempUnit":"F","speedUnit":"mph","precipUnit":"in","theme":"dark","language":"en"}`
	rec := doRequest(t, r, http.MethodPut, "/preferences", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, r, http.MethodGet, "/preferences", "")
	var p prefs.UserPreferences
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode preferences: %v", err)
	}
	if p.TempUnit != "F" || p.Theme != "dark" || p.Language != "en" {
		t.Errorf("preferences = %+v, want saved values", p)
	}
}

func TestPreferences_PutMalformedBody(t *testing.T) {
	r := newTestRouter(t, healthyStub())
	rec := doRequest(t, r, http.MethodPut, "/preferences", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestFavorites_CRUD(t *testing.T) {
	r := newTestRouter(t, healthyStub())

	rec := doRequest(t, r, http.MethodPost, "/favorites", `{"id":"imadrid1","name":"Madrid"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, r, http.MethodGet, "/favorites", "")
	var list []models.FavoriteStation
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode favorites: %v", err)
	}
	if len(list) != 1 || list[0].ID != "IMADRID1" || list[0].Name != "Madrid" {
		t.Fatalf("favorites = %v, want uppercased IMADRID1", list)
	}

	rec = doRequest(t, r, http.MethodGet, "/favorites/IMADRID1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"favorite":true`) {
		t.Errorf("status body = %d %s, want favorite true", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, r, http.MethodDelete, "/favorites/IMADRID1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	rec = doRequest(t, r, http.MethodGet, "/favorites/IMADRID1", "")
	if !strings.Contains(rec.Body.String(), `"favorite":false`) {
		t.Errorf("body = %s, want favorite false after delete", rec.Body.String())
	}
}

func TestFavorites_AddDuplicateKeepsListStable(t *testing.T) {
	r := newTestRouter(t, healthyStub())
	_ = doRequest(t, r, http.MethodPost, "/favorites", `{"id":"IMADRID1","name":"Madrid"}`)
	_ = doRequest(t, r, http.MethodPost, "/favorites", `{"id":"KAZPHOEN1","name":"Phoenix"}`)
	_ = doRequest(t, r, http.MethodPost, "/favorites", `{"id":"IMADRID1","name":"Madrid Centro"}`)

	rec := doRequest(t, r, http.MethodGet, "/favorites", "")
	var list []models.FavoriteStation
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode favorites: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("favorites length = %d, want 2", len(list))
	}
	if list[0].Name != "Madrid Centro" {
		t.Errorf("entry 0 name = %q, want refreshed in place", list[0].Name)
	}
}

func TestFavorites_Reorder(t *testing.T) {
	r := newTestRouter(t, healthyStub())
	_ = doRequest(t, r, http.MethodPost, "/favorites", `{"id":"IMADRID1","name":"Madrid"}`)
	_ = doRequest(t, r, http.MethodPost, "/favorites", `{"id":"KAZPHOEN1","name":"Phoenix"}`)

	body := `[{"id":"KAZPHOEN1","name":"Phoenix"},{"id":"IMADRID1","name":"Madrid"}]`
	rec := doRequest(t, r, http.MethodPut, "/favorites", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var list []models.FavoriteStation
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode favorites: %v", err)
	}
	if list[0].ID != "KAZPHOEN1" || list[1].ID != "IMADRID1" {
		t.Errorf("order = %v, want reordered", list)
	}
}

func TestFavorites_AddInvalidID(t *testing.T) {
	r := newTestRouter(t, healthyStub())
	rec := doRequest(t, r, http.MethodPost, "/favorites", `{"id":"a b","name":"Bad"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, healthyStub())
	rec := doRequest(t, r, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("body = %s, want healthy", rec.Body.String())
	}
}
