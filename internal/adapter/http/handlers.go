package http

import (
	"net/http"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/service"
)

// Cache-Control values read by the CDN in front of the site.
const (
	cacheShort   = "public, max-age=0, s-maxage=900"
	cacheFireBan = "public, max-age=0, s-maxage=21600"
	cacheToken   = "public, max-age=3600"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	sharedobs.WriteJSON(w, status, v)
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, errorResponse{Error: msg, Message: detail})
}

// setCORS opens the API routes to any origin.
func setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	setCORS(w)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	q := r.URL.Query()

	kind, ok := domain.ParseWeatherKind(q.Get("type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid request type", "")
		return
	}
	unit, ok := domain.ParseTempUnit(q.Get("unit"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid unit", "unit must be C or F")
		return
	}

	ctx := r.Context()
	var body any
	switch kind {
	case domain.WeatherForecast:
		body = s.deps.Weather.Forecast(ctx).InUnit(unit)
	case domain.WeatherHourly:
		body = s.deps.Weather.Hourly(ctx).InUnit(unit)
	default:
		body = s.deps.Weather.Current(ctx).InUnit(unit)
	}
	w.Header().Set("Cache-Control", cacheShort)
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleWaterLevels(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	params := r.URL.Query()

	station := params.Get("stationId")
	if strings.TrimSpace(station) == "" {
		station = s.deps.DefaultStation
	}
	q, err := domain.NewWaterLevelQuery(station, params.Get("lang"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	w.Header().Set("Cache-Control", cacheShort)
	body, err := s.deps.Water.Series(r.Context(), q, params.Get("noCache") == "1")
	if err != nil {
		s.logger.Error("water level fetch failed", "request_id", RequestID(r.Context()), "station", q.StationID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch water level data", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client went away
}

func (s *Server) handleFireBan(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	q := r.URL.Query()

	report := s.deps.FireBan.Report(r.Context(), service.FireBanRequest{
		Force: q.Get("force") == "1",
		Debug: q.Get("debug") == "1",
		Test:  q.Get("test"),
	})
	w.Header().Set("Cache-Control", cacheFireBan)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleMapboxToken(w http.ResponseWriter, _ *http.Request) {
	setCORS(w)
	if s.deps.MapboxToken == "" {
		writeError(w, http.StatusInternalServerError, "Mapbox token not configured", "")
		return
	}
	w.Header().Set("Cache-Control", cacheToken)
	writeJSON(w, http.StatusOK, tokenResponse{Token: s.deps.MapboxToken})
}

func (s *Server) handleRadar(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.deps.RadarURL, http.StatusTemporaryRedirect)
}
