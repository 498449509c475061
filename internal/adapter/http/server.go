package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/observability"
	"github.com/redstonelake/lakeside-api/internal/service"
)

// WeatherReader serves the three weather views in Celsius.
type WeatherReader interface {
	Current(ctx context.Context) domain.CurrentWeather
	Forecast(ctx context.Context) domain.Forecast
	Hourly(ctx context.Context) domain.HourlyForecast
}

// WaterLevelReader serves a station's hydrometric series.
type WaterLevelReader interface {
	Series(ctx context.Context, q domain.WaterLevelQuery, noCache bool) (json.RawMessage, error)
}

// FireBanReporter serves the fire-ban report. It never fails.
type FireBanReporter interface {
	Report(ctx context.Context, req service.FireBanRequest) domain.FireBanReport
}

// Deps are the services and settings behind the public routes.
type Deps struct {
	Weather     WeatherReader
	Water       WaterLevelReader
	FireBan     FireBanReporter
	Ready       sharedobs.ReadinessChecker
	// DefaultStation is used when /api/water-levels omits stationId.
	DefaultStation string
	MapboxToken    string
	RadarURL    string
	Metrics     *observability.Metrics
}

// Server exposes the public API routes plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api routes, /radar, /healthz,
// /readyz, and /metrics.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			// Long enough for a cold fire-ban request: feed plus classifier.
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	s.route(mux, "GET /api/weather", s.handleWeather)
	s.route(mux, "GET /api/water-levels", s.handleWaterLevels)
	s.route(mux, "GET /api/fire-ban", s.handleFireBan)
	s.route(mux, "GET /api/mapbox-token", s.handleMapboxToken)
	s.route(mux, "OPTIONS /api/", handlePreflight)
	s.route(mux, "GET /radar", s.handleRadar)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer.Handler = withRequestID(withAccessLog(withRecover(mux, logger), logger))
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// route registers h under pattern, counting requests and latency per pattern.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, withMetrics(pattern, s.deps.Metrics, h))
}
