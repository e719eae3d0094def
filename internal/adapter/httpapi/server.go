// Package httpapi is the daemon's view layer: a pure rendering of the
// current sync state as JSON, plus the command endpoints (post, report,
// acknowledge, profile save) that feed the shared write path.
package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/an-gr-hh1/landslide-sync/internal/adapter/blob"
	"github.com/an-gr-hh1/landslide-sync/internal/alertgate"
	"github.com/an-gr-hh1/landslide-sync/internal/app"
	"github.com/an-gr-hh1/landslide-sync/internal/content"
	"github.com/an-gr-hh1/landslide-sync/internal/domain"
	"github.com/an-gr-hh1/landslide-sync/internal/location"
	"github.com/an-gr-hh1/landslide-sync/internal/session"
)

// WeatherSource renders the dashboard weather card. Failures come back as
// display strings, never errors.
type WeatherSource interface {
	DisplayTemp(ctx context.Context, lat, lon float64) string
}

// Server exposes the sync state and command endpoints.
type Server struct {
	httpServer *http.Server
	app        *app.App
	weather    WeatherSource
	locator    location.Locator
	hazards    []domain.HazardPoint
	blobs      *blob.DiskStore
	sess       session.Session
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewServer creates the HTTP server. weather and blobs may be nil when the
// corresponding feature is disabled.
func NewServer(addr string, a *app.App, weather WeatherSource, locator location.Locator, hazards []domain.HazardPoint, blobs *blob.DiskStore, sess session.Session, clock clockwork.Clock, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		app:     a,
		weather: weather,
		locator: locator,
		hazards: hazards,
		blobs:   blobs,
		sess:    sess,
		clock:   clock,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /v1/telemetry", s.handleTelemetry)
	mux.HandleFunc("GET /v1/hazards", s.handleHazards)
	mux.HandleFunc("GET /v1/preparedness", s.handlePreparedness)
	mux.HandleFunc("GET /v1/alert", s.handleAlert)
	mux.HandleFunc("POST /v1/alert/ack", s.handleAlertAck)
	mux.HandleFunc("GET /v1/forum", s.handleForumList)
	mux.HandleFunc("POST /v1/forum", s.handleForumPost)
	mux.HandleFunc("GET /v1/incidents", s.handleIncidentList)
	mux.HandleFunc("POST /v1/incidents", s.handleIncidentPost)
	mux.HandleFunc("GET /v1/profile", s.handleProfileGet)
	mux.HandleFunc("PUT /v1/profile", s.handleProfilePut)

	if blobs != nil {
		mux.Handle("GET /blobs/", http.StripPrefix("/blobs/", http.FileServer(http.Dir(blobs.Dir()))))
	}

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.app.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap := s.app.Telemetry.Latest()
	gate := s.app.Gate.State()

	name := "Guest"
	if !s.sess.Anonymous {
		if p, err := s.app.Profiles.Load(r.Context(), s.sess.UID); err == nil && p.Name != "" {
			name = p.Name
		}
	}

	weather := "N/A"
	if s.weather != nil {
		if pos, ok := s.locator.LastKnown(r.Context()); ok {
			weather = s.weather.DisplayTemp(r.Context(), pos.Lat, pos.Lon)
		} else {
			weather = "Location unavailable"
		}
	}

	alertText := "No alerts"
	if gate.Active && gate.Message != "" {
		alertText = gate.Message
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":         name,
		"rainfall":     domain.FormatMetric(snap.Rainfall),
		"soilMoisture": domain.FormatMetric(snap.SoilMoisture),
		"weather":      weather,
		"alertActive":  gate.Active,
		"alert":        alertText,
	})
}

func (s *Server) handleTelemetry(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Telemetry.Latest())
}

func (s *Server) handleHazards(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.hazards)
}

func (s *Server) handlePreparedness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.StaticPreparednessGuide())
}

func (s *Server) handleAlert(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Gate.State())
}

func (s *Server) handleAlertAck(w http.ResponseWriter, _ *http.Request) {
	err := s.app.Gate.Acknowledge()
	switch {
	case errors.Is(err, alertgate.ErrLocked):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, alertgate.ErrNotPending):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, s.app.Gate.State())
	}
}

func (s *Server) handleForumList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Forum.List())
}

type forumRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleForumPost(w http.ResponseWriter, r *http.Request) {
	var req forumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	profileName := ""
	if p, err := s.app.Profiles.Load(r.Context(), s.sess.UID); err == nil {
		profileName = p.Name
	}

	post, err := content.SubmitForumPost(r.Context(), s.app.Forum, s.sess, profileName, req.Content)
	switch {
	case errors.Is(err, content.ErrEmptyBody):
		writeError(w, http.StatusBadRequest, err)
	case err != nil:
		writeError(w, http.StatusBadGateway, err)
	default:
		writeJSON(w, http.StatusCreated, post)
	}
}

type incidentRequest struct {
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	ImageBase64 string   `json:"imageBase64,omitempty"`
}

func (s *Server) handleIncidentPost(w http.ResponseWriter, r *http.Request) {
	var req incidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	var lat, lon float64
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		lat, lon = *req.Latitude, *req.Longitude
	default:
		pos, ok := s.locator.LastKnown(r.Context())
		if !ok {
			writeError(w, http.StatusBadRequest, errors.New("no coordinates given and device location unavailable"))
			return
		}
		lat, lon = pos.Lat, pos.Lon
	}

	imageURL := ""
	if req.ImageBase64 != "" {
		url, err := s.storeIncidentImage(r.Context(), req.ImageBase64)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		imageURL = url
	}

	report, err := content.SubmitIncident(r.Context(), s.app.Incidents, s.sess, req.Description, lat, lon, imageURL)
	switch {
	case errors.Is(err, content.ErrEmptyBody):
		writeError(w, http.StatusBadRequest, err)
	case err != nil:
		writeError(w, http.StatusBadGateway, err)
	default:
		writeJSON(w, http.StatusCreated, report)
	}
}

func (s *Server) storeIncidentImage(ctx context.Context, encoded string) (string, error) {
	if s.blobs == nil {
		return "", errors.New("photo upload is not enabled")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	path := fmt.Sprintf("incident_images/%d.jpg", s.clock.Now().UnixNano())
	if err := s.blobs.Upload(ctx, path, data); err != nil {
		return "", err
	}
	return s.blobs.DownloadURL(ctx, path)
}

func (s *Server) handleIncidentList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Incidents.List())
}

func (s *Server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.app.Profiles.Load(r.Context(), s.sess.UID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProfilePut(w http.ResponseWriter, r *http.Request) {
	var p domain.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	// A profile is mutated only by its owning user.
	p.UID = s.sess.UID

	if err := s.app.Profiles.Save(r.Context(), p); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
