package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"wunderground-service/logger"
	"wunderground-service/models"
	"wunderground-service/wunderground"
)

const locationPrefix = "/api/weather/location/"

// Server exposes collected snapshots over HTTP and fetches missing ones on demand
type Server struct {
	store           *SnapshotStore
	client          *wunderground.Client
	defaultFeatures []models.Resource
	server          *http.Server
	logger          logger.Logger
}

// NewServer creates a new API server
func NewServer(store *SnapshotStore, client *wunderground.Client, defaultFeatures []models.Resource, port int, log logger.Logger) *Server {
	mux := http.NewServeMux()

	server := &Server{
		store:           store,
		client:          client,
		defaultFeatures: defaultFeatures,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log.WithField("component", "api_server"),
	}

	mux.HandleFunc(locationPrefix, server.handleGetByLocation)
	mux.HandleFunc("/api/weather/locations", server.handleGetAllLocations)
	mux.HandleFunc("/api/health", server.handleHealthCheck)

	return server
}

// Handler returns the router, for embedding or tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins the API server
func (s *Server) Start() error {
	s.logger.Infof("Starting API server on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleGetByLocation serves /api/weather/location/{query}?features=a,b.
// The query may itself contain slashes ("CA/San_Francisco").
func (s *Server) handleGetByLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	location := strings.TrimPrefix(r.URL.Path, locationPrefix)
	if location == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Location not specified"})
		return
	}

	features := s.defaultFeatures
	if list := r.URL.Query().Get("features"); list != "" {
		parsed, err := models.ParseResources(list)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		features = parsed
	}

	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.String()
	}

	if snapshot, exists := s.store.Get(location, names); exists {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"location":  location,
			"snapshot":  snapshot,
			"timestamp": time.Now(),
		})
		return
	}

	doc, err := s.client.Select(features...).Do(r.Context(), location)
	if err != nil {
		s.logger.Warnf("On-demand fetch for %s failed: %v", location, err)
		writeJSON(w, statusFor(err), map[string]string{
			"error": fmt.Sprintf("Failed to fetch %s: %v", location, err),
		})
		return
	}

	snapshot := models.Snapshot{
		Location:  location,
		Resources: names,
		Document:  doc,
		Fetched:   time.Now(),
	}
	s.store.Update(snapshot)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"location":  location,
		"snapshot":  snapshot,
		"timestamp": time.Now(),
		"note":      "On-demand fetch",
	})
}

// handleGetAllLocations returns a list of all locations with data
func (s *Server) handleGetAllLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	locations := s.store.Locations()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"locations": locations,
		"count":     len(locations),
	})
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"simulated": s.client.Simulated(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func statusFor(err error) int {
	var usage *wunderground.UsageError
	if errors.As(err, &usage) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
