package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soundglide/soundglide/pkg/logger"
	"github.com/soundglide/soundglide/pkg/soundglide"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service soundglide.Service
	config  *ServerConfig
	log     *logger.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	SampleRate     int
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(service soundglide.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warnf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

func trackDTO(t *soundglide.Track) TrackDTO {
	return TrackDTO{
		ID:           t.ID,
		Title:        t.Title,
		DurationMs:   t.DurationMs,
		BPM:          t.BPM,
		KeyName:      t.KeyName,
		KeyScale:     t.KeyScale,
		Danceability: t.Danceability,
	}
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "SoundGlide API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":       "GET /health",
			"metrics":      "GET /api/health/metrics",
			"tracks":       "GET /api/tracks",
			"analyzeTrack": "POST /api/tracks",
			"getTrack":     "GET /api/tracks/{id}",
			"deleteTrack":  "DELETE /api/tracks/{id}",
			"getMap":       "GET /api/tracks/{id}/map",
			"getPath":      "GET /api/tracks/{id}/path",
			"listScores":   "GET /api/tracks/{id}/scores",
			"recordScore":  "POST /api/tracks/{id}/scores",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.service.ListTracks()
	if err != nil {
		s.log.Warnf("Failed to get track count: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:       "healthy",
		DatabasePath: s.config.DBPath,
		TrackCount:   len(tracks),
		SampleRate:   s.config.SampleRate,
	})
}

// handleListTracks handles GET /api/tracks
func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.service.ListTracks()
	if err != nil {
		s.log.Warnf("Failed to list tracks: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve tracks")
		return
	}

	dtos := make([]TrackDTO, len(tracks))
	for i := range tracks {
		dtos[i] = trackDTO(&tracks[i])
	}

	s.respondJSON(w, http.StatusOK, ListTracksResponse{
		Tracks: dtos,
		Count:  len(dtos),
	})
}

// handleAnalyzeTrack handles POST /api/tracks (multipart file upload)
func (s *Server) handleAnalyzeTrack(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	// Parse multipart form (max 100MB)
	if err := r.ParseMultipartForm(100 << 20); err != nil {
		s.log.Warnf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	force := r.FormValue("force") == "true"

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.log.Warnf("Failed to get audio file: %v", err)
		s.respondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	// Save to temporary file
	tempFile := filepath.Join(s.config.TempDir, fmt.Sprintf("upload_%d_%s", time.Now().UnixNano(), header.Filename))
	out, err := os.Create(tempFile)
	if err != nil {
		s.log.Warnf("Failed to create temp file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}
	defer out.Close()
	defer os.Remove(tempFile)

	if _, err := io.Copy(out, file); err != nil {
		s.log.Warnf("Failed to save file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to save uploaded file")
		return
	}
	out.Close()

	s.log.Infof("Analyzing uploaded file: %s", header.Filename)
	track, _, err := s.service.AnalyzeFile(ctx, tempFile, force, nil)
	if err != nil {
		s.log.Warnf("Failed to analyze: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to analyze: %v", err))
		return
	}

	s.log.Infof("Successfully analyzed %s (ID: %s)", track.Title, track.ID)
	s.respondJSON(w, http.StatusCreated, AnalyzeResponse{
		Message: "Track analyzed successfully",
		Track:   trackDTO(track),
	})
}

// handleGetTrack handles GET /api/tracks/{id}
func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request, trackID string) {
	track, _, err := s.service.GetTrack(trackID)
	if err != nil {
		s.log.Warnf("Track not found: %s", trackID)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Track %s not found", trackID))
		return
	}

	s.respondJSON(w, http.StatusOK, trackDTO(track))
}

// handleGetMap handles GET /api/tracks/{id}/map
func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request, trackID string) {
	_, songMap, err := s.service.GetTrack(trackID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Track %s not found", trackID))
		return
	}

	s.respondJSON(w, http.StatusOK, songMap)
}

// handleGetPath handles GET /api/tracks/{id}/path
func (s *Server) handleGetPath(w http.ResponseWriter, r *http.Request, trackID string) {
	_, songMap, err := s.service.GetTrack(trackID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Track %s not found", trackID))
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"track_id": trackID,
		"points":   songMap.IdealPath,
		"count":    len(songMap.IdealPath),
	})
}

// handleDeleteTrack handles DELETE /api/tracks/{id}
func (s *Server) handleDeleteTrack(w http.ResponseWriter, r *http.Request, trackID string) {
	track, _, err := s.service.GetTrack(trackID)
	if err != nil {
		s.log.Warnf("Track not found for deletion: %s", trackID)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Track %s not found", trackID))
		return
	}

	if err := s.service.DeleteTrack(trackID); err != nil {
		s.log.Warnf("Failed to delete track %s: %v", trackID, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to delete track")
		return
	}

	s.log.Infof("Deleted track: %s (ID: %s)", track.Title, trackID)
	s.respondJSON(w, http.StatusOK, DeleteTrackResponse{
		Message: "Track deleted successfully",
		ID:      trackID,
	})
}

// handleListScores handles GET /api/tracks/{id}/scores
func (s *Server) handleListScores(w http.ResponseWriter, r *http.Request, trackID string) {
	scores, err := s.service.TopScores(trackID, 20)
	if err != nil {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Track %s not found", trackID))
		return
	}

	dtos := make([]ScoreDTO, len(scores))
	for i, sc := range scores {
		dtos[i] = ScoreDTO{
			Score:     sc.Score,
			Rating:    sc.Rating,
			CreatedAt: sc.CreatedAt.Format(time.RFC3339),
		}
	}

	s.respondJSON(w, http.StatusOK, ListScoresResponse{
		Scores: dtos,
		Count:  len(dtos),
	})
}

// handleRecordScore handles POST /api/tracks/{id}/scores
func (s *Server) handleRecordScore(w http.ResponseWriter, r *http.Request, trackID string) {
	var req RecordScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warnf("Failed to decode request: %v", err)
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rating, err := s.service.RecordScore(trackID, req.Score)
	if err != nil {
		s.log.Warnf("Failed to record score for %s: %v", trackID, err)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Track %s not found", trackID))
		return
	}

	s.respondJSON(w, http.StatusCreated, RecordScoreResponse{
		Message: "Score recorded",
		Score:   req.Score,
		Rating:  rating,
	})
}

// handleTracks routes requests to /api/tracks
func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTracks(w, r)
	case http.MethodPost:
		s.handleAnalyzeTrack(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleTrack routes requests to /api/tracks/{id} and its subresources
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/tracks/")
	if rest == "" {
		s.respondError(w, http.StatusBadRequest, "Track ID required")
		return
	}

	parts := strings.SplitN(rest, "/", 2)
	trackID := parts[0]
	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			s.handleGetTrack(w, r, trackID)
		case http.MethodDelete:
			s.handleDeleteTrack(w, r, trackID)
		default:
			s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	case "map":
		if r.Method != http.MethodGet {
			s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		s.handleGetMap(w, r, trackID)
	case "path":
		if r.Method != http.MethodGet {
			s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		s.handleGetPath(w, r, trackID)
	case "scores":
		switch r.Method {
		case http.MethodGet:
			s.handleListScores(w, r, trackID)
		case http.MethodPost:
			s.handleRecordScore(w, r, trackID)
		default:
			s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	default:
		s.respondError(w, http.StatusNotFound, "Unknown resource")
	}
}
