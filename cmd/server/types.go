package main

import (
	"fmt"
)

// TrackDTO represents an analyzed track in API responses
type TrackDTO struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	DurationMs   int     `json:"duration_ms"`
	BPM          float64 `json:"bpm"`
	KeyName      string  `json:"key_name"`
	KeyScale     string  `json:"key_scale"`
	Danceability float64 `json:"danceability"`
}

// ListTracksResponse is the response for GET /api/tracks
type ListTracksResponse struct {
	Tracks []TrackDTO `json:"tracks"`
	Count  int        `json:"count"`
}

// AnalyzeResponse is the response for a successful analysis upload
type AnalyzeResponse struct {
	Message string   `json:"message"`
	Track   TrackDTO `json:"track"`
}

// DeleteTrackResponse is the response for DELETE /api/tracks/{id}
type DeleteTrackResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// RecordScoreRequest is the request body for POST /api/tracks/{id}/scores
type RecordScoreRequest struct {
	Score int `json:"score"`
}

// Validate checks if the request is valid
func (r *RecordScoreRequest) Validate() error {
	if r.Score < 0 || r.Score > 100 {
		return fmt.Errorf("score must be between 0 and 100, got %d", r.Score)
	}
	return nil
}

// RecordScoreResponse is the response for a recorded score
type RecordScoreResponse struct {
	Message string `json:"message"`
	Score   int    `json:"score"`
	Rating  string `json:"rating"`
}

// ScoreDTO represents one recorded run
type ScoreDTO struct {
	Score     int    `json:"score"`
	Rating    string `json:"rating"`
	CreatedAt string `json:"created_at"`
}

// ListScoresResponse is the response for GET /api/tracks/{id}/scores
type ListScoresResponse struct {
	Scores []ScoreDTO `json:"scores"`
	Count  int        `json:"count"`
}

// MetricsResponse provides server health and database metrics
type MetricsResponse struct {
	Status       string `json:"status"`
	DatabasePath string `json:"database_path"`
	TrackCount   int    `json:"track_count"`
	SampleRate   int    `json:"sample_rate"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
