// Package soundglide is the public embedding API for the audio analysis core:
// it analyzes songs into flight maps, persists them, and exposes the runtime
// pieces (sync tracker, frame feature extractor) a game loop needs.
package soundglide

import (
	"context"

	"github.com/soundglide/soundglide/internal/model"
	"github.com/soundglide/soundglide/internal/realtime"
	"github.com/soundglide/soundglide/internal/service"
	"github.com/soundglide/soundglide/internal/storage"
	"github.com/soundglide/soundglide/internal/tracking"
)

// Re-exported domain types so embedding code needs only this package.
type (
	SongMap          = model.SongMap
	BeatEvent        = model.BeatEvent
	OnsetEvent       = model.OnsetEvent
	Section          = model.Section
	PitchPoint       = model.PitchPoint
	EnergyPoint      = model.EnergyPoint
	PathPoint        = model.PathPoint
	Vec3             = model.Vec3
	Key              = model.Key
	RealtimeFeatures = model.RealtimeFeatures
	Track            = storage.Track
	PlayScore        = storage.PlayScore
	Tracker          = tracking.Tracker
	SnapshotSource   = realtime.SnapshotSource
	Extractor        = realtime.Extractor
)

// ProgressFunc receives analysis progress in [0,1].
type ProgressFunc func(fraction float64)

// Service is the high-level API for analyzing and managing tracks.
type Service interface {
	AnalyzeFile(ctx context.Context, audioPath string, force bool, onProgress ProgressFunc) (*Track, *SongMap, error)
	GetTrack(trackID string) (*Track, *SongMap, error)
	ListTracks() ([]Track, error)
	DeleteTrack(trackID string) error
	RecordScore(trackID string, score int) (rating string, err error)
	TopScores(trackID string, limit int) ([]PlayScore, error)
	Close() error
}

type glideService struct {
	inner *service.TrackService
}

// NewService builds a Service with the given options.
func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var svcOpts []service.Option
	if cfg.DBPath != "" {
		svcOpts = append(svcOpts, service.WithDBPath(cfg.DBPath))
	}
	if cfg.TempDir != "" {
		svcOpts = append(svcOpts, service.WithTempDir(cfg.TempDir))
	}
	if cfg.SampleRate > 0 {
		svcOpts = append(svcOpts, service.WithSampleRate(cfg.SampleRate))
	}

	inner, err := service.NewTrackService(svcOpts...)
	if err != nil {
		return nil, err
	}
	return &glideService{inner: inner}, nil
}

func (s *glideService) AnalyzeFile(ctx context.Context, audioPath string, force bool,
	onProgress ProgressFunc) (*Track, *SongMap, error) {
	var inner func(float64)
	if onProgress != nil {
		inner = func(f float64) { onProgress(f) }
	}
	return s.inner.AnalyzeFile(ctx, audioPath, force, inner)
}

func (s *glideService) GetTrack(trackID string) (*Track, *SongMap, error) {
	return s.inner.GetTrack(trackID)
}

func (s *glideService) ListTracks() ([]Track, error) {
	return s.inner.ListTracks()
}

func (s *glideService) DeleteTrack(trackID string) error {
	return s.inner.DeleteTrack(trackID)
}

func (s *glideService) RecordScore(trackID string, score int) (string, error) {
	return s.inner.RecordScore(trackID, score)
}

func (s *glideService) TopScores(trackID string, limit int) ([]PlayScore, error) {
	return s.inner.TopScores(trackID, limit)
}

func (s *glideService) Close() error {
	return s.inner.Close()
}

// NewTracker returns a sync tracker for one play-through.
func NewTracker() *Tracker {
	return tracking.NewTracker()
}

// Rating maps a 0-100 score to its in-game label.
func Rating(score int) string {
	return tracking.Rating(score)
}

// NewExtractor returns a per-frame feature extractor reading from source.
func NewExtractor(source SnapshotSource) *Extractor {
	return realtime.NewExtractor(source)
}
