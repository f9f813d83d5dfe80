package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/soundglide/soundglide/internal/analysis"
	"github.com/soundglide/soundglide/internal/audio"
	"github.com/soundglide/soundglide/internal/model"
	"github.com/soundglide/soundglide/internal/pathgen"
	"github.com/soundglide/soundglide/internal/storage"
	"github.com/soundglide/soundglide/internal/tracking"
	"github.com/soundglide/soundglide/pkg/logger"
)

// TrackService ties analysis, path generation and storage together. It is the
// backend for both the CLI and the HTTP server.
type TrackService struct {
	db         *storage.DBClient
	log        *logger.Logger
	analyzer   *analysis.Analyzer
	dbPath     string
	tempDir    string
	sampleRate int
}

type Option func(*TrackService)

// WithDBPath opens the track database at path instead of the default.
func WithDBPath(path string) Option {
	return func(s *TrackService) { s.dbPath = path }
}

// WithTempDir sets where transcoded intermediates are written.
func WithTempDir(dir string) Option {
	return func(s *TrackService) { s.tempDir = dir }
}

// WithSampleRate sets the analysis sample rate used when transcoding.
func WithSampleRate(rate int) Option {
	return func(s *TrackService) { s.sampleRate = rate }
}

func NewTrackService(opts ...Option) (*TrackService, error) {
	s := &TrackService{
		log:        logger.GetLogger(),
		analyzer:   analysis.NewAnalyzer(),
		tempDir:    "/tmp",
		sampleRate: audio.DefaultSampleRate,
	}
	for _, opt := range opts {
		opt(s)
	}

	var (
		db  *storage.DBClient
		err error
	)
	if s.dbPath != "" {
		db, err = storage.NewDBClientWithPath(s.dbPath)
	} else {
		db, err = storage.NewDBClient()
	}
	if err != nil {
		return nil, err
	}
	s.db = db
	return s, nil
}

// AnalyzeFile analyzes an audio file into a SongMap with its ideal path and
// stores the result. A file already analyzed under the same path is served
// from the cache unless force is set.
func (s *TrackService) AnalyzeFile(ctx context.Context, audioPath string, force bool,
	onProgress analysis.ProgressFunc) (*storage.Track, *model.SongMap, error) {

	abs, err := filepath.Abs(audioPath)
	if err != nil {
		abs = audioPath
	}

	if !force {
		if track, err := s.db.GetTrackBySource(abs); err == nil {
			s.log.Infof("Serving cached analysis for %s", abs)
			songMap, err := DecodeSongMap(track.MapJSON)
			if err != nil {
				return nil, nil, fmt.Errorf("decoding cached map: %w", err)
			}
			return track, songMap, nil
		}
	}

	s.log.Infof("Analyzing %s", abs)
	buf, err := s.loadAudio(ctx, abs)
	if err != nil {
		return nil, nil, err
	}

	songMap := s.analyzer.Analyze(buf, onProgress)
	songMap.IdealPath = pathgen.Generate(songMap)
	s.log.Infof("Analysis done: %d BPM, %s, %d beats, %d path points",
		songMap.BPM, songMap.Key, len(songMap.Beats), len(songMap.IdealPath))

	mapJSON, err := json.Marshal(songMap)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding song map: %w", err)
	}

	title := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	trackID, err := s.db.SaveTrack(title, abs, int(songMap.Duration*1000),
		float64(songMap.BPM), songMap.Key.Name, songMap.Key.Scale, songMap.Danceability, mapJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("saving track: %w", err)
	}

	track, err := s.db.GetTrack(trackID)
	if err != nil {
		return nil, nil, fmt.Errorf("reloading track: %w", err)
	}
	return track, songMap, nil
}

// loadAudio reads WAV input directly and transcodes everything else through
// ffmpeg to mono WAV at the analysis sample rate.
func (s *TrackService) loadAudio(ctx context.Context, audioPath string) (*audio.Buffer, error) {
	if strings.EqualFold(filepath.Ext(audioPath), ".wav") {
		buf, err := audio.ReadWAV(audioPath)
		if err == nil {
			return buf, nil
		}
		s.log.Warnf("Direct WAV read failed, falling back to transcode: %v", err)
	}

	wavPath, err := audio.ConvertToMonoWAV(ctx, audioPath, s.tempDir, audio.ConvertConfig{
		SampleRate: s.sampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("audio conversion failed: %w", err)
	}
	buf, err := audio.ReadWAV(wavPath)
	if err != nil {
		return nil, fmt.Errorf("reading transcoded WAV: %w", err)
	}
	return buf, nil
}

// GetTrack returns a stored track with its decoded SongMap.
func (s *TrackService) GetTrack(trackID string) (*storage.Track, *model.SongMap, error) {
	track, err := s.db.GetTrack(trackID)
	if err != nil {
		return nil, nil, err
	}
	songMap, err := DecodeSongMap(track.MapJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding stored map: %w", err)
	}
	return track, songMap, nil
}

// ListTracks returns all analyzed tracks, newest first.
func (s *TrackService) ListTracks() ([]storage.Track, error) {
	return s.db.ListTracks()
}

// DeleteTrack removes a track and its play history.
func (s *TrackService) DeleteTrack(trackID string) error {
	if _, err := s.db.GetTrack(trackID); err != nil {
		return err
	}
	return s.db.DeleteTrack(trackID)
}

// RecordScore stores a finished run's score with its derived rating.
func (s *TrackService) RecordScore(trackID string, score int) (string, error) {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	if _, err := s.db.GetTrack(trackID); err != nil {
		return "", err
	}
	rating := tracking.Rating(score)
	if err := s.db.AddScore(trackID, score, rating); err != nil {
		return "", err
	}
	s.log.Infof("Recorded score %d (%s) for track %s", score, rating, trackID)
	return rating, nil
}

// TopScores returns a track's best runs.
func (s *TrackService) TopScores(trackID string, limit int) ([]storage.PlayScore, error) {
	if _, err := s.db.GetTrack(trackID); err != nil {
		return nil, err
	}
	return s.db.TopScores(trackID, limit)
}

func (s *TrackService) Close() error {
	return s.db.Close()
}

// DecodeSongMap unmarshals a stored SongMap blob.
func DecodeSongMap(data []byte) (*model.SongMap, error) {
	var m model.SongMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
