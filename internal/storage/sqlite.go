package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "soundglide.sqlite3"
const errDBClientNil = "db client is nil"

// ErrTrackNotFound is returned when a lookup matches no stored track.
var ErrTrackNotFound = errors.New("track not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// Track is a fully analyzed song. MapJSON holds the serialized SongMap so
// the analysis never has to be recomputed for a known source file.
type Track struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	Title        string `gorm:"index:idx_track_title" json:"title"`
	SourcePath   string `gorm:"uniqueIndex:idx_track_source" json:"source_path"`
	DurationMs   int    `json:"duration_ms"`
	BPM          float64 `json:"bpm"`
	KeyName      string  `json:"key_name"`
	KeyScale     string  `json:"key_scale"`
	Danceability float64 `json:"danceability"`
	MapJSON      []byte  `json:"-"`
	CreatedAt    time.Time
}

// PlayScore records one finished flight through a track.
type PlayScore struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	TrackID   string `gorm:"type:varchar(36);index:idx_score_track" json:"track_id"`
	Score     int    `json:"score"`
	Rating    string `json:"rating"`
	CreatedAt time.Time
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("SOUNDGLIDE_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !os.IsExist(err) {
		if filepath.Dir(dbPath) != "." {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Track{}, &PlayScore{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveTrack stores an analyzed track, replacing any previous analysis of the
// same source path, and returns the track ID.
func (c *DBClient) SaveTrack(title, sourcePath string, durationMs int, bpm float64,
	keyName, keyScale string, danceability float64, mapJSON []byte) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	var track Track
	err := c.DB.Where("source_path = ?", sourcePath).First(&track).Error
	if err == nil {
		updates := map[string]interface{}{
			"Title":        title,
			"DurationMs":   durationMs,
			"BPM":          bpm,
			"KeyName":      keyName,
			"KeyScale":     keyScale,
			"Danceability": danceability,
			"MapJSON":      mapJSON,
		}
		if err := c.DB.Model(&track).Updates(updates).Error; err != nil {
			return "", fmt.Errorf("updating track: %w", err)
		}
		return track.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("querying existing track: %w", err)
	}

	track = Track{
		ID:           uuid.NewString(),
		Title:        title,
		SourcePath:   sourcePath,
		DurationMs:   durationMs,
		BPM:          bpm,
		KeyName:      keyName,
		KeyScale:     keyScale,
		Danceability: danceability,
		MapJSON:      mapJSON,
	}
	if err := c.DB.Create(&track).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(err.Error(), "constraint failed") {
			if fetchErr := c.DB.Where("source_path = ?", sourcePath).First(&track).Error; fetchErr != nil {
				return "", fmt.Errorf("fetching track after constraint violation: %w", fetchErr)
			}
			return track.ID, nil
		}
		return "", fmt.Errorf("creating track: %w", err)
	}
	return track.ID, nil
}

func (c *DBClient) GetTrack(trackID string) (*Track, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var track Track
	if err := c.DB.Where("id = ?", trackID).First(&track).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackNotFound
		}
		return nil, fmt.Errorf("querying track: %w", err)
	}
	return &track, nil
}

// GetTrackBySource looks up the cached analysis for a source file.
func (c *DBClient) GetTrackBySource(sourcePath string) (*Track, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var track Track
	if err := c.DB.Where("source_path = ?", sourcePath).First(&track).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackNotFound
		}
		return nil, fmt.Errorf("querying track by source: %w", err)
	}
	return &track, nil
}

func (c *DBClient) ListTracks() ([]Track, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var tracks []Track
	if err := c.DB.Order("created_at desc").Find(&tracks).Error; err != nil {
		return nil, fmt.Errorf("listing tracks: %w", err)
	}
	return tracks, nil
}

// DeleteTrack removes a track and its scores in one transaction.
func (c *DBClient) DeleteTrack(trackID string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", trackID).Delete(&PlayScore{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", trackID).Delete(&Track{}).Error; err != nil {
			return err
		}
		return nil
	})
}

func (c *DBClient) AddScore(trackID string, score int, rating string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	entry := PlayScore{TrackID: trackID, Score: score, Rating: rating}
	if err := c.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("creating score: %w", err)
	}
	return nil
}

// TopScores returns the best scores for a track, highest first.
func (c *DBClient) TopScores(trackID string, limit int) ([]PlayScore, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	if limit <= 0 {
		limit = 10
	}
	var scores []PlayScore
	err := c.DB.Where("track_id = ?", trackID).
		Order("score desc, created_at asc").
		Limit(limit).
		Find(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("querying scores: %w", err)
	}
	return scores, nil
}
