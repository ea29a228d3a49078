// Package store persists ensemble run summaries to a local SQLite
// database so parameter sweeps can be compared across invocations.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lobsim/lobsim/sim"
)

// RunRecord is the persisted form of one completed run.
type RunRecord struct {
	ID         uint   `gorm:"primaryKey"`
	Label      string `gorm:"index"`
	Seed       int64  `gorm:"index"`
	Run        int
	Events     int64
	Stop       string
	Clock      float64
	FinalMid   float64
	MidDrift   float64
	ShiftsUp   int64
	ShiftsDown int64
	MeanDepth  float64
	CreatedAt  time.Time
}

// Store wraps the SQLite handle.
type Store struct {
	db *gorm.DB
}

// Open connects to (and if needed creates) the database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, fmt.Errorf("migrating store: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveEnsemble persists every run of an ensemble under one label.
func (s *Store) SaveEnsemble(label string, result *sim.EnsembleResult) error {
	records := make([]RunRecord, len(result.Runs))
	for i, run := range result.Runs {
		records[i] = RunRecord{
			Label:      label,
			Seed:       run.Seed,
			Run:        run.Run,
			Events:     run.Events,
			Stop:       string(run.Stop),
			Clock:      run.Clock,
			FinalMid:   run.FinalMid,
			MidDrift:   run.MidDrift,
			ShiftsUp:   run.ShiftsUp,
			ShiftsDown: run.ShiftsDown,
			MeanDepth:  run.MeanDepth,
		}
	}
	if err := s.db.Create(&records).Error; err != nil {
		return fmt.Errorf("saving ensemble %q: %w", label, err)
	}
	return nil
}

// ListRuns retrieves all persisted runs under a label, oldest first.
func (s *Store) ListRuns(label string) ([]RunRecord, error) {
	var records []RunRecord
	err := s.db.Where("label = ?", label).Order("id").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("listing runs for %q: %w", label, err)
	}
	return records, nil
}

// Labels returns the distinct ensemble labels in the store.
func (s *Store) Labels() ([]string, error) {
	var labels []string
	err := s.db.Model(&RunRecord{}).Distinct("label").Order("label").Pluck("label", &labels).Error
	if err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
	}
	return labels, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
