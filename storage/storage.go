package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rankforge/backend/models"
)

// Analysis is one persisted report row. The full result is stored as a JSON
// blob; the scalar columns exist for listing and querying.
type Analysis struct {
	ID            string `gorm:"primaryKey"`
	URL           string `gorm:"index"`
	TargetKeyword string
	UserID        string `gorm:"index"`
	TotalScore    int
	RankingIQ     int
	Probability   float64
	Report        []byte    `gorm:"type:blob"`
	CreatedAt     time.Time `gorm:"index"`
}

// Store persists analysis reports to SQLite.
type Store struct {
	db *gorm.DB
}

// Open initializes the database and runs migrations.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Analysis{}); err != nil {
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Save writes one analysis result. Callers treat persistence as best effort;
// a failed save must not fail the analysis.
func (s *Store) Save(result *models.AnalysisResult) error {
	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("storage: marshal report: %w", err)
	}

	row := Analysis{
		ID:            result.AnalysisID,
		URL:           result.URL,
		TargetKeyword: result.Keyword,
		UserID:        result.UserID,
		TotalScore:    result.OverallScore,
		RankingIQ:     result.RankingIQ,
		Probability:   result.RankingProbability,
		Report:        blob,
		CreatedAt:     result.Timestamp,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("storage: save %s: %w", result.AnalysisID, err)
	}
	return nil
}

// Get loads one report by id. Returns gorm.ErrRecordNotFound for unknown ids.
func (s *Store) Get(id string) (*models.AnalysisResult, error) {
	var row Analysis
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(row.Report, &result); err != nil {
		return nil, fmt.Errorf("storage: decode report %s: %w", id, err)
	}
	return &result, nil
}

// Recent lists the newest n rows without their report blobs.
func (s *Store) Recent(n int) ([]Analysis, error) {
	var rows []Analysis
	err := s.db.
		Select("id", "url", "target_keyword", "user_id", "total_score", "ranking_iq", "probability", "created_at").
		Order("created_at desc").
		Limit(n).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("storage: list recent: %w", err)
	}
	return rows, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
