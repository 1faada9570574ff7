// Package postgres persists QC results for downstream reporting. The store
// is optional; the service runs Kafka-only when no DSN is configured.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oceanstream/argo-etl-service/internal/domain"
)

// ProfileRow is the stored summary of one processed profile.
type ProfileRow struct {
	ID                 uint   `gorm:"primaryKey"`
	ProfileID          string `gorm:"uniqueIndex;not null"`
	PlatformNumber     string `gorm:"index"`
	CycleNumber        int
	Latitude           *float64
	Longitude          *float64
	ProfileTime        *time.Time
	DataQuality        string `gorm:"index;size:20"`
	TotalMeasurements  int
	GoodDataPercentage float64
	ProcessedAt        time.Time
}

func (ProfileRow) TableName() string { return "profiles" }

// QCReportRow stores the full report alongside its scalar detector counts.
type QCReportRow struct {
	ID                uint   `gorm:"primaryKey"`
	ProfileID         string `gorm:"uniqueIndex;not null"`
	OutliersRemoved   int
	SpikeDetections   int
	GradientAnomalies int
	DensityInversions int
	Issues            string `gorm:"type:text"` // JSON array
	Report            string `gorm:"type:text"` // full serialized report
	CreatedAt         time.Time
}

func (QCReportRow) TableName() string { return "qc_reports" }

// Store writes QC results to a relational database via gorm.
// It implements pipeline.BatchLoader.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New connects to Postgres and migrates the schema.
func New(dsn string, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return NewWithDB(db, logger)
}

// NewWithDB wraps an existing gorm connection. Used by tests to run the
// store against sqlite.
func NewWithDB(db *gorm.DB, logger *slog.Logger) (*Store, error) {
	if err := db.AutoMigrate(&ProfileRow{}, &QCReportRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// LoadBatch upserts the batch inside one transaction. Conflicts on profile ID
// are ignored so Kafka redeliveries stay idempotent, first write wins.
func (s *Store) LoadBatch(ctx context.Context, results []domain.QCResult) error {
	if len(results) == 0 {
		return nil
	}

	profiles := make([]ProfileRow, 0, len(results))
	reports := make([]QCReportRow, 0, len(results))
	for i := range results {
		p, r, err := toRows(results[i])
		if err != nil {
			return err
		}
		profiles = append(profiles, p)
		reports = append(reports, r)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		onConflict := clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}},
			DoNothing: true,
		}
		if err := tx.Clauses(onConflict).Create(&profiles).Error; err != nil {
			return fmt.Errorf("insert profiles: %w", err)
		}
		if err := tx.Clauses(onConflict).Create(&reports).Error; err != nil {
			return fmt.Errorf("insert qc reports: %w", err)
		}
		return nil
	})
}

// Statistics returns the stored profile count and its quality distribution.
func (s *Store) Statistics(ctx context.Context) (map[string]any, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&ProfileRow{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count profiles: %w", err)
	}

	type qualityCount struct {
		DataQuality string
		Count       int64
	}
	var rows []qualityCount
	err := s.db.WithContext(ctx).Model(&ProfileRow{}).
		Select("data_quality, count(*) as count").
		Group("data_quality").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("quality distribution: %w", err)
	}

	dist := make(map[string]int64, len(rows))
	for _, r := range rows {
		dist[r.DataQuality] = r.Count
	}
	return map[string]any{
		"total_records":        total,
		"quality_distribution": dist,
	}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRows(res domain.QCResult) (ProfileRow, QCReportRow, error) {
	issues, err := json.Marshal(res.Report.Issues)
	if err != nil {
		return ProfileRow{}, QCReportRow{}, fmt.Errorf("marshal issues: %w", err)
	}
	report, err := json.Marshal(res.Report)
	if err != nil {
		return ProfileRow{}, QCReportRow{}, fmt.Errorf("marshal report: %w", err)
	}

	p := ProfileRow{
		ProfileID:          res.Profile.ID,
		PlatformNumber:     res.Profile.PlatformNumber,
		CycleNumber:        res.Profile.CycleNumber,
		Latitude:           finitePtr(res.Profile.Latitude),
		Longitude:          finitePtr(res.Profile.Longitude),
		DataQuality:        string(res.Report.DataQuality),
		TotalMeasurements:  res.Report.TotalMeasurements,
		GoodDataPercentage: res.Report.GoodDataPercentage,
		ProcessedAt:        res.ProcessedAt,
	}
	if !res.Profile.Time.IsZero() {
		t := res.Profile.Time
		p.ProfileTime = &t
	}

	r := QCReportRow{
		ProfileID:         res.Profile.ID,
		OutliersRemoved:   res.Report.OutliersRemoved,
		SpikeDetections:   res.Report.SpikeDetections,
		GradientAnomalies: res.Report.GradientAnomalies,
		DensityInversions: res.Report.DensityInversions,
		Issues:            string(issues),
		Report:            string(report),
		CreatedAt:         res.ProcessedAt,
	}
	return p, r, nil
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
