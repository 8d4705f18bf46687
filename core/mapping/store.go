package mapping

import (
	"context"
	"errors"
	"fmt"

	"catalog-sync/core/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence boundary for mapping records.
type Store interface {
	// Get returns the record for localID. The bool is false when none exists.
	Get(ctx context.Context, localID string) (MappingRecord, bool, error)
	// Upsert writes rec keyed on LocalID, overwriting all fields.
	Upsert(ctx context.Context, rec MappingRecord) error
	// ListActive returns every active record ordered by LocalID.
	ListActive(ctx context.Context) ([]MappingRecord, error)
}

// GormStore implements Store with gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the mapping table.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&MappingRecord{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", TableName, err)
	}
	return nil
}

// VerifySchema returns the expected columns missing from the mapping table.
func (s *GormStore) VerifySchema(ctx context.Context) ([]string, error) {
	return database.MissingColumns(s.db.WithContext(ctx), TableName, Columns)
}

func (s *GormStore) Get(ctx context.Context, localID string) (MappingRecord, bool, error) {
	var rec MappingRecord
	err := s.db.WithContext(ctx).Where("local_id = ?", localID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return MappingRecord{}, false, nil
	}
	if err != nil {
		return MappingRecord{}, false, fmt.Errorf("failed to load mapping %s: %w", localID, err)
	}
	return rec, true, nil
}

func (s *GormStore) Upsert(ctx context.Context, rec MappingRecord) error {
	if rec.LocalID == "" {
		return errors.New("mapping record has no local_id")
	}
	rec.ID = 0
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "local_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"local_name",
			"remote_product_id",
			"remote_price_id",
			"price_amount",
			"sync_status",
			"last_synced_at",
			"active",
		}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to upsert mapping %s: %w", rec.LocalID, err)
	}
	return nil
}

func (s *GormStore) ListActive(ctx context.Context) ([]MappingRecord, error) {
	var recs []MappingRecord
	err := s.db.WithContext(ctx).Where("active = ?", true).Order("local_id").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	return recs, nil
}
