package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Record is one stored value in the SQLite backend.
type Record struct {
	Key       string `gorm:"primaryKey;column:record_key"`
	Content   []byte `gorm:"not null"`
	Checksum  string `gorm:"not null"`
	UpdatedAt time.Time
}

// SQLiteStorage implements Storage in a single-file SQLite database.
type SQLiteStorage struct {
	db *gorm.DB
}

// NewSQLiteStorage opens (and migrates) the database at path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Put upserts the record in one statement.
func (s *SQLiteStorage) Put(ctx context.Context, key string, content []byte) error {
	rec := Record{
		Key:       key,
		Content:   content,
		Checksum:  ComputeChecksum(content),
		UpdatedAt: time.Now(),
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec)
	if result.Error != nil {
		return fmt.Errorf("failed to store %s: %w", key, result.Error)
	}
	return nil
}

// Get retrieves content from the given key and verifies its checksum.
func (s *SQLiteStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var rec Record
	result := s.db.WithContext(ctx).Where("record_key = ?", key).First(&rec)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to load %s: %w", key, result.Error)
	}
	if got := ComputeChecksum(rec.Content); got != rec.Checksum {
		return nil, fmt.Errorf("%w: %s checksum %s, want %s", ErrCorrupt, key, got, rec.Checksum)
	}
	return rec.Content, nil
}

// Exists checks if a record exists at the given key
func (s *SQLiteStorage) Exists(ctx context.Context, key string) (bool, error) {
	var count int64
	if result := s.db.WithContext(ctx).Model(&Record{}).Where("record_key = ?", key).Count(&count); result.Error != nil {
		return false, fmt.Errorf("failed to look up %s: %w", key, result.Error)
	}
	return count > 0, nil
}

// Delete removes the record at the given key
func (s *SQLiteStorage) Delete(ctx context.Context, key string) error {
	if result := s.db.WithContext(ctx).Where("record_key = ?", key).Delete(&Record{}); result.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", key, result.Error)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ComputeChecksum computes SHA256 checksum for content
func ComputeChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
