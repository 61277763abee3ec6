package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StateEntry struct {
	Key       string `gorm:"primaryKey;column:state_key"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (StateEntry) TableName() string { return "storefront_state" }

type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := db.AutoMigrate(&StateEntry{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry StateEntry
	err := s.db.WithContext(ctx).First(&entry, "state_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return entry.Value, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	entry := StateEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	if err := s.upsert(ctx, &entry).Error; err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) upsert(ctx context.Context, entry *StateEntry) *gorm.DB {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(entry)
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if err := s.remove(ctx, key).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) remove(ctx context.Context, key string) *gorm.DB {
	return s.db.WithContext(ctx).Delete(&StateEntry{}, "state_key = ?", key)
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
