package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"refdata-manager/core/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists sequence counters keyed by scope.
type Store interface {
	// AllocateNext reserves count consecutive values for scope under mutual
	// exclusion and returns the first one. Unknown scopes start at 1.
	AllocateNext(ctx context.Context, scope string, count int) (int64, error)

	// Peek returns the value the next allocation would start at, without reserving it.
	Peek(ctx context.Context, scope string) (int64, error)
}

// SequenceCounter is one row of the sequence table.
type SequenceCounter struct {
	Scope     string    `gorm:"primaryKey;size:191"`
	NextValue int64     `gorm:"not null;default:1"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName overrides the table name used by gorm.
func (SequenceCounter) TableName() string {
	return "sequence_counters"
}

// GormStore keeps counters in the database and serializes allocations
// with a row lock on the scope's counter.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the sequence table.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&SequenceCounter{})
}

// AllocateNext implements Store. When ctx carries a transaction (database.WithTx)
// the reservation commits or rolls back with it.
func (s *GormStore) AllocateNext(ctx context.Context, scope string, count int) (int64, error) {
	if err := checkCount(count); err != nil {
		return 0, err
	}

	var start int64
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		conn := database.Conn(ctx, s.db)
		now := time.Now()

		seed := SequenceCounter{Scope: scope, NextValue: 1, UpdatedAt: now}
		if err := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("failed to create counter %s: %w", scope, err)
		}

		var counter SequenceCounter
		err := conn.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("scope = ?", scope).
			Take(&counter).Error
		if err != nil {
			return fmt.Errorf("failed to lock counter %s: %w", scope, err)
		}

		result := conn.Model(&SequenceCounter{}).
			Where("scope = ?", scope).
			Updates(map[string]any{
				"next_value": gorm.Expr("next_value + ?", count),
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to advance counter %s: %w", scope, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("counter %s vanished while locked", scope)
		}

		start = counter.NextValue
		return nil
	})
	if err != nil {
		return 0, err
	}
	return start, nil
}

// Peek implements Store.
func (s *GormStore) Peek(ctx context.Context, scope string) (int64, error) {
	var counter SequenceCounter
	err := database.Conn(ctx, s.db).Where("scope = ?", scope).Take(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter %s: %w", scope, err)
	}
	return counter.NextValue, nil
}
