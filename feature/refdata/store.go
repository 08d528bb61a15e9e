package refdata

import (
	"context"
	"errors"
	"fmt"

	"refdata-manager/core/database"
	"refdata-manager/core/reconcile"
	"refdata-manager/core/utils"
	"refdata-manager/feature/refdata/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrRecordNotFound is returned when an update targets a record that is gone.
var ErrRecordNotFound = errors.New("record not found")

var _ reconcile.RecordStore = (*GormRecordStore)(nil)

// GormRecordStore implements reconcile.RecordStore over the reference_records table.
type GormRecordStore struct {
	db *gorm.DB
}

// NewGormRecordStore creates a store backed by db.
func NewGormRecordStore(db *gorm.DB) *GormRecordStore {
	return &GormRecordStore{db: db}
}

// Migrate creates or updates the record table.
func (s *GormRecordStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&models.ReferenceRecord{})
}

func (s *GormRecordStore) take(ctx context.Context, query string, args ...any) (*reconcile.Record, error) {
	var m models.ReferenceRecord
	err := database.Conn(ctx, s.db).Where(query, args...).Order("created_at ASC").Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toRecord(m), nil
}

// FindByCode implements reconcile.RecordStore.
func (s *GormRecordStore) FindByCode(ctx context.Context, resourceType, code string) (*reconcile.Record, error) {
	return s.take(ctx, "resource_type = ? AND code = ?", resourceType, code)
}

// FindByKey implements reconcile.RecordStore.
func (s *GormRecordStore) FindByKey(ctx context.Context, resourceType string, kind reconcile.KeyKind, key string) (*reconcile.Record, error) {
	switch kind {
	case reconcile.KeyPrimary:
		return s.take(ctx, "resource_type = ? AND primary_unique_key = ?", resourceType, key)
	case reconcile.KeySecondary:
		return s.take(ctx, "resource_type = ? AND secondary_unique_key = ?", resourceType, key)
	}
	return nil, fmt.Errorf("unknown key kind %q", kind)
}

// Create implements reconcile.RecordStore. The code is checked inside the
// caller's transaction first; a duplicate-key error from a concurrent writer
// is translated as well.
func (s *GormRecordStore) Create(ctx context.Context, resourceType string, rec *reconcile.Record) error {
	existing, err := s.FindByCode(ctx, resourceType, rec.Code)
	if err != nil {
		return err
	}
	if existing != nil {
		return reconcile.ErrCodeTaken
	}

	m := fromRecord(resourceType, rec)
	m.ID = uuid.NewString()
	if err := database.Conn(ctx, s.db).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return reconcile.ErrCodeTaken
		}
		return err
	}
	rec.ID = m.ID
	return nil
}

// Update implements reconcile.RecordStore.
func (s *GormRecordStore) Update(ctx context.Context, resourceType string, rec *reconcile.Record) error {
	m := fromRecord(resourceType, rec)
	result := database.Conn(ctx, s.db).Model(&models.ReferenceRecord{}).
		Where("id = ? AND resource_type = ?", rec.ID, resourceType).
		Updates(map[string]any{
			"code":                 m.Code,
			"parent_code":          m.ParentCode,
			"primary_unique_key":   m.PrimaryUniqueKey,
			"secondary_unique_key": m.SecondaryUniqueKey,
			"status":               m.Status,
			"fields":               m.Fields,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, rec.ID)
	}
	return nil
}

// InTx implements reconcile.RecordStore. Sequence stores sharing the same
// database join the transaction through the context.
func (s *GormRecordStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.InTx(ctx, s.db, fn)
}

// List returns all records of a resource type ordered by code.
func (s *GormRecordStore) List(ctx context.Context, resourceType string) ([]models.ReferenceRecord, error) {
	var out []models.ReferenceRecord
	err := database.Conn(ctx, s.db).
		Where("resource_type = ?", resourceType).
		Order("code ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", resourceType, err)
	}
	return out, nil
}

func toRecord(m models.ReferenceRecord) *reconcile.Record {
	fields := make(map[string]string, len(m.Fields))
	for k, v := range m.Fields {
		fields[k] = utils.ToString(v)
	}
	return &reconcile.Record{
		ID:           m.ID,
		Code:         m.Code,
		ParentCode:   m.ParentCode,
		PrimaryKey:   m.PrimaryUniqueKey,
		SecondaryKey: m.SecondaryUniqueKey,
		Fields:       fields,
	}
}

func fromRecord(resourceType string, rec *reconcile.Record) models.ReferenceRecord {
	fields := make(datatypes.JSONMap, len(rec.Fields))
	for k, v := range rec.Fields {
		fields[k] = v
	}
	return models.ReferenceRecord{
		ID:                 rec.ID,
		ResourceType:       resourceType,
		Code:               rec.Code,
		ParentCode:         rec.ParentCode,
		PrimaryUniqueKey:   rec.PrimaryKey,
		SecondaryUniqueKey: rec.SecondaryKey,
		Status:             rec.Fields["status"],
		Fields:             fields,
	}
}
