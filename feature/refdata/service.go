package refdata

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"refdata-manager/core/reconcile"
	"refdata-manager/core/schema"
	"refdata-manager/core/sequence"
	"refdata-manager/core/storage"
	"refdata-manager/core/tabular"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrStorageDisabled is returned by bucket operations when object storage is not configured.
var ErrStorageDisabled = errors.New("object storage is disabled")

var _ reconcile.CodeSource = (*sequence.Allocator)(nil)

// Service exposes code generation, workbook import and export.
type Service struct {
	registry  *schema.Registry
	counters  *sequence.GormStore
	allocator *sequence.Allocator
	records   *GormRecordStore
	engine    *reconcile.Engine
	client    storage.Client
	storage   storage.Config
	logger    *zap.Logger
	db        *gorm.DB
	now       func() time.Time
}

// NewService wires the stores, allocator and engine over db. client may be
// nil, in which case bucket operations fail with ErrStorageDisabled.
func NewService(db *gorm.DB, registry *schema.Registry, client storage.Client, storageCfg storage.Config, logger *zap.Logger, opts ...sequence.Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	counters := sequence.NewGormStore(db)
	allocator := sequence.NewAllocator(counters, registry, append([]sequence.Option{sequence.WithLogger(logger)}, opts...)...)
	records := NewGormRecordStore(db)

	return &Service{
		registry:  registry,
		counters:  counters,
		allocator: allocator,
		records:   records,
		engine:    reconcile.NewEngine(records, allocator, logger),
		client:    client,
		storage:   storageCfg,
		logger:    logger,
		db:        db,
		now:       time.Now,
	}
}

// Migrate creates the sequence and record tables.
func (s *Service) Migrate(ctx context.Context) error {
	if err := s.counters.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate sequence counters: %w", err)
	}
	if err := s.records.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate reference records: %w", err)
	}
	return nil
}

// Schemas returns every registered resource schema.
func (s *Service) Schemas() []schema.ResourceSchema {
	return s.registry.Schemas()
}

// Schema returns the schema of one resource type.
func (s *Service) Schema(resourceType string) (schema.ResourceSchema, error) {
	return s.registry.Schema(resourceType)
}

// resolvePattern defaults an empty pattern to the resource's schema, or primary.
func (s *Service) resolvePattern(resourceType string, pattern schema.Pattern) schema.Pattern {
	if pattern != "" {
		return pattern
	}
	if rs, err := s.registry.Schema(resourceType); err == nil {
		return rs.Pattern
	}
	return schema.PatternPrimary
}

// GenerateCode allocates one code for a resource type.
func (s *Service) GenerateCode(ctx context.Context, resourceType string, pattern schema.Pattern, parentCode string) (string, error) {
	return s.allocator.Allocate(ctx, resourceType, s.resolvePattern(resourceType, pattern), parentCode)
}

// GenerateCodes allocates count consecutive codes for a resource type.
func (s *Service) GenerateCodes(ctx context.Context, resourceType string, pattern schema.Pattern, count int, parentCode string) ([]string, error) {
	return s.allocator.AllocateBatch(ctx, resourceType, s.resolvePattern(resourceType, pattern), count, parentCode)
}

// ParsedCode is a decomposed code with the resource type its prefix maps to.
type ParsedCode struct {
	sequence.ParsedCode
	ResourceType string `json:"resourceType,omitempty"`
}

// ParseCode decomposes a code. ok is false for codes this service did not format.
func (s *Service) ParseCode(code string) (ParsedCode, bool) {
	parsed, ok := sequence.ParseCode(strings.ToUpper(strings.TrimSpace(code)))
	if !ok {
		return ParsedCode{}, false
	}
	rt, _ := s.registry.ResourceTypeForPrefix(parsed.Prefix)
	return ParsedCode{ParsedCode: parsed, ResourceType: rt}, true
}

// Import reconciles a workbook against the records of a resource type.
func (s *Service) Import(ctx context.Context, buf []byte, resourceType string, mode reconcile.Mode, dryRun bool) (*reconcile.ImportResult, error) {
	rs, err := s.registry.Schema(resourceType)
	if err != nil {
		return nil, err
	}
	return s.ImportWithSchema(ctx, buf, rs, mode, dryRun)
}

// ImportWithSchema reconciles a workbook under an explicit schema.
func (s *Service) ImportWithSchema(ctx context.Context, buf []byte, rs schema.ResourceSchema, mode reconcile.Mode, dryRun bool) (*reconcile.ImportResult, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", reconcile.ErrInvalidMode, mode)
	}
	rows, err := tabular.Parse(buf, rs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.engine.Reconcile(ctx, rows, rs, reconcile.Options{Mode: mode, DryRun: dryRun})
}

// ImportObject reads a workbook from the bucket and imports it.
func (s *Service) ImportObject(ctx context.Context, objectName, resourceType string, mode reconcile.Mode, dryRun bool) (*reconcile.ImportResult, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}
	buf, err := storage.ReadObject(ctx, s.client, s.storage.Bucket, objectName, s.storage.MaxObjectBytes())
	if err != nil {
		return nil, err
	}
	s.logger.Info("Importing object", zap.String("object", objectName), zap.String("resource", resourceType))
	return s.Import(ctx, buf, resourceType, mode, dryRun)
}

// ListImportObjects returns the workbooks waiting under the import prefix.
func (s *Service) ListImportObjects(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}
	return storage.ListKeys(ctx, s.client, s.storage.Bucket, s.storage.ImportPrefix, ".xlsx")
}

// Export renders records under a schema. It touches no storage.
func (s *Service) Export(records []tabular.Record, rs schema.ResourceSchema) ([]byte, error) {
	return tabular.Render(records, rs)
}

// ExportResource renders every stored record of a resource type.
func (s *Service) ExportResource(ctx context.Context, resourceType string) ([]byte, error) {
	rs, err := s.registry.Schema(resourceType)
	if err != nil {
		return nil, err
	}
	stored, err := s.records.List(ctx, resourceType)
	if err != nil {
		return nil, err
	}

	records := make([]tabular.Record, len(stored))
	for i, m := range stored {
		records[i] = tabular.Record(m.Fields)
	}
	return s.Export(records, rs)
}

// ExportToStorage renders a resource type and uploads it under the export
// prefix. It returns the object name.
func (s *Service) ExportToStorage(ctx context.Context, resourceType string) (string, error) {
	if s.client == nil {
		return "", ErrStorageDisabled
	}
	buf, err := s.ExportResource(ctx, resourceType)
	if err != nil {
		return "", err
	}
	if err := storage.EnsureBucket(ctx, s.client, s.storage.Bucket); err != nil {
		return "", err
	}

	objectName := path.Join(s.storage.ExportPrefix, fmt.Sprintf("%s-%s.xlsx", resourceType, s.now().Format("20060102-150405")))
	if err := storage.WriteObject(ctx, s.client, s.storage.Bucket, objectName, buf, storage.XLSXContentType); err != nil {
		return "", err
	}
	s.logger.Info("Exported resource", zap.String("resource", resourceType), zap.String("object", objectName))
	return objectName, nil
}

// Template renders an empty workbook with the headers of a resource type.
func (s *Service) Template(resourceType string) ([]byte, error) {
	rs, err := s.registry.Schema(resourceType)
	if err != nil {
		return nil, err
	}
	return tabular.RenderTemplate(rs)
}
