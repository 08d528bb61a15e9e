package refdata

import (
	"refdata-manager/core/schema"
	"refdata-manager/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the reference data feature. client may be nil when
// object storage is disabled.
func NewFeature(db *gorm.DB, registry *schema.Registry, client storage.Client, storageCfg storage.Config, logger *zap.Logger) *Feature {
	svc := NewService(db, registry, client, storageCfg, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "refdata"
}

// IsEnabled reports whether the feature can serve requests. It needs a database.
func (f *Feature) IsEnabled() bool {
	return f.service.db != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service returns the feature's service.
func (f *Feature) Service() *Service {
	return f.service
}
