package models

import (
	"time"

	"gorm.io/datatypes"
)

// ReferenceRecord is one stored reference data record of any resource type.
// Field values live in the Fields JSON column; the columns beside it are
// denormalized from those values for lookups.
type ReferenceRecord struct {
	ID                 string            `gorm:"column:id;primaryKey;size:36" json:"id"`
	ResourceType       string            `gorm:"column:resource_type;size:64;not null;uniqueIndex:idx_reference_records_code,priority:1;index:idx_reference_records_primary,priority:1;index:idx_reference_records_secondary,priority:1" json:"resourceType"`
	Code               string            `gorm:"column:code;size:191;not null;uniqueIndex:idx_reference_records_code,priority:2" json:"code"`
	ParentCode         string            `gorm:"column:parent_code;size:191;index" json:"parentCode,omitempty"`
	PrimaryUniqueKey   string            `gorm:"column:primary_unique_key;size:255;index:idx_reference_records_primary,priority:2" json:"-"`
	SecondaryUniqueKey string            `gorm:"column:secondary_unique_key;size:255;index:idx_reference_records_secondary,priority:2" json:"-"`
	Status             string            `gorm:"column:status;size:16" json:"status,omitempty"`
	Fields             datatypes.JSONMap `gorm:"column:fields" json:"fields"`
	CreatedAt          time.Time         `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt          time.Time         `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName overrides the table name used by gorm.
func (ReferenceRecord) TableName() string {
	return "reference_records"
}

// IntegrityReport is the result of an infrastructure check.
type IntegrityReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Storage *StorageReport         `json:"storage,omitempty"`
	Errors  []string               `json:"errors"`
}

// TableReport lists the columns a table lacks.
type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "error"
}

// StorageReport describes the bucket layout used for workbook exchange.
type StorageReport struct {
	Bucket          string   `json:"bucket"`
	BucketExists    bool     `json:"bucket_exists"`
	MissingPrefixes []string `json:"missing_prefixes"`
	Fixed           bool     `json:"fixed,omitempty"`
}
