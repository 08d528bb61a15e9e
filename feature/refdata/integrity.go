package refdata

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"refdata-manager/core/database"
	"refdata-manager/core/sequence"
	"refdata-manager/feature/refdata/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// trackedModels are the tables this feature owns.
var trackedModels = []any{&sequence.SequenceCounter{}, &models.ReferenceRecord{}}

// CheckIntegrity verifies that the database tables carry every column of
// their gorm models and, when storage is enabled, that the bucket holds the
// import and export prefixes. With fix set, missing prefixes are created.
func (s *Service) CheckIntegrity(ctx context.Context, fix bool) (*models.IntegrityReport, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &models.IntegrityReport{
		Matched: true,
		Tables:  make(map[string]models.TableReport),
		Errors:  []string{},
	}

	for _, model := range trackedModels {
		table, expected, err := modelColumns(s.db, model)
		if err != nil {
			return nil, err
		}

		missing, err := database.MissingColumns(s.db.WithContext(ctx), table, expected)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
			report.Matched = false
			continue
		}

		tbl := models.TableReport{MissingColumns: []string{}, Status: "ok"}
		if len(missing) > 0 {
			tbl.MissingColumns = missing
			tbl.Status = "error"
			report.Matched = false
		}
		report.Tables[table] = tbl
	}

	if s.client != nil {
		sr, err := s.checkStorage(ctx, fix)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			report.Matched = false
		} else {
			report.Storage = sr
			if !sr.BucketExists || (len(sr.MissingPrefixes) > 0 && !sr.Fixed) {
				report.Matched = false
			}
		}
	}

	return report, nil
}

// modelColumns returns the table name and column names gorm derives from model.
func modelColumns(db *gorm.DB, model any) (string, []string, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return "", nil, fmt.Errorf("failed to parse model %T: %w", model, err)
	}
	return stmt.Schema.Table, stmt.Schema.DBNames, nil
}

func (s *Service) checkStorage(ctx context.Context, fix bool) (*models.StorageReport, error) {
	bucket := s.storage.Bucket
	report := &models.StorageReport{Bucket: bucket, MissingPrefixes: []string{}}

	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if !fix {
			return report, nil
		}
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		s.logger.Info("Created missing bucket", zap.String("bucket", bucket))
	}
	report.BucketExists = true

	for _, prefix := range []string{s.storage.ImportPrefix, s.storage.ExportPrefix} {
		if prefix == "" {
			continue
		}
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}

		found := false
		for range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, MaxKeys: 1}) {
			found = true
			break
		}
		if !found {
			report.MissingPrefixes = append(report.MissingPrefixes, prefix)
		}
	}

	if fix && len(report.MissingPrefixes) > 0 {
		for _, prefix := range report.MissingPrefixes {
			_, err := s.client.PutObject(ctx, bucket, prefix, bytes.NewReader([]byte{}), 0, minio.PutObjectOptions{})
			if err != nil {
				s.logger.Error("Failed to create prefix", zap.String("prefix", prefix), zap.Error(err))
				return nil, err
			}
			s.logger.Info("Created missing prefix", zap.String("prefix", prefix))
		}
		report.Fixed = true
	}
	return report, nil
}
