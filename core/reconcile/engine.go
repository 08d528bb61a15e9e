package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"refdata-manager/core/metrics"
	"refdata-manager/core/schema"
	"refdata-manager/core/tabular"

	"go.uber.org/zap"
)

// Row outcomes, also used as metric labels.
const (
	outcomeCreated   = "created"
	outcomeUpdated   = "updated"
	outcomeFailed    = "failed"
	outcomeDuplicate = "duplicate"
)

// rowFailure is an expected, row-scoped rejection such as a mode mismatch.
type rowFailure struct {
	field   string
	message string
}

func (f *rowFailure) Error() string {
	return f.message
}

// Engine reconciles imported rows against stored records.
type Engine struct {
	store  RecordStore
	codes  CodeSource
	logger *zap.Logger
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(store RecordStore, codes CodeSource, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, codes: codes, logger: logger}
}

// pass bundles the store and code source a batch writes through.
type pass struct {
	store RecordStore
	codes CodeSource
}

// Reconcile processes rows in file order. Each row is classified created,
// updated or failed; row failures are recorded in the result and never
// returned. The error return is reserved for batch-level failures: an
// invalid mode, a broken row source, or a cancelled context.
func (e *Engine) Reconcile(ctx context.Context, rows RowSource, s schema.ResourceSchema, opts Options) (*ImportResult, error) {
	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, opts.Mode)
	}

	p := pass{store: e.store, codes: e.codes}
	if opts.DryRun {
		d := newDryRun(e.store, e.codes)
		p = pass{store: d, codes: d}
	}

	log := e.logger.With(
		zap.String("resource", s.ResourceType),
		zap.String("mode", string(opts.Mode)),
		zap.Bool("dry_run", opts.DryRun),
	)
	log.Info("Starting import")
	start := time.Now()
	dry := strconv.FormatBool(opts.DryRun)

	result := newResult(opts.DryRun)
	seen := make(map[string]int)

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := rows.Row()

		if len(row.Errors) > 0 {
			for _, fe := range row.Errors {
				result.Errors = append(result.Errors, RowError{Row: row.RowNumber, Field: fe.Field, Message: fe.Message})
			}
			result.Failed++
			e.count(s.ResourceType, outcomeFailed, dry)
			log.Debug("Row has field errors", zap.Int("row", row.RowNumber), zap.Int("errors", len(row.Errors)))
			continue
		}

		if key := DedupKey(s, row.Fields); key != "" {
			if first, ok := seen[key]; ok {
				result.DuplicateRows = append(result.DuplicateRows, DuplicateRow{
					Row:            row.RowNumber,
					DuplicateOfRow: first,
					UniqueKey:      key,
				})
				result.Failed++
				e.count(s.ResourceType, outcomeDuplicate, dry)
				log.Debug("Duplicate row", zap.Int("row", row.RowNumber), zap.Int("duplicate_of", first))
				continue
			}
			seen[key] = row.RowNumber
		}

		outcome, err := e.reconcileRow(ctx, p, s, row, opts.Mode)
		if err != nil {
			re := RowError{Row: row.RowNumber, Message: err.Error()}
			var rf *rowFailure
			if errors.As(err, &rf) {
				re.Field = rf.field
			} else if errors.Is(err, ErrCodeTaken) {
				re.Field = s.CodeField
			}
			result.Errors = append(result.Errors, re)
			result.Failed++
			e.count(s.ResourceType, outcomeFailed, dry)
			log.Debug("Row failed", zap.Int("row", row.RowNumber), zap.Error(err))
			continue
		}

		result.Success++
		switch outcome {
		case outcomeCreated:
			result.Created++
		case outcomeUpdated:
			result.Updated++
		}
		e.count(s.ResourceType, outcome, dry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metrics.ImportDuration.WithLabelValues(s.ResourceType, dry).Observe(time.Since(start).Seconds())
	log.Info("Import finished",
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (e *Engine) count(resourceType, outcome, dry string) {
	metrics.ImportRows.WithLabelValues(resourceType, outcome, dry).Inc()
}

// reconcileRow looks up, gates and writes one row as a single unit of work,
// so a code allocated for a failed insert is rolled back with it.
func (e *Engine) reconcileRow(ctx context.Context, p pass, s schema.ResourceSchema, row tabular.ImportRow, mode Mode) (string, error) {
	var outcome string
	err := p.store.InTx(ctx, func(ctx context.Context) error {
		existing, err := lookup(ctx, p.store, s, row.Fields)
		if err != nil {
			return err
		}

		if existing != nil {
			if mode == ModeInsertOnly {
				return &rowFailure{field: s.CodeField, message: fmt.Sprintf("record %s already exists", existing.Code)}
			}
			rec := merge(s, existing, row.Fields)
			if err := p.store.Update(ctx, s.ResourceType, rec); err != nil {
				return fmt.Errorf("update %s: %w", rec.Code, err)
			}
			outcome = outcomeUpdated
			return nil
		}

		if mode == ModeUpdateOnly {
			return &rowFailure{message: "record does not exist"}
		}

		rec := &Record{Fields: make(map[string]string, len(row.Fields)+1)}
		for k, v := range row.Fields {
			rec.Fields[k] = v
		}
		code := row.Fields[s.CodeField]
		if code == "" {
			code, err = p.codes.Allocate(ctx, s.ResourceType, s.Pattern, row.Fields[s.ParentCodeField])
			if err != nil {
				return fmt.Errorf("generate code: %w", err)
			}
		}
		rec.Fields[s.CodeField] = code
		index(s, rec)
		if err := p.store.Create(ctx, s.ResourceType, rec); err != nil {
			return fmt.Errorf("create %s: %w", code, err)
		}
		outcome = outcomeCreated
		return nil
	})
	return outcome, err
}

// lookup finds an existing record by explicit code, then primary key, then
// secondary key. The first match wins.
func lookup(ctx context.Context, store RecordStore, s schema.ResourceSchema, fields map[string]string) (*Record, error) {
	if code := fields[s.CodeField]; code != "" {
		rec, err := store.FindByCode(ctx, s.ResourceType, code)
		if err != nil || rec != nil {
			return rec, err
		}
	}
	if !s.KeyIsCodeOnly(s.PrimaryUniqueKey) {
		if key := KeyString(fields, s.PrimaryUniqueKey); key != "" {
			rec, err := store.FindByKey(ctx, s.ResourceType, KeyPrimary, key)
			if err != nil || rec != nil {
				return rec, err
			}
		}
	}
	if key := KeyString(fields, s.SecondaryUniqueKey); key != "" {
		return store.FindByKey(ctx, s.ResourceType, KeySecondary, key)
	}
	return nil, nil
}

// merge overlays incoming fields on a copy of existing. Fields absent from
// the row keep their stored value and the stored code is never replaced.
func merge(s schema.ResourceSchema, existing *Record, fields map[string]string) *Record {
	rec := existing.clone()
	for k, v := range fields {
		rec.Fields[k] = v
	}
	rec.Fields[s.CodeField] = existing.Code
	index(s, rec)
	return rec
}

// index derives the denormalized columns of rec from its fields.
func index(s schema.ResourceSchema, rec *Record) {
	rec.Code = rec.Fields[s.CodeField]
	if s.ParentCodeField != "" {
		rec.ParentCode = rec.Fields[s.ParentCodeField]
	}
	rec.PrimaryKey = KeyString(rec.Fields, s.PrimaryUniqueKey)
	rec.SecondaryKey = KeyString(rec.Fields, s.SecondaryUniqueKey)
}
