package reconcile

import (
	"context"
	"fmt"
	"maps"

	"refdata-manager/core/schema"
)

// dryRun stands in for both the record store and the code source during a
// dry run. Reads fall through to the real store; writes land in an in-memory
// overlay so later rows of the batch observe earlier ones exactly as they
// would after a real commit. Codes are previewed from the counters plus a
// per-scope offset instead of being allocated.
type dryRun struct {
	store RecordStore
	codes CodeSource

	byCode  map[string]*Record
	byKey   map[KeyKind]map[string]*Record
	offsets map[string]int
	nextID  int
}

func newDryRun(store RecordStore, codes CodeSource) *dryRun {
	return &dryRun{
		store:   store,
		codes:   codes,
		byCode:  make(map[string]*Record),
		byKey:   map[KeyKind]map[string]*Record{KeyPrimary: {}, KeySecondary: {}},
		offsets: make(map[string]int),
	}
}

func keyOf(rec *Record, kind KeyKind) string {
	if kind == KeyPrimary {
		return rec.PrimaryKey
	}
	return rec.SecondaryKey
}

// shadow replaces a stored record with its overlay version, if any.
func (d *dryRun) shadow(rec *Record) *Record {
	if rec == nil {
		return nil
	}
	if o, ok := d.byCode[rec.Code]; ok {
		return o.clone()
	}
	return rec
}

func (d *dryRun) FindByCode(ctx context.Context, resourceType, code string) (*Record, error) {
	if o, ok := d.byCode[code]; ok {
		return o.clone(), nil
	}
	return d.store.FindByCode(ctx, resourceType, code)
}

func (d *dryRun) FindByKey(ctx context.Context, resourceType string, kind KeyKind, key string) (*Record, error) {
	if o, ok := d.byKey[kind][key]; ok {
		return o.clone(), nil
	}
	rec, err := d.store.FindByKey(ctx, resourceType, kind, key)
	if err != nil || rec == nil {
		return nil, err
	}
	// The overlay may already have moved this record off the key.
	rec = d.shadow(rec)
	if keyOf(rec, kind) != key {
		return nil, nil
	}
	return rec, nil
}

func (d *dryRun) Create(ctx context.Context, resourceType string, rec *Record) error {
	existing, err := d.FindByCode(ctx, resourceType, rec.Code)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrCodeTaken
	}
	d.nextID++
	rec.ID = fmt.Sprintf("dry-run-%d", d.nextID)
	d.put(rec)
	return nil
}

func (d *dryRun) Update(_ context.Context, _ string, rec *Record) error {
	if old, ok := d.byCode[rec.Code]; ok {
		for _, kind := range []KeyKind{KeyPrimary, KeySecondary} {
			if k := keyOf(old, kind); k != "" && d.byKey[kind][k] == old {
				delete(d.byKey[kind], k)
			}
		}
	}
	d.put(rec)
	return nil
}

func (d *dryRun) put(rec *Record) {
	c := rec.clone()
	d.byCode[c.Code] = c
	for _, kind := range []KeyKind{KeyPrimary, KeySecondary} {
		if k := keyOf(c, kind); k != "" {
			d.byKey[kind][k] = c
		}
	}
}

// InTx discards preview offsets consumed by a failed row, mirroring the
// rollback of a real allocation. Overlay writes are always the last step of
// a row and need no undo.
func (d *dryRun) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := maps.Clone(d.offsets)
	if err := fn(ctx); err != nil {
		d.offsets = saved
		return err
	}
	return nil
}

func (d *dryRun) Allocate(ctx context.Context, resourceType string, pattern schema.Pattern, parentCode string) (string, error) {
	scope, err := d.codes.Scope(resourceType, pattern, parentCode)
	if err != nil {
		return "", err
	}
	code, err := d.codes.Preview(ctx, resourceType, pattern, parentCode, d.offsets[scope])
	if err != nil {
		return "", err
	}
	d.offsets[scope]++
	return code, nil
}

func (d *dryRun) Preview(ctx context.Context, resourceType string, pattern schema.Pattern, parentCode string, offset int) (string, error) {
	return d.codes.Preview(ctx, resourceType, pattern, parentCode, offset)
}

func (d *dryRun) Scope(resourceType string, pattern schema.Pattern, parentCode string) (string, error) {
	return d.codes.Scope(resourceType, pattern, parentCode)
}
