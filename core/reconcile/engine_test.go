package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"refdata-manager/core/schema"
	"refdata-manager/core/sequence"
	"refdata-manager/core/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory RecordStore.
type memStore struct {
	records  []*Record
	nextID   int
	failCode string
	writes   int
}

func (m *memStore) find(pred func(*Record) bool) *Record {
	for _, r := range m.records {
		if pred(r) {
			return r.clone()
		}
	}
	return nil
}

func (m *memStore) FindByCode(_ context.Context, _ string, code string) (*Record, error) {
	return m.find(func(r *Record) bool { return r.Code == code }), nil
}

func (m *memStore) FindByKey(_ context.Context, _ string, kind KeyKind, key string) (*Record, error) {
	return m.find(func(r *Record) bool { return keyOf(r, kind) == key }), nil
}

func (m *memStore) Create(_ context.Context, _ string, rec *Record) error {
	if rec.Code == m.failCode {
		return errors.New("disk full")
	}
	if m.find(func(r *Record) bool { return r.Code == rec.Code }) != nil {
		return ErrCodeTaken
	}
	m.nextID++
	rec.ID = fmt.Sprintf("id-%d", m.nextID)
	m.records = append(m.records, rec.clone())
	m.writes++
	return nil
}

func (m *memStore) Update(_ context.Context, _ string, rec *Record) error {
	for i, r := range m.records {
		if r.ID == rec.ID {
			m.records[i] = rec.clone()
			m.writes++
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *memStore) snapshot() *memStore {
	c := &memStore{nextID: m.nextID, failCode: m.failCode}
	for _, r := range m.records {
		c.records = append(c.records, r.clone())
	}
	return c
}

func newAllocator(store sequence.Store) *sequence.Allocator {
	return sequence.NewAllocator(store, schema.DefaultRegistry(), sequence.WithClock(func() time.Time {
		return time.Date(2026, time.January, 20, 9, 0, 0, 0, time.UTC)
	}))
}

func exampleSchema() schema.ResourceSchema {
	return schema.ResourceSchema{
		ResourceType:     "docType",
		CodeField:        "code",
		Pattern:          schema.PatternPrimary,
		PrimaryUniqueKey: []string{"code"},
		Columns: []schema.Column{
			{Header: "Code", Field: "code"},
			{Header: "Name", Field: "name", Required: true},
		},
	}
}

func namedSchema() schema.ResourceSchema {
	s := exampleSchema()
	s.SecondaryUniqueKey = []string{"name"}
	return s
}

func row(n int, fields map[string]string) tabular.ImportRow {
	return tabular.ImportRow{RowNumber: n, Fields: fields}
}

func run(t *testing.T, e *Engine, s schema.ResourceSchema, mode Mode, dryRun bool, rows ...tabular.ImportRow) *ImportResult {
	t.Helper()
	res, err := e.Reconcile(context.Background(), NewSliceSource(rows), s, Options{Mode: mode, DryRun: dryRun})
	require.NoError(t, err)
	return res
}

func TestReconcile_ExampleScenario(t *testing.T) {
	store := &memStore{}
	engine := NewEngine(store, newAllocator(sequence.NewMemoryStore()), nil)
	s := exampleSchema()

	rows := []tabular.ImportRow{
		row(2, map[string]string{"name": "Contract"}),
		row(3, map[string]string{"code": "DT-202512-000001", "name": "Contract v2"}),
	}

	first := run(t, engine, s, ModeUpsert, false, rows...)
	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 2, first.Success)
	require.NotNil(t, store.find(func(r *Record) bool { return r.Code == "DT-202601-000001" }))
	require.NotNil(t, store.find(func(r *Record) bool { return r.Code == "DT-202512-000001" }), "explicit code is kept verbatim")

	second := run(t, engine, s, ModeUpsert, false, rows...)
	assert.Equal(t, 1, second.Created, "blank code is never matched by content")
	assert.Equal(t, 1, second.Updated)
	assert.NotNil(t, store.find(func(r *Record) bool { return r.Code == "DT-202601-000002" }))
	assert.Len(t, store.records, 3)
}

func TestReconcile_ExplicitCodeOfEarlierRow(t *testing.T) {
	// Rows are looked up one at a time against the store as it stands after
	// the previous row. Row 2 takes DT-202601-000001 from the fresh counter,
	// so row 3 naming that code finds it and updates instead of creating a
	// second record. Only a code no earlier row produced is created verbatim.
	store := &memStore{}
	engine := NewEngine(store, newAllocator(sequence.NewMemoryStore()), nil)

	res := run(t, engine, exampleSchema(), ModeUpsert, false,
		row(2, map[string]string{"name": "Contract"}),
		row(3, map[string]string{"code": "DT-202601-000001", "name": "Contract v2"}),
	)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated, "row 3 observes the record row 2 created")
	require.Len(t, store.records, 1)
	assert.Equal(t, "Contract v2", store.records[0].Fields["name"])
}

func TestReconcile_DuplicateOrder(t *testing.T) {
	store := &memStore{}
	engine := NewEngine(store, newAllocator(sequence.NewMemoryStore()), nil)

	res := run(t, engine, exampleSchema(), ModeUpsert, false,
		row(1, map[string]string{"code": "DT-202601-000010", "name": "A"}),
		row(2, map[string]string{"code": "DT-202601-000010", "name": "A again"}),
		row(3, map[string]string{"code": "DT-202601-000011", "name": "B"}),
	)

	assert.Equal(t, []DuplicateRow{{Row: 2, DuplicateOfRow: 1, UniqueKey: "code=DT-202601-000010"}}, res.DuplicateRows)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, res.Created)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 2, store.writes, "duplicate never reaches the store")
}

func TestReconcile_BlankKeysAreNotDuplicates(t *testing.T) {
	engine := NewEngine(&memStore{}, newAllocator(sequence.NewMemoryStore()), nil)

	res := run(t, engine, exampleSchema(), ModeUpsert, false,
		row(1, map[string]string{"name": "Same"}),
		row(2, map[string]string{"name": "Same"}),
	)
	assert.Equal(t, 2, res.Created)
	assert.Empty(t, res.DuplicateRows)
}

func TestReconcile_ModeGates(t *testing.T) {
	seed := func() *memStore {
		return &memStore{records: []*Record{{
			ID: "id-0", Code: "DT-202601-000001", PrimaryKey: "code=DT-202601-000001",
			Fields: map[string]string{"code": "DT-202601-000001", "name": "Old", "category": "legal"},
		}}}
	}
	existing := row(2, map[string]string{"code": "DT-202601-000001", "name": "New"})
	absent := row(3, map[string]string{"code": "DT-202601-000099", "name": "Fresh"})

	t.Run("Insert Only", func(t *testing.T) {
		store := seed()
		engine := NewEngine(store, newAllocator(sequence.NewMemoryStore()), nil)
		res := run(t, engine, exampleSchema(), ModeInsertOnly, false, existing, absent)

		assert.Equal(t, 1, res.Created)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, []RowError{{Row: 2, Field: "code", Message: "record DT-202601-000001 already exists"}}, res.Errors)
		assert.Equal(t, "Old", store.records[0].Fields["name"])
	})

	t.Run("Update Only", func(t *testing.T) {
		store := seed()
		engine := NewEngine(store, newAllocator(sequence.NewMemoryStore()), nil)
		res := run(t, engine, exampleSchema(), ModeUpdateOnly, false, existing, absent)

		assert.Equal(t, 1, res.Updated)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, []RowError{{Row: 3, Message: "record does not exist"}}, res.Errors)
		assert.Len(t, store.records, 1)
	})

	t.Run("Upsert Merges", func(t *testing.T) {
		store := seed()
		engine := NewEngine(store, newAllocator(sequence.NewMemoryStore()), nil)
		res := run(t, engine, exampleSchema(), ModeUpsert, false, existing, absent)

		assert.Equal(t, 1, res.Updated)
		assert.Equal(t, 1, res.Created)
		assert.Equal(t, map[string]string{"code": "DT-202601-000001", "name": "New", "category": "legal"}, store.records[0].Fields)
	})

	t.Run("Invalid Mode", func(t *testing.T) {
		engine := NewEngine(seed(), newAllocator(sequence.NewMemoryStore()), nil)
		_, err := engine.Reconcile(context.Background(), NewSliceSource(nil), exampleSchema(), Options{Mode: "merge"})
		assert.ErrorIs(t, err, ErrInvalidMode)
	})
}

func TestReconcile_UpsertIdempotent(t *testing.T) {
	store := &memStore{}
	engine := NewEngine(store, newAllocator(sequence.NewMemoryStore()), nil)
	rows := []tabular.ImportRow{
		row(2, map[string]string{"code": "DT-202601-000001", "name": "A"}),
		row(3, map[string]string{"code": "DT-202601-000002", "name": "B"}),
	}

	first := run(t, engine, exampleSchema(), ModeUpsert, false, rows...)
	assert.Equal(t, 2, first.Created)

	second := run(t, engine, exampleSchema(), ModeUpsert, false, rows...)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)
	assert.Len(t, store.records, 2)
}

func TestReconcile_DryRunEquivalence(t *testing.T) {
	base := &memStore{records: []*Record{{
		ID: "id-0", Code: "DT-202601-000001", PrimaryKey: "code=DT-202601-000001", SecondaryKey: "name=Contract",
		Fields: map[string]string{"code": "DT-202601-000001", "name": "Contract"},
	}}, nextID: 1}
	counters := func() sequence.Store {
		st := sequence.NewMemoryStore()
		_, err := st.AllocateNext(context.Background(), "docType:202601", 1)
		require.NoError(t, err)
		return st
	}

	rows := []tabular.ImportRow{
		row(2, map[string]string{"name": "Contract"}),
		row(3, map[string]string{"name": "Invoice"}),
		row(4, map[string]string{"code": "DT-202601-000050", "name": "Drawing"}),
		row(5, map[string]string{"name": "Drawing"}),
		row(6, map[string]string{"name": "Invoice"}),
		row(7, map[string]string{"name": "Memo"}),
		{RowNumber: 8, Fields: map[string]string{}, Errors: []tabular.FieldError{{Field: "name", Message: "Name is required"}}},
	}

	for _, mode := range []Mode{ModeUpsert, ModeInsertOnly, ModeUpdateOnly} {
		t.Run(string(mode), func(t *testing.T) {
			dryStore, dryCounters := base.snapshot(), counters()
			realStore, realCounters := base.snapshot(), counters()

			dry := run(t, NewEngine(dryStore, newAllocator(dryCounters), nil), namedSchema(), mode, true, rows...)
			live := run(t, NewEngine(realStore, newAllocator(realCounters), nil), namedSchema(), mode, false, rows...)

			assert.True(t, dry.IsDryRun)
			assert.False(t, live.IsDryRun)
			dry.IsDryRun = false
			assert.Equal(t, live, dry)

			assert.Equal(t, 0, dryStore.writes)
			assert.Equal(t, base.records, dryStore.records)
			next, err := dryCounters.Peek(context.Background(), "docType:202601")
			require.NoError(t, err)
			assert.Equal(t, int64(2), next, "dry run must not advance counters")
		})
	}
}

func TestReconcile_CodeCollisionReportsMatch(t *testing.T) {
	rows := []tabular.ImportRow{
		row(2, map[string]string{"code": "DT-202601-000001", "name": "Explicit"}),
		row(3, map[string]string{"name": "Generated"}),
	}

	dry := run(t, NewEngine(&memStore{}, newAllocator(sequence.NewMemoryStore()), nil), exampleSchema(), ModeUpsert, true, rows...)
	live := run(t, NewEngine(&memStore{}, newAllocator(sequence.NewMemoryStore()), nil), exampleSchema(), ModeUpsert, false, rows...)

	require.Len(t, live.Errors, 1)
	assert.Equal(t, RowError{Row: 3, Field: "code", Message: "create DT-202601-000001: code already taken"}, live.Errors[0])
	assert.Equal(t, live.Errors, dry.Errors)
	assert.Equal(t, live.Created, dry.Created)
	assert.Equal(t, live.Failed, dry.Failed)
}

func TestReconcile_DryRunPreviewsSequentialCodes(t *testing.T) {
	store := &memStore{}
	counters := sequence.NewMemoryStore()
	engine := NewEngine(store, newAllocator(counters), nil)

	res := run(t, engine, namedSchema(), ModeUpsert, true,
		row(2, map[string]string{"name": "A"}),
		row(3, map[string]string{"name": "B"}),
		row(4, map[string]string{"code": "DT-202601-000001", "name": "A2"}),
	)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Updated, "row 4 matches the code previewed for row 2")
	assert.Empty(t, store.records)
}

func TestReconcile_RowErrorsDoNotAbort(t *testing.T) {
	store := &memStore{failCode: "DT-202601-000002"}
	engine := NewEngine(store, newAllocator(sequence.NewMemoryStore()), nil)

	res := run(t, engine, exampleSchema(), ModeUpsert, false,
		tabular.ImportRow{RowNumber: 2, Fields: map[string]string{"code": "DT-202601-000009"}, Errors: []tabular.FieldError{{Field: "name", Message: "Name is required"}}},
		row(3, map[string]string{"code": "DT-202601-000002", "name": "Broken"}),
		row(4, map[string]string{"name": "Fine"}),
	)

	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, RowError{Row: 2, Field: "name", Message: "Name is required"}, res.Errors[0])
	assert.Equal(t, 3, res.Errors[1].Row)
	assert.Contains(t, res.Errors[1].Message, "disk full")
	assert.Equal(t, 3, res.Total())
}

func TestReconcile_ChildCodes(t *testing.T) {
	store := &memStore{}
	engine := NewEngine(store, newAllocator(sequence.NewMemoryStore()), nil)
	s, err := schema.DefaultRegistry().Schema(schema.TypeRegulationClause)
	require.NoError(t, err)

	res := run(t, engine, s, ModeUpsert, false,
		row(2, map[string]string{"regulationCode": "RG-202601-000001", "clauseNumber": "1.1", "content": "a"}),
		row(3, map[string]string{"regulationCode": "RG-202601-000001", "clauseNumber": "1.2", "content": "b"}),
		row(4, map[string]string{"regulationCode": "RG-202601-000002", "clauseNumber": "1.1", "content": "c"}),
		row(5, map[string]string{"regulationCode": "RG-202601-000001", "clauseNumber": "1.1", "content": "dup"}),
	)

	assert.Equal(t, 3, res.Created)
	assert.Equal(t, []DuplicateRow{{Row: 5, DuplicateOfRow: 2, UniqueKey: "regulationCode=RG-202601-000001|clauseNumber=1.1"}}, res.DuplicateRows)

	codes := make([]string, 0, len(store.records))
	for _, r := range store.records {
		codes = append(codes, r.Code)
		assert.Equal(t, r.Fields["regulationCode"], r.ParentCode)
	}
	assert.Equal(t, []string{"RG-202601-000001-RC-0001", "RG-202601-000001-RC-0002", "RG-202601-000002-RC-0001"}, codes)
}

func TestReconcile_CancelledContext(t *testing.T) {
	engine := NewEngine(&memStore{}, newAllocator(sequence.NewMemoryStore()), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Reconcile(ctx, NewSliceSource([]tabular.ImportRow{row(2, map[string]string{"name": "A"})}), exampleSchema(), Options{Mode: ModeUpsert})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeUpsert, "UPSERT": ModeUpsert, "insertOnly": ModeInsertOnly, "update_only": ModeUpdateOnly} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("replace")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestDedupKey(t *testing.T) {
	s := schema.ResourceSchema{
		CodeField:          "code",
		PrimaryUniqueKey:   []string{"name", "kind"},
		SecondaryUniqueKey: []string{"alias"},
	}

	assert.Equal(t, "code=X", DedupKey(s, map[string]string{"code": "X", "name": "n", "kind": "k"}))
	assert.Equal(t, "name=n|kind=k", DedupKey(s, map[string]string{"name": "n", "kind": "k", "alias": "a"}))
	assert.Equal(t, "alias=a", DedupKey(s, map[string]string{"name": "n", "alias": "a"}))
	assert.Equal(t, "", DedupKey(s, map[string]string{"name": "n"}))
}
