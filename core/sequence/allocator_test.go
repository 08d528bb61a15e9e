package sequence

import (
	"context"
	"errors"
	"testing"
	"time"

	"refdata-manager/core/database"
	"refdata-manager/core/metrics"
	"refdata-manager/core/schema"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(year int, month time.Month) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, 15, 10, 0, 0, 0, time.UTC)
	}
}

func newTestAllocator() *Allocator {
	return NewAllocator(NewMemoryStore(), schema.DefaultRegistry(), WithClock(fixedClock(2024, time.March)))
}

func TestAllocator_Allocate(t *testing.T) {
	ctx := context.Background()

	t.Run("Primary Codes Are Sequential", func(t *testing.T) {
		a := newTestAllocator()
		first, err := a.Allocate(ctx, "docType", schema.PatternPrimary, "")
		require.NoError(t, err)
		second, err := a.Allocate(ctx, "docType", schema.PatternPrimary, "")
		require.NoError(t, err)

		assert.Equal(t, "DT-202403-000001", first)
		assert.Equal(t, "DT-202403-000002", second)
	})

	t.Run("Child Codes Embed Parent", func(t *testing.T) {
		a := newTestAllocator()
		code, err := a.Allocate(ctx, "regulationClause", schema.PatternChild, "RG-202403-000001")
		require.NoError(t, err)
		assert.Equal(t, "RG-202403-000001-RC-0001", code)

		other, err := a.Allocate(ctx, "regulationClause", schema.PatternChild, "RG-202403-000002")
		require.NoError(t, err)
		assert.Equal(t, "RG-202403-000002-RC-0001", other, "each parent has its own counter")
	})

	t.Run("Month Rollover Restarts Sequence", func(t *testing.T) {
		store := NewMemoryStore()
		march := NewAllocator(store, schema.DefaultRegistry(), WithClock(fixedClock(2024, time.March)))
		april := NewAllocator(store, schema.DefaultRegistry(), WithClock(fixedClock(2024, time.April)))

		_, err := march.Allocate(ctx, "auditRule", schema.PatternPrimary, "")
		require.NoError(t, err)
		code, err := april.Allocate(ctx, "auditRule", schema.PatternPrimary, "")
		require.NoError(t, err)
		assert.Equal(t, "AR-202404-000001", code)
	})

	t.Run("Errors", func(t *testing.T) {
		a := newTestAllocator()

		_, err := a.Allocate(ctx, "nope", schema.PatternPrimary, "")
		assert.ErrorIs(t, err, ErrUnknownResourceType)

		_, err = a.Allocate(ctx, "regulationClause", schema.PatternChild, "  ")
		assert.ErrorIs(t, err, ErrParentCodeRequired)

		_, err = a.Allocate(ctx, "docType", schema.Pattern("weekly"), "")
		assert.ErrorIs(t, err, ErrInvalidPattern)

		_, err = a.AllocateBatch(ctx, "docType", schema.PatternPrimary, 0, "")
		assert.ErrorIs(t, err, ErrInvalidCount)
	})

	t.Run("Oversized Batch", func(t *testing.T) {
		a := newTestAllocator()

		for _, count := range []int{MaxBatch + 1, 1 << 62} {
			_, err := a.AllocateBatch(ctx, "docType", schema.PatternPrimary, count, "")
			assert.ErrorIs(t, err, ErrInvalidCount)
		}

		codes, err := a.AllocateBatch(ctx, "docType", schema.PatternPrimary, MaxBatch, "")
		require.NoError(t, err)
		assert.Len(t, codes, MaxBatch)
		assert.Equal(t, "DT-202403-000001", codes[0], "rejected batches reserve nothing")
	})
}

func TestAllocator_AllocateBatch(t *testing.T) {
	a := newTestAllocator()
	ctx := context.Background()
	before := testutil.ToFloat64(metrics.CodesAllocated.WithLabelValues("regulation", "primary"))

	codes, err := a.AllocateBatch(ctx, "regulation", schema.PatternPrimary, 3, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"RG-202403-000001", "RG-202403-000002", "RG-202403-000003"}, codes)

	after := testutil.ToFloat64(metrics.CodesAllocated.WithLabelValues("regulation", "primary"))
	assert.Equal(t, 3.0, after-before)
}

func TestAllocator_MetricCountsCommittedCodes(t *testing.T) {
	store, db := setupStore(t)
	a := NewAllocator(store, schema.DefaultRegistry(), WithClock(fixedClock(2024, time.March)))
	ctx := context.Background()
	allocated := func() float64 {
		return testutil.ToFloat64(metrics.CodesAllocated.WithLabelValues("auditRule", "primary"))
	}
	before := allocated()

	err := database.InTx(ctx, db, func(ctx context.Context) error {
		if _, err := a.AllocateBatch(ctx, "auditRule", schema.PatternPrimary, 2, ""); err != nil {
			return err
		}
		return errors.New("insert failed")
	})
	require.Error(t, err)
	assert.Equal(t, 0.0, allocated()-before, "rolled back codes are not counted")

	err = database.InTx(ctx, db, func(ctx context.Context) error {
		_, err := a.AllocateBatch(ctx, "auditRule", schema.PatternPrimary, 2, "")
		assert.Equal(t, 0.0, allocated()-before, "counted only after commit")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, allocated()-before)
}

func TestAllocator_Preview(t *testing.T) {
	a := newTestAllocator()
	ctx := context.Background()

	preview, err := a.Preview(ctx, "docType", schema.PatternPrimary, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "DT-202403-000001", preview)

	preview, err = a.Preview(ctx, "docType", schema.PatternPrimary, "", 2)
	require.NoError(t, err)
	assert.Equal(t, "DT-202403-000003", preview)

	code, err := a.Allocate(ctx, "docType", schema.PatternPrimary, "")
	require.NoError(t, err)
	assert.Equal(t, "DT-202403-000001", code, "preview must not reserve")
}

func TestAllocator_Scope(t *testing.T) {
	a := newTestAllocator()

	scope, err := a.Scope("docType", schema.PatternPrimary, "")
	require.NoError(t, err)
	assert.Equal(t, "docType:202403", scope)

	scope, err = a.Scope("reviewItem", schema.PatternChild, "AR-202403-000009")
	require.NoError(t, err)
	assert.Equal(t, "reviewItem:AR-202403-000009", scope)
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want ParsedCode
		ok   bool
	}{
		{"Primary", "DT-202403-000042", ParsedCode{Pattern: schema.PatternPrimary, Prefix: "DT", YearMonth: "202403", Seq: 42}, true},
		{"Primary Overflow Width", "DT-202403-1234567", ParsedCode{Pattern: schema.PatternPrimary, Prefix: "DT", YearMonth: "202403", Seq: 1234567}, true},
		{"Child", "RG-202403-000001-RC-0007", ParsedCode{Pattern: schema.PatternChild, Prefix: "RC", ParentCode: "RG-202403-000001", Seq: 7}, true},
		{"Bad Month", "DT-202413-000001", ParsedCode{}, false},
		{"Zero Seq", "DT-202403-000000", ParsedCode{}, false},
		{"Lower Case", "dt-202403-000001", ParsedCode{}, false},
		{"Foreign", "DOC-1", ParsedCode{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCode(tt.code)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCode_RoundTrip(t *testing.T) {
	primary := RenderPrimary("AR", "202512", 31)
	parsed, ok := ParseCode(primary)
	require.True(t, ok)
	assert.Equal(t, primary, RenderPrimary(parsed.Prefix, parsed.YearMonth, parsed.Seq))

	child := RenderChild(primary, "RI", 3)
	parsed, ok = ParseCode(child)
	require.True(t, ok)
	assert.Equal(t, child, RenderChild(parsed.ParentCode, parsed.Prefix, parsed.Seq))
}
