package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"refdata-manager/core/database"
	"refdata-manager/core/metrics"
	"refdata-manager/core/schema"

	"go.uber.org/zap"
)

var (
	// ErrUnknownResourceType is returned when a resource type has no registered code prefix.
	ErrUnknownResourceType = errors.New("unknown resource type")
	// ErrParentCodeRequired is returned when a child code is requested without a parent code.
	ErrParentCodeRequired = errors.New("parent code required for child pattern")
	// ErrInvalidCount is returned when a batch size is outside 1..MaxBatch.
	ErrInvalidCount = errors.New("allocation count out of range")
	// ErrInvalidPattern is returned for a pattern other than primary or child.
	ErrInvalidPattern = errors.New("invalid code pattern")
)

// MaxBatch is the largest number of codes a single allocation may reserve.
const MaxBatch = 1000

func checkCount(count int) error {
	if count < 1 || count > MaxBatch {
		return fmt.Errorf("%w: %d not in 1..%d", ErrInvalidCount, count, MaxBatch)
	}
	return nil
}

// PrefixLookup resolves the code prefix of a resource type.
type PrefixLookup interface {
	Prefix(resourceType string) (string, bool)
}

// Allocator issues human-readable codes backed by a Store.
type Allocator struct {
	store    Store
	prefixes PrefixLookup
	now      func() time.Time
	logger   *zap.Logger
}

// Option customizes an Allocator.
type Option func(*Allocator)

// WithClock replaces the clock used to derive the month segment.
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Allocator) { a.logger = l }
}

// NewAllocator creates an allocator over store.
func NewAllocator(store Store, prefixes PrefixLookup, opts ...Option) *Allocator {
	a := &Allocator{
		store:    store,
		prefixes: prefixes,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// target is a resolved allocation request.
type target struct {
	prefix     string
	scope      string
	pattern    schema.Pattern
	yearMonth  string
	parentCode string
}

func (t target) render(seq int64) string {
	if t.pattern == schema.PatternChild {
		return RenderChild(t.parentCode, t.prefix, seq)
	}
	return RenderPrimary(t.prefix, t.yearMonth, seq)
}

// resolve validates the request and computes its scope. The month is read
// from the clock once so a batch never straddles two scopes.
func (a *Allocator) resolve(resourceType string, pattern schema.Pattern, parentCode string) (target, error) {
	prefix, ok := a.prefixes.Prefix(resourceType)
	if !ok {
		return target{}, fmt.Errorf("%w: %s", ErrUnknownResourceType, resourceType)
	}

	t := target{prefix: prefix, pattern: pattern}
	switch pattern {
	case schema.PatternPrimary:
		t.yearMonth = a.now().Format(YearMonthLayout)
		t.scope = resourceType + ":" + t.yearMonth
	case schema.PatternChild:
		t.parentCode = strings.TrimSpace(parentCode)
		if t.parentCode == "" {
			return target{}, fmt.Errorf("%w: %s", ErrParentCodeRequired, resourceType)
		}
		t.scope = resourceType + ":" + t.parentCode
	default:
		return target{}, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	return t, nil
}

// Scope returns the counter scope a request would draw from.
func (a *Allocator) Scope(resourceType string, pattern schema.Pattern, parentCode string) (string, error) {
	t, err := a.resolve(resourceType, pattern, parentCode)
	if err != nil {
		return "", err
	}
	return t.scope, nil
}

// Allocate issues one code.
func (a *Allocator) Allocate(ctx context.Context, resourceType string, pattern schema.Pattern, parentCode string) (string, error) {
	codes, err := a.AllocateBatch(ctx, resourceType, pattern, 1, parentCode)
	if err != nil {
		return "", err
	}
	return codes[0], nil
}

// AllocateBatch issues count consecutive codes from a single scope.
func (a *Allocator) AllocateBatch(ctx context.Context, resourceType string, pattern schema.Pattern, count int, parentCode string) ([]string, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	t, err := a.resolve(resourceType, pattern, parentCode)
	if err != nil {
		return nil, err
	}

	start, err := a.store.AllocateNext(ctx, t.scope, count)
	if err != nil {
		return nil, fmt.Errorf("allocate %s: %w", t.scope, err)
	}

	codes := make([]string, count)
	for i := range codes {
		codes[i] = t.render(start + int64(i))
	}

	// Codes reserved inside a transaction only count once it commits.
	database.AfterCommit(ctx, func() {
		metrics.CodesAllocated.WithLabelValues(resourceType, string(pattern)).Add(float64(count))
	})
	a.logger.Debug("Allocated codes",
		zap.String("scope", t.scope),
		zap.Int64("start", start),
		zap.Int("count", count),
	)
	return codes, nil
}

// Preview returns the code that would be issued offset allocations from now
// without reserving anything. Concurrent writers may take it first.
func (a *Allocator) Preview(ctx context.Context, resourceType string, pattern schema.Pattern, parentCode string, offset int) (string, error) {
	t, err := a.resolve(resourceType, pattern, parentCode)
	if err != nil {
		return "", err
	}
	next, err := a.store.Peek(ctx, t.scope)
	if err != nil {
		return "", fmt.Errorf("peek %s: %w", t.scope, err)
	}
	return t.render(next + int64(offset)), nil
}
