package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"retailops/internal/repositories"
)

// PrefixFunc derives the day-scoped order number prefix from a day.
type PrefixFunc func(day time.Time) string

// orderNumberSuffixDigits is the width of the per-day sequence appended
// to the prefix. The first order of a fresh day-prefix is
// prefix || "00000".
const orderNumberSuffixDigits = 5

// DayPrefix is the default prefix transform: format the day as YYYYMMDD
// and increment the digit at index 4 by 3.
//
// The increment is an opaque historical encoding inherited from the
// legacy order numbering, not a calendar computation. It only claims to
// be deterministic and collision-free per day; do not read fiscal
// meaning into it. The month tens digit is 0 or 1, so the add never
// carries.
func DayPrefix(day time.Time) string {
	s := []byte(day.Format("20060102"))
	s[4] += 3
	return string(s)
}

// NumberAllocator hands out day-scoped, monotonically increasing order
// numbers. It is safe only under sequential invocation; concurrent
// callers are serialized by the unique constraint on the order number,
// with the order service retrying allocation once on a collision.
type NumberAllocator interface {
	Next(ctx context.Context, day time.Time, count int) ([]int64, error)
}

type numberAllocator struct {
	orderRepo repositories.OrderRepository
	prefix    PrefixFunc
}

// NewNumberAllocator creates an allocator using the default DayPrefix
// transform.
func NewNumberAllocator(orderRepo repositories.OrderRepository) NumberAllocator {
	return &numberAllocator{orderRepo: orderRepo, prefix: DayPrefix}
}

// NewNumberAllocatorWithPrefix creates an allocator with a custom
// prefix transform.
func NewNumberAllocatorWithPrefix(orderRepo repositories.OrderRepository, prefix PrefixFunc) NumberAllocator {
	return &numberAllocator{orderRepo: orderRepo, prefix: prefix}
}

// Next returns count consecutive order numbers for the given day. The
// first number is the highest existing number under the day-prefix plus
// one, or prefix||00000 when none exist yet.
func (a *numberAllocator) Next(ctx context.Context, day time.Time, count int) ([]int64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("order number count must be positive, got %d", count)
	}
	prefix := a.prefix(day)

	low, err := strconv.ParseInt(prefix+"00000", 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid order number prefix %q: %w", prefix, err)
	}
	high, err := strconv.ParseInt(prefix+"99999", 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid order number prefix %q: %w", prefix, err)
	}

	last, err := a.orderRepo.LastNumberInRange(ctx, low, high)
	if err != nil {
		return nil, fmt.Errorf("query last order number for prefix %s: %w", prefix, err)
	}

	base := low
	if last != 0 {
		base = last + 1
	}
	if base+int64(count)-1 > high {
		return nil, fmt.Errorf("order numbers exhausted for prefix %s", prefix)
	}

	numbers := make([]int64, count)
	for i := range numbers {
		numbers[i] = base + int64(i)
	}
	return numbers, nil
}
