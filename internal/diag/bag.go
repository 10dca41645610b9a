package diag

import (
	"cmp"
	"slices"
)

// Bag collects diagnostics up to a limit; the rest are counted and dropped.
type Bag struct {
	items   []Diagnostic
	limit   int
	dropped int
}

// NewBag returns a bag holding at most limit diagnostics (100 when limit <= 0).
func NewBag(limit int) *Bag {
	if limit <= 0 {
		limit = 100
	}
	return &Bag{limit: limit}
}

// Add stores d and reports false once the limit has been reached.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.limit {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Force stores d past the limit. Used for bookkeeping entries such as timings.
func (b *Bag) Force(d Diagnostic) {
	b.items = append(b.items, d)
	b.limit = max(b.limit, len(b.items))
}

// Dropped counts diagnostics refused by Add.
func (b *Bag) Dropped() int { return b.dropped }

func (b *Bag) Len() int { return len(b.items) }

// Items aliases the bag storage; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

// Merge appends everything from other, raising the limit to fit.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
	b.limit = max(b.limit, len(b.items))
	b.dropped += other.dropped
}

// Sort puts diagnostics in source order; at one position errors come first.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.Origin, y.Primary.Origin),
			cmp.Compare(x.Primary.Line, y.Primary.Line),
			cmp.Compare(x.Primary.Column, y.Primary.Column),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup drops repeats of the same message and code reported at the same
// origin, line and column. Spans are ignored: one path loaded twice gets two
// file ids.
func (b *Bag) Dedup() {
	type key struct {
		code         Code
		origin, msg  string
		line, column uint32
	}
	seen := make(map[key]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := key{d.Code, d.Primary.Origin, d.Message, d.Primary.Line, d.Primary.Column}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}
