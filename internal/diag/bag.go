package diag

import (
	"cmp"
	"slices"
)

// Bag collects diagnostics up to a limit. It is not goroutine-safe; parallel
// phases report through a BagReporter.
type Bag struct {
	items      []Diagnostic
	max        int
	dropped    int
	droppedErr bool
}

func NewBag(maxItems int) *Bag {
	if maxItems <= 0 {
		maxItems = 1
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(maxItems, 64)),
		max:   maxItems,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если лимит достигнут; такие диагностики считает Dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		b.dropped++
		b.droppedErr = b.droppedErr || d.Severity >= SevError
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors reports whether any diagnostic, kept or dropped, has
// Severity >= SevError.
func (b *Bag) HasErrors() bool {
	return b.droppedErr || b.Count(SevError) > 0
}

// Count returns the number of kept diagnostics with severity sev.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == sev {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Dropped returns how many diagnostics Add rejected.
func (b *Bag) Dropped() int {
	return b.dropped
}

// Items возвращает read-only срез диагностик.
// Не модифицируйте его: он указывает на внутренний массив Bag.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sort orders by file, start, end, severity (desc), code (asc).
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup drops repeats of the same code, span and message. Items must be
// sorted.
func (b *Bag) Dedup() {
	b.items = slices.CompactFunc(b.items, func(x, y Diagnostic) bool {
		return x.Code == y.Code && x.Primary == y.Primary && x.Message == y.Message
	})
}
