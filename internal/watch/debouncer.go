package watch

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// Debouncer batches file names and hands each batch to fn once no new
// name has arrived for the delay. Batches are delivered one at a time,
// sorted and without duplicates.
type Debouncer struct {
	delay time.Duration
	fn    func([]string)

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	closed  bool

	// held while fn runs
	deliver sync.Mutex
}

// NewDebouncer returns a debouncer that calls fn with every settled batch
func NewDebouncer(delay time.Duration, fn func([]string)) *Debouncer {
	return &Debouncer{
		delay:   delay,
		fn:      fn,
		pending: make(map[string]struct{}),
	}
}

// Add records a changed file and pushes the deadline back
func (d *Debouncer) Add(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.pending[name] = struct{}{}

	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fire)
		return
	}
	d.timer.Reset(d.delay)
}

func (d *Debouncer) fire() {
	d.deliver.Lock()
	defer d.deliver.Unlock()

	if batch := d.take(); len(batch) > 0 && d.fn != nil {
		d.fn(batch)
	}
}

// take empties the pending set
func (d *Debouncer) take() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || len(d.pending) == 0 {
		return nil
	}
	batch := slices.Sorted(maps.Keys(d.pending))
	clear(d.pending)
	return batch
}

// Stop discards the pending batch. Names added afterwards are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	clear(d.pending)
}
