package watch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// recorder collects the batches a debouncer delivers
type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) record(batch []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batch)
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.batches...)
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	var rec recorder
	d := NewDebouncer(50*time.Millisecond, rec.record)

	d.Add("order.go")
	d.Add("account.go")
	d.Add("order.go")

	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"account.go", "order.go"}, rec.snapshot()[0])
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	var rec recorder
	d := NewDebouncer(30*time.Millisecond, rec.record)

	d.Add("a.go")
	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	d.Add("b.go")
	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, [][]string{{"a.go"}, {"b.go"}}, rec.snapshot())
}

func TestDebouncer_Stop(t *testing.T) {
	var rec recorder
	d := NewDebouncer(20*time.Millisecond, rec.record)

	d.Add("a.go")
	d.Stop()
	d.Add("b.go")
	time.Sleep(60 * time.Millisecond)

	assert.Empty(t, rec.snapshot())
}

func TestDebouncer_NilCallback(t *testing.T) {
	d := NewDebouncer(time.Millisecond, nil)
	d.Add("a.go")
	time.Sleep(10 * time.Millisecond)
	d.Stop()
}

func BenchmarkDebouncer_Add(b *testing.B) {
	d := NewDebouncer(time.Second, func([]string) {})
	defer d.Stop()

	for i := 0; i < b.N; i++ {
		d.Add("account.go")
	}
}
