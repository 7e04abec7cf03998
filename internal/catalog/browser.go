package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pageza/recetario/backend/internal/model"
)

// DefaultDebounce is how long the Browser waits after the last keystroke
// before searching.
const DefaultDebounce = 250 * time.Millisecond

// Snapshot is what a screen renders.
type Snapshot struct {
	Spec    FilterSpec
	Results []model.Recipe
	// Err is the last listing failure. Results keep the previous listing.
	Err     error
	Loading bool
	Seq     uint64
}

type BrowserOption func(*Browser)

func WithDebounce(d time.Duration) BrowserOption {
	return func(b *Browser) {
		if d >= 0 {
			b.debounce = d
		}
	}
}

// OnUpdate registers a callback run after every accepted response.
func OnUpdate(fn func(Snapshot)) BrowserOption {
	return func(b *Browser) { b.onUpdate = fn }
}

// Browser keeps a screen's filters and re-lists whenever they change. Text
// changes are debounced; the rest refresh at once. Every refresh gets a
// sequence number and cancels the one before it, and only the response
// carrying the latest number is applied.
type Browser struct {
	lister   Lister
	debounce time.Duration
	onUpdate func(Snapshot)

	mu      sync.Mutex
	spec    FilterSpec
	seq     uint64
	results []model.Recipe
	err     error
	loading bool
	cancel  context.CancelFunc
	timer   *time.Timer
	// timerGen identifies the live debounce timer. A callback carrying an
	// older generation was superseded and does nothing.
	timerGen uint64
	closed   bool
}

func NewBrowser(lister Lister, opts ...BrowserOption) *Browser {
	b := &Browser{
		lister:   lister,
		debounce: DefaultDebounce,
		results:  []model.Recipe{},
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// SetText changes the search prefix and schedules a refresh after the
// debounce interval. Calls inside the interval restart it.
func (b *Browser) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.spec.TextPrefix = text
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timerGen++
	gen := b.timerGen
	b.timer = time.AfterFunc(b.debounce, func() { b.fire(gen) })
}

// fire runs a debounce timer's refresh unless a later SetText or Refresh
// superseded the timer while the callback waited for the lock.
func (b *Browser) fire(gen uint64) {
	b.mu.Lock()
	if b.closed || gen != b.timerGen {
		b.mu.Unlock()
		return
	}
	b.refreshLocked()
}

func (b *Browser) SetTime(bucket model.TimeBucket) {
	b.update(func(s *FilterSpec) { s.TimeBucket = bucket })
}

func (b *Browser) SetCategory(c model.Category) {
	b.update(func(s *FilterSpec) { s.Category = c })
}

func (b *Browser) SetVegetarian(only bool) {
	b.update(func(s *FilterSpec) { s.VegetarianOnly = only })
}

func (b *Browser) SetSort(k SortKey) {
	b.update(func(s *FilterSpec) { s.SortKey = k })
}

func (b *Browser) SetLimit(n int) {
	b.update(func(s *FilterSpec) { s.Limit = n })
}

// Reset clears every filter and refreshes.
func (b *Browser) Reset() {
	b.update(func(s *FilterSpec) { *s = FilterSpec{} })
}

func (b *Browser) update(fn func(*FilterSpec)) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	fn(&b.spec)
	b.mu.Unlock()
	b.Refresh()
}

// Refresh issues a listing for the current filters right away.
func (b *Browser) Refresh() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.refreshLocked()
}

// refreshLocked is called with mu held and releases it.
func (b *Browser) refreshLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.timerGen++
	if b.cancel != nil {
		b.cancel()
	}
	b.seq++
	seq := b.seq
	spec := b.spec
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.loading = true
	b.mu.Unlock()

	go b.run(ctx, seq, spec)
}

func (b *Browser) run(ctx context.Context, seq uint64, spec FilterSpec) {
	results, err := b.lister.List(ctx, spec)

	b.mu.Lock()
	if b.closed || seq != b.seq {
		b.mu.Unlock()
		logrus.WithField("seq", seq).Debug("Discarding stale listing")
		return
	}
	if err != nil {
		b.err = err
	} else {
		b.results = results
		b.err = nil
	}
	b.loading = false
	b.cancel = nil
	snap := b.snapshotLocked()
	fn := b.onUpdate
	b.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

func (b *Browser) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Browser) snapshotLocked() Snapshot {
	results := make([]model.Recipe, len(b.results))
	copy(results, b.results)
	return Snapshot{
		Spec:    b.spec,
		Results: results,
		Err:     b.err,
		Loading: b.loading,
		Seq:     b.seq,
	}
}

// Close stops pending work. Responses arriving afterwards are dropped.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
	}
	if b.cancel != nil {
		b.cancel()
	}
}
