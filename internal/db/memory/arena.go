package memory

import (
	"sync"
	"sync/atomic"

	"github.com/kailas-cloud/semsearch/internal/db"
)

// arena is an append-only list. Writers fill slots past the published length
// and then publish a longer slice header; readers load the header and only
// touch slots below its length, which are never written again.
type arena struct {
	mu        sync.Mutex
	published atomic.Pointer[[]string]
}

func newArena() *arena {
	a := &arena{}
	empty := make([]string, 0, 16)
	a.published.Store(&empty)
	return a
}

func (a *arena) append(values []string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	cur := *a.published.Load()
	next := append(cur, values...)
	a.published.Store(&next)
	return int64(len(next))
}

func (a *arena) view() []string {
	return *a.published.Load()
}

func (a *arena) slice(start, stop int64) []string {
	items := a.view()
	lo, hi, ok := db.NormalizeRange(start, stop, int64(len(items)))
	if !ok {
		return []string{}
	}
	out := make([]string, hi-lo)
	copy(out, items[lo:hi])
	return out
}
