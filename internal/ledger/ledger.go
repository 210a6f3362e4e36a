package ledger

import (
	"bytes"
	"container/heap"
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Resource is an ephemeral artifact of a conversion that must eventually be
// released: a staged temp file or an output buffer held for the response.
type Resource interface {
	Release() error
	Describe() string
}

// FileResource is a temp file on disk.
type FileResource struct {
	Path string
}

func (r FileResource) Release() error   { return os.Remove(r.Path) }
func (r FileResource) Describe() string { return "file " + r.Path }

// BufferResource is an in-memory output buffer. Releasing it drops the
// backing storage; the response layer is expected to have drained it long
// before the staleness threshold elapses.
type BufferResource struct {
	Buf *bytes.Buffer
}

func (r BufferResource) Release() error {
	r.Buf.Reset()
	return nil
}
func (r BufferResource) Describe() string { return "buffer" }

type entry struct {
	res       Resource
	expiresAt time.Time
}

// expiryHeap orders entries by expiry so a sweep only touches expired ones.
type expiryHeap []entry

func (h expiryHeap) Len() int           { return len(h) }
func (h expiryHeap) Less(i, j int) bool { return h[i].expiresAt.Before(h[j].expiresAt) }
func (h expiryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap) Push(x any)        { *h = append(*h, x.(entry)) }
func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Ledger tracks ephemeral resources created during rendering and reclaims
// them once they pass the staleness threshold. Construct one per process and
// inject it; tests can run isolated instances.
type Ledger struct {
	mu        sync.Mutex
	entries   expiryHeap
	staleness time.Duration
	cron      *cron.Cron
}

func New(staleness time.Duration) *Ledger {
	return &Ledger{staleness: staleness}
}

// Register adds res to the ledger. Ownership for release passes to the
// sweeper; the caller keeps read access until the response finishes.
func (l *Ledger) Register(res Resource) {
	l.mu.Lock()
	defer l.mu.Unlock()
	heap.Push(&l.entries, entry{res: res, expiresAt: time.Now().Add(l.staleness)})
}

// Len reports how many resources are currently tracked.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries.Len()
}

// Sweep releases every entry past its expiry and reports how many were
// removed. A failed release is logged and the entry dropped regardless;
// reclamation never blocks on a single bad handle. The mutex is held only
// while popping entries, never during release I/O.
func (l *Ledger) Sweep() int {
	now := time.Now()

	var expired []entry
	l.mu.Lock()
	for l.entries.Len() > 0 && !l.entries[0].expiresAt.After(now) {
		expired = append(expired, heap.Pop(&l.entries).(entry))
	}
	l.mu.Unlock()

	for _, e := range expired {
		if err := e.res.Release(); err != nil {
			log.Warn().Err(err).Str("resource", e.res.Describe()).Msg("release failed, entry dropped")
			continue
		}
		log.Debug().Str("resource", e.res.Describe()).Msg("reclaimed")
	}

	// Advisory only; correctness does not depend on it
	if len(expired) > 0 {
		debug.FreeOSMemory()
	}
	return len(expired)
}

// Start schedules the background sweep at the given interval. Overlapping
// sweeps are skipped rather than stacked.
func (l *Ledger) Start(interval time.Duration) error {
	c := cron.New()
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).
		Then(cron.FuncJob(func() { l.Sweep() }))
	if _, err := c.AddJob(fmt.Sprintf("@every %s", interval), job); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	c.Start()
	l.cron = c
	log.Info().Dur("interval", interval).Dur("staleness", l.staleness).Msg("reclamation sweeper started")
	return nil
}

// Stop halts the background sweep. Registered resources stay tracked and are
// reclaimed on the next Start or an explicit Sweep.
func (l *Ledger) Stop() {
	if l.cron != nil {
		l.cron.Stop()
		l.cron = nil
	}
}
