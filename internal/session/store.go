// Package session keeps per-conversation state in memory, bounded by a
// time-to-live.  Nothing survives the process: persistence is deliberately
// out of scope.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"carenova/internal/metrics"
	"carenova/pkg"
)

// Session accumulates one user's symptom-gathering conversation.
type Session struct {
	ID              string
	CreatedAt       time.Time
	InitialSymptoms string
	FollowupAnswers []string
	LastResult      *pkg.AnalysisReport
}

type entry struct {
	mu sync.Mutex
	s  *Session
}

// Store owns all sessions.  The map is guarded by one mutex; each session
// additionally carries its own lock so mutations to the same id are
// serialized while different ids proceed concurrently.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	timeout  time.Duration
	now      func() time.Time
	log      *slog.Logger

	sweepEvery time.Duration
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewStore constructs a Store and starts the background expiry sweep when
// sweepEvery is positive.  Close must be called to stop the sweep.
func NewStore(timeout, sweepEvery time.Duration, log *slog.Logger) *Store {
	st := &Store{
		sessions:   make(map[string]*entry),
		timeout:    timeout,
		now:        time.Now,
		log:        log,
		sweepEvery: sweepEvery,
		done:       make(chan struct{}),
	}
	if sweepEvery > 0 {
		st.wg.Add(1)
		go st.sweepLoop()
	}
	return st
}

// Update runs fn against the session for id under that session's lock and
// returns a snapshot of the resulting state.  An absent id is created; an
// expired one is discarded and recreated fresh, indistinguishable from a
// new session except for the lost answers.  An empty id gets a generated
// UUID.
func (st *Store) Update(id string, fn func(*Session)) Session {
	if id == "" {
		id = uuid.NewString()
	}

	st.mu.Lock()
	e, ok := st.sessions[id]
	if !ok {
		e = &entry{s: &Session{ID: id, CreatedAt: st.now()}}
		st.sessions[id] = e
	}
	st.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if st.now().Sub(e.s.CreatedAt) > st.timeout {
		st.log.Info("session expired, recreating", "session_id", id)
		e.s = &Session{ID: id, CreatedAt: st.now()}
	}
	if fn != nil {
		fn(e.s)
	}
	return *e.s
}

// Len returns the number of live sessions, expired or not.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep removes every session older than the timeout and returns how many
// were dropped.  It runs periodically in the background but may be called
// directly.
func (st *Store) Sweep() int {
	cutoff := st.now().Add(-st.timeout)
	st.mu.Lock()
	removed := 0
	for id, e := range st.sessions {
		e.mu.Lock()
		expired := e.s.CreatedAt.Before(cutoff)
		e.mu.Unlock()
		if expired {
			delete(st.sessions, id)
			removed++
		}
	}
	remaining := len(st.sessions)
	st.mu.Unlock()

	metrics.SetActiveSessions(remaining)
	if removed > 0 {
		st.log.Info("swept expired sessions", "removed", removed, "remaining", remaining)
	}
	return removed
}

// Close stops the background sweep.
func (st *Store) Close() {
	close(st.done)
	st.wg.Wait()
}

func (st *Store) sweepLoop() {
	defer st.wg.Done()
	ticker := time.NewTicker(st.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			st.Sweep()
		case <-st.done:
			return
		}
	}
}
