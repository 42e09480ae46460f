package session

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"carenova/pkg"
)

func testStore(timeout time.Duration) *Store {
	// sweepEvery 0: no background goroutine, sweeps are driven by the test.
	return NewStore(timeout, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestUpdateCreatesSession(t *testing.T) {
	st := testStore(30 * time.Minute)
	defer st.Close()

	sess := st.Update("abc", func(s *Session) {
		s.InitialSymptoms = "headache"
	})
	if sess.ID != "abc" {
		t.Errorf("ID = %q, want abc", sess.ID)
	}
	if sess.InitialSymptoms != "headache" {
		t.Errorf("InitialSymptoms = %q", sess.InitialSymptoms)
	}
	if st.Len() != 1 {
		t.Errorf("Len() = %d, want 1", st.Len())
	}
}

func TestUpdateGeneratesID(t *testing.T) {
	st := testStore(30 * time.Minute)
	defer st.Close()

	sess := st.Update("", nil)
	if sess.ID == "" {
		t.Error("expected generated session id")
	}
}

func TestSessionExpiryOnAccess(t *testing.T) {
	st := testStore(30 * time.Minute)
	defer st.Close()

	now := time.Now()
	st.now = func() time.Time { return now }

	st.Update("abc", func(s *Session) {
		s.FollowupAnswers = []string{"two days", "yes"}
	})

	// Advance the clock beyond the timeout: the same id must yield a
	// fresh session with no accumulated answers.
	now = now.Add(31 * time.Minute)
	sess := st.Update("abc", nil)
	if len(sess.FollowupAnswers) != 0 {
		t.Errorf("expected fresh session, got answers %v", sess.FollowupAnswers)
	}
	if sess.InitialSymptoms != "" {
		t.Errorf("expected fresh session, got symptoms %q", sess.InitialSymptoms)
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	st := testStore(30 * time.Minute)
	defer st.Close()

	now := time.Now()
	st.now = func() time.Time { return now }

	st.Update("old", nil)
	now = now.Add(20 * time.Minute)
	st.Update("fresh", nil)
	now = now.Add(15 * time.Minute) // old is 35m, fresh is 15m

	removed := st.Sweep()
	if removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if st.Len() != 1 {
		t.Errorf("Len() = %d, want 1", st.Len())
	}
}

func TestConcurrentUpdatesSerialized(t *testing.T) {
	st := testStore(30 * time.Minute)
	defer st.Close()

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Update("shared", func(s *Session) {
				s.FollowupAnswers = append(s.FollowupAnswers, "x")
			})
		}()
	}
	wg.Wait()

	sess := st.Update("shared", nil)
	if len(sess.FollowupAnswers) != writers {
		t.Errorf("answers = %d, want %d (lost updates)", len(sess.FollowupAnswers), writers)
	}
}

func TestLastResultStored(t *testing.T) {
	st := testStore(30 * time.Minute)
	defer st.Close()

	report := pkg.AnalysisReport{Severity: pkg.SeverityMild, PossibleConditions: []string{"Cold"}}
	st.Update("abc", func(s *Session) { s.LastResult = &report })

	sess := st.Update("abc", nil)
	if sess.LastResult == nil || sess.LastResult.PossibleConditions[0] != "Cold" {
		t.Errorf("LastResult = %+v", sess.LastResult)
	}
}

func TestBackgroundSweepStops(t *testing.T) {
	st := NewStore(time.Minute, 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	time.Sleep(25 * time.Millisecond)
	st.Close() // must not hang or panic
}
