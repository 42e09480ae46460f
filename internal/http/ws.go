package http

import (
	"net/http"
	"time"

	"carenova/internal/core"
	"carenova/internal/metrics"
	"carenova/internal/session"
	"carenova/pkg"
)

// handleChat serves the streaming channel.  The client sends one JSON frame
// and receives a thinking frame followed by the analysis frame, or an error
// frame.  The connection closes after one exchange.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	s.log.Info("websocket connected", "remote", conn.RemoteAddr().String())

	// Bound the wait for the client's initial payload.  On timeout the
	// connection closes without side effects.
	if timeout := s.cfg.WSReadTimeout(); timeout > 0 {
		conn.SetReadDeadline(time.Now().Add(timeout))
	}

	var frame pkg.ChatFrame
	if err := conn.ReadJSON(&frame); err != nil {
		metrics.RecordWSExchange("bad_frame")
		conn.WriteJSON(pkg.ServerFrame{Type: pkg.FrameError, Message: "invalid JSON received"})
		return
	}
	conn.SetReadDeadline(time.Time{})

	if err := validateSymptoms(frame.InitialSymptoms); err != nil {
		metrics.RecordWSExchange("invalid")
		conn.WriteJSON(pkg.ServerFrame{Type: pkg.FrameError, Message: err.Error()})
		return
	}
	if len(frame.FollowupAnswers) > maxAnswers {
		metrics.RecordWSExchange("invalid")
		conn.WriteJSON(pkg.ServerFrame{Type: pkg.FrameError, Message: "too many follow-up answers"})
		return
	}

	sess := s.sessions.Update(frame.SessionID, func(sess *session.Session) {
		sess.InitialSymptoms = frame.InitialSymptoms
		sess.FollowupAnswers = frame.FollowupAnswers
	})
	s.log.Info("websocket analysis", "session_id", sess.ID, "answers", len(frame.FollowupAnswers))

	if err := conn.WriteJSON(pkg.ServerFrame{Type: pkg.FrameThinking, Content: "Analyzing your symptoms..."}); err != nil {
		metrics.RecordWSExchange("write_failed")
		return
	}

	// Scheduled pacing so the thinking frame renders before the result;
	// aborts early if the client goes away.
	if delay := s.cfg.ThinkingDelay(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			metrics.RecordWSExchange("cancelled")
			return
		}
	}

	query := core.CombineQuery(frame.InitialSymptoms, frame.FollowupAnswers)
	report := s.analyzer.Analyze(r.Context(), query)

	s.sessions.Update(sess.ID, func(sess *session.Session) {
		sess.LastResult = &report
	})

	if err := conn.WriteJSON(pkg.ServerFrame{Type: pkg.FrameAnalysis, Data: &report}); err != nil {
		metrics.RecordWSExchange("write_failed")
		return
	}
	metrics.RecordWSExchange("ok")
	s.log.Info("websocket analysis complete", "session_id", sess.ID)
}
