package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"

	"carenova/internal/core"
	"carenova/pkg"
)

// Boundary validation limits for symptom text and follow-up answers.
const (
	minSymptomLen = 5
	maxSymptomLen = 1000
	maxAnswers    = 10
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, pkg.ErrorResponse{Error: msg})
}

// validateSymptoms enforces the 5-1000 character contract on symptom text.
func validateSymptoms(text string) error {
	n := utf8.RuneCountInString(text)
	if n < minSymptomLen {
		return fmt.Errorf("symptoms must be at least %d characters", minSymptomLen)
	}
	if n > maxSymptomLen {
		return fmt.Errorf("symptoms must be at most %d characters", maxSymptomLen)
	}
	return nil
}

// handleFollowupQuestions generates adaptive follow-up questions for the
// initial symptom description.
func (s *Server) handleFollowupQuestions(w http.ResponseWriter, r *http.Request) {
	var req pkg.FollowupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validateSymptoms(req.Symptoms); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.log.Info("generating follow-up questions", "request_id", requestID(r))
	questions := s.questions.Generate(r.Context(), req.Symptoms)
	writeJSON(w, http.StatusOK, pkg.FollowupResponse{Questions: questions})
}

// handleAnalyze runs the full analysis over initial symptoms plus follow-up
// answers.  The pipeline contract guarantees a schema-valid report on every
// path, so this handler has no failure branch past validation.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req pkg.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validateSymptoms(req.InitialSymptoms); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.FollowupAnswers) > maxAnswers {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d follow-up answers allowed", maxAnswers))
		return
	}

	s.log.Info("analyzing symptoms", "request_id", requestID(r), "answers", len(req.FollowupAnswers))
	query := core.CombineQuery(req.InitialSymptoms, req.FollowupAnswers)
	report := s.analyzer.Analyze(r.Context(), query)
	writeJSON(w, http.StatusOK, report)
}

// handleHealth reports readiness of the model client and the vector index.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	modelsLoaded := s.llm.Ready()
	vectorReady := s.index.Ready()

	resp := pkg.HealthResponse{
		Status:        "healthy",
		Message:       "all systems operational",
		ModelsLoaded:  modelsLoaded,
		VectorDBReady: vectorReady,
	}
	if !modelsLoaded || !vectorReady {
		resp.Status = "degraded"
		resp.Message = "service partially unavailable"
	}
	writeJSON(w, http.StatusOK, resp)
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
