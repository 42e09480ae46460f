package pkg

// Severity is the triage tier assigned to a symptom description.  It is
// produced exclusively by the keyword heuristic; the language model never
// decides it.
type Severity string

const (
	SeverityMild     Severity = "Mild"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
)

// AnalysisReport is the schema every analysis call returns.  Every list
// field is always present and always a list; single-string model output is
// normalized into a one-element list before the report is built.
type AnalysisReport struct {
	Severity           Severity `json:"severity"`
	Confidence         int      `json:"confidence"`
	PossibleConditions []string `json:"possible_conditions"`
	Explanation        []string `json:"explanation"`
	HomeCareTips       []string `json:"home_care_tips"`
	WhenToSeeDoctor    []string `json:"when_to_see_doctor"`
	Disclaimer         string   `json:"disclaimer"`
}

// RetrievedChunk is one grounding snippet returned by the retriever.  It is
// consumed within a single analysis call and never mutated.
type RetrievedChunk struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// FollowupRequest asks for adaptive follow-up questions.
type FollowupRequest struct {
	Symptoms string `json:"symptoms"`
}

// FollowupResponse carries the generated follow-up questions.
type FollowupResponse struct {
	Questions []string `json:"questions"`
}

// AnalysisRequest combines the initial free-text symptoms with the answers
// collected for the follow-up questions.
type AnalysisRequest struct {
	InitialSymptoms string   `json:"initial_symptoms"`
	FollowupAnswers []string `json:"followup_answers"`
}

// HealthResponse reports service readiness for load balancers.
type HealthResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	ModelsLoaded  bool   `json:"models_loaded"`
	VectorDBReady bool   `json:"vector_db_ready"`
}

// ChatFrame is the single JSON frame a websocket client sends to start an
// analysis exchange.
type ChatFrame struct {
	SessionID       string   `json:"session_id"`
	InitialSymptoms string   `json:"initial_symptoms"`
	FollowupAnswers []string `json:"followup_answers"`
}

// Frame types sent by the server over the websocket channel.
const (
	FrameThinking = "thinking"
	FrameAnalysis = "analysis"
	FrameError    = "error"
)

// ServerFrame is one message streamed to a websocket client.  Exactly one
// of Content, Data or Message is set depending on Type.
type ServerFrame struct {
	Type    string          `json:"type"`
	Content string          `json:"content,omitempty"`
	Data    *AnalysisReport `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ErrorResponse is the JSON body returned for rejected requests.
type ErrorResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after_seconds,omitempty"`
}
