package store

// Document is a retrieved chunk handed to the generators as grounding context.
type Document struct {
	ID       string                 `json:"id"`
	Source   string                 `json:"source"`
	Content  string                 `json:"content"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Session is the active conversation state held in memory. It carries
// everything a turn needs beyond the persisted message history.
type Session struct {
	ID     string `json:"id"` // ChatSessionID
	UserID string `json:"user_id"`

	// Mode is the generator the last turn ran under.
	Mode string `json:"mode"`

	// StickyNextMode forces the next turn's route, bypassing the classifier.
	// A generator sets it when it expects a specific follow-up (the quiz
	// setter arms the grader). Consumed exactly once.
	StickyNextMode string `json:"sticky_next_mode"`

	// UploadedText is the full extracted text of the session's current
	// upload. Replaced wholesale on every new upload.
	UploadedText string `json:"uploaded_text"`

	// QuizAnswerKey holds the hidden key split off the last generated quiz.
	QuizAnswerKey string `json:"quiz_answer_key"`

	// LastQuery keeps the previous user message for contextual retrieval.
	LastQuery string `json:"last_query"`
}

// Generator modes. ModeQuery is the fallback route.
const (
	ModeQuery      = "query"
	ModeSummarize  = "summarize"
	ModeSimplify   = "simplify"
	ModeQuizSetter = "quiz_setter"
	ModeQuizGrader = "quiz_grader"
	ModeAdvisor    = "advisor"
)
