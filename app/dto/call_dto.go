package dto

// CallLogEntryDTO is one recorded call outcome
type CallLogEntryDTO struct {
	ID           string `json:"id"`
	ContactID    string `json:"contact_id"`
	Outcome      string `json:"outcome"`
	OutcomeLabel string `json:"outcome_label"`
	Timestamp    string `json:"timestamp"`
}

// LogCallRequest records an outcome; Outcome accepts the wire value, the label or the shortcut digit
type LogCallRequest struct {
	Scope     string `json:"-"`
	ContactID string `json:"-"`
	Outcome   string `json:"outcome" validate:"required,max=32"`
}

// LogNextCallRequest records an outcome for the head of the queue
type LogNextCallRequest struct {
	Queue   QueueRequest `json:"queue"`
	Outcome string       `json:"outcome" validate:"required,max=32"`
}

// LogCallResponse reports the recorded entry and its side effects
// FlagError is set when the entry was recorded but the do-not-call flag could not be written
type LogCallResponse struct {
	Entry       CallLogEntryDTO `json:"entry"`
	DNCFlagged  bool            `json:"dnc_flagged"`
	FlagError   string          `json:"flag_error,omitempty"`
	BlockCalls  int             `json:"block_calls"`
	BlockActive bool            `json:"block_active"`
}

// OutcomeShareDTO is the share of one outcome among all calls
type OutcomeShareDTO struct {
	Outcome string  `json:"outcome"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// StatsResponse aggregates the call log of the operator
type StatsResponse struct {
	Total                   int               `json:"total"`
	Conversations           int               `json:"conversations"`
	Voicemails              int               `json:"voicemails"`
	NoAnswers               int               `json:"no_answers"`
	DoNotCall               int               `json:"dnc"`
	ConversationRate        float64           `json:"conversation_rate"`
	ConversationRatePercent int               `json:"conversation_rate_percent"`
	Breakdown               []OutcomeShareDTO `json:"breakdown"`
}

// BlockStatusResponse describes the call block of the operator
type BlockStatusResponse struct {
	Running      bool    `json:"running"`
	StartedAt    *string `json:"started_at,omitempty"`
	CallsLogged  int     `json:"calls_logged"`
	ElapsedMs    int64   `json:"elapsed_ms"`
	Elapsed      string  `json:"elapsed"`
	CallsPerHour int     `json:"calls_per_hour"`
}

// BlockSummaryResponse is returned when a block ends
type BlockSummaryResponse struct {
	CallsLogged  int    `json:"calls_logged"`
	ElapsedMs    int64  `json:"elapsed_ms"`
	Elapsed      string `json:"elapsed"`
	CallsPerHour int    `json:"calls_per_hour"`
	Message      string `json:"message"`
}
