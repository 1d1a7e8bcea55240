// Package assistant implements the natural-language-to-action pipeline:
// free-text staff input is rendered into a prompt with a snapshot of the
// studio's data, sent to a hosted language model, parsed and validated
// against a strict schema, and dispatched onto a fixed set of operations
// against the relational store.
//
// The model only proposes operations; every mutation flows through the
// closed entity/verb dispatch tables in this package. Trainer-scoped input
// is restricted to scheduling verbs and read-only queries; admin input may
// emit free-form operations over the allowlisted entities.
package assistant

// Action is the enumerated verb of a trainer-scoped parse result.
type Action string

const (
	ActionCreateSession          Action = "CREATE_SESSION"
	ActionCreateRecurringSession Action = "CREATE_RECURRING_SESSION"
	ActionUpdateSession          Action = "UPDATE_SESSION"
	ActionCancelSession          Action = "CANCEL_SESSION"
	ActionCreateAthlete          Action = "CREATE_ATHLETE"
	ActionQuery                  Action = "QUERY"
	ActionUnknown                Action = "UNKNOWN"
)

// QueryType enumerates the read-only query kinds a trainer may request.
type QueryType string

const (
	QuerySessionsList    QueryType = "SESSIONS_LIST"
	QuerySessionsCount   QueryType = "SESSIONS_COUNT"
	QueryAthletesList    QueryType = "ATHLETES_LIST"
	QueryAthletesCount   QueryType = "ATHLETES_COUNT"
	QueryScheduleSummary QueryType = "SCHEDULE_SUMMARY"
)

// SessionData is the session descriptor a parse result may carry. Times are
// ISO-8601 strings exactly as the model emitted them; the executor parses
// and stores them without further timezone adjustment (the prompt instructs
// the model to convert spoken local times to UTC).
type SessionData struct {
	AthleteID         string `json:"athleteId,omitempty"`
	AthleteName       string `json:"athleteName,omitempty"`
	IsNewAthlete      bool   `json:"isNewAthlete,omitempty"`
	ScheduledAt       string `json:"scheduledAt,omitempty"`
	DurationMinutes   int    `json:"durationMinutes,omitempty"`
	Location          string `json:"location,omitempty"`
	Notes             string `json:"notes,omitempty"`
	RecurrencePattern string `json:"recurrencePattern,omitempty"`
	RecurrenceEndDate string `json:"recurrenceEndDate,omitempty"`
}

// AthleteData is the athlete descriptor for CREATE_ATHLETE (and for the
// new-athlete branch of session creation).
type AthleteData struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Goals     string `json:"goals,omitempty"`
}

// QueryFilters narrow a QUERY action. Dates are ISO-8601.
type QueryFilters struct {
	AthleteID   string `json:"athleteId,omitempty"`
	AthleteName string `json:"athleteName,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	Status      string `json:"status,omitempty"`
}

type QueryData struct {
	Type        QueryType    `json:"type"`
	Filters     QueryFilters `json:"filters"`
	Description string       `json:"description,omitempty"`
}

type ActionData struct {
	Session *SessionData `json:"session,omitempty"`
	Athlete *AthleteData `json:"athlete,omitempty"`
	Query   *QueryData   `json:"query,omitempty"`
}

// ParsedAction is the validated result of a trainer-scoped model reply.
// The parser guarantees a well-typed value: on any parse or schema failure
// it substitutes the canonical fallback (UNKNOWN, confidence 0, fixed
// clarification) instead of returning an error.
type ParsedAction struct {
	Action               Action     `json:"action"`
	Confidence           float64    `json:"confidence"`
	Data                 ActionData `json:"data"`
	ClarificationNeeded  *string    `json:"clarificationNeeded"`
	HumanReadableSummary string     `json:"humanReadableSummary"`
}

// Operation is one {entity, verb, arguments} triple. It is both the unit of
// admin free-form execution and the undo descriptor format: undoing means
// replaying the descriptor through the same dispatch table.
type Operation struct {
	Model  string         `json:"model"`
	Method string         `json:"method"`
	Args   map[string]any `json:"args"`
}

// AdminParse is the validated result of an admin free-form model reply.
type AdminParse struct {
	Operations           []Operation `json:"operations"`
	IsQuery              bool        `json:"isQuery"`
	Confidence           float64     `json:"confidence"`
	ClarificationNeeded  *string     `json:"clarificationNeeded"`
	HumanReadableSummary string      `json:"humanReadableSummary"`
}

// ExecResult is the uniform outcome of a trainer-scoped action. Success is
// explicit; storage errors are caught in the handler and reported here, not
// propagated.
type ExecResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AdminResult is the aggregate outcome of an ordered admin batch.
// Operations preceding a failure retain their effects; no rollback is
// attempted.
type AdminResult struct {
	Success        bool        `json:"success"`
	Message        string      `json:"message"`
	ReadData       any         `json:"readData,omitempty"`
	Count          int         `json:"count,omitempty"`
	UndoOperations []Operation `json:"undoOperations,omitempty"`
	Error          string      `json:"error,omitempty"`
}
