package assistant

import "context"

// Provider submits {system prompt, user utterance} to a hosted
// text-generation service and returns the raw completion text. One request,
// no retry, no streaming; the transport timeout is the only deadline.
//
// Implementations must be safe for concurrent use. Callers never surface a
// provider error to the end user directly: any failure is downgraded to the
// canonical fallback parse result.
type Provider interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// FallbackClarification is the fixed user-facing message substituted when
// the model's reply cannot be obtained or understood.
const FallbackClarification = "I couldn't understand that request. Could you rephrase it with the athlete's name and the date/time?"

// FallbackSummary is the fixed summary of the canonical fallback result.
const FallbackSummary = "Unable to interpret the request."

// FallbackResult returns the canonical trainer-scoped fallback: UNKNOWN,
// confidence zero, empty data, fixed clarification and summary.
func FallbackResult() ParsedAction {
	clarification := FallbackClarification
	return ParsedAction{
		Action:               ActionUnknown,
		Confidence:           0,
		Data:                 ActionData{},
		ClarificationNeeded:  &clarification,
		HumanReadableSummary: FallbackSummary,
	}
}

// FallbackAdminParse is the admin-variant canonical fallback: no operations,
// confidence zero, fixed clarification and summary.
func FallbackAdminParse() AdminParse {
	clarification := FallbackClarification
	return AdminParse{
		Operations:           []Operation{},
		Confidence:           0,
		ClarificationNeeded:  &clarification,
		HumanReadableSummary: FallbackSummary,
	}
}
