package assistant

import (
	"testing"
)

func assertTrainerFallback(t *testing.T, got ParsedAction) {
	t.Helper()
	if got.Action != ActionUnknown {
		t.Errorf("action: got %q want %q", got.Action, ActionUnknown)
	}
	if got.Confidence != 0 {
		t.Errorf("confidence: got %v want 0", got.Confidence)
	}
	if got.ClarificationNeeded == nil || *got.ClarificationNeeded != FallbackClarification {
		t.Errorf("clarification: got %v", got.ClarificationNeeded)
	}
	if got.HumanReadableSummary != FallbackSummary {
		t.Errorf("summary: got %q", got.HumanReadableSummary)
	}
}

func TestParseTrainerResponseValid(t *testing.T) {
	raw := `{
		"action": "CREATE_SESSION",
		"confidence": 0.9,
		"data": {"session": {"athleteName": "Sarah", "scheduledAt": "2024-01-02T21:00:00Z", "durationMinutes": 45}},
		"clarificationNeeded": null,
		"humanReadableSummary": "Book Sarah tomorrow at 3pm."
	}`

	got := ParseTrainerResponse(raw)
	if got.Action != ActionCreateSession {
		t.Fatalf("action: got %q", got.Action)
	}
	if got.Data.Session == nil || got.Data.Session.AthleteName != "Sarah" {
		t.Fatalf("session data not carried through: %+v", got.Data)
	}
	if got.Data.Session.DurationMinutes != 45 {
		t.Errorf("duration: got %d", got.Data.Session.DurationMinutes)
	}
}

func TestParseTrainerResponseStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"action\":\"QUERY\",\"confidence\":0.8,\"data\":{\"query\":{\"type\":\"ATHLETES_COUNT\",\"filters\":{}}},\"clarificationNeeded\":null,\"humanReadableSummary\":\"Count athletes.\"}\n```"

	got := ParseTrainerResponse(raw)
	if got.Action != ActionQuery {
		t.Fatalf("fenced payload not parsed: got %q", got.Action)
	}
	if got.Data.Query == nil || got.Data.Query.Type != QueryAthletesCount {
		t.Fatalf("query data: %+v", got.Data.Query)
	}
}

func TestParseTrainerResponseMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":          "I'd be happy to help with that!",
		"truncated":         `{"action": "CREATE_SESSION", "confidence"`,
		"missing required":  `{"action": "CREATE_SESSION"}`,
		"unknown action":    `{"action": "DELETE_EVERYTHING", "confidence": 1, "humanReadableSummary": "x"}`,
		"confidence range":  `{"action": "QUERY", "confidence": 1.5, "humanReadableSummary": "x"}`,
		"extra top field":   `{"action": "QUERY", "confidence": 0.5, "humanReadableSummary": "x", "sql": "DROP TABLE athlete"}`,
		"bad recurrence":    `{"action": "CREATE_RECURRING_SESSION", "confidence": 0.9, "humanReadableSummary": "x", "data": {"session": {"recurrencePattern": "HOURLY"}}}`,
		"bad query type":    `{"action": "QUERY", "confidence": 0.9, "humanReadableSummary": "x", "data": {"query": {"type": "ANYTHING"}}}`,
		"array not object":  `[{"action": "QUERY"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assertTrainerFallback(t, ParseTrainerResponse(raw))
		})
	}
}

func TestParseAdminResponseValid(t *testing.T) {
	raw := `{
		"operations": [
			{"model": "athlete", "method": "findMany", "args": {"where": {"trainer_id": null}}}
		],
		"isQuery": true,
		"confidence": 0.95,
		"clarificationNeeded": null,
		"humanReadableSummary": "List unassigned athletes."
	}`

	got := ParseAdminResponse(raw)
	if len(got.Operations) != 1 {
		t.Fatalf("operations: got %d", len(got.Operations))
	}
	op := got.Operations[0]
	if op.Model != "athlete" || op.Method != "findMany" {
		t.Fatalf("operation: %+v", op)
	}
	if !got.IsQuery {
		t.Errorf("isQuery not carried through")
	}
}

func TestParseAdminResponseMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":       "sure, deleting everything now",
		"unknown model":  `{"operations":[{"model":"invoice","method":"create","args":{}}],"confidence":0.9,"humanReadableSummary":"x"}`,
		"unknown method": `{"operations":[{"model":"user","method":"truncate","args":{}}],"confidence":0.9,"humanReadableSummary":"x"}`,
		"missing args":   `{"operations":[{"model":"user","method":"create"}],"confidence":0.9,"humanReadableSummary":"x"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got := ParseAdminResponse(raw)
			if len(got.Operations) != 0 {
				t.Errorf("expected no operations, got %d", len(got.Operations))
			}
			if got.Confidence != 0 {
				t.Errorf("confidence: got %v", got.Confidence)
			}
			if got.ClarificationNeeded == nil || *got.ClarificationNeeded != FallbackClarification {
				t.Errorf("clarification: got %v", got.ClarificationNeeded)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  ```JSON\n{\"a\":1}\n```  ", "{\"a\":1}"},
	}
	for _, tc := range cases {
		if got := StripCodeFences(tc.in); got != tc.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
