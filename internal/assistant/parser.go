package assistant

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The schemas are the hard gate between the hosted model and the dispatch
// tables: anything that does not validate is replaced by the canonical
// fallback. Compiled once at init.

const trainerSchemaJSON = `{
  "type": "object",
  "required": ["action", "confidence", "humanReadableSummary"],
  "properties": {
    "action": {
      "type": "string",
      "enum": [
        "CREATE_SESSION",
        "CREATE_RECURRING_SESSION",
        "UPDATE_SESSION",
        "CANCEL_SESSION",
        "CREATE_ATHLETE",
        "QUERY",
        "UNKNOWN"
      ]
    },
    "confidence": { "type": "number", "minimum": 0, "maximum": 1 },
    "clarificationNeeded": { "type": ["string", "null"] },
    "humanReadableSummary": { "type": "string" },
    "data": {
      "type": "object",
      "properties": {
        "session": {
          "type": "object",
          "properties": {
            "athleteId": { "type": "string" },
            "athleteName": { "type": "string" },
            "isNewAthlete": { "type": "boolean" },
            "scheduledAt": { "type": "string" },
            "durationMinutes": { "type": "integer", "minimum": 1 },
            "location": { "type": "string" },
            "notes": { "type": "string" },
            "recurrencePattern": {
              "type": "string",
              "enum": ["DAILY", "WEEKLY", "BIWEEKLY", "MONTHLY"]
            },
            "recurrenceEndDate": { "type": "string" }
          },
          "additionalProperties": false
        },
        "athlete": {
          "type": "object",
          "properties": {
            "firstName": { "type": "string" },
            "lastName": { "type": "string" },
            "email": { "type": "string" },
            "phone": { "type": "string" },
            "goals": { "type": "string" }
          },
          "additionalProperties": false
        },
        "query": {
          "type": "object",
          "required": ["type"],
          "properties": {
            "type": {
              "type": "string",
              "enum": [
                "SESSIONS_LIST",
                "SESSIONS_COUNT",
                "ATHLETES_LIST",
                "ATHLETES_COUNT",
                "SCHEDULE_SUMMARY"
              ]
            },
            "filters": {
              "type": "object",
              "properties": {
                "athleteId": { "type": "string" },
                "athleteName": { "type": "string" },
                "from": { "type": "string" },
                "to": { "type": "string" },
                "status": {
                  "type": "string",
                  "enum": ["all", "completed", "upcoming", "cancelled"]
                }
              },
              "additionalProperties": false
            },
            "description": { "type": "string" }
          },
          "additionalProperties": false
        }
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

const adminSchemaJSON = `{
  "type": "object",
  "required": ["operations", "confidence", "humanReadableSummary"],
  "properties": {
    "operations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["model", "method", "args"],
        "properties": {
          "model": {
            "type": "string",
            "enum": ["user", "trainer", "athlete", "session", "checkIn"]
          },
          "method": {
            "type": "string",
            "enum": [
              "create",
              "update",
              "updateMany",
              "delete",
              "deleteMany",
              "findMany",
              "findFirst"
            ]
          },
          "args": { "type": "object" }
        },
        "additionalProperties": false
      }
    },
    "isQuery": { "type": "boolean" },
    "confidence": { "type": "number", "minimum": 0, "maximum": 1 },
    "clarificationNeeded": { "type": ["string", "null"] },
    "humanReadableSummary": { "type": "string" }
  },
  "additionalProperties": false
}`

var (
	trainerSchema = jsonschema.MustCompileString("trainer_action.json", trainerSchemaJSON)
	adminSchema   = jsonschema.MustCompileString("admin_batch.json", adminSchemaJSON)
)

// StripCodeFences removes a Markdown code-fence wrapper (``` or ```json)
// around the payload, if present. Models occasionally fence their output
// despite instructions not to.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// drop the language tag line ("json", "JSON", or empty)
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseTrainerResponse validates raw model output against the trainer
// schema and coerces it into a ParsedAction. It never returns an error: on
// any failure the canonical fallback result is returned instead.
func ParseTrainerResponse(raw string) ParsedAction {
	cleaned := StripCodeFences(raw)

	var generic any
	if err := json.Unmarshal([]byte(cleaned), &generic); err != nil {
		return FallbackResult()
	}
	if err := trainerSchema.Validate(generic); err != nil {
		return FallbackResult()
	}

	var parsed ParsedAction
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return FallbackResult()
	}
	return parsed
}

// ParseAdminResponse is the admin-variant counterpart of
// ParseTrainerResponse; same never-fails contract.
func ParseAdminResponse(raw string) AdminParse {
	cleaned := StripCodeFences(raw)

	var generic any
	if err := json.Unmarshal([]byte(cleaned), &generic); err != nil {
		return FallbackAdminParse()
	}
	if err := adminSchema.Validate(generic); err != nil {
		return FallbackAdminParse()
	}

	var parsed AdminParse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return FallbackAdminParse()
	}
	return parsed
}
