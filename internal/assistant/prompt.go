package assistant

import (
	"fmt"
	"strings"
)

// Prompt composition. The system prompt carries the contract (allowed
// actions, JSON shape, timezone rules) and the data snapshot; the user
// message is the staff member's utterance verbatim.

const trainerPromptHeader = `You are the scheduling assistant for a personal training studio.
Interpret the trainer's request and respond with EXACTLY ONE JSON object and nothing else.
No Markdown, no code fences, no commentary before or after the JSON.

The JSON object has this shape:
{
  "action": "CREATE_SESSION" | "CREATE_RECURRING_SESSION" | "UPDATE_SESSION" | "CANCEL_SESSION" | "CREATE_ATHLETE" | "QUERY" | "UNKNOWN",
  "confidence": <number between 0 and 1>,
  "data": {
    "session":  { "athleteId", "athleteName", "isNewAthlete", "scheduledAt", "durationMinutes", "location", "notes", "recurrencePattern", "recurrenceEndDate" },
    "athlete":  { "firstName", "lastName", "email", "phone", "goals" },
    "query":    { "type": "SESSIONS_LIST" | "SESSIONS_COUNT" | "ATHLETES_LIST" | "ATHLETES_COUNT" | "SCHEDULE_SUMMARY", "filters": { "athleteId", "athleteName", "from", "to", "status" }, "description" }
  },
  "clarificationNeeded": <string or null>,
  "humanReadableSummary": <one short sentence describing what will happen>
}

Include only the "data" members relevant to the action. Rules:
- Resolve athlete names against the ATHLETES list below; when a listed athlete matches, set "athleteId" to the listed id.
- If the athlete is not on the list, set "isNewAthlete" true and give "athleteName".
- "recurrencePattern" is one of DAILY, WEEKLY, BIWEEKLY, MONTHLY; only for CREATE_RECURRING_SESSION.
- "status" filter is one of all, completed, upcoming, cancelled.
- If the request is ambiguous or not about scheduling, use action UNKNOWN with a "clarificationNeeded" question.
- Never invent ids. Never output any field not listed above.`

const adminPromptHeader = `You are the operations assistant for a personal training studio with full administrative access.
Interpret the admin's request and respond with EXACTLY ONE JSON object and nothing else.
No Markdown, no code fences, no commentary before or after the JSON.

The JSON object has this shape:
{
  "operations": [ { "model": <entity>, "method": <verb>, "args": { ... } }, ... ],
  "isQuery": <true when every operation only reads>,
  "confidence": <number between 0 and 1>,
  "clarificationNeeded": <string or null>,
  "humanReadableSummary": <one short sentence describing what will happen>
}

Entities and their fields (use snake_case column names inside args):
- user:    email, password, first_name, last_name, role (ADMIN or TRAINER)
- trainer: user_id, specialty, bio
- athlete: trainer_id, first_name, last_name, email, phone, goals, notes
- session: trainer_id, athlete_id, scheduled_at, duration_minutes, location, notes, completed, cancelled
- checkIn: athlete_id, session_id, checked_in_at, notes

Verbs: create, update, updateMany, delete, deleteMany, findMany, findFirst.
Argument conventions:
- create:               args = { "data": { ...fields } }
- update / delete:      args = { "where": { "id": <id> }, "data": { ...fields } } (delete takes no data)
- updateMany/deleteMany: args = { "where": { ...fields } , "data": { ...fields } }
- findMany / findFirst:  args = { "where": { ...fields }, "limit": <optional int> }

Rules:
- Operations execute in order. Reference listed ids; never invent them.
- For a new user, set "password" to "__DEFAULT_PASSWORD__" unless one was given, then "__PASSWORD__:<the password>".
- Timestamps are ISO-8601 UTC strings.
- If the request is ambiguous or unsafe, return an empty operations array with a "clarificationNeeded" question.`

func renderTimeContext(b *strings.Builder, snap *Snapshot) {
	fmt.Fprintf(b, "Current local time: %s (UTC offset %s).\n", snap.Now.Format("Monday, January 2 2006 15:04"), snap.Offset)
	fmt.Fprintf(b, "When the request names a local time, convert it to UTC using the %s offset and emit ISO-8601 UTC (e.g. 2006-01-02T15:04:05Z).\n", snap.Offset)
	b.WriteString("Relative words like \"tomorrow\" and \"next Tuesday\" are relative to the current local date.\n\n")
}

// ComposeTrainerPrompt builds the system prompt for trainer-scoped parsing.
func ComposeTrainerPrompt(snap *Snapshot) string {
	var b strings.Builder
	b.WriteString(trainerPromptHeader)
	b.WriteString("\n\n")
	renderTimeContext(&b, snap)
	snap.renderAthletes(&b)
	snap.renderSessions(&b)
	b.WriteString(trainerPromptExamples)
	b.WriteString("\nRespond with the single JSON object now.")
	return b.String()
}

// ComposeAdminPrompt builds the system prompt for admin free-form parsing.
func ComposeAdminPrompt(snap *Snapshot) string {
	var b strings.Builder
	b.WriteString(adminPromptHeader)
	b.WriteString("\n\n")
	renderTimeContext(&b, snap)
	snap.renderTrainers(&b)
	snap.renderAthletes(&b)
	snap.renderSessions(&b)
	b.WriteString(adminPromptExamples)
	b.WriteString("\nRespond with the single JSON object now.")
	return b.String()
}

const trainerPromptExamples = `EXAMPLES:

Request: "book sarah tomorrow at 3pm"
Response: {"action":"CREATE_SESSION","confidence":0.92,"data":{"session":{"athleteId":"<id from list>","athleteName":"Sarah","scheduledAt":"<tomorrow 15:00 local converted to UTC, ISO-8601>","durationMinutes":60}},"clarificationNeeded":null,"humanReadableSummary":"Book a 60-minute session with Sarah tomorrow at 3pm."}

Request: "cancel mike's session on friday"
Response: {"action":"CANCEL_SESSION","confidence":0.9,"data":{"session":{"athleteName":"Mike","scheduledAt":"<friday ISO-8601 UTC>"}},"clarificationNeeded":null,"humanReadableSummary":"Cancel Mike's session on Friday."}

Request: "how many athletes do I have"
Response: {"action":"QUERY","confidence":0.95,"data":{"query":{"type":"ATHLETES_COUNT","filters":{}}},"clarificationNeeded":null,"humanReadableSummary":"Count your athletes."}
`

const adminPromptExamples = `EXAMPLES:

Request: "add a trainer account for jane doe, jane@studio.com"
Response: {"operations":[{"model":"user","method":"create","args":{"data":{"email":"jane@studio.com","password":"__DEFAULT_PASSWORD__","first_name":"Jane","last_name":"Doe","role":"TRAINER"}}}],"isQuery":false,"confidence":0.9,"clarificationNeeded":null,"humanReadableSummary":"Create a trainer user for Jane Doe."}

Request: "cancel all of tomorrow's sessions"
Response: {"operations":[{"model":"session","method":"updateMany","args":{"where":{"cancelled":false,"scheduled_at_gte":"<tomorrow 00:00 UTC>","scheduled_at_lt":"<day after 00:00 UTC>"},"data":{"cancelled":true}}}],"isQuery":false,"confidence":0.85,"clarificationNeeded":null,"humanReadableSummary":"Cancel every session scheduled tomorrow."}

Request: "list unassigned athletes"
Response: {"operations":[{"model":"athlete","method":"findMany","args":{"where":{"trainer_id":null}}}],"isQuery":true,"confidence":0.95,"clarificationNeeded":null,"humanReadableSummary":"List athletes without a trainer."}
`
