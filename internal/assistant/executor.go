package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/novafit/gymdesk-backend/internal/domain"
	"github.com/novafit/gymdesk-backend/internal/data/repos/roster"
	"github.com/novafit/gymdesk-backend/internal/data/repos/scheduling"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
)

const queryRowCap = 50

// Executor dispatches validated trainer-scoped actions onto the store. Each
// action is a closed branch; there is no dynamic dispatch on model output.
//
// Multi-row actions (athlete-then-session, recurring batches) are issued as
// separate writes without a wrapping transaction, so a failure partway
// through leaves the earlier rows in place.
type Executor struct {
	athleteRepo roster.AthleteRepo
	sessionRepo scheduling.SessionRepo
	log         *logger.Logger

	now func() time.Time
	loc *time.Location
}

func NewExecutor(
	athleteRepo roster.AthleteRepo,
	sessionRepo scheduling.SessionRepo,
	loc *time.Location,
	baseLog *logger.Logger,
) *Executor {
	if loc == nil {
		loc = time.Local
	}
	return &Executor{
		athleteRepo: athleteRepo,
		sessionRepo: sessionRepo,
		log:         baseLog.With("service", "AssistantExecutor"),
		now:         time.Now,
		loc:         loc,
	}
}

// Execute runs one parsed action for the given trainer and reports the
// outcome. Storage errors are folded into the result rather than returned;
// the only contract is a filled ExecResult.
func (e *Executor) Execute(ctx context.Context, trainerID uuid.UUID, parsed ParsedAction) ExecResult {
	switch parsed.Action {
	case ActionCreateSession:
		return e.createSession(ctx, trainerID, parsed.Data.Session)
	case ActionCreateRecurringSession:
		return e.createRecurringSession(ctx, trainerID, parsed.Data.Session)
	case ActionUpdateSession:
		return e.updateSession(ctx, trainerID, parsed.Data.Session)
	case ActionCancelSession:
		return e.cancelSession(ctx, trainerID, parsed.Data.Session)
	case ActionCreateAthlete:
		return e.createAthlete(ctx, trainerID, parsed.Data.Athlete)
	case ActionQuery:
		return e.runQuery(ctx, trainerID, parsed.Data.Query)
	default:
		msg := FallbackClarification
		if parsed.ClarificationNeeded != nil && *parsed.ClarificationNeeded != "" {
			msg = *parsed.ClarificationNeeded
		}
		return ExecResult{Success: false, Message: msg}
	}
}

// resolveAthlete maps the session descriptor to an athlete row, creating one
// with a timestamped placeholder email when the model marked the athlete as
// new. The create happens before any session write and is not rolled back if
// the session write later fails.
func (e *Executor) resolveAthlete(ctx context.Context, trainerID uuid.UUID, data *SessionData) (*types.Athlete, error) {
	if data.AthleteID != "" {
		id, err := uuid.Parse(data.AthleteID)
		if err == nil {
			athletes, err := e.athleteRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
			if err != nil {
				return nil, err
			}
			if len(athletes) == 1 && athleteBelongsTo(athletes[0], trainerID) {
				return athletes[0], nil
			}
		}
	}

	if data.AthleteName != "" {
		athlete, err := e.athleteRepo.FirstByName(ctx, nil, &trainerID, firstToken(data.AthleteName))
		if err != nil {
			return nil, err
		}
		if athlete != nil {
			return athlete, nil
		}
	}

	if !data.IsNewAthlete || strings.TrimSpace(data.AthleteName) == "" {
		return nil, nil
	}

	first, last := splitName(data.AthleteName)
	athlete := &types.Athlete{
		TrainerID: &trainerID,
		FirstName: first,
		LastName:  last,
		Email:     placeholderEmail(first, last, e.now()),
	}
	created, err := e.athleteRepo.Create(ctx, nil, []*types.Athlete{athlete})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (e *Executor) createSession(ctx context.Context, trainerID uuid.UUID, data *SessionData) ExecResult {
	if data == nil {
		return failure("No session details were provided.", nil)
	}
	scheduledAt, err := parseWhen(data.ScheduledAt)
	if err != nil {
		return failure("I couldn't understand the session time.", err)
	}

	athlete, err := e.resolveAthlete(ctx, trainerID, data)
	if err != nil {
		return failure("Could not look up the athlete.", err)
	}
	if athlete == nil {
		return failure(fmt.Sprintf("I couldn't find an athlete matching %q on your roster.", data.AthleteName), nil)
	}

	session := &types.Session{
		TrainerID:       trainerID,
		AthleteID:       athlete.ID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: durationOrDefault(data.DurationMinutes),
		Location:        data.Location,
		Notes:           data.Notes,
	}
	if _, err := e.sessionRepo.Create(ctx, nil, []*types.Session{session}); err != nil {
		return failure("Could not save the session.", err)
	}

	return ExecResult{
		Success: true,
		Message: fmt.Sprintf("Booked %s %s on %s.", athlete.FirstName, athlete.LastName, scheduledAt.In(e.loc).Format("Mon Jan 2 at 3:04 PM")),
		Data:    session,
	}
}

func (e *Executor) createRecurringSession(ctx context.Context, trainerID uuid.UUID, data *SessionData) ExecResult {
	if data == nil {
		return failure("No session details were provided.", nil)
	}
	if !types.ValidRecurrencePattern(data.RecurrencePattern) {
		return failure("I couldn't understand the recurrence pattern.", nil)
	}
	scheduledAt, err := parseWhen(data.ScheduledAt)
	if err != nil {
		return failure("I couldn't understand the session time.", err)
	}

	// Without an explicit end, generation is bounded 90 days out from now,
	// not from the first occurrence.
	end := e.now().Add(DefaultRecurrenceHorizon)
	if data.RecurrenceEndDate != "" {
		end, err = parseWhen(data.RecurrenceEndDate)
		if err != nil {
			return failure("I couldn't understand the recurrence end date.", err)
		}
		// A bare date means "through that day": extend to end of day so an
		// occurrence landing on the end date itself is kept.
		if len(strings.TrimSpace(data.RecurrenceEndDate)) == len("2006-01-02") {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
	}

	athlete, err := e.resolveAthlete(ctx, trainerID, data)
	if err != nil {
		return failure("Could not look up the athlete.", err)
	}
	if athlete == nil {
		return failure(fmt.Sprintf("I couldn't find an athlete matching %q on your roster.", data.AthleteName), nil)
	}

	recurrenceEnd := end
	parent := &types.Session{
		TrainerID:         trainerID,
		AthleteID:         athlete.ID,
		ScheduledAt:       scheduledAt,
		DurationMinutes:   durationOrDefault(data.DurationMinutes),
		Location:          data.Location,
		Notes:             data.Notes,
		IsRecurring:       true,
		RecurrencePattern: data.RecurrencePattern,
		RecurrenceEnd:     &recurrenceEnd,
	}
	if _, err := e.sessionRepo.Create(ctx, nil, []*types.Session{parent}); err != nil {
		return failure("Could not save the recurring session.", err)
	}

	var children []*types.Session
	for _, at := range NextOccurrences(scheduledAt, data.RecurrencePattern, end) {
		parentID := parent.ID
		children = append(children, &types.Session{
			TrainerID:       trainerID,
			AthleteID:       athlete.ID,
			ScheduledAt:     at,
			DurationMinutes: parent.DurationMinutes,
			Location:        parent.Location,
			Notes:           parent.Notes,
			ParentSessionID: &parentID,
		})
	}
	if len(children) > 0 {
		// Parent survives even if this batch fails; no transaction wraps
		// the two writes.
		if _, err := e.sessionRepo.Create(ctx, nil, children); err != nil {
			return failure("Saved the first session but could not save the repeats.", err)
		}
	}

	return ExecResult{
		Success: true,
		Message: fmt.Sprintf("Booked %s %s %s starting %s (%d sessions).",
			athlete.FirstName, athlete.LastName,
			strings.ToLower(data.RecurrencePattern),
			scheduledAt.In(e.loc).Format("Mon Jan 2 at 3:04 PM"),
			1+len(children)),
		Data: parent,
	}
}

// updateSession reschedules the first matching upcoming session. Matching
// mirrors cancellation: same athlete, same local day as the original time
// when one was given.
func (e *Executor) updateSession(ctx context.Context, trainerID uuid.UUID, data *SessionData) ExecResult {
	if data == nil {
		return failure("No session details were provided.", nil)
	}
	scheduledAt, err := parseWhen(data.ScheduledAt)
	if err != nil {
		return failure("I couldn't understand the new session time.", err)
	}

	session, res := e.findTargetSession(ctx, trainerID, data, scheduledAt)
	if session == nil {
		return res
	}

	fields := map[string]any{"scheduled_at": scheduledAt}
	if data.DurationMinutes > 0 {
		fields["duration_minutes"] = data.DurationMinutes
	}
	if data.Location != "" {
		fields["location"] = data.Location
	}
	if data.Notes != "" {
		fields["notes"] = data.Notes
	}
	if err := e.sessionRepo.UpdateFields(ctx, nil, session.ID, fields); err != nil {
		return failure("Could not update the session.", err)
	}

	return ExecResult{
		Success: true,
		Message: fmt.Sprintf("Moved the session to %s.", scheduledAt.In(e.loc).Format("Mon Jan 2 at 3:04 PM")),
		Data:    session.ID,
	}
}

func (e *Executor) cancelSession(ctx context.Context, trainerID uuid.UUID, data *SessionData) ExecResult {
	if data == nil {
		return failure("No session details were provided.", nil)
	}

	when := e.now()
	if data.ScheduledAt != "" {
		parsed, err := parseWhen(data.ScheduledAt)
		if err != nil {
			return failure("I couldn't understand which day to cancel.", err)
		}
		when = parsed
	}
	dayStart, dayEnd := localDayBounds(when, e.loc)

	var athleteID *uuid.UUID
	if data.AthleteID != "" {
		if id, err := uuid.Parse(data.AthleteID); err == nil {
			athleteID = &id
		}
	}

	session, err := e.sessionRepo.FirstCancellable(ctx, nil, trainerID, athleteID, firstToken(data.AthleteName), dayStart, dayEnd)
	if err != nil {
		return failure("Could not look up the session.", err)
	}
	if session == nil {
		return failure("I couldn't find a matching session to cancel.", nil)
	}

	if err := e.sessionRepo.MarkCancelled(ctx, nil, session.ID); err != nil {
		return failure("Could not cancel the session.", err)
	}
	return ExecResult{
		Success: true,
		Message: fmt.Sprintf("Cancelled the session on %s.", session.ScheduledAt.In(e.loc).Format("Mon Jan 2 at 3:04 PM")),
		Data:    session.ID,
	}
}

func (e *Executor) createAthlete(ctx context.Context, trainerID uuid.UUID, data *AthleteData) ExecResult {
	if data == nil || strings.TrimSpace(data.FirstName) == "" {
		return failure("I need at least the athlete's first name.", nil)
	}

	email := strings.TrimSpace(data.Email)
	if email == "" {
		email = placeholderEmail(data.FirstName, data.LastName, e.now())
	} else {
		exists, err := e.athleteRepo.EmailExists(ctx, nil, email)
		if err != nil {
			return failure("Could not check the athlete's email.", err)
		}
		if exists {
			return failure(fmt.Sprintf("An athlete with email %s already exists.", email), nil)
		}
	}

	athlete := &types.Athlete{
		TrainerID: &trainerID,
		FirstName: strings.TrimSpace(data.FirstName),
		LastName:  strings.TrimSpace(data.LastName),
		Email:     email,
		Phone:     data.Phone,
		Goals:     data.Goals,
	}
	if _, err := e.athleteRepo.Create(ctx, nil, []*types.Athlete{athlete}); err != nil {
		return failure("Could not save the athlete.", err)
	}

	return ExecResult{
		Success: true,
		Message: fmt.Sprintf("Added %s %s to your roster.", athlete.FirstName, athlete.LastName),
		Data:    athlete,
	}
}

func (e *Executor) runQuery(ctx context.Context, trainerID uuid.UUID, data *QueryData) ExecResult {
	if data == nil {
		return failure("I couldn't tell what you wanted to look up.", nil)
	}

	filter, err := e.sessionFilter(ctx, trainerID, data.Filters)
	if err != nil {
		return failure("Could not resolve the query filters.", err)
	}

	switch data.Type {
	case QuerySessionsList:
		sessions, err := e.sessionRepo.ListByTrainer(ctx, nil, trainerID, filter, queryRowCap)
		if err != nil {
			return failure("Could not list sessions.", err)
		}
		return ExecResult{Success: true, Message: fmt.Sprintf("Found %d sessions.", len(sessions)), Data: sessions}

	case QuerySessionsCount:
		count, err := e.sessionRepo.CountByTrainer(ctx, nil, trainerID, filter)
		if err != nil {
			return failure("Could not count sessions.", err)
		}
		return ExecResult{Success: true, Message: fmt.Sprintf("You have %d sessions.", count), Data: count}

	case QueryAthletesList:
		athletes, err := e.athleteRepo.ListByTrainer(ctx, nil, trainerID, queryRowCap)
		if err != nil {
			return failure("Could not list athletes.", err)
		}
		return ExecResult{Success: true, Message: fmt.Sprintf("You have %d athletes.", len(athletes)), Data: athletes}

	case QueryAthletesCount:
		count, err := e.athleteRepo.CountByTrainer(ctx, nil, trainerID)
		if err != nil {
			return failure("Could not count athletes.", err)
		}
		return ExecResult{Success: true, Message: fmt.Sprintf("You have %d athletes.", count), Data: count}

	case QueryScheduleSummary:
		from := e.now()
		to := from.Add(7 * 24 * time.Hour)
		if filter.From != nil {
			from = *filter.From
		}
		if filter.To != nil {
			to = *filter.To
		}
		summaryFilter := filter
		summaryFilter.From = &from
		summaryFilter.To = &to
		sessions, err := e.sessionRepo.ListByTrainer(ctx, nil, trainerID, summaryFilter, queryRowCap)
		if err != nil {
			return failure("Could not build the schedule summary.", err)
		}
		return ExecResult{
			Success: true,
			Message: fmt.Sprintf("%d sessions between %s and %s.",
				len(sessions), from.In(e.loc).Format("Jan 2"), to.In(e.loc).Format("Jan 2")),
			Data: sessions,
		}
	}

	return failure("I couldn't tell what you wanted to look up.", nil)
}

func (e *Executor) sessionFilter(ctx context.Context, trainerID uuid.UUID, f QueryFilters) (scheduling.SessionFilter, error) {
	var filter scheduling.SessionFilter
	filter.Status = f.Status

	if f.AthleteID != "" {
		if id, err := uuid.Parse(f.AthleteID); err == nil {
			filter.AthleteID = &id
		}
	}
	if filter.AthleteID == nil && f.AthleteName != "" {
		athlete, err := e.athleteRepo.FirstByName(ctx, nil, &trainerID, firstToken(f.AthleteName))
		if err != nil {
			return filter, err
		}
		if athlete != nil {
			filter.AthleteID = &athlete.ID
		}
	}
	if f.From != "" {
		if t, err := parseWhen(f.From); err == nil {
			filter.From = &t
		}
	}
	if f.To != "" {
		if t, err := parseWhen(f.To); err == nil {
			filter.To = &t
		}
	}
	return filter, nil
}

// findTargetSession locates the session an update refers to, reusing the
// cancel matching rules against the athlete's existing bookings.
func (e *Executor) findTargetSession(ctx context.Context, trainerID uuid.UUID, data *SessionData, newTime time.Time) (*types.Session, ExecResult) {
	var athleteID *uuid.UUID
	if data.AthleteID != "" {
		if id, err := uuid.Parse(data.AthleteID); err == nil {
			athleteID = &id
		}
	}

	dayStart, dayEnd := localDayBounds(newTime, e.loc)
	session, err := e.sessionRepo.FirstCancellable(ctx, nil, trainerID, athleteID, firstToken(data.AthleteName), dayStart, dayEnd)
	if err != nil {
		return nil, failure("Could not look up the session.", err)
	}
	if session == nil {
		// Fall back to the athlete's next upcoming session on any day.
		filter := scheduling.SessionFilter{AthleteID: athleteID, Status: "upcoming"}
		if athleteID == nil && data.AthleteName != "" {
			athlete, err := e.athleteRepo.FirstByName(ctx, nil, &trainerID, firstToken(data.AthleteName))
			if err != nil {
				return nil, failure("Could not look up the athlete.", err)
			}
			if athlete != nil {
				filter.AthleteID = &athlete.ID
			}
		}
		if filter.AthleteID == nil {
			return nil, failure("I couldn't find a matching session to reschedule.", nil)
		}
		sessions, err := e.sessionRepo.ListByTrainer(ctx, nil, trainerID, filter, 1)
		if err != nil {
			return nil, failure("Could not look up the session.", err)
		}
		if len(sessions) == 0 {
			return nil, failure("I couldn't find a matching session to reschedule.", nil)
		}
		session = sessions[0]
	}
	return session, ExecResult{}
}

// --- helpers ---

func failure(msg string, err error) ExecResult {
	res := ExecResult{Success: false, Message: msg}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func durationOrDefault(minutes int) int {
	if minutes <= 0 {
		return 60
	}
	return minutes
}

// parseWhen accepts the ISO-8601 shapes the model emits: full RFC3339, a
// timestamp without zone (treated as UTC), or a bare date.
func parseWhen(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func localDayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

func splitName(full string) (string, string) {
	parts := strings.Fields(strings.TrimSpace(full))
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func firstToken(name string) string {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func athleteBelongsTo(a *types.Athlete, trainerID uuid.UUID) bool {
	return a.TrainerID != nil && *a.TrainerID == trainerID
}

// placeholderEmail derives a unique synthetic address for athletes created
// without one. The nanosecond stamp keeps repeated creates distinct.
func placeholderEmail(first, last string, now time.Time) string {
	slug := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		return strings.ReplaceAll(s, " ", ".")
	}
	local := slug(first)
	if last != "" {
		local += "." + slug(last)
	}
	if local == "" {
		local = "athlete"
	}
	return fmt.Sprintf("%s.%d@placeholder.gymdesk.local", local, now.UnixNano())
}
