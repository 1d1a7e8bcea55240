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

const (
	snapshotAthleteCap = 100
	snapshotSessionCap = 50
	adminWindow        = 48 * time.Hour
)

// Snapshot is the slice of current data rendered into the prompt so the
// model can resolve names and ids. Capped: at most 100 athletes and, for the
// admin variant, at most 50 sessions inside the next 48 hours.
type Snapshot struct {
	Now      time.Time
	Offset   string // signed UTC offset of the studio's timezone, e.g. "-06:00"
	Trainers []*types.Trainer
	Athletes []*types.Athlete
	Sessions []*types.Session
}

// SnapshotBuilder assembles prompt snapshots from the relational store.
type SnapshotBuilder struct {
	trainerRepo roster.TrainerRepo
	athleteRepo roster.AthleteRepo
	sessionRepo scheduling.SessionRepo
	log         *logger.Logger

	// now and loc are injectable for tests.
	now func() time.Time
	loc *time.Location
}

func NewSnapshotBuilder(
	trainerRepo roster.TrainerRepo,
	athleteRepo roster.AthleteRepo,
	sessionRepo scheduling.SessionRepo,
	loc *time.Location,
	baseLog *logger.Logger,
) *SnapshotBuilder {
	if loc == nil {
		loc = time.Local
	}
	return &SnapshotBuilder{
		trainerRepo: trainerRepo,
		athleteRepo: athleteRepo,
		sessionRepo: sessionRepo,
		log:         baseLog.With("service", "SnapshotBuilder"),
		now:         time.Now,
		loc:         loc,
	}
}

// BuildForTrainer collects the trainer's own roster and sessions.
func (sb *SnapshotBuilder) BuildForTrainer(ctx context.Context, trainerID uuid.UUID) (*Snapshot, error) {
	athletes, err := sb.athleteRepo.ListByTrainer(ctx, nil, trainerID, snapshotAthleteCap)
	if err != nil {
		return nil, fmt.Errorf("snapshot athletes: %w", err)
	}

	now := sb.now().In(sb.loc)
	sessions, err := sb.sessionRepo.ListByTrainer(ctx, nil, trainerID, scheduling.SessionFilter{
		From: timePtr(now.Add(-adminWindow)),
	}, snapshotSessionCap)
	if err != nil {
		return nil, fmt.Errorf("snapshot sessions: %w", err)
	}

	return &Snapshot{
		Now:      now,
		Offset:   UTCOffset(now),
		Athletes: athletes,
		Sessions: sessions,
	}, nil
}

// BuildForAdmin collects the whole studio: every trainer, the athlete roster
// (capped), and the next 48 hours of sessions ascending.
func (sb *SnapshotBuilder) BuildForAdmin(ctx context.Context) (*Snapshot, error) {
	trainers, err := sb.trainerRepo.List(ctx, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("snapshot trainers: %w", err)
	}
	athletes, err := sb.athleteRepo.List(ctx, nil, snapshotAthleteCap)
	if err != nil {
		return nil, fmt.Errorf("snapshot athletes: %w", err)
	}

	now := sb.now().In(sb.loc)
	sessions, err := sb.sessionRepo.ListUpcoming(ctx, nil, now, now.Add(adminWindow), snapshotSessionCap)
	if err != nil {
		return nil, fmt.Errorf("snapshot sessions: %w", err)
	}

	return &Snapshot{
		Now:      now,
		Offset:   UTCOffset(now),
		Trainers: trainers,
		Athletes: athletes,
		Sessions: sessions,
	}, nil
}

// UTCOffset formats t's zone offset as a signed "±HH:MM" string.
func UTCOffset(t time.Time) string {
	_, secs := t.Zone()
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	return fmt.Sprintf("%s%02d:%02d", sign, secs/3600, (secs%3600)/60)
}

// --- prompt rendering helpers ---

func (s *Snapshot) renderTrainers(b *strings.Builder) {
	if len(s.Trainers) == 0 {
		return
	}
	b.WriteString("TRAINERS:\n")
	for _, t := range s.Trainers {
		name := ""
		if t.User != nil {
			name = strings.TrimSpace(t.User.FirstName + " " + t.User.LastName)
		}
		fmt.Fprintf(b, "- id=%s name=%q specialty=%q\n", t.ID, name, t.Specialty)
	}
	b.WriteString("\n")
}

func (s *Snapshot) renderAthletes(b *strings.Builder) {
	b.WriteString("ATHLETES:\n")
	if len(s.Athletes) == 0 {
		b.WriteString("(none on record)\n")
	}
	for _, a := range s.Athletes {
		trainer := "unassigned"
		if a.TrainerID != nil {
			trainer = a.TrainerID.String()
		}
		fmt.Fprintf(b, "- id=%s name=%q email=%q trainerId=%s\n",
			a.ID, a.FirstName+" "+a.LastName, a.Email, trainer)
	}
	b.WriteString("\n")
}

func (s *Snapshot) renderSessions(b *strings.Builder) {
	b.WriteString("SESSIONS:\n")
	if len(s.Sessions) == 0 {
		b.WriteString("(none in window)\n")
	}
	for _, sess := range s.Sessions {
		athlete := sess.AthleteID.String()
		if sess.Athlete != nil {
			athlete = sess.Athlete.FirstName + " " + sess.Athlete.LastName
		}
		status := "scheduled"
		if sess.Cancelled {
			status = "cancelled"
		} else if sess.Completed {
			status = "completed"
		}
		fmt.Fprintf(b, "- id=%s athlete=%q at=%s duration=%dm status=%s\n",
			sess.ID, athlete, sess.ScheduledAt.In(s.Now.Location()).Format(time.RFC3339),
			sess.DurationMinutes, status)
	}
	b.WriteString("\n")
}

func timePtr(t time.Time) *time.Time { return &t }
