package assistant

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	repos "github.com/novafit/gymdesk-backend/internal/data/repos/assistant"
	"github.com/novafit/gymdesk-backend/internal/data/repos/roster"
	"github.com/novafit/gymdesk-backend/internal/data/repos/scheduling"
	"github.com/novafit/gymdesk-backend/internal/data/repos/testutil"
	types "github.com/novafit/gymdesk-backend/internal/domain"
	apperrors "github.com/novafit/gymdesk-backend/internal/pkg/errors"
	"github.com/novafit/gymdesk-backend/internal/requestdata"
)

type stubProvider struct {
	reply string
	err   error
}

func (p *stubProvider) Complete(ctx context.Context, system, user string) (string, error) {
	return p.reply, p.err
}

func newTestService(t *testing.T, tx *gorm.DB, provider Provider) *Service {
	t.Helper()
	log := testutil.Logger(t)
	trainerRepo := roster.NewTrainerRepo(tx, log)
	athleteRepo := roster.NewAthleteRepo(tx, log)
	sessionRepo := scheduling.NewSessionRepo(tx, log)

	return NewService(
		provider,
		NewSnapshotBuilder(trainerRepo, athleteRepo, sessionRepo, time.UTC, log),
		NewExecutor(athleteRepo, sessionRepo, time.UTC, log),
		NewAdminExecutor(tx, log),
		repos.NewActionLogRepo(tx, log),
		nil, // no redis in tests: undo resolves through the action log
		log,
	)
}

func trainerCtx(trainer *types.Trainer) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:    trainer.UserID,
		Role:      types.RoleTrainer,
		TrainerID: &trainer.ID,
	})
}

func adminCtx(user *types.User) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: user.ID,
		Role:   types.RoleAdmin,
	})
}

func TestParseExecutesTrainerActionAndLogsIt(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	trainer := testutil.SeedTrainer(t, context.Background(), tx, "svc1@studio.test")
	athlete := testutil.SeedAthlete(t, context.Background(), tx, &trainer.ID, "Tess", "tess@example.test")

	reply := fmt.Sprintf(`{
		"action": "CREATE_SESSION",
		"confidence": 0.9,
		"data": {"session": {"athleteId": %q, "scheduledAt": "2024-05-01T15:00:00Z"}},
		"clarificationNeeded": null,
		"humanReadableSummary": "Book Tess on May 1."
	}`, athlete.ID)

	svc := newTestService(t, tx, &stubProvider{reply: reply})
	resp, err := svc.Parse(trainerCtx(trainer), "book tess may 1st at 3pm", true)
	if err != nil {
		t.Fatal(err)
	}

	result, ok := resp.Result.(ExecResult)
	if !ok || !result.Success {
		t.Fatalf("unexpected result: %#v", resp.Result)
	}

	var count int64
	if err := tx.Model(&types.Session{}).Where("athlete_id = ?", athlete.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected the booked session, got %d rows", count)
	}

	logged, err := svc.LastAction(trainerCtx(trainer))
	if err != nil {
		t.Fatal(err)
	}
	if logged.Action != string(ActionCreateSession) || !logged.Success {
		t.Errorf("logged action: %+v", logged)
	}
	if logged.InputText != "book tess may 1st at 3pm" {
		t.Errorf("input text: %q", logged.InputText)
	}
}

func TestParseProviderFailureDegradesToFallback(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	trainer := testutil.SeedTrainer(t, context.Background(), tx, "svc2@studio.test")

	svc := newTestService(t, tx, &stubProvider{err: errors.New("upstream 500")})
	resp, err := svc.Parse(trainerCtx(trainer), "book someone sometime", true)
	if err != nil {
		t.Fatal(err)
	}

	parsed, ok := resp.Parsed.(ParsedAction)
	if !ok {
		t.Fatalf("unexpected parsed type: %#v", resp.Parsed)
	}
	assertTrainerFallback(t, parsed)

	result, ok := resp.Result.(ExecResult)
	if !ok || result.Success {
		t.Fatalf("fallback must not execute anything: %#v", resp.Result)
	}

	var count int64
	if err := tx.Model(&types.Session{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("fallback wrote %d session rows", count)
	}
}

func TestAdminParseUndoThroughActionLog(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	admin := testutil.SeedUser(t, context.Background(), tx, "svc3@studio.test", types.RoleAdmin)

	reply := `{
		"operations": [
			{"model": "athlete", "method": "create", "args": {"data": {"first_name": "Temp", "last_name": "Row", "email": "temp@example.test"}}}
		],
		"isQuery": false,
		"confidence": 0.9,
		"clarificationNeeded": null,
		"humanReadableSummary": "Add Temp Row."
	}`

	svc := newTestService(t, tx, &stubProvider{reply: reply})
	ctx := adminCtx(admin)

	resp, err := svc.Parse(ctx, "add athlete temp row, temp@example.test", true)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.CanUndo {
		t.Fatal("create batch should be undoable")
	}

	var count int64
	if err := tx.Model(&types.Athlete{}).Where("email = ?", "temp@example.test").Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("create did not land: %d rows", count)
	}

	undoRes, err := svc.Undo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !undoRes.Success {
		t.Fatalf("undo failed: %s (%s)", undoRes.Message, undoRes.Error)
	}
	if err := tx.Model(&types.Athlete{}).Where("email = ?", "temp@example.test").Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("undo left %d rows", count)
	}
}

func TestUndoForbiddenForTrainers(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	trainer := testutil.SeedTrainer(t, context.Background(), tx, "svc4@studio.test")

	svc := newTestService(t, tx, &stubProvider{reply: "{}"})
	if _, err := svc.Undo(trainerCtx(trainer)); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUndoWithoutHistory(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	admin := testutil.SeedUser(t, context.Background(), tx, "svc5@studio.test", types.RoleAdmin)

	svc := newTestService(t, tx, &stubProvider{reply: "{}"})
	if _, err := svc.Undo(adminCtx(admin)); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
