package assistant

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/novafit/gymdesk-backend/internal/data/repos/testutil"
	types "github.com/novafit/gymdesk-backend/internal/domain"
	"github.com/novafit/gymdesk-backend/internal/utils"
)

func newTestAdminExecutor(t *testing.T, tx *gorm.DB) *AdminExecutor {
	t.Helper()
	return NewAdminExecutor(tx, testutil.Logger(t))
}

func TestAdminCreateProducesDeleteUndo(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	ae := newTestAdminExecutor(t, tx)

	res := ae.Execute(ctx, AdminParse{
		Operations: []Operation{{
			Model:  "athlete",
			Method: "create",
			Args: map[string]any{"data": map[string]any{
				"first_name": "Nora",
				"last_name":  "Reyes",
				"email":      "nora@example.test",
			}},
		}},
		HumanReadableSummary: "Add Nora Reyes.",
	})
	if !res.Success {
		t.Fatalf("execute failed: %s (%s)", res.Message, res.Error)
	}
	if len(res.UndoOperations) != 1 {
		t.Fatalf("expected 1 undo op, got %d", len(res.UndoOperations))
	}
	undo := res.UndoOperations[0]
	if undo.Model != "athlete" || undo.Method != "delete" {
		t.Fatalf("undo op: %+v", undo)
	}

	var count int64
	if err := tx.Model(&types.Athlete{}).Where("email = ?", "nora@example.test").Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected the created row, got %d", count)
	}

	// Replaying the undo removes the row again.
	undoRes := ae.ReplayUndo(ctx, res.UndoOperations)
	if !undoRes.Success {
		t.Fatalf("undo failed: %s (%s)", undoRes.Message, undoRes.Error)
	}
	if err := tx.Model(&types.Athlete{}).Where("email = ?", "nora@example.test").Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("row survived the undo")
	}
}

func TestAdminCreateUserHashesPasswordPlaceholder(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	ae := newTestAdminExecutor(t, tx)

	res := ae.Execute(ctx, AdminParse{
		Operations: []Operation{{
			Model:  "user",
			Method: "create",
			Args: map[string]any{"data": map[string]any{
				"email":      "jane@studio.test",
				"password":   "__PASSWORD__:hunter2secret",
				"first_name": "Jane",
				"last_name":  "Doe",
				"role":       "TRAINER",
			}},
		}},
	})
	if !res.Success {
		t.Fatalf("execute failed: %s (%s)", res.Message, res.Error)
	}

	var user types.User
	if err := tx.First(&user, "email = ?", "jane@studio.test").Error; err != nil {
		t.Fatal(err)
	}
	if user.Password == "hunter2secret" || user.Password == "__PASSWORD__:hunter2secret" {
		t.Fatal("password stored in the clear")
	}
	if err := utils.CheckPassword(user.Password, "hunter2secret"); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestAdminSingleRowUpdateEmitsNoUndo(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	trainer := testutil.SeedTrainer(t, ctx, tx, "adm1@studio.test")
	athlete := testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Omar", "omar@example.test")
	ae := newTestAdminExecutor(t, tx)

	res := ae.Execute(ctx, AdminParse{
		Operations: []Operation{{
			Model:  "athlete",
			Method: "update",
			Args: map[string]any{
				"where": map[string]any{"id": athlete.ID.String()},
				"data":  map[string]any{"first_name": "Omar-Updated"},
			},
		}},
	})
	if !res.Success {
		t.Fatalf("execute failed: %s (%s)", res.Message, res.Error)
	}

	var reloaded types.Athlete
	if err := tx.First(&reloaded, "id = ?", athlete.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.FirstName != "Omar-Updated" {
		t.Fatalf("update not applied: %q", reloaded.FirstName)
	}

	// The undo snapshot is read back after the write, so it always matches
	// the values just applied and nothing usable is recorded.
	if len(res.UndoOperations) != 0 {
		t.Errorf("expected no undo ops for a single-row update, got %+v", res.UndoOperations)
	}
}

func TestAdminBatchStopsAtFirstFailureKeepingEarlierEffects(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	ae := newTestAdminExecutor(t, tx)

	res := ae.Execute(ctx, AdminParse{
		Operations: []Operation{
			{
				Model:  "athlete",
				Method: "create",
				Args: map[string]any{"data": map[string]any{
					"first_name": "Kept",
					"last_name":  "Row",
					"email":      "kept@example.test",
				}},
			},
			{
				Model:  "athlete",
				Method: "create",
				Args: map[string]any{"data": map[string]any{
					"first_name":  "Never",
					"email":       "never@example.test",
					"credit_card": "4111",
				}},
			},
			{
				Model:  "athlete",
				Method: "create",
				Args: map[string]any{"data": map[string]any{
					"first_name": "Unreached",
					"email":      "unreached@example.test",
				}},
			},
		},
	})
	if res.Success {
		t.Fatal("batch should have failed on the disallowed column")
	}

	var emails []string
	if err := tx.Model(&types.Athlete{}).Order("email").Pluck("email", &emails).Error; err != nil {
		t.Fatal(err)
	}
	if len(emails) != 1 || emails[0] != "kept@example.test" {
		t.Fatalf("expected only the first create to land, got %v", emails)
	}
	// The successful create before the failure still reports its undo.
	if len(res.UndoOperations) != 1 {
		t.Errorf("expected the surviving create's undo op, got %d", len(res.UndoOperations))
	}
}

func TestAdminCancelFlipUndoRestoresSessions(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	trainer := testutil.SeedTrainer(t, ctx, tx, "adm2@studio.test")
	athlete := testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Vera", "vera@example.test")
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	testutil.SeedSession(t, ctx, tx, trainer.ID, athlete.ID, day.Add(9*time.Hour))
	testutil.SeedSession(t, ctx, tx, trainer.ID, athlete.ID, day.Add(14*time.Hour))
	ae := newTestAdminExecutor(t, tx)

	res := ae.Execute(ctx, AdminParse{
		Operations: []Operation{{
			Model:  "session",
			Method: "updateMany",
			Args: map[string]any{
				"where": map[string]any{
					"cancelled":        false,
					"scheduled_at_gte": day.Format(time.RFC3339),
					"scheduled_at_lt":  day.AddDate(0, 0, 1).Format(time.RFC3339),
				},
				"data": map[string]any{"cancelled": true},
			},
		}},
	})
	if !res.Success {
		t.Fatalf("execute failed: %s (%s)", res.Message, res.Error)
	}

	var cancelled int64
	if err := tx.Model(&types.Session{}).Where("cancelled = ?", true).Count(&cancelled).Error; err != nil {
		t.Fatal(err)
	}
	if cancelled != 2 {
		t.Fatalf("expected 2 cancelled sessions, got %d", cancelled)
	}
	if len(res.UndoOperations) != 1 {
		t.Fatalf("expected a flip undo op, got %d", len(res.UndoOperations))
	}

	undoRes := ae.ReplayUndo(ctx, res.UndoOperations)
	if !undoRes.Success {
		t.Fatalf("undo failed: %s (%s)", undoRes.Message, undoRes.Error)
	}
	if err := tx.Model(&types.Session{}).Where("cancelled = ?", true).Count(&cancelled).Error; err != nil {
		t.Fatal(err)
	}
	if cancelled != 0 {
		t.Errorf("%d sessions still cancelled after undo", cancelled)
	}
}

func TestAdminFindManyStripsPasswordAndHonorsNullFilter(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	trainer := testutil.SeedTrainer(t, ctx, tx, "adm3@studio.test")
	testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Assigned", "assigned@example.test")
	testutil.SeedAthlete(t, ctx, tx, nil, "Waiting", "waiting@example.test")
	ae := newTestAdminExecutor(t, tx)

	res := ae.Execute(ctx, AdminParse{
		Operations: []Operation{{
			Model:  "athlete",
			Method: "findMany",
			Args:   map[string]any{"where": map[string]any{"trainer_id": nil}},
		}},
		IsQuery: true,
	})
	if !res.Success {
		t.Fatalf("execute failed: %s (%s)", res.Message, res.Error)
	}
	if res.Count != 1 {
		t.Fatalf("expected 1 unassigned athlete, got %d", res.Count)
	}

	users := ae.Execute(ctx, AdminParse{
		Operations: []Operation{{
			Model:  "user",
			Method: "findMany",
			Args:   map[string]any{"where": map[string]any{}},
		}},
		IsQuery: true,
	})
	if !users.Success {
		t.Fatalf("user query failed: %s", users.Error)
	}
	rows, ok := users.ReadData.([]map[string]any)
	if !ok || len(rows) == 0 {
		t.Fatalf("unexpected read data: %#v", users.ReadData)
	}
	for _, row := range rows {
		if _, leaked := row["password"]; leaked {
			t.Error("password column leaked through findMany")
		}
	}
}

func TestAdminRejectsUnknownEntityAndVerb(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	ae := newTestAdminExecutor(t, tx)

	if res := ae.Execute(ctx, AdminParse{
		Operations: []Operation{{Model: "invoice", Method: "create", Args: map[string]any{"data": map[string]any{}}}},
	}); res.Success {
		t.Error("unknown entity accepted")
	}
	if res := ae.Execute(ctx, AdminParse{
		Operations: []Operation{{Model: "user", Method: "truncate", Args: map[string]any{}}},
	}); res.Success {
		t.Error("unknown verb accepted")
	}
}
