package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/novafit/gymdesk-backend/internal/domain"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
	"github.com/novafit/gymdesk-backend/internal/utils"
)

// defaultStaffPassword is what "__DEFAULT_PASSWORD__" resolves to before
// hashing. New staff are expected to change it on first login.
const defaultStaffPassword = "ChangeMe123!"

const passwordPlaceholderPrefix = "__PASSWORD__:"

const adminFindCap = 200

// adminEntity binds one allowlisted entity name to its table and columns.
// Everything the model may touch is enumerated here; an operation naming
// anything else is rejected before any SQL runs.
type adminEntity struct {
	table   string
	model   func() any
	columns map[string]bool
}

func colSet(cols ...string) map[string]bool {
	m := make(map[string]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return m
}

var adminEntities = map[string]adminEntity{
	"user": {
		table: "user",
		model: func() any { return &types.User{} },
		columns: colSet("id", "email", "password", "first_name", "last_name", "role",
			"created_at", "updated_at"),
	},
	"trainer": {
		table: "trainer",
		model: func() any { return &types.Trainer{} },
		columns: colSet("id", "user_id", "specialty", "bio",
			"created_at", "updated_at"),
	},
	"athlete": {
		table: "athlete",
		model: func() any { return &types.Athlete{} },
		columns: colSet("id", "trainer_id", "first_name", "last_name", "email",
			"phone", "goals", "notes", "created_at", "updated_at"),
	},
	"session": {
		table: "session",
		model: func() any { return &types.Session{} },
		columns: colSet("id", "trainer_id", "athlete_id", "scheduled_at",
			"duration_minutes", "location", "notes", "completed", "cancelled",
			"is_recurring", "recurrence_pattern", "recurrence_end",
			"parent_session_id", "created_at", "updated_at"),
	},
	"checkIn": {
		table: "check_in",
		model: func() any { return &types.CheckIn{} },
		columns: colSet("id", "athlete_id", "session_id", "checked_in_at",
			"notes", "created_at", "updated_at"),
	},
}

// AdminExecutor runs ordered free-form operation batches for admin input.
// Dispatch is a closed verb switch over the allowlisted entities above.
//
// Batches are not transactional: execution stops at the first failing
// operation and the effects of earlier operations are kept.
type AdminExecutor struct {
	db  *gorm.DB
	log *logger.Logger

	now func() time.Time
}

func NewAdminExecutor(db *gorm.DB, baseLog *logger.Logger) *AdminExecutor {
	return &AdminExecutor{
		db:  db,
		log: baseLog.With("service", "AdminExecutor"),
		now: time.Now,
	}
}

// Execute runs the batch in order and accumulates undo descriptors for the
// operations that support them. Creates undo to deletes; cancellation flips
// undo to the reverse flip. Deletes have no undo. Single-row updates snapshot
// the row after the write, so the snapshot always matches the values just
// applied and no undo entry is recorded for them.
func (ae *AdminExecutor) Execute(ctx context.Context, parse AdminParse) AdminResult {
	result := AdminResult{Success: true, Message: parse.HumanReadableSummary}

	for i, op := range parse.Operations {
		entity, ok := adminEntities[op.Model]
		if !ok {
			return ae.fail(result, i, op, fmt.Errorf("unknown entity %q", op.Model))
		}

		var (
			undo *Operation
			err  error
		)
		switch op.Method {
		case "create":
			undo, err = ae.execCreate(ctx, entity, op)
		case "update":
			undo, err = ae.execUpdate(ctx, entity, op)
		case "updateMany":
			undo, err = ae.execUpdateMany(ctx, entity, op)
		case "delete":
			err = ae.execDelete(ctx, entity, op, false)
		case "deleteMany":
			err = ae.execDelete(ctx, entity, op, true)
		case "findMany":
			err = ae.execFind(ctx, entity, op, &result, true)
		case "findFirst":
			err = ae.execFind(ctx, entity, op, &result, false)
		default:
			err = fmt.Errorf("unknown verb %q", op.Method)
		}
		if err != nil {
			return ae.fail(result, i, op, err)
		}
		if undo != nil {
			result.UndoOperations = append(result.UndoOperations, *undo)
		}
	}

	return result
}

// ReplayUndo re-executes stored undo descriptors through the same dispatch
// table. Best effort: the first failure stops the replay.
func (ae *AdminExecutor) ReplayUndo(ctx context.Context, ops []Operation) AdminResult {
	return ae.Execute(ctx, AdminParse{
		Operations:           ops,
		HumanReadableSummary: "Undo the previous action.",
	})
}

func (ae *AdminExecutor) fail(result AdminResult, idx int, op Operation, err error) AdminResult {
	ae.log.Warn("admin operation failed", "index", idx, "model", op.Model, "method", op.Method, "error", err)
	result.Success = false
	result.Message = fmt.Sprintf("Operation %d (%s.%s) failed; earlier operations were kept.", idx+1, op.Model, op.Method)
	result.Error = err.Error()
	return result
}

// --- verbs ---

func (ae *AdminExecutor) execCreate(ctx context.Context, entity adminEntity, op Operation) (*Operation, error) {
	data, err := ae.argMap(op, "data", true)
	if err != nil {
		return nil, err
	}
	row, err := ae.normalize(entity, data)
	if err != nil {
		return nil, err
	}

	// Map creates bypass the model hooks, so identity and timestamps are
	// injected here.
	id := uuid.New()
	now := ae.now().UTC()
	row["id"] = id
	row["created_at"] = now
	row["updated_at"] = now

	if err := ae.db.WithContext(ctx).Model(entity.model()).Create(row).Error; err != nil {
		return nil, err
	}

	undo := &Operation{
		Model:  op.Model,
		Method: "delete",
		Args:   map[string]any{"where": map[string]any{"id": id.String()}},
	}
	return undo, nil
}

func (ae *AdminExecutor) execUpdate(ctx context.Context, entity adminEntity, op Operation) (*Operation, error) {
	where, err := ae.argMap(op, "where", true)
	if err != nil {
		return nil, err
	}
	data, err := ae.argMap(op, "data", true)
	if err != nil {
		return nil, err
	}
	row, err := ae.normalize(entity, data)
	if err != nil {
		return nil, err
	}
	row["updated_at"] = ae.now().UTC()

	q, err := ae.applyWhere(ae.db.WithContext(ctx).Model(entity.model()), entity, where)
	if err != nil {
		return nil, err
	}
	if err := q.Updates(row).Error; err != nil {
		return nil, err
	}

	// Snapshot the row for the undo descriptor. The read happens after the
	// write, so the captured values are the ones just applied; a descriptor
	// that would re-apply them is useless and is dropped.
	var snapshot []map[string]any
	sq, err := ae.applyWhere(ae.db.WithContext(ctx).Model(entity.model()), entity, where)
	if err != nil {
		return nil, err
	}
	if err := sq.Limit(1).Find(&snapshot).Error; err != nil {
		return nil, err
	}
	if len(snapshot) == 1 && valuesMatch(snapshot[0], row) {
		return nil, nil
	}
	if len(snapshot) == 1 {
		restore := map[string]any{}
		for k := range row {
			if k == "updated_at" {
				continue
			}
			restore[k] = snapshot[0][k]
		}
		return &Operation{
			Model:  op.Model,
			Method: "update",
			Args:   map[string]any{"where": where, "data": restore},
		}, nil
	}
	return nil, nil
}

func (ae *AdminExecutor) execUpdateMany(ctx context.Context, entity adminEntity, op Operation) (*Operation, error) {
	where, err := ae.argMap(op, "where", true)
	if err != nil {
		return nil, err
	}
	data, err := ae.argMap(op, "data", true)
	if err != nil {
		return nil, err
	}
	row, err := ae.normalize(entity, data)
	if err != nil {
		return nil, err
	}
	row["updated_at"] = ae.now().UTC()

	q, err := ae.applyWhere(ae.db.WithContext(ctx).Model(entity.model()), entity, where)
	if err != nil {
		return nil, err
	}
	if err := q.Updates(row).Error; err != nil {
		return nil, err
	}

	// The only bulk update with a safe inverse is the session cancellation
	// flip: rows are selected by the flipped flag and flipped back.
	if cancelled, ok := row["cancelled"].(bool); ok && entity.table == "session" && len(row) == 2 {
		undoWhere := map[string]any{}
		for k, v := range where {
			undoWhere[k] = v
		}
		if _, had := undoWhere["cancelled"]; had {
			undoWhere["cancelled"] = cancelled
		}
		return &Operation{
			Model:  op.Model,
			Method: "updateMany",
			Args: map[string]any{
				"where": undoWhere,
				"data":  map[string]any{"cancelled": !cancelled},
			},
		}, nil
	}
	return nil, nil
}

func (ae *AdminExecutor) execDelete(ctx context.Context, entity adminEntity, op Operation, many bool) error {
	where, err := ae.argMap(op, "where", true)
	if err != nil {
		return err
	}
	if !many {
		if _, ok := where["id"]; !ok {
			return fmt.Errorf("delete requires where.id")
		}
	}
	if len(where) == 0 {
		return fmt.Errorf("refusing an unfiltered delete")
	}

	q, err := ae.applyWhere(ae.db.WithContext(ctx), entity, where)
	if err != nil {
		return err
	}
	// Soft delete; no undo descriptor is produced for deletions.
	return q.Delete(entity.model()).Error
}

func (ae *AdminExecutor) execFind(ctx context.Context, entity adminEntity, op Operation, result *AdminResult, many bool) error {
	where, err := ae.argMap(op, "where", false)
	if err != nil {
		return err
	}

	limit := adminFindCap
	if raw, ok := op.Args["limit"]; ok {
		if f, ok := raw.(float64); ok && int(f) > 0 && int(f) < adminFindCap {
			limit = int(f)
		}
	}
	if !many {
		limit = 1
	}

	q, err := ae.applyWhere(ae.db.WithContext(ctx).Model(entity.model()), entity, where)
	if err != nil {
		return err
	}

	var rows []map[string]any
	if err := q.Limit(limit).Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		delete(row, "password")
	}

	if many {
		result.ReadData = rows
		result.Count = len(rows)
		return nil
	}
	if len(rows) > 0 {
		result.ReadData = rows[0]
		result.Count = 1
	}
	return nil
}

// --- argument plumbing ---

func (ae *AdminExecutor) argMap(op Operation, key string, required bool) (map[string]any, error) {
	raw, ok := op.Args[key]
	if !ok {
		if required {
			return nil, fmt.Errorf("%s.%s requires args.%s", op.Model, op.Method, key)
		}
		return map[string]any{}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("args.%s must be an object", key)
	}
	return m, nil
}

// normalize validates column names against the entity allowlist and coerces
// values: ISO-8601 strings become time.Time, uuid strings become uuid.UUID,
// and password placeholders are hashed.
func (ae *AdminExecutor) normalize(entity adminEntity, data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(data))
	for col, val := range data {
		if !entity.columns[col] {
			return nil, fmt.Errorf("column %q is not allowed on %s", col, entity.table)
		}
		if col == "password" {
			hashed, err := resolvePassword(val)
			if err != nil {
				return nil, err
			}
			out[col] = hashed
			continue
		}
		out[col] = coerceValue(val)
	}
	return out, nil
}

func resolvePassword(val any) (string, error) {
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("password must be a string")
	}
	plain := s
	switch {
	case s == "__DEFAULT_PASSWORD__":
		plain = defaultStaffPassword
	case strings.HasPrefix(s, passwordPlaceholderPrefix):
		plain = strings.TrimPrefix(s, passwordPlaceholderPrefix)
	}
	return utils.HashPassword(plain)
}

func coerceValue(val any) any {
	s, ok := val.(string)
	if !ok {
		return val
	}
	if id, err := uuid.Parse(s); err == nil {
		return id
	}
	if t, err := parseWhen(s); err == nil && strings.ContainsAny(s, "T-") && len(s) >= len("2006-01-02") {
		return t
	}
	return s
}

// applyWhere translates the where map to SQL. Keys are allowlisted columns,
// optionally suffixed _gte/_gt/_lte/_lt for range comparisons; nil values
// become IS NULL.
func (ae *AdminExecutor) applyWhere(q *gorm.DB, entity adminEntity, where map[string]any) (*gorm.DB, error) {
	for key, val := range where {
		col, cmp := key, "="
		for suffix, op := range map[string]string{"_gte": ">=", "_gt": ">", "_lte": "<=", "_lt": "<"} {
			if strings.HasSuffix(key, suffix) {
				col, cmp = strings.TrimSuffix(key, suffix), op
				break
			}
		}
		if !entity.columns[col] {
			return nil, fmt.Errorf("column %q is not allowed on %s", col, entity.table)
		}
		if val == nil {
			if cmp != "=" {
				return nil, fmt.Errorf("null comparison on %q must be equality", col)
			}
			q = q.Where(col + " IS NULL")
			continue
		}
		q = q.Where(fmt.Sprintf("%s %s ?", col, cmp), coerceValue(val))
	}
	return q, nil
}

func valuesMatch(snapshot, applied map[string]any) bool {
	for k, v := range applied {
		if k == "updated_at" {
			continue
		}
		if fmt.Sprint(snapshot[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}
