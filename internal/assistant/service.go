package assistant

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	repos "github.com/novafit/gymdesk-backend/internal/data/repos/assistant"
	types "github.com/novafit/gymdesk-backend/internal/domain"
	redisclient "github.com/novafit/gymdesk-backend/internal/clients/redis"
	apperrors "github.com/novafit/gymdesk-backend/internal/pkg/errors"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
	"github.com/novafit/gymdesk-backend/internal/requestdata"
)

// ParseResponse is the API-facing outcome of one assistant invocation.
type ParseResponse struct {
	ActionID uuid.UUID `json:"actionId,omitempty"`
	Parsed   any       `json:"parsed"`
	Result   any       `json:"result,omitempty"`
	CanUndo  bool      `json:"canUndo"`
}

// cachedAction is the redis payload for the undo fast path.
type cachedAction struct {
	ActionID       uuid.UUID   `json:"actionId"`
	Summary        string      `json:"summary"`
	UndoOperations []Operation `json:"undoOperations,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Service runs the whole pipeline: snapshot, prompt, model call, validation,
// dispatch, and the persisted action log. The variant (trainer-scoped verbs
// vs admin free-form operations) is chosen by the caller's role.
type Service struct {
	provider  Provider
	snapshots *SnapshotBuilder
	executor  *Executor
	admin     *AdminExecutor
	actionLog repos.ActionLogRepo

	// lastActions is optional; a nil store means every undo goes through
	// the action log table.
	lastActions redisclient.LastActionStore

	log *logger.Logger
}

func NewService(
	provider Provider,
	snapshots *SnapshotBuilder,
	executor *Executor,
	admin *AdminExecutor,
	actionLog repos.ActionLogRepo,
	lastActions redisclient.LastActionStore,
	baseLog *logger.Logger,
) *Service {
	return &Service{
		provider:    provider,
		snapshots:   snapshots,
		executor:    executor,
		admin:       admin,
		actionLog:   actionLog,
		lastActions: lastActions,
		log:         baseLog.With("service", "AssistantService"),
	}
}

// Parse interprets one free-text request for the authenticated caller and,
// when execute is set, dispatches the resulting action. The parse never
// fails on model trouble: provider errors and invalid output degrade to the
// canonical fallback, which executes as a no-op clarification.
func (s *Service) Parse(ctx context.Context, text string, execute bool) (*ParseResponse, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperrors.ErrUnauthorized
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrInvalidArgument
	}

	if rd.IsAdmin() {
		return s.parseAdmin(ctx, rd, text, execute)
	}
	if rd.TrainerID == nil {
		return nil, apperrors.ErrForbidden
	}
	return s.parseTrainer(ctx, rd, text, execute)
}

func (s *Service) parseTrainer(ctx context.Context, rd *requestdata.RequestData, text string, execute bool) (*ParseResponse, error) {
	snap, err := s.snapshots.BuildForTrainer(ctx, *rd.TrainerID)
	if err != nil {
		return nil, err
	}

	parsed := s.completeTrainer(ctx, snap, text)
	resp := &ParseResponse{Parsed: parsed}
	if !execute {
		return resp, nil
	}

	result := s.executor.Execute(ctx, *rd.TrainerID, parsed)
	resp.Result = result

	actionID := s.recordAction(ctx, rd.UserID, text, string(parsed.Action), parsed.HumanReadableSummary, result.Success, parsed, nil)
	resp.ActionID = actionID
	return resp, nil
}

func (s *Service) parseAdmin(ctx context.Context, rd *requestdata.RequestData, text string, execute bool) (*ParseResponse, error) {
	snap, err := s.snapshots.BuildForAdmin(ctx)
	if err != nil {
		return nil, err
	}

	parsed := s.completeAdmin(ctx, snap, text)
	resp := &ParseResponse{Parsed: parsed}
	if !execute {
		return resp, nil
	}

	result := s.admin.Execute(ctx, parsed)
	resp.Result = result
	resp.CanUndo = len(result.UndoOperations) > 0

	actionID := s.recordAction(ctx, rd.UserID, text, adminActionLabel(parsed), parsed.HumanReadableSummary, result.Success, parsed, result.UndoOperations)
	resp.ActionID = actionID

	if s.lastActions != nil && actionID != uuid.Nil {
		cached := cachedAction{
			ActionID:       actionID,
			Summary:        parsed.HumanReadableSummary,
			UndoOperations: result.UndoOperations,
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.lastActions.Set(ctx, rd.UserID, cached); err != nil {
			s.log.Warn("last action cache write failed", "error", err)
		}
	}
	return resp, nil
}

func (s *Service) completeTrainer(ctx context.Context, snap *Snapshot, text string) ParsedAction {
	raw, err := s.provider.Complete(ctx, ComposeTrainerPrompt(snap), text)
	if err != nil {
		s.log.Warn("model completion failed", "error", err)
		return FallbackResult()
	}
	return ParseTrainerResponse(raw)
}

func (s *Service) completeAdmin(ctx context.Context, snap *Snapshot, text string) AdminParse {
	raw, err := s.provider.Complete(ctx, ComposeAdminPrompt(snap), text)
	if err != nil {
		s.log.Warn("model completion failed", "error", err)
		return FallbackAdminParse()
	}
	return ParseAdminResponse(raw)
}

// recordAction persists the invocation. Logging failures don't fail the
// request; the caller still gets the execution result.
func (s *Service) recordAction(ctx context.Context, userID uuid.UUID, text, action, summary string, success bool, parsed any, undoOps []Operation) uuid.UUID {
	parsedJSON, err := json.Marshal(parsed)
	if err != nil {
		s.log.Warn("marshal parsed action", "error", err)
		parsedJSON = []byte("{}")
	}

	row := &types.AssistantAction{
		UserID:    userID,
		InputText: text,
		Action:    action,
		Summary:   summary,
		Success:   success,
		Parsed:    datatypes.JSON(parsedJSON),
	}
	if len(undoOps) > 0 {
		undoJSON, err := json.Marshal(undoOps)
		if err == nil {
			row.UndoOps = datatypes.JSON(undoJSON)
		}
	}

	created, err := s.actionLog.Create(ctx, nil, []*types.AssistantAction{row})
	if err != nil {
		s.log.Error("persist assistant action", "error", err)
		return uuid.Nil
	}
	return created[0].ID
}

// Undo replays the undo descriptors of the caller's most recent action.
// Redis is the fast path; on a miss the action log row is used. Replay is
// best effort and stops at the first failing descriptor.
func (s *Service) Undo(ctx context.Context) (*AdminResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if !rd.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	ops, err := s.loadUndoOps(ctx, rd.UserID)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, apperrors.ErrNotFound
	}

	result := s.admin.ReplayUndo(ctx, ops)

	if s.lastActions != nil {
		if err := s.lastActions.Clear(ctx, rd.UserID); err != nil {
			s.log.Warn("last action cache clear failed", "error", err)
		}
	}
	return &result, nil
}

func (s *Service) loadUndoOps(ctx context.Context, userID uuid.UUID) ([]Operation, error) {
	if s.lastActions != nil {
		var cached cachedAction
		hit, err := s.lastActions.Get(ctx, userID, &cached)
		if err != nil {
			s.log.Warn("last action cache read failed", "error", err)
		} else if hit {
			return cached.UndoOperations, nil
		}
	}

	row, err := s.actionLog.LatestByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if row == nil || len(row.UndoOps) == 0 {
		return nil, nil
	}

	var ops []Operation
	if err := json.Unmarshal(row.UndoOps, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}

// LastAction returns the caller's most recent logged invocation, or
// ErrNotFound when there is none.
func (s *Service) LastAction(ctx context.Context) (*types.AssistantAction, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperrors.ErrUnauthorized
	}
	row, err := s.actionLog.LatestByUser(ctx, nil, rd.UserID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperrors.ErrNotFound
	}
	return row, nil
}

func adminActionLabel(parsed AdminParse) string {
	if len(parsed.Operations) == 0 {
		return string(ActionUnknown)
	}
	if parsed.IsQuery {
		return string(ActionQuery)
	}
	labels := make([]string, 0, len(parsed.Operations))
	for _, op := range parsed.Operations {
		labels = append(labels, op.Model+"."+op.Method)
	}
	return strings.Join(labels, ",")
}
