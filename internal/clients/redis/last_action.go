package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
)

const defaultLastActionTTL = 24 * time.Hour

// LastActionStore caches the most recent assistant result per user so the
// undo endpoint does not have to hit the relational store on the happy path.
// Values are opaque JSON; the database row stays the source of truth and a
// cache miss falls through to it.
type LastActionStore interface {
	Set(ctx context.Context, userID uuid.UUID, v any) error
	Get(ctx context.Context, userID uuid.UUID, out any) (bool, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Close() error
}

type lastActionStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewLastActionStore(log *logger.Logger) (LastActionStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &lastActionStore{
		log: log.With("service", "LastActionStore"),
		rdb: rdb,
		ttl: defaultLastActionTTL,
	}, nil
}

func lastActionKey(userID uuid.UUID) string {
	return "assistant:last_action:" + userID.String()
}

func (s *lastActionStore) Set(ctx context.Context, userID uuid.UUID, v any) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("last action store not initialized")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, lastActionKey(userID), raw, s.ttl).Err()
}

func (s *lastActionStore) Get(ctx context.Context, userID uuid.UUID, out any) (bool, error) {
	if s == nil || s.rdb == nil {
		return false, fmt.Errorf("last action store not initialized")
	}
	raw, err := s.rdb.Get(ctx, lastActionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *lastActionStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("last action store not initialized")
	}
	return s.rdb.Del(ctx, lastActionKey(userID)).Err()
}

func (s *lastActionStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
