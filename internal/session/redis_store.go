package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-seat-booking/internal/seatmap"
)

// maxUpdateAttempts bounds the optimistic retries of Update.
const maxUpdateAttempts = 16

// RedisStore keeps each selection as a JSON array under
// "{prefix}:{user}:{showtime}". Every read or write pushes the expiry out
// by TTL, so abandoned sessions need no cleanup.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore returns a RedisStore. A non-positive ttl defaults to 15 minutes.
func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if prefix == "" {
		prefix = "selection"
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (s *RedisStore) key(who Identity, showtimeID uint64) string {
	return fmt.Sprintf("%s:%d:%d", s.prefix, who.UserID, showtimeID)
}

func (s *RedisStore) Load(ctx context.Context, who Identity, showtimeID uint64) ([]seatmap.Identifier, error) {
	if !who.Valid() {
		return nil, ErrNoIdentity
	}
	raw, err := s.rdb.GetEx(ctx, s.key(who, showtimeID), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load selection: %w", err)
	}
	return decodeSelection(raw), nil
}

// decodeSelection treats a corrupt entry as an empty selection.
func decodeSelection(raw []byte) []seatmap.Identifier {
	if len(raw) == 0 {
		return nil
	}
	var seats []seatmap.Identifier
	if err := json.Unmarshal(raw, &seats); err != nil {
		return nil
	}
	return seats
}

// Update runs fn inside WATCH/MULTI on the selection key and retries when
// another writer got there first.
func (s *RedisStore) Update(ctx context.Context, who Identity, showtimeID uint64, fn UpdateFunc) ([]seatmap.Identifier, error) {
	if !who.Valid() {
		return nil, ErrNoIdentity
	}
	key := s.key(who, showtimeID)

	var next []seatmap.Identifier
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next = fn(decodeSelection(raw))
		var payload []byte
		if len(next) > 0 {
			if payload, err = json.Marshal(next); err != nil {
				return err
			}
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			if len(next) == 0 {
				p.Del(ctx, key)
				return nil
			}
			p.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			if len(next) == 0 {
				return nil, nil
			}
			return next, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("update selection: %w", err)
		}
	}
	return nil, ErrContention
}

func (s *RedisStore) Save(ctx context.Context, who Identity, showtimeID uint64, seats []seatmap.Identifier) error {
	if !who.Valid() {
		return ErrNoIdentity
	}
	if len(seats) == 0 {
		return s.Clear(ctx, who, showtimeID)
	}
	raw, err := json.Marshal(seats)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(who, showtimeID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, who Identity, showtimeID uint64) error {
	if !who.Valid() {
		return ErrNoIdentity
	}
	if err := s.rdb.Del(ctx, s.key(who, showtimeID)).Err(); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}
