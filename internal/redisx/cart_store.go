package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/redis/go-redis/v9"
)

const maxTxRetries = 5

// CartStore keeps cart lines as a JSON array under one key per cart.
// Every write refreshes the TTL.
type CartStore struct {
	Redis *redis.Client
	TTL   time.Duration
}

func (s *CartStore) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return TTLCart
}

func decodeLines(b []byte) ([]cart.Line, error) {
	var lines []cart.Line
	if err := json.Unmarshal(b, &lines); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return lines, nil
}

func (s *CartStore) Load(ctx context.Context, key string) ([]cart.Line, error) {
	b, err := s.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeLines(b)
}

func (s *CartStore) Save(ctx context.Context, key string, lines []cart.Line) error {
	return s.write(ctx, s.Redis, key, lines)
}

func (s *CartStore) write(ctx context.Context, c redis.Cmdable, key string, lines []cart.Line) error {
	if len(lines) == 0 {
		return c.Del(ctx, key).Err()
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, b, s.ttl()).Err()
}

// Update reads, transforms and writes the cart inside WATCH/MULTI and
// retries when another writer touched the key in between.
func (s *CartStore) Update(ctx context.Context, key string, fn func([]cart.Line) []cart.Line) ([]cart.Line, error) {
	var next []cart.Line
	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		var cur []cart.Line
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if cur, err = decodeLines(b); err != nil {
				return err
			}
		}
		next = fn(cart.Restore(cur))
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return s.write(ctx, pipe, key, next)
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.Redis.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return next, nil
	}
	return nil, cart.ErrConflict
}
