package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lazarofl/payment-gateway/gateway/models"
	"github.com/redis/go-redis/v9"
)

// RedisLedger is a Ledger backed by Redis; entries are stored as JSON
// under a payments: key prefix.
type RedisLedger struct {
	client *redis.Client
}

func NewRedisLedger(addr string) *RedisLedger {
	return &RedisLedger{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}),
	}
}

func (r *RedisLedger) Put(ctx context.Context, id string, entry models.LedgerEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal ledger entry: %w", err)
	}

	// SetNX keeps the insert-only contract: an existing id is a conflict.
	ok, err := r.client.SetNX(ctx, paymentKey(id), data, 0).Result()
	if err != nil {
		return fmt.Errorf("storing payment: %w", err)
	}
	if !ok {
		return fmt.Errorf("payment id exists: %w", ErrConflict)
	}
	return nil
}

func (r *RedisLedger) Get(ctx context.Context, id string) (models.LedgerEntry, error) {
	data, err := r.client.Get(ctx, paymentKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.LedgerEntry{}, ErrNotFound
		}
		return models.LedgerEntry{}, fmt.Errorf("finding payment: %w", err)
	}

	var entry models.LedgerEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return models.LedgerEntry{}, fmt.Errorf("unmarshal ledger entry: %w", err)
	}
	return entry, nil
}

func (r *RedisLedger) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *RedisLedger) Close() error {
	return r.client.Close()
}

func paymentKey(id string) string {
	return "payments:" + id
}
