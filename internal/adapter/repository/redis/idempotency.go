package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// idempotencyPrefix namespaces idempotency entries away from the account
// cache keys living in the same Redis.
const idempotencyPrefix = "finbook:idem:"

// processingMarker reserves a key while the first request is in flight.
const processingMarker = "processing"

// IdempotencyStore keeps replayable responses in Redis, keyed by the
// client-supplied idempotency key.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: idempotencyPrefix,
	}
}

// CheckAndSet returns the stored response when the key was seen before. A
// fresh key is reserved, with the response when one is supplied and with a
// marker otherwise, so a concurrent duplicate observes the reservation.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	name := s.prefix + key

	existing, err := s.client.Get(ctx, name).Bytes()
	switch {
	case err == nil:
		return true, existing, nil
	case !errors.Is(err, redis.Nil):
		return false, nil, err
	}

	var value any = response
	if response == nil {
		value = processingMarker
	}

	set, err := s.client.SetNX(ctx, name, value, ttl).Result()
	if err != nil {
		return false, nil, err
	}

	if !set {
		// Lost the reservation race to a concurrent duplicate.
		existing, err := s.client.Get(ctx, name).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return false, nil, err
		}

		return true, existing, nil
	}

	return false, nil, nil
}

// Update overwrites the reservation with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}
