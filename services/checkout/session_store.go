package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"medibook/models"
	"medibook/utils"

	"github.com/go-redis/redis/v8"
)

// SessionStore keeps attempt-scoped checkout state plus the per-attempt
// in-flight payment lock.
type SessionStore interface {
	Save(ctx context.Context, session *models.CheckoutSession) error
	Get(ctx context.Context, attemptID string) (*models.CheckoutSession, error)
	Delete(ctx context.Context, attemptID string) error

	// AcquireLock returns false when a payment for this attempt is already
	// in flight. ReleaseLock is safe to call on an unheld lock.
	AcquireLock(ctx context.Context, attemptID string) (bool, error)
	ReleaseLock(ctx context.Context, attemptID string) error
}

// RedisSessionStore implements SessionStore on the session cache client.
type RedisSessionStore struct {
	Client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{Client: client}
}

func (s *RedisSessionStore) Save(ctx context.Context, session *models.CheckoutSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout session: %w", err)
	}
	key := utils.SessionCachePrefix + session.AttemptID
	if err := s.Client.Set(ctx, key, data, utils.SessionCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to store checkout session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, attemptID string) (*models.CheckoutSession, error) {
	data, err := s.Client.Get(ctx, utils.SessionCachePrefix+attemptID).Result()
	if err == redis.Nil {
		return nil, NewSessionExpiredError(attemptID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkout session: %w", err)
	}
	var session models.CheckoutSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, attemptID string) error {
	return s.Client.Del(ctx, utils.SessionCachePrefix+attemptID).Err()
}

func (s *RedisSessionStore) AcquireLock(ctx context.Context, attemptID string) (bool, error) {
	// SETNX with a TTL so an abandoned tab cannot wedge the attempt forever.
	ok, err := s.Client.SetNX(ctx, utils.InFlightLockPrefix+attemptID, "1", utils.InFlightLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire in-flight lock: %w", err)
	}
	return ok, nil
}

func (s *RedisSessionStore) ReleaseLock(ctx context.Context, attemptID string) error {
	return s.Client.Del(ctx, utils.InFlightLockPrefix+attemptID).Err()
}
