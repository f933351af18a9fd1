package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"medibook/models"
	"medibook/utils"

	"github.com/go-redis/redis/v8"
)

// HandoffStore is the durable slot that carries payment context across the
// gateway-redirect reload. One slot per patient per booking kind; written as
// a single atomic value and consumed exactly once.
type HandoffStore interface {
	Write(ctx context.Context, patientID string, rec *models.HandoffRecord) error
	// Consume returns the record and deletes it in one step. A second call
	// for the same slot returns (nil, nil).
	Consume(ctx context.Context, patientID string, kind models.BookingKind) (*models.HandoffRecord, error)
}

// RedisHandoffStore implements HandoffStore on the handoff cache client.
type RedisHandoffStore struct {
	Client *redis.Client
}

func NewRedisHandoffStore(client *redis.Client) *RedisHandoffStore {
	return &RedisHandoffStore{Client: client}
}

func handoffKey(patientID string, kind models.BookingKind) string {
	return fmt.Sprintf("%s%s:%s", utils.HandoffCachePrefix, patientID, kind)
}

func (s *RedisHandoffStore) Write(ctx context.Context, patientID string, rec *models.HandoffRecord) error {
	if rec.Version == 0 {
		rec.Version = models.HandoffSchemaVersion
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal handoff record: %w", err)
	}
	// One SET of the whole record; a reader never sees partial fields.
	if err := s.Client.Set(ctx, handoffKey(patientID, rec.Kind), data, utils.HandoffCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to store handoff record: %w", err)
	}
	return nil
}

func (s *RedisHandoffStore) Consume(ctx context.Context, patientID string, kind models.BookingKind) (*models.HandoffRecord, error) {
	data, err := s.Client.GetDel(ctx, handoffKey(patientID, kind)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume handoff record: %w", err)
	}
	var rec models.HandoffRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to parse handoff record: %w", err)
	}
	if rec.Version != models.HandoffSchemaVersion {
		return nil, fmt.Errorf("unknown handoff schema version %d", rec.Version)
	}
	return &rec, nil
}
