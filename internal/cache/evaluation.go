package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medicab/medicab/internal/models"
)

const (
	evaluationKeyPrefix   = "quota:eval:"
	patientIndexKeyPrefix = "quota:patient:"
)

// EvaluationCache is a caller-side snapshot cache for quota evaluations. The
// engine stays pure; services cache its output here for a short TTL and
// invalidate whenever a ride or document is written for the patient. A Redis
// set per patient indexes the cached ride keys so a single write can drop
// every evaluation it may have changed.
type EvaluationCache interface {
	Get(ctx context.Context, rideID string) (*models.QuotaEvaluation, error)
	Set(ctx context.Context, rideID, patientID string, eval *models.QuotaEvaluation) error
	InvalidatePatient(ctx context.Context, patientID string) error
}

type evaluationCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewEvaluationCache(redisClient *redis.Client, ttl time.Duration) EvaluationCache {
	return &evaluationCache{redis: redisClient, ttl: ttl}
}

func (c *evaluationCache) Get(ctx context.Context, rideID string) (*models.QuotaEvaluation, error) {
	data, err := c.redis.Get(ctx, evaluationKeyPrefix+rideID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var eval models.QuotaEvaluation
	if err := json.Unmarshal(data, &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

func (c *evaluationCache) Set(ctx context.Context, rideID, patientID string, eval *models.QuotaEvaluation) error {
	data, err := json.Marshal(eval)
	if err != nil {
		return err
	}

	key := evaluationKeyPrefix + rideID
	indexKey := patientIndexKeyPrefix + patientID

	pipe := c.redis.Pipeline()
	pipe.Set(ctx, key, data, c.ttl)
	pipe.SAdd(ctx, indexKey, key)
	pipe.Expire(ctx, indexKey, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *evaluationCache) InvalidatePatient(ctx context.Context, patientID string) error {
	indexKey := patientIndexKeyPrefix + patientID

	keys, err := c.redis.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}
	keys = append(keys, indexKey)
	return c.redis.Del(ctx, keys...).Err()
}
