// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/novelvault/internal/platform/apperr"
	"github.com/taibuivan/novelvault/internal/platform/constants"
)

// RedisStore implements [Store] with one JSON string per job and a sorted
// set indexing job ids by creation time.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed [Store].
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func jobKey(id string) string {
	return constants.RedisPrefixJob + id
}

// Save stores the job and indexes it in a single pipeline.
func (repository *RedisStore) Save(context context.Context, job *Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("redis_job_encode_failed: %w", err)
	}

	_, err = repository.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Set(context, jobKey(job.ID), payload, constants.JobTTL)
		pipe.ZAdd(context, constants.RedisKeyJobIndex, redis.Z{
			Score:  float64(job.CreatedAt.UnixMilli()),
			Member: job.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_job_save_failed: %w", err)
	}
	return nil
}

// Get loads one job.
func (repository *RedisStore) Get(context context.Context, id string) (*Job, error) {
	payload, err := repository.client.Get(context, jobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Job")
		}
		return nil, fmt.Errorf("redis_job_get_failed: %w", err)
	}

	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("redis_job_decode_failed: %w", err)
	}
	return &job, nil
}

// List reads the newest ids from the index and drops the ones whose record
// has expired.
func (repository *RedisStore) List(context context.Context, limit int) ([]*Job, error) {
	ids, err := repository.client.ZRevRange(context, constants.RedisKeyJobIndex, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_job_index_failed: %w", err)
	}
	if len(ids) == 0 {
		return []*Job{}, nil
	}

	keys := make([]string, len(ids))
	for index, id := range ids {
		keys[index] = jobKey(id)
	}

	values, err := repository.client.MGet(context, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_job_list_failed: %w", err)
	}

	jobs := make([]*Job, 0, len(values))
	var expired []any
	for index, value := range values {
		payload, ok := value.(string)
		if !ok {
			expired = append(expired, ids[index])
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			return nil, fmt.Errorf("redis_job_decode_failed: %w", err)
		}
		jobs = append(jobs, &job)
	}

	if len(expired) > 0 {
		// Best effort; a stale index entry is skipped again next time.
		_ = repository.client.ZRem(context, constants.RedisKeyJobIndex, expired...).Err()
	}

	return jobs, nil
}
