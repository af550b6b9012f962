package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/loopforge/api/internal/model"
)

// jobTTL is how long finished job records stay queryable.
const jobTTL = 24 * time.Hour

// Store persists job records in redis under job:<id>.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func jobKey(jobID string) string {
	return fmt.Sprintf("job:%s", jobID)
}

// Get loads a job record. Returns JobNotFound for unknown ids and
// PersistenceUnavailable when redis cannot be reached.
func (s *Store) Get(ctx context.Context, jobID string) (*model.Job, error) {
	data, err := s.rdb.Get(ctx, jobKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, model.NewJobNotFoundError(jobID)
	}
	if err != nil {
		return nil, model.NewPersistenceError(err)
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", jobID, err)
	}
	return &job, nil
}

// Delete removes a job record.
func (s *Store) Delete(ctx context.Context, jobID string) error {
	if err := s.rdb.Del(ctx, jobKey(jobID)).Err(); err != nil {
		return model.NewPersistenceError(err)
	}
	return nil
}

// Save writes a job record with the standard retention.
func (s *Store) Save(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}
	if err := s.rdb.Set(ctx, jobKey(job.ID), data, jobTTL).Err(); err != nil {
		return model.NewPersistenceError(err)
	}
	return nil
}
