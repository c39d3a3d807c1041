package memrepo

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
)

type jobRunRepo struct{ s *Store }

func (r jobRunRepo) Create(_ dbctx.Context, jobs []*types.JobRun) ([]*types.JobRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("JobRunRepo.Create"); err != nil {
		return nil, err
	}
	for _, j := range jobs {
		stamp(&j.ID, &j.CreatedAt, &j.UpdatedAt)
		if j.Status == "" {
			j.Status = types.JobStatusQueued
		}
		if j.Stage == "" {
			j.Stage = types.JobStatusQueued
		}
		r.s.jobs[j.ID] = clone(j)
	}
	return jobs, nil
}

func (r jobRunRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.JobRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.jobs[id]), nil
}

func (r jobRunRepo) GetLatestByEntity(_ dbctx.Context, entityType string, entityID uuid.UUID, jobType string) (*types.JobRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *types.JobRun
	for _, j := range r.s.jobs {
		if !r.matches(j, entityType, entityID, jobType) {
			continue
		}
		if latest == nil || j.CreatedAt.After(latest.CreatedAt) {
			latest = j
		}
	}
	return clone(latest), nil
}

func (r jobRunRepo) matches(j *types.JobRun, entityType string, entityID uuid.UUID, jobType string) bool {
	return j.EntityType == entityType && j.EntityID != nil && *j.EntityID == entityID && j.JobType == jobType
}

func (r jobRunRepo) ClaimNextRunnable(_ dbctx.Context, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.JobRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	now := time.Now()
	var next *types.JobRun
	for _, j := range r.s.jobs {
		runnable := false
		switch j.Status {
		case types.JobStatusQueued:
			runnable = true
		case types.JobStatusFailed:
			runnable = j.Attempts < maxAttempts && (j.LastErrorAt == nil || j.LastErrorAt.Before(now.Add(-retryDelay)))
		case types.JobStatusRunning:
			runnable = j.Attempts < maxAttempts && j.HeartbeatAt != nil && j.HeartbeatAt.Before(now.Add(-staleRunning))
		}
		if runnable && (next == nil || j.CreatedAt.Before(next.CreatedAt)) {
			next = j
		}
	}
	if next == nil {
		return nil, nil
	}
	next.Status = types.JobStatusRunning
	next.Attempts++
	next.Error = ""
	next.LockedAt = &now
	next.HeartbeatAt = &now
	next.UpdatedAt = now
	return clone(next), nil
}

func (r jobRunRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.jobs[id]
	if !ok {
		return nil
	}
	return applyUpdates(row, touch(updates))
}

func (r jobRunRepo) UpdateFieldsUnlessStatus(_ dbctx.Context, id uuid.UUID, disallowedStatuses []string, updates map[string]interface{}) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.jobs[id]
	if !ok {
		return false, nil
	}
	for _, st := range disallowedStatuses {
		if row.Status == st {
			return false, nil
		}
	}
	if err := applyUpdates(row, touch(updates)); err != nil {
		return false, err
	}
	return true, nil
}

func (r jobRunRepo) Heartbeat(_ dbctx.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if row, ok := r.s.jobs[id]; ok && row.Status == types.JobStatusRunning {
		now := time.Now()
		row.HeartbeatAt = &now
		row.UpdatedAt = now
	}
	return nil
}

func (r jobRunRepo) HasRunnableForEntity(_ dbctx.Context, entityType string, entityID uuid.UUID, jobType string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, j := range r.s.jobs {
		if r.matches(j, entityType, entityID, jobType) && (j.Status == types.JobStatusQueued || j.Status == types.JobStatusRunning) {
			return true, nil
		}
	}
	return false, nil
}
