package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lecturelens-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"gorm.io/datatypes"
)

func newJob(jobType, entityType string, entityID uuid.UUID, status string, createdAt time.Time) *types.JobRun {
	return &types.JobRun{
		ID:         uuid.New(),
		JobType:    jobType,
		EntityType: entityType,
		EntityID:   testutil.PtrUUID(entityID),
		Status:     status,
		Stage:      status,
		Payload:    datatypes.JSON([]byte("{}")),
		Result:     datatypes.JSON([]byte("{}")),
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestJobRunRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewJobRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()

	queued := newJob("test_job", "lecture", uuid.New(), types.JobStatusQueued, now.Add(-3*time.Hour))
	failed := newJob("test_job", "lecture", uuid.New(), types.JobStatusFailed, now.Add(-2*time.Hour))
	failed.LastErrorAt = testutil.PtrTime(now.Add(-2 * time.Hour))
	staleRunning := newJob("test_job", "lecture", uuid.New(), types.JobStatusRunning, now.Add(-1*time.Hour))
	staleRunning.HeartbeatAt = testutil.PtrTime(now.Add(-10 * time.Hour))

	created, err := repo.Create(dbc, []*types.JobRun{queued, failed, staleRunning})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("Create: expected 3, got %d", len(created))
	}

	got, err := repo.GetByID(dbc, failed.ID)
	if err != nil || got == nil || got.Status != types.JobStatusFailed {
		t.Fatalf("GetByID: err=%v got=%v", err, got)
	}
	if missing, err := repo.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID missing: err=%v got=%v", err, missing)
	}

	lectureID := uuid.New()
	older := newJob("lecture_analysis", "lecture", lectureID, types.JobStatusSucceeded, now.Add(-5*time.Hour))
	newer := newJob("lecture_analysis", "lecture", lectureID, types.JobStatusSucceeded, now.Add(-4*time.Hour))
	if _, err := repo.Create(dbc, []*types.JobRun{older, newer}); err != nil {
		t.Fatalf("seed latest: %v", err)
	}
	latest, err := repo.GetLatestByEntity(dbc, "lecture", lectureID, "lecture_analysis")
	if err != nil {
		t.Fatalf("GetLatestByEntity: %v", err)
	}
	if latest == nil || latest.ID != newer.ID {
		t.Fatalf("GetLatestByEntity: expected %v got %v", newer.ID, latest)
	}

	// Runnable set is walked in created_at ASC order.
	for i, want := range []uuid.UUID{queued.ID, failed.ID, staleRunning.ID} {
		claim, err := repo.ClaimNextRunnable(dbc, 3, time.Hour, time.Hour)
		if err != nil {
			t.Fatalf("ClaimNextRunnable #%d: %v", i+1, err)
		}
		if claim == nil || claim.ID != want {
			t.Fatalf("ClaimNextRunnable #%d: expected %v got %v", i+1, want, claim)
		}
		if claim.Status != types.JobStatusRunning || claim.Attempts != 1 {
			t.Fatalf("ClaimNextRunnable #%d: status=%s attempts=%d", i+1, claim.Status, claim.Attempts)
		}
	}
	if claim, err := repo.ClaimNextRunnable(dbc, 3, time.Hour, time.Hour); err != nil || claim != nil {
		t.Fatalf("ClaimNextRunnable #4: expected nil, got %v err=%v", claim, err)
	}

	if err := repo.Heartbeat(dbc, failed.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}

	ok, err := repo.UpdateFieldsUnlessStatus(dbc, queued.ID, []string{types.JobStatusCanceled}, map[string]interface{}{
		"status": types.JobStatusSucceeded,
		"stage":  "done",
	})
	if err != nil || !ok {
		t.Fatalf("UpdateFieldsUnlessStatus: ok=%v err=%v", ok, err)
	}
	ok, err = repo.UpdateFieldsUnlessStatus(dbc, queued.ID, []string{types.JobStatusSucceeded}, map[string]interface{}{
		"status": types.JobStatusFailed,
	})
	if err != nil || ok {
		t.Fatalf("UpdateFieldsUnlessStatus (blocked): ok=%v err=%v", ok, err)
	}

	if err := repo.UpdateFields(dbc, staleRunning.ID, map[string]interface{}{"status": types.JobStatusFailed, "stage": "transcribe"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	runnableLecture := uuid.New()
	runnable := newJob("lecture_analysis", "lecture", runnableLecture, types.JobStatusQueued, now)
	if _, err := repo.Create(dbc, []*types.JobRun{runnable}); err != nil {
		t.Fatalf("seed runnable: %v", err)
	}
	has, err := repo.HasRunnableForEntity(dbc, "lecture", runnableLecture, "lecture_analysis")
	if err != nil || !has {
		t.Fatalf("HasRunnableForEntity: has=%v err=%v", has, err)
	}
	has, err = repo.HasRunnableForEntity(dbc, "lecture", lectureID, "lecture_analysis")
	if err != nil || has {
		t.Fatalf("HasRunnableForEntity (finished): has=%v err=%v", has, err)
	}
}
