package lectures

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lecturelens-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
)

func TestLectureRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLectureRepo(db, testutil.Logger(t))

	school := testutil.SeedSchool(t, ctx, tx, "Lecture Repo School "+uuid.NewString())
	teacher := testutil.SeedTeacher(t, ctx, tx, school.ID, "Jane Doe")
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	first := &types.Lecture{TeacherID: teacher.ID, ScheduledDate: day, LectureNumber: testutil.PtrInt(1), Subject: "Science"}
	if _, err := repo.Create(dbc, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Status != types.LectureStatusScheduled {
		t.Fatalf("Create: default status=%q", first.Status)
	}
	second := &types.Lecture{TeacherID: teacher.ID, ScheduledDate: day, LectureNumber: testutil.PtrInt(2), Subject: "Science"}
	if _, err := repo.Create(dbc, second); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	found, err := repo.FindScheduled(dbc, teacher.ID, day, testutil.PtrInt(2))
	if err != nil || found == nil || found.ID != second.ID {
		t.Fatalf("FindScheduled by number: err=%v got=%v", err, found)
	}
	found, err = repo.FindScheduled(dbc, teacher.ID, day, nil)
	if err != nil || found == nil || found.ID != first.ID {
		t.Fatalf("FindScheduled any: err=%v got=%v", err, found)
	}

	if err := repo.UpdateFields(dbc, first.ID, map[string]interface{}{
		"status":     types.LectureStatusCompleted,
		"video_path": "videos/x.mp4",
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	found, err = repo.FindScheduled(dbc, teacher.ID, day, testutil.PtrInt(1))
	if err != nil || found != nil {
		t.Fatalf("FindScheduled after attach: err=%v got=%v", err, found)
	}

	completed, err := repo.List(dbc, LectureFilter{TeacherID: &teacher.ID, Status: types.LectureStatusCompleted})
	if err != nil || len(completed) != 1 || completed[0].ID != first.ID {
		t.Fatalf("List completed: err=%v len=%d", err, len(completed))
	}

	ok, err := repo.Delete(dbc, second.ID)
	if err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	if got, err := repo.GetByID(dbc, second.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: err=%v got=%v", err, got)
	}
}
