package memrepo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/lecturelens-backend/internal/data/repos/dberr"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
)

func TestApplyUpdatesByColumn(t *testing.T) {
	s := New()
	dbc := dbctx.Background()
	classID := uuid.New()
	l, _ := s.Lectures().Create(dbc, &types.Lecture{TeacherID: uuid.New(), ScheduledDate: time.Now()})
	err := s.Lectures().UpdateFields(dbc, l.ID, map[string]interface{}{
		"status":     types.LectureStatusCompleted,
		"video_path": "video-1.mp4",
		"class_id":   classID,
		"aux_files":  datatypes.JSON(`{"cobParams":"a.pdf"}`),
	})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, _ := s.Lectures().GetByID(dbc, l.ID)
	if got.Status != types.LectureStatusCompleted || got.VideoPath != "video-1.mp4" || got.ClassID == nil || *got.ClassID != classID {
		t.Fatalf("updates not applied: %+v", got)
	}
	if err := s.Lectures().UpdateFields(dbc, l.ID, map[string]interface{}{"nope": 1}); err == nil {
		t.Fatalf("expected unknown column error")
	}
}

func TestUniqueViolations(t *testing.T) {
	s := New()
	dbc := dbctx.Background()
	if _, err := s.Schools().Create(dbc, &types.School{Name: "Hillview"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Schools().Create(dbc, &types.School{Name: "Hillview"}); !dberr.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	lectureID := uuid.New()
	first, _ := s.Reports().Upsert(dbc, &types.Report{LectureID: lectureID, Model: "a"})
	second, _ := s.Reports().Upsert(dbc, &types.Report{LectureID: lectureID, Model: "b"})
	if first.ID != second.ID || second.Model != "b" || s.ReportCount() != 1 {
		t.Fatalf("upsert should update in place: %v %v count=%d", first.ID, second.ID, s.ReportCount())
	}
}

func TestClaimNextRunnable(t *testing.T) {
	s := New()
	dbc := dbctx.Background()
	if _, err := s.Jobs().Create(dbc, []*types.JobRun{{JobType: "lecture_analysis"}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	job, _ := s.Jobs().ClaimNextRunnable(dbc, 1, time.Second, time.Minute)
	if job == nil || job.Status != types.JobStatusRunning || job.Attempts != 1 {
		t.Fatalf("unexpected claim: %+v", job)
	}
	if again, _ := s.Jobs().ClaimNextRunnable(dbc, 1, time.Second, time.Minute); again != nil {
		t.Fatalf("running job claimed twice")
	}
}
