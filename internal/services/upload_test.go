package services

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	"github.com/yungbote/lecturelens-backend/internal/data/repos/memrepo"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

func (e *testEnv) analysisService() AnalysisService {
	return NewAnalysisService(nil, logger.Nop(), memrepo.TxRunner(), e.files, e.store.Lectures(), e.store.Teachers(), e.store.Classes(), e.jobs)
}

func (e *testEnv) teacher(t *testing.T, name string) *types.Teacher {
	t.Helper()
	teacher, err := e.store.Teachers().Create(testDBC(), &types.Teacher{Name: name})
	if err != nil {
		t.Fatalf("create teacher: %v", err)
	}
	return teacher
}

func storedFileCount(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk uploads: %v", err)
	}
	return n
}

func uploadFiles() []IncomingFile {
	return []IncomingFile{
		bytesFile(FieldVideo, "lesson.MP4", []byte("video-bytes")),
		bytesFile(analysis.FieldLessonPlan, "plan.docx", []byte("plan-bytes")),
	}
}

func TestUploadAttachesToScheduledLecture(t *testing.T) {
	env := newTestEnv(t)
	dbc := testDBC()
	teacher := env.teacher(t, "Jane Doe")
	scheduled, err := env.store.Lectures().Create(dbc, &types.Lecture{
		TeacherID:     teacher.ID,
		ScheduledDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:        types.LectureStatusScheduled,
		Grade:         "5",
	})
	if err != nil {
		t.Fatalf("create lecture: %v", err)
	}

	res, err := env.analysisService().Upload(dbc, UploadInput{
		TeacherID: teacher.ID,
		Date:      "2024-01-01",
		Section:   "B",
		Files:     uploadFiles(),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.Status != StatusProcessing || res.LectureID != scheduled.ID || len(res.Files) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}

	l, _ := env.store.Lectures().GetByID(dbc, scheduled.ID)
	if l.Status != types.LectureStatusCompleted || l.Section != "B" || l.Grade != "5" {
		t.Fatalf("lecture not updated: %+v", l)
	}
	if !env.files.Exists(l.VideoPath) || filepath.Ext(l.VideoPath) != ".mp4" {
		t.Fatalf("video not stored: %q", l.VideoPath)
	}
	var aux map[string]string
	if err := json.Unmarshal(l.AuxFiles, &aux); err != nil || !env.files.Exists(aux[analysis.FieldLessonPlan]) {
		t.Fatalf("aux files: %v %v", aux, err)
	}

	job, err := env.jobs.Get(dbc, res.JobID)
	if err != nil {
		t.Fatalf("job: %v", err)
	}
	var payload map[string]any
	_ = json.Unmarshal(job.Payload, &payload)
	if job.Status != types.JobStatusQueued || job.JobType != JobTypeLectureAnalysis || payload["lecture_id"] != scheduled.ID.String() {
		t.Fatalf("unexpected job: %+v payload=%v", job, payload)
	}
}

func TestUploadCreatesLectureWhenNoneScheduled(t *testing.T) {
	env := newTestEnv(t)
	dbc := testDBC()
	teacher := env.teacher(t, "Jane Doe")
	class, _ := env.store.Classes().Create(dbc, &types.Class{TeacherID: &teacher.ID, Grade: "7", Section: "C", Subject: "History"})

	res, err := env.analysisService().Upload(dbc, UploadInput{
		TeacherID: teacher.ID,
		Date:      "2024-03-04T09:30:00Z",
		Grade:     "7",
		Section:   "C",
		Files:     uploadFiles()[:1],
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	l, _ := env.store.Lectures().GetByID(dbc, res.LectureID)
	if l == nil || l.Status != types.LectureStatusCompleted {
		t.Fatalf("lecture not created: %+v", l)
	}
	if l.ClassID == nil || *l.ClassID != class.ID || l.Subject != "History" {
		t.Fatalf("class not resolved: %+v", l)
	}
	if got := l.ScheduledDate.Format(dateLayout); got != "2024-03-04" {
		t.Fatalf("date: %s", got)
	}
}

func TestUploadRejectsBeforeWriting(t *testing.T) {
	env := newTestEnv(t)
	dbc := testDBC()
	teacher := env.teacher(t, "Jane Doe")
	svc := env.analysisService()

	cases := []struct {
		name   string
		in     UploadInput
		status int
		code   string
	}{
		{
			name:   "bad video type",
			in:     UploadInput{TeacherID: teacher.ID, Date: "2024-01-01", Files: []IncomingFile{bytesFile(FieldVideo, "virus.exe", []byte("x"))}},
			status: http.StatusBadRequest,
			code:   "invalid_file_type",
		},
		{
			name:   "missing video",
			in:     UploadInput{TeacherID: teacher.ID, Date: "2024-01-01", Files: uploadFiles()[1:]},
			status: http.StatusBadRequest,
			code:   "missing_video",
		},
		{
			name:   "duplicate video",
			in:     UploadInput{TeacherID: teacher.ID, Date: "2024-01-01", Files: append(uploadFiles(), uploadFiles()[0])},
			status: http.StatusBadRequest,
			code:   "duplicate_file_field",
		},
		{
			name:   "bad date",
			in:     UploadInput{TeacherID: teacher.ID, Date: "yesterday", Files: uploadFiles()},
			status: http.StatusBadRequest,
			code:   "invalid_date",
		},
		{
			name:   "unknown teacher",
			in:     UploadInput{TeacherID: uuid.New(), Date: "2024-01-01", Files: uploadFiles()},
			status: http.StatusBadRequest,
			code:   "unknown_teacher",
		},
	}
	for _, tc := range cases {
		_, err := svc.Upload(dbc, tc.in)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		wantAPIError(t, err, tc.status, tc.code)
	}
	if n := storedFileCount(t, env.files.Root()); n != 0 {
		t.Fatalf("rejected uploads left %d files behind", n)
	}
	if list, _ := env.store.Lectures().List(dbc, repos.LectureFilter{}); len(list) != 0 {
		t.Fatalf("rejected uploads created lectures")
	}
}

func TestUploadRemovesFilesWhenEnqueueFails(t *testing.T) {
	env := newTestEnv(t)
	dbc := testDBC()
	teacher := env.teacher(t, "Jane Doe")
	env.store.FailOn("JobRunRepo.Create", errors.New("db down"))

	if _, err := env.analysisService().Upload(dbc, UploadInput{TeacherID: teacher.ID, Date: "2024-01-01", Files: uploadFiles()}); err == nil {
		t.Fatalf("expected enqueue failure")
	}
	if n := storedFileCount(t, env.files.Root()); n != 0 {
		t.Fatalf("failed upload left %d files behind", n)
	}
}

func TestRerun(t *testing.T) {
	env := newTestEnv(t)
	dbc := testDBC()
	teacher := env.teacher(t, "Jane Doe")
	svc := env.analysisService()

	_, err := svc.Rerun(dbc, uuid.New())
	wantAPIError(t, err, http.StatusNotFound, "lecture_not_found")

	bare, _ := env.store.Lectures().Create(dbc, &types.Lecture{TeacherID: teacher.ID, Status: types.LectureStatusScheduled})
	_, err = svc.Rerun(dbc, bare.ID)
	wantAPIError(t, err, http.StatusConflict, "no_video")

	res, err := svc.Upload(dbc, UploadInput{TeacherID: teacher.ID, Date: "2024-01-01", Files: uploadFiles()})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	_, err = svc.Rerun(dbc, res.LectureID)
	wantAPIError(t, err, http.StatusConflict, "analysis_in_progress")

	if err := env.store.Jobs().UpdateFields(dbc, res.JobID, map[string]interface{}{"status": types.JobStatusFailed}); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	job, err := svc.Rerun(dbc, res.LectureID)
	if err != nil {
		t.Fatalf("Rerun: %v", err)
	}
	var payload map[string]any
	_ = json.Unmarshal(job.Payload, &payload)
	if payload["rerun"] != true || job.ID == res.JobID {
		t.Fatalf("unexpected rerun job: %+v", payload)
	}
}
