package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/domain/lectures"
	"github.com/yungbote/lecturelens-backend/internal/platform/apierr"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

const dateLayout = "2006-01-02"

type LectureInput struct {
	TeacherID     *uuid.UUID `json:"teacher_id"`
	ClassID       *uuid.UUID `json:"class_id"`
	ScheduledDate *string    `json:"scheduled_date"`
	TimeSlot      *string    `json:"time_slot"`
	LectureNumber *int       `json:"lecture_number"`
	Subject       *string    `json:"subject"`
	Grade         *string    `json:"grade"`
	Section       *string    `json:"section"`
	Status        *string    `json:"status"`
}

// AnalysisStatus summarises the latest analysis job for a lecture.
type AnalysisStatus struct {
	JobID     uuid.UUID  `json:"job_id"`
	Status    string     `json:"status"`
	Stage     string     `json:"stage"`
	Progress  int        `json:"progress"`
	Error     string     `json:"error,omitempty"`
	ReportID  *uuid.UUID `json:"report_id,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type LectureView struct {
	*types.Lecture
	Analysis *AnalysisStatus `json:"analysis,omitempty"`
}

type LectureService interface {
	Create(dbc dbctx.Context, in LectureInput) (*types.Lecture, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*LectureView, error)
	List(dbc dbctx.Context, filter repos.LectureFilter) ([]*types.Lecture, error)
	Update(dbc dbctx.Context, id uuid.UUID, in LectureInput) (*types.Lecture, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type lectureService struct {
	db       *gorm.DB
	log      *logger.Logger
	lectures repos.LectureRepo
	teachers repos.TeacherRepo
	classes  repos.ClassRepo
	reports  repos.ReportRepo
	jobs     JobService
}

func NewLectureService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lectureRepo repos.LectureRepo,
	teachers repos.TeacherRepo,
	classes repos.ClassRepo,
	reports repos.ReportRepo,
	jobs JobService,
) LectureService {
	return &lectureService{
		db:       db,
		log:      baseLog.With("service", "LectureService"),
		lectures: lectureRepo,
		teachers: teachers,
		classes:  classes,
		reports:  reports,
		jobs:     jobs,
	}
}

func (s *lectureService) Create(dbc dbctx.Context, in LectureInput) (*types.Lecture, error) {
	if in.TeacherID == nil {
		return nil, apierr.BadRequest("missing_teacher_id", "teacher_id is required")
	}
	if err := requireTeacher(dbc, s.teachers, *in.TeacherID); err != nil {
		return nil, err
	}
	raw, _ := trimmed(in.ScheduledDate)
	date, err := ParseLectureDate(raw)
	if err != nil {
		return nil, err
	}
	status := types.LectureStatusScheduled
	if v, ok := trimmed(in.Status); ok && v != "" {
		status = strings.ToLower(v)
	}
	if !lectures.ValidLectureStatus(status) {
		return nil, apierr.BadRequest("invalid_status", "status must be scheduled, completed or cancelled")
	}
	l := &types.Lecture{
		ID:            uuid.New(),
		TeacherID:     *in.TeacherID,
		ClassID:       in.ClassID,
		ScheduledDate: date,
		LectureNumber: in.LectureNumber,
		Status:        status,
	}
	l.TimeSlot, _ = trimmed(in.TimeSlot)
	l.Subject, _ = trimmed(in.Subject)
	l.Grade, _ = trimmed(in.Grade)
	l.Section, _ = trimmed(in.Section)
	if err := resolveClass(dbc, s.classes, l); err != nil {
		return nil, err
	}
	created, err := s.lectures.Create(dbc, l)
	if err != nil {
		return nil, fmt.Errorf("create lecture: %w", err)
	}
	return created, nil
}

func (s *lectureService) Get(dbc dbctx.Context, id uuid.UUID) (*LectureView, error) {
	l, err := s.lectures.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load lecture: %w", err)
	}
	if l == nil {
		return nil, apierr.NotFound("lecture_not_found", "lecture %s not found", id)
	}
	view := &LectureView{Lecture: l}
	job, err := s.jobs.LatestForEntity(dbc, EntityTypeLecture, id, JobTypeLectureAnalysis)
	if err != nil {
		return nil, err
	}
	if job != nil {
		view.Analysis = &AnalysisStatus{
			JobID:     job.ID,
			Status:    job.Status,
			Stage:     job.Stage,
			Progress:  job.Progress,
			Error:     job.Error,
			UpdatedAt: job.UpdatedAt,
		}
		report, err := s.reports.GetByLectureID(dbc, id)
		if err != nil {
			return nil, fmt.Errorf("load report: %w", err)
		}
		if report != nil {
			view.Analysis.ReportID = &report.ID
		}
	}
	return view, nil
}

func (s *lectureService) List(dbc dbctx.Context, filter repos.LectureFilter) ([]*types.Lecture, error) {
	if filter.Status != "" && !lectures.ValidLectureStatus(filter.Status) {
		return nil, apierr.BadRequest("invalid_status", "unknown status %q", filter.Status)
	}
	out, err := s.lectures.List(dbc, filter)
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	return out, nil
}

func (s *lectureService) Update(dbc dbctx.Context, id uuid.UUID, in LectureInput) (*types.Lecture, error) {
	current, err := s.lectures.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load lecture: %w", err)
	}
	if current == nil {
		return nil, apierr.NotFound("lecture_not_found", "lecture %s not found", id)
	}
	updates := map[string]interface{}{}
	if in.TeacherID != nil {
		if err := requireTeacher(dbc, s.teachers, *in.TeacherID); err != nil {
			return nil, err
		}
		updates["teacher_id"] = *in.TeacherID
	}
	if in.ClassID != nil {
		c, err := s.classes.GetByID(dbc, *in.ClassID)
		if err != nil {
			return nil, fmt.Errorf("load class: %w", err)
		}
		if c == nil {
			return nil, apierr.BadRequest("unknown_class", "class %s does not exist", *in.ClassID)
		}
		updates["class_id"] = *in.ClassID
	}
	if raw, ok := trimmed(in.ScheduledDate); ok {
		date, err := ParseLectureDate(raw)
		if err != nil {
			return nil, err
		}
		updates["scheduled_date"] = date
	}
	if in.LectureNumber != nil {
		updates["lecture_number"] = *in.LectureNumber
	}
	if v, ok := trimmed(in.Status); ok {
		v = strings.ToLower(v)
		if !lectures.ValidLectureStatus(v) {
			return nil, apierr.BadRequest("invalid_status", "status must be scheduled, completed or cancelled")
		}
		// A lecture with a video stays completed.
		if current.VideoPath != "" && v != types.LectureStatusCompleted {
			return nil, apierr.Conflict("lecture_has_video", "a lecture with an uploaded video stays completed")
		}
		updates["status"] = v
	}
	setTrimmed(updates, "time_slot", in.TimeSlot)
	setTrimmed(updates, "subject", in.Subject)
	setTrimmed(updates, "grade", in.Grade)
	setTrimmed(updates, "section", in.Section)
	if len(updates) > 0 {
		if err := s.lectures.UpdateFields(dbc, id, updates); err != nil {
			return nil, fmt.Errorf("update lecture: %w", err)
		}
	}
	updated, err := s.lectures.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load lecture: %w", err)
	}
	return updated, nil
}

func (s *lectureService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	ok, err := s.lectures.Delete(dbc, id)
	if err != nil {
		return fmt.Errorf("delete lecture: %w", err)
	}
	if !ok {
		return apierr.NotFound("lecture_not_found", "lecture %s not found", id)
	}
	return nil
}

// ParseLectureDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the UTC calendar date.
func ParseLectureDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apierr.BadRequest("missing_date", "date is required")
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, raw)
		if tsErr != nil {
			return time.Time{}, apierr.BadRequest("invalid_date", "date must be YYYY-MM-DD, got %q", raw)
		}
		t = ts
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func requireTeacher(dbc dbctx.Context, teachers repos.TeacherRepo, id uuid.UUID) error {
	t, err := teachers.GetByID(dbc, id)
	if err != nil {
		return fmt.Errorf("load teacher: %w", err)
	}
	if t == nil {
		return apierr.BadRequest("unknown_teacher", "teacher %s does not exist", id)
	}
	return nil
}

// resolveClass links l to the teacher's class for its grade/section when no class was given,
// and fills grade/section/subject from an explicit class.
func resolveClass(dbc dbctx.Context, classes repos.ClassRepo, l *types.Lecture) error {
	if l.ClassID != nil {
		c, err := classes.GetByID(dbc, *l.ClassID)
		if err != nil {
			return fmt.Errorf("load class: %w", err)
		}
		if c == nil {
			return apierr.BadRequest("unknown_class", "class %s does not exist", *l.ClassID)
		}
		fillFromClass(l, c)
		return nil
	}
	if l.Grade == "" {
		return nil
	}
	c, err := classes.FindForLecture(dbc, l.TeacherID, l.Grade, l.Section)
	if err != nil {
		return fmt.Errorf("find class: %w", err)
	}
	if c != nil {
		l.ClassID = &c.ID
		fillFromClass(l, c)
	}
	return nil
}

func fillFromClass(l *types.Lecture, c *types.Class) {
	if l.Grade == "" {
		l.Grade = c.Grade
	}
	if l.Section == "" {
		l.Section = c.Section
	}
	if l.Subject == "" {
		l.Subject = c.Subject
	}
}
