package memrepo

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
)

type lectureRepo struct{ s *Store }

func (r lectureRepo) Create(_ dbctx.Context, lecture *types.Lecture) (*types.Lecture, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("LectureRepo.Create"); err != nil {
		return nil, err
	}
	stamp(&lecture.ID, &lecture.CreatedAt, &lecture.UpdatedAt)
	if lecture.Status == "" {
		lecture.Status = types.LectureStatusScheduled
	}
	r.s.lectures[lecture.ID] = clone(lecture)
	return lecture, nil
}

func (r lectureRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Lecture, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.lectures[id]), nil
}

func (r lectureRepo) List(_ dbctx.Context, filter repos.LectureFilter) ([]*types.Lecture, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := values(r.s.lectures, func(l *types.Lecture) bool {
		if filter.TeacherID != nil && l.TeacherID != *filter.TeacherID {
			return false
		}
		if filter.ClassID != nil && (l.ClassID == nil || *l.ClassID != *filter.ClassID) {
			return false
		}
		return filter.Status == "" || l.Status == filter.Status
	})
	sortBy(out, func(a, b *types.Lecture) bool {
		if !a.ScheduledDate.Equal(b.ScheduledDate) {
			return a.ScheduledDate.After(b.ScheduledDate)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out, nil
}

func (r lectureRepo) FindScheduled(_ dbctx.Context, teacherID uuid.UUID, date time.Time, lectureNumber *int) (*types.Lecture, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	y, m, d := date.Date()
	matches := values(r.s.lectures, func(l *types.Lecture) bool {
		ly, lm, ld := l.ScheduledDate.Date()
		if l.TeacherID != teacherID || ly != y || lm != m || ld != d {
			return false
		}
		if l.Status != types.LectureStatusScheduled || strings.TrimSpace(l.VideoPath) != "" {
			return false
		}
		return lectureNumber == nil || (l.LectureNumber != nil && *l.LectureNumber == *lectureNumber)
	})
	if len(matches) == 0 {
		return nil, nil
	}
	sortBy(matches, func(a, b *types.Lecture) bool { return a.CreatedAt.Before(b.CreatedAt) })
	return matches[0], nil
}

func (r lectureRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("LectureRepo.UpdateFields"); err != nil {
		return err
	}
	row, ok := r.s.lectures[id]
	if !ok {
		return nil
	}
	return applyUpdates(row, touch(updates))
}

func (r lectureRepo) Delete(_ dbctx.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.lectures[id]
	delete(r.s.lectures, id)
	return ok, nil
}

type reportRepo struct{ s *Store }

func (r reportRepo) Upsert(_ dbctx.Context, report *types.Report) (*types.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("ReportRepo.Upsert"); err != nil {
		return nil, err
	}
	if report == nil || report.LectureID == uuid.Nil {
		return nil, errors.New("report requires lecture_id")
	}
	now := time.Now()
	for _, existing := range r.s.reports {
		if existing.LectureID != report.LectureID {
			continue
		}
		existing.AnalysisData = report.AnalysisData
		existing.RubricScores = report.RubricScores
		existing.GeneratedByAI = report.GeneratedByAI
		existing.Model = report.Model
		existing.PDFPath = report.PDFPath
		existing.UpdatedAt = now
		return clone(existing), nil
	}
	stamp(&report.ID, &report.CreatedAt, &report.UpdatedAt)
	r.s.reports[report.ID] = clone(report)
	return clone(report), nil
}

func (r reportRepo) GetByLectureID(_ dbctx.Context, lectureID uuid.UUID) (*types.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rep := range r.s.reports {
		if rep.LectureID == lectureID {
			return clone(rep), nil
		}
	}
	return nil, nil
}

func (r reportRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("ReportRepo.UpdateFields"); err != nil {
		return err
	}
	row, ok := r.s.reports[id]
	if !ok {
		return nil
	}
	return applyUpdates(row, touch(updates))
}

// ReportCount is the number of stored reports.
func (s *Store) ReportCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

type rubricRepo struct{ s *Store }

func (r rubricRepo) ReplaceForGrade(_ dbctx.Context, rubric *types.Rubric) (*types.Rubric, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rubric == nil || strings.TrimSpace(rubric.Grade) == "" {
		return nil, errors.New("rubric requires grade")
	}
	var replaced *types.Rubric
	for id, prior := range r.s.rubrics {
		if prior.Grade == rubric.Grade {
			replaced = clone(prior)
			delete(r.s.rubrics, id)
		}
	}
	stamp(&rubric.ID, &rubric.CreatedAt, &rubric.UpdatedAt)
	r.s.rubrics[rubric.ID] = clone(rubric)
	return replaced, nil
}

func (r rubricRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Rubric, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.rubrics[id]), nil
}

func (r rubricRepo) GetByGrade(_ dbctx.Context, grade string) (*types.Rubric, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	grade = strings.TrimSpace(grade)
	for _, rb := range r.s.rubrics {
		if grade != "" && rb.Grade == grade {
			return clone(rb), nil
		}
	}
	return nil, nil
}

func (r rubricRepo) List(_ dbctx.Context) ([]*types.Rubric, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := values(r.s.rubrics, nil)
	sortBy(out, func(a, b *types.Rubric) bool { return a.Grade < b.Grade })
	return out, nil
}

func (r rubricRepo) Delete(_ dbctx.Context, id uuid.UUID) (*types.Rubric, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.rubrics[id]
	if !ok {
		return nil, nil
	}
	delete(r.s.rubrics, id)
	return row, nil
}
