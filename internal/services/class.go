package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/apierr"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type ClassInput struct {
	SchoolID  *uuid.UUID `json:"school_id"`
	TeacherID *uuid.UUID `json:"teacher_id"`
	Grade     *string    `json:"grade"`
	Section   *string    `json:"section"`
	Subject   *string    `json:"subject"`
}

type ClassService interface {
	Create(dbc dbctx.Context, in ClassInput) (*types.Class, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Class, error)
	List(dbc dbctx.Context, filter repos.ClassFilter) ([]*types.Class, error)
	Update(dbc dbctx.Context, id uuid.UUID, in ClassInput) (*types.Class, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type classService struct {
	db       *gorm.DB
	log      *logger.Logger
	classes  repos.ClassRepo
	schools  repos.SchoolRepo
	teachers repos.TeacherRepo
}

func NewClassService(db *gorm.DB, baseLog *logger.Logger, classes repos.ClassRepo, schools repos.SchoolRepo, teachers repos.TeacherRepo) ClassService {
	return &classService{
		db:       db,
		log:      baseLog.With("service", "ClassService"),
		classes:  classes,
		schools:  schools,
		teachers: teachers,
	}
}

func (s *classService) Create(dbc dbctx.Context, in ClassInput) (*types.Class, error) {
	grade, _ := trimmed(in.Grade)
	section, _ := trimmed(in.Section)
	if grade == "" || section == "" {
		return nil, apierr.BadRequest("missing_fields", "grade and section are required")
	}
	if err := s.checkRefs(dbc, in.SchoolID, in.TeacherID); err != nil {
		return nil, err
	}
	c := &types.Class{ID: uuid.New(), SchoolID: in.SchoolID, TeacherID: in.TeacherID, Grade: grade, Section: section}
	c.Subject, _ = trimmed(in.Subject)
	created, err := s.classes.Create(dbc, c)
	if err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}
	return created, nil
}

func (s *classService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Class, error) {
	c, err := s.classes.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load class: %w", err)
	}
	if c == nil {
		return nil, apierr.NotFound("class_not_found", "class %s not found", id)
	}
	return c, nil
}

func (s *classService) List(dbc dbctx.Context, filter repos.ClassFilter) ([]*types.Class, error) {
	out, err := s.classes.List(dbc, filter)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return out, nil
}

func (s *classService) Update(dbc dbctx.Context, id uuid.UUID, in ClassInput) (*types.Class, error) {
	if _, err := s.Get(dbc, id); err != nil {
		return nil, err
	}
	if err := s.checkRefs(dbc, in.SchoolID, in.TeacherID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	for col, p := range map[string]*string{"grade": in.Grade, "section": in.Section} {
		if v, ok := trimmed(p); ok {
			if v == "" {
				return nil, apierr.BadRequest("missing_fields", "%s cannot be empty", col)
			}
			updates[col] = v
		}
	}
	setTrimmed(updates, "subject", in.Subject)
	if in.SchoolID != nil {
		updates["school_id"] = *in.SchoolID
	}
	if in.TeacherID != nil {
		updates["teacher_id"] = *in.TeacherID
	}
	if len(updates) > 0 {
		if err := s.classes.UpdateFields(dbc, id, updates); err != nil {
			return nil, fmt.Errorf("update class: %w", err)
		}
	}
	return s.Get(dbc, id)
}

func (s *classService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	ok, err := s.classes.Delete(dbc, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	if !ok {
		return apierr.NotFound("class_not_found", "class %s not found", id)
	}
	return nil
}

func (s *classService) checkRefs(dbc dbctx.Context, schoolID, teacherID *uuid.UUID) error {
	if schoolID != nil {
		school, err := s.schools.GetByID(dbc, *schoolID)
		if err != nil {
			return fmt.Errorf("load school: %w", err)
		}
		if school == nil {
			return apierr.BadRequest("unknown_school", "school %s does not exist", *schoolID)
		}
	}
	if teacherID != nil {
		t, err := s.teachers.GetByID(dbc, *teacherID)
		if err != nil {
			return fmt.Errorf("load teacher: %w", err)
		}
		if t == nil {
			return apierr.BadRequest("unknown_teacher", "teacher %s does not exist", *teacherID)
		}
	}
	return nil
}
