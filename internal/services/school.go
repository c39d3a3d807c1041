package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	"github.com/yungbote/lecturelens-backend/internal/data/repos/dberr"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/apierr"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

// SchoolInput is used for both create and partial update; nil fields are left alone.
type SchoolInput struct {
	Name    *string `json:"name"`
	Code    *string `json:"code"`
	Address *string `json:"address"`
	City    *string `json:"city"`
}

type SchoolService interface {
	Create(dbc dbctx.Context, in SchoolInput) (*types.School, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.School, error)
	List(dbc dbctx.Context) ([]*types.School, error)
	Update(dbc dbctx.Context, id uuid.UUID, in SchoolInput) (*types.School, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type schoolService struct {
	db      *gorm.DB
	log     *logger.Logger
	schools repos.SchoolRepo
}

func NewSchoolService(db *gorm.DB, baseLog *logger.Logger, schools repos.SchoolRepo) SchoolService {
	return &schoolService{db: db, log: baseLog.With("service", "SchoolService"), schools: schools}
}

func (s *schoolService) Create(dbc dbctx.Context, in SchoolInput) (*types.School, error) {
	name, _ := trimmed(in.Name)
	if name == "" {
		return nil, apierr.BadRequest("missing_name", "name is required")
	}
	school := &types.School{ID: uuid.New(), Name: name}
	school.Code, _ = trimmed(in.Code)
	school.Address, _ = trimmed(in.Address)
	school.City, _ = trimmed(in.City)
	created, err := s.schools.Create(dbc, school)
	if dberr.IsUniqueViolation(err) {
		return nil, apierr.Conflict("school_exists", "a school named %q already exists", name)
	}
	if err != nil {
		return nil, fmt.Errorf("create school: %w", err)
	}
	s.log.Info("School created", "school_id", created.ID)
	return created, nil
}

func (s *schoolService) Get(dbc dbctx.Context, id uuid.UUID) (*types.School, error) {
	school, err := s.schools.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load school: %w", err)
	}
	if school == nil {
		return nil, apierr.NotFound("school_not_found", "school %s not found", id)
	}
	return school, nil
}

func (s *schoolService) List(dbc dbctx.Context) ([]*types.School, error) {
	out, err := s.schools.List(dbc)
	if err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}
	return out, nil
}

func (s *schoolService) Update(dbc dbctx.Context, id uuid.UUID, in SchoolInput) (*types.School, error) {
	if _, err := s.Get(dbc, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if name, ok := trimmed(in.Name); ok {
		if name == "" {
			return nil, apierr.BadRequest("missing_name", "name cannot be empty")
		}
		updates["name"] = name
	}
	setTrimmed(updates, "code", in.Code)
	setTrimmed(updates, "address", in.Address)
	setTrimmed(updates, "city", in.City)
	if len(updates) > 0 {
		err := s.schools.UpdateFields(dbc, id, updates)
		if dberr.IsUniqueViolation(err) {
			return nil, apierr.Conflict("school_exists", "a school with that name already exists")
		}
		if err != nil {
			return nil, fmt.Errorf("update school: %w", err)
		}
	}
	return s.Get(dbc, id)
}

func (s *schoolService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	ok, err := s.schools.Delete(dbc, id)
	if err != nil {
		return fmt.Errorf("delete school: %w", err)
	}
	if !ok {
		return apierr.NotFound("school_not_found", "school %s not found", id)
	}
	return nil
}

func trimmed(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return strings.TrimSpace(*p), true
}

func setTrimmed(updates map[string]interface{}, column string, p *string) {
	if v, ok := trimmed(p); ok {
		updates[column] = v
	}
}
