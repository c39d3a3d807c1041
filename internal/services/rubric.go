package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/apierr"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type RubricService interface {
	// Upload stores the file, extracts its text and replaces any rubric for the same grade.
	Upload(dbc dbctx.Context, grade string, file IncomingFile) (*types.Rubric, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Rubric, error)
	List(dbc dbctx.Context) ([]*types.Rubric, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	// ForGrade returns the rubric for grade, or nil when there is none.
	ForGrade(dbc dbctx.Context, grade string) (*types.Rubric, error)
}

type rubricService struct {
	db      *gorm.DB
	log     *logger.Logger
	rubrics repos.RubricRepo
	files   FileStore
	text    TextExtractor
}

func NewRubricService(db *gorm.DB, baseLog *logger.Logger, rubrics repos.RubricRepo, files FileStore, text TextExtractor) RubricService {
	return &rubricService{
		db:      db,
		log:     baseLog.With("service", "RubricService"),
		rubrics: rubrics,
		files:   files,
		text:    text,
	}
}

func (s *rubricService) Upload(dbc dbctx.Context, grade string, file IncomingFile) (*types.Rubric, error) {
	grade = strings.TrimSpace(grade)
	if grade == "" {
		return nil, apierr.BadRequest("missing_grade", "grade is required")
	}
	file.Field = FieldRubric
	stored, err := s.files.Save([]IncomingFile{file})
	if err != nil {
		return nil, err
	}
	sf := stored[0]
	extracted := s.text.Extract(dbc.Ctx, FieldRubric, s.files.Abs(sf.Path))
	if extracted.Failed {
		s.log.Warn("Rubric text extraction failed; storing placeholder", "grade", grade, "path", sf.Path)
	}
	row := &types.Rubric{
		ID:       uuid.New(),
		Grade:    grade,
		FilePath: sf.Path,
		FileType: strings.TrimPrefix(sf.Ext, "."),
		Content:  extracted.Text,
	}
	replaced, err := s.rubrics.ReplaceForGrade(dbc, row)
	if err != nil {
		_ = s.files.Remove(sf.Path)
		return nil, fmt.Errorf("save rubric: %w", err)
	}
	if replaced != nil && replaced.FilePath != row.FilePath {
		if err := s.files.Remove(replaced.FilePath); err != nil {
			s.log.Warn("Old rubric file cleanup failed", "path", replaced.FilePath, "error", err)
		}
	}
	s.log.Info("Rubric stored", "grade", grade, "rubric_id", row.ID, "replaced", replaced != nil)
	return row, nil
}

func (s *rubricService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Rubric, error) {
	r, err := s.rubrics.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load rubric: %w", err)
	}
	if r == nil {
		return nil, apierr.NotFound("rubric_not_found", "rubric %s not found", id)
	}
	return r, nil
}

func (s *rubricService) List(dbc dbctx.Context) ([]*types.Rubric, error) {
	out, err := s.rubrics.List(dbc)
	if err != nil {
		return nil, fmt.Errorf("list rubrics: %w", err)
	}
	return out, nil
}

func (s *rubricService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	deleted, err := s.rubrics.Delete(dbc, id)
	if err != nil {
		return fmt.Errorf("delete rubric: %w", err)
	}
	if deleted == nil {
		return apierr.NotFound("rubric_not_found", "rubric %s not found", id)
	}
	if err := s.files.Remove(deleted.FilePath); err != nil {
		s.log.Warn("Rubric file cleanup failed", "path", deleted.FilePath, "error", err)
	}
	return nil
}

func (s *rubricService) ForGrade(dbc dbctx.Context, grade string) (*types.Rubric, error) {
	r, err := s.rubrics.GetByGrade(dbc, grade)
	if err != nil {
		return nil, fmt.Errorf("load rubric: %w", err)
	}
	return r, nil
}
