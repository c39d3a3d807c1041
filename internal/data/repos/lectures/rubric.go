package lectures

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type RubricRepo interface {
	// ReplaceForGrade deletes any rubric for the same grade and inserts the new one atomically.
	// It returns the replaced row, if there was one.
	ReplaceForGrade(dbc dbctx.Context, rubric *types.Rubric) (*types.Rubric, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Rubric, error)
	GetByGrade(dbc dbctx.Context, grade string) (*types.Rubric, error)
	List(dbc dbctx.Context) ([]*types.Rubric, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (*types.Rubric, error)
}

type rubricRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRubricRepo(db *gorm.DB, baseLog *logger.Logger) RubricRepo {
	return &rubricRepo{
		db:  db,
		log: baseLog.With("repo", "RubricRepo"),
	}
}

func (r *rubricRepo) ReplaceForGrade(dbc dbctx.Context, rubric *types.Rubric) (*types.Rubric, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if rubric == nil || strings.TrimSpace(rubric.Grade) == "" {
		return nil, errors.New("rubric requires grade")
	}
	if rubric.ID == uuid.Nil {
		rubric.ID = uuid.New()
	}
	var replaced *types.Rubric
	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		var prior types.Rubric
		if err := txx.Where("grade = ?", rubric.Grade).Limit(1).Find(&prior).Error; err != nil {
			return err
		}
		if prior.ID != uuid.Nil {
			if err := txx.Where("id = ?", prior.ID).Delete(&types.Rubric{}).Error; err != nil {
				return err
			}
			replaced = &prior
		}
		return txx.Create(rubric).Error
	})
	if err != nil {
		return nil, err
	}
	return replaced, nil
}

func (r *rubricRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Rubric, error) {
	return r.first(dbc, "id = ?", id)
}

func (r *rubricRepo) GetByGrade(dbc dbctx.Context, grade string) (*types.Rubric, error) {
	grade = strings.TrimSpace(grade)
	if grade == "" {
		return nil, nil
	}
	return r.first(dbc, "grade = ?", grade)
}

func (r *rubricRepo) first(dbc dbctx.Context, query string, arg interface{}) (*types.Rubric, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rubric types.Rubric
	err := transaction.WithContext(dbc.Ctx).Where(query, arg).First(&rubric).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rubric, nil
}

func (r *rubricRepo) List(dbc dbctx.Context) ([]*types.Rubric, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Rubric
	if err := transaction.WithContext(dbc.Ctx).Order("grade ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *rubricRepo) Delete(dbc dbctx.Context, id uuid.UUID) (*types.Rubric, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var deleted *types.Rubric
	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		var row types.Rubric
		if err := txx.Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
			return err
		}
		if row.ID == uuid.Nil {
			return nil
		}
		if err := txx.Where("id = ?", id).Delete(&types.Rubric{}).Error; err != nil {
			return err
		}
		deleted = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
