package org

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type ClassFilter struct {
	SchoolID  *uuid.UUID
	TeacherID *uuid.UUID
	Grade     string
}

type ClassRepo interface {
	Create(dbc dbctx.Context, class *types.Class) (*types.Class, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Class, error)
	List(dbc dbctx.Context, filter ClassFilter) ([]*types.Class, error)
	// FindForLecture resolves the class a teacher teaches for a grade/section, if any.
	FindForLecture(dbc dbctx.Context, teacherID uuid.UUID, grade, section string) (*types.Class, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type classRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClassRepo(db *gorm.DB, baseLog *logger.Logger) ClassRepo {
	return &classRepo{
		db:  db,
		log: baseLog.With("repo", "ClassRepo"),
	}
}

func (r *classRepo) Create(dbc dbctx.Context, class *types.Class) (*types.Class, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if class.ID == uuid.Nil {
		class.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(class).Error; err != nil {
		return nil, err
	}
	return class, nil
}

func (r *classRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Class, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var class types.Class
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&class).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) List(dbc dbctx.Context, filter ClassFilter) ([]*types.Class, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Class{})
	if filter.SchoolID != nil {
		q = q.Where("school_id = ?", *filter.SchoolID)
	}
	if filter.TeacherID != nil {
		q = q.Where("teacher_id = ?", *filter.TeacherID)
	}
	if g := strings.TrimSpace(filter.Grade); g != "" {
		q = q.Where("grade = ?", g)
	}
	var out []*types.Class
	if err := q.Order("grade ASC, section ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *classRepo) FindForLecture(dbc dbctx.Context, teacherID uuid.UUID, grade, section string) (*types.Class, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	grade = strings.TrimSpace(grade)
	section = strings.TrimSpace(section)
	if teacherID == uuid.Nil || grade == "" {
		return nil, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("teacher_id = ? AND grade = ?", teacherID, grade)
	if section != "" {
		q = q.Where("UPPER(section) = UPPER(?)", section)
	}
	var class types.Class
	err := q.Order("created_at ASC").Limit(1).Find(&class).Error
	if err != nil {
		return nil, err
	}
	if class.ID == uuid.Nil {
		return nil, nil
	}
	return &class, nil
}

func (r *classRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(dbc.Ctx).Model(&types.Class{}).Where("id = ?", id).Updates(updates).Error
}

func (r *classRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Class{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
