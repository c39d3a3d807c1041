package org

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type TeacherRepo interface {
	Create(dbc dbctx.Context, teacher *types.Teacher) (*types.Teacher, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Teacher, error)
	List(dbc dbctx.Context, schoolID *uuid.UUID) ([]*types.Teacher, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type teacherRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeacherRepo(db *gorm.DB, baseLog *logger.Logger) TeacherRepo {
	return &teacherRepo{
		db:  db,
		log: baseLog.With("repo", "TeacherRepo"),
	}
}

func (r *teacherRepo) Create(dbc dbctx.Context, teacher *types.Teacher) (*types.Teacher, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if teacher.ID == uuid.Nil {
		teacher.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(teacher).Error; err != nil {
		return nil, err
	}
	return teacher, nil
}

func (r *teacherRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Teacher, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var teacher types.Teacher
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&teacher).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) List(dbc dbctx.Context, schoolID *uuid.UUID) ([]*types.Teacher, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Teacher{})
	if schoolID != nil {
		q = q.Where("school_id = ?", *schoolID)
	}
	var out []*types.Teacher
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *teacherRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
	return transaction.WithContext(dbc.Ctx).Model(&types.Teacher{}).Where("id = ?", id).Updates(updates).Error
}

func (r *teacherRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Teacher{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
