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

type SchoolRepo interface {
	Create(dbc dbctx.Context, school *types.School) (*types.School, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.School, error)
	List(dbc dbctx.Context) ([]*types.School, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type schoolRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSchoolRepo(db *gorm.DB, baseLog *logger.Logger) SchoolRepo {
	return &schoolRepo{
		db:  db,
		log: baseLog.With("repo", "SchoolRepo"),
	}
}

func (r *schoolRepo) Create(dbc dbctx.Context, school *types.School) (*types.School, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if school.ID == uuid.Nil {
		school.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(school).Error; err != nil {
		return nil, err
	}
	return school, nil
}

func (r *schoolRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.School, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var school types.School
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&school).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *schoolRepo) List(dbc dbctx.Context) ([]*types.School, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.School
	if err := transaction.WithContext(dbc.Ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *schoolRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
	return transaction.WithContext(dbc.Ctx).Model(&types.School{}).Where("id = ?", id).Updates(updates).Error
}

func (r *schoolRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.School{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
