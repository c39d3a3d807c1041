package lectures

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type LectureFilter struct {
	TeacherID *uuid.UUID
	ClassID   *uuid.UUID
	Status    string
}

type LectureRepo interface {
	Create(dbc dbctx.Context, lecture *types.Lecture) (*types.Lecture, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lecture, error)
	List(dbc dbctx.Context, filter LectureFilter) ([]*types.Lecture, error)
	// FindScheduled returns a scheduled lecture for the teacher and date that has no video yet.
	// When lectureNumber is set it must match as well.
	FindScheduled(dbc dbctx.Context, teacherID uuid.UUID, date time.Time, lectureNumber *int) (*types.Lecture, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type lectureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLectureRepo(db *gorm.DB, baseLog *logger.Logger) LectureRepo {
	return &lectureRepo{
		db:  db,
		log: baseLog.With("repo", "LectureRepo"),
	}
}

func (r *lectureRepo) Create(dbc dbctx.Context, lecture *types.Lecture) (*types.Lecture, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if lecture.ID == uuid.Nil {
		lecture.ID = uuid.New()
	}
	if lecture.Status == "" {
		lecture.Status = types.LectureStatusScheduled
	}
	if err := transaction.WithContext(dbc.Ctx).Create(lecture).Error; err != nil {
		return nil, err
	}
	return lecture, nil
}

func (r *lectureRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lecture, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var lecture types.Lecture
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&lecture).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lecture, nil
}

func (r *lectureRepo) List(dbc dbctx.Context, filter LectureFilter) ([]*types.Lecture, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Lecture{})
	if filter.TeacherID != nil {
		q = q.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.ClassID != nil {
		q = q.Where("class_id = ?", *filter.ClassID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var out []*types.Lecture
	if err := q.Order("scheduled_date DESC, created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lectureRepo) FindScheduled(dbc dbctx.Context, teacherID uuid.UUID, date time.Time, lectureNumber *int) (*types.Lecture, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if teacherID == uuid.Nil {
		return nil, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("teacher_id = ? AND scheduled_date = ? AND status = ? AND (video_path IS NULL OR video_path = '')",
			teacherID, date.Format("2006-01-02"), types.LectureStatusScheduled)
	if lectureNumber != nil {
		q = q.Where("lecture_number = ?", *lectureNumber)
	}
	var lecture types.Lecture
	if err := q.Order("created_at ASC").Limit(1).Find(&lecture).Error; err != nil {
		return nil, err
	}
	if lecture.ID == uuid.Nil {
		return nil, nil
	}
	return &lecture, nil
}

func (r *lectureRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
	return transaction.WithContext(dbc.Ctx).Model(&types.Lecture{}).Where("id = ?", id).Updates(updates).Error
}

func (r *lectureRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Lecture{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
