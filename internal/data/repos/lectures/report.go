package lectures

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type ReportRepo interface {
	// Upsert writes the single report for report.LectureID, updating the existing row in place.
	Upsert(dbc dbctx.Context, report *types.Report) (*types.Report, error)
	GetByLectureID(dbc dbctx.Context, lectureID uuid.UUID) (*types.Report, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return &reportRepo{
		db:  db,
		log: baseLog.With("repo", "ReportRepo"),
	}
}

func (r *reportRepo) Upsert(dbc dbctx.Context, report *types.Report) (*types.Report, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if report == nil || report.LectureID == uuid.Nil {
		return nil, errors.New("report requires lecture_id")
	}
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	now := time.Now()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now

	err := transaction.WithContext(dbc.Ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "lecture_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"analysis_data",
			"rubric_scores",
			"generated_by_ai",
			"model",
			"pdf_path",
			"updated_at",
		}),
	}).Create(report).Error
	if err != nil {
		return nil, err
	}
	// On conflict the generated ID is not the stored one; reload to return the persisted row.
	return r.GetByLectureID(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}, report.LectureID)
}

func (r *reportRepo) GetByLectureID(dbc dbctx.Context, lectureID uuid.UUID) (*types.Report, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if lectureID == uuid.Nil {
		return nil, nil
	}
	var report types.Report
	err := transaction.WithContext(dbc.Ctx).Where("lecture_id = ?", lectureID).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
	return transaction.WithContext(dbc.Ctx).Model(&types.Report{}).Where("id = ?", id).Updates(updates).Error
}
