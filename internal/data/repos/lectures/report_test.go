package lectures

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lecturelens-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"gorm.io/datatypes"
)

func TestReportRepoUpsertKeepsOneRowPerLecture(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewReportRepo(db, testutil.Logger(t))

	school := testutil.SeedSchool(t, ctx, tx, "Report Repo School "+uuid.NewString())
	teacher := testutil.SeedTeacher(t, ctx, tx, school.ID, "Jane Doe")
	lecture := testutil.SeedLecture(t, ctx, tx, teacher.ID, time.Now().UTC())

	first, err := repo.Upsert(dbc, &types.Report{
		LectureID:     lecture.ID,
		AnalysisData:  datatypes.JSON([]byte(`{"version":1}`)),
		GeneratedByAI: true,
		Model:         "gemini-2.5-flash",
	})
	if err != nil || first == nil {
		t.Fatalf("Upsert #1: err=%v", err)
	}

	second, err := repo.Upsert(dbc, &types.Report{
		LectureID:     lecture.ID,
		AnalysisData:  datatypes.JSON([]byte(`{"version":2}`)),
		GeneratedByAI: false,
	})
	if err != nil || second == nil {
		t.Fatalf("Upsert #2: err=%v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("Upsert: expected row %v to be updated, got %v", first.ID, second.ID)
	}
	if second.GeneratedByAI {
		t.Fatalf("Upsert: generated_by_ai=false was not persisted")
	}

	var count int64
	if err := tx.Model(&types.Report{}).Where("lecture_id = ?", lecture.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one report per lecture, got %d", count)
	}

	if err := repo.UpdateFields(dbc, first.ID, map[string]interface{}{"pdf_path": "reports/x.pdf"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetByLectureID(dbc, lecture.ID)
	if err != nil || got == nil || got.PDFPath != "reports/x.pdf" {
		t.Fatalf("GetByLectureID: err=%v got=%v", err, got)
	}
	if missing, err := repo.GetByLectureID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByLectureID missing: err=%v got=%v", err, missing)
	}
}
