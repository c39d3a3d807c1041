package services

import (
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/apierr"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type ReportView struct {
	ReportID      uuid.UUID                `json:"report_id"`
	LectureID     uuid.UUID                `json:"lecture_id"`
	AnalysisData  analysis.AnalysisReport  `json:"analysis_data"`
	RubricScores  datatypes.JSON           `json:"rubric_scores,omitempty"`
	Segments      []analysis.SegmentResult `json:"segments"`
	GeneratedByAI bool                     `json:"generated_by_ai"`
	Model         string                   `json:"model,omitempty"`
	Patched       []string                 `json:"patched_fields,omitempty"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

type ReportService interface {
	// Get returns the lecture's report, first patching placeholder header fields from the lecture's relations.
	Get(dbc dbctx.Context, lectureID uuid.UUID) (*ReportView, error)
	// PDF returns the absolute path of the rendered report, rendering it when the cache is missing.
	PDF(dbc dbctx.Context, lectureID uuid.UUID) (string, error)
}

type reportService struct {
	db       *gorm.DB
	log      *logger.Logger
	lectures repos.LectureRepo
	reports  repos.ReportRepo
	meta     LectureMetaResolver
	files    FileStore
	renderer PDFRenderer
	segments []analysis.Segment
}

func NewReportService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lectures repos.LectureRepo,
	reports repos.ReportRepo,
	meta LectureMetaResolver,
	files FileStore,
	renderer PDFRenderer,
	segments []analysis.Segment,
) ReportService {
	return &reportService{
		db:       db,
		log:      baseLog.With("service", "ReportService"),
		lectures: lectures,
		reports:  reports,
		meta:     meta,
		files:    files,
		renderer: renderer,
		segments: segments,
	}
}

// ReportPDFPath is the cache location of a lecture's rendered report, relative to the uploads root.
func ReportPDFPath(lectureID uuid.UUID) string {
	return path.Join("reports", fmt.Sprintf("report-%s.pdf", lectureID))
}

func (s *reportService) Get(dbc dbctx.Context, lectureID uuid.UUID) (*ReportView, error) {
	row, doc, patched, err := s.load(dbc, lectureID)
	if err != nil {
		return nil, err
	}
	return &ReportView{
		ReportID:      row.ID,
		LectureID:     row.LectureID,
		AnalysisData:  doc,
		RubricScores:  row.RubricScores,
		Segments:      analysis.SegmentResults(doc.CobReport.Parameters, s.segments),
		GeneratedByAI: row.GeneratedByAI,
		Model:         row.Model,
		Patched:       patched,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

func (s *reportService) PDF(dbc dbctx.Context, lectureID uuid.UUID) (string, error) {
	row, doc, _, err := s.load(dbc, lectureID)
	if err != nil {
		return "", err
	}
	if row.PDFPath != "" && s.files.Exists(row.PDFPath) {
		return s.files.Abs(row.PDFPath), nil
	}
	rel := ReportPDFPath(lectureID)
	in := RenderInput{Report: doc, Segments: s.segments, Model: row.Model, GeneratedByAI: row.GeneratedByAI}
	if err := s.renderer.RenderFile(in, s.files.Abs(rel)); err != nil {
		return "", fmt.Errorf("render report pdf: %w", err)
	}
	if err := s.reports.UpdateFields(dbc, row.ID, map[string]interface{}{"pdf_path": rel}); err != nil {
		return "", fmt.Errorf("record report pdf: %w", err)
	}
	s.log.Info("Report PDF rendered", "lecture_id", lectureID, "path", rel)
	return s.files.Abs(rel), nil
}

// load reads the report and reconciles its header. A patch is persisted and drops the cached PDF.
func (s *reportService) load(dbc dbctx.Context, lectureID uuid.UUID) (*types.Report, analysis.AnalysisReport, []string, error) {
	var doc analysis.AnalysisReport
	lecture, err := s.lectures.GetByID(dbc, lectureID)
	if err != nil {
		return nil, doc, nil, fmt.Errorf("load lecture: %w", err)
	}
	if lecture == nil {
		return nil, doc, nil, apierr.NotFound("lecture_not_found", "lecture %s not found", lectureID)
	}
	row, err := s.reports.GetByLectureID(dbc, lectureID)
	if err != nil {
		return nil, doc, nil, fmt.Errorf("load report: %w", err)
	}
	if row == nil {
		return nil, doc, nil, apierr.NotFound("report_not_found", "no report for lecture %s", lectureID)
	}
	if err := json.Unmarshal(row.AnalysisData, &doc); err != nil {
		return nil, doc, nil, fmt.Errorf("decode analysis_data: %w", err)
	}
	if !analysis.NeedsPatching(doc.CobReport.Header) {
		return row, doc, nil, nil
	}
	meta, err := s.meta.Resolve(dbc, lecture)
	if err != nil {
		return nil, doc, nil, err
	}
	changed := analysis.Patch(&doc.CobReport.Header, meta.Facts)
	if len(changed) == 0 {
		return row, doc, nil, nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, doc, nil, fmt.Errorf("encode analysis_data: %w", err)
	}
	if err := s.reports.UpdateFields(dbc, row.ID, map[string]interface{}{
		"analysis_data": datatypes.JSON(b),
		"pdf_path":      "",
	}); err != nil {
		return nil, doc, nil, fmt.Errorf("persist patched report: %w", err)
	}
	if row.PDFPath != "" {
		if err := s.files.Remove(row.PDFPath); err != nil {
			s.log.Warn("Stale report PDF cleanup failed", "path", row.PDFPath, "error", err)
		}
	}
	row.AnalysisData = datatypes.JSON(b)
	row.PDFPath = ""
	s.log.Info("Report header reconciled", "lecture_id", lectureID, "fields", changed)
	return row, doc, changed, nil
}
