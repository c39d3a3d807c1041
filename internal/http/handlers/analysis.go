package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lecturelens-backend/internal/http/response"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

type AnalysisHandler struct {
	log      *logger.Logger
	analysis services.AnalysisService
	reports  services.ReportService
}

func NewAnalysisHandler(log *logger.Logger, analysis services.AnalysisService, reports services.ReportService) *AnalysisHandler {
	return &AnalysisHandler{
		log:      log.With("handler", "AnalysisHandler"),
		analysis: analysis,
		reports:  reports,
	}
}

// POST /api/upload
// multipart: video, cobParams?, readingMaterial?, lessonPlan?, teacher_id, date, lecture_number?, grade, section, subject?, time_slot?
func (h *AnalysisHandler) Upload(c *gin.Context) {
	form, ok := parseMultipart(c)
	if !ok {
		return
	}
	defer func() { _ = form.RemoveAll() }()

	var teacherID uuid.UUID
	if raw := formValue(form, "teacher_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_teacher_id", fmt.Errorf("teacher_id must be a uuid, got %q", raw))
			return
		}
		teacherID = id
	}
	lectureNumber, err := formInt(form, "lecture_number")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_lecture_number", err)
		return
	}

	res, err := h.analysis.Upload(requestDBC(c), services.UploadInput{
		TeacherID:     teacherID,
		Date:          formValue(form, "date"),
		LectureNumber: lectureNumber,
		Grade:         formValue(form, "grade"),
		Section:       formValue(form, "section"),
		Subject:       formValue(form, "subject"),
		TimeSlot:      formValue(form, "time_slot"),
		Files:         incomingFiles(form),
	})
	if err != nil {
		response.RespondServiceError(c, err, "upload_failed")
		return
	}
	h.log.Info("Lecture queued for analysis", "lecture_id", res.LectureID, "job_id", res.JobID, "files", len(res.Files))
	c.JSON(http.StatusAccepted, res)
}

// GET /api/analysis/:lecture_id
func (h *AnalysisHandler) GetReport(c *gin.Context) {
	lectureID, ok := pathID(c, "lecture_id", "invalid_lecture_id")
	if !ok {
		return
	}
	view, err := h.reports.Get(requestDBC(c), lectureID)
	if err != nil {
		response.RespondServiceError(c, err, "report_failed")
		return
	}
	response.RespondOK(c, view)
}

// GET /api/analysis/:lecture_id/download
func (h *AnalysisHandler) DownloadReport(c *gin.Context) {
	lectureID, ok := pathID(c, "lecture_id", "invalid_lecture_id")
	if !ok {
		return
	}
	path, err := h.reports.PDF(requestDBC(c), lectureID)
	if err != nil {
		response.RespondServiceError(c, err, "render_failed")
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(path, fmt.Sprintf("lecture-%s-report.pdf", lectureID))
}

// POST /api/analysis/:lecture_id/rerun
func (h *AnalysisHandler) Rerun(c *gin.Context) {
	lectureID, ok := pathID(c, "lecture_id", "invalid_lecture_id")
	if !ok {
		return
	}
	job, err := h.analysis.Rerun(requestDBC(c), lectureID)
	if err != nil {
		response.RespondServiceError(c, err, "rerun_failed")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status":     services.StatusProcessing,
		"lecture_id": lectureID,
		"job_id":     job.ID,
	})
}
