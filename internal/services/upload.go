package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

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

const StatusProcessing = "processing"

type UploadInput struct {
	TeacherID     uuid.UUID
	Date          string
	LectureNumber *int
	Grade         string
	Section       string
	Subject       string
	TimeSlot      string
	Files         []IncomingFile
}

type UploadResult struct {
	Status    string       `json:"status"`
	LectureID uuid.UUID    `json:"lecture_id"`
	JobID     uuid.UUID    `json:"job_id"`
	Files     []StoredFile `json:"files"`
}

// AnalysisService is the upload side of the analysis flow: it attaches files to a lecture
// and queues the background job that produces the report.
type AnalysisService interface {
	Upload(dbc dbctx.Context, in UploadInput) (*UploadResult, error)
	Rerun(dbc dbctx.Context, lectureID uuid.UUID) (*types.JobRun, error)
}

type analysisService struct {
	db       *gorm.DB
	log      *logger.Logger
	tx       dbctx.TxRunner
	files    FileStore
	lectures repos.LectureRepo
	teachers repos.TeacherRepo
	classes  repos.ClassRepo
	jobs     JobService
}

func NewAnalysisService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tx dbctx.TxRunner,
	files FileStore,
	lectures repos.LectureRepo,
	teachers repos.TeacherRepo,
	classes repos.ClassRepo,
	jobs JobService,
) AnalysisService {
	return &analysisService{
		db:       db,
		log:      baseLog.With("service", "AnalysisService"),
		tx:       tx,
		files:    files,
		lectures: lectures,
		teachers: teachers,
		classes:  classes,
		jobs:     jobs,
	}
}

func (s *analysisService) Upload(dbc dbctx.Context, in UploadInput) (*UploadResult, error) {
	if in.TeacherID == uuid.Nil {
		return nil, apierr.BadRequest("missing_teacher_id", "teacher_id is required")
	}
	date, err := ParseLectureDate(in.Date)
	if err != nil {
		return nil, err
	}
	if err := checkUploadFields(in.Files); err != nil {
		return nil, err
	}
	// Everything is validated before the first byte is written.
	if err := s.files.Validate(in.Files); err != nil {
		return nil, err
	}
	if err := requireTeacher(dbc, s.teachers, in.TeacherID); err != nil {
		return nil, err
	}

	stored, err := s.files.Save(in.Files)
	if err != nil {
		return nil, err
	}
	video, aux := splitStored(stored)
	auxJSON, err := json.Marshal(aux)
	if err != nil {
		s.removeAll(stored)
		return nil, fmt.Errorf("encode aux files: %w", err)
	}

	var lecture *types.Lecture
	var job *types.JobRun
	err = s.tx.InTx(dbc.Ctx, func(txc dbctx.Context) error {
		existing, err := s.lectures.FindScheduled(txc, in.TeacherID, date, in.LectureNumber)
		if err != nil {
			return fmt.Errorf("find scheduled lecture: %w", err)
		}
		if existing != nil {
			updates := map[string]interface{}{
				"status":     types.LectureStatusCompleted,
				"video_path": video,
				"aux_files":  datatypes.JSON(auxJSON),
			}
			for col, v := range map[string]string{"grade": in.Grade, "section": in.Section, "subject": in.Subject, "time_slot": in.TimeSlot} {
				if v != "" {
					updates[col] = v
				}
			}
			if err := s.lectures.UpdateFields(txc, existing.ID, updates); err != nil {
				return fmt.Errorf("attach video: %w", err)
			}
			lecture = existing
		} else {
			l := &types.Lecture{
				ID:            uuid.New(),
				TeacherID:     in.TeacherID,
				ScheduledDate: date,
				TimeSlot:      in.TimeSlot,
				LectureNumber: in.LectureNumber,
				Subject:       in.Subject,
				Grade:         in.Grade,
				Section:       in.Section,
				Status:        types.LectureStatusCompleted,
				VideoPath:     video,
				AuxFiles:      datatypes.JSON(auxJSON),
			}
			if err := resolveClass(txc, s.classes, l); err != nil {
				return err
			}
			if lecture, err = s.lectures.Create(txc, l); err != nil {
				return fmt.Errorf("create lecture: %w", err)
			}
		}
		job, err = s.jobs.Enqueue(txc, JobTypeLectureAnalysis, EntityTypeLecture, &lecture.ID, map[string]any{
			"lecture_id": lecture.ID.String(),
		})
		return err
	})
	if err != nil {
		s.removeAll(stored)
		return nil, err
	}
	s.log.Info("Lecture video uploaded", "lecture_id", lecture.ID, "job_id", job.ID, "files", len(stored))
	return &UploadResult{Status: StatusProcessing, LectureID: lecture.ID, JobID: job.ID, Files: stored}, nil
}

func (s *analysisService) Rerun(dbc dbctx.Context, lectureID uuid.UUID) (*types.JobRun, error) {
	lecture, err := s.lectures.GetByID(dbc, lectureID)
	if err != nil {
		return nil, fmt.Errorf("load lecture: %w", err)
	}
	if lecture == nil {
		return nil, apierr.NotFound("lecture_not_found", "lecture %s not found", lectureID)
	}
	if lecture.VideoPath == "" || !s.files.Exists(lecture.VideoPath) {
		return nil, apierr.Conflict("no_video", "lecture %s has no stored video", lectureID)
	}
	active, err := s.jobs.HasActive(dbc, EntityTypeLecture, lectureID, JobTypeLectureAnalysis)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, apierr.Conflict("analysis_in_progress", "an analysis is already queued or running for lecture %s", lectureID)
	}
	job, err := s.jobs.Enqueue(dbc, JobTypeLectureAnalysis, EntityTypeLecture, &lectureID, map[string]any{
		"lecture_id": lectureID.String(),
		"rerun":      true,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Lecture analysis re-queued", "lecture_id", lectureID, "job_id", job.ID)
	return job, nil
}

func (s *analysisService) removeAll(stored []StoredFile) {
	for _, f := range stored {
		if err := s.files.Remove(f.Path); err != nil {
			s.log.Warn("Upload rollback cleanup failed", "path", f.Path, "error", err)
		}
	}
}

// checkUploadFields requires exactly one video and at most one of each auxiliary document.
func checkUploadFields(files []IncomingFile) error {
	seen := map[string]bool{}
	for _, f := range files {
		if f.Field != FieldVideo && !isAuxField(f.Field) {
			return apierr.BadRequest("unknown_file_field", "unexpected file field %q", f.Field)
		}
		if seen[f.Field] {
			return apierr.BadRequest("duplicate_file_field", "only one %s file is accepted", f.Field)
		}
		seen[f.Field] = true
	}
	if !seen[FieldVideo] {
		return apierr.New(http.StatusBadRequest, "missing_video", errors.New("a video file is required"))
	}
	return nil
}

func isAuxField(field string) bool {
	for _, f := range analysis.AuxFields {
		if f == field {
			return true
		}
	}
	return false
}

func splitStored(stored []StoredFile) (video string, aux map[string]string) {
	aux = map[string]string{}
	for _, f := range stored {
		if f.Field == FieldVideo {
			video = f.Path
			continue
		}
		aux[f.Field] = f.Path
	}
	return video, aux
}
