package handlers

import (
	"io"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

type receivedFile struct {
	Field    string
	Filename string
	Body     string
}

type fakeAnalysis struct {
	in       services.UploadInput
	received []receivedFile
	result   *services.UploadResult
	err      error
	rerunErr error
}

func (f *fakeAnalysis) Upload(dbc dbctx.Context, in services.UploadInput) (*services.UploadResult, error) {
	f.in = in
	for _, file := range in.Files {
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		body, _ := io.ReadAll(rc)
		_ = rc.Close()
		f.received = append(f.received, receivedFile{Field: file.Field, Filename: file.Filename, Body: string(body)})
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeAnalysis) Rerun(dbc dbctx.Context, lectureID uuid.UUID) (*types.JobRun, error) {
	if f.rerunErr != nil {
		return nil, f.rerunErr
	}
	return &types.JobRun{ID: uuid.New(), JobType: services.JobTypeLectureAnalysis, EntityID: &lectureID, Status: types.JobStatusQueued}, nil
}

type fakeReports struct {
	view    *services.ReportView
	pdfPath string
	err     error
}

func (f *fakeReports) Get(dbc dbctx.Context, lectureID uuid.UUID) (*services.ReportView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.view, nil
}

func (f *fakeReports) PDF(dbc dbctx.Context, lectureID uuid.UUID) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.pdfPath, nil
}

type fakeRubrics struct {
	grade string
	file  receivedFile
	err   error
}

func (f *fakeRubrics) Upload(dbc dbctx.Context, grade string, file services.IncomingFile) (*types.Rubric, error) {
	f.grade = grade
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	f.file = receivedFile{Field: file.Field, Filename: file.Filename, Body: string(body)}
	if f.err != nil {
		return nil, f.err
	}
	return &types.Rubric{ID: uuid.New(), Grade: grade, Content: string(body), CreatedAt: time.Now()}, nil
}

func (f *fakeRubrics) Get(dbc dbctx.Context, id uuid.UUID) (*types.Rubric, error) { return nil, f.err }
func (f *fakeRubrics) List(dbc dbctx.Context) ([]*types.Rubric, error)            { return nil, f.err }
func (f *fakeRubrics) Delete(dbc dbctx.Context, id uuid.UUID) error               { return f.err }
func (f *fakeRubrics) ForGrade(dbc dbctx.Context, grade string) (*types.Rubric, error) {
	return nil, f.err
}
