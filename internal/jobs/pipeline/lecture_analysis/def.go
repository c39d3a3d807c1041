package lecture_analysis

import (
	"github.com/yungbote/lecturelens-backend/internal/analysis"
	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	"github.com/yungbote/lecturelens-backend/internal/platform/gcp"
	"github.com/yungbote/lecturelens-backend/internal/platform/localmedia"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
	"github.com/yungbote/lecturelens-backend/internal/platform/slots"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

const JobType = services.JobTypeLectureAnalysis

type Deps struct {
	Lectures    repos.LectureRepo
	Reports     repos.ReportRepo
	Rubrics     services.RubricService
	Meta        services.LectureMetaResolver
	Files       services.FileStore
	Text        services.TextExtractor
	Transcriber services.Transcriber
	Analyzer    services.Analyzer
	Renderer    services.PDFRenderer
	Media       localmedia.Tools
	// Archive may be nil or disabled; mirroring is skipped then.
	Archive gcp.Archive
	Slots   slots.Limiter
	Config  *analysis.Config
}

type Pipeline struct {
	log *logger.Logger
	d   Deps
}

func New(baseLog *logger.Logger, deps Deps) *Pipeline {
	return &Pipeline{
		log: baseLog.With("job", JobType),
		d:   deps,
	}
}

func (p *Pipeline) Type() string { return JobType }
