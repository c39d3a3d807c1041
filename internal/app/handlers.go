package app

import (
	"context"

	"gorm.io/gorm"

	httpH "github.com/yungbote/lecturelens-backend/internal/http/handlers"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Analysis *httpH.AnalysisHandler
	Rubric   *httpH.RubricHandler
	School   *httpH.SchoolHandler
	User     *httpH.UserHandler
	Teacher  *httpH.TeacherHandler
	Class    *httpH.ClassHandler
	Lecture  *httpH.LectureHandler
	Auth     *httpH.AuthHandler
	Job      *httpH.JobHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(pingDB(db)),
		Analysis: httpH.NewAnalysisHandler(log, s.Analysis, s.Report),
		Rubric:   httpH.NewRubricHandler(log, s.Rubric),
		School:   httpH.NewSchoolHandler(s.School),
		User:     httpH.NewUserHandler(s.User),
		Teacher:  httpH.NewTeacherHandler(s.Teacher),
		Class:    httpH.NewClassHandler(s.Class),
		Lecture:  httpH.NewLectureHandler(s.Lecture),
		Auth:     httpH.NewAuthHandler(log, s.Auth),
		Job:      httpH.NewJobHandler(s.Jobs),
	}
}

func pingDB(db *gorm.DB) httpH.Pinger {
	if db == nil {
		return nil
	}
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
