package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type Repos struct {
	School  repos.SchoolRepo
	User    repos.UserRepo
	Teacher repos.TeacherRepo
	Class   repos.ClassRepo
	Lecture repos.LectureRepo
	Report  repos.ReportRepo
	Rubric  repos.RubricRepo
	JobRun  repos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		School:  repos.NewSchoolRepo(db, log),
		User:    repos.NewUserRepo(db, log),
		Teacher: repos.NewTeacherRepo(db, log),
		Class:   repos.NewClassRepo(db, log),
		Lecture: repos.NewLectureRepo(db, log),
		Report:  repos.NewReportRepo(db, log),
		Rubric:  repos.NewRubricRepo(db, log),
		JobRun:  repos.NewJobRunRepo(db, log),
	}
}
