package repos

import (
	"github.com/yungbote/lecturelens-backend/internal/data/repos/jobs"
	"github.com/yungbote/lecturelens-backend/internal/data/repos/lectures"
	"github.com/yungbote/lecturelens-backend/internal/data/repos/org"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type SchoolRepo = org.SchoolRepo
type UserRepo = org.UserRepo
type TeacherRepo = org.TeacherRepo
type ClassRepo = org.ClassRepo

type UserFilter = org.UserFilter
type ClassFilter = org.ClassFilter

type LectureRepo = lectures.LectureRepo
type ReportRepo = lectures.ReportRepo
type RubricRepo = lectures.RubricRepo

type LectureFilter = lectures.LectureFilter

type JobRunRepo = jobs.JobRunRepo

func NewSchoolRepo(db *gorm.DB, baseLog *logger.Logger) SchoolRepo {
	return org.NewSchoolRepo(db, baseLog)
}
func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return org.NewUserRepo(db, baseLog)
}
func NewTeacherRepo(db *gorm.DB, baseLog *logger.Logger) TeacherRepo {
	return org.NewTeacherRepo(db, baseLog)
}
func NewClassRepo(db *gorm.DB, baseLog *logger.Logger) ClassRepo {
	return org.NewClassRepo(db, baseLog)
}

func NewLectureRepo(db *gorm.DB, baseLog *logger.Logger) LectureRepo {
	return lectures.NewLectureRepo(db, baseLog)
}
func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return lectures.NewReportRepo(db, baseLog)
}
func NewRubricRepo(db *gorm.DB, baseLog *logger.Logger) RubricRepo {
	return lectures.NewRubricRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}
