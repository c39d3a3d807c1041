package domain

import (
	"github.com/yungbote/lecturelens-backend/internal/domain/jobs"
	"github.com/yungbote/lecturelens-backend/internal/domain/lectures"
	"github.com/yungbote/lecturelens-backend/internal/domain/org"
)

type School = org.School
type User = org.User
type Teacher = org.Teacher
type Class = org.Class

type Lecture = lectures.Lecture
type Report = lectures.Report
type Rubric = lectures.Rubric

type JobRun = jobs.JobRun

const (
	LectureStatusScheduled = lectures.LectureStatusScheduled
	LectureStatusCompleted = lectures.LectureStatusCompleted
	LectureStatusCancelled = lectures.LectureStatusCancelled
)

const (
	JobStatusQueued    = jobs.StatusQueued
	JobStatusRunning   = jobs.StatusRunning
	JobStatusSucceeded = jobs.StatusSucceeded
	JobStatusFailed    = jobs.StatusFailed
	JobStatusCanceled  = jobs.StatusCanceled
)

// All returns every persisted entity, in migration order.
func All() []any {
	return []any{
		&School{},
		&User{},
		&Teacher{},
		&Class{},
		&Lecture{},
		&Report{},
		&Rubric{},
		&JobRun{},
	}
}
