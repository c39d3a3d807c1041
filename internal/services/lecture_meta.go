package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
)

// LectureMeta is what the database knows about a lecture, gathered from its teacher and class.
type LectureMeta struct {
	Facts   analysis.LectureFacts
	Subject string
}

func (m LectureMeta) Metadata() analysis.Metadata {
	return analysis.Metadata{
		Facilitator: m.Facts.TeacherName,
		School:      m.Facts.School(),
		Grade:       m.Facts.Grade,
		Section:     m.Facts.Section,
		Subject:     m.Subject,
		Date:        m.Facts.Date,
	}
}

type LectureMetaResolver struct {
	Teachers repos.TeacherRepo
	Schools  repos.SchoolRepo
	Classes  repos.ClassRepo
}

func (r LectureMetaResolver) Resolve(dbc dbctx.Context, l *types.Lecture) (LectureMeta, error) {
	meta := LectureMeta{
		Facts: analysis.LectureFacts{
			Grade:   l.Grade,
			Section: l.Section,
			Date:    l.ScheduledDate.Format(dateLayout),
		},
		Subject: l.Subject,
	}
	teacher, err := r.Teachers.GetByID(dbc, l.TeacherID)
	if err != nil {
		return meta, fmt.Errorf("load teacher: %w", err)
	}
	if teacher != nil {
		meta.Facts.TeacherName = teacher.Name
		if meta.Subject == "" {
			meta.Subject = teacher.Subject
		}
		if teacher.SchoolID != nil {
			if meta.Facts.TeacherSchool, err = r.schoolName(dbc, teacher.SchoolID); err != nil {
				return meta, err
			}
		}
	}
	if l.ClassID != nil {
		class, err := r.Classes.GetByID(dbc, *l.ClassID)
		if err != nil {
			return meta, fmt.Errorf("load class: %w", err)
		}
		if class != nil {
			if meta.Facts.Grade == "" {
				meta.Facts.Grade = class.Grade
			}
			if meta.Facts.Section == "" {
				meta.Facts.Section = class.Section
			}
			if meta.Subject == "" {
				meta.Subject = class.Subject
			}
			if class.SchoolID != nil {
				if meta.Facts.ClassSchool, err = r.schoolName(dbc, class.SchoolID); err != nil {
					return meta, err
				}
			}
		}
	}
	return meta, nil
}

func (r LectureMetaResolver) schoolName(dbc dbctx.Context, id *uuid.UUID) (string, error) {
	school, err := r.Schools.GetByID(dbc, *id)
	if err != nil {
		return "", fmt.Errorf("load school: %w", err)
	}
	if school == nil {
		return "", nil
	}
	return school.Name, nil
}
