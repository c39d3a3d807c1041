package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedSchool(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.School {
	tb.Helper()
	s := &types.School{
		ID:   uuid.New(),
		Name: name,
		City: "Pune",
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed school: %v", err)
	}
	return s
}

func SeedTeacher(tb testing.TB, ctx context.Context, tx *gorm.DB, schoolID uuid.UUID, name string) *types.Teacher {
	tb.Helper()
	t := &types.Teacher{
		ID:       uuid.New(),
		SchoolID: &schoolID,
		Name:     name,
		Subject:  "Science",
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed teacher: %v", err)
	}
	return t
}

func SeedClass(tb testing.TB, ctx context.Context, tx *gorm.DB, schoolID uuid.UUID, teacherID *uuid.UUID, grade, section string) *types.Class {
	tb.Helper()
	c := &types.Class{
		ID:        uuid.New(),
		SchoolID:  &schoolID,
		TeacherID: teacherID,
		Grade:     grade,
		Section:   section,
		Subject:   "Science",
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed class: %v", err)
	}
	return c
}

func SeedLecture(tb testing.TB, ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, date time.Time) *types.Lecture {
	tb.Helper()
	l := &types.Lecture{
		ID:            uuid.New(),
		TeacherID:     teacherID,
		ScheduledDate: date,
		Subject:       "Science",
		Grade:         "7",
		Section:       "A",
		Status:        types.LectureStatusScheduled,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lecture: %v", err)
	}
	return l
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }

func PtrInt(v int) *int { return &v }
