// Package memrepo holds in-memory repository implementations for service, handler and pipeline tests.
package memrepo

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
)

type Store struct {
	mu       sync.Mutex
	schools  map[uuid.UUID]*types.School
	users    map[uuid.UUID]*types.User
	teachers map[uuid.UUID]*types.Teacher
	classes  map[uuid.UUID]*types.Class
	lectures map[uuid.UUID]*types.Lecture
	reports  map[uuid.UUID]*types.Report
	rubrics  map[uuid.UUID]*types.Rubric
	jobs     map[uuid.UUID]*types.JobRun
	failures map[string]error
}

func New() *Store {
	return &Store{
		schools:  map[uuid.UUID]*types.School{},
		users:    map[uuid.UUID]*types.User{},
		teachers: map[uuid.UUID]*types.Teacher{},
		classes:  map[uuid.UUID]*types.Class{},
		lectures: map[uuid.UUID]*types.Lecture{},
		reports:  map[uuid.UUID]*types.Report{},
		rubrics:  map[uuid.UUID]*types.Rubric{},
		jobs:     map[uuid.UUID]*types.JobRun{},
		failures: map[string]error{},
	}
}

// FailOn makes op (e.g. "ReportRepo.Upsert") return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) fail(op string) error { return s.failures[op] }

func (s *Store) Schools() repos.SchoolRepo   { return schoolRepo{s} }
func (s *Store) Users() repos.UserRepo       { return userRepo{s} }
func (s *Store) Teachers() repos.TeacherRepo { return teacherRepo{s} }
func (s *Store) Classes() repos.ClassRepo    { return classRepo{s} }
func (s *Store) Lectures() repos.LectureRepo { return lectureRepo{s} }
func (s *Store) Reports() repos.ReportRepo   { return reportRepo{s} }
func (s *Store) Rubrics() repos.RubricRepo   { return rubricRepo{s} }
func (s *Store) Jobs() repos.JobRunRepo      { return jobRunRepo{s} }

// TxRunner runs fn without a transaction.
func TxRunner() dbctx.TxRunner { return directTx{} }

type directTx struct{}

func (directTx) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return fn(dbctx.Context{Ctx: ctx})
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func values[T any](m map[uuid.UUID]*T, keep func(*T) bool) []*T {
	out := make([]*T, 0, len(m))
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, clone(v))
		}
	}
	return out
}

func sortBy[T any](items []*T, less func(a, b *T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// applyUpdates sets struct fields by their gorm column names, the way Updates(map) does.
func applyUpdates(target any, updates map[string]interface{}) error {
	rv := reflect.ValueOf(target).Elem()
	rt := rv.Type()
	cols := map[string]int{}
	for i := 0; i < rt.NumField(); i++ {
		cols[columnName(rt.Field(i))] = i
	}
	for col, val := range updates {
		idx, ok := cols[col]
		if !ok {
			return fmt.Errorf("memrepo: unknown column %q on %s", col, rt.Name())
		}
		if err := setField(rv.Field(idx), val); err != nil {
			return fmt.Errorf("memrepo: column %q: %w", col, err)
		}
	}
	return nil
}

func columnName(f reflect.StructField) string {
	for _, part := range strings.Split(f.Tag.Get("gorm"), ";") {
		if strings.HasPrefix(part, "column:") {
			return strings.TrimPrefix(part, "column:")
		}
	}
	var b strings.Builder
	for i, r := range f.Name {
		if i > 0 && r >= 'A' && r <= 'Z' && !(f.Name[i-1] >= 'A' && f.Name[i-1] <= 'Z') {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

func setField(field reflect.Value, val interface{}) error {
	if val == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	v := reflect.ValueOf(val)
	switch {
	case v.Type().AssignableTo(field.Type()):
		field.Set(v)
	case isNumeric(v.Kind()) && isNumeric(field.Kind()):
		field.Set(v.Convert(field.Type()))
	case field.Kind() == reflect.Ptr && v.Type().AssignableTo(field.Type().Elem()):
		p := reflect.New(field.Type().Elem())
		p.Elem().Set(v)
		field.Set(p)
	case v.Kind() == reflect.Ptr && v.Type().Elem().AssignableTo(field.Type()):
		if v.IsNil() {
			field.Set(reflect.Zero(field.Type()))
		} else {
			field.Set(v.Elem())
		}
	default:
		return fmt.Errorf("cannot assign %s to %s", v.Type(), field.Type())
	}
	return nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func touch(updates map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		out[k] = v
	}
	if _, ok := out["updated_at"]; !ok {
		out["updated_at"] = time.Now()
	}
	return out
}

var errDuplicate = gorm.ErrDuplicatedKey
