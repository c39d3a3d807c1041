package memrepo

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
)

func stamp(id *uuid.UUID, created, updated *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

type schoolRepo struct{ s *Store }

func (r schoolRepo) Create(_ dbctx.Context, school *types.School) (*types.School, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("SchoolRepo.Create"); err != nil {
		return nil, err
	}
	for _, other := range r.s.schools {
		if other.Name == school.Name {
			return nil, errDuplicate
		}
	}
	stamp(&school.ID, &school.CreatedAt, &school.UpdatedAt)
	r.s.schools[school.ID] = clone(school)
	return school, nil
}

func (r schoolRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.School, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.schools[id]), nil
}

func (r schoolRepo) List(_ dbctx.Context) ([]*types.School, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := values(r.s.schools, nil)
	sortBy(out, func(a, b *types.School) bool { return a.Name < b.Name })
	return out, nil
}

func (r schoolRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.schools[id]
	if !ok {
		return nil
	}
	if name, ok := updates["name"].(string); ok {
		for otherID, other := range r.s.schools {
			if otherID != id && other.Name == name {
				return errDuplicate
			}
		}
	}
	return applyUpdates(row, touch(updates))
}

func (r schoolRepo) Delete(_ dbctx.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.schools[id]
	delete(r.s.schools, id)
	return ok, nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ dbctx.Context, user *types.User) (*types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if strings.EqualFold(other.Email, user.Email) {
			return nil, errDuplicate
		}
	}
	stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	r.s.users[user.ID] = clone(user)
	return user, nil
}

func (r userRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.users[id]), nil
}

func (r userRepo) GetByEmail(_ dbctx.Context, email string) (*types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (r userRepo) List(_ dbctx.Context, filter repos.UserFilter) ([]*types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := values(r.s.users, func(u *types.User) bool {
		if filter.SchoolID != nil && (u.SchoolID == nil || *u.SchoolID != *filter.SchoolID) {
			return false
		}
		return filter.Role == "" || u.Role == filter.Role
	})
	sortBy(out, func(a, b *types.User) bool {
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	})
	return out, nil
}

func (r userRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.users[id]
	if !ok {
		return nil
	}
	if email, ok := updates["email"].(string); ok {
		for otherID, other := range r.s.users {
			if otherID != id && strings.EqualFold(other.Email, email) {
				return errDuplicate
			}
		}
	}
	return applyUpdates(row, touch(updates))
}

func (r userRepo) Delete(_ dbctx.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.users[id]
	delete(r.s.users, id)
	return ok, nil
}

type teacherRepo struct{ s *Store }

func (r teacherRepo) Create(_ dbctx.Context, teacher *types.Teacher) (*types.Teacher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stamp(&teacher.ID, &teacher.CreatedAt, &teacher.UpdatedAt)
	r.s.teachers[teacher.ID] = clone(teacher)
	return teacher, nil
}

func (r teacherRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Teacher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.teachers[id]), nil
}

func (r teacherRepo) List(_ dbctx.Context, schoolID *uuid.UUID) ([]*types.Teacher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := values(r.s.teachers, func(t *types.Teacher) bool {
		return schoolID == nil || (t.SchoolID != nil && *t.SchoolID == *schoolID)
	})
	sortBy(out, func(a, b *types.Teacher) bool { return a.Name < b.Name })
	return out, nil
}

func (r teacherRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.teachers[id]
	if !ok {
		return nil
	}
	return applyUpdates(row, touch(updates))
}

func (r teacherRepo) Delete(_ dbctx.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.teachers[id]
	delete(r.s.teachers, id)
	return ok, nil
}

type classRepo struct{ s *Store }

func (r classRepo) Create(_ dbctx.Context, class *types.Class) (*types.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stamp(&class.ID, &class.CreatedAt, &class.UpdatedAt)
	r.s.classes[class.ID] = clone(class)
	return class, nil
}

func (r classRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.classes[id]), nil
}

func (r classRepo) List(_ dbctx.Context, filter repos.ClassFilter) ([]*types.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := values(r.s.classes, func(c *types.Class) bool {
		if filter.SchoolID != nil && (c.SchoolID == nil || *c.SchoolID != *filter.SchoolID) {
			return false
		}
		if filter.TeacherID != nil && (c.TeacherID == nil || *c.TeacherID != *filter.TeacherID) {
			return false
		}
		return filter.Grade == "" || c.Grade == filter.Grade
	})
	sortBy(out, func(a, b *types.Class) bool {
		if a.Grade != b.Grade {
			return a.Grade < b.Grade
		}
		return a.Section < b.Section
	})
	return out, nil
}

func (r classRepo) FindForLecture(_ dbctx.Context, teacherID uuid.UUID, grade, section string) (*types.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matches := values(r.s.classes, func(c *types.Class) bool {
		if c.TeacherID == nil || *c.TeacherID != teacherID || c.Grade != grade {
			return false
		}
		return section == "" || strings.EqualFold(c.Section, section)
	})
	if len(matches) == 0 {
		return nil, nil
	}
	sortBy(matches, func(a, b *types.Class) bool { return a.CreatedAt.Before(b.CreatedAt) })
	return matches[0], nil
}

func (r classRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.classes[id]
	if !ok {
		return nil
	}
	return applyUpdates(row, touch(updates))
}

func (r classRepo) Delete(_ dbctx.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.classes[id]
	delete(r.s.classes, id)
	return ok, nil
}
