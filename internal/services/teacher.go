package services

import (
	"fmt"
	"path"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/apierr"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type TeacherInput struct {
	Name     *string    `json:"name"`
	Email    *string    `json:"email"`
	Phone    *string    `json:"phone"`
	Subject  *string    `json:"subject"`
	SchoolID *uuid.UUID `json:"school_id"`
	UserID   *uuid.UUID `json:"user_id"`
}

type TeacherService interface {
	Create(dbc dbctx.Context, in TeacherInput) (*types.Teacher, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Teacher, error)
	List(dbc dbctx.Context, schoolID *uuid.UUID) ([]*types.Teacher, error)
	Update(dbc dbctx.Context, id uuid.UUID, in TeacherInput) (*types.Teacher, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	// AvatarFile returns the absolute path of the teacher's avatar PNG, rendering it if missing.
	AvatarFile(dbc dbctx.Context, id uuid.UUID) (string, error)
}

type teacherService struct {
	db       *gorm.DB
	log      *logger.Logger
	teachers repos.TeacherRepo
	schools  repos.SchoolRepo
	users    repos.UserRepo
	files    FileStore
	avatars  AvatarRenderer
}

func NewTeacherService(
	db *gorm.DB,
	baseLog *logger.Logger,
	teachers repos.TeacherRepo,
	schools repos.SchoolRepo,
	users repos.UserRepo,
	files FileStore,
	avatars AvatarRenderer,
) TeacherService {
	return &teacherService{
		db:       db,
		log:      baseLog.With("service", "TeacherService"),
		teachers: teachers,
		schools:  schools,
		users:    users,
		files:    files,
		avatars:  avatars,
	}
}

func (s *teacherService) Create(dbc dbctx.Context, in TeacherInput) (*types.Teacher, error) {
	name, _ := trimmed(in.Name)
	if name == "" {
		return nil, apierr.BadRequest("missing_name", "name is required")
	}
	if err := s.checkRefs(dbc, in.SchoolID, in.UserID); err != nil {
		return nil, err
	}
	t := &types.Teacher{ID: uuid.New(), Name: name, SchoolID: in.SchoolID, UserID: in.UserID}
	t.Email = normalizeEmail(in.Email)
	t.Phone, _ = trimmed(in.Phone)
	t.Subject, _ = trimmed(in.Subject)
	created, err := s.teachers.Create(dbc, t)
	if err != nil {
		return nil, fmt.Errorf("create teacher: %w", err)
	}
	// An avatar failure leaves the teacher without one; AvatarFile retries later.
	if err := s.renderAvatar(dbc, created); err != nil {
		s.log.Warn("Avatar render failed", "teacher_id", created.ID, "error", err)
	}
	s.log.Info("Teacher created", "teacher_id", created.ID)
	return created, nil
}

func (s *teacherService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Teacher, error) {
	t, err := s.teachers.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load teacher: %w", err)
	}
	if t == nil {
		return nil, apierr.NotFound("teacher_not_found", "teacher %s not found", id)
	}
	return t, nil
}

func (s *teacherService) List(dbc dbctx.Context, schoolID *uuid.UUID) ([]*types.Teacher, error) {
	out, err := s.teachers.List(dbc, schoolID)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return out, nil
}

func (s *teacherService) Update(dbc dbctx.Context, id uuid.UUID, in TeacherInput) (*types.Teacher, error) {
	current, err := s.Get(dbc, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRefs(dbc, in.SchoolID, in.UserID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	renamed := false
	if name, ok := trimmed(in.Name); ok {
		if name == "" {
			return nil, apierr.BadRequest("missing_name", "name cannot be empty")
		}
		renamed = name != current.Name
		updates["name"] = name
	}
	if in.Email != nil {
		updates["email"] = normalizeEmail(in.Email)
	}
	setTrimmed(updates, "phone", in.Phone)
	setTrimmed(updates, "subject", in.Subject)
	if in.SchoolID != nil {
		updates["school_id"] = *in.SchoolID
	}
	if in.UserID != nil {
		updates["user_id"] = *in.UserID
	}
	if len(updates) > 0 {
		if err := s.teachers.UpdateFields(dbc, id, updates); err != nil {
			return nil, fmt.Errorf("update teacher: %w", err)
		}
	}
	updated, err := s.Get(dbc, id)
	if err != nil {
		return nil, err
	}
	if renamed {
		if err := s.renderAvatar(dbc, updated); err != nil {
			s.log.Warn("Avatar render failed", "teacher_id", id, "error", err)
		}
	}
	return updated, nil
}

func (s *teacherService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	ok, err := s.teachers.Delete(dbc, id)
	if err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	if !ok {
		return apierr.NotFound("teacher_not_found", "teacher %s not found", id)
	}
	if err := s.files.Remove(avatarRel(id)); err != nil {
		s.log.Warn("Avatar cleanup failed", "teacher_id", id, "error", err)
	}
	return nil
}

func (s *teacherService) AvatarFile(dbc dbctx.Context, id uuid.UUID) (string, error) {
	t, err := s.Get(dbc, id)
	if err != nil {
		return "", err
	}
	if t.AvatarPath == "" || !s.files.Exists(t.AvatarPath) {
		if err := s.renderAvatar(dbc, t); err != nil {
			return "", fmt.Errorf("render avatar: %w", err)
		}
	}
	return s.files.Abs(t.AvatarPath), nil
}

// renderAvatar writes avatars/<id>.png and records its path and colour on t.
func (s *teacherService) renderAvatar(dbc dbctx.Context, t *types.Teacher) error {
	png, hex, err := s.avatars.Render(t)
	if err != nil {
		return err
	}
	rel := avatarRel(t.ID)
	if err := s.files.Put(rel, png); err != nil {
		return fmt.Errorf("write avatar: %w", err)
	}
	if err := s.teachers.UpdateFields(dbc, t.ID, map[string]interface{}{
		"avatar_path": rel,
		"avatar_hex":  hex,
	}); err != nil {
		return fmt.Errorf("record avatar: %w", err)
	}
	t.AvatarPath = rel
	t.AvatarHex = hex
	return nil
}

func (s *teacherService) checkRefs(dbc dbctx.Context, schoolID, userID *uuid.UUID) error {
	if schoolID != nil {
		school, err := s.schools.GetByID(dbc, *schoolID)
		if err != nil {
			return fmt.Errorf("load school: %w", err)
		}
		if school == nil {
			return apierr.BadRequest("unknown_school", "school %s does not exist", *schoolID)
		}
	}
	if userID != nil {
		user, err := s.users.GetByID(dbc, *userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if user == nil {
			return apierr.BadRequest("unknown_user", "user %s does not exist", *userID)
		}
	}
	return nil
}

func avatarRel(id uuid.UUID) string {
	return path.Join("avatars", id.String()+".png")
}
