package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	"github.com/yungbote/lecturelens-backend/internal/data/repos/dberr"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/domain/org"
	"github.com/yungbote/lecturelens-backend/internal/platform/apierr"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

const minPasswordLen = 8

type UserInput struct {
	Email     *string    `json:"email"`
	Password  *string    `json:"password"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	Role      *string    `json:"role"`
	SchoolID  *uuid.UUID `json:"school_id"`
}

type UserService interface {
	Create(dbc dbctx.Context, in UserInput) (*types.User, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	List(dbc dbctx.Context, filter repos.UserFilter) ([]*types.User, error)
	Update(dbc dbctx.Context, id uuid.UUID, in UserInput) (*types.User, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type userService struct {
	db      *gorm.DB
	log     *logger.Logger
	users   repos.UserRepo
	schools repos.SchoolRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, users repos.UserRepo, schools repos.SchoolRepo) UserService {
	return &userService{
		db:      db,
		log:     baseLog.With("service", "UserService"),
		users:   users,
		schools: schools,
	}
}

func (s *userService) Create(dbc dbctx.Context, in UserInput) (*types.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apierr.BadRequest("invalid_email", "a valid email is required")
	}
	if in.Password == nil {
		return nil, apierr.BadRequest("invalid_password", "password is required")
	}
	hash, err := hashPassword(*in.Password)
	if err != nil {
		return nil, err
	}
	role := org.RoleViewer
	if r, ok := trimmed(in.Role); ok && r != "" {
		role = strings.ToLower(r)
	}
	if !org.ValidRole(role) {
		return nil, apierr.BadRequest("invalid_role", "role must be one of admin, coordinator, viewer")
	}
	if err := s.checkSchool(dbc, in.SchoolID); err != nil {
		return nil, err
	}
	user := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: hash,
		Role:     role,
		SchoolID: in.SchoolID,
	}
	user.FirstName, _ = trimmed(in.FirstName)
	user.LastName, _ = trimmed(in.LastName)

	created, err := s.users.Create(dbc, user)
	if dberr.IsUniqueViolation(err) {
		return nil, apierr.Conflict("email_taken", "email is already registered")
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("User created", "user_id", created.ID, "role", created.Role)
	return created, nil
}

func (s *userService) Get(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	user, err := s.users.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user_not_found", "user %s not found", id)
	}
	return user, nil
}

func (s *userService) List(dbc dbctx.Context, filter repos.UserFilter) ([]*types.User, error) {
	if filter.Role != "" && !org.ValidRole(filter.Role) {
		return nil, apierr.BadRequest("invalid_role", "unknown role %q", filter.Role)
	}
	out, err := s.users.List(dbc, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *userService) Update(dbc dbctx.Context, id uuid.UUID, in UserInput) (*types.User, error) {
	if _, err := s.Get(dbc, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Email != nil {
		email := normalizeEmail(in.Email)
		if email == "" || !strings.Contains(email, "@") {
			return nil, apierr.BadRequest("invalid_email", "a valid email is required")
		}
		updates["email"] = email
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
	}
	if role, ok := trimmed(in.Role); ok {
		role = strings.ToLower(role)
		if !org.ValidRole(role) {
			return nil, apierr.BadRequest("invalid_role", "role must be one of admin, coordinator, viewer")
		}
		updates["role"] = role
	}
	setTrimmed(updates, "first_name", in.FirstName)
	setTrimmed(updates, "last_name", in.LastName)
	if in.SchoolID != nil {
		if err := s.checkSchool(dbc, in.SchoolID); err != nil {
			return nil, err
		}
		updates["school_id"] = *in.SchoolID
	}
	if len(updates) > 0 {
		err := s.users.UpdateFields(dbc, id, updates)
		if dberr.IsUniqueViolation(err) {
			return nil, apierr.Conflict("email_taken", "email is already registered")
		}
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}
	return s.Get(dbc, id)
}

func (s *userService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	ok, err := s.users.Delete(dbc, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !ok {
		return apierr.NotFound("user_not_found", "user %s not found", id)
	}
	return nil
}

func (s *userService) checkSchool(dbc dbctx.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	school, err := s.schools.GetByID(dbc, *id)
	if err != nil {
		return fmt.Errorf("load school: %w", err)
	}
	if school == nil {
		return apierr.BadRequest("unknown_school", "school %s does not exist", *id)
	}
	return nil
}

func normalizeEmail(p *string) string {
	v, _ := trimmed(p)
	return strings.ToLower(v)
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", apierr.BadRequest("invalid_password", "password must be at least %d characters", minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
