package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/apierr"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type JWTClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Session struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        *types.User `json:"user"`
}

type AuthService interface {
	Login(dbc dbctx.Context, email, password string) (*Session, error)
	// Verify parses a bearer token and returns the user id it was issued for.
	Verify(token string) (uuid.UUID, error)
	Me(dbc dbctx.Context, token string) (*types.User, error)
}

type authService struct {
	log       *logger.Logger
	users     repos.UserRepo
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewAuthService(baseLog *logger.Logger, users repos.UserRepo, secret string, accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &authService{
		log:       baseLog.With("service", "AuthService"),
		users:     users,
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

var errInvalidCredentials = apierr.New(http.StatusUnauthorized, "invalid_credentials", errors.New("invalid email or password"))

func (s *authService) Login(dbc dbctx.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apierr.BadRequest("missing_credentials", "email and password are required")
	}
	user, err := s.users.GetByEmail(dbc, email)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.log.Warn("Login rejected", "user_id", user.ID)
		return nil, errInvalidCredentials
	}
	now := s.now()
	expires := now.Add(s.accessTTL)
	claims := JWTClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{AccessToken: signed, ExpiresAt: expires, User: user}, nil
}

func (s *authService) Verify(token string) (uuid.UUID, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, "missing_token", errors.New("missing bearer token"))
	}
	parsed, err := jwt.ParseWithClaims(token, &JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, "invalid_token", fmt.Errorf("parse token: %w", err))
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, "invalid_token", errors.New("invalid or expired token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, "invalid_token", fmt.Errorf("invalid subject: %w", err))
	}
	return userID, nil
}

func (s *authService) Me(dbc dbctx.Context, token string) (*types.User, error) {
	userID, err := s.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, apierr.New(http.StatusUnauthorized, "invalid_token", errors.New("token user no longer exists"))
	}
	return user, nil
}
