package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

func TestAuthLoginVerifyAndExpiry(t *testing.T) {
	env := newTestEnv(t)
	dbc := testDBC()
	users := NewUserService(nil, logger.Nop(), env.store.Users(), env.store.Schools())
	u, err := users.Create(dbc, UserInput{Email: strp("coord@school.org"), Password: strp("correct-horse"), Role: strp("coordinator")})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	svc := NewAuthService(logger.Nop(), env.store.Users(), "test-secret", time.Hour)

	_, err = svc.Login(dbc, "coord@school.org", "wrong-password")
	wantAPIError(t, err, http.StatusUnauthorized, "invalid_credentials")
	_, err = svc.Login(dbc, "nobody@school.org", "correct-horse")
	wantAPIError(t, err, http.StatusUnauthorized, "invalid_credentials")
	_, err = svc.Login(dbc, "", "")
	wantAPIError(t, err, http.StatusBadRequest, "missing_credentials")

	sess, err := svc.Login(dbc, " Coord@School.org ", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	id, err := svc.Verify("Bearer " + sess.AccessToken)
	if err != nil || id != u.ID {
		t.Fatalf("Verify: id=%v err=%v", id, err)
	}
	me, err := svc.Me(dbc, sess.AccessToken)
	if err != nil || me.Email != "coord@school.org" {
		t.Fatalf("Me: %+v %v", me, err)
	}

	_, err = svc.Verify(sess.AccessToken + "x")
	wantAPIError(t, err, http.StatusUnauthorized, "invalid_token")
	_, err = svc.Verify("")
	wantAPIError(t, err, http.StatusUnauthorized, "missing_token")

	other := NewAuthService(logger.Nop(), env.store.Users(), "other-secret", time.Hour)
	_, err = other.Verify(sess.AccessToken)
	wantAPIError(t, err, http.StatusUnauthorized, "invalid_token")

	svc.(*authService).now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Verify(sess.AccessToken)
	wantAPIError(t, err, http.StatusUnauthorized, "invalid_token")
}
