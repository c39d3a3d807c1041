package dberr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"raw pg", fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505"}), true},
		{"other pg", &pgconn.PgError{Code: "23503"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("%s: got=%v want=%v", tc.name, got, tc.want)
		}
	}
	if !IsNotFound(fmt.Errorf("x: %w", gorm.ErrRecordNotFound)) {
		t.Fatalf("expected wrapped ErrRecordNotFound to match")
	}
}
