package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestResolve(t *testing.T) {
	wrapped := fmt.Errorf("load lecture: %w", NotFound("lecture_not_found", "lecture %s not found", "abc"))
	status, code := Resolve(wrapped, "internal")
	if status != http.StatusNotFound || code != "lecture_not_found" {
		t.Fatalf("wrapped api error: got=%d/%s", status, code)
	}

	status, code = Resolve(errors.New("boom"), "persist_failed")
	if status != http.StatusInternalServerError || code != "persist_failed" {
		t.Fatalf("plain error: got=%d/%s", status, code)
	}

	status, code = Resolve(&Error{Err: errors.New("x")}, "fallback")
	if status != http.StatusInternalServerError || code != "fallback" {
		t.Fatalf("empty api error: got=%d/%s", status, code)
	}
}
