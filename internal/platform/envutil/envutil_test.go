package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", 3 * time.Second},
		{"2s", 2 * time.Second},
		{"1500ms", 1500 * time.Millisecond},
		{"7", 7 * time.Second},
		{"garbage", 3 * time.Second},
	}
	for _, tc := range cases {
		t.Setenv("ENVUTIL_TEST_DURATION", tc.raw)
		if got := Duration("ENVUTIL_TEST_DURATION", 3*time.Second); got != tc.want {
			t.Fatalf("Duration(%q): got=%v want=%v", tc.raw, got, tc.want)
		}
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_BOOL", "on")
	if !Bool("ENVUTIL_TEST_BOOL", false) {
		t.Fatalf("expected on to parse as true")
	}
	t.Setenv("ENVUTIL_TEST_BOOL", "maybe")
	if Bool("ENVUTIL_TEST_BOOL", false) {
		t.Fatalf("expected unknown value to fall back to default")
	}
	t.Setenv("ENVUTIL_TEST_INT", "x")
	if got := Int("ENVUTIL_TEST_INT", 4); got != 4 {
		t.Fatalf("Int fallback: got=%d", got)
	}
	t.Setenv("ENVUTIL_TEST_INT64", "524288000")
	if got := Int64("ENVUTIL_TEST_INT64", 1); got != 524288000 {
		t.Fatalf("Int64: got=%d", got)
	}
}
