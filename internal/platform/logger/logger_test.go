package logger

import "testing"

func TestSanitizeKVsRedactsAndHashes(t *testing.T) {
	t.Setenv("LOG_REDACTION_ENABLED", "true")
	out := sanitizeKVs([]interface{}{
		"api_key", "abc",
		"teacher_email", "jane@example.com",
		"user_id", "42",
		"lecture_id", "L1",
		"dangling",
	})
	if len(out) != 9 {
		t.Fatalf("unexpected length: %d", len(out))
	}
	if out[1] != "[REDACTED]" || out[3] != "[REDACTED]" {
		t.Fatalf("expected redaction, got %v", out)
	}
	if s, _ := out[5].(string); len(s) != len("hash:")+12 {
		t.Fatalf("expected hashed user_id, got %v", out[5])
	}
	if out[7] != "L1" {
		t.Fatalf("non-sensitive value changed: %v", out[7])
	}
	if out[8] != "dangling" {
		t.Fatalf("dangling key dropped: %v", out)
	}
}

func TestSanitizeValueNested(t *testing.T) {
	got := sanitizeValue("", map[string]interface{}{"password": "pw", "grade": "5"})
	m, ok := got.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map, got %T", got)
	}
	if m["password"] != "[REDACTED]" || m["grade"] != "5" {
		t.Fatalf("unexpected nested sanitize: %v", m)
	}
}
