package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsSensitiveKeys(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"password", "hunter2",
		"learner_email", "a@b.c",
		"course_id", "c-1",
	})
	if out[1] != "[REDACTED]" {
		t.Fatalf("password: want redacted got=%v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("email: want redacted got=%v", out[3])
	}
	if out[5] != "c-1" {
		t.Fatalf("course_id: want passthrough got=%v", out[5])
	}
}

func TestSanitizeKVsHashesUserIDs(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", "0b7c", "owner_id", "0b7c"})
	got, ok := out[1].(string)
	if !ok || !strings.HasPrefix(got, "hash:") || len(got) != len("hash:")+12 {
		t.Fatalf("user_id hash: got=%v", out[1])
	}
	if out[1] != out[3] {
		t.Fatalf("hashes for same value differ: %v vs %v", out[1], out[3])
	}
}

func TestSanitizeValueStripsPresignedQuery(t *testing.T) {
	in := "https://storage.googleapis.com/b/k.mp4?X-Goog-Algorithm=GOOG4&X-Goog-Signature=abc"
	got := sanitizeValue("url", in)
	if got != "https://storage.googleapis.com/b/k.mp4?[REDACTED]" {
		t.Fatalf("presigned url: got=%v", got)
	}
	plain := "https://example.com/a?b=c"
	if sanitizeValue("url", plain) != plain {
		t.Fatalf("plain url should pass through")
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"k", "v", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("odd kv: got=%v", out)
	}
}
