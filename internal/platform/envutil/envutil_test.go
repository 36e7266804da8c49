package envutil

import (
	"testing"
	"time"
)

func TestGetEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("COURSEMARKET_TEST_STR", "")
	if got := String("COURSEMARKET_TEST_STR", "fallback"); got != "fallback" {
		t.Fatalf("String: want=fallback got=%q", got)
	}
	t.Setenv("COURSEMARKET_TEST_STR", "  value ")
	if got := String("COURSEMARKET_TEST_STR", "fallback"); got != "value" {
		t.Fatalf("String: want=value got=%q", got)
	}
}

func TestGetEnvAsIntInvalid(t *testing.T) {
	t.Setenv("COURSEMARKET_TEST_INT", "abc")
	if got := GetEnvAsInt("COURSEMARKET_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("GetEnvAsInt invalid: want=7 got=%d", got)
	}
	t.Setenv("COURSEMARKET_TEST_INT", " 42 ")
	if got := GetEnvAsInt("COURSEMARKET_TEST_INT", 7, nil); got != 42 {
		t.Fatalf("GetEnvAsInt: want=42 got=%d", got)
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("COURSEMARKET_TEST_DUR", "90")
	if got := GetEnvAsDuration("COURSEMARKET_TEST_DUR", time.Minute, nil); got != 90*time.Second {
		t.Fatalf("seconds: got=%s", got)
	}
	t.Setenv("COURSEMARKET_TEST_DUR", "15m")
	if got := GetEnvAsDuration("COURSEMARKET_TEST_DUR", time.Minute, nil); got != 15*time.Minute {
		t.Fatalf("duration: got=%s", got)
	}
	t.Setenv("COURSEMARKET_TEST_DUR", "soon")
	if got := GetEnvAsDuration("COURSEMARKET_TEST_DUR", time.Minute, nil); got != time.Minute {
		t.Fatalf("invalid: got=%s", got)
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{"true": true, "1": true, "off": false, "no": false, "maybe": true}
	for raw, want := range cases {
		t.Setenv("COURSEMARKET_TEST_BOOL", raw)
		if got := Bool("COURSEMARKET_TEST_BOOL", true); got != want {
			t.Fatalf("Bool(%q): want=%v got=%v", raw, want, got)
		}
	}
}

func TestPrintableHidesSecrets(t *testing.T) {
	if got := printable("JWT_SECRET_KEY", "abc"); got != "[set]" {
		t.Fatalf("printable secret: got=%q", got)
	}
	if got := printable("POSTGRES_HOST", "db"); got != "db" {
		t.Fatalf("printable host: got=%q", got)
	}
}
