package objectstore

import (
	"errors"
	"testing"
)

func TestResolveConfigFromEnvDefaultGCS(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "")

	cfg, err := ResolveConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveConfigFromEnv: %v", err)
	}
	if cfg.Mode != ModeGCS {
		t.Fatalf("mode: want=%q got=%q", ModeGCS, cfg.Mode)
	}
	if cfg.CompatibilityFallback {
		t.Fatalf("compatibility fallback: want=false got=true")
	}
}

func TestResolveConfigFromEnvExplicitGCSIgnoresEmulatorHost(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "GCS")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")

	cfg, err := ResolveConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveConfigFromEnv: %v", err)
	}
	if cfg.Mode != ModeGCS || cfg.CompatibilityFallback {
		t.Fatalf("cfg: %+v", cfg)
	}
}

func TestResolveConfigFromEnvCompatibilityFallback(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")

	cfg, err := ResolveConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveConfigFromEnv: %v", err)
	}
	if cfg.Mode != ModeGCSEmulator {
		t.Fatalf("mode: want=%q got=%q", ModeGCSEmulator, cfg.Mode)
	}
	if got := cfg.ModeSource(); got != "compatibility_fallback" {
		t.Fatalf("ModeSource: got=%q", got)
	}
}

func TestResolveConfigFromEnvMinIO(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "minio")
	t.Setenv("STORAGE_EMULATOR_HOST", "")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")

	cfg, err := ResolveConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveConfigFromEnv: %v", err)
	}
	if cfg.Mode != ModeMinIO || cfg.MinIOEndpoint != "localhost:9000" {
		t.Fatalf("cfg: %+v", cfg)
	}
}

func TestResolveConfigFromEnvErrors(t *testing.T) {
	cases := []struct {
		name     string
		mode     string
		emulator string
		minio    string
		code     ConfigErrorCode
	}{
		{name: "invalid mode", mode: "local", code: ConfigErrorInvalidMode},
		{name: "missing emulator host", mode: "gcs_emulator", code: ConfigErrorMissingEmulatorHost},
		{name: "relative emulator host", mode: "gcs_emulator", emulator: "fake-gcs:4443", code: ConfigErrorInvalidEmulatorHost},
		{name: "missing minio endpoint", mode: "minio", code: ConfigErrorMissingMinIOHost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("OBJECT_STORAGE_MODE", tc.mode)
			t.Setenv("STORAGE_EMULATOR_HOST", tc.emulator)
			t.Setenv("MINIO_ENDPOINT", tc.minio)

			_, err := ResolveConfigFromEnv()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Code != tc.code {
				t.Fatalf("code: want=%q got=%q", tc.code, cfgErr.Code)
			}
			if cfgErr.Error() == "" {
				t.Fatalf("empty error message")
			}
		})
	}
}

func TestBucketsName(t *testing.T) {
	b := Buckets{Media: "media-bucket", Certificate: " "}
	name, err := b.Name(CategoryMedia)
	if err != nil || name != "media-bucket" {
		t.Fatalf("media: name=%q err=%v", name, err)
	}
	if _, err := b.Name(CategoryCertificate); err == nil {
		t.Fatalf("blank certificate bucket: expected error")
	}
	if _, err := b.Name(Category("avatar")); err == nil {
		t.Fatalf("unknown category: expected error")
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"media/u/video/01.MP4":      "video/mp4",
		"certificates/u/ABC.png":    "image/png",
		"media/u/doc/notes.pdf?x=1": "application/pdf",
		"media/u/doc/blob":          "",
	}
	for key, want := range cases {
		if got := ContentTypeForKey(key); got != want {
			t.Fatalf("ContentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}
