package certdoc

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

func TestRenderProducesCanvasSizedPNG(t *testing.T) {
	r, err := NewRenderer(logger.Nop(), Options{})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	out, err := r.Render(context.Background(), CertificateData{
		LearnerName:   "Awa Diop",
		CourseTitle:   "Introduction to Accounting",
		Serial:        "0123456789ABCDEF",
		ScorePercent:  92,
		IssuedAt:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		SignatureName: "Director",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Fatalf("bounds: %v", b)
	}
}

func TestRenderRequiresSerial(t *testing.T) {
	r, err := NewRenderer(logger.Nop(), Options{})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	if _, err := r.Render(context.Background(), CertificateData{LearnerName: "x"}); err == nil {
		t.Fatalf("expected error without serial")
	}
}

func TestRenderHonorsCanceledContext(t *testing.T) {
	r, _ := NewRenderer(logger.Nop(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, CertificateData{Serial: "0123456789ABCDEF"}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestNewRendererWithBackground(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bg.png")
	src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			src.Set(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := NewRenderer(logger.Nop(), Options{BackgroundPath: path})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	if _, err := r.Render(context.Background(), CertificateData{Serial: "0123456789ABCDEF"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestNewRendererMissingFont(t *testing.T) {
	if _, err := NewRenderer(logger.Nop(), Options{FontPath: filepath.Join(t.TempDir(), "missing.ttf")}); err == nil {
		t.Fatalf("expected error for missing font")
	}
}
