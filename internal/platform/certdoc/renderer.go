// Package certdoc draws completion certificates as PNG documents.
package certdoc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

const (
	Width  = 1600
	Height = 1131
)

type CertificateData struct {
	LearnerName    string
	CourseTitle    string
	Serial         string
	ScorePercent   int
	IssuedAt       time.Time
	SignatureName  string
	SignatureTitle string
}

type Renderer interface {
	Render(ctx context.Context, data CertificateData) ([]byte, error)
}

type Options struct {
	// FontPath points at a TTF file; the Go fonts are used when empty.
	FontPath string
	// BackgroundPath is an optional image stretched over the canvas.
	BackgroundPath string
}

type pngRenderer struct {
	log        *logger.Logger
	titleFont  *truetype.Font
	bodyFont   *truetype.Font
	background image.Image
}

func NewRenderer(log *logger.Logger, opts Options) (Renderer, error) {
	rlog := log.With("service", "CertificateRenderer")

	bodyFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse default font: %w", err)
	}
	titleFont, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse default bold font: %w", err)
	}
	if path := strings.TrimSpace(opts.FontPath); path != "" {
		rlog.Info("Loading certificate font", "font", path)
		custom, err := loadFont(path)
		if err != nil {
			return nil, fmt.Errorf("could not load certificate font: %w", err)
		}
		bodyFont, titleFont = custom, custom
	}

	r := &pngRenderer{log: rlog, titleFont: titleFont, bodyFont: bodyFont}
	if path := strings.TrimSpace(opts.BackgroundPath); path != "" {
		bg, err := loadBackground(path)
		if err != nil {
			return nil, fmt.Errorf("could not load certificate background: %w", err)
		}
		r.background = bg
	}
	return r, nil
}

func (r *pngRenderer) Render(ctx context.Context, data CertificateData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(data.Serial) == "" {
		return nil, fmt.Errorf("certificate serial required")
	}

	dc := gg.NewContext(Width, Height)
	if r.background != nil {
		dc.DrawImage(r.background, 0, 0)
	} else {
		dc.SetColor(color.NRGBA{R: 0xFB, G: 0xF8, B: 0xF1, A: 0xFF})
		dc.Clear()
	}

	accent := color.NRGBA{R: 0x1F, G: 0x3A, B: 0x5F, A: 0xFF}
	dc.SetColor(accent)
	dc.SetLineWidth(12)
	dc.DrawRectangle(40, 40, Width-80, Height-80)
	dc.Stroke()
	dc.SetLineWidth(2)
	dc.DrawRectangle(64, 64, Width-128, Height-128)
	dc.Stroke()

	cx := float64(Width) / 2

	dc.SetFontFace(r.face(r.titleFont, 72))
	dc.DrawStringAnchored("CERTIFICATE OF COMPLETION", cx, 230, 0.5, 0.5)

	dc.SetColor(color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xFF})
	dc.SetFontFace(r.face(r.bodyFont, 32))
	dc.DrawStringAnchored("This certifies that", cx, 360, 0.5, 0.5)

	dc.SetColor(accent)
	dc.SetFontFace(r.face(r.titleFont, 64))
	dc.DrawStringAnchored(fallback(data.LearnerName, "Learner"), cx, 460, 0.5, 0.5)

	dc.SetColor(color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xFF})
	dc.SetFontFace(r.face(r.bodyFont, 32))
	dc.DrawStringAnchored("has successfully completed the course", cx, 560, 0.5, 0.5)

	dc.SetColor(accent)
	dc.SetFontFace(r.face(r.titleFont, 44))
	dc.DrawStringWrapped(fallback(data.CourseTitle, "Course"), cx, 640, 0.5, 0, Width-400, 1.3, gg.AlignCenter)

	issued := data.IssuedAt
	if issued.IsZero() {
		issued = time.Now().UTC()
	}
	dc.SetColor(color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xFF})
	dc.SetFontFace(r.face(r.bodyFont, 26))
	dc.DrawStringAnchored(
		fmt.Sprintf("Score %d%%  |  Issued %s", data.ScorePercent, issued.Format("2 January 2006")),
		cx, 820, 0.5, 0.5,
	)

	if name := strings.TrimSpace(data.SignatureName); name != "" {
		dc.SetLineWidth(2)
		dc.DrawLine(Width-560, 940, Width-200, 940)
		dc.Stroke()
		dc.DrawStringAnchored(name, Width-380, 975, 0.5, 0.5)
		if title := strings.TrimSpace(data.SignatureTitle); title != "" {
			dc.SetFontFace(r.face(r.bodyFont, 20))
			dc.DrawStringAnchored(title, Width-380, 1010, 0.5, 0.5)
		}
	}

	dc.SetFontFace(r.face(r.bodyFont, 20))
	dc.DrawStringAnchored("Serial "+data.Serial, 200, 1010, 0, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pngRenderer) face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func fallback(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

func loadFont(fontPath string) (*truetype.Font, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return parsed, nil
}

// loadBackground decodes an image and scales it to the certificate canvas.
func loadBackground(path string) (image.Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read background: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode background: %w", err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst, nil
}
