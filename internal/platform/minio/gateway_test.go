package minio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/platform/objectstore"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	u, _ := url.Parse(srv.URL)
	gw, err := NewGateway(context.Background(), logger.Nop(), Config{
		Endpoint:  u.Host,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Buckets:   objectstore.Buckets{Media: "media", Certificate: "certificates"},
	})
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	return gw, srv
}

func TestHeadReturnsObjectInfo(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead || r.URL.Path != "/media/media/u1/video/01J.mp4" {
			http.Error(w, "unexpected", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Length", "4000000")
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("ETag", `"abc"`)
		w.Header().Set("Last-Modified", "Fri, 02 Jan 2026 03:04:05 GMT")
		w.WriteHeader(http.StatusOK)
	})

	info, err := gw.Head(context.Background(), objectstore.CategoryMedia, "media/u1/video/01J.mp4")
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if info.Size != 4000000 || info.ContentType != "video/mp4" || info.ETag != "abc" {
		t.Fatalf("info: %+v", info)
	}
}

func TestHeadMissingObject(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := gw.Head(context.Background(), objectstore.CategoryMedia, "media/u1/doc/missing.pdf")
	if !errors.Is(err, objectstore.ErrObjectNotFound) {
		t.Fatalf("want ErrObjectNotFound got=%v", err)
	}
}

func TestPresignedURLsAreSignedLocally(t *testing.T) {
	var calls int
	gw, srv := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	put, err := gw.PresignPut(context.Background(), objectstore.CategoryMedia, "media/u1/video/01J.mp4", "video/mp4", 15*time.Minute)
	if err != nil {
		t.Fatalf("PresignPut: %v", err)
	}
	if !strings.Contains(put, "X-Amz-Expires=900") || !strings.Contains(put, "/media/media/u1/video/01J.mp4") {
		t.Fatalf("put url: %s", put)
	}
	get, err := gw.PresignGet(context.Background(), objectstore.CategoryCertificate, "certificates/u1/ABC.png", 10*time.Minute)
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}
	if !strings.HasPrefix(get, srv.URL+"/certificates/certificates/u1/ABC.png?") || !strings.Contains(get, "X-Amz-Expires=600") {
		t.Fatalf("get url: %s", get)
	}
	if calls != 0 {
		t.Fatalf("presigning should not hit the server: calls=%d", calls)
	}
}

func TestNewGatewayRequiresEndpoint(t *testing.T) {
	_, err := NewGateway(context.Background(), logger.Nop(), Config{Buckets: objectstore.Buckets{Media: "m", Certificate: "c"}})
	if err == nil {
		t.Fatalf("expected error without endpoint")
	}
}
