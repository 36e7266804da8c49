package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/coursemarket-backend/internal/platform/ctxutil"
)

func traceRouter(seen *ctxutil.TraceData) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			*seen = *td
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAttachTraceContextKeepsWellFormedHeaders(t *testing.T) {
	var seen ctxutil.TraceData
	r := traceRouter(&seen)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req_abc-123")
	req.Header.Set(headerTraceID, "4BF92F3577B34DA6A3CE929D0E0E4736")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen.RequestID != "req_abc-123" {
		t.Fatalf("request id: want=req_abc-123 got=%q", seen.RequestID)
	}
	if seen.TraceID != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("trace id: want=lowercased header got=%q", seen.TraceID)
	}
	if rec.Header().Get(headerTraceID) != seen.TraceID || rec.Header().Get(headerRequestID) != seen.RequestID {
		t.Fatalf("response headers do not echo context: %v", rec.Header())
	}
}

func TestAttachTraceContextReplacesMalformedHeaders(t *testing.T) {
	var seen ctxutil.TraceData
	r := traceRouter(&seen)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "bad id\nwith newline")
	req.Header.Set(headerTraceID, "00000000000000000000000000000000")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if seen.RequestID == "" || strings.ContainsAny(seen.RequestID, " \n") {
		t.Fatalf("request id not regenerated: %q", seen.RequestID)
	}
	if !validTraceID(seen.TraceID) || seen.TraceID == "00000000000000000000000000000000" {
		t.Fatalf("trace id not regenerated: %q", seen.TraceID)
	}

	long := strings.Repeat("a", maxRequestIDLen+1)
	if validRequestID(long) {
		t.Fatalf("request id over %d chars accepted", maxRequestIDLen)
	}
}

func TestAttachTraceContextPrefersActiveSpan(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
	spanID, _ := trace.SpanIDFromHex("b7ad6b7169203331")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})

	var seen ctxutil.TraceData
	r := traceRouter(&seen)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(trace.ContextWithSpanContext(context.Background(), sc))
	req.Header.Set(headerTraceID, "4bf92f3577b34da6a3ce929d0e0e4736")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if seen.TraceID != traceID.String() {
		t.Fatalf("trace id: want=%s got=%s", traceID, seen.TraceID)
	}
}
