package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
)

func TestRespondFromErrorWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	err := fmt.Errorf("finalize: %w", domainagg.NewError(domainagg.CodeSizeMismatch, "Media.Finalize", "size differs", nil))
	RespondFromError(c, err)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: want=%d got=%d", http.StatusUnprocessableEntity, rec.Code)
	}
	var body ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "size_mismatch" || body.Error.Message != "size differs" {
		t.Fatalf("envelope: got=%+v", body.Error)
	}
}

func TestRespondCreatedStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		created bool
		status  int
	}{{true, http.StatusCreated}, {false, http.StatusOK}} {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		RespondCreated(c, tc.created, gin.H{"id": "x"})
		if rec.Code != tc.status {
			t.Fatalf("created=%v: want=%d got=%d", tc.created, tc.status, rec.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body["created"] != tc.created || body["id"] != "x" {
			t.Fatalf("created=%v: body=%v", tc.created, body)
		}
	}
}
