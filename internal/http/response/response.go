package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursemarket-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ErrorCodeKey holds the error code of the response on the gin context.
const ErrorCodeKey = "error_code"

func RespondError(c *gin.Context, status int, code string, err error) {
	if code != "" {
		c.Set(ErrorCodeKey, code)
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondFromError writes err with the status and code it maps to.
func RespondFromError(c *gin.Context, err error) {
	e := apierr.FromError(err)
	if e == nil {
		e = apierr.New(http.StatusInternalServerError, "internal", apierr.ErrInternal)
	}
	RespondError(c, e.Status, e.Code, e)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondCreated answers 201 for a new resource and 200 for one that
// already existed. payload gets a "created" field either way.
func RespondCreated(c *gin.Context, created bool, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["created"] = created
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, payload)
}
