package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/ctxutil"
)

// requireActor returns the authenticated caller attached by the auth
// middleware, or an unauthorized error.
func requireActor(ctx context.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, unauthorized(ErrMissingToken)
	}
	return rd, nil
}

func isSuperAdmin(rd *ctxutil.RequestData) bool {
	return rd != nil && rd.Role == string(types.RoleSuperAdmin)
}

func canAuthor(rd *ctxutil.RequestData) bool {
	return rd != nil && (rd.Role == string(types.RoleInstructor) || isSuperAdmin(rd))
}

// ownsCourse reports whether the caller may edit course.
func ownsCourse(rd *ctxutil.RequestData, course *types.Course) bool {
	if rd == nil || course == nil {
		return false
	}
	return course.InstructorID == rd.UserID || isSuperAdmin(rd)
}
