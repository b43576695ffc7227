package controller

import (
	"brainer_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID parses a numeric route parameter, writing a 422 when it is malformed.
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := util.ParseID(name, ctx.Param(name))
	if err != nil {
		util.HandleError(ctx, err)
		return 0, false
	}
	return id, true
}

// actingUserID returns the authenticated user's id. A user_id supplied in the query or body
// that names someone else is rejected with 403.
func actingUserID(ctx *gin.Context, bodyUserID *uint) (uint, bool) {
	user := util.CurrentUser(ctx)
	if user == nil {
		util.HandleError(ctx, util.UnauthorizedError("Not authenticated"))
		return 0, false
	}
	if q := ctx.Query("user_id"); q != "" {
		if id, err := strconv.ParseUint(q, 10, 32); err != nil || uint(id) != user.ID {
			util.HandleError(ctx, util.ForbiddenError("Cannot access another user's progress"))
			return 0, false
		}
	}
	if bodyUserID != nil && *bodyUserID != user.ID {
		util.HandleError(ctx, util.ForbiddenError("Cannot write another user's progress"))
		return 0, false
	}
	return user.ID, true
}
