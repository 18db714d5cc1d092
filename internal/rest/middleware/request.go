package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rentledger/rentledger/internal/types"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderUserID    = "X-User-Id"
	HeaderUserRoles = "X-User-Roles"
)

func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUID()
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(HeaderRequestID, requestID)

	c.Next()
}

// IdentityMiddleware lifts the already-authenticated caller identity
// from the gateway headers onto the request context. Authentication
// itself happens upstream; this service only consumes the verdict.
func IdentityMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	if userID := c.GetHeader(HeaderUserID); userID != "" {
		ctx = types.SetUserID(ctx, userID)
	}

	if rolesHeader := c.GetHeader(HeaderUserRoles); rolesHeader != "" {
		var roles []types.UserRole
		for _, raw := range strings.Split(rolesHeader, ",") {
			role := types.UserRole(strings.TrimSpace(strings.ToLower(raw)))
			if role.Validate() == nil {
				roles = append(roles, role)
			}
		}
		ctx = types.SetRoles(ctx, roles)
	}

	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
