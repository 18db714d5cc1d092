package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxUserID    ContextKey = "ctx_user_id"
	CtxRoles     ContextKey = "ctx_roles" // roles array for permission checks

	// DefaultUserID is used by scripts and tests that have no authenticated caller
	DefaultUserID = "00000000-0000-0000-0000-000000000000"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// GetRoles returns the roles array from the context
func GetRoles(ctx context.Context) []UserRole {
	if roles, ok := ctx.Value(CtxRoles).([]UserRole); ok {
		return roles
	}
	return []UserRole{}
}

// SetUserID sets the user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

// SetRoles sets the roles array in the context
func SetRoles(ctx context.Context, roles []UserRole) context.Context {
	return context.WithValue(ctx, CtxRoles, roles)
}
