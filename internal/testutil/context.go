package testutil

import (
	"context"

	"github.com/rentledger/rentledger/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	return ctx
}

// SetupContextWithRoles returns a context for an authenticated caller
// carrying the given roles
func SetupContextWithRoles(roles ...types.UserRole) context.Context {
	return types.SetRoles(SetupContext(), roles)
}
