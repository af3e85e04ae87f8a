package companyctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type companyIDKey struct{}
type userIDKey struct{}
type roleKey struct{}

// WithCompanyID attaches the acting company to the context.
func WithCompanyID(ctx context.Context, id snowflake.ID) context.Context {
	return context.WithValue(ctx, companyIDKey{}, id)
}

func CompanyIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	id, ok := ctx.Value(companyIDKey{}).(snowflake.ID)
	return id, ok
}

func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}
	return ""
}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey{}).(string); ok {
		return role
	}
	return ""
}
