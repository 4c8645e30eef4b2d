package cont

import (
	"AtendeBot/entity"
	"context"
)

type contextKey string

const userKey contextKey = "admin_user"

// PutUser stores the authenticated admin user in the request context.
func PutUser(ctx context.Context, user *entity.AdminUser) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser retrieves the authenticated admin user, if any.
func GetUser(ctx context.Context) *entity.AdminUser {
	user, _ := ctx.Value(userKey).(*entity.AdminUser)
	return user
}
