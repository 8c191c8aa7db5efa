package utils

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/exp/slices"
)

// requireRole stores the caller identity in the context and refuses callers
// whose role is not in the allow list.
func requireRole(ctx iris.Context, roles ...string) bool {
	claims := jwt.Get(ctx).(*AccessToken)
	if !slices.Contains(roles, claims.Role) {
		ctx.StopWithJSON(iris.StatusForbidden, iris.Map{"error": "Forbidden", "message": "Insufficient role for this resource"})
		return false
	}
	ctx.Values().Set("userID", claims.ID)
	ctx.Values().Set("role", claims.Role)
	return true
}

// AuthenticatedMiddleware accepts any verified caller and exposes their
// identity to downstream handlers.
func AuthenticatedMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	ctx.Values().Set("userID", claims.ID)
	ctx.Values().Set("role", claims.Role)
	ctx.Next()
}

func StudentOnlyMiddleware(ctx iris.Context) {
	if requireRole(ctx, "STUDENT") {
		ctx.Next()
	}
}

func OwnerOnlyMiddleware(ctx iris.Context) {
	if requireRole(ctx, "OWNER") {
		ctx.Next()
	}
}

func AdminOnlyMiddleware(ctx iris.Context) {
	if requireRole(ctx, "ADMIN") {
		ctx.Next()
	}
}
