package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const UserIDLocal = "user_id"

func parseBearer(ctx *fiber.Ctx, secret string) (jwt.MapClaims, bool) {
	authHeader := ctx.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, false
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}

// JwtMiddleware rejects requests without a valid bearer token. An empty
// secret disables the check.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return ctx.Next()
		}
		claims, ok := parseBearer(ctx, secret)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		ctx.Locals(UserIDLocal, claims["user_id"])
		return ctx.Next()
	}
}

// OptionalJwtMiddleware attaches user_id when a valid token is present and
// lets anonymous requests through.
func OptionalJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return ctx.Next()
		}
		if claims, ok := parseBearer(ctx, secret); ok {
			ctx.Locals(UserIDLocal, claims["user_id"])
		}
		return ctx.Next()
	}
}

// CurrentUserID returns the authenticated user, or nil for anonymous requests.
func CurrentUserID(ctx *fiber.Ctx) *uuid.UUID {
	raw, ok := ctx.Locals(UserIDLocal).(string)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
