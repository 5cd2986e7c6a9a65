package auth

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/orders-api/internal/apperror"
	"github.com/wichananm65/orders-api/internal/user"
)

const (
	tokenLocalsKey = "user"
	userLocalsKey  = "current_user"
)

var (
	ErrMissingToken  = apperror.NewUnauthorized("Authorization token is missing")
	ErrInvalidToken  = apperror.NewUnauthorized("Invalid or expired token")
	ErrUserInactive  = apperror.NewUnauthorized("User not found or inactive")
	ErrAdminRequired = apperror.NewForbidden("Admin access required")
)

// UserFinder loads the account behind a verified token.
type UserFinder interface {
	GetByID(ctx context.Context, id int) (user.User, error)
}

// Middleware verifies the bearer token and stores the parsed *jwt.Token in
// the "user" local.
func Middleware(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		ContextKey: tokenLocalsKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if err != nil && err.Error() == "Missing or malformed JWT" {
				return apperror.Write(c, ErrMissingToken)
			}
			return apperror.Write(c, ErrInvalidToken)
		},
	})
}

// RequireUser resolves the token's user id to an active account and stores
// it for CurrentUser.
func RequireUser(users UserFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := UserIDFromCtx(c)
		if err != nil {
			return apperror.Write(c, ErrInvalidToken)
		}

		u, err := users.GetByID(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return apperror.Write(c, ErrUserInactive)
			}
			return apperror.Write(c, err)
		}
		if !u.IsActive {
			return apperror.Write(c, ErrUserInactive)
		}

		c.Locals(userLocalsKey, u)
		return c.Next()
	}
}

// RequireAdmin rejects non-admin users. It must run after RequireUser.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := CurrentUser(c)
		if !ok {
			return apperror.Write(c, ErrInvalidToken)
		}
		if !u.IsAdmin() {
			return apperror.Write(c, ErrAdminRequired)
		}
		return c.Next()
	}
}

func CurrentUser(c *fiber.Ctx) (user.User, bool) {
	u, ok := c.Locals(userLocalsKey).(user.User)
	return u, ok
}

// UserIDFromCtx extracts the user_id claim from the token stored in
// c.Locals("user").
func UserIDFromCtx(c *fiber.Ctx) (int, error) {
	tok, ok := c.Locals(tokenLocalsKey).(*jwt.Token)
	if !ok || tok == nil {
		return 0, fiber.ErrUnauthorized
	}
	return userIDFromToken(tok)
}

func userIDFromToken(tok *jwt.Token) (int, error) {
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	switch v := claims["user_id"].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return 0, fiber.ErrUnauthorized
		}
		return id, nil
	default:
		return 0, fiber.ErrUnauthorized
	}
}
