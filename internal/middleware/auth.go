package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/pkg/utils"
)

// AuthJWTMiddleware verifies the bearer token minted by the external auth
// service and injects the caller identity into the request context. The
// orchestrator never issues or stores tokens itself.
func (mw *MiddlewareManager) AuthJWTMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := ""
			if bearerHeader := c.Request().Header.Get("Authorization"); bearerHeader != "" {
				headerParts := strings.Split(bearerHeader, " ")
				if len(headerParts) != 2 {
					mw.logger.Warnf("auth middleware: malformed Authorization header")
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
				}
				tokenString = headerParts[1]
			} else if cookie, err := c.Cookie("jwt-token"); err == nil {
				tokenString = cookie.Value
			}

			user, err := mw.userFromToken(tokenString)
			if err != nil {
				mw.logger.Warnf("auth middleware: %v", err)
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}

			c.Set("user", user)
			ctx := context.WithValue(c.Request().Context(), utils.UserCtxKey{}, user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func (mw *MiddlewareManager) userFromToken(tokenString string) (*models.User, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(mw.cfg.Server.JwtSecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	userID, ok := claims["id"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid jwt claims")
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}

	user := &models.User{UserID: userUUID, Role: models.UserRole}
	if username, ok := claims["username"].(string); ok {
		user.Username = username
	}
	if role, ok := claims["role"].(string); ok && models.Role(role) == models.AdminRole {
		user.Role = models.AdminRole
	}
	return user, nil
}

// AdminMiddleware gates admin-only routes; it assumes AuthJWTMiddleware ran
// earlier in the chain.
func (mw *MiddlewareManager) AdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get("user").(*models.User)
			if !ok {
				mw.logger.Errorf("admin middleware: invalid user ctx, RequestID: %s", utils.GetRequestID(c))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			if !user.IsAdmin() {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden"})
			}
			return next(c)
		}
	}
}
