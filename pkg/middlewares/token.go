package middlewares

import (
	"errors"
	"strings"
	"time"

	"viewtube/pkg/config"
	"viewtube/pkg/token"

	"github.com/gofiber/fiber/v2"
)

const (
	// RefreshCookie refresh token cookie name
	RefreshCookie = "refresh_token"

	// TokenUserID get user id from token, set c.Locals name
	TokenUserID = "UserID"

	// HeaderNewAccessToken 換發後的 access token 回給 client 的 header
	HeaderNewAccessToken = "X-Access-Token"

	bearerPrefix = "Bearer "
)

// AuthRequired validates the Bearer access token; on expiry it transparently
// rotates through the refresh-token cookie before rejecting.
//
// 狀態機: NoCredential -> 401
//
//	AccessValid -> next
//	AccessExpired + RefreshValid -> 換發兩顆 token, set cookie, next
//	其餘 -> 403
func AuthRequired(tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(auth, bearerPrefix) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "access token required"})
		}

		claims, err := tokens.Verify(strings.TrimPrefix(auth, bearerPrefix), token.KindAccess)
		switch {
		case err == nil:
			c.Locals(TokenUserID, claims.UserID)
			return c.Next()
		case errors.Is(err, token.ErrTokenExpired):
			return refreshAndProceed(c, tokens)
		default:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "invalid access token"})
		}
	}
}

// AuthOptional attaches the caller identity when a valid credential is present
// and lets anonymous requests through untouched.
func AuthOptional(tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(auth, bearerPrefix) {
			return c.Next()
		}

		claims, err := tokens.Verify(strings.TrimPrefix(auth, bearerPrefix), token.KindAccess)
		if err == nil {
			c.Locals(TokenUserID, claims.UserID)
			return c.Next()
		}

		if errors.Is(err, token.ErrTokenExpired) {
			// 有 refresh cookie 就換發，沒有就當匿名
			if refresh := c.Cookies(RefreshCookie); refresh != "" {
				if rc, rErr := tokens.Verify(refresh, token.KindRefresh); rErr == nil {
					if rotateErr := rotate(c, tokens, rc.UserID); rotateErr == nil {
						c.Locals(TokenUserID, rc.UserID)
					}
				}
			}
		}

		return c.Next()
	}
}

// refreshAndProceed AccessExpired 之後的 refresh 分支
func refreshAndProceed(c *fiber.Ctx, tokens *token.Service) error {
	refresh := c.Cookies(RefreshCookie)
	if refresh == "" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "refresh token required"})
	}

	claims, err := tokens.Verify(refresh, token.KindRefresh)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "refresh token expired, please log in again"})
	}

	if err := rotate(c, tokens, claims.UserID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to rotate tokens"})
	}

	c.Locals(TokenUserID, claims.UserID)
	return c.Next()
}

// rotate mint a fresh access/refresh pair, surface the access token in the
// response headers and re-set the refresh cookie
func rotate(c *fiber.Ctx, tokens *token.Service, userID string) error {
	access, err := tokens.IssueAccessToken(userID)
	if err != nil {
		return err
	}
	refresh, err := tokens.IssueRefreshToken(userID)
	if err != nil {
		return err
	}

	SetRefreshCookie(c, refresh, tokens.RefreshTTL())
	c.Set(fiber.HeaderAuthorization, bearerPrefix+access)
	c.Set(HeaderNewAccessToken, access)
	return nil
}

// SetRefreshCookie set the refresh token as a secure, http-only cookie scoped
// to the API root (7d lifetime by config)
func SetRefreshCookie(c *fiber.Ctx, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookie,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearRefreshCookie drop the refresh cookie (logout)
func ClearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
	})
}
