package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"startup-os-backend/internal/config"
	"startup-os-backend/internal/models"
)

const UserIDKey = "user_id"

// Session cookies written by the auth callback.
const (
	AccessTokenCookie  = "sb-access-token"
	RefreshTokenCookie = "sb-refresh-token"
	CodeVerifierCookie = "sb-code-verifier"
)

var (
	errMissingToken = errors.New("missing access token")
	errMissingSub   = errors.New("missing user id in token")
)

// AuthMiddleware guards JSON endpoints. Requests without a valid Supabase
// session get a 401.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authenticate(c, cfg.SupabaseJWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: describeTokenError(err),
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// PageAuthMiddleware guards HTML pages. Requests without a valid session are
// sent to the login page with the original path as next.
func PageAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authenticate(c, cfg.SupabaseJWTSecret)
		if err != nil {
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by the auth middleware.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func authenticate(c *gin.Context, secret string) (string, error) {
	tokenString := tokenFromRequest(c)
	if tokenString == "" {
		return "", errMissingToken
	}
	return ParseUserID(tokenString, secret)
}

// tokenFromRequest reads a Bearer token, falling back to the session cookie.
func tokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	cookie, err := c.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}
	// Cookies set by some clients arrive URL-encoded.
	if decoded, err := url.QueryUnescape(cookie); err == nil {
		cookie = decoded
	}
	return strings.TrimSpace(cookie)
}

// ParseUserID verifies a Supabase access token (HS256, signed with the project
// JWT secret) and returns its sub claim.
func ParseUserID(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		if secret == "" {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errMissingSub
	}
	return sub, nil
}

func describeTokenError(err error) string {
	switch {
	case errors.Is(err, errMissingToken):
		return "missing access token"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return "token signature is invalid"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed"
	default:
		return err.Error()
	}
}
