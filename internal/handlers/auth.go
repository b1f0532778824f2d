package handlers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"startup-os-backend/internal/middleware"
	"startup-os-backend/internal/supabase"
	"startup-os-backend/internal/web"
)

// SessionExchanger is satisfied by *supabase.AuthClient.
type SessionExchanger interface {
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*supabase.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// PageRenderer is satisfied by *web.Renderer.
type PageRenderer interface {
	Render(name string, data any) ([]byte, error)
}

type AuthConfig struct {
	SupabaseURL string
	BaseURL     string
	Provider    string
	Secure      bool
}

type AuthHandler struct {
	auth     SessionExchanger
	renderer PageRenderer
	cfg      AuthConfig
	logger   zerolog.Logger
}

func NewAuthHandler(auth SessionExchanger, renderer PageRenderer, cfg AuthConfig, logger zerolog.Logger) *AuthHandler {
	if cfg.Provider == "" {
		cfg.Provider = "github"
	}
	return &AuthHandler{
		auth:     auth,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger.With().Str("handler", "auth").Logger(),
	}
}

const authFailedRedirect = "/login?error=auth_failed"

var loginErrors = map[string]string{
	"auth_failed": "Sign-in failed. Please try again.",
}

// Login renders the sign-in page. A fresh PKCE verifier is stored in a cookie
// and its challenge is sent with the authorize link.
func (h *AuthHandler) Login(c *gin.Context) {
	verifier, challenge, err := newPKCE()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create PKCE verifier")
		c.String(http.StatusInternalServerError, "failed to start sign-in")
		return
	}
	h.setCookie(c, middleware.CodeVerifierCookie, verifier, 600)

	callback := strings.TrimRight(h.cfg.BaseURL, "/") + "/api/auth/callback"
	if next := safeNext(c.Query("next")); next != "" {
		callback += "?next=" + url.QueryEscape(next)
	}
	q := url.Values{}
	q.Set("provider", h.cfg.Provider)
	q.Set("redirect_to", callback)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "s256")

	errMsg := loginErrors[c.Query("error")]
	if errMsg == "" && c.Query("error") != "" {
		errMsg = loginErrors["auth_failed"]
	}

	page, err := h.renderer.Render(web.PageLogin, web.LoginPage{
		Error:        errMsg,
		AuthorizeURL: strings.TrimRight(h.cfg.SupabaseURL, "/") + "/auth/v1/authorize?" + q.Encode(),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to render login page")
		c.String(http.StatusInternalServerError, "failed to render page")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// Callback godoc
// @Summary     OAuth callback
// @Description Exchanges the auth code for a session and sets the session cookies
// @Tags        auth
// @Param       code query string false "Auth code"
// @Param       next query string false "Relative path to continue to"
// @Success     302
// @Router      /api/auth/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, authFailedRedirect)
		return
	}

	verifier, _ := c.Cookie(middleware.CodeVerifierCookie)
	session, err := h.auth.ExchangeCode(c.Request.Context(), code, verifier)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Code exchange failed")
		c.Redirect(http.StatusFound, authFailedRedirect)
		return
	}

	h.setCookie(c, middleware.AccessTokenCookie, session.AccessToken, session.ExpiresIn)
	h.setCookie(c, middleware.RefreshTokenCookie, session.RefreshToken, 60*60*24*30)
	h.setCookie(c, middleware.CodeVerifierCookie, "", -1)

	next := safeNext(c.Query("next"))
	if next == "" {
		next = "/dashboard"
	}
	c.Redirect(http.StatusFound, next)
}

// SignOut godoc
// @Summary     Sign out
// @Description Revokes the session when possible and clears the session cookies
// @Tags        auth
// @Success     303
// @Router      /api/auth/signout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	if token, err := c.Cookie(middleware.AccessTokenCookie); err == nil && token != "" {
		if err := h.auth.SignOut(c.Request.Context(), token); err != nil {
			h.logger.Warn().Err(err).Msg("Remote sign-out failed")
		}
	}

	h.setCookie(c, middleware.AccessTokenCookie, "", -1)
	h.setCookie(c, middleware.RefreshTokenCookie, "", -1)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.cfg.Secure, true)
}

// safeNext accepts only same-site relative paths.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}

func newPKCE() (verifier, challenge string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	verifier = base64.RawURLEncoding.EncodeToString(buf)
	sum := sha256.Sum256([]byte(verifier))
	return verifier, base64.RawURLEncoding.EncodeToString(sum[:]), nil
}
