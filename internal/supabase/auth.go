package supabase

import (
	"context"
	"errors"
	"fmt"

	gotrue "github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// ErrInvalidAuthCode is returned when the auth server rejects a code exchange.
var ErrInvalidAuthCode = errors.New("invalid or expired auth code")

type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	UserID       string
}

type AuthClient struct {
	auth gotrue.Client
}

func NewAuthClient(client *Client) *AuthClient {
	return &AuthClient{auth: client.Supabase.Auth}
}

// ExchangeCode trades a PKCE auth code and its verifier for a session.
func (a *AuthClient) ExchangeCode(ctx context.Context, code, codeVerifier string) (*Session, error) {
	if code == "" {
		return nil, ErrInvalidAuthCode
	}

	resp, err := a.auth.Token(types.TokenRequest{
		GrantType:    "pkce",
		Code:         code,
		CodeVerifier: codeVerifier,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAuthCode, err)
	}
	if resp == nil || resp.AccessToken == "" {
		return nil, ErrInvalidAuthCode
	}

	return &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		UserID:       resp.User.ID.String(),
	}, nil
}

// SignOut revokes the session behind accessToken.
func (a *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := a.auth.WithToken(accessToken).Logout(); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}
