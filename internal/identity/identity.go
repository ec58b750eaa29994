package identity

import (
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vidshare/client/internal/domain"
)

// TokenSource supplies the currently stored bearer token, or "" when the
// user is signed out.
type TokenSource interface {
	Token() string
}

// Provider derives the local identity from the stored credential. The token
// payload is decoded WITHOUT signature verification: the result is used only
// for display and membership matching, and the server re-checks every
// authorized action. Nothing here may ever gate a command locally.
type Provider struct {
	tokens TokenSource
}

func NewProvider(tokens TokenSource) *Provider {
	return &Provider{tokens: tokens}
}

// Current re-reads the credential on every call. The token can change at any
// time (login, logout) without this package being told, so the decoded
// identity is never cached.
func (p *Provider) Current() domain.Identity {
	token := p.tokens.Token()
	if token == "" {
		return domain.Identity{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.Identity{}
	}

	return domain.Identity{
		UserID: userIDFromClaims(claims),
		Email:  emailFromClaims(claims),
	}
}

// emailFromClaims prefers an explicit email claim and falls back to the
// subject, which this platform's tokens carry the address in.
func emailFromClaims(claims jwt.MapClaims) *string {
	for _, key := range []string{"email", "sub"} {
		if s, ok := claims[key].(string); ok && s != "" {
			return &s
		}
	}

	return nil
}

// userIDFromClaims tries the claim names seen across backend versions.
func userIDFromClaims(claims jwt.MapClaims) *int {
	for _, key := range []string{"id", "userId", "user_id", "subId"} {
		v, ok := claims[key]
		if !ok {
			continue
		}

		switch n := v.(type) {
		case float64:
			id := int(n)
			return &id
		case string:
			if id, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				return &id
			}
		}
	}

	return nil
}
