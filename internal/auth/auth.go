// Package auth issues and revokes session tokens and resolves them back
// to users. Credentials arrive as HTTP Basic headers; passwords are
// matched against the SHA-1 digest stored by the registration service.
package auth

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stashd/stashd/internal/metadata"
	"github.com/stashd/stashd/internal/session"
)

// TokenTTL is the fixed lifetime of a session token. There is no renewal.
const TokenTTL = 24 * time.Hour

// tokenKeyPrefix namespaces session keys in the store.
const tokenKeyPrefix = "auth_"

// ErrUnauthorized covers every authentication failure: missing or
// malformed credentials, unknown email, wrong password, absent or
// expired token. Callers must not distinguish between the causes.
var ErrUnauthorized = errors.New("auth: unauthorized")

// Gateway validates credentials and manages session tokens.
type Gateway struct {
	sessions session.Store
	users    metadata.Store
	log      *slog.Logger
}

// NewGateway creates an auth gateway over the given stores.
func NewGateway(sessions session.Store, users metadata.Store, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gateway{sessions: sessions, users: users, log: log}
}

// HashPassword returns the hex SHA-1 digest used for credential lookups.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Connect validates a Basic authorization header and mints a session
// token with a 24h TTL. Every failure collapses to ErrUnauthorized.
func (g *Gateway) Connect(ctx context.Context, authorization string) (string, error) {
	email, password, ok := parseBasicAuth(authorization)
	if !ok {
		return "", ErrUnauthorized
	}

	user, err := g.users.UserByCredentials(ctx, email, HashPassword(password))
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", err
	}

	token := uuid.NewString()
	if err := g.sessions.Put(ctx, tokenKeyPrefix+token, user.ID, TokenTTL); err != nil {
		return "", err
	}

	g.log.InfoContext(ctx, "session created", slog.String("user_id", user.ID))
	return token, nil
}

// Disconnect revokes a token. A token that is already gone, expired or
// never existed yields ErrUnauthorized; disconnect is not idempotent.
func (g *Gateway) Disconnect(ctx context.Context, token string) error {
	if token == "" {
		return ErrUnauthorized
	}

	userID, err := g.sessions.Get(ctx, tokenKeyPrefix+token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}

	if err := g.sessions.Delete(ctx, tokenKeyPrefix+token); err != nil {
		return err
	}

	g.log.InfoContext(ctx, "session revoked", slog.String("user_id", userID))
	return nil
}

// Resolve maps a token to its user. An absent or expired token, or a
// token whose user no longer exists, yields ErrUnauthorized.
func (g *Gateway) Resolve(ctx context.Context, token string) (*metadata.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	userID, err := g.sessions.Get(ctx, tokenKeyPrefix+token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	user, err := g.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// parseBasicAuth decodes a "Basic base64(email:password)" header.
// Empty email or password is rejected.
func parseBasicAuth(authorization string) (email, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(authorization, prefix) {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authorization, prefix))
	if err != nil {
		return "", "", false
	}

	email, password, found := strings.Cut(string(decoded), ":")
	if !found || email == "" || password == "" {
		return "", "", false
	}
	return email, password, true
}
