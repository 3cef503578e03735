package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenSource yields the bearer token for a request. An empty token means
// the request is sent without an Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// FileTokenStore keeps the token in a single file, the CLI's stand-in for
// browser storage. A missing file means no token.
type FileTokenStore struct {
	path string

	warnOnce sync.Once
}

// NewFileTokenStore returns a store backed by path. A leading "~/" expands to
// the user's home directory.
func NewFileTokenStore(path string) *FileTokenStore {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return &FileTokenStore{path: path}
}

// Path returns the backing file.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Token implements TokenSource.
func (s *FileTokenStore) Token(context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))

	s.warnOnce.Do(func() {
		if exp, ok := TokenExpiry(token); ok && exp.Before(time.Now()) {
			slog.Warn("stored token has expired", "expired_at", exp.Format(time.RFC3339), "path", s.path)
		}
	})
	return token, nil
}

// Save writes token, creating the parent directory.
func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(strings.TrimSpace(token)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Clear removes the stored token.
func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// Chain returns the first non-empty token from sources in order.
type Chain []TokenSource

// Token implements TokenSource.
func (c Chain) Token(ctx context.Context) (string, error) {
	for _, ts := range c {
		if ts == nil {
			continue
		}
		token, err := ts.Token(ctx)
		if err != nil {
			return "", err
		}
		if token != "" {
			return token, nil
		}
	}
	return "", nil
}

type tokenKey struct{}

// ContextWithToken attaches a per-request token, used by the gateway to
// forward the browser's credentials.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// ContextToken reads the token attached with ContextWithToken.
type ContextToken struct{}

// Token implements TokenSource.
func (ContextToken) Token(ctx context.Context) (string, error) {
	if v, ok := ctx.Value(tokenKey{}).(string); ok {
		return strings.TrimSpace(v), nil
	}
	return "", nil
}

// TokenExpiry reports the exp claim of a JWT without verifying it. The
// backend is the only party that can verify; this is for local warnings.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
