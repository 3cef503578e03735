package middleware

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/core"
)

const (
	// ActorHeader names the person making changes through the gateway.
	ActorHeader = "X-PharmaDB-Actor"

	// TokenCookie carries the backend token for browsers that cannot set
	// an Authorization header.
	TokenCookie = "pharmadb_token"
)

// Credentials forwards the caller's backend token and actor name to the
// core workflows. The gateway does not check the token; the backend does.
// Requests without an actor are attributed to defaultActor.
func Credentials(defaultActor string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if tok := RequestToken(r); tok != "" {
				ctx = api.ContextWithToken(ctx, tok)
			}

			actor := strings.TrimSpace(r.Header.Get(ActorHeader))
			if actor == "" {
				actor = defaultActor
			}
			if actor != "" {
				ctx = core.ContextWithActor(ctx, actor)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestToken returns the bearer token or token cookie of r, or "".
func RequestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}
