package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gymplanner/gymplanner/internal/apperr"
	"github.com/gymplanner/gymplanner/internal/httpx"
)

// SessionVerifier is an optional callback that checks a parsed session
// against server-side state: that the user still exists and, under the
// single-session policy, that the token's jti matches the stored slot.
// It returns nil for a live session, ErrUnauthenticated for a revoked or
// orphaned one, and ErrStore when the check itself could not run. If nil,
// tokens are trusted on signature and expiry alone.
type SessionVerifier func(ctx context.Context, userID, tokenID string) error

// Gate is the per-request authorization gate. The authentication checkpoint
// (RequireAuth) always runs before the role checkpoint (RequireRole); a
// request never reaches role evaluation without a validated identity.
type Gate struct {
	tokens   *TokenService
	verifier SessionVerifier
}

func NewGate(tokens *TokenService, verifier SessionVerifier) *Gate {
	return &Gate{tokens: tokens, verifier: verifier}
}

// tokenFromRequest extracts the bearer token from the session cookie,
// falling back to the Authorization header.
func (g *Gate) tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(g.tokens.cfg.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	return ""
}

// RequireAuth is the authentication checkpoint. A missing, malformed,
// expired or forged token yields 401; the stale cookie is cleared so a
// broken client does not retry with the same bad token indefinitely.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := g.tokenFromRequest(r)
		if tok == "" {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthenticated", nil)
			return
		}
		claims, err := g.tokens.Parse(tok)
		if err != nil {
			g.tokens.ClearSessionCookie(w)
			httpx.JSONError(w, http.StatusUnauthorized, "unauthenticated", nil)
			return
		}
		if g.verifier != nil {
			if verr := g.verifier(r.Context(), claims.UserID, claims.ID); verr != nil {
				if errors.Is(verr, apperr.ErrStore) {
					// The check could not run; the session may well be
					// live, so the cookie stays.
					httpx.Error(w, verr)
					return
				}
				// Session refers to a revoked token or a deleted user.
				g.tokens.ClearSessionCookie(w)
				httpx.JSONError(w, http.StatusUnauthorized, "unauthenticated", nil)
				return
			}
		}
		id := Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireRole is the role checkpoint: exact match, no hierarchy. A missing
// identity means the authentication checkpoint never ran or failed silently,
// which is reported as 401, not 403.
func (g *Gate) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthenticated", nil)
				return
			}
			if id.Role != role {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
