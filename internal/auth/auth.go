// Package auth resolves request credentials into the identity of the caller.
// Only the resolution contract lives here; accounts and login flows belong to
// the external auth provider.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// ErrUnauthenticated is returned when a request carries no usable credential
var ErrUnauthenticated = errors.New("not authenticated")

// SessionCookie is the cookie checked when no Authorization header is sent
const SessionCookie = "session_token"

// Identity is the resolved caller. UserID scopes every task operation.
type Identity struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time
}

type Authenticator interface {
	Resolve(r *http.Request) (Identity, error)
}

// tokenFromRequest looks at the bearer header, then the session cookie, then
// the token query parameter. The query parameter is honoured only for
// websocket upgrades since browsers can not set headers on those.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}
