package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/rogerio-castellano/pixel-canvas/internal/access"
	"github.com/rogerio-castellano/pixel-canvas/internal/models"
)

const SessionCookieName = "session"

// SessionConfig controls session cookie lifetimes.
type SessionConfig struct {
	Secret      []byte
	TTL         time.Duration
	RememberTTL time.Duration
	Secure      bool
}

// SessionManager issues and reads signed session cookies.
type SessionManager struct {
	cfg     SessionConfig
	revoked RevocationStore
	now     func() time.Time
}

func NewSessionManager(cfg SessionConfig, revoked RevocationStore) *SessionManager {
	return &SessionManager{cfg: cfg, revoked: revoked, now: time.Now}
}

// Issue sets a session cookie for user. A remembered session survives
// browser restarts; otherwise the cookie lives for the browser session.
func (m *SessionManager) Issue(w http.ResponseWriter, user models.User, remember bool) error {
	ttl := m.cfg.TTL
	if remember {
		ttl = m.cfg.RememberTTL
	}

	now := m.now()
	token, _, err := GenerateToken(user, m.cfg.Secret, now, ttl, remember)
	if err != nil {
		return err
	}

	cookie := m.cookie(token)
	if remember {
		cookie.Expires = now.Add(ttl)
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

// Reissue replaces the request's session with a fresh one for user. The old
// token is revoked and the remember choice it carried is kept.
func (m *SessionManager) Reissue(ctx context.Context, w http.ResponseWriter, r *http.Request, user models.User) error {
	claims, _ := m.claims(r)
	remember := false
	if claims != nil {
		remember = claims.Remember
		if claims.ExpiresAt != nil {
			if err := m.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
				return err
			}
		}
	}
	return m.Issue(w, user, remember)
}

// Viewer returns the identity carried by the request's session cookie, or
// the anonymous viewer when there is none or it is invalid or revoked.
func (m *SessionManager) Viewer(r *http.Request) (access.Viewer, error) {
	claims, err := m.claims(r)
	if err != nil || claims == nil {
		return access.Anonymous, nil
	}

	revoked, err := m.revoked.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		return access.Anonymous, err
	}
	if revoked {
		return access.Anonymous, nil
	}
	return access.Viewer{UserID: claims.UserID(), Username: claims.Username}, nil
}

// Clear revokes the current session, if any, and expires the cookie.
func (m *SessionManager) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var err error
	if claims, _ := m.claims(r); claims != nil && claims.ExpiresAt != nil {
		err = m.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	}

	cookie := m.cookie("")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
	return err
}

func (m *SessionManager) claims(r *http.Request) (*Claims, error) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	return ParseToken(c.Value, m.cfg.Secret)
}

func (m *SessionManager) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
