package web

import (
	"net/http"

	"github.com/ericfisherdev/codelens/internal/domain/model"
)

const sessionCookieName = "codelens_session"

// loadSession resolves the visitor's session from its cookie, creating a new
// one (and reissuing the cookie) when the cookie is absent or stale.
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (*model.Session, error) {
	var id string
	if c, err := r.Cookie(sessionCookieName); err == nil {
		id = c.Value
	}

	sess, err := h.sessionSvc.Load(r.Context(), id)
	if err != nil {
		return nil, err
	}

	if sess.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   r.TLS != nil,
		})
	}
	return sess, nil
}
