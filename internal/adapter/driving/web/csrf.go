package web

import (
	"crypto/subtle"
	"net/http"

	"github.com/ericfisherdev/codelens/internal/domain/model"
)

const (
	csrfHeader    = "X-CSRF-Token"
	csrfFormField = "csrf_token"
)

// validateCSRF checks the token sent with a mutating request against the one
// bound to the visitor's session. The page script sends it in the
// X-CSRF-Token header; plain form posts may use the csrf_token field.
func validateCSRF(r *http.Request, sess *model.Session) bool {
	if sess == nil || sess.CSRFToken == "" {
		return false
	}

	token := r.Header.Get(csrfHeader)
	if token == "" {
		token = r.FormValue(csrfFormField)
	}
	if token == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(sess.CSRFToken)) == 1
}
