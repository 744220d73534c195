package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"

	"finitefield.org/totalcalc-web/internal/platform/httpx"
)

const (
	csrfCookieName = "totalcalc_csrf"
	csrfFormField  = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
	csrfTokenBytes = 16
	csrfMaxAge     = 24 * time.Hour
)

type csrfKey struct{}

// CSRFMiddleware issues a double-submit token cookie and rejects unsafe
// requests whose form field or X-CSRF-Token header does not match it.
func (s *Site) CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, fresh := "", false
		if c, err := r.Cookie(csrfCookieName); err == nil && validCSRFToken(c.Value) {
			token = c.Value
		} else {
			token, fresh = newCSRFToken(), true
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(csrfMaxAge.Seconds()),
				Secure:   s.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}
		r = r.WithContext(context.WithValue(r.Context(), csrfKey{}, token))

		if !isSafeMethod(r.Method) {
			sent := r.Header.Get(csrfHeader)
			if sent == "" {
				sent = r.PostFormValue(csrfFormField)
			}
			if fresh || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
				s.rejectCSRF(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Site) rejectCSRF(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		httpx.WriteError(r.Context(), w, httpx.NewError("csrf_failed", "missing or invalid CSRF token", http.StatusForbidden))
		return
	}
	s.renderError(w, r, http.StatusForbidden, "Your session expired. Reload the page and try again.")
}

func csrfToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
}

func newCSRFToken() string {
	return hex.EncodeToString(securecookie.GenerateRandomKey(csrfTokenBytes))
}

func validCSRFToken(v string) bool {
	if len(v) != hex.EncodedLen(csrfTokenBytes) {
		return false
	}
	_, err := hex.DecodeString(v)
	return err == nil
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
