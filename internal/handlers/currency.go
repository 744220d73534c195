package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/totalcalc-web/internal/currency"
	"finitefield.org/totalcalc-web/internal/platform/requestctx"
)

type preferencesKey struct{}

// CurrencyMiddleware binds the client's preference cookie to the request.
func (s *Site) CurrencyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefs := currency.NewPreferences(s.Registry, s.Cookies.Store(w, r))
		if prefs.Stale() {
			requestctx.Logger(r.Context()).Debug("stale currency preference, using default",
				zap.String("default", s.Registry.Default().Code))
		}
		ctx := context.WithValue(r.Context(), preferencesKey{}, prefs)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// preferences returns the request's preferences. Outside the middleware the
// client has no stored value and sees the default.
func (s *Site) preferences(ctx context.Context) *currency.Preferences {
	if prefs, ok := ctx.Value(preferencesKey{}).(*currency.Preferences); ok {
		return prefs
	}
	return currency.NewPreferences(s.Registry, currency.NewMemoryStore())
}

// SetCurrency handles the currency picker form and redirects back.
func (s *Site) SetCurrency(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	code := r.PostForm.Get("code")
	cfg, err := s.preferences(r.Context()).SetPreferred(code)
	if errors.Is(err, currency.ErrInvalidCurrency) {
		s.renderError(w, r, http.StatusBadRequest, "That currency is not supported.")
		return
	}
	if err != nil {
		requestctx.Logger(r.Context()).Error("save currency preference", zap.Error(err))
		s.renderError(w, r, http.StatusInternalServerError, "Your preference could not be saved.")
		return
	}
	requestctx.Logger(r.Context()).Info("currency preference updated", zap.String("currency", cfg.Code))
	http.Redirect(w, r, safeRedirect(r.PostForm.Get("redirect")), http.StatusSeeOther)
}

// safeRedirect only allows same-site absolute paths.
func safeRedirect(target string) string {
	target = strings.TrimSpace(target)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}
