package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/totalcalc-web/internal/catalog"
	"finitefield.org/totalcalc-web/internal/currency"
	"finitefield.org/totalcalc-web/internal/platform/httpx"
	"finitefield.org/totalcalc-web/internal/platform/requestctx"
	"finitefield.org/totalcalc-web/internal/resolver"
)

const maxPreferenceBody = 1 << 10

type catalogResponse struct {
	Categories []catalog.Category `json:"categories"`
	Total      int                `json:"total"`
}

type calculatorResponse struct {
	Category   catalog.Category   `json:"category"`
	Calculator catalog.Calculator `json:"calculator"`
	URL        string             `json:"url"`
}

type currenciesResponse struct {
	Default    currency.Config   `json:"default"`
	Currencies []currency.Config `json:"currencies"`
}

type preferenceResponse struct {
	Currency currency.Config `json:"currency"`
	Stale    bool            `json:"stale"`
}

type preferenceRequest struct {
	Code string `json:"code"`
}

func (s *Site) APICatalog(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(r.Context(), w, http.StatusOK, catalogResponse{
		Categories: s.Catalog.Categories(),
		Total:      s.Catalog.Len(),
	})
}

func (s *Site) APICategory(w http.ResponseWriter, r *http.Request) {
	page, err := s.Resolver.CategoryPageByID(chi.URLParam(r, "categoryID"))
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}
	cat := page.Category
	cat.Calculators = page.Calculators
	httpx.WriteJSON(r.Context(), w, http.StatusOK, cat)
}

func (s *Site) APICalculator(w http.ResponseWriter, r *http.Request) {
	page, err := s.Resolver.CalculatorPage(chi.URLParam(r, "categoryID"), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}
	cat := page.Category
	cat.Calculators = nil
	httpx.WriteJSON(r.Context(), w, http.StatusOK, calculatorResponse{
		Category:   cat,
		Calculator: page.Calculator,
		URL:        s.baseURL + resolver.CalculatorPath(page.Calculator),
	})
}

func (s *Site) APICurrencies(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(r.Context(), w, http.StatusOK, currenciesResponse{
		Default:    s.Registry.Default(),
		Currencies: s.Registry.Currencies(),
	})
}

func (s *Site) APIGetCurrency(w http.ResponseWriter, r *http.Request) {
	prefs := s.preferences(r.Context())
	httpx.WriteJSON(r.Context(), w, http.StatusOK, preferenceResponse{
		Currency: prefs.Preferred(),
		Stale:    prefs.Stale(),
	})
}

func (s *Site) APIPutCurrency(w http.ResponseWriter, r *http.Request) {
	var req preferenceRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxPreferenceBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "body must be a JSON object with a code field", http.StatusBadRequest))
		return
	}
	cfg, err := s.preferences(r.Context()).SetPreferred(req.Code)
	if errors.Is(err, currency.ErrInvalidCurrency) {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_currency", "currency is not supported", http.StatusBadRequest).
			WithDetails(map[string]any{"code": req.Code}))
		return
	}
	if err != nil {
		requestctx.Logger(r.Context()).Error("save currency preference", zap.Error(err))
		httpx.WriteError(r.Context(), w, httpx.NewError("internal_server_error", "preference could not be saved", http.StatusInternalServerError))
		return
	}
	requestctx.Logger(r.Context()).Info("currency preference updated", zap.String("currency", cfg.Code))
	httpx.WriteJSON(r.Context(), w, http.StatusOK, preferenceResponse{Currency: cfg})
}

func (s *Site) apiNotFound(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(r.Context(), w, httpx.NotFound("no such endpoint"))
}

func (s *Site) apiMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(r.Context(), w, httpx.NewError("method_not_allowed", "method not allowed", http.StatusMethodNotAllowed))
}

func (s *Site) writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		httpx.WriteError(r.Context(), w, httpx.NotFound(err.Error()))
		return
	}
	requestctx.Logger(r.Context()).Error("catalog lookup", zap.Error(err))
	httpx.WriteError(r.Context(), w, httpx.NewError("internal_server_error", "lookup failed", http.StatusInternalServerError))
}
