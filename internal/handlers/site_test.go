package handlers

import (
	"encoding/json"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"

	"finitefield.org/totalcalc-web/internal/catalog"
	"finitefield.org/totalcalc-web/internal/content"
	"finitefield.org/totalcalc-web/internal/currency"
	"finitefield.org/totalcalc-web/internal/resolver"
	"finitefield.org/totalcalc-web/internal/sitemap"
	"finitefield.org/totalcalc-web/internal/testutil"
	"finitefield.org/totalcalc-web/internal/view"
)

const (
	testBaseURL   = "https://example.test"
	testCSRFToken = "00112233445566778899aabbccddeeff"
)

func withCSRF(req *http.Request) {
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRFToken})
	req.Header.Set(csrfHeader, testCSRFToken)
}

func newTestRouter(t *testing.T) (http.Handler, *catalog.Catalog) {
	t.Helper()

	cat, err := catalog.Default()
	require.NoError(t, err)
	gen, err := sitemap.New(cat, testBaseURL, sitemap.WithClock(func() time.Time {
		return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	lib, err := content.Default()
	require.NoError(t, err)
	renderer, err := view.New(view.Options{})
	require.NoError(t, err)
	cookies, err := currency.NewCookieCodec(currency.CookieConfig{HashKey: []byte("0123456789abcdef0123456789abcdef")})
	require.NoError(t, err)

	site, err := New(Deps{
		SiteName: "TheTotalCalc",
		Catalog:  cat,
		Resolver: resolver.New(cat),
		Sitemap:  gen,
		Registry: currency.DefaultRegistry(),
		Cookies:  cookies,
		Content:  lib,
		Renderer: renderer,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	site.Routes(r)
	return r, cat
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.Do(t, h, httptest.NewRequest(http.MethodGet, path, nil))
}

func TestHomeListsEveryCategory(t *testing.T) {
	t.Parallel()

	h, cat := newTestRouter(t)
	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, len(cat.Categories()), doc.Find("main section.category").Length())
	require.Equal(t, cat.Len(), doc.Find("main section.category li a").Length())
	require.Equal(t, testBaseURL, doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	require.Equal(t, "USD", doc.Find("main [data-currency]").AttrOr("data-currency", ""))
}

func TestCategoryAndCalculatorPages(t *testing.T) {
	t.Parallel()

	h, cat := newTestRouter(t)
	health, err := cat.Category("health")
	require.NoError(t, err)

	rec := get(t, h, resolver.CategoryPath(health))
	require.Equal(t, http.StatusOK, rec.Code)
	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, health.Name, doc.Find("main h1").Text())
	require.Equal(t, len(health.Calculators), doc.Find("ul.calculators li").Length())
	require.Equal(t, resolver.CategoryPath(health), doc.Find(".site-nav a.active").AttrOr("href", ""))

	bmi := health.Calculators[0]
	rec = get(t, h, resolver.CalculatorPath(bmi))
	require.Equal(t, http.StatusOK, rec.Code)
	doc = testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, bmi.Name, doc.Find("main h1").Text())
	require.Equal(t, testBaseURL+resolver.CalculatorPath(bmi), doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	require.Equal(t, 3, doc.Find(".breadcrumbs li").Length())
	require.Contains(t, rec.Body.String(), `"@type":"WebApplication"`)
}

func TestUnknownPagesAre404(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)
	for _, path := range []string{
		"/unknown-calculators",
		"/calculators/finance/nope",
		"/calculators/nope/emi",
		"/calculators/health/emi",
		"/a/b/c/d",
	} {
		rec := get(t, h, path)
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		doc := testutil.ParseHTML(t, rec.Body.Bytes())
		require.Equal(t, "404", doc.Find("section.error").AttrOr("data-status", ""), path)
		require.Equal(t, "noindex", doc.Find(`meta[name="robots"]`).AttrOr("content", ""), path)
	}
}

func TestStaticPages(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)
	for _, path := range []string{"/about", "/privacy", "/terms"} {
		rec := get(t, h, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		doc := testutil.ParseHTML(t, rec.Body.Bytes())
		require.NotEmpty(t, strings.TrimSpace(doc.Find("article.prose h1").Text()), path)
	}
}

func postCurrency(t *testing.T, h http.Handler, code, redirect string, carry *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{"code": {code}, "redirect": {redirect}, csrfFormField: {testCSRFToken}}
	req := httptest.NewRequest(http.MethodPost, "/preferences/currency", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRFToken})
	if carry != nil {
		testutil.CarryCookies(carry, req)
	}
	return testutil.Do(t, h, req)
}

func TestCurrencyPreferenceForm(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)

	rec := postCurrency(t, h, "inr", "/calculators/finance/emi", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/calculators/finance/emi", rec.Header().Get("Location"))
	require.Len(t, rec.Result().Cookies(), 1)

	req := httptest.NewRequest(http.MethodGet, "/calculators/finance/emi", nil)
	testutil.CarryCookies(rec, req)
	page := testutil.Do(t, h, req)
	doc := testutil.ParseHTML(t, page.Body.Bytes())
	require.Equal(t, "INR", doc.Find("select[name=code] option[selected]").AttrOr("value", ""))
	require.Equal(t, "INR", doc.Find(".calculator-body").AttrOr("data-currency", ""))

	bad := postCurrency(t, h, "XYZ", "/", rec)
	require.Equal(t, http.StatusBadRequest, bad.Code)
	require.Empty(t, bad.Result().Cookies(), "invalid code must not rewrite the cookie")
	doc = testutil.ParseHTML(t, bad.Body.Bytes())
	require.Equal(t, "INR", doc.Find("select[name=code] option[selected]").AttrOr("value", ""), "preference unchanged")
}

func TestCurrencyRedirectStaysOnSite(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)
	for _, target := range []string{"", "https://evil.test/", "//evil.test", "/\\evil.test"} {
		rec := postCurrency(t, h, "EUR", target, nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"), target)
	}
}

func TestSitemapAndRobots(t *testing.T) {
	t.Parallel()

	h, cat := newTestRouter(t)
	rec := get(t, h, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/xml")

	var doc struct {
		URLs []struct {
			Loc string `xml:"loc"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.URLs, len(sitemap.DefaultStaticPages)+len(cat.Categories())+cat.Len())

	for _, u := range doc.URLs {
		path := strings.TrimPrefix(u.Loc, testBaseURL)
		if path == "" {
			path = "/"
		}
		require.Equal(t, http.StatusOK, get(t, h, path).Code, "sitemap url %s must be served", u.Loc)
	}

	rec = get(t, h, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Sitemap: "+testBaseURL+"/sitemap.xml")
}

func TestAPICatalog(t *testing.T) {
	t.Parallel()

	h, cat := newTestRouter(t)
	rec := get(t, h, "/api/catalog")
	require.Equal(t, http.StatusOK, rec.Code)

	var body catalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, cat.Len(), body.Total)
	require.Equal(t, cat.Categories(), body.Categories)

	rec = get(t, h, "/api/catalog/finance/emi")
	require.Equal(t, http.StatusOK, rec.Code)
	var calc calculatorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &calc))
	require.Equal(t, "emi", calc.Calculator.ID)
	require.Equal(t, "finance", calc.Category.ID)
	require.Equal(t, testBaseURL+"/calculators/finance/emi", calc.URL)

	rec = get(t, h, "/api/catalog/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var health catalog.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.NotEmpty(t, health.Calculators)

	for _, path := range []string{"/api/catalog/finance/nope", "/api/catalog/nope", "/api/nothing"} {
		rec = get(t, h, path)
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		var envelope map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		require.Equal(t, "not_found", envelope["error"], path)
		require.NotEmpty(t, envelope["request_id"], path)
	}
}

func TestAPICurrencyPreference(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)

	rec := get(t, h, "/api/currencies")
	require.Equal(t, http.StatusOK, rec.Code)
	var list currenciesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, "USD", list.Default.Code)
	require.Len(t, list.Currencies, len(currency.DefaultRegistry().Currencies()))

	rec = get(t, h, "/api/preferences/currency")
	var pref preferenceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pref))
	require.Equal(t, "USD", pref.Currency.Code)

	put := func(body string, carry *httptest.ResponseRecorder) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/preferences/currency", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		withCSRF(req)
		if carry != nil {
			testutil.CarryCookies(carry, req)
		}
		return testutil.Do(t, h, req)
	}

	saved := put(`{"code":"GBP"}`, nil)
	require.Equal(t, http.StatusOK, saved.Code)
	require.NoError(t, json.Unmarshal(saved.Body.Bytes(), &pref))
	require.Equal(t, "GBP", pref.Currency.Code)

	rejected := put(`{"code":"XYZ"}`, saved)
	require.Equal(t, http.StatusBadRequest, rejected.Code)
	require.Contains(t, rejected.Body.String(), `"error":"invalid_currency"`)
	require.Empty(t, rejected.Result().Cookies())

	malformed := put(`{"code":`, saved)
	require.Equal(t, http.StatusBadRequest, malformed.Code)
	require.Contains(t, malformed.Body.String(), `"error":"invalid_request"`)

	req := httptest.NewRequest(http.MethodGet, "/api/preferences/currency", nil)
	testutil.CarryCookies(saved, req)
	rec = testutil.Do(t, h, req)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pref))
	require.Equal(t, "GBP", pref.Currency.Code, "rejected writes leave the stored preference alone")
	require.False(t, pref.Stale)
}

func TestCSRFProtection(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)

	rec := get(t, h, "/")
	var issued string
	for _, c := range rec.Result().Cookies() {
		if c.Name == csrfCookieName {
			issued = c.Value
		}
	}
	require.True(t, validCSRFToken(issued))
	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, issued, doc.Find(`input[name="csrf_token"]`).AttrOr("value", ""))

	form := url.Values{"code": {"EUR"}}
	req := httptest.NewRequest(http.MethodPost, "/preferences/currency", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: issued})
	rec = testutil.Do(t, h, req)
	require.Equal(t, http.StatusForbidden, rec.Code, "form without token")

	req = httptest.NewRequest(http.MethodPut, "/api/preferences/currency", strings.NewReader(`{"code":"EUR"}`))
	req.Header.Set(csrfHeader, testCSRFToken)
	rec = testutil.Do(t, h, req)
	require.Equal(t, http.StatusForbidden, rec.Code, "header without cookie")
	require.Contains(t, rec.Body.String(), `"error":"csrf_failed"`)

	req = httptest.NewRequest(http.MethodPut, "/api/preferences/currency", strings.NewReader(`{"code":"EUR"}`))
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: issued})
	req.Header.Set(csrfHeader, issued)
	rec = testutil.Do(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := New(Deps{})
	require.Error(t, err)
}
