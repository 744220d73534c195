package view

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/totalcalc-web/internal/catalog"
	"finitefield.org/totalcalc-web/internal/currency"
	"finitefield.org/totalcalc-web/internal/nav"
	"finitefield.org/totalcalc-web/internal/seo"
	"finitefield.org/totalcalc-web/internal/testutil"
)

func baseData() Data {
	reg := currency.DefaultRegistry()
	meta := seo.NewMeta("TheTotalCalc", "Home", "Free calculators", "https://example.test")
	meta.AddJSONLD(seo.WebSite("TheTotalCalc", "https://example.test"))
	return Data{
		SiteName:   "TheTotalCalc",
		Path:       "/",
		SEO:        meta,
		Currency:   reg.Default(),
		Currencies: reg.Currencies(),
	}
}

func TestRenderCalculatorPage(t *testing.T) {
	t.Parallel()

	r, err := New(Options{})
	require.NoError(t, err)
	for _, name := range []string{"home", "category", "calculator", "page", "error"} {
		require.True(t, r.Has(name), name)
	}

	cat := catalog.Category{ID: "health", Slug: "health-calculators", Name: "Health", Color: catalog.ColorRed}
	calc := catalog.Calculator{ID: "bmi", Slug: "bmi", Category: "health", Name: "BMI Calculator", Color: catalog.ColorRed}
	data := baseData()
	data.Path = "/calculators/health/bmi"
	data.Category = &cat
	data.Calculator = &calc
	data.Nav = nav.Build(data.Path, []catalog.Category{cat})
	data.Breadcrumbs = nav.Calculator(cat, calc)
	data.Analytics.GA4MeasurementID = "G-TEST1"

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, "calculator", data))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, "BMI Calculator", doc.Find("main h1").Text())
	require.Equal(t, "Home | TheTotalCalc", doc.Find("title").Text())
	require.Equal(t, "/health-calculators", doc.Find(".site-nav a.active").AttrOr("href", ""))
	require.Equal(t, 3, doc.Find(".breadcrumbs li").Length())
	require.Equal(t, "USD", doc.Find("select[name=code] option[selected]").AttrOr("value", ""))
	require.Equal(t, "/calculators/health/bmi", doc.Find("input[name=redirect]").AttrOr("value", ""))
	require.Contains(t, doc.Find(`script[type="application/ld+json"]`).Text(), `"@type":"WebSite"`)
	require.True(t, doc.Find("article.calculator").HasClass("accent-red"))
	require.Equal(t, "$1,000.00", doc.Find(".sample-amount").Text())
	require.Contains(t, doc.Find(`script[src*="googletagmanager"]`).AttrOr("src", ""), "id=G-TEST1")
	require.Contains(t, rec.Body.String(), `gtag('config', "G-TEST1"`)
}

func TestRenderErrorStatus(t *testing.T) {
	t.Parallel()

	r, err := New(Options{})
	require.NoError(t, err)

	data := baseData()
	data.Status = http.StatusNotFound
	data.Message = "No calculator at this address."

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusNotFound, "error", data))
	require.Equal(t, http.StatusNotFound, rec.Code)
	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, "Page not found", doc.Find("main h1").Text())

	rec = httptest.NewRecorder()
	require.Error(t, r.Render(rec, http.StatusOK, "missing", data))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDevModeReparsesFromDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	layout, err := os.ReadFile(filepath.Join("templates", layoutFile))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, layoutFile), layout, 0o600))
	page := filepath.Join(dir, "home.tmpl")
	require.NoError(t, os.WriteFile(page, []byte(`{{define "content"}}<h1>v1</h1>{{end}}`), 0o600))

	r, err := New(Options{Dev: true, Dir: dir})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(page, []byte(`{{define "content"}}<h1>v2</h1>{{end}}`), 0o600))
	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, "home", baseData()))
	require.Equal(t, "v2", testutil.ParseHTML(t, rec.Body.Bytes()).Find("main h1").Text())
}

func TestAssetsCaching(t *testing.T) {
	t.Parallel()

	h := http.StripPrefix("/assets", Assets())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	require.Contains(t, rec.Header().Get("Cache-Control"), "max-age")

	req := httptest.NewRequest(http.MethodGet, "/assets/site.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)
}
