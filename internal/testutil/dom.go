// Package testutil holds helpers shared by HTTP tests.
package testutil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses body into a goquery document or fails the test.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// Do serves req through h and returns the recorded response.
func Do(t testing.TB, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// CarryCookies copies every cookie set on rec onto req.
func CarryCookies(rec *httptest.ResponseRecorder, req *http.Request) {
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
}
