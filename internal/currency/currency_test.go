package currency

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func scenarioRegistry(t *testing.T) *Registry {
	t.Helper()

	r, err := NewRegistry("USD",
		Config{Code: "USD", Symbol: "$", Name: "US Dollar"},
		Config{Code: "EUR", Symbol: "€", Name: "Euro"},
		Config{Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
	)
	require.NoError(t, err)
	return r
}

func TestPreferencesScenario(t *testing.T) {
	t.Parallel()

	prefs := NewPreferences(scenarioRegistry(t), NewMemoryStore())
	require.Equal(t, "USD", prefs.Preferred().Code)

	cfg, err := prefs.SetPreferred("INR")
	require.NoError(t, err)
	require.Equal(t, "₹", cfg.Symbol)
	require.Equal(t, "INR", prefs.Preferred().Code)
}

func TestSetPreferredRejectsUnknownCode(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	prefs := NewPreferences(scenarioRegistry(t), store)
	_, err := prefs.SetPreferred("EUR")
	require.NoError(t, err)

	_, err = prefs.SetPreferred("XYZ")
	require.ErrorIs(t, err, ErrInvalidCurrency)
	require.Equal(t, "EUR", prefs.Preferred().Code)

	stored, ok := store.Get(PreferenceKey)
	require.True(t, ok)
	require.Equal(t, "EUR", stored)
}

func TestSetPreferredIsIdempotentAndCaseInsensitive(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	prefs := NewPreferences(scenarioRegistry(t), store)
	for i := 0; i < 3; i++ {
		cfg, err := prefs.SetPreferred(" inr ")
		require.NoError(t, err)
		require.Equal(t, "INR", cfg.Code)
	}
	stored, _ := store.Get(PreferenceKey)
	require.Equal(t, "INR", stored)
}

func TestPreferredFallsBackOnStaleValue(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	require.NoError(t, store.Set(PreferenceKey, "GBP"))

	prefs := NewPreferences(scenarioRegistry(t), store)
	require.Equal(t, "USD", prefs.Preferred().Code)
	require.True(t, prefs.Stale())

	_, err := prefs.SetPreferred("EUR")
	require.NoError(t, err)
	require.False(t, prefs.Stale())
}

func TestPreferencesLastWriteWins(t *testing.T) {
	t.Parallel()

	prefs := NewPreferences(scenarioRegistry(t), NewMemoryStore())
	var wg sync.WaitGroup
	for _, code := range []string{"USD", "EUR", "INR", "EUR", "USD"} {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			_, _ = prefs.SetPreferred(code)
		}(code)
	}
	wg.Wait()
	require.Contains(t, []string{"USD", "EUR", "INR"}, prefs.Preferred().Code)

	_, err := prefs.SetPreferred("INR")
	require.NoError(t, err)
	require.Equal(t, "INR", prefs.Preferred().Code)
}

func TestNewRegistryValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		def     string
		configs []Config
	}{
		{name: "empty", def: "USD"},
		{name: "lower case code", def: "usd", configs: []Config{{Code: "usd"}}},
		{name: "not iso", def: "XYZ", configs: []Config{{Code: "XYZ"}}},
		{name: "duplicate", def: "USD", configs: []Config{{Code: "USD"}, {Code: "USD"}}},
		{name: "unregistered default", def: "EUR", configs: []Config{{Code: "USD"}}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r, err := NewRegistry(tc.def, tc.configs...)
			require.Error(t, err)
			require.Nil(t, r)
		})
	}
}

func TestDefaultRegistryOrderIsStable(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	first := r.Currencies()
	second := r.Currencies()
	require.Equal(t, first, second)
	require.Equal(t, "USD", first[0].Code)
	require.Equal(t, "USD", r.Default().Code)

	first[0].Code = "mutated"
	require.Equal(t, "USD", r.Currencies()[0].Code)

	inr, ok := r.Lookup("inr")
	require.True(t, ok)
	require.Equal(t, "₹", inr.Symbol)

	eur, err := r.WithDefault("EUR")
	require.NoError(t, err)
	require.Equal(t, "EUR", eur.Default().Code)
	require.Equal(t, r.Currencies(), eur.Currencies())

	_, err = r.WithDefault("XYZ")
	require.True(t, errors.Is(err, ErrInvalidCurrency))
}

func newTestCodec(t *testing.T) *CookieCodec {
	t.Helper()

	codec, err := NewCookieCodec(CookieConfig{
		HashKey: []byte("12345678901234567890123456789012"),
		Now:     func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return codec
}

func TestCookieStorePersistsAcrossRequests(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	registry := scenarioRegistry(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/preferences/currency", nil)
	prefs := NewPreferences(registry, codec.Store(rec, req))
	require.Equal(t, "USD", prefs.Preferred().Code)

	_, err := prefs.SetPreferred("INR")
	require.NoError(t, err)
	require.Equal(t, "INR", prefs.Preferred().Code, "read-your-writes within one request")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, codec.CookieName(), cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	later := NewPreferences(registry, codec.Store(httptest.NewRecorder(), next))
	require.Equal(t, "INR", later.Preferred().Code)
}

func TestCookieStoreIgnoresTamperedCookie(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: codec.CookieName(), Value: "tampered"})

	store := codec.Store(httptest.NewRecorder(), req)
	_, ok := store.Get(PreferenceKey)
	require.False(t, ok)
	require.Equal(t, "USD", NewPreferences(scenarioRegistry(t), store).Preferred().Code)
}

func TestCookieStoreInvalidWriteEmitsNoCookie(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	rec := httptest.NewRecorder()
	prefs := NewPreferences(scenarioRegistry(t), codec.Store(rec, httptest.NewRequest(http.MethodPost, "/", nil)))

	_, err := prefs.SetPreferred("XYZ")
	require.ErrorIs(t, err, ErrInvalidCurrency)
	require.Empty(t, rec.Result().Cookies())
}

func TestNewCookieCodecRequiresHashKey(t *testing.T) {
	t.Parallel()

	_, err := NewCookieCodec(CookieConfig{})
	require.ErrorIs(t, err, ErrInvalidCookieConfig)
}

func TestConfigFormat(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	cases := []struct {
		code  string
		minor int64
		want  string
	}{
		{"USD", 123456, "$1,234.56"},
		{"USD", -5, "-$0.05"},
		{"JPY", 123456, "¥123,456"},
		{"CHF", 100, "CHF 1.00"},
		{"INR", 0, "₹0.00"},
	}
	for _, tc := range cases {
		cfg, ok := reg.Lookup(tc.code)
		require.True(t, ok, tc.code)
		require.Equal(t, tc.want, cfg.Format(tc.minor), tc.code)
	}
}
