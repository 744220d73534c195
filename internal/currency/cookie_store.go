package currency

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	defaultCookieName   = "totalcalc_prefs"
	defaultCookieMaxAge = 365 * 24 * time.Hour
)

// ErrInvalidCookieConfig indicates the codec was configured without keys.
var ErrInvalidCookieConfig = errors.New("currency: invalid cookie config")

// CookieConfig controls how preferences are persisted on the client.
type CookieConfig struct {
	Name     string
	HashKey  []byte
	BlockKey []byte
	Secure   bool
	MaxAge   time.Duration
	Now      func() time.Time
}

// CookieCodec signs (and optionally encrypts) the preference cookie. It is
// safe for concurrent use and is shared by all requests.
type CookieCodec struct {
	cfg   CookieConfig
	codec *securecookie.SecureCookie
}

// NewCookieCodec constructs a codec from cfg.
func NewCookieCodec(cfg CookieConfig) (*CookieCodec, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidCookieConfig)
	}
	if cfg.Name == "" {
		cfg.Name = defaultCookieName
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultCookieMaxAge
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	var blockKey []byte
	if len(cfg.BlockKey) > 0 {
		blockKey = cfg.BlockKey
	}
	codec := securecookie.New(cfg.HashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.MaxAge.Seconds()))
	return &CookieCodec{cfg: cfg, codec: codec}, nil
}

// CookieName returns the name of the preference cookie.
func (c *CookieCodec) CookieName() string { return c.cfg.Name }

// Store binds the codec to a single request/response pair.
func (c *CookieCodec) Store(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{codec: c, w: w, r: r}
}

// CookieStore is a Store backed by the client's preference cookie. Writes are
// visible to later reads in the same request.
type CookieStore struct {
	codec *CookieCodec
	w     http.ResponseWriter
	r     *http.Request

	once   sync.Once
	mu     sync.Mutex
	values map[string]string
}

// Get implements Store.
func (s *CookieStore) Get(key string) (string, bool) {
	s.load()
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set implements Store and emits an updated Set-Cookie header.
func (s *CookieStore) Set(key, value string) error {
	s.load()
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.values)+1)
	for k, v := range s.values {
		next[k] = v
	}
	next[key] = value

	encoded, err := s.codec.codec.Encode(s.codec.cfg.Name, next)
	if err != nil {
		return fmt.Errorf("currency: encode preference cookie: %w", err)
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.codec.cfg.Name,
		Value:    encoded,
		Path:     "/",
		Expires:  s.codec.cfg.Now().Add(s.codec.cfg.MaxAge),
		MaxAge:   int(s.codec.cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.codec.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.values = next
	return nil
}

// load decodes the request cookie once. A missing, expired or tampered cookie
// reads as empty.
func (s *CookieStore) load() {
	s.once.Do(func() {
		values := map[string]string{}
		if s.r != nil {
			if c, err := s.r.Cookie(s.codec.cfg.Name); err == nil && c.Value != "" {
				var decoded map[string]string
				if err := s.codec.codec.Decode(s.codec.cfg.Name, c.Value, &decoded); err == nil {
					values = decoded
				}
			}
		}
		s.mu.Lock()
		s.values = values
		s.mu.Unlock()
	})
}
