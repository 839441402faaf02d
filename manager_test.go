package goSession

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/store"
)

// cookieJar replays Set-Cookie headers the way a browser would: expired
// cookies disappear, fresh ones overwrite.
type cookieJar map[string]string

func (j cookieJar) apply(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(j, c.Name)
			continue
		}
		j[c.Name] = c.Value
	}
}

func (j cookieJar) newRequest() *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for name, value := range j {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return r
}

func (j cookieJar) chunkCount() int {
	n := 0
	for name := range j {
		if strings.HasPrefix(name, "gosession_") && name != "gosession_lat" && name != "gosession_id" {
			n++
		}
	}
	return n
}

func newTestManager(t *testing.T, now *time.Time, mutate func(*Config)) *Manager {
	t.Helper()

	cfg := validTestConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	builder := New().WithConfig(cfg)
	if now != nil {
		builder = builder.WithClock(func() time.Time { return *now })
	}

	mgr, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(mgr.Close)
	return mgr
}

func commitSession(t *testing.T, mgr *Manager, jar cookieJar, touch func(*Session)) *httptest.ResponseRecorder {
	t.Helper()

	s := mgr.Load(jar.newRequest())
	if touch != nil {
		touch(s)
	}

	rec := httptest.NewRecorder()
	if err := mgr.Commit(rec, s); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	jar.apply(t, rec)
	return rec
}

func TestManagerRoundTrip(t *testing.T) {
	mgr := newTestManager(t, nil, nil)
	jar := cookieJar{}

	commitSession(t, mgr, jar, func(s *Session) {
		s.SetString("user", "alice")
		s.SetInt64("visits", 3)
		s.SetBool("admin", true)
		s.SetFloat64("score", 1.5)
		s.SetBytes("blob", []byte{0x00, 0xFF})
	})

	if jar.chunkCount() == 0 {
		t.Fatal("no payload cookies written")
	}
	if _, ok := jar["gosession_lat"]; !ok {
		t.Fatal("no last-access cookie written")
	}

	s := mgr.Load(jar.newRequest())
	if got, ok := s.GetString("user"); !ok || got != "alice" {
		t.Fatalf("GetString = %q, %v", got, ok)
	}
	if got, ok := s.GetInt64("visits"); !ok || got != 3 {
		t.Fatalf("GetInt64 = %d, %v", got, ok)
	}
	if got, ok := s.GetBool("admin"); !ok || !got {
		t.Fatalf("GetBool = %v, %v", got, ok)
	}
	if got, ok := s.GetFloat64("score"); !ok || got != 1.5 {
		t.Fatalf("GetFloat64 = %v, %v", got, ok)
	}
	if got, ok := s.GetBytes("blob"); !ok || !bytes.Equal(got, []byte{0x00, 0xFF}) {
		t.Fatalf("GetBytes = %v, %v", got, ok)
	}
}

func TestManagerUntouchedSessionWritesNothing(t *testing.T) {
	mgr := newTestManager(t, nil, nil)
	jar := cookieJar{}

	rec := commitSession(t, mgr, jar, nil)
	if got := len(rec.Result().Cookies()); got != 0 {
		t.Fatalf("untouched session wrote %d cookies", got)
	}
}

func TestManagerExactlyOneLastAccessCookie(t *testing.T) {
	mgr := newTestManager(t, nil, nil)
	jar := cookieJar{}

	commitSession(t, mgr, jar, func(s *Session) { s.SetString("k", "v") })

	// Read-only touch: refreshes lat exactly once, rewrites no payload.
	rec := commitSession(t, mgr, jar, func(s *Session) { s.GetString("k") })

	lat, payloadChunks := 0, 0
	for _, c := range rec.Result().Cookies() {
		switch {
		case c.Name == "gosession_lat":
			lat++
		case strings.HasPrefix(c.Name, "gosession_") && c.Name != "gosession_id":
			payloadChunks++
		}
	}
	if lat != 1 {
		t.Fatalf("wrote %d last-access cookies, want exactly 1", lat)
	}
	if payloadChunks != 0 {
		t.Fatalf("clean session rewrote %d payload cookies", payloadChunks)
	}
}

func TestManagerTamperedCookieYieldsEmptySession(t *testing.T) {
	mgr := newTestManager(t, nil, nil)
	jar := cookieJar{}

	commitSession(t, mgr, jar, func(s *Session) { s.SetString("user", "alice") })

	value := jar["gosession_0"]
	tampered := []byte(value)
	tampered[0] ^= 0x01
	jar["gosession_0"] = string(tampered)

	s := mgr.Load(jar.newRequest())
	if _, ok := s.GetString("user"); ok {
		t.Fatal("tampered cookie produced a non-empty session")
	}
	if s.Len() != 0 {
		t.Fatalf("tampered session has %d entries", s.Len())
	}
	if mgr.MetricsSnapshot().Counters[MetricMalformedCookie] == 0 {
		t.Fatal("malformed cookie metric not incremented")
	}
}

func TestManagerMalformedCookieMatrix(t *testing.T) {
	mgr := newTestManager(t, nil, nil)

	for _, value := range []string{"", "   ", "foo", ":", "::", "invalid:sequence", "a:b:c"} {
		jar := cookieJar{"gosession_0": value}
		s := mgr.Load(jar.newRequest())
		if s.Len() != 0 {
			t.Fatalf("value %q produced %d entries, want empty session", value, s.Len())
		}
	}
}

func TestManagerKeyIsolation(t *testing.T) {
	mgrA := newTestManager(t, nil, nil)
	mgrB := newTestManager(t, nil, func(c *Config) {
		c.Crypto.SecretKey = bytes.Repeat([]byte{0x99}, 16)
	})
	mgrC := newTestManager(t, nil, func(c *Config) {
		c.Crypto.SecretToken = []byte("other-signing-token")
	})

	jar := cookieJar{}
	commitSession(t, mgrA, jar, func(s *Session) { s.SetString("user", "alice") })

	for name, other := range map[string]*Manager{"key": mgrB, "token": mgrC} {
		s := other.Load(jar.newRequest())
		if _, ok := s.GetString("user"); ok {
			t.Fatalf("session decoded under a different %s", name)
		}
	}
}

func TestManagerChunkingAndShrink(t *testing.T) {
	mgr := newTestManager(t, nil, func(c *Config) { c.Cookie.MaxChunkSize = 64 })
	jar := cookieJar{}

	commitSession(t, mgr, jar, func(s *Session) {
		s.SetString("big", strings.Repeat("x", 1000))
	})

	wide := jar.chunkCount()
	if wide < 2 {
		t.Fatalf("large payload produced %d chunks, want several", wide)
	}

	s := mgr.Load(jar.newRequest())
	if got, ok := s.GetString("big"); !ok || len(got) != 1000 {
		t.Fatalf("chunked payload did not round trip: %v, %d bytes", ok, len(got))
	}

	// Replace with a small payload: surplus indices must be expired.
	rec := commitSession(t, mgr, jar, func(s *Session) {
		s.Remove("big")
		s.SetString("small", "v")
	})

	narrow := jar.chunkCount()
	if narrow >= wide {
		t.Fatalf("shrink kept %d chunks, had %d", narrow, wide)
	}

	expired := 0
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 && strings.HasPrefix(c.Name, "gosession_") {
			expired++
		}
	}
	if expired == 0 {
		t.Fatal("no surplus chunk cookies were expired")
	}

	s = mgr.Load(jar.newRequest())
	if got, ok := s.GetString("small"); !ok || got != "v" {
		t.Fatalf("post-shrink session lost data: %q, %v", got, ok)
	}
}

func TestManagerExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	mgr := newTestManager(t, &now, func(c *Config) {
		c.Expiry.MaxInactivityInterval = time.Second
	})
	jar := cookieJar{}

	commitSession(t, mgr, jar, func(s *Session) { s.SetString("user", "alice") })

	// Exactly at the interval: still alive.
	now = now.Add(time.Second)
	s := mgr.Load(jar.newRequest())
	if _, ok := s.GetString("user"); !ok {
		t.Fatal("session expired at the inactivity boundary")
	}

	// Past the interval: gone, and the stale cookies get cleared.
	now = now.Add(1100 * time.Millisecond)
	rec := commitSession(t, mgr, jar, func(s *Session) {
		if _, ok := s.GetString("user"); ok {
			t.Fatal("session survived past the inactivity interval")
		}
	})

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 && strings.HasPrefix(c.Name, "gosession_") {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expired session left its payload cookies on the client")
	}
	if mgr.MetricsSnapshot().Counters[MetricSessionExpired] == 0 {
		t.Fatal("expired session metric not incremented")
	}
}

func TestManagerExpiryDisabled(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	mgr := newTestManager(t, &now, func(c *Config) {
		c.Expiry.MaxInactivityInterval = 0
	})
	jar := cookieJar{}

	commitSession(t, mgr, jar, func(s *Session) { s.SetString("user", "alice") })

	now = now.Add(365 * 24 * time.Hour)
	s := mgr.Load(jar.newRequest())
	if _, ok := s.GetString("user"); !ok {
		t.Fatal("session expired with expiry disabled")
	}
}

func TestManagerTerminate(t *testing.T) {
	mgr := newTestManager(t, nil, nil)
	jar := cookieJar{}

	commitSession(t, mgr, jar, func(s *Session) { s.SetString("user", "alice") })
	if len(jar) == 0 {
		t.Fatal("expected session cookies before terminate")
	}

	commitSession(t, mgr, jar, func(s *Session) { s.Terminate() })

	if len(jar) != 0 {
		t.Fatalf("terminate left cookies behind: %v", jar)
	}

	s := mgr.Load(jar.newRequest())
	if s.Len() != 0 {
		t.Fatal("terminated session still has entries")
	}
}

func TestManagerIdentifierCookie(t *testing.T) {
	mgr := newTestManager(t, nil, nil)
	jar := cookieJar{}

	commitSession(t, mgr, jar, func(s *Session) { s.SetString("k", "v") })

	first, ok := jar["gosession_id"]
	if !ok || first == "" {
		t.Fatal("identifier cookie not issued")
	}

	commitSession(t, mgr, jar, func(s *Session) { s.SetString("k", "v2") })
	if jar["gosession_id"] != first {
		t.Fatal("identifier changed across requests")
	}

	s := mgr.Load(jar.newRequest())
	if s.ID() != first {
		t.Fatalf("Session.ID = %q, want %q", s.ID(), first)
	}
}

func TestManagerIdentifierDisabled(t *testing.T) {
	mgr := newTestManager(t, nil, func(c *Config) { c.Cookie.IdentifierEnabled = false })
	jar := cookieJar{}

	commitSession(t, mgr, jar, func(s *Session) { s.SetString("k", "v") })

	if _, ok := jar["gosession_id"]; ok {
		t.Fatal("identifier cookie issued while disabled")
	}
	if jar.chunkCount() == 0 {
		t.Fatal("payload cookies missing with identifier disabled")
	}
}

func TestManagerReloadInvalidatesOldCookies(t *testing.T) {
	mgr := newTestManager(t, nil, nil)
	jar := cookieJar{}

	commitSession(t, mgr, jar, func(s *Session) { s.SetString("user", "alice") })

	next := validTestConfig()
	next.Crypto.SecretKey = bytes.Repeat([]byte{0x77}, 16)
	if err := mgr.Reload(next); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	s := mgr.Load(jar.newRequest())
	if _, ok := s.GetString("user"); ok {
		t.Fatal("old-key cookie decoded after key rotation")
	}
	if mgr.MetricsSnapshot().Counters[MetricConfigReloaded] != 1 {
		t.Fatal("reload metric not incremented")
	}
}

func TestManagerReloadRejectsInvalidConfig(t *testing.T) {
	mgr := newTestManager(t, nil, nil)
	before := mgr.Config()

	bad := validTestConfig()
	bad.Crypto.Algorithm = "aes/cbc/nopadding"
	if err := mgr.Reload(bad); !errors.Is(err, ErrNoPaddingAlgorithm) {
		t.Fatalf("Reload = %v, want ErrNoPaddingAlgorithm", err)
	}

	// Active config untouched.
	if mgr.Config().Crypto.Algorithm != before.Crypto.Algorithm {
		t.Fatal("failed reload replaced the active config")
	}
}

func TestManagerInFlightSessionKeepsItsRuntime(t *testing.T) {
	mgr := newTestManager(t, nil, nil)
	jar := cookieJar{}

	commitSession(t, mgr, jar, func(s *Session) { s.SetString("user", "alice") })

	// Load before the reload, read after: the captured runtime still
	// decodes under the old key.
	s := mgr.Load(jar.newRequest())

	next := validTestConfig()
	next.Crypto.SecretKey = bytes.Repeat([]byte{0x88}, 16)
	if err := mgr.Reload(next); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if got, ok := s.GetString("user"); !ok || got != "alice" {
		t.Fatal("in-flight session lost its config generation")
	}
}

func TestManagerDoubleCommit(t *testing.T) {
	mgr := newTestManager(t, nil, nil)

	s := mgr.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.SetString("k", "v")

	rec := httptest.NewRecorder()
	if err := mgr.Commit(rec, s); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := mgr.Commit(rec, s); !errors.Is(err, ErrSessionCommitted) {
		t.Fatalf("second Commit = %v, want ErrSessionCommitted", err)
	}
}

func TestManagerClosedRejectsCommit(t *testing.T) {
	mgr := newTestManager(t, nil, nil)

	s := mgr.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.SetString("k", "v")
	mgr.Close()

	if err := mgr.Commit(httptest.NewRecorder(), s); !errors.Is(err, ErrManagerClosed) {
		t.Fatalf("Commit after Close = %v, want ErrManagerClosed", err)
	}
	if err := mgr.Reload(validTestConfig()); !errors.Is(err, ErrManagerClosed) {
		t.Fatalf("Reload after Close = %v, want ErrManagerClosed", err)
	}
}

func TestManagerCookieAttributes(t *testing.T) {
	mgr := newTestManager(t, nil, func(c *Config) {
		c.Cookie.Path = "/app"
		c.Cookie.Domain = "example.com"
		c.Cookie.Secure = true
		c.Cookie.SameSite = http.SameSiteStrictMode
	})
	jar := cookieJar{}

	rec := commitSession(t, mgr, jar, func(s *Session) { s.SetString("k", "v") })

	for _, c := range rec.Result().Cookies() {
		if c.Path != "/app" || c.Domain != "example.com" || !c.Secure || !c.HttpOnly {
			t.Fatalf("cookie %q attributes wrong: %+v", c.Name, c)
		}
	}
}

func TestManagerStoreMode(t *testing.T) {
	mem := store.NewMemoryStore()

	cfg := validTestConfig()
	mgr, err := New().WithConfig(cfg).WithStore(mem).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(mgr.Close)

	jar := cookieJar{}
	commitSession(t, mgr, jar, func(s *Session) { s.SetString("user", "alice") })

	if jar.chunkCount() != 0 {
		t.Fatal("store mode wrote payload cookies to the client")
	}
	if _, ok := jar["gosession_id"]; !ok {
		t.Fatal("store mode did not issue an identifier cookie")
	}
	if mem.Len() != 1 {
		t.Fatalf("store holds %d records, want 1", mem.Len())
	}

	s := mgr.Load(jar.newRequest())
	if got, ok := s.GetString("user"); !ok || got != "alice" {
		t.Fatalf("store mode round trip failed: %q, %v", got, ok)
	}

	commitSession(t, mgr, jar, func(s *Session) { s.Terminate() })
	if mem.Len() != 0 {
		t.Fatal("terminate left the stored record behind")
	}
	if len(jar) != 0 {
		t.Fatalf("terminate left cookies behind: %v", jar)
	}
}

func TestManagerStoreModeReadOnlyExtendsTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	mem := store.NewMemoryStore().WithClock(func() time.Time { return now })

	cfg := validTestConfig()
	cfg.Expiry.MaxInactivityInterval = time.Second

	mgr, err := New().
		WithConfig(cfg).
		WithStore(mem).
		WithClock(func() time.Time { return now }).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(mgr.Close)

	jar := cookieJar{}
	commitSession(t, mgr, jar, func(s *Session) { s.SetString("user", "alice") })

	// Read-only activity inside the window must refresh the record's
	// TTL the same way it refreshes the last-access cookie.
	now = now.Add(900 * time.Millisecond)
	commitSession(t, mgr, jar, func(s *Session) {
		if _, ok := s.GetString("user"); !ok {
			t.Fatal("session lost inside the inactivity window")
		}
	})

	// 1.5s after the write but only 0.6s after the last activity: the
	// session is alive by the inactivity rule, so the record must be too.
	now = now.Add(600 * time.Millisecond)
	s := mgr.Load(jar.newRequest())
	if got, ok := s.GetString("user"); !ok || got != "alice" {
		t.Fatal("read-only session dropped because the store TTL lapsed")
	}
	if mem.Len() != 1 {
		t.Fatalf("store holds %d records, want 1", mem.Len())
	}
}

func TestBuilderStoreRequiresIdentifier(t *testing.T) {
	cfg := validTestConfig()
	cfg.Cookie.IdentifierEnabled = false

	_, err := New().WithConfig(cfg).WithStore(store.NewMemoryStore()).Build()
	if !errors.Is(err, ErrStoreRequiresIdentifier) {
		t.Fatalf("Build = %v, want ErrStoreRequiresIdentifier", err)
	}
}
