package goSession

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goSession/cookie"
	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/crypto"
	"github.com/MrEthical07/goSession/internal/payload"
	"github.com/MrEthical07/goSession/store"
)

// runtime is one immutable configuration generation: the validated
// config plus the cipher/signer/codec built from it. Reload swaps the
// whole runtime atomically; a request captures one runtime at load time
// and uses it through commit, so it can never mix an old encryption key
// with a new verification token.
type runtime struct {
	config Config
	codec  *cookie.Codec
}

func newRuntime(cfg Config) (*runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cip, err := crypto.NewCipher(cfg.Crypto.Algorithm, cfg.Crypto.SecretKey)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.NewSigner(cfg.Crypto.Digest, cfg.Crypto.SecretToken)
	if err != nil {
		return nil, err
	}

	return &runtime{
		config: cfg,
		codec:  cookie.NewCodec(cip, sig, cfg.Cookie.Name, cfg.Cookie.MaxChunkSize),
	}, nil
}

// Manager defines a public type used by goSession APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// Manager methods are safe to call from multiple goroutines; the
// [Session] values it hands out are not, and belong to one request each.
type Manager struct {
	current    atomic.Pointer[runtime]
	clock      Clock
	store      store.Store
	codecs     map[string]ValueCodec
	metrics    *Metrics
	dispatcher *internalaudit.Dispatcher
	closed     atomic.Bool
}

// Load attaches a lazy [Session] to the request. No cookie is parsed and
// no crypto runs until the first read or write on the returned session.
func (m *Manager) Load(r *http.Request) *Session {
	rt := m.current.Load()

	s := &Session{
		mgr:            m,
		rt:             rt,
		ctx:            r.Context(),
		payloadCookies: map[string]string{},
		prevMaxChunk:   -1,
	}

	for _, c := range r.Cookies() {
		switch c.Name {
		case rt.config.Cookie.LastAccessName:
			s.lastAccess = c.Value
		case rt.config.Cookie.IdentifierName:
			if _, err := uuid.Parse(c.Value); err == nil {
				s.id = c.Value
			}
		default:
			s.payloadCookies[c.Name] = c.Value
		}
	}

	return s
}

// load performs the deferred Unloaded -> Loaded transition. Every
// failure path lands on Loaded(clean, empty): a corrupted, tampered,
// expired or foreign-key cookie set must never turn into a request
// error.
func (m *Manager) load(s *Session) {
	s.loaded = true
	s.index = map[string]int{}

	rt := s.rt
	s.prevMaxChunk = rt.codec.MaxChunkIndex(s.payloadCookies)

	hadCookies := s.prevMaxChunk >= 0 || (m.store != nil && s.id != "")

	if interval := rt.config.Expiry.MaxInactivityInterval; interval > 0 {
		last, ok := m.decodeLastAccess(rt, s.lastAccess)
		if !ok || m.clock().Sub(last) > interval {
			if hadCookies {
				// Stale payload cookies must not outlive the expiry
				// decision: a dirty empty session clears them on commit.
				s.dirty = true
				m.metrics.Inc(MetricSessionExpired)
				m.audit(s.ctx, AuditEvent{
					EventType: EventSessionExpired,
					SessionID: s.id,
					Chunks:    s.prevMaxChunk + 1,
				})
			} else {
				m.metrics.Inc(MetricSessionEmpty)
			}
			return
		}
	}

	if !hadCookies {
		m.metrics.Inc(MetricSessionEmpty)
		return
	}

	data, ok := m.loadPayload(s)
	if !ok {
		s.dirty = true
		m.metrics.Inc(MetricMalformedCookie)
		m.audit(s.ctx, AuditEvent{
			EventType: EventMalformedCookie,
			SessionID: s.id,
			Reason:    "undecodable cookie set",
			Chunks:    s.prevMaxChunk + 1,
		})
		return
	}
	if data == nil {
		m.metrics.Inc(MetricSessionEmpty)
		return
	}

	entries, err := payload.Decode(data)
	if err != nil {
		s.dirty = true
		m.metrics.Inc(MetricMalformedCookie)
		m.audit(s.ctx, AuditEvent{
			EventType: EventMalformedCookie,
			SessionID: s.id,
			Reason:    "malformed payload",
		})
		return
	}

	s.entries = entries
	s.reindex()
	m.metrics.Inc(MetricSessionLoaded)
	m.audit(s.ctx, AuditEvent{
		EventType: EventSessionLoaded,
		SessionID: s.id,
		Chunks:    s.prevMaxChunk + 1,
	})
}

// loadPayload fetches the raw serialized payload. In client-side mode it
// comes out of the chunked cookies; with a server-side store wired, out
// of the store keyed by the identifier cookie. The bool is false only
// for malformed or tampered input; (nil, true) means no session exists.
func (m *Manager) loadPayload(s *Session) ([]byte, bool) {
	if m.store != nil {
		if s.id == "" {
			return nil, true
		}
		data, err := m.store.Load(s.ctx, s.id)
		if err != nil {
			m.metrics.Inc(MetricStoreFailure)
			m.audit(s.ctx, AuditEvent{
				EventType: EventStoreFailure,
				SessionID: s.id,
				Reason:    err.Error(),
			})
			return nil, true
		}
		return data, true
	}

	if s.prevMaxChunk < 0 {
		return nil, true
	}
	data, ok := s.rt.codec.Decode(s.payloadCookies)
	if !ok {
		return nil, false
	}
	return data, true
}

// Commit writes the session outcome to the response. It must run before
// the first response byte; the middleware package takes care of that
// ordering for net/http handlers.
//
// An untouched session writes nothing. A touched session always
// refreshes the last-access cookie, exactly one per response, and
// re-encodes payload cookies only when dirty. Shrinking payloads expire
// the chunk indices they no longer use.
func (m *Manager) Commit(w http.ResponseWriter, s *Session) error {
	if m.closed.Load() {
		return ErrManagerClosed
	}
	if s.committed {
		return ErrSessionCommitted
	}
	s.committed = true

	if !s.loaded {
		return nil
	}

	start := time.Now()
	defer func() {
		m.metrics.Observe(MetricCommitLatency, time.Since(start))
	}()

	rt := s.rt
	cfg := rt.config.Cookie

	if s.terminated {
		for i := 0; i <= s.prevMaxChunk; i++ {
			http.SetCookie(w, m.expiredCookie(cfg, rt.codec.ChunkName(i)))
		}
		http.SetCookie(w, m.expiredCookie(cfg, cfg.LastAccessName))
		if cfg.IdentifierEnabled {
			http.SetCookie(w, m.expiredCookie(cfg, cfg.IdentifierName))
		}
		if m.store != nil && s.id != "" {
			if err := m.store.Remove(s.ctx, s.id); err != nil {
				m.metrics.Inc(MetricStoreFailure)
				return err
			}
		}
		m.metrics.Inc(MetricSessionTerminated)
		m.audit(s.ctx, AuditEvent{EventType: EventSessionTerminated, SessionID: s.id})
		return nil
	}

	if s.dirty {
		if err := m.storePayload(w, s); err != nil {
			return err
		}
		m.metrics.Inc(MetricSessionStored)
		m.audit(s.ctx, AuditEvent{
			EventType: EventSessionStored,
			SessionID: s.id,
			Chunks:    s.prevMaxChunk + 1,
		})
		s.dirty = false
	} else if m.store != nil && s.id != "" && len(s.entries) > 0 {
		// The record's TTL tracks the inactivity policy, so read-only
		// activity must extend it alongside the last-access cookie.
		if err := m.store.Touch(s.ctx, s.id, rt.config.Expiry.MaxInactivityInterval); err != nil {
			m.metrics.Inc(MetricStoreFailure)
			return err
		}
	}

	lat := rt.codec.EncodeValue(payload.Int64Bytes(m.clock().UnixMilli()))
	http.SetCookie(w, m.newCookie(cfg, cfg.LastAccessName, lat))

	return nil
}

func (m *Manager) storePayload(w http.ResponseWriter, s *Session) error {
	rt := s.rt
	cfg := rt.config.Cookie

	if m.store != nil {
		if len(s.entries) == 0 {
			if s.id != "" {
				if err := m.store.Remove(s.ctx, s.id); err != nil {
					m.metrics.Inc(MetricStoreFailure)
					return err
				}
				http.SetCookie(w, m.expiredCookie(cfg, cfg.IdentifierName))
			}
			return nil
		}

		data, err := payload.Encode(s.entries)
		if err != nil {
			return err
		}
		if s.id == "" {
			s.id = uuid.NewString()
		}
		ttl := rt.config.Expiry.MaxInactivityInterval
		if err := m.store.Save(s.ctx, s.id, data, ttl); err != nil {
			m.metrics.Inc(MetricStoreFailure)
			return err
		}
		http.SetCookie(w, m.newCookie(cfg, cfg.IdentifierName, s.id))
		return nil
	}

	if len(s.entries) == 0 {
		for i := 0; i <= s.prevMaxChunk; i++ {
			http.SetCookie(w, m.expiredCookie(cfg, rt.codec.ChunkName(i)))
		}
		if s.prevMaxChunk >= 0 {
			m.metrics.Add(MetricChunksCleared, uint64(s.prevMaxChunk+1))
		}
		s.prevMaxChunk = -1
		return nil
	}

	data, err := payload.Encode(s.entries)
	if err != nil {
		return err
	}

	pairs := rt.codec.Encode(data)
	for _, p := range pairs {
		http.SetCookie(w, m.newCookie(cfg, p.Name, p.Value))
	}
	m.metrics.Add(MetricChunksWritten, uint64(len(pairs)))

	// The wire cookie count must shrink with the payload: expire every
	// index the new encoding no longer occupies.
	for i := len(pairs); i <= s.prevMaxChunk; i++ {
		http.SetCookie(w, m.expiredCookie(cfg, rt.codec.ChunkName(i)))
		m.metrics.Inc(MetricChunksCleared)
	}
	s.prevMaxChunk = len(pairs) - 1

	if cfg.IdentifierEnabled {
		if s.id == "" {
			s.id = uuid.NewString()
		}
		http.SetCookie(w, m.newCookie(cfg, cfg.IdentifierName, s.id))
	}

	return nil
}

// Reload validates cfg and swaps it in atomically. In-flight requests
// keep the runtime they captured; new loads observe the new generation.
// Cookies issued under a previous key or token decode to empty sessions
// afterwards.
func (m *Manager) Reload(cfg Config) error {
	if m.closed.Load() {
		return ErrManagerClosed
	}

	rt, err := newRuntime(cloneConfig(cfg))
	if err != nil {
		return err
	}

	m.current.Store(rt)
	m.metrics.Inc(MetricConfigReloaded)
	m.audit(context.Background(), AuditEvent{EventType: EventConfigReloaded})
	return nil
}

// Config returns the currently active configuration snapshot.
func (m *Manager) Config() Config {
	return cloneConfig(m.current.Load().config)
}

// MetricsSnapshot returns a point-in-time copy of all metrics.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	return m.metrics.Snapshot()
}

// AuditDropped reports audit events dropped under backpressure.
func (m *Manager) AuditDropped() uint64 {
	return m.dispatcher.Dropped()
}

// Close drains the audit dispatcher. Commit and Reload fail after Close.
func (m *Manager) Close() {
	if m.closed.Swap(true) {
		return
	}
	m.dispatcher.Close()
}

func (m *Manager) decodeLastAccess(rt *runtime, token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	raw, ok := rt.codec.DecodeValue(token)
	if !ok {
		return time.Time{}, false
	}
	millis, err := payload.Int64Value(raw)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

func (m *Manager) newCookie(cfg CookieConfig, name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		HttpOnly: cfg.HTTPOnly,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	}
}

func (m *Manager) expiredCookie(cfg CookieConfig, name string) *http.Cookie {
	c := m.newCookie(cfg, name, "")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}

func (m *Manager) audit(ctx context.Context, event AuditEvent) {
	if m.dispatcher == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = m.clock()
	}
	m.dispatcher.Emit(ctx, event)
}
