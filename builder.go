package goSession

import (
	"time"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/store"
)

// Builder defines a public type used by goSession APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	store     store.Store
	clock     Clock
	auditSink AuditSink
	codecs    map[string]ValueCodec

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		codecs: map[string]ValueCodec{},
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore describes the withstore operation and its observable behavior.
//
// A non-nil store switches the manager from client-side cookies to
// server-side storage: payloads live in the store, the client keeps only
// the identifier and last-access cookies.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.store = s
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis is shorthand for WithStore(store.NewRedisStore(client, prefix)).
func (b *Builder) WithRedis(client redis.UniversalClient, prefix string) *Builder {
	b.store = store.NewRedisStore(client, prefix)
	return b
}

// WithClock describes the withclock operation and its observable behavior.
//
// WithClock overrides the time source used for expiry decisions and
// last-access stamping. Intended for tests.
func (b *Builder) WithClock(clock Clock) *Builder {
	b.clock = clock
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithValueCodec describes the withvaluecodec operation and its observable behavior.
//
// WithValueCodec registers a named codec for SetValue/GetValue. Codec
// names travel inside the payload, so renaming a codec orphans values
// stored under the old name.
func (b *Builder) WithValueCodec(codec ValueCodec) *Builder {
	if b.codecs == nil {
		b.codecs = map[string]ValueCodec{}
	}
	b.codecs[codec.Name()] = codec
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)

	if b.store != nil && !cfg.Cookie.IdentifierEnabled {
		return nil, ErrStoreRequiresIdentifier
	}

	for name := range b.codecs {
		if name == "" {
			return nil, ErrCodecNameInvalid
		}
	}

	rt, err := newRuntime(cfg)
	if err != nil {
		return nil, err
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	codecs := make(map[string]ValueCodec, len(b.codecs))
	for name, codec := range b.codecs {
		codecs[name] = codec
	}

	m := &Manager{
		clock:   clock,
		store:   b.store,
		codecs:  codecs,
		metrics: NewMetrics(cfg.Metrics),
		dispatcher: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}
	m.current.Store(rt)

	b.built = true

	return m, nil
}
