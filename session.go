package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/internal/payload"
)

// Session is the per-request key/value view of the client's session.
// It is owned exclusively by the request that loaded it: no locking, no
// sharing across requests. Decoding is deferred until the first read or
// write; a request that never touches its Session costs nothing.
//
// State machine: Unloaded -> Loaded(clean) -> Loaded(dirty) -> Committed.
// Any write marks the session dirty; only dirty sessions are re-encoded
// on commit.
type Session struct {
	mgr *Manager
	rt  *runtime
	ctx context.Context

	// Raw request cookies, split once at load time.
	payloadCookies map[string]string
	lastAccess     string
	id             string

	loaded     bool
	dirty      bool
	terminated bool
	committed  bool

	// Highest chunk index the client presented, valid or not. Commit
	// uses it to expire indices a smaller payload no longer needs.
	prevMaxChunk int

	entries []payload.Entry
	index   map[string]int
}

// ID returns the session identifier cookie value, or "" when the
// identifier feature is disabled or no identifier has been issued yet.
func (s *Session) ID() string {
	return s.id
}

// Loaded reports whether the session has been decoded from the request.
func (s *Session) Loaded() bool {
	return s.loaded
}

// Dirty reports whether the session has uncommitted writes.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Terminated reports whether Terminate has been called.
func (s *Session) Terminated() bool {
	return s.terminated
}

// Keys returns the session keys in stored order.
func (s *Session) Keys() []string {
	s.ensureLoaded()

	keys := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Has reports whether key is present.
func (s *Session) Has(key string) bool {
	s.ensureLoaded()
	_, ok := s.index[key]
	return ok
}

// GetString returns the string stored under key. The bool is false when
// the key is absent or holds a different kind.
func (s *Session) GetString(key string) (string, bool) {
	e, ok := s.entry(key, payload.KindString)
	if !ok {
		return "", false
	}
	return string(e.Value), true
}

// GetBytes returns a copy of the binary blob stored under key.
func (s *Session) GetBytes(key string) ([]byte, bool) {
	e, ok := s.entry(key, payload.KindBytes)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), e.Value...), true
}

// GetInt64 returns the integer stored under key.
func (s *Session) GetInt64(key string) (int64, bool) {
	e, ok := s.entry(key, payload.KindInt64)
	if !ok {
		return 0, false
	}
	v, err := payload.Int64Value(e.Value)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GetFloat64 returns the float stored under key.
func (s *Session) GetFloat64(key string) (float64, bool) {
	e, ok := s.entry(key, payload.KindFloat64)
	if !ok {
		return 0, false
	}
	v, err := payload.Float64Value(e.Value)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GetBool returns the boolean stored under key.
func (s *Session) GetBool(key string) (bool, bool) {
	e, ok := s.entry(key, payload.KindBool)
	if !ok {
		return false, false
	}
	v, err := payload.BoolValue(e.Value)
	if err != nil {
		return false, false
	}
	return v, true
}

// GetValue decodes the value stored under key through the codec it was
// stored with. Missing keys return (nil, nil); a value stored under a
// codec that is no longer registered returns ErrCodecUnknown.
func (s *Session) GetValue(key string) (any, error) {
	s.ensureLoaded()

	i, ok := s.index[key]
	if !ok {
		return nil, nil
	}

	e := s.entries[i]
	if e.Kind != payload.KindCodec {
		return nil, ErrValueKind
	}

	codec, ok := s.mgr.codecs[e.Codec]
	if !ok {
		return nil, ErrCodecUnknown
	}
	return codec.Unmarshal(append([]byte(nil), e.Value...))
}

// SetString stores a string under key.
func (s *Session) SetString(key, value string) {
	s.put(payload.Entry{Key: key, Kind: payload.KindString, Value: []byte(value)})
}

// SetBytes stores a binary blob under key.
func (s *Session) SetBytes(key string, value []byte) {
	s.put(payload.Entry{Key: key, Kind: payload.KindBytes, Value: append([]byte(nil), value...)})
}

// SetInt64 stores an integer under key.
func (s *Session) SetInt64(key string, value int64) {
	s.put(payload.Entry{Key: key, Kind: payload.KindInt64, Value: payload.Int64Bytes(value)})
}

// SetFloat64 stores a float under key.
func (s *Session) SetFloat64(key string, value float64) {
	s.put(payload.Entry{Key: key, Kind: payload.KindFloat64, Value: payload.Float64Bytes(value)})
}

// SetBool stores a boolean under key.
func (s *Session) SetBool(key string, value bool) {
	s.put(payload.Entry{Key: key, Kind: payload.KindBool, Value: payload.BoolBytes(value)})
}

// SetValue stores an application value under key using the named codec
// registered on the Builder.
func (s *Session) SetValue(key string, value any, codecName string) error {
	codec, ok := s.mgr.codecs[codecName]
	if !ok {
		return ErrCodecUnknown
	}

	data, err := codec.Marshal(value)
	if err != nil {
		return err
	}

	s.put(payload.Entry{Key: key, Kind: payload.KindCodec, Codec: codecName, Value: data})
	return nil
}

// Remove deletes key. Removing an absent key does not mark the session
// dirty.
func (s *Session) Remove(key string) {
	s.ensureLoaded()

	i, ok := s.index[key]
	if !ok {
		return
	}

	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.reindex()
	s.dirty = true
}

// Clear removes every entry but keeps the session alive; the next commit
// writes an empty payload and shrinks the cookie set accordingly.
func (s *Session) Clear() {
	s.ensureLoaded()

	if len(s.entries) == 0 {
		return
	}
	s.entries = s.entries[:0]
	s.index = map[string]int{}
	s.dirty = true
}

// Terminate invalidates the session: every payload cookie, the
// identifier cookie and the last-access cookie are expired on commit.
// Terminating a session that never existed succeeds and does nothing
// harmful.
func (s *Session) Terminate() {
	s.ensureLoaded()

	s.entries = s.entries[:0]
	s.index = map[string]int{}
	s.terminated = true
	s.dirty = true
}

// Len reports the number of entries.
func (s *Session) Len() int {
	s.ensureLoaded()
	return len(s.entries)
}

func (s *Session) entry(key string, kind payload.Kind) (payload.Entry, bool) {
	s.ensureLoaded()

	i, ok := s.index[key]
	if !ok {
		return payload.Entry{}, false
	}
	e := s.entries[i]
	if e.Kind != kind {
		return payload.Entry{}, false
	}
	return e, true
}

func (s *Session) put(e payload.Entry) {
	s.ensureLoaded()

	if i, ok := s.index[e.Key]; ok {
		s.entries[i] = e
	} else {
		s.index[e.Key] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	s.dirty = true
}

func (s *Session) reindex() {
	s.index = make(map[string]int, len(s.entries))
	for i, e := range s.entries {
		s.index[e.Key] = i
	}
}

func (s *Session) ensureLoaded() {
	if s.loaded {
		return
	}
	s.mgr.load(s)
}
