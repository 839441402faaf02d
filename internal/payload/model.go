package payload

import (
	"encoding/binary"
	"errors"
	"math"
)

// Kind tags the serialized representation of a session value. The set is
// deliberately closed: arbitrary object graphs are not serialized, only
// these kinds plus application payloads registered under a codec name.
type Kind uint8

const (
	KindString Kind = iota
	KindBytes
	KindInt64
	KindFloat64
	KindBool
	KindCodec
)

// Entry is a single key/value pair of the logical session. Value always
// holds the flat byte form; Codec names the registered codec for
// KindCodec entries and is empty otherwise.
type Entry struct {
	Key   string
	Kind  Kind
	Codec string
	Value []byte
}

var ErrValueKind = errors.New("unexpected session value kind")

func Int64Bytes(v int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return b[:]
}

func Int64Value(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, ErrValueKind
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func Float64Bytes(v float64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	return b[:]
}

func Float64Value(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, ErrValueKind
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func BoolBytes(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func BoolValue(b []byte) (bool, error) {
	if len(b) != 1 || b[0] > 1 {
		return false, ErrValueKind
	}
	return b[0] == 1, nil
}
