package payload

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func sampleEntries() []Entry {
	return []Entry{
		{Key: "user", Kind: KindString, Value: []byte("alice")},
		{Key: "blob", Kind: KindBytes, Value: []byte{0x00, 0x01, 0xFF}},
		{Key: "visits", Kind: KindInt64, Value: Int64Bytes(42)},
		{Key: "score", Kind: KindFloat64, Value: Float64Bytes(3.5)},
		{Key: "admin", Kind: KindBool, Value: BoolBytes(true)},
		{Key: "cart", Kind: KindCodec, Codec: "json", Value: []byte(`{"items":2}`)},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	entries := sampleEntries()

	data, err := Encode(entries)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(got) != len(entries) {
		t.Fatalf("entry count = %d, want %d", len(got), len(entries))
	}
	for i, e := range entries {
		if got[i].Key != e.Key || got[i].Kind != e.Kind || got[i].Codec != e.Codec || !bytes.Equal(got[i].Value, e.Value) {
			t.Fatalf("entry %d mismatch: got %+v, want %+v", i, got[i], e)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	a, err := Encode(sampleEntries())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	b, err := Encode(sampleEntries())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("expected identical bytes for identical entries")
	}
}

func TestEncodeEmpty(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %d", len(got))
	}
}

func TestEncodeRejectsOversize(t *testing.T) {
	tests := []Entry{
		{Key: strings.Repeat("k", maxKeyLen), Kind: KindString, Value: []byte("v")},
		{Key: "k", Kind: KindCodec, Codec: strings.Repeat("c", maxKeyLen), Value: []byte("v")},
	}

	for _, e := range tests {
		if _, err := Encode([]Entry{e}); !errors.Is(err, ErrTooLarge) {
			t.Fatalf("Encode = %v, want ErrTooLarge", err)
		}
	}
}

func TestEncodeRejectsUnknownKind(t *testing.T) {
	if _, err := Encode([]Entry{{Key: "k", Kind: Kind(99)}}); !errors.Is(err, ErrValueKind) {
		t.Fatalf("Encode = %v, want ErrValueKind", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	valid, err := Encode(sampleEntries())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "version only", data: []byte{formatVersionCurrent}},
		{name: "wrong version", data: append([]byte{0x02}, valid[1:]...)},
		{name: "truncated", data: valid[:len(valid)-3]},
		{name: "trailing bytes", data: append(append([]byte(nil), valid...), 0x00)},
		{name: "count beyond data", data: []byte{formatVersionCurrent, 0xFF, 0xFF}},
		{name: "unknown kind", data: []byte{formatVersionCurrent, 0x00, 0x01, 0x63}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.data); !errors.Is(err, ErrMalformed) {
				t.Fatalf("Decode = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestScalarHelpers(t *testing.T) {
	for _, v := range []int64{0, 1, -1, math.MaxInt64, math.MinInt64} {
		got, err := Int64Value(Int64Bytes(v))
		if err != nil || got != v {
			t.Fatalf("int64 round trip %d: got %d, err %v", v, got, err)
		}
	}
	if _, err := Int64Value([]byte{1, 2}); !errors.Is(err, ErrValueKind) {
		t.Fatalf("short int64 = %v, want ErrValueKind", err)
	}

	for _, v := range []float64{0, -2.25, math.MaxFloat64, math.SmallestNonzeroFloat64} {
		got, err := Float64Value(Float64Bytes(v))
		if err != nil || got != v {
			t.Fatalf("float64 round trip %v: got %v, err %v", v, got, err)
		}
	}

	for _, v := range []bool{true, false} {
		got, err := BoolValue(BoolBytes(v))
		if err != nil || got != v {
			t.Fatalf("bool round trip %v: got %v, err %v", v, got, err)
		}
	}
	if _, err := BoolValue([]byte{2}); !errors.Is(err, ErrValueKind) {
		t.Fatalf("bool out of range = %v, want ErrValueKind", err)
	}
	if _, err := BoolValue([]byte{0, 1}); !errors.Is(err, ErrValueKind) {
		t.Fatalf("bool wrong length = %v, want ErrValueKind", err)
	}
}
