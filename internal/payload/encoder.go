package payload

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const formatVersionCurrent = 1

const (
	maxKeyLen   = 1 << 16
	maxValueLen = 1 << 24
)

var (
	ErrMalformed = errors.New("malformed session payload")
	ErrTooLarge  = errors.New("session entry too large")
)

// Encode writes entries to a flat byte form: a version byte, a big-endian
// entry count, then one record per entry (kind, length-prefixed key,
// length-prefixed codec name for KindCodec, length-prefixed value).
// Encoding is deterministic: identical entries in identical order always
// produce identical bytes.
func Encode(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(formatVersionCurrent)

	if len(entries) > maxKeyLen-1 {
		return nil, ErrTooLarge
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(entries))); err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.Kind > KindCodec {
			return nil, ErrValueKind
		}
		buf.WriteByte(byte(e.Kind))

		if len(e.Key) >= maxKeyLen {
			return nil, ErrTooLarge
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(e.Key))); err != nil {
			return nil, err
		}
		buf.WriteString(e.Key)

		if e.Kind == KindCodec {
			if len(e.Codec) >= maxKeyLen {
				return nil, ErrTooLarge
			}
			if err := binary.Write(&buf, binary.BigEndian, uint16(len(e.Codec))); err != nil {
				return nil, err
			}
			buf.WriteString(e.Codec)
		}

		if len(e.Value) >= maxValueLen {
			return nil, ErrTooLarge
		}
		if err := binary.Write(&buf, binary.BigEndian, uint32(len(e.Value))); err != nil {
			return nil, err
		}
		buf.Write(e.Value)
	}

	return buf.Bytes(), nil
}

// Decode parses bytes produced by Encode. Every structural problem is
// reported as ErrMalformed so callers can fold it into the empty-session
// path without inspecting causes.
func Decode(data []byte) ([]Entry, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, ErrMalformed
	}
	if version != formatVersionCurrent {
		return nil, ErrMalformed
	}

	var count uint16
	if err := binary.Read(reader, binary.BigEndian, &count); err != nil {
		return nil, ErrMalformed
	}

	entries := make([]Entry, 0, count)
	for i := 0; i < int(count); i++ {
		kind, err := reader.ReadByte()
		if err != nil {
			return nil, ErrMalformed
		}
		if Kind(kind) > KindCodec {
			return nil, ErrMalformed
		}

		e := Entry{Kind: Kind(kind)}

		key, err := readString16(reader)
		if err != nil {
			return nil, ErrMalformed
		}
		e.Key = key

		if e.Kind == KindCodec {
			codec, err := readString16(reader)
			if err != nil {
				return nil, ErrMalformed
			}
			e.Codec = codec
		}

		var valueLen uint32
		if err := binary.Read(reader, binary.BigEndian, &valueLen); err != nil {
			return nil, ErrMalformed
		}
		if valueLen >= maxValueLen || int(valueLen) > reader.Len() {
			return nil, ErrMalformed
		}
		value := make([]byte, valueLen)
		if _, err := io.ReadFull(reader, value); err != nil {
			return nil, ErrMalformed
		}
		e.Value = value

		entries = append(entries, e)
	}

	if reader.Len() != 0 {
		return nil, ErrMalformed
	}

	return entries, nil
}

func readString16(reader *bytes.Reader) (string, error) {
	var length uint16
	if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
		return "", err
	}
	if int(length) > reader.Len() {
		return "", ErrMalformed
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}
