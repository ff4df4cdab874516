package datum

import (
	"encoding/binary"
	"fmt"
)

// GobEncode implements gob.GobEncoder, reusing the same wire encoding as
// EncodeValue so a Value survives the wire package's gob-framed Command
// envelopes even though every field of Value is unexported (gob otherwise
// has nothing to serialize).
func (v Value) GobEncode() ([]byte, error) {
	return EncodeValue(nil, v), nil
}

// GobDecode implements gob.GobDecoder, the inverse of GobEncode.
func (v *Value) GobDecode(data []byte) error {
	decoded, rest, err := DecodeValue(data)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return fmt.Errorf("datum: trailing bytes after decoding gob value")
	}
	*v = decoded
	return nil
}

// EncodeValue appends a self-delimiting, order-preserving-enough encoding of
// v to buf and returns the result. The format is: one kind byte, then a
// length-prefixed payload (fixed-width for numeric/bool kinds). This is used
// both for arrangement key/value bytes (where only equality and grouping
// matter, not sort order) and as the payload format for the wire protocol.
func EncodeValue(buf []byte, v Value) []byte {
	buf = append(buf, byte(v.kind))
	switch v.kind {
	case KindInt:
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], uint64(v.i))
		buf = append(buf, tmp[:]...)
	case KindUint:
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], v.u)
		buf = append(buf, tmp[:]...)
	case KindBool:
		if v.bl {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case KindString:
		buf = appendLenPrefixed(buf, []byte(v.s))
	case KindBytes:
		buf = appendLenPrefixed(buf, v.b)
	default:
		panic(fmt.Sprintf("datum: cannot encode value of kind %v", v.kind))
	}
	return buf
}

func appendLenPrefixed(buf []byte, data []byte) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(data)))
	buf = append(buf, tmp[:]...)
	buf = append(buf, data...)
	return buf
}

// DecodeValue reads one encoded Value from the front of buf, returning the
// Value and the remaining bytes.
func DecodeValue(buf []byte) (Value, []byte, error) {
	if len(buf) < 1 {
		return Value{}, nil, fmt.Errorf("datum: empty buffer")
	}
	kind := Kind(buf[0])
	buf = buf[1:]
	switch kind {
	case KindInt:
		if len(buf) < 8 {
			return Value{}, nil, fmt.Errorf("datum: short int payload")
		}
		return Int(int64(binary.BigEndian.Uint64(buf[:8]))), buf[8:], nil
	case KindUint:
		if len(buf) < 8 {
			return Value{}, nil, fmt.Errorf("datum: short uint payload")
		}
		return Uint(binary.BigEndian.Uint64(buf[:8])), buf[8:], nil
	case KindBool:
		if len(buf) < 1 {
			return Value{}, nil, fmt.Errorf("datum: short bool payload")
		}
		return Bool(buf[0] != 0), buf[1:], nil
	case KindString:
		data, rest, err := readLenPrefixed(buf)
		if err != nil {
			return Value{}, nil, err
		}
		return String(string(data)), rest, nil
	case KindBytes:
		data, rest, err := readLenPrefixed(buf)
		if err != nil {
			return Value{}, nil, err
		}
		return Bytes(data), rest, nil
	default:
		return Value{}, nil, fmt.Errorf("datum: unknown value kind %d", kind)
	}
}

func readLenPrefixed(buf []byte) ([]byte, []byte, error) {
	if len(buf) < 4 {
		return nil, nil, fmt.Errorf("datum: short length prefix")
	}
	n := binary.BigEndian.Uint32(buf[:4])
	buf = buf[4:]
	if uint32(len(buf)) < n {
		return nil, nil, fmt.Errorf("datum: short payload, want %d have %d", n, len(buf))
	}
	return buf[:n], buf[n:], nil
}

// EncodeTuple encodes an entire tuple deterministically: a 4-byte column
// count followed by each value's encoding in order.
func EncodeTuple(t Tuple) []byte {
	buf := make([]byte, 4, 4+len(t)*9)
	binary.BigEndian.PutUint32(buf, uint32(len(t)))
	for _, v := range t {
		buf = EncodeValue(buf, v)
	}
	return buf
}

// DecodeTuple decodes a tuple produced by EncodeTuple.
func DecodeTuple(buf []byte) (Tuple, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("datum: short tuple header")
	}
	n := binary.BigEndian.Uint32(buf[:4])
	buf = buf[4:]
	out := make(Tuple, 0, n)
	for i := uint32(0); i < n; i++ {
		var v Value
		var err error
		v, buf, err = DecodeValue(buf)
		if err != nil {
			return nil, fmt.Errorf("datum: decoding column %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
