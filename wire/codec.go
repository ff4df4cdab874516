package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"time"
)

func durationOf(nanos int64) time.Duration { return time.Duration(nanos) }

// maxFrameBytes bounds a single command frame, guarding the server against
// a malformed or hostile length prefix demanding an unbounded allocation.
const maxFrameBytes = 64 << 20

// Encode gob-serializes env and writes it to w as one length-framed
// message: a 4-byte big-endian length prefix followed by the gob payload
// (spec §6 "length-framed, binary-serialized ... self-delimiting").
func Encode(w io.Writer, env Envelope) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return fmt.Errorf("wire: encoding command: %w", err)
	}
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(buf.Len()))
	if _, err := w.Write(lenPrefix[:]); err != nil {
		return fmt.Errorf("wire: writing frame length: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("wire: writing frame body: %w", err)
	}
	return nil
}

// Decode reads one length-framed message from r and gob-decodes it into an
// Envelope. Returns io.EOF when r is exhausted exactly at a frame
// boundary, matching the framing contract callers use to loop "read one
// command, execute it, read the next" (spec §6).
func Decode(r io.Reader) (Envelope, error) {
	var lenPrefix [4]byte
	if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Envelope{}, fmt.Errorf("wire: truncated frame length: %w", err)
		}
		return Envelope{}, err
	}
	n := binary.BigEndian.Uint32(lenPrefix[:])
	if n > maxFrameBytes {
		return Envelope{}, fmt.Errorf("wire: frame of %d bytes exceeds limit", n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return Envelope{}, fmt.Errorf("wire: truncated frame body: %w", err)
	}
	var env Envelope
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&env); err != nil {
		return Envelope{}, fmt.Errorf("wire: decoding command: %w", err)
	}
	return env, nil
}
