// Package codec implements the canonical binary encoding of signed intents
// and the wire forms of stored quotes and offers.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"
	"github.com/holiman/uint256"
)

const (
	u256Size = 32
	// maxSequenceLength bounds BCS sequence lengths (ULEB128 over u32).
	maxSequenceLength = 1<<31 - 1
)

var (
	ErrTrailingBytes = errors.New("codec: trailing bytes after value")
	ErrInvalidString = errors.New("codec: string is not valid utf-8")
	ErrNilInteger    = errors.New("codec: nil u256")
)

// bcsWriter writes BCS primitives. Field order is fixed by the caller, so the
// same value always encodes to the same bytes.
type bcsWriter struct {
	buf bytes.Buffer
	enc *bin.Encoder
}

func newBCSWriter() *bcsWriter {
	w := &bcsWriter{}
	w.enc = bin.NewBinEncoder(&w.buf)
	return w
}

func (w *bcsWriter) u8(v uint8) error {
	return w.enc.WriteUint8(v)
}

func (w *bcsWriter) u64(v uint64) error {
	return w.enc.WriteUint64(v, binary.LittleEndian)
}

func (w *bcsWriter) u256(v *uint256.Int) error {
	if v == nil {
		return ErrNilInteger
	}
	be := v.Bytes32()
	var le [u256Size]byte
	for i := 0; i < u256Size; i++ {
		le[i] = be[u256Size-1-i]
	}
	return w.enc.WriteBytes(le[:], false)
}

func (w *bcsWriter) bytes(b []byte) error {
	if len(b) > maxSequenceLength {
		return fmt.Errorf("codec: sequence of %d bytes exceeds limit", len(b))
	}
	if err := w.enc.WriteUVarInt(len(b)); err != nil {
		return err
	}
	return w.enc.WriteBytes(b, false)
}

func (w *bcsWriter) str(s string) error {
	if !utf8.ValidString(s) {
		return ErrInvalidString
	}
	return w.bytes([]byte(s))
}

func (w *bcsWriter) raw(b []byte) error {
	return w.enc.WriteBytes(b, false)
}

func (w *bcsWriter) Bytes() []byte {
	return w.buf.Bytes()
}

type bcsReader struct {
	dec *bin.Decoder
}

func newBCSReader(data []byte) *bcsReader {
	return &bcsReader{dec: bin.NewBinDecoder(data)}
}

func (r *bcsReader) u8() (uint8, error) {
	return r.dec.ReadUint8()
}

func (r *bcsReader) u64() (uint64, error) {
	return r.dec.ReadUint64(binary.LittleEndian)
}

func (r *bcsReader) u256() (*uint256.Int, error) {
	le, err := r.dec.ReadNBytes(u256Size)
	if err != nil {
		return nil, err
	}
	var be [u256Size]byte
	for i := 0; i < u256Size; i++ {
		be[i] = le[u256Size-1-i]
	}
	return new(uint256.Int).SetBytes32(be[:]), nil
}

func (r *bcsReader) bytes() ([]byte, error) {
	n, err := r.dec.ReadUvarint64()
	if err != nil {
		return nil, err
	}
	if n > maxSequenceLength || n > uint64(r.dec.Remaining()) {
		return nil, fmt.Errorf("codec: sequence length %d exceeds remaining %d bytes", n, r.dec.Remaining())
	}
	b, err := r.dec.ReadNBytes(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (r *bcsReader) str() (string, error) {
	b, err := r.bytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidString
	}
	return string(b), nil
}

func (r *bcsReader) done() error {
	if r.dec.HasRemaining() {
		return ErrTrailingBytes
	}
	return nil
}
