package core

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// codecWriter builds a deterministic, length-prefixed little-endian binary
// encoding of transfer payloads. The wire shape (u32 length prefixes ahead
// of variable-length fields, 1-byte enum tags, fixed-width integers) is
// frozen: it feeds a hash that chain-side provers and this locker must both
// reproduce byte-for-byte, so nothing here may change without breaking every
// prover already deployed against it.
type codecWriter struct {
	buf []byte
}

func newCodecWriter() *codecWriter { return &codecWriter{} }

func (w *codecWriter) Bytes() []byte { return w.buf }

func (w *codecWriter) u8(v uint8) { w.buf = append(w.buf, v) }

func (w *codecWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *codecWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// u128 writes a big.Int as 16 little-endian bytes, the NEP-141 U128 wire shape.
func (w *codecWriter) u128(v *big.Int) error {
	if v.Sign() < 0 {
		return fmt.Errorf("u128 encode: negative value")
	}
	raw := v.Bytes() // big-endian
	if len(raw) > 16 {
		return fmt.Errorf("u128 encode: value exceeds 128 bits")
	}
	var b [16]byte
	for i, bb := range raw {
		b[len(raw)-1-i] = bb
	}
	w.buf = append(w.buf, b[:]...)
	return nil
}

func (w *codecWriter) bytes(v []byte) {
	w.u32(uint32(len(v)))
	w.buf = append(w.buf, v...)
}

func (w *codecWriter) str(v string) { w.bytes([]byte(v)) }

// option writes the Some/None discriminant used by optional fields.
func (w *codecWriter) option(present bool, write func()) {
	if present {
		w.u8(1)
		write()
	} else {
		w.u8(0)
	}
}

// address writes an OmniAddress as its chain tag followed by a length-prefixed body.
func (w *codecWriter) address(a OmniAddress) {
	w.u8(uint8(a.Chain))
	switch {
	case a.Chain.IsHome(), a.Chain.IsUTXO():
		w.str(a.Text)
	default:
		w.bytes(a.Bytes)
	}
}
