package memview

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Returned by Reader.Truncate when a nested length field claims more bytes
// than the enclosing view holds.
var ErrBadLength = errors.New("memview: nested length exceeds enclosing view")

// MemView is a "view" on a collection of byte slices. Conceptually it is a
// [][]byte with helpers that make it behave like one contiguous []byte, so
// that data arriving in chunks (TCP segments, TLS record payloads) can be
// parsed without copying it into a single buffer first.
//
// Modifying a MemView never changes the underlying data, only which bytes the
// view points at. Copying a MemView is like copying a slice header.
//
// The zero value is an empty MemView ready to use.
type MemView struct {
	buf    [][]byte
	length int64
}

// New wraps data in a MemView. No copy is made; the caller must keep the
// underlying memory valid and unmodified for the lifetime of the view.
func New(data []byte) MemView {
	return MemView{
		buf:    [][]byte{data},
		length: int64(len(data)),
	}
}

// Append extends dst with the bytes viewed by src.
func (dst *MemView) Append(src MemView) {
	dst.buf = append(dst.buf, src.buf...)
	dst.length += src.length
}

// Clear empties the view without reallocating its chunk table.
func (mv *MemView) Clear() {
	mv.buf = mv.buf[:0]
	mv.length = 0
}

func (mv MemView) Len() int64 {
	return mv.length
}

// GetByte returns the byte at the given index, or 0 if index is out of
// bounds.
func (mv MemView) GetByte(index int64) byte {
	if index < 0 {
		return 0
	}
	n := index
	for _, b := range mv.buf {
		lb := int64(len(b))
		if n < lb {
			return b[n]
		}
		n -= lb
	}
	return 0
}

// getBytes returns a copy of mv[start:end], or nil if the range is invalid.
func (mv MemView) getBytes(start, end int64) []byte {
	if !(0 <= start && start <= end && end <= mv.length) {
		return nil
	}

	result := make([]byte, 0, end-start)
	for _, b := range mv.buf {
		lb := int64(len(b))
		if start >= lb {
			start -= lb
			end -= lb
			continue
		}
		stop := end
		if stop > lb {
			stop = lb
		}
		result = append(result, b[start:stop]...)
		if end <= lb {
			break
		}
		start = 0
		end -= lb
	}
	return result
}

// GetUint16 returns mv[offset:offset+2] as a big-endian uint16, or 0 if the
// range is out of bounds.
func (mv MemView) GetUint16(offset int64) uint16 {
	b := mv.getBytes(offset, offset+2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// GetUint24 returns mv[offset:offset+3] as a big-endian 24-bit integer, or 0
// if the range is out of bounds.
func (mv MemView) GetUint24(offset int64) uint32 {
	b := mv.getBytes(offset, offset+3)
	if b == nil {
		return 0
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// SubView returns the view mv[start:end] (end not inclusive). Returns an
// empty MemView if the range is invalid.
func (mv MemView) SubView(start, end int64) MemView {
	if !(0 <= start && start < end && end <= mv.length) {
		return MemView{}
	}

	var newBuf [][]byte
	pos := int64(0)
	for _, b := range mv.buf {
		lb := int64(len(b))
		lo, hi := start-pos, end-pos
		pos += lb
		if hi <= 0 {
			break
		}
		if lo >= lb {
			continue
		}
		if lo < 0 {
			lo = 0
		}
		if hi > lb {
			hi = lb
		}
		newBuf = append(newBuf, b[lo:hi])
	}
	return MemView{buf: newBuf, length: end - start}
}

// String copies the viewed bytes into a string.
func (mv MemView) String() string {
	var buf bytes.Buffer
	for _, b := range mv.buf {
		buf.Write(b)
	}
	return buf.String()
}

// Equal reports whether two views contain the same bytes.
func (mv MemView) Equal(other MemView) bool {
	if mv.length != other.length {
		return false
	}
	for i := int64(0); i < mv.length; i++ {
		if mv.GetByte(i) != other.GetByte(i) {
			return false
		}
	}
	return true
}

// CreateReader returns a cursor positioned at the start of the view.
func (mv MemView) CreateReader() *Reader {
	return &Reader{mv: mv}
}

// Reader is a bounds-checked sequential cursor over a MemView. All
// multi-byte integers are read big-endian (network order).
//
// Reads never pass the end of the view. A read attempted with no bytes left
// returns io.EOF; a read that finds only part of its field returns
// io.ErrUnexpectedEOF. Once a read has failed the cursor position is
// unspecified and the caller must abandon the parse.
type Reader struct {
	mv  MemView
	pos int64
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int64 {
	return r.mv.length - r.pos
}

func (r *Reader) take(n int64) ([]byte, error) {
	rem := r.Remaining()
	if rem == 0 && n > 0 {
		return nil, io.EOF
	}
	if rem < n {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.mv.getBytes(r.pos, r.pos+n)
	r.pos += n
	return b, nil
}

func (r *Reader) ReadByte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *Reader) ReadUint24() (uint32, error) {
	b, err := r.take(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadBytes reads the next n raw bytes.
func (r *Reader) ReadBytes(n int64) ([]byte, error) {
	if n < 0 {
		return nil, errors.New("memview: negative read length")
	}
	return r.take(n)
}

// ReadString reads a string of the given length.
func (r *Reader) ReadString(length int64) (string, error) {
	b, err := r.take(length)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadString_byte reads a string whose length is given by the next byte.
func (r *Reader) ReadString_byte() (string, error) {
	length, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	return r.ReadString(int64(length))
}

// ReadString_uint16 reads a string whose length is given by the next uint16.
func (r *Reader) ReadString_uint16() (string, error) {
	length, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	return r.ReadString(int64(length))
}

// Skip advances the cursor past n bytes.
func (r *Reader) Skip(n int64) error {
	_, err := r.take(n)
	return err
}

// SkipVector_byte skips a variable-length field whose length is given by the
// next byte.
func (r *Reader) SkipVector_byte() error {
	length, err := r.ReadByte()
	if err != nil {
		return err
	}
	return r.Skip(int64(length))
}

// SkipVector_uint16 skips a variable-length field whose length is given by
// the next uint16.
func (r *Reader) SkipVector_uint16() error {
	length, err := r.ReadUint16()
	if err != nil {
		return err
	}
	return r.Skip(int64(length))
}

// Truncate returns a cursor over the next n bytes without advancing this
// cursor. It fails with ErrBadLength when n exceeds the remaining bytes, so
// a nested length field can never widen the bounds of its enclosing view.
func (r *Reader) Truncate(n int64) (*Reader, error) {
	if n < 0 || n > r.Remaining() {
		return nil, errors.Wrapf(ErrBadLength, "want %d bytes, have %d", n, r.Remaining())
	}
	return r.mv.SubView(r.pos, r.pos+n).CreateReader(), nil
}

// ReadUint16AndTruncate reads a uint16 length prefix, advances past the
// prefixed field, and returns a cursor confined to that field.
func (r *Reader) ReadUint16AndTruncate() (length uint16, field *Reader, err error) {
	length, err = r.ReadUint16()
	if err != nil {
		return 0, nil, err
	}
	field, err = r.Truncate(int64(length))
	if err != nil {
		return 0, nil, err
	}
	if err := r.Skip(int64(length)); err != nil {
		return 0, nil, err
	}
	return length, field, nil
}
