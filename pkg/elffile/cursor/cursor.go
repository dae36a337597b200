// Package cursor implements a bounds-checked reader over an in-memory byte
// buffer. Every read validates its range before touching the buffer, so a
// corrupt offset or length surfaces as an error instead of a panic.
package cursor

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// ErrOutOfBounds is matched by every *OutOfBoundsError.
var ErrOutOfBounds = errors.New("read out of bounds")

// OutOfBoundsError describes a read of Length bytes at Offset that does not
// fit in a buffer of BufferLen bytes.
type OutOfBoundsError struct {
	Offset    uint64
	Length    uint64
	BufferLen uint64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("read out of bounds: offset 0x%x length 0x%x exceeds buffer of 0x%x bytes",
		e.Offset, e.Length, e.BufferLen)
}

// Is reports whether target is ErrOutOfBounds.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// Cursor provides sequential and random read access to a borrowed buffer.
// The buffer is never copied or modified.
type Cursor struct {
	buf []byte
	pos uint64
}

// New creates a cursor positioned at the start of buf.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() uint64 {
	return uint64(len(c.buf))
}

// Pos returns the current read position.
func (c *Cursor) Pos() uint64 {
	return c.pos
}

// Check reports whether n bytes at off lie inside the buffer.
func (c *Cursor) Check(off, n uint64) error {
	size := c.Len()
	// off+n may wrap, so compare against the remaining space instead.
	if n > size || off > size-n {
		return &OutOfBoundsError{Offset: off, Length: n, BufferLen: size}
	}
	return nil
}

// Seek moves the read position to off. Seeking to the end of the buffer is
// allowed; seeking past it is not.
func (c *Cursor) Seek(off uint64) error {
	if err := c.Check(off, 0); err != nil {
		return err
	}
	c.pos = off
	return nil
}

// Slice returns a view of n bytes at off. The view shares memory with the
// buffer and has its capacity clipped so appends cannot reach past it.
func (c *Cursor) Slice(off, n uint64) ([]byte, error) {
	if err := c.Check(off, n); err != nil {
		return nil, err
	}
	return c.buf[off : off+n : off+n], nil
}

// UintAt decodes an unsigned integer of width bytes (1, 2, 4 or 8) at off
// without moving the read position.
func (c *Cursor) UintAt(off uint64, width int, order binary.ByteOrder) (uint64, error) {
	b, err := c.Slice(off, uint64(width))
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(order.Uint16(b)), nil
	case 4:
		return uint64(order.Uint32(b)), nil
	case 8:
		return order.Uint64(b), nil
	}
	return 0, fmt.Errorf("unsupported field width %d", width)
}

// ReadUint decodes an unsigned integer of width bytes at the current
// position and advances past it.
func (c *Cursor) ReadUint(width int, order binary.ByteOrder) (uint64, error) {
	v, err := c.UintAt(c.pos, width, order)
	if err != nil {
		return 0, err
	}
	c.pos += uint64(width)
	return v, nil
}

// ReadU8 reads one byte.
func (c *Cursor) ReadU8() (uint8, error) {
	v, err := c.ReadUint(1, binary.LittleEndian)
	return uint8(v), err
}

// ReadU16 reads a 16-bit value in the given byte order.
func (c *Cursor) ReadU16(order binary.ByteOrder) (uint16, error) {
	v, err := c.ReadUint(2, order)
	return uint16(v), err
}

// ReadU32 reads a 32-bit value in the given byte order.
func (c *Cursor) ReadU32(order binary.ByteOrder) (uint32, error) {
	v, err := c.ReadUint(4, order)
	return uint32(v), err
}

// ReadU64 reads a 64-bit value in the given byte order.
func (c *Cursor) ReadU64(order binary.ByteOrder) (uint64, error) {
	return c.ReadUint(8, order)
}
