package elffile

import (
	"bytes"
	"debug/elf"

	"github.com/pkg/errors"

	"github.com/jtang613/goelf/pkg/elffile/cursor"
)

// StringTable is a view of a string table section. Entries are addressed by
// byte offset, not by ordinal.
type StringTable struct {
	Section int
	data    []byte
}

// NewStringTable returns the string table held by section sh. The section
// must be of type SHT_STRTAB.
func NewStringTable(buf []byte, sh SectionHeader) (*StringTable, error) {
	if sh.Type != elf.SHT_STRTAB {
		return nil, errors.Wrapf(ErrInvalidStringTableReference, "section %d has type %s, want %s",
			sh.Index, sh.Type, elf.SHT_STRTAB)
	}
	return newStringTable(buf, sh)
}

// newStringTable skips the type check. It backs e_shstrndx, which names its
// table explicitly.
func newStringTable(buf []byte, sh SectionHeader) (*StringTable, error) {
	if sh.Type == elf.SHT_NOBITS {
		return nil, errors.Wrapf(ErrInvalidStringTableReference, "section %d occupies no file space", sh.Index)
	}
	data, err := cursor.New(buf).Slice(sh.Offset, sh.Size)
	if err != nil {
		return nil, errors.Wrapf(err, "string table section %d", sh.Index)
	}
	return &StringTable{Section: sh.Index, data: data}, nil
}

// Len returns the size of the table in bytes.
func (t *StringTable) Len() int {
	return len(t.data)
}

// Lookup returns the NUL-terminated string starting at off. Offset 0 is the
// empty string by convention. A string that runs to the end of the table
// without a terminator is an error; the table boundary is never crossed.
func (t *StringTable) Lookup(off uint32) (string, error) {
	if off == 0 {
		return "", nil
	}
	size := uint64(len(t.data))
	if uint64(off) > size {
		return "", &OutOfBoundsError{Offset: uint64(off), Length: 1, BufferLen: size}
	}
	end := bytes.IndexByte(t.data[off:], 0)
	if end < 0 {
		return "", errors.Wrapf(ErrUnterminatedString, "offset 0x%x in string table section %d (0x%x bytes)",
			off, t.Section, size)
	}
	return string(t.data[off : int(off)+end]), nil
}
