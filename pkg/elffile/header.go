package elffile

import (
	"debug/elf"

	"github.com/pkg/errors"

	"github.com/jtang613/goelf/pkg/elffile/cursor"
)

// Header is the class-independent ELF file header. Address, offset, size
// and count fields are widened to 64 bits for both classes. Phnum, Shnum and
// Shstrndx hold the raw header values; File resolves the extended numbering
// escapes.
type Header struct {
	Ident     [elf.EI_NIDENT]byte
	Type      elf.Type
	Machine   elf.Machine
	Version   uint64
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint64
	Ehsize    uint64
	Phentsize uint64
	Phnum     uint64
	Shentsize uint64
	Shnum     uint64
	Shstrndx  uint64
}

// HeaderSize returns the on-disk size of the file header for class.
func HeaderSize(class elf.Class) int {
	return layoutFor(class).header.size
}

// SectionHeaderSize returns the on-disk size of one section header entry.
func SectionHeaderSize(class elf.Class) int {
	return layoutFor(class).section.entrySize
}

// ProgramHeaderSize returns the on-disk size of one program header entry.
func ProgramHeaderSize(class elf.Class) int {
	return layoutFor(class).prog.entrySize
}

// SymbolSize returns the on-disk size of one symbol table entry.
func SymbolSize(class elf.Class) int {
	return layoutFor(class).sym.entrySize
}

// DecodeHeader parses the file header of buf using the field widths of
// id.Class and the byte order of id.Data.
func DecodeHeader(buf []byte, id Identity) (Header, error) {
	l := layoutFor(id.Class)
	c := cursor.New(buf)
	if err := c.Check(0, uint64(l.header.size)); err != nil {
		return Header{}, errors.Wrap(err, "reading ELF header")
	}

	r := record{c: c, order: id.ByteOrder()}
	var h Header
	copy(h.Ident[:], buf[:elf.EI_NIDENT])
	h.Type = elf.Type(r.get(l.header.typ))
	h.Machine = elf.Machine(r.get(l.header.machine))
	h.Version = r.get(l.header.version)
	h.Entry = r.get(l.header.entry)
	h.Phoff = r.get(l.header.phoff)
	h.Shoff = r.get(l.header.shoff)
	h.Flags = r.get(l.header.flags)
	h.Ehsize = r.get(l.header.ehsize)
	h.Phentsize = r.get(l.header.phentsize)
	h.Phnum = r.get(l.header.phnum)
	h.Shentsize = r.get(l.header.shentsize)
	h.Shnum = r.get(l.header.shnum)
	h.Shstrndx = r.get(l.header.shstrndx)
	if r.err != nil {
		return Header{}, errors.Wrap(r.err, "reading ELF header")
	}

	if h.Ehsize != uint64(l.header.size) {
		return Header{}, malformedHeader("e_ehsize is %d, expected %d for %s", h.Ehsize, l.header.size, id.Class)
	}
	if h.Shoff != 0 && h.Shentsize != uint64(l.section.entrySize) {
		return Header{}, malformedHeader("e_shentsize is %d, expected %d for %s", h.Shentsize, l.section.entrySize, id.Class)
	}
	return h, nil
}
