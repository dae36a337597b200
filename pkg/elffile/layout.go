package elffile

import (
	"debug/elf"
	"encoding/binary"
	"math"

	"github.com/jtang613/goelf/pkg/elffile/cursor"
)

// field locates one on-disk field relative to the start of its record.
type field struct {
	off  int
	size int
}

// packer hands out consecutive fields.
type packer struct{ off int }

func (p *packer) next(size int) field {
	f := field{off: p.off, size: size}
	p.off += size
	return f
}

type headerLayout struct {
	typ, machine, version      field
	entry, phoff, shoff, flags field
	ehsize, phentsize, phnum   field
	shentsize, shnum, shstrndx field
	size                       int
}

type sectionLayout struct {
	name, typ, flags, addr, offset field
	size, link, info, align        field
	entsize                        field
	entrySize                      int
}

type progLayout struct {
	typ, flags, offset, vaddr, paddr field
	filesz, memsz, align             field
	entrySize                        int
}

type symLayout struct {
	name, value, size, info, other, shndx field
	entrySize                             int
}

type dynLayout struct {
	tag, val  field
	entrySize int
}

// layout is the width descriptor for one ELF class. Every decoder reads
// through it, so the 32- and 64-bit paths share one algorithm and differ only
// in the offsets and widths recorded here.
type layout struct {
	class   elf.Class
	word    int // width of addresses, offsets and xword fields
	header  headerLayout
	section sectionLayout
	prog    progLayout
	sym     symLayout
	dyn     dynLayout
}

var (
	layout32 = newLayout(elf.ELFCLASS32)
	layout64 = newLayout(elf.ELFCLASS64)
)

func layoutFor(class elf.Class) *layout {
	if class == elf.ELFCLASS64 {
		return layout64
	}
	return layout32
}

func newLayout(class elf.Class) *layout {
	w := 4
	if class == elf.ELFCLASS64 {
		w = 8
	}
	l := &layout{class: class, word: w}

	var p packer
	p.next(elf.EI_NIDENT)
	h := &l.header
	h.typ = p.next(2)
	h.machine = p.next(2)
	h.version = p.next(4)
	h.entry = p.next(w)
	h.phoff = p.next(w)
	h.shoff = p.next(w)
	h.flags = p.next(4)
	h.ehsize = p.next(2)
	h.phentsize = p.next(2)
	h.phnum = p.next(2)
	h.shentsize = p.next(2)
	h.shnum = p.next(2)
	h.shstrndx = p.next(2)
	h.size = p.off

	p = packer{}
	s := &l.section
	s.name = p.next(4)
	s.typ = p.next(4)
	s.flags = p.next(w)
	s.addr = p.next(w)
	s.offset = p.next(w)
	s.size = p.next(w)
	s.link = p.next(4)
	s.info = p.next(4)
	s.align = p.next(w)
	s.entsize = p.next(w)
	s.entrySize = p.off

	// Program headers and symbols reorder their fields between classes so
	// that the 64-bit records stay naturally aligned.
	p = packer{}
	ph := &l.prog
	ph.typ = p.next(4)
	if class == elf.ELFCLASS64 {
		ph.flags = p.next(4)
	}
	ph.offset = p.next(w)
	ph.vaddr = p.next(w)
	ph.paddr = p.next(w)
	ph.filesz = p.next(w)
	ph.memsz = p.next(w)
	if class == elf.ELFCLASS32 {
		ph.flags = p.next(4)
	}
	ph.align = p.next(w)
	ph.entrySize = p.off

	p = packer{}
	sym := &l.sym
	sym.name = p.next(4)
	if class == elf.ELFCLASS32 {
		sym.value = p.next(w)
		sym.size = p.next(w)
	}
	sym.info = p.next(1)
	sym.other = p.next(1)
	sym.shndx = p.next(2)
	if class == elf.ELFCLASS64 {
		sym.value = p.next(w)
		sym.size = p.next(w)
	}
	sym.entrySize = p.off

	p = packer{}
	l.dyn.tag = p.next(w)
	l.dyn.val = p.next(w)
	l.dyn.entrySize = p.off

	return l
}

// record reads fields of one fixed-size entry. The first failing read is
// kept and later reads become no-ops, so a decoder can pull every field and
// check err once.
type record struct {
	c     *cursor.Cursor
	base  uint64
	order binary.ByteOrder
	err   error
}

func (r *record) get(f field) uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.c.UintAt(r.base+uint64(f.off), f.size, r.order)
	if err != nil {
		r.err = err
		return 0
	}
	return v
}

// tableRange validates that count entries of entsize bytes starting at off
// fit in the buffer.
func tableRange(c *cursor.Cursor, off, count, entsize uint64) error {
	if entsize != 0 && count > c.Len()/entsize {
		length := uint64(math.MaxUint64)
		if count <= math.MaxUint64/entsize {
			length = count * entsize
		}
		return &OutOfBoundsError{Offset: off, Length: length, BufferLen: c.Len()}
	}
	return c.Check(off, count*entsize)
}
