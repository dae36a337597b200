// Package testelf builds small synthetic ELF images for tests. It encodes
// every record by hand, independently of the decoder under test.
package testelf

import (
	"debug/elf"
	"encoding/binary"
)

// Header holds the raw file header fields as written to disk.
type Header struct {
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

// Section describes one section to emit. Size is only used for SHT_NOBITS
// sections and when Data is nil; otherwise it is len(Data).
type Section struct {
	Name      string
	Type      elf.SectionType
	Flags     uint64
	Addr      uint64
	Data      []byte
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

// Prog describes one program header. When Section is set, the segment's
// offset and file size cover that section's data.
type Prog struct {
	Type    elf.ProgType
	Flags   elf.ProgFlag
	Section string
	Offset  uint64
	Filesz  uint64
	Vaddr   uint64
	Paddr   uint64
	Memsz   uint64
	Align   uint64
}

// Builder assembles an image: header, program headers, section contents,
// a generated .shstrtab and finally the section header table. A null
// section 0 is always emitted.
type Builder struct {
	Class        elf.Class
	Data         elf.Data
	IdentVersion uint8
	OSABI        elf.OSABI
	Type         elf.Type
	Machine      elf.Machine
	Version      uint32
	Entry        uint64
	Flags        uint32
	Sections     []Section
	Progs        []Prog

	// ExtendedNumbering stores the section count, e_shstrndx and program
	// header count in section 0 using the SHN_XINDEX / PN_XNUM escapes.
	ExtendedNumbering bool

	// Override may adjust the header just before it is encoded.
	Override func(h *Header)
}

// Image is the encoded file plus the locations tests need to corrupt it.
type Image struct {
	Bytes          []byte
	Header         Header
	SectionOffsets []uint64 // file offset of each section's data, by index
	ShstrtabIndex  int
}

// New returns a builder for a class/byte order pair with current versions.
func New(class elf.Class, data elf.Data) *Builder {
	return &Builder{
		Class:        class,
		Data:         data,
		IdentVersion: uint8(elf.EV_CURRENT),
		Type:         elf.ET_EXEC,
		Machine:      elf.EM_X86_64,
		Version:      uint32(elf.EV_CURRENT),
	}
}

// Order returns the byte order of the image being built.
func (b *Builder) Order() binary.ByteOrder {
	return ByteOrder(b.Data)
}

// ByteOrder maps an ELF data encoding to a byte order.
func ByteOrder(data elf.Data) binary.ByteOrder {
	if data == elf.ELFDATA2MSB {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (b *Builder) is64() bool { return b.Class == elf.ELFCLASS64 }

// HeaderSize returns e_ehsize for the builder's class.
func (b *Builder) HeaderSize() int {
	if b.is64() {
		return 64
	}
	return 52
}

func (b *Builder) SectionHeaderSize() int {
	if b.is64() {
		return 64
	}
	return 40
}

func (b *Builder) ProgramHeaderSize() int {
	if b.is64() {
		return 56
	}
	return 32
}

func (b *Builder) SymbolSize() int {
	if b.is64() {
		return 24
	}
	return 16
}

// Build encodes the image.
func (b *Builder) Build() *Image {
	names, nameOff := StringTable(append(b.sectionNames(), ".shstrtab")...)
	sections := append([]Section{{}}, b.Sections...)
	sections = append(sections, Section{Name: ".shstrtab", Type: elf.SHT_STRTAB, Data: names, Addralign: 1})
	shstrndx := len(sections) - 1

	out := make([]byte, b.HeaderSize())
	phoff := uint64(0)
	if len(b.Progs) > 0 {
		phoff = uint64(len(out))
		out = append(out, make([]byte, len(b.Progs)*b.ProgramHeaderSize())...)
	}

	offsets := make([]uint64, len(sections))
	for i := 1; i < len(sections); i++ {
		s := sections[i]
		out = pad(out, 8)
		offsets[i] = uint64(len(out))
		if s.Type != elf.SHT_NOBITS {
			out = append(out, s.Data...)
		}
	}
	out = pad(out, 8)
	shoff := uint64(len(out))

	w := newWriter(b.Order(), b.is64())
	for i, s := range sections {
		size := s.Size
		if s.Type != elf.SHT_NOBITS && s.Data != nil {
			size = uint64(len(s.Data))
		}
		link, info := s.Link, s.Info
		if i == 0 && b.ExtendedNumbering {
			size = uint64(len(sections))
			link = uint32(shstrndx)
			info = uint32(len(b.Progs))
		}
		nameOffset := uint32(0)
		if i > 0 {
			nameOffset = nameOff[s.Name]
		}
		offset := offsets[i]
		if i == 0 {
			offset = 0
		}
		w.u32(nameOffset)
		w.u32(uint32(s.Type))
		w.word(s.Flags)
		w.word(s.Addr)
		w.word(offset)
		w.word(size)
		w.u32(link)
		w.u32(info)
		w.word(s.Addralign)
		w.word(s.Entsize)
	}
	out = append(out, w.bytes()...)

	h := Header{
		Type:      uint16(b.Type),
		Machine:   uint16(b.Machine),
		Version:   b.Version,
		Entry:     b.Entry,
		Phoff:     phoff,
		Shoff:     shoff,
		Flags:     b.Flags,
		Ehsize:    uint16(b.HeaderSize()),
		Phentsize: uint16(b.ProgramHeaderSize()),
		Phnum:     uint16(len(b.Progs)),
		Shentsize: uint16(b.SectionHeaderSize()),
		Shnum:     uint16(len(sections)),
		Shstrndx:  uint16(shstrndx),
	}
	if b.ExtendedNumbering {
		h.Shnum = 0
		h.Shstrndx = uint16(elf.SHN_XINDEX)
		if len(b.Progs) > 0 {
			h.Phnum = 0xffff // PN_XNUM
		}
	}
	if b.Override != nil {
		b.Override(&h)
	}
	copy(out, b.EncodeHeader(h))

	pw := newWriter(b.Order(), b.is64())
	for _, p := range b.Progs {
		off, filesz := p.Offset, p.Filesz
		if p.Section != "" {
			for i, s := range sections {
				if i > 0 && s.Name == p.Section {
					off, filesz = offsets[i], uint64(len(s.Data))
				}
			}
		}
		pw.u32(uint32(p.Type))
		if b.is64() {
			pw.u32(uint32(p.Flags))
		}
		pw.word(off)
		pw.word(p.Vaddr)
		pw.word(p.Paddr)
		pw.word(filesz)
		pw.word(p.Memsz)
		if !b.is64() {
			pw.u32(uint32(p.Flags))
		}
		pw.word(p.Align)
	}
	if phoff != 0 {
		copy(out[phoff:], pw.bytes())
	}

	return &Image{Bytes: out, Header: h, SectionOffsets: offsets, ShstrtabIndex: shstrndx}
}

// EncodeHeader serialises the e_ident prefix and h for the builder's class
// and byte order.
func (b *Builder) EncodeHeader(h Header) []byte {
	ident := make([]byte, elf.EI_NIDENT)
	copy(ident, elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(b.Class)
	ident[elf.EI_DATA] = byte(b.Data)
	ident[elf.EI_VERSION] = b.IdentVersion
	ident[elf.EI_OSABI] = byte(b.OSABI)

	w := newWriter(b.Order(), b.is64())
	w.buf = append(w.buf, ident...)
	w.u16(h.Type)
	w.u16(h.Machine)
	w.u32(h.Version)
	w.word(h.Entry)
	w.word(h.Phoff)
	w.word(h.Shoff)
	w.u32(h.Flags)
	w.u16(h.Ehsize)
	w.u16(h.Phentsize)
	w.u16(h.Phnum)
	w.u16(h.Shentsize)
	w.u16(h.Shnum)
	w.u16(h.Shstrndx)
	return w.bytes()
}

func (b *Builder) sectionNames() []string {
	names := make([]string, 0, len(b.Sections))
	for _, s := range b.Sections {
		names = append(names, s.Name)
	}
	return names
}

func pad(b []byte, align int) []byte {
	for len(b)%align != 0 {
		b = append(b, 0)
	}
	return b
}
