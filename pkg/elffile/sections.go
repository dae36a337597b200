package elffile

import (
	"debug/elf"

	"github.com/pkg/errors"

	"github.com/jtang613/goelf/pkg/elffile/cursor"
)

// SectionHeader is one decoded section header table entry. Index is the ELF
// section index. Link and Info are left as raw indices.
type SectionHeader struct {
	Index      int
	Name       string
	NameOffset uint32
	Type       elf.SectionType
	Flags      uint64
	Addr       uint64
	Offset     uint64
	Size       uint64
	Link       uint32
	Info       uint32
	Addralign  uint64
	Entsize    uint64
}

// HasFlag reports whether flag is set in sh_flags.
func (s SectionHeader) HasFlag(flag elf.SectionFlag) bool {
	return s.Flags&uint64(flag) != 0
}

// OccupiesFile reports whether the section has bytes in the file.
func (s SectionHeader) OccupiesFile() bool {
	return s.Type != elf.SHT_NOBITS && s.Type != elf.SHT_NULL
}

// HasTable reports whether the section holds fixed-size entries.
func (s SectionHeader) HasTable() bool {
	return s.Entsize > 0
}

// DecodeSections walks the section header table declared by hdr. An absent
// table yields an empty slice. Any invalid entry fails the whole table.
func DecodeSections(buf []byte, id Identity, hdr Header) ([]SectionHeader, error) {
	l := layoutFor(id.Class)
	c := cursor.New(buf)
	entsize := uint64(l.section.entrySize)

	if hdr.Shoff == 0 {
		if hdr.Shnum != 0 {
			return nil, malformedHeader("e_shnum is %d but e_shoff is 0", hdr.Shnum)
		}
		return []SectionHeader{}, nil
	}

	count := hdr.Shnum
	if count == 0 {
		// Extended numbering: the real count lives in sh_size of entry 0.
		if err := tableRange(c, hdr.Shoff, 1, entsize); err != nil {
			return nil, errors.Wrap(err, "section header table")
		}
		first, err := decodeSection(c, l, id, hdr.Shoff, 0)
		if err != nil {
			return nil, err
		}
		count = first.Size
		if count == 0 {
			return []SectionHeader{}, nil
		}
	}

	if err := tableRange(c, hdr.Shoff, count, entsize); err != nil {
		return nil, errors.Wrap(err, "section header table")
	}

	sections := make([]SectionHeader, count)
	for i := range sections {
		sh, err := decodeSection(c, l, id, hdr.Shoff+uint64(i)*entsize, i)
		if err != nil {
			return nil, err
		}
		if sh.OccupiesFile() {
			if err := c.Check(sh.Offset, sh.Size); err != nil {
				return nil, &SectionHeaderError{Index: i, Reason: "contents exceed file", Err: err}
			}
		}
		if uint64(sh.Link) >= count {
			return nil, &SectionHeaderError{Index: i, Reason: "sh_link out of range",
				Err: errors.Errorf("link %d with %d sections", sh.Link, count)}
		}
		sections[i] = sh
	}

	strndx, err := StringSectionIndex(hdr, sections)
	if err != nil {
		return nil, err
	}
	if strndx < 0 {
		return sections, nil
	}
	names, err := newStringTable(buf, sections[strndx])
	if err != nil {
		return nil, malformedHeader("e_shstrndx %d: %v", strndx, err)
	}
	for i := range sections {
		sections[i].Name, err = names.Lookup(sections[i].NameOffset)
		if err != nil {
			return nil, &SectionHeaderError{Index: i, Reason: "resolving name", Err: err}
		}
	}
	return sections, nil
}

// StringSectionIndex resolves e_shstrndx, following the SHN_XINDEX escape to
// sh_link of section 0. It returns -1 when the file has no section name
// table. Index 0 only means "none" when section 0 is the usual null entry.
func StringSectionIndex(hdr Header, sections []SectionHeader) (int, error) {
	idx := hdr.Shstrndx
	if idx == uint64(elf.SHN_XINDEX) && len(sections) > 0 {
		idx = uint64(sections[0].Link)
	}
	if idx == uint64(elf.SHN_UNDEF) && (len(sections) == 0 || sections[0].Type == elf.SHT_NULL) {
		return -1, nil
	}
	if idx >= uint64(len(sections)) {
		return -1, malformedHeader("e_shstrndx %d out of range for %d sections", idx, len(sections))
	}
	return int(idx), nil
}

func decodeSection(c *cursor.Cursor, l *layout, id Identity, base uint64, index int) (SectionHeader, error) {
	r := record{c: c, base: base, order: id.ByteOrder()}
	sh := SectionHeader{
		Index:      index,
		NameOffset: uint32(r.get(l.section.name)),
		Type:       elf.SectionType(r.get(l.section.typ)),
		Flags:      r.get(l.section.flags),
		Addr:       r.get(l.section.addr),
		Offset:     r.get(l.section.offset),
		Size:       r.get(l.section.size),
		Link:       uint32(r.get(l.section.link)),
		Info:       uint32(r.get(l.section.info)),
		Addralign:  r.get(l.section.align),
		Entsize:    r.get(l.section.entsize),
	}
	if r.err != nil {
		return SectionHeader{}, &SectionHeaderError{Index: index, Reason: "truncated entry", Err: r.err}
	}
	return sh, nil
}
