package elffile

import (
	"debug/elf"
	"fmt"

	"github.com/pkg/errors"

	"github.com/jtang613/goelf/pkg/elffile/cursor"
)

// pnXNum in e_phnum means the real count is in sh_info of section 0.
const pnXNum = 0xffff

// ProgramHeader is one decoded program header (segment) entry.
type ProgramHeader struct {
	Index  int
	Type   elf.ProgType
	Flags  elf.ProgFlag
	Offset uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

// DecodeProgramHeaders walks the program header table declared by hdr.
// sections is consulted only for the PN_XNUM escape, where the real count
// lives in sh_info of section 0. filesz > memsz is reported as a warning.
func DecodeProgramHeaders(buf []byte, id Identity, hdr Header, sections []SectionHeader) ([]ProgramHeader, []Warning, error) {
	l := layoutFor(id.Class)
	c := cursor.New(buf)
	entsize := uint64(l.prog.entrySize)

	count := hdr.Phnum
	if count == pnXNum && len(sections) > 0 {
		count = uint64(sections[0].Info)
	}
	if count == 0 {
		return []ProgramHeader{}, nil, nil
	}
	if hdr.Phentsize != entsize {
		return nil, nil, &ProgramHeaderError{Index: 0, Reason: "bad entry size",
			Err: errors.Errorf("e_phentsize is %d, expected %d for %s", hdr.Phentsize, entsize, id.Class)}
	}
	if hdr.Phoff == 0 {
		return nil, nil, &ProgramHeaderError{Index: 0, Reason: "e_phoff is 0"}
	}
	if err := tableRange(c, hdr.Phoff, count, entsize); err != nil {
		return nil, nil, errors.Wrap(err, "program header table")
	}

	var warnings []Warning
	progs := make([]ProgramHeader, count)
	for i := range progs {
		r := record{c: c, base: hdr.Phoff + uint64(i)*entsize, order: id.ByteOrder()}
		ph := ProgramHeader{
			Index:  i,
			Type:   elf.ProgType(r.get(l.prog.typ)),
			Flags:  elf.ProgFlag(r.get(l.prog.flags)),
			Offset: r.get(l.prog.offset),
			Vaddr:  r.get(l.prog.vaddr),
			Paddr:  r.get(l.prog.paddr),
			Filesz: r.get(l.prog.filesz),
			Memsz:  r.get(l.prog.memsz),
			Align:  r.get(l.prog.align),
		}
		if r.err != nil {
			return nil, nil, &ProgramHeaderError{Index: i, Reason: "truncated entry", Err: r.err}
		}
		if ph.Type != elf.PT_NULL {
			if err := c.Check(ph.Offset, ph.Filesz); err != nil {
				return nil, nil, &ProgramHeaderError{Index: i, Reason: "contents exceed file", Err: err}
			}
		}
		if ph.Filesz > ph.Memsz {
			warnings = append(warnings, Warning{
				Kind:    WarnFileSizeExceedsMemSize,
				Index:   i,
				Message: fmt.Sprintf("program header %d: p_filesz 0x%x exceeds p_memsz 0x%x", i, ph.Filesz, ph.Memsz),
			})
		}
		progs[i] = ph
	}
	return progs, warnings, nil
}
