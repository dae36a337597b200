package elffile

import (
	"debug/elf"
	"fmt"

	"github.com/pkg/errors"

	"github.com/jtang613/goelf/pkg/elffile/cursor"
)

// Symbol is one entry of a SHT_SYMTAB or SHT_DYNSYM section with its name
// already resolved. Table is the section index of the owning table and Index
// the position within it.
type Symbol struct {
	Table      int
	Index      int
	Name       string
	NameOffset uint32
	Value      uint64
	Size       uint64
	Info       uint8
	Other      uint8
	Shndx      elf.SectionIndex
}

// Type returns the symbol type from st_info.
func (s Symbol) Type() elf.SymType { return elf.ST_TYPE(s.Info) }
func (s Symbol) Bind() elf.SymBind { return elf.ST_BIND(s.Info) }
func (s Symbol) Visibility() elf.SymVis { return elf.ST_VISIBILITY(s.Other) }
func (s Symbol) IsUndefined() bool { return s.Shndx == elf.SHN_UNDEF }

// IsSymbolTable reports whether sh holds symbol records.
func IsSymbolTable(sh SectionHeader) bool {
	return sh.Type == elf.SHT_SYMTAB || sh.Type == elf.SHT_DYNSYM
}

// DecodeSymbols decodes the symbol table in section index, resolving every
// name through the string table named by its sh_link. A name that cannot be
// resolved fails the whole table.
func DecodeSymbols(buf []byte, id Identity, sections []SectionHeader, index int) ([]Symbol, []Warning, error) {
	if index < 0 || index >= len(sections) {
		return nil, nil, errors.Errorf("symbol table index %d out of range", index)
	}
	sh := sections[index]
	if !IsSymbolTable(sh) {
		return nil, nil, &SectionHeaderError{Index: index, Reason: fmt.Sprintf("%s is not a symbol table", sh.Type)}
	}

	l := layoutFor(id.Class)
	entsize := uint64(l.sym.entrySize)
	if sh.Entsize != entsize {
		return nil, nil, &SectionHeaderError{Index: index, Reason: "bad symbol entry size",
			Err: errors.Errorf("sh_entsize is %d, expected %d for %s", sh.Entsize, entsize, id.Class)}
	}

	if uint64(sh.Link) >= uint64(len(sections)) {
		return nil, nil, errors.Wrapf(ErrInvalidStringTableReference, "symbol table %d links to section %d", index, sh.Link)
	}
	strtab, err := NewStringTable(buf, sections[sh.Link])
	if err != nil {
		return nil, nil, errors.Wrapf(err, "symbol table %d", index)
	}

	var warnings []Warning
	if sh.Size%entsize != 0 {
		warnings = append(warnings, Warning{
			Kind:    WarnTableSize,
			Index:   index,
			Message: fmt.Sprintf("section %d: size 0x%x is not a multiple of entry size %d", index, sh.Size, entsize),
		})
	}
	count := sh.Size / entsize

	c := cursor.New(buf)
	if err := tableRange(c, sh.Offset, count, entsize); err != nil {
		return nil, nil, &SectionHeaderError{Index: index, Reason: "symbol table exceeds file", Err: err}
	}

	syms := make([]Symbol, count)
	for i := range syms {
		r := record{c: c, base: sh.Offset + uint64(i)*entsize, order: id.ByteOrder()}
		sym := Symbol{
			Table:      index,
			Index:      i,
			NameOffset: uint32(r.get(l.sym.name)),
			Value:      r.get(l.sym.value),
			Size:       r.get(l.sym.size),
			Info:       uint8(r.get(l.sym.info)),
			Other:      uint8(r.get(l.sym.other)),
			Shndx:      elf.SectionIndex(r.get(l.sym.shndx)),
		}
		if r.err != nil {
			return nil, nil, &SectionHeaderError{Index: index, Reason: fmt.Sprintf("symbol %d truncated", i), Err: r.err}
		}
		sym.Name, err = strtab.Lookup(sym.NameOffset)
		if err != nil {
			return nil, nil, &SymbolNameError{Table: index, Index: i, Offset: sym.NameOffset, Err: err}
		}
		syms[i] = sym
	}
	return syms, warnings, nil
}
