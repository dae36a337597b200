// Package elffile decodes the structure of ELF object files from an
// in-memory buffer: identity, file header, section and program header
// tables, string tables, symbol tables and the dynamic section.
//
// Decoding is all-or-nothing. Parse either returns a complete, immutable
// File or the first error encountered; structurally invalid tables are never
// skipped. Soft anomalies are collected as warnings on the File.
package elffile

import (
	"bytes"
	"debug/elf"
	"fmt"

	"github.com/pkg/errors"
)

// File is a decoded ELF file. It borrows the buffer passed to Parse and is
// safe for concurrent readers. Accessors return copies of the underlying
// tables.
type File struct {
	buf       []byte
	identity  Identity
	header    Header
	sections  []SectionHeader
	progs     []ProgramHeader
	symbols   []Symbol
	dynamic   []DynamicEntry
	libraries []string
	interp    string
	shstrndx  int
	warnings  []Warning
}

// Parse decodes buf. The buffer must not be modified while the File is in
// use.
func Parse(buf []byte) (*File, error) {
	id, warnings, err := ProbeIdentity(buf)
	if err != nil {
		return nil, err
	}

	hdr, err := DecodeHeader(buf, id)
	if err != nil {
		return nil, err
	}
	if hdr.Version != uint64(elf.EV_CURRENT) {
		warnings = append(warnings, Warning{
			Kind:    WarnHeaderVersion,
			Index:   -1,
			Message: fmt.Sprintf("e_version is %d, expected %d", hdr.Version, elf.EV_CURRENT),
		})
	}

	f := &File{buf: buf, identity: id, header: hdr}

	if f.sections, err = DecodeSections(buf, id, hdr); err != nil {
		return nil, errors.Wrap(err, "decoding section headers")
	}
	if f.shstrndx, err = StringSectionIndex(hdr, f.sections); err != nil {
		return nil, err
	}

	progs, w, err := DecodeProgramHeaders(buf, id, hdr, f.sections)
	if err != nil {
		return nil, errors.Wrap(err, "decoding program headers")
	}
	f.progs = progs
	warnings = append(warnings, w...)

	f.symbols = []Symbol{}
	for _, sh := range f.sections {
		switch {
		case IsSymbolTable(sh):
			syms, w, err := DecodeSymbols(buf, id, f.sections, sh.Index)
			if err != nil {
				return nil, errors.Wrapf(err, "decoding symbol table %q", sh.Name)
			}
			f.symbols = append(f.symbols, syms...)
			warnings = append(warnings, w...)
		case sh.Type == elf.SHT_DYNAMIC && f.dynamic == nil:
			entries, needed, err := DecodeDynamic(buf, id, f.sections, sh.Index)
			if err != nil {
				return nil, errors.Wrapf(err, "decoding dynamic section %q", sh.Name)
			}
			f.dynamic = entries
			f.libraries = needed
		}
	}

	for _, ph := range f.progs {
		if ph.Type != elf.PT_INTERP {
			continue
		}
		// Contents were bounds checked by DecodeProgramHeaders.
		data := buf[ph.Offset : ph.Offset+ph.Filesz]
		if i := bytes.IndexByte(data, 0); i >= 0 {
			data = data[:i]
		}
		f.interp = string(data)
		break
	}

	f.warnings = warnings
	return f, nil
}

// Identity returns the decoded e_ident fields.
func (f *File) Identity() Identity {
	return f.identity
}

// Header returns the decoded file header.
func (f *File) Header() Header {
	return f.header
}

// Size returns the size of the decoded buffer.
func (f *File) Size() int {
	return len(f.buf)
}

// Sections returns the section header table in index order.
func (f *File) Sections() []SectionHeader {
	return append([]SectionHeader{}, f.sections...)
}

// Section returns the section with the given ELF section index.
func (f *File) Section(index int) (SectionHeader, bool) {
	if index < 0 || index >= len(f.sections) {
		return SectionHeader{}, false
	}
	return f.sections[index], true
}

// SectionByName returns the first section called name.
func (f *File) SectionByName(name string) (SectionHeader, bool) {
	for _, s := range f.sections {
		if s.Name == name {
			return s, true
		}
	}
	return SectionHeader{}, false
}

// SectionNameIndex returns the resolved e_shstrndx, or -1 when the file has
// no section name table.
func (f *File) SectionNameIndex() int {
	return f.shstrndx
}

// ProgramHeaders returns the program header table in index order.
func (f *File) ProgramHeaders() []ProgramHeader {
	return append([]ProgramHeader{}, f.progs...)
}

// Symbols returns the symbols of every symbol table, in section order.
func (f *File) Symbols() []Symbol {
	return append([]Symbol{}, f.symbols...)
}

// DynamicSymbols returns only the symbols of SHT_DYNSYM tables.
func (f *File) DynamicSymbols() []Symbol {
	syms := []Symbol{}
	for _, s := range f.symbols {
		if f.sections[s.Table].Type == elf.SHT_DYNSYM {
			syms = append(syms, s)
		}
	}
	return syms
}

// Dynamic returns the entries of the dynamic section up to DT_NULL.
func (f *File) Dynamic() []DynamicEntry {
	return append([]DynamicEntry{}, f.dynamic...)
}

// Libraries returns the DT_NEEDED names in dynamic section order.
func (f *File) Libraries() []string {
	return append([]string{}, f.libraries...)
}

// Interpreter returns the PT_INTERP path, or "" for files without one.
func (f *File) Interpreter() string {
	return f.interp
}

// Warnings returns the soft anomalies found while decoding.
func (f *File) Warnings() []Warning {
	return append([]Warning{}, f.warnings...)
}

// ResolveString resolves off in the string table held by section. The
// section must be SHT_STRTAB or the e_shstrndx section.
func (f *File) ResolveString(section int, off uint32) (string, error) {
	sh, ok := f.Section(section)
	if !ok {
		return "", errors.Wrapf(ErrInvalidStringTableReference, "section %d out of range for %d sections", section, len(f.sections))
	}
	var (
		t   *StringTable
		err error
	)
	if section == f.shstrndx {
		t, err = newStringTable(f.buf, sh)
	} else {
		t, err = NewStringTable(f.buf, sh)
	}
	if err != nil {
		return "", err
	}
	return t.Lookup(off)
}
