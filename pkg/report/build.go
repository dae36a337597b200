package report

import (
	"debug/elf"
	"fmt"
	"strconv"
	"strings"

	"github.com/jtang613/goelf/pkg/elffile"
)

// Build assembles the report for f. Every part is filled in; opts.Select
// only decides what is rendered.
func Build(path string, f *elffile.File, opts Options) *Report {
	r := &Report{
		Path:           path,
		Selected:       opts.Select,
		Header:         headerInfo(f),
		Sections:       []SectionInfo{},
		Segments:       []SegmentInfo{},
		Symbols:        []SymbolInfo{},
		DynamicSymbols: []SymbolInfo{},
		Libraries:      f.Libraries(),
		Warnings:       []string{},
	}

	for _, sh := range f.Sections() {
		r.Sections = append(r.Sections, SectionInfo{
			Index:     sh.Index,
			Name:      sh.Name,
			Type:      sh.Type.String(),
			Flags:     sectionFlags(sh),
			Address:   sh.Addr,
			Offset:    sh.Offset,
			Size:      sh.Size,
			EntrySize: sh.Entsize,
			HasTable:  sh.HasTable(),
			Link:      sh.Link,
			Info:      sh.Info,
			Align:     sh.Addralign,
		})
	}

	for _, ph := range f.ProgramHeaders() {
		r.Segments = append(r.Segments, SegmentInfo{
			Index:           ph.Index,
			Type:            ph.Type.String(),
			Flags:           segmentFlags(ph.Flags),
			Offset:          ph.Offset,
			VirtualAddress:  ph.Vaddr,
			PhysicalAddress: ph.Paddr,
			FileSize:        ph.Filesz,
			MemorySize:      ph.Memsz,
			Align:           ph.Align,
		})
	}

	for _, s := range f.Symbols() {
		info := symbolInfo(f, s, opts.Demangle)
		r.Symbols = append(r.Symbols, info)
		if sh, _ := f.Section(s.Table); sh.Type == elf.SHT_DYNSYM {
			r.DynamicSymbols = append(r.DynamicSymbols, info)
		}
	}

	for _, w := range f.Warnings() {
		r.Warnings = append(r.Warnings, w.String())
	}
	return r
}

func headerInfo(f *elffile.File) HeaderInfo {
	id := f.Identity()
	h := f.Header()
	return HeaderInfo{
		Magic:               hexBytes(h.Ident[:]),
		Class:               id.Class.String(),
		ClassDescription:    classDescription(id.Class),
		Data:                id.Data.String(),
		DataDescription:     dataDescription(id.Data),
		IdentVersion:        uint8(id.Version),
		OSABI:               id.OSABI.String(),
		ABIVersion:          id.ABIVersion,
		Type:                h.Type.String(),
		Machine:             h.Machine.String(),
		Version:             h.Version,
		Entry:               h.Entry,
		ProgramHeaderOffset: h.Phoff,
		SectionHeaderOffset: h.Shoff,
		Flags:               h.Flags,
		HeaderSize:          h.Ehsize,
		ProgramHeaderSize:   h.Phentsize,
		ProgramHeaderCount:  len(f.ProgramHeaders()),
		SectionHeaderSize:   h.Shentsize,
		SectionHeaderCount:  len(f.Sections()),
		StringTableIndex:    f.SectionNameIndex(),
		Interpreter:         f.Interpreter(),
	}
}

func symbolInfo(f *elffile.File, s elffile.Symbol, style elffile.DemangleStyle) SymbolInfo {
	table, _ := f.Section(s.Table)
	info := SymbolInfo{
		Table:      table.Name,
		Index:      s.Index,
		Name:       s.Name,
		Value:      s.Value,
		Size:       s.Size,
		Type:       s.Type().String(),
		Bind:       s.Bind().String(),
		Visibility: s.Visibility().String(),
		Section:    symbolSection(f, s.Shndx),
	}
	if d := s.DemangledName(style); d != s.Name {
		info.DemangledName = d
	}
	return info
}

func symbolSection(f *elffile.File, shndx elf.SectionIndex) string {
	switch shndx {
	case elf.SHN_UNDEF:
		return "UND"
	case elf.SHN_ABS:
		return "ABS"
	case elf.SHN_COMMON:
		return "COM"
	case elf.SHN_XINDEX:
		return "XINDEX"
	}
	if sh, ok := f.Section(int(shndx)); ok && sh.Name != "" {
		return sh.Name
	}
	return strconv.Itoa(int(shndx))
}

var sectionFlagLetters = []struct {
	flag   elf.SectionFlag
	letter byte
}{
	{elf.SHF_WRITE, 'W'},
	{elf.SHF_ALLOC, 'A'},
	{elf.SHF_EXECINSTR, 'X'},
	{elf.SHF_MERGE, 'M'},
	{elf.SHF_STRINGS, 'S'},
	{elf.SHF_INFO_LINK, 'I'},
	{elf.SHF_LINK_ORDER, 'L'},
	{elf.SHF_OS_NONCONFORMING, 'O'},
	{elf.SHF_GROUP, 'G'},
	{elf.SHF_TLS, 'T'},
	{elf.SHF_COMPRESSED, 'C'},
}

// sectionFlags renders sh_flags with the readelf key letters.
func sectionFlags(sh elffile.SectionHeader) string {
	var b strings.Builder
	for _, f := range sectionFlagLetters {
		if sh.HasFlag(f.flag) {
			b.WriteByte(f.letter)
		}
	}
	return b.String()
}

func segmentFlags(flags elf.ProgFlag) string {
	b := []byte("   ")
	if flags&elf.PF_R != 0 {
		b[0] = 'R'
	}
	if flags&elf.PF_W != 0 {
		b[1] = 'W'
	}
	if flags&elf.PF_X != 0 {
		b[2] = 'E'
	}
	return string(b)
}

func classDescription(class elf.Class) string {
	switch class {
	case elf.ELFCLASS32:
		return "ELF32 (32-bit)"
	case elf.ELFCLASS64:
		return "ELF64 (64-bit)"
	}
	return fmt.Sprintf("unknown (%d)", uint8(class))
}

func dataDescription(data elf.Data) string {
	switch data {
	case elf.ELFDATA2LSB:
		return "2's complement, little endian"
	case elf.ELFDATA2MSB:
		return "2's complement, big endian"
	}
	return fmt.Sprintf("unknown (%d)", uint8(data))
}

func hexBytes(b []byte) string {
	return fmt.Sprintf("% x", b)
}
