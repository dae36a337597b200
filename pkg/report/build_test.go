package report

import (
	"debug/elf"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jtang613/goelf/internal/testelf"
	"github.com/jtang613/goelf/pkg/elffile"
)

func parseSample(t *testing.T, class elf.Class, data elf.Data) *elffile.File {
	t.Helper()
	f, err := elffile.Parse(testelf.Sample(class, data).Build().Bytes)
	require.NoError(t, err)
	return f
}

func TestBuildHeader(t *testing.T) {
	f := parseSample(t, elf.ELFCLASS64, elf.ELFDATA2LSB)
	rep := Build("a.out", f, DefaultOptions())

	h := rep.Header
	require.Equal(t, "7f 45 4c 46 02 01 01 00 00 00 00 00 00 00 00 00", h.Magic)
	require.Equal(t, "ELFCLASS64", h.Class)
	require.Equal(t, "ELF64 (64-bit)", h.ClassDescription)
	require.Equal(t, "2's complement, little endian", h.DataDescription)
	require.Equal(t, "ET_EXEC", h.Type)
	require.Equal(t, "EM_X86_64", h.Machine)
	require.Equal(t, uint64(testelf.SampleEntry), h.Entry)
	require.Equal(t, 3, h.ProgramHeaderCount)
	require.Equal(t, 10, h.SectionHeaderCount)
	require.Equal(t, 9, h.StringTableIndex)
	require.Equal(t, testelf.SampleInterp, h.Interpreter)
}

func TestBuildTables(t *testing.T) {
	f := parseSample(t, elf.ELFCLASS32, elf.ELFDATA2MSB)
	opts := DefaultOptions()
	opts.Demangle = elffile.DemangleSimplified
	rep := Build("a.out", f, opts)

	require.Len(t, rep.Sections, 10)
	require.Equal(t, 9, rep.RealSections())
	text := rep.Sections[2]
	require.Equal(t, ".text", text.Name)
	require.Equal(t, "SHT_PROGBITS", text.Type)
	require.Equal(t, "AX", text.Flags)
	require.False(t, text.HasTable)
	require.Equal(t, "WA", rep.Sections[3].Flags)
	require.True(t, rep.Sections[5].HasTable)

	require.Len(t, rep.Segments, 3)
	require.Equal(t, "PT_LOAD", rep.Segments[1].Type)
	require.Equal(t, "R E", rep.Segments[1].Flags)
	require.Equal(t, "RW ", rep.Segments[2].Flags)

	require.Len(t, rep.Symbols, 5)
	require.Len(t, rep.DynamicSymbols, 2)
	puts := rep.DynamicSymbols[1]
	require.Equal(t, ".dynsym", puts.Table)
	require.Equal(t, "puts", puts.Name)
	require.Equal(t, "UND", puts.Section)
	require.Empty(t, puts.DemangledName)

	mangled := rep.Symbols[3]
	require.Equal(t, "_ZN3foo3barEv", mangled.Name)
	require.Equal(t, "foo::bar", mangled.DemangledName)
	require.Equal(t, ".text", mangled.Section)
	require.Equal(t, "STT_FUNC", mangled.Type)
	require.Equal(t, "STB_LOCAL", mangled.Bind)
	require.Equal(t, "STV_DEFAULT", mangled.Visibility)

	require.Equal(t, []string{"libc.so.6"}, rep.Libraries)
	require.Empty(t, rep.Warnings)
}

func TestBuildStaticFile(t *testing.T) {
	f, err := elffile.Parse(testelf.Minimal(elf.ELFCLASS64, elf.ELFDATA2LSB).Build().Bytes)
	require.NoError(t, err)

	rep := Build("static", f, Options{Select: SelectAll()})
	require.NotNil(t, rep.Libraries)
	require.Empty(t, rep.Libraries)
	require.NotNil(t, rep.Segments)
	require.Empty(t, rep.Symbols)
	require.Empty(t, rep.Header.Interpreter)
}

func TestDocumentSelection(t *testing.T) {
	f := parseSample(t, elf.ELFCLASS64, elf.ELFDATA2MSB)

	doc := Build("x", f, Options{Select: Selection{Header: true}}).Document()
	require.ElementsMatch(t, []string{"path", "warnings", "header"}, keys(doc))

	doc = Build("x", f, Options{Select: Selection{Sections: true, DynLibs: true}}).Document()
	require.ElementsMatch(t, []string{"path", "warnings", "sections", "section_count", "libraries"}, keys(doc))
	require.Equal(t, 9, doc["section_count"])

	doc = Build("x", f, Options{Select: SelectAll()}).Document()
	require.Len(t, doc, 9)
}

func TestSymbolSectionNames(t *testing.T) {
	f := parseSample(t, elf.ELFCLASS64, elf.ELFDATA2LSB)
	require.Equal(t, "UND", symbolSection(f, elf.SHN_UNDEF))
	require.Equal(t, "ABS", symbolSection(f, elf.SHN_ABS))
	require.Equal(t, "COM", symbolSection(f, elf.SHN_COMMON))
	require.Equal(t, ".bss", symbolSection(f, 3))
	require.Equal(t, "42", symbolSection(f, 42))
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
