package elffile

import (
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jtang613/goelf/internal/testelf"
)

func decodeSections(t *testing.T, img *testelf.Image) ([]SectionHeader, error) {
	t.Helper()
	id, hdr := mustHeader(img.Bytes)
	return DecodeSections(img.Bytes, id, hdr)
}

func TestDecodeSectionsText(t *testing.T) {
	img := minimalBuilder(elf.ELFCLASS64, elf.ELFDATA2LSB).Build()

	sections, err := decodeSections(t, img)
	require.NoError(t, err)
	require.Len(t, sections, 3)

	require.Equal(t, elf.SHT_NULL, sections[0].Type)
	require.Equal(t, "", sections[0].Name)

	text := sections[1]
	require.Equal(t, 1, text.Index)
	require.Equal(t, ".text", text.Name)
	require.Equal(t, elf.SHT_PROGBITS, text.Type)
	require.Equal(t, uint64(0x40), text.Offset)
	require.Equal(t, uint64(0x10), text.Size)
	require.True(t, text.HasFlag(elf.SHF_EXECINSTR))
	require.False(t, text.HasFlag(elf.SHF_WRITE))
	require.True(t, text.OccupiesFile())
	require.False(t, text.HasTable())

	require.Equal(t, ".shstrtab", sections[2].Name)
}

// A single .text section that doubles as the name table, written without the
// builder so that no null section is added.
func TestDecodeSectionsSingleText(t *testing.T) {
	b := testelf.New(elf.ELFCLASS64, elf.ELFDATA2LSB)
	le := binary.LittleEndian

	text := make([]byte, 0x10)
	copy(text, "\x00.text\x00")
	shdr := make([]byte, 64)
	le.PutUint32(shdr[0:], 1)
	le.PutUint32(shdr[4:], uint32(elf.SHT_PROGBITS))
	le.PutUint64(shdr[8:], uint64(elf.SHF_ALLOC|elf.SHF_EXECINSTR))
	le.PutUint64(shdr[24:], 0x40)
	le.PutUint64(shdr[32:], 0x10)
	le.PutUint64(shdr[48:], 16)

	buf := b.EncodeHeader(testelf.Header{
		Type:      uint16(elf.ET_REL),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     0x50,
		Ehsize:    64,
		Phentsize: 56,
		Shentsize: 64,
		Shnum:     1,
		Shstrndx:  0,
	})
	buf = append(buf, text...)
	buf = append(buf, shdr...)

	f, err := Parse(buf)
	require.NoError(t, err)
	sections := f.Sections()
	require.Len(t, sections, 1)
	require.Equal(t, ".text", sections[0].Name)
	require.Equal(t, uint64(0x40), sections[0].Offset)
	require.Equal(t, uint64(0x10), sections[0].Size)
	require.Equal(t, 0, f.SectionNameIndex())
}

func TestDecodeSectionsAllFormats(t *testing.T) {
	for _, f := range allFormats {
		t.Run(formatName(f.class, f.data), func(t *testing.T) {
			img := sampleBuilder(f.class, f.data).Build()

			sections, err := decodeSections(t, img)
			require.NoError(t, err)
			require.Len(t, sections, sampleSections)

			want := []string{"", ".interp", ".text", ".bss", ".dynstr", ".dynsym", ".dynamic", ".strtab", ".symtab", ".shstrtab"}
			for i, sh := range sections {
				require.Equal(t, i, sh.Index)
				require.Equal(t, want[i], sh.Name)
				if i > 0 && sh.Type != elf.SHT_NOBITS {
					require.Equal(t, img.SectionOffsets[i], sh.Offset, sh.Name)
				}
			}

			bss := sections[idxBss]
			require.Equal(t, elf.SHT_NOBITS, bss.Type)
			require.Equal(t, uint64(0x100), bss.Size)
			require.False(t, bss.OccupiesFile())

			symtab := sections[idxSymtab]
			require.True(t, symtab.HasTable())
			require.Equal(t, uint32(idxStrtab), symtab.Link)
			require.Equal(t, uint32(2), symtab.Info)
		})
	}
}

func TestDecodeSectionsAbsentTable(t *testing.T) {
	b := minimalBuilder(elf.ELFCLASS32, elf.ELFDATA2MSB)
	b.Override = func(h *testelf.Header) {
		h.Shoff = 0
		h.Shnum = 0
		h.Shstrndx = 0
	}
	img := b.Build()

	sections, err := decodeSections(t, img)
	require.NoError(t, err)
	require.NotNil(t, sections)
	require.Empty(t, sections)

	f, err := Parse(img.Bytes)
	require.NoError(t, err)
	require.Empty(t, f.Sections())
	require.Equal(t, -1, f.SectionNameIndex())
}

func TestDecodeSectionsNoNameTable(t *testing.T) {
	b := minimalBuilder(elf.ELFCLASS64, elf.ELFDATA2LSB)
	b.Override = func(h *testelf.Header) { h.Shstrndx = uint16(elf.SHN_UNDEF) }
	img := b.Build()

	sections, err := decodeSections(t, img)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	for _, sh := range sections {
		require.Empty(t, sh.Name)
	}
}

func TestDecodeSectionsExtendedNumbering(t *testing.T) {
	for _, f := range allFormats {
		t.Run(formatName(f.class, f.data), func(t *testing.T) {
			b := sampleBuilder(f.class, f.data)
			b.ExtendedNumbering = true
			img := b.Build()

			id, hdr := mustHeader(img.Bytes)
			require.Zero(t, hdr.Shnum)
			require.Equal(t, uint64(elf.SHN_XINDEX), hdr.Shstrndx)

			sections, err := DecodeSections(img.Bytes, id, hdr)
			require.NoError(t, err)
			require.Len(t, sections, sampleSections)
			require.Equal(t, ".symtab", sections[idxSymtab].Name)

			idx, err := StringSectionIndex(hdr, sections)
			require.NoError(t, err)
			require.Equal(t, idxShstrtab, idx)
		})
	}
}

func TestDecodeSectionsRejects(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *testelf.Builder
		want    error
		wantIdx int
	}{
		{
			name: "table beyond buffer",
			build: func() *testelf.Builder {
				b := minimalBuilder(elf.ELFCLASS64, elf.ELFDATA2LSB)
				b.Override = func(h *testelf.Header) { h.Shoff = 0x100000 }
				return b
			},
			want:    ErrOutOfBounds,
			wantIdx: -1,
		},
		{
			name: "shoff zero with sections",
			build: func() *testelf.Builder {
				b := minimalBuilder(elf.ELFCLASS64, elf.ELFDATA2LSB)
				b.Override = func(h *testelf.Header) { h.Shoff = 0 }
				return b
			},
			want:    ErrMalformedHeader,
			wantIdx: -1,
		},
		{
			name: "shstrndx out of range",
			build: func() *testelf.Builder {
				b := minimalBuilder(elf.ELFCLASS32, elf.ELFDATA2LSB)
				b.Override = func(h *testelf.Header) { h.Shstrndx = 50 }
				return b
			},
			want:    ErrMalformedHeader,
			wantIdx: -1,
		},
		{
			name: "contents beyond file",
			build: func() *testelf.Builder {
				b := minimalBuilder(elf.ELFCLASS32, elf.ELFDATA2MSB)
				b.Sections = append(b.Sections, testelf.Section{Name: ".data", Type: elf.SHT_PROGBITS, Size: 0x10000})
				return b
			},
			want:    ErrMalformedSectionHeader,
			wantIdx: 2,
		},
		{
			name: "link out of range",
			build: func() *testelf.Builder {
				b := minimalBuilder(elf.ELFCLASS64, elf.ELFDATA2MSB)
				b.Sections[0].Link = 50
				return b
			},
			want:    ErrMalformedSectionHeader,
			wantIdx: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := tt.build().Build()

			sections, err := decodeSections(t, img)
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, sections)
			if tt.wantIdx >= 0 {
				var she *SectionHeaderError
				require.ErrorAs(t, err, &she)
				require.Equal(t, tt.wantIdx, she.Index)
			}

			f, err := Parse(img.Bytes)
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, f)
		})
	}
}

func TestDecodeSectionsBadName(t *testing.T) {
	for _, f := range allFormats {
		t.Run(formatName(f.class, f.data), func(t *testing.T) {
			b := minimalBuilder(f.class, f.data)
			img := b.Build()
			shstrtabSize := uint32(len(".text") + len(".shstrtab") + 3)

			// sh_name is the first field of every section header.
			entry := img.Header.Shoff + uint64(b.SectionHeaderSize())
			b.Order().PutUint32(img.Bytes[entry:], shstrtabSize)
			_, err := decodeSections(t, img)
			require.ErrorIs(t, err, ErrMalformedSectionHeader)
			require.ErrorIs(t, err, ErrUnterminatedString)

			b.Order().PutUint32(img.Bytes[entry:], shstrtabSize+1)
			_, err = decodeSections(t, img)
			require.ErrorIs(t, err, ErrMalformedSectionHeader)
			require.ErrorIs(t, err, ErrOutOfBounds)

			var she *SectionHeaderError
			require.ErrorAs(t, err, &she)
			require.Equal(t, 1, she.Index)
		})
	}
}

func TestStringSectionIndex(t *testing.T) {
	sections := []SectionHeader{{Index: 0, Link: 2}, {Index: 1}, {Index: 2}}

	idx, err := StringSectionIndex(Header{Shstrndx: 1}, sections)
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	idx, err = StringSectionIndex(Header{Shstrndx: uint64(elf.SHN_XINDEX)}, sections)
	require.NoError(t, err)
	require.Equal(t, 2, idx)

	idx, err = StringSectionIndex(Header{}, sections)
	require.NoError(t, err)
	require.Equal(t, -1, idx)

	_, err = StringSectionIndex(Header{Shstrndx: 3}, sections)
	require.ErrorIs(t, err, ErrMalformedHeader)
}
