package elffile

import (
	"debug/elf"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jtang613/goelf/internal/testelf"
)

func dynamicImage(class elf.Class, data elf.Data, entries ...testelf.Dyn) *testelf.Image {
	b := testelf.New(class, data)
	dynstr, _ := testelf.StringTable("libc.so.6", "libm.so.6")
	entsize := uint64(8)
	if class == elf.ELFCLASS64 {
		entsize = 16
	}
	b.Sections = []testelf.Section{
		{Name: ".dynstr", Type: elf.SHT_STRTAB, Data: dynstr, Addralign: 1},
		{Name: ".dynamic", Type: elf.SHT_DYNAMIC, Link: 1, Entsize: entsize, Addralign: 8, Data: b.Dynamic(entries...)},
	}
	return b.Build()
}

func decodeDynamic(t *testing.T, img *testelf.Image, index int) ([]DynamicEntry, []string, error) {
	t.Helper()
	id, hdr := mustHeader(img.Bytes)
	sections, err := DecodeSections(img.Bytes, id, hdr)
	require.NoError(t, err)
	return DecodeDynamic(img.Bytes, id, sections, index)
}

func TestDecodeDynamic(t *testing.T) {
	for _, f := range allFormats {
		t.Run(formatName(f.class, f.data), func(t *testing.T) {
			img := dynamicImage(f.class, f.data,
				testelf.Dyn{Tag: elf.DT_NEEDED, Value: 1},
				testelf.Dyn{Tag: elf.DT_FLAGS, Value: uint64(elf.DF_BIND_NOW)},
				testelf.Dyn{Tag: elf.DT_NEEDED, Value: 11},
				testelf.Dyn{Tag: elf.DT_NULL},
				testelf.Dyn{Tag: elf.DT_NEEDED, Value: 0xdead},
			)

			entries, needed, err := decodeDynamic(t, img, 2)
			require.NoError(t, err)
			require.Equal(t, []DynamicEntry{
				{Tag: elf.DT_NEEDED, Value: 1},
				{Tag: elf.DT_FLAGS, Value: uint64(elf.DF_BIND_NOW)},
				{Tag: elf.DT_NEEDED, Value: 11},
			}, entries)
			require.Equal(t, []string{"libc.so.6", "libm.so.6"}, needed)
		})
	}
}

func TestDecodeDynamicWithoutTerminator(t *testing.T) {
	img := dynamicImage(elf.ELFCLASS32, elf.ELFDATA2MSB,
		testelf.Dyn{Tag: elf.DT_SONAME, Value: 1},
		testelf.Dyn{Tag: elf.DT_DEBUG},
	)

	entries, needed, err := decodeDynamic(t, img, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Empty(t, needed)
}

func TestDecodeDynamicRejects(t *testing.T) {
	img := dynamicImage(elf.ELFCLASS64, elf.ELFDATA2LSB,
		testelf.Dyn{Tag: elf.DT_NEEDED, Value: 0x1000},
	)
	_, _, err := decodeDynamic(t, img, 2)
	require.ErrorIs(t, err, ErrMalformedSectionHeader)
	require.ErrorIs(t, err, ErrOutOfBounds)

	f, err := Parse(img.Bytes)
	require.ErrorIs(t, err, ErrMalformedSectionHeader)
	require.Nil(t, f)

	_, _, err = decodeDynamic(t, img, 1)
	require.ErrorIs(t, err, ErrMalformedSectionHeader)
}

func TestFileDynamic(t *testing.T) {
	img := sampleBuilder(elf.ELFCLASS64, elf.ELFDATA2LSB).Build()

	f, err := Parse(img.Bytes)
	require.NoError(t, err)
	require.Equal(t, []string{"libc.so.6"}, f.Libraries())
	require.Len(t, f.Dynamic(), 1)
	require.Equal(t, elf.DT_NEEDED, f.Dynamic()[0].Tag)
}
