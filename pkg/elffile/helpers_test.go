package elffile

import (
	"debug/elf"
	"fmt"

	"github.com/jtang613/goelf/internal/testelf"
)

var allFormats = []struct {
	class elf.Class
	data  elf.Data
}{
	{elf.ELFCLASS32, elf.ELFDATA2LSB},
	{elf.ELFCLASS32, elf.ELFDATA2MSB},
	{elf.ELFCLASS64, elf.ELFDATA2LSB},
	{elf.ELFCLASS64, elf.ELFDATA2MSB},
}

func formatName(class elf.Class, data elf.Data) string {
	return fmt.Sprintf("%s/%s", class, data)
}

const (
	sampleInterp   = testelf.SampleInterp
	sampleEntry    = testelf.SampleEntry
	idxInterp      = 1
	idxText        = 2
	idxBss         = 3
	idxDynstr      = 4
	idxDynsym      = 5
	idxDynamic     = 6
	idxStrtab      = 7
	idxSymtab      = 8
	idxShstrtab    = 9
	sampleSections = 10
)

func sampleBuilder(class elf.Class, data elf.Data) *testelf.Builder {
	return testelf.Sample(class, data)
}

func minimalBuilder(class elf.Class, data elf.Data) *testelf.Builder {
	return testelf.Minimal(class, data)
}

func mustProbe(buf []byte) Identity {
	id, _, err := ProbeIdentity(buf)
	if err != nil {
		panic(err)
	}
	return id
}

func mustHeader(buf []byte) (Identity, Header) {
	id := mustProbe(buf)
	h, err := DecodeHeader(buf, id)
	if err != nil {
		panic(err)
	}
	return id, h
}
