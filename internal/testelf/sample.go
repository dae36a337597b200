package testelf

import "debug/elf"

const (
	SampleInterp = "/lib64/ld-linux-x86-64.so.2"
	SampleEntry  = 0x401000
)

// Sample describes a small dynamically linked executable. Its sections, in
// index order after the null section, are .interp, .text, .bss, .dynstr,
// .dynsym, .dynamic, .strtab, .symtab and the generated .shstrtab. It has a
// PT_INTERP, a PT_LOAD and a PT_DYNAMIC segment. .dynsym imports puts from
// libc.so.6 and .symtab defines main and the mangled _ZN3foo3barEv.
func Sample(class elf.Class, data elf.Data) *Builder {
	b := New(class, data)
	b.Entry = SampleEntry

	const dynstrIndex, strtabIndex, textIndex = 4, 7, 2
	dynstr, dynOff := StringTable("libc.so.6", "puts")
	strtab, strOff := StringTable("main", "_ZN3foo3barEv")
	symsize := uint64(b.SymbolSize())
	dynsize := uint64(8)
	if class == elf.ELFCLASS64 {
		dynsize = 16
	}

	b.Sections = []Section{
		{Name: ".interp", Type: elf.SHT_PROGBITS, Flags: uint64(elf.SHF_ALLOC), Data: append([]byte(SampleInterp), 0), Addralign: 1},
		{Name: ".text", Type: elf.SHT_PROGBITS, Flags: uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR), Addr: SampleEntry,
			Data: make([]byte, 0x10), Addralign: 16},
		{Name: ".bss", Type: elf.SHT_NOBITS, Flags: uint64(elf.SHF_ALLOC | elf.SHF_WRITE), Addr: 0x402000, Size: 0x100, Addralign: 8},
		{Name: ".dynstr", Type: elf.SHT_STRTAB, Flags: uint64(elf.SHF_ALLOC), Data: dynstr, Addralign: 1},
		{Name: ".dynsym", Type: elf.SHT_DYNSYM, Flags: uint64(elf.SHF_ALLOC), Link: dynstrIndex, Info: 1, Entsize: symsize, Addralign: 8,
			Data: b.Symbols(
				Sym{},
				Sym{NameOffset: dynOff["puts"], Type: elf.STT_FUNC, Bind: elf.STB_GLOBAL},
			)},
		{Name: ".dynamic", Type: elf.SHT_DYNAMIC, Flags: uint64(elf.SHF_ALLOC | elf.SHF_WRITE), Link: dynstrIndex, Entsize: dynsize, Addralign: 8,
			Data: b.Dynamic(
				Dyn{Tag: elf.DT_NEEDED, Value: uint64(dynOff["libc.so.6"])},
				Dyn{Tag: elf.DT_NULL},
			)},
		{Name: ".strtab", Type: elf.SHT_STRTAB, Data: strtab, Addralign: 1},
		{Name: ".symtab", Type: elf.SHT_SYMTAB, Link: strtabIndex, Info: 2, Entsize: symsize, Addralign: 8,
			Data: b.Symbols(
				Sym{},
				Sym{NameOffset: strOff["_ZN3foo3barEv"], Type: elf.STT_FUNC, Bind: elf.STB_LOCAL, Shndx: textIndex, Value: SampleEntry + 8, Size: 8},
				Sym{NameOffset: strOff["main"], Type: elf.STT_FUNC, Bind: elf.STB_GLOBAL, Shndx: textIndex, Value: SampleEntry, Size: 8},
			)},
	}
	b.Progs = []Prog{
		{Type: elf.PT_INTERP, Flags: elf.PF_R, Section: ".interp", Memsz: uint64(len(SampleInterp) + 1), Align: 1},
		{Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_X, Section: ".text", Vaddr: SampleEntry, Paddr: SampleEntry, Memsz: 0x10, Align: 0x1000},
		{Type: elf.PT_DYNAMIC, Flags: elf.PF_R | elf.PF_W, Section: ".dynamic", Memsz: 2 * dynsize, Align: 8},
	}
	return b
}

// Minimal describes the smallest image with a section name table: a single
// 16 byte .text section.
func Minimal(class elf.Class, data elf.Data) *Builder {
	b := New(class, data)
	b.Sections = []Section{
		{Name: ".text", Type: elf.SHT_PROGBITS, Flags: uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR), Data: make([]byte, 0x10), Addralign: 16},
	}
	return b
}
