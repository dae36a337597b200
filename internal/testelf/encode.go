package testelf

import (
	"debug/elf"
	"encoding/binary"
)

type writer struct {
	order binary.ByteOrder
	wide  bool
	buf   []byte
}

func newWriter(order binary.ByteOrder, wide bool) *writer {
	return &writer{order: order, wide: wide}
}

func (w *writer) u8(v uint8) { w.buf = append(w.buf, v) }

func (w *writer) u16(v uint16) {
	var b [2]byte
	w.order.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) u64(v uint64) {
	var b [8]byte
	w.order.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// word writes an address, offset or xword field.
func (w *writer) word(v uint64) {
	if w.wide {
		w.u64(v)
		return
	}
	w.u32(uint32(v))
}

func (w *writer) bytes() []byte { return w.buf }

// StringTable concatenates names into a string table that starts with the
// conventional empty string and returns the offset of each name.
func StringTable(names ...string) ([]byte, map[string]uint32) {
	data := []byte{0}
	offsets := map[string]uint32{"": 0}
	for _, n := range names {
		if _, ok := offsets[n]; ok {
			continue
		}
		offsets[n] = uint32(len(data))
		data = append(data, n...)
		data = append(data, 0)
	}
	return data, offsets
}

// Sym is one symbol table entry. NameOffset is used verbatim.
type Sym struct {
	NameOffset uint32
	Value      uint64
	Size       uint64
	Type       elf.SymType
	Bind       elf.SymBind
	Other      uint8
	Shndx      uint16
}

// Symbols encodes syms for the builder's class and byte order.
func (b *Builder) Symbols(syms ...Sym) []byte {
	w := newWriter(b.Order(), b.is64())
	for _, s := range syms {
		info := elf.ST_INFO(s.Bind, s.Type)
		w.u32(s.NameOffset)
		if b.is64() {
			w.u8(info)
			w.u8(s.Other)
			w.u16(s.Shndx)
			w.u64(s.Value)
			w.u64(s.Size)
			continue
		}
		w.u32(uint32(s.Value))
		w.u32(uint32(s.Size))
		w.u8(info)
		w.u8(s.Other)
		w.u16(s.Shndx)
	}
	return w.bytes()
}

// Dyn is one dynamic section entry.
type Dyn struct {
	Tag   elf.DynTag
	Value uint64
}

// Dynamic encodes entries for the builder's class and byte order. No DT_NULL
// terminator is added.
func (b *Builder) Dynamic(entries ...Dyn) []byte {
	w := newWriter(b.Order(), b.is64())
	for _, e := range entries {
		w.word(uint64(e.Tag))
		w.word(e.Value)
	}
	return w.bytes()
}
