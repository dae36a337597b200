package elffile

import (
	"debug/elf"

	"github.com/pkg/errors"

	"github.com/jtang613/goelf/pkg/elffile/cursor"
)

// DynamicEntry is one d_tag/d_val pair of the dynamic section.
type DynamicEntry struct {
	Tag   elf.DynTag
	Value uint64
}

// DecodeDynamic reads the SHT_DYNAMIC section at index up to its DT_NULL
// terminator and resolves the DT_NEEDED library names through the section's
// linked string table. Nothing is loaded or resolved beyond the names.
func DecodeDynamic(buf []byte, id Identity, sections []SectionHeader, index int) ([]DynamicEntry, []string, error) {
	if index < 0 || index >= len(sections) {
		return nil, nil, errors.Errorf("dynamic section index %d out of range", index)
	}
	sh := sections[index]
	if sh.Type != elf.SHT_DYNAMIC {
		return nil, nil, &SectionHeaderError{Index: index, Reason: sh.Type.String() + " is not a dynamic section"}
	}

	l := layoutFor(id.Class)
	entsize := uint64(l.dyn.entrySize)
	count := sh.Size / entsize
	c := cursor.New(buf)
	if err := tableRange(c, sh.Offset, count, entsize); err != nil {
		return nil, nil, &SectionHeaderError{Index: index, Reason: "dynamic section exceeds file", Err: err}
	}

	var entries []DynamicEntry
	for i := uint64(0); i < count; i++ {
		r := record{c: c, base: sh.Offset + i*entsize, order: id.ByteOrder()}
		e := DynamicEntry{
			Tag:   elf.DynTag(r.get(l.dyn.tag)),
			Value: r.get(l.dyn.val),
		}
		if r.err != nil {
			return nil, nil, &SectionHeaderError{Index: index, Reason: "truncated dynamic entry", Err: r.err}
		}
		if e.Tag == elf.DT_NULL {
			break
		}
		entries = append(entries, e)
	}

	var (
		needed []string
		strtab *StringTable
	)
	for _, e := range entries {
		if e.Tag != elf.DT_NEEDED {
			continue
		}
		if strtab == nil {
			if uint64(sh.Link) >= uint64(len(sections)) {
				return nil, nil, errors.Wrapf(ErrInvalidStringTableReference, "dynamic section %d links to section %d", index, sh.Link)
			}
			var err error
			if strtab, err = NewStringTable(buf, sections[sh.Link]); err != nil {
				return nil, nil, errors.Wrapf(err, "dynamic section %d", index)
			}
		}
		if e.Value > uint64(^uint32(0)) {
			return nil, nil, &SectionHeaderError{Index: index, Reason: "DT_NEEDED offset out of range",
				Err: errors.Errorf("offset 0x%x", e.Value)}
		}
		name, err := strtab.Lookup(uint32(e.Value))
		if err != nil {
			return nil, nil, &SectionHeaderError{Index: index, Reason: "resolving DT_NEEDED name", Err: err}
		}
		needed = append(needed, name)
	}
	return entries, needed, nil
}
