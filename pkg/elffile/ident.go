package elffile

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"github.com/jtang613/goelf/pkg/elffile/cursor"
)

// Magic is the four byte signature at the start of every ELF file.
var Magic = []byte(elf.ELFMAG)

// Identity is the decoded e_ident prefix.
type Identity struct {
	Class      elf.Class
	Data       elf.Data
	Version    elf.Version
	OSABI      elf.OSABI
	ABIVersion uint8
}

// ByteOrder returns the byte order every multi-byte field of the file is
// decoded with.
func (id Identity) ByteOrder() binary.ByteOrder {
	if id.Data == elf.ELFDATA2MSB {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ProbeIdentity inspects the first 16 bytes of buf. It fails before any
// class-specific parsing when the magic, class or data encoding is not one
// the decoder understands. A non-current version is only a warning.
func ProbeIdentity(buf []byte) (Identity, []Warning, error) {
	c := cursor.New(buf)

	magic, err := c.Slice(0, uint64(len(Magic)))
	if err != nil || !bytes.Equal(magic, Magic) {
		return Identity{}, nil, ErrNotElf
	}
	ident, err := c.Slice(0, elf.EI_NIDENT)
	if err != nil {
		return Identity{}, nil, errors.Wrap(err, "reading e_ident")
	}

	id := Identity{
		Class:      elf.Class(ident[elf.EI_CLASS]),
		Data:       elf.Data(ident[elf.EI_DATA]),
		Version:    elf.Version(ident[elf.EI_VERSION]),
		OSABI:      elf.OSABI(ident[elf.EI_OSABI]),
		ABIVersion: ident[elf.EI_ABIVERSION],
	}

	switch id.Class {
	case elf.ELFCLASS32, elf.ELFCLASS64:
	default:
		return Identity{}, nil, errors.Wrapf(ErrUnsupportedClass, "e_ident[EI_CLASS] = %d", uint8(id.Class))
	}
	switch id.Data {
	case elf.ELFDATA2LSB, elf.ELFDATA2MSB:
	default:
		return Identity{}, nil, errors.Wrapf(ErrUnsupportedEncoding, "e_ident[EI_DATA] = %d", uint8(id.Data))
	}

	var warnings []Warning
	if id.Version != elf.EV_CURRENT {
		warnings = append(warnings, Warning{
			Kind:    WarnIdentVersion,
			Index:   -1,
			Message: fmt.Sprintf("e_ident[EI_VERSION] is %d, expected %d", uint8(id.Version), uint8(elf.EV_CURRENT)),
		})
	}
	return id, warnings, nil
}
