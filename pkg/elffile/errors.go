package elffile

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/jtang613/goelf/pkg/elffile/cursor"
)

// Error kinds returned by the decoder. Structured errors below carry the
// offending index and match their kind with errors.Is.
var (
	ErrNotElf                      = errors.New("not an ELF file")
	ErrUnsupportedClass            = errors.New("unsupported ELF class")
	ErrUnsupportedEncoding         = errors.New("unsupported ELF data encoding")
	ErrMalformedHeader             = errors.New("malformed ELF header")
	ErrOutOfBounds                 = cursor.ErrOutOfBounds
	ErrMalformedSectionHeader      = errors.New("malformed section header")
	ErrMalformedProgramHeader      = errors.New("malformed program header")
	ErrInvalidStringTableReference = errors.New("invalid string table reference")
	ErrUnterminatedString          = errors.New("unterminated string")
	ErrUnresolvedSymbolName        = errors.New("unresolved symbol name")
)

// OutOfBoundsError is returned for any read past the end of the buffer.
type OutOfBoundsError = cursor.OutOfBoundsError

// SectionHeaderError reports a section header entry that failed validation.
type SectionHeaderError struct {
	Index  int
	Reason string
	Err    error
}

func (e *SectionHeaderError) Error() string {
	msg := fmt.Sprintf("section header %d: %s", e.Index, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SectionHeaderError) Is(target error) bool { return target == ErrMalformedSectionHeader }
func (e *SectionHeaderError) Unwrap() error        { return e.Err }

// ProgramHeaderError reports a program header entry that failed validation.
type ProgramHeaderError struct {
	Index  int
	Reason string
	Err    error
}

func (e *ProgramHeaderError) Error() string {
	msg := fmt.Sprintf("program header %d: %s", e.Index, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProgramHeaderError) Is(target error) bool { return target == ErrMalformedProgramHeader }
func (e *ProgramHeaderError) Unwrap() error        { return e.Err }

// SymbolNameError reports a symbol whose st_name could not be resolved in
// the linked string table. Table is the symbol table's section index.
type SymbolNameError struct {
	Table  int
	Index  int
	Offset uint32
	Err    error
}

func (e *SymbolNameError) Error() string {
	return fmt.Sprintf("symbol %d in section %d: name offset 0x%x: %v", e.Index, e.Table, e.Offset, e.Err)
}

func (e *SymbolNameError) Is(target error) bool { return target == ErrUnresolvedSymbolName }
func (e *SymbolNameError) Unwrap() error        { return e.Err }

func malformedHeader(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedHeader, format, args...)
}
