package report

import (
	"github.com/pkg/errors"

	"github.com/jtang613/goelf/pkg/elffile"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Units selects how byte counts are labelled in table output. Structured
// output always carries raw byte counts.
type Units string

const (
	UnitsBytes Units = "bytes"
	UnitsIEC   Units = "iec"
)

// Selection lists the parts of a report to print.
type Selection struct {
	Header   bool
	Sections bool
	Segments bool
	Symbols  bool
	DynSyms  bool
	DynLibs  bool
}

// SelectAll returns a selection of every part.
func SelectAll() Selection {
	return Selection{Header: true, Sections: true, Segments: true, Symbols: true, DynSyms: true, DynLibs: true}
}

// Options controls how reports are assembled and rendered.
type Options struct {
	Format   Format
	Units    Units
	Demangle elffile.DemangleStyle
	Color    bool
	Select   Selection
}

// DefaultOptions prints the header summary as a table.
func DefaultOptions() Options {
	return Options{
		Format:   FormatTable,
		Units:    UnitsBytes,
		Demangle: elffile.DemangleNone,
		Select:   Selection{Header: true},
	}
}

// Validate rejects unknown enumerated values. An empty selection falls back
// to the header summary.
func (o *Options) Validate() error {
	switch o.Format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return errors.Errorf("unknown format %q (want table, json or yaml)", o.Format)
	}
	switch o.Units {
	case UnitsBytes, UnitsIEC:
	default:
		return errors.Errorf("unknown units %q (want bytes or iec)", o.Units)
	}
	if _, err := elffile.ParseDemangleStyle(string(o.Demangle)); err != nil {
		return err
	}
	if o.Select == (Selection{}) {
		o.Select.Header = true
	}
	return nil
}
