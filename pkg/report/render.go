package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	checkMark = "✓"
	crossMark = "✗"
)

type palette struct {
	title *color.Color
	good  *color.Color
	bad   *color.Color
	warn  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		title: color.New(color.FgGreen, color.Bold),
		good:  color.New(color.FgGreen, color.Bold),
		bad:   color.New(color.FgRed, color.Faint),
		warn:  color.New(color.FgHiYellow),
	}
	for _, c := range []*color.Color{p.title, p.good, p.bad, p.warn} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Renderer writes reports to w in the configured format. Reports of several
// files are written one after the other: separate tables, a stream of JSON
// objects or a stream of YAML documents.
type Renderer struct {
	w       io.Writer
	opts    Options
	colors  palette
	json    *json.Encoder
	yaml    *yaml.Encoder
	written int
}

// NewRenderer returns a renderer for opts, which must have been validated.
func NewRenderer(w io.Writer, opts Options) *Renderer {
	r := &Renderer{w: w, opts: opts, colors: newPalette(opts.Color)}
	switch opts.Format {
	case FormatJSON:
		r.json = json.NewEncoder(w)
		r.json.SetEscapeHTML(false)
		r.json.SetIndent("", "  ")
	case FormatYAML:
		r.yaml = yaml.NewEncoder(w)
		r.yaml.SetIndent(2)
	}
	return r
}

// Render writes one report.
func (r *Renderer) Render(rep *Report) error {
	defer func() { r.written++ }()
	switch {
	case r.json != nil:
		return errors.Wrapf(r.json.Encode(rep.Document()), "encoding %s", rep.Path)
	case r.yaml != nil:
		return errors.Wrapf(r.yaml.Encode(rep.Document()), "encoding %s", rep.Path)
	}
	r.renderTables(rep)
	return nil
}

// Close flushes the YAML stream.
func (r *Renderer) Close() error {
	if r.yaml != nil {
		return r.yaml.Close()
	}
	return nil
}

func (r *Renderer) renderTables(rep *Report) {
	if r.written > 0 {
		fmt.Fprintln(r.w)
	}
	r.colors.title.Fprintf(r.w, "File: %s\n", rep.Path)

	sel := rep.Selected
	if sel.Header {
		r.renderHeader(rep.Header)
	}
	if sel.Sections {
		r.renderSections(rep)
	}
	if sel.Segments {
		r.renderSegments(rep.Segments)
	}
	if sel.Symbols {
		r.renderSymbols("Symbols", rep.Symbols)
	}
	if sel.DynSyms {
		r.renderSymbols("Dynamic symbols", rep.DynamicSymbols)
		fmt.Fprintf(r.w, "%d dynamic symbols found.\n", len(rep.DynamicSymbols))
	}
	if sel.DynLibs {
		r.renderLibraries(rep.Libraries)
	}
	for _, w := range rep.Warnings {
		r.colors.warn.Fprintf(r.w, "warning: %s\n", w)
	}
}

func (r *Renderer) newTable(header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(r.w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	if r.opts.Color {
		colors := make([]tablewriter.Colors, len(header))
		for i := range colors {
			colors[i] = tablewriter.Colors{tablewriter.Bold, tablewriter.FgGreenColor}
		}
		t.SetHeaderColor(colors...)
	}
	return t
}

func (r *Renderer) renderHeader(h HeaderInfo) {
	r.colors.title.Fprintln(r.w, "\nELF Header:")
	t := tablewriter.NewWriter(r.w)
	t.SetBorder(false)
	t.SetColumnSeparator("")
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)

	rows := [][]string{
		{"Magic", h.Magic},
		{"Class", h.ClassDescription},
		{"Data", h.DataDescription},
		{"Ident Version", strconv.Itoa(int(h.IdentVersion))},
		{"OS/ABI", h.OSABI},
		{"ABI Version", strconv.Itoa(int(h.ABIVersion))},
		{"Type", h.Type},
		{"Machine", h.Machine},
		{"Version", versionString(h.Version)},
		{"Entry", hex(h.Entry)},
		{"Program Header Offset", hex(h.ProgramHeaderOffset)},
		{"Section Header Offset", hex(h.SectionHeaderOffset)},
		{"Flags", hex(h.Flags)},
		{"Header Size", r.size(h.HeaderSize)},
		{"Program Header Entry Size", r.size(h.ProgramHeaderSize)},
		{"Program Header Count", strconv.Itoa(h.ProgramHeaderCount)},
		{"Section Header Entry Size", r.size(h.SectionHeaderSize)},
		{"Section Header Count", strconv.Itoa(h.SectionHeaderCount)},
		{"Section Name Table Index", strconv.Itoa(h.StringTableIndex)},
	}
	if h.Interpreter != "" {
		rows = append(rows, []string{"Interpreter", h.Interpreter})
	}
	t.AppendBulk(rows)
	t.Render()
}

func (r *Renderer) renderSections(rep *Report) {
	r.colors.title.Fprintln(r.w, "\nSection Headers:")
	t := r.newTable([]string{"Nr", "Name", "Type", "Flags", "Address", "Offset", "Size", "Ent Size", "Has Table"})
	for _, s := range rep.Sections {
		entsize, marker := "", r.colors.bad.Sprint(crossMark)
		if s.HasTable {
			entsize, marker = r.size(s.EntrySize), r.colors.good.Sprint(checkMark)
		}
		t.Append([]string{
			strconv.Itoa(s.Index),
			s.Name,
			s.Type,
			s.Flags,
			hex(s.Address),
			hex(s.Offset),
			r.size(s.Size),
			entsize,
			marker,
		})
	}
	t.Render()
	fmt.Fprintf(r.w, "%d section headers detected.\n", rep.RealSections())
}

func (r *Renderer) renderSegments(segs []SegmentInfo) {
	r.colors.title.Fprintln(r.w, "\nProgram Headers:")
	t := r.newTable([]string{"Nr", "Type", "Flags", "Offset", "Virt Addr", "Phys Addr", "File Size", "Mem Size", "Align"})
	for _, p := range segs {
		t.Append([]string{
			strconv.Itoa(p.Index),
			p.Type,
			p.Flags,
			hex(p.Offset),
			hex(p.VirtualAddress),
			hex(p.PhysicalAddress),
			r.size(p.FileSize),
			r.size(p.MemorySize),
			hex(p.Align),
		})
	}
	t.Render()
}

func (r *Renderer) renderSymbols(title string, syms []SymbolInfo) {
	r.colors.title.Fprintf(r.w, "\n%s:\n", title)
	t := r.newTable([]string{"Table", "Num", "Value", "Size", "Type", "Bind", "Vis", "Ndx", "Name"})
	for _, s := range syms {
		name := s.Name
		if s.DemangledName != "" {
			name = s.DemangledName
		}
		t.Append([]string{
			s.Table,
			strconv.Itoa(s.Index),
			hex(s.Value),
			strconv.FormatUint(s.Size, 10),
			s.Type,
			s.Bind,
			s.Visibility,
			s.Section,
			name,
		})
	}
	t.Render()
}

func (r *Renderer) renderLibraries(libs []string) {
	r.colors.title.Fprintln(r.w, "\nDynamic libraries:")
	if len(libs) == 0 {
		fmt.Fprintln(r.w, "\t(none)")
		return
	}
	for _, lib := range libs {
		fmt.Fprintf(r.w, "\t%s\n", lib)
	}
}

// size labels a byte count in the configured units.
func (r *Renderer) size(n uint64) string {
	if r.opts.Units == UnitsIEC {
		return humanize.IBytes(n)
	}
	if n == 1 {
		return "1 byte"
	}
	return strconv.FormatUint(n, 10) + " bytes"
}

func hex(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}

func versionString(v uint64) string {
	switch v {
	case 0:
		return "0 (none)"
	case 1:
		return "1 (current)"
	}
	return strconv.FormatUint(v, 10)
}
