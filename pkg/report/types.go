// Package report assembles printable views of a decoded ELF file and renders
// them as tables, JSON or YAML.
package report

// HeaderInfo is the file header summary.
type HeaderInfo struct {
	Magic               string `json:"magic" yaml:"magic"` // e_ident in hex
	Class               string `json:"class" yaml:"class"`
	ClassDescription    string `json:"class_description" yaml:"class_description"`
	Data                string `json:"data" yaml:"data"`
	DataDescription     string `json:"data_description" yaml:"data_description"`
	IdentVersion        uint8  `json:"ident_version" yaml:"ident_version"`
	OSABI               string `json:"os_abi" yaml:"os_abi"`
	ABIVersion          uint8  `json:"abi_version" yaml:"abi_version"`
	Type                string `json:"type" yaml:"type"`
	Machine             string `json:"machine" yaml:"machine"`
	Version             uint64 `json:"version" yaml:"version"`
	Entry               uint64 `json:"entry" yaml:"entry"`
	ProgramHeaderOffset uint64 `json:"program_header_offset" yaml:"program_header_offset"`
	SectionHeaderOffset uint64 `json:"section_header_offset" yaml:"section_header_offset"`
	Flags               uint64 `json:"flags" yaml:"flags"`
	HeaderSize          uint64 `json:"header_size" yaml:"header_size"`
	ProgramHeaderSize   uint64 `json:"program_header_size" yaml:"program_header_size"`
	ProgramHeaderCount  int    `json:"program_header_count" yaml:"program_header_count"`
	SectionHeaderSize   uint64 `json:"section_header_size" yaml:"section_header_size"`
	SectionHeaderCount  int    `json:"section_header_count" yaml:"section_header_count"`
	StringTableIndex    int    `json:"string_table_index" yaml:"string_table_index"` // -1 when absent
	Interpreter         string `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`
}

// SectionInfo is one row of the section listing.
type SectionInfo struct {
	Index     int    `json:"index" yaml:"index"`
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	Flags     string `json:"flags" yaml:"flags"`
	Address   uint64 `json:"address" yaml:"address"`
	Offset    uint64 `json:"offset" yaml:"offset"`
	Size      uint64 `json:"size" yaml:"size"`
	EntrySize uint64 `json:"entry_size" yaml:"entry_size"`
	HasTable  bool   `json:"has_table" yaml:"has_table"`
	Link      uint32 `json:"link" yaml:"link"`
	Info      uint32 `json:"info" yaml:"info"`
	Align     uint64 `json:"align" yaml:"align"`
}

// SegmentInfo is one row of the program header listing.
type SegmentInfo struct {
	Index           int    `json:"index" yaml:"index"`
	Type            string `json:"type" yaml:"type"`
	Flags           string `json:"flags" yaml:"flags"`
	Offset          uint64 `json:"offset" yaml:"offset"`
	VirtualAddress  uint64 `json:"virtual_address" yaml:"virtual_address"`
	PhysicalAddress uint64 `json:"physical_address" yaml:"physical_address"`
	FileSize        uint64 `json:"file_size" yaml:"file_size"`
	MemorySize      uint64 `json:"memory_size" yaml:"memory_size"`
	Align           uint64 `json:"align" yaml:"align"`
}

// SymbolInfo is one symbol table entry.
type SymbolInfo struct {
	Table         string `json:"table" yaml:"table"`
	Index         int    `json:"index" yaml:"index"`
	Name          string `json:"name" yaml:"name"`
	DemangledName string `json:"demangled_name,omitempty" yaml:"demangled_name,omitempty"`
	Value         uint64 `json:"value" yaml:"value"`
	Size          uint64 `json:"size" yaml:"size"`
	Type          string `json:"type" yaml:"type"`
	Bind          string `json:"bind" yaml:"bind"`
	Visibility    string `json:"visibility" yaml:"visibility"`
	Section       string `json:"section" yaml:"section"`
}

// Report is everything printed for one file. Only the parts named by
// Selected are rendered.
type Report struct {
	Path           string
	Selected       Selection
	Header         HeaderInfo
	Sections       []SectionInfo
	Segments       []SegmentInfo
	Symbols        []SymbolInfo
	DynamicSymbols []SymbolInfo
	Libraries      []string
	Warnings       []string
}

// RealSections counts the sections excluding the null section at index 0.
func (r *Report) RealSections() int {
	if len(r.Sections) > 0 && r.Sections[0].Type == "SHT_NULL" {
		return len(r.Sections) - 1
	}
	return len(r.Sections)
}

// Document returns the selected parts keyed by name, for the structured
// encoders.
func (r *Report) Document() map[string]interface{} {
	doc := map[string]interface{}{
		"path":     r.Path,
		"warnings": r.Warnings,
	}
	if r.Selected.Header {
		doc["header"] = r.Header
	}
	if r.Selected.Sections {
		doc["sections"] = r.Sections
		doc["section_count"] = r.RealSections()
	}
	if r.Selected.Segments {
		doc["segments"] = r.Segments
	}
	if r.Selected.Symbols {
		doc["symbols"] = r.Symbols
	}
	if r.Selected.DynSyms {
		doc["dynamic_symbols"] = r.DynamicSymbols
	}
	if r.Selected.DynLibs {
		doc["libraries"] = r.Libraries
	}
	return doc
}
