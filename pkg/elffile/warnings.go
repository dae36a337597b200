package elffile

// WarningKind classifies a soft anomaly.
type WarningKind string

const (
	WarnIdentVersion           WarningKind = "ident-version"
	WarnHeaderVersion          WarningKind = "header-version"
	WarnFileSizeExceedsMemSize WarningKind = "filesz-exceeds-memsz"
	WarnTableSize              WarningKind = "table-size"
)

// Warning is an anomaly that does not prevent decoding. Index is the entry
// the warning refers to, or -1 for file-level warnings.
type Warning struct {
	Kind    WarningKind
	Index   int
	Message string
}

func (w Warning) String() string {
	return string(w.Kind) + ": " + w.Message
}
