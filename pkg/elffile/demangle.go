package elffile

import (
	"github.com/ianlancetaylor/demangle"
	"github.com/pkg/errors"
)

// DemangleStyle selects how much of a demangled C++ or Rust name is kept.
type DemangleStyle string

const (
	DemangleNone       DemangleStyle = "none"
	DemangleSimplified DemangleStyle = "simplified"
	DemangleTemplates  DemangleStyle = "templates"
	DemangleFull       DemangleStyle = "full"
)

var demangleOptions = map[DemangleStyle][]demangle.Option{
	DemangleSimplified: {demangle.NoParams, demangle.NoEnclosingParams, demangle.NoTemplateParams},
	DemangleTemplates:  {demangle.NoParams, demangle.NoEnclosingParams},
	DemangleFull:       {demangle.NoClones},
}

// ParseDemangleStyle validates a style name.
func ParseDemangleStyle(s string) (DemangleStyle, error) {
	switch style := DemangleStyle(s); style {
	case DemangleNone, DemangleSimplified, DemangleTemplates, DemangleFull:
		return style, nil
	}
	return "", errors.Errorf("unknown demangle style %q (want none, simplified, templates or full)", s)
}

// Demangle returns the demangled form of name, or name itself when it is
// not mangled or style is DemangleNone.
func Demangle(name string, style DemangleStyle) string {
	opts, ok := demangleOptions[style]
	if !ok || name == "" {
		return name
	}
	return demangle.Filter(name, opts...)
}

// DemangledName returns the symbol name demangled with style.
func (s Symbol) DemangledName(style DemangleStyle) string {
	return Demangle(s.Name, style)
}
