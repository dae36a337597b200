package elffile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDemangle(t *testing.T) {
	tests := []struct {
		name  string
		style DemangleStyle
		want  string
	}{
		{"_ZN3foo3barEv", DemangleNone, "_ZN3foo3barEv"},
		{"_ZN3foo3barEv", DemangleSimplified, "foo::bar"},
		{"_ZN3foo3barEv", DemangleTemplates, "foo::bar"},
		{"_ZN3foo3barEv", DemangleFull, "foo::bar()"},
		{"main", DemangleFull, "main"},
		{"", DemangleFull, ""},
		{"_Znot valid", DemangleFull, "_Znot valid"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Demangle(tt.name, tt.style), "%s as %s", tt.name, tt.style)
	}

	sym := Symbol{Name: "_ZN3foo3barEv"}
	require.Equal(t, "foo::bar", sym.DemangledName(DemangleSimplified))
}

func TestParseDemangleStyle(t *testing.T) {
	for _, s := range []string{"none", "simplified", "templates", "full"} {
		style, err := ParseDemangleStyle(s)
		require.NoError(t, err)
		require.Equal(t, DemangleStyle(s), style)
	}

	_, err := ParseDemangleStyle("pretty")
	require.Error(t, err)
}
