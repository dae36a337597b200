// elfdump is a CLI tool for inspecting the structure of ELF object files.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jtang613/goelf/pkg/elffile"
	"github.com/jtang613/goelf/pkg/report"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// failure marks errors from inspecting files, as opposed to usage errors.
type failure struct{ err error }

func (f *failure) Error() string { return f.err.Error() }
func (f *failure) Unwrap() error { return f.err }

type config struct {
	opts     report.Options
	format   string
	units    string
	demangle string
	all      bool
	noColor  bool
	jobs     int
	verbose  bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var cfg config

	cmd := &cobra.Command{
		Use:   "elfdump [flags] <elf-file>...",
		Short: "Inspect the structure of ELF object files",
		Long: `Decode ELF32/ELF64 files of either byte order and print the file header,
section table, program headers, symbol tables and needed libraries.

Without a selection flag only the header summary is printed.`,
		Example: `  elfdump /bin/ls
  elfdump --sections --units iec /bin/ls
  elfdump --all --format json --demangle simplified lib.so
  elfdump --dyn-libs --jobs 8 /usr/bin/*`,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.resolve(stdout); err != nil {
				return err
			}
			logger := newLogger(stderr, cfg.verbose)
			if err := dump(cmd.Context(), logger, stdout, args, cfg); err != nil {
				return &failure{err: err}
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	sel := &cfg.opts.Select
	flags := cmd.Flags()
	flags.BoolVar(&sel.Header, "header", false, "Show the file header summary")
	flags.BoolVar(&sel.Sections, "sections", false, "List section headers")
	flags.BoolVar(&sel.Segments, "segments", false, "List program headers")
	flags.BoolVar(&sel.Symbols, "symbols", false, "List all symbol tables")
	flags.BoolVar(&sel.DynSyms, "dyn-syms", false, "List dynamic symbols")
	flags.BoolVar(&sel.DynLibs, "dyn-libs", false, "List needed dynamic libraries")
	flags.BoolVarP(&cfg.all, "all", "a", false, "Show everything")
	flags.StringVarP(&cfg.format, "format", "f", string(report.FormatTable), "Output format: table, json or yaml")
	flags.StringVar(&cfg.units, "units", string(report.UnitsBytes), "Size units in tables: bytes or iec")
	flags.StringVar(&cfg.demangle, "demangle", string(elffile.DemangleNone), "Symbol demangling: none, simplified, templates or full")
	flags.BoolVar(&cfg.noColor, "no-color", false, "Disable colored output")
	flags.IntVarP(&cfg.jobs, "jobs", "j", runtime.NumCPU(), "Number of files decoded in parallel")
	flags.BoolVarP(&cfg.verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

// resolve copies the flag values into the report options and validates them.
func (c *config) resolve(stdout io.Writer) error {
	c.opts.Format = report.Format(c.format)
	c.opts.Units = report.Units(c.units)
	c.opts.Demangle = elffile.DemangleStyle(c.demangle)
	c.opts.Color = c.opts.Format == report.FormatTable && colorEnabled(stdout, c.noColor)
	if c.all {
		c.opts.Select = report.SelectAll()
	}
	if c.jobs < 1 {
		return errors.Errorf("--jobs must be at least 1, got %d", c.jobs)
	}
	return c.opts.Validate()
}

func colorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}
	var f *failure
	if errors.As(err, &f) {
		fmt.Fprintf(stderr, "Error: %v\n", f.err)
		return exitFailure
	}
	fmt.Fprintf(stderr, "Error: %v\n\n%s", err, cmd.UsageString())
	return exitUsage
}
