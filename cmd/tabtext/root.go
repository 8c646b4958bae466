package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/bjaus/tabtext"
	"github.com/bjaus/tabtext/internal/config"
	"github.com/bjaus/tabtext/internal/logging"
	"github.com/bjaus/tabtext/xlsx"
)

var errNeedOutputFile = errors.New("xlsx output needs -o FILE")

type rootFlags struct {
	configFile  string
	output      string
	format      string
	inputFormat string
	labels      []string
	legend      []string
	border      string
	minWidth    int
	noRight     bool
	noHeaders   bool
	unique      bool
	verbosity   int
	logFile     string
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	cmd := &cobra.Command{
		Use:   "tabtext [flags] FILE [SELECT...]",
		Short: "Convert tables between markdown, csv, json, yaml and xlsx",
		Long: `tabtext reads a table from FILE ("-" for stdin) and prints it in another
format. The input format follows the file extension unless -i is given; the
output format follows -f, the -o file extension, or defaults to markdown.

Each SELECT is a column spec: "name", "name:.2f", "name@Label",
"name@Label@1" (sort key), "name>3" (filter), "{first} {last}@Name"
(template), "a|b" (combined), "*" (every other column), "#" (row number),
or a directive such as "@csv", "@unique" or "@noheaders".`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &f, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/tabtext/config.toml)")
	fl.StringVarP(&f.output, "output", "o", "", "write to FILE instead of stdout")
	fl.StringVarP(&f.format, "format", "f", "", "output format: "+formatNames())
	fl.StringVarP(&f.inputFormat, "input-format", "i", "", "input format (default: by extension)")
	fl.StringArrayVarP(&f.labels, "labels", "L", nil, "header spec giving default column order, formats and renames (repeatable)")
	fl.StringArrayVar(&f.legend, "legend", nil, "legend line appended below the table (repeatable)")
	fl.StringVar(&f.border, "border", "", "box style of the table format: rounded, none, ascii, heavy, double")
	fl.IntVar(&f.minWidth, "minwidth", 0, "narrowest padded column, negative to disable")
	fl.BoolVar(&f.noRight, "noright", false, "keep numeric columns left aligned")
	fl.BoolVar(&f.noHeaders, "noheaders", false, "omit the header row")
	fl.BoolVar(&f.unique, "unique", false, "drop rows equal to the previous one")
	fl.CountVarP(&f.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	fl.StringVar(&f.logFile, "log-file", "", "also append log records to FILE; bare --log-file uses the XDG state dir")
	fl.Lookup("log-file").NoOptDefVal = logging.StateLogFile
	return cmd
}

// overrides returns the flags given on the command line keyed like the
// config file.
func (f *rootFlags) overrides(cmd *cobra.Command) map[string]any {
	values := map[string]any{
		"format":    f.format,
		"input":     f.inputFormat,
		"labels":    f.labels,
		"legend":    f.legend,
		"border":    f.border,
		"minwidth":  f.minWidth,
		"noright":   f.noRight,
		"noheaders": f.noHeaders,
		"unique":    f.unique,
		"verbosity": f.verbosity,
		"logfile":   f.logFile,
	}
	names := map[string]string{
		"format":       "format",
		"input-format": "input",
		"labels":       "labels",
		"legend":       "legend",
		"border":       "border",
		"minwidth":     "minwidth",
		"noright":      "noright",
		"noheaders":    "noheaders",
		"unique":       "unique",
		"verbose":      "verbosity",
		"log-file":     "logfile",
	}
	out := make(map[string]any)
	for flag, key := range names {
		if cmd.Flags().Changed(flag) {
			out[key] = values[key]
		}
	}
	return out
}

func run(cmd *cobra.Command, f *rootFlags, args []string) error {
	cfg, err := config.Load(f.configFile, f.overrides(cmd))
	if err != nil {
		return err
	}
	closer, err := logging.SetupLogger(cmd.ErrOrStderr(), cfg.Verbosity, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger := logging.GetLogger("cli")

	table, headers, err := load(args[0], cfg.InputFormat, cmd.InOrStdin())
	if err != nil {
		return err
	}
	logger.Info().Str("input", args[0]).Int("records", len(table)).Msg("table loaded")

	opts, err := cfg.Options(args[1:])
	if err != nil {
		return err
	}
	if len(opts.Headers) == 0 {
		opts.Headers = headers
	}

	format, err := outputFormat(cfg.Format, f.output)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	toStdout := f.output == "" || f.output == "-"
	if toStdout && isTerminal(out) {
		bold := lipgloss.NewStyle().Bold(true)
		opts.HeaderStyle = func(s string) string { return bold.Render(s) }
	}

	a, err := tabtext.Assemble(table, opts)
	if err != nil {
		return err
	}
	if a.Format != "" {
		format = a.Format
	}
	logger.Debug().Stringer("format", format).Int("rows", len(a.Rows)).Int("columns", len(a.Columns)).Msg("table assembled")

	if format == tabtext.XLSX {
		if toStdout {
			return errNeedOutputFile
		}
		return xlsx.Save(f.output, a)
	}
	if toStdout {
		return tabtext.Render(out, format, a)
	}
	var buf bytes.Buffer
	if err := tabtext.Render(&buf, format, a); err != nil {
		return err
	}
	if err := os.WriteFile(f.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.output, err)
	}
	logger.Info().Str("output", f.output).Msg("table written")
	return nil
}

// load reads the input table. The format is the given name, else the one
// matching the file extension, else markdown.
func load(path, name string, stdin io.Reader) (tabtext.Table, []string, error) {
	format := tabtext.Markdown
	switch {
	case name != "":
		f, err := tabtext.ParseFormat(name)
		if err != nil {
			return nil, nil, err
		}
		format = f
	case path != "-":
		if f, ok := tabtext.FormatForPath(path); ok {
			format = f
		}
	}

	if format == tabtext.XLSX {
		return xlsx.ReadFile(path)
	}
	if path == "-" {
		return tabtext.Load(stdin, format)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()
	return tabtext.Load(file, format)
}

func outputFormat(name, output string) (tabtext.Format, error) {
	if name != "" {
		return tabtext.ParseFormat(name)
	}
	if output != "" && output != "-" {
		if f, ok := tabtext.FormatForPath(output); ok {
			return f, nil
		}
	}
	return tabtext.Markdown, nil
}

func formatNames() string {
	var b bytes.Buffer
	for i, f := range tabtext.Formats() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.String())
	}
	b.WriteString(", go-template=TEMPLATE")
	return b.String()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
