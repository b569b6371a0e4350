// Package output renders elision reports as text, markdown, JSON or TOON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	toon "github.com/toon-format/toon-go"
)

// Format represents an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTOON     Format = "toon"
)

// ParseFormat converts a string to Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "markdown", "md":
		return FormatMarkdown
	case "toon":
		return FormatTOON
	default:
		return FormatText
	}
}

// Renderable defines data that can render itself in multiple formats.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	RenderMarkdown(w io.Writer) error
	// RenderData returns the value serialized by the JSON and TOON formats.
	RenderData() any
}

// Formatter writes reports to the report destination and short notices to
// a separate stream, so a JSON report stays machine-readable.
type Formatter struct {
	format  Format
	writer  io.Writer
	notices io.Writer
	file    *os.File
	colored bool
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithStdout sets where reports go when no output file is given.
func WithStdout(w io.Writer) Option {
	return func(f *Formatter) {
		if w != nil {
			f.writer = w
		}
	}
}

// WithNotices sets where warnings are written.
func WithNotices(w io.Writer) Option {
	return func(f *Formatter) {
		if w != nil {
			f.notices = w
		}
	}
}

// NewFormatter creates a formatter. A non-empty output path is created and
// receives the report uncolored.
func NewFormatter(format Format, output string, colored bool, opts ...Option) (*Formatter, error) {
	f := &Formatter{
		format:  format,
		writer:  os.Stdout,
		notices: os.Stderr,
		colored: colored,
	}
	for _, opt := range opts {
		opt(f)
	}

	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return nil, err
		}
		f.writer = file
		f.file = file
		f.colored = false
	}
	return f, nil
}

// Close closes the formatter's writer if it's a file.
func (f *Formatter) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

// Colored returns whether colored output is enabled.
func (f *Formatter) Colored() bool {
	return f.colored
}

// Output writes r in the configured format.
func (f *Formatter) Output(r Renderable) error {
	switch f.format {
	case FormatJSON:
		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(r.RenderData())
	case FormatTOON:
		return f.outputTOON(r.RenderData())
	case FormatMarkdown:
		return r.RenderMarkdown(f.writer)
	default:
		return r.RenderText(f.writer, f.colored)
	}
}

// outputTOON writes data in Token-Oriented Object Notation.
func (f *Formatter) outputTOON(data any) error {
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return err
	}
	if _, err := f.writer.Write(out); err != nil {
		return err
	}
	_, err = fmt.Fprintln(f.writer)
	return err
}

// Warning writes a notice. Colored formatters print it in yellow, plain ones
// prefix it with "warning:".
func (f *Formatter) Warning(format string, args ...any) {
	if f.colored {
		color.New(color.FgYellow).Fprintf(f.notices, format+"\n", args...)
		return
	}
	fmt.Fprintf(f.notices, "warning: "+format+"\n", args...)
}

// Table is a Renderable table. Its data form is one map per row keyed by
// header.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// NewTable creates a table.
func NewTable(title string, headers []string, rows [][]string) *Table {
	return &Table{Title: title, Headers: headers, Rows: rows}
}

func (t *Table) RenderData() any {
	result := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(row) {
				m[h] = row[j]
			}
		}
		result[i] = m
	}
	return result
}

func (t *Table) RenderText(w io.Writer, colored bool) error {
	writeHeading(w, t.Title, colored, "=")
	if len(t.Rows) == 0 {
		fmt.Fprintln(w, "(none)")
		return nil
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)

	table.Header(t.Headers)
	for _, row := range t.Rows {
		table.Append(row)
	}
	table.Render()
	return nil
}

func (t *Table) RenderMarkdown(w io.Writer) error {
	if t.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", t.Title)
	}
	if len(t.Rows) == 0 {
		fmt.Fprint(w, "_None._\n\n")
		return nil
	}

	fmt.Fprintf(w, "| %s |\n", strings.Join(t.Headers, " | "))
	fmt.Fprintf(w, "|%s\n", strings.Repeat(" --- |", len(t.Headers)))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = markdownCell(cell)
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	fmt.Fprintln(w)
	return nil
}

// markdownCell keeps removed source text from breaking the table row.
func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// Section is a Renderable titled block of text.
type Section struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

func (s *Section) RenderData() any {
	return s
}

func (s *Section) RenderText(w io.Writer, colored bool) error {
	writeHeading(w, s.Title, colored, "-")
	if s.Content != "" {
		fmt.Fprintln(w, s.Content)
	}
	return nil
}

func (s *Section) RenderMarkdown(w io.Writer) error {
	if s.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", s.Title)
	}
	if s.Content != "" {
		fmt.Fprintf(w, "%s\n\n", s.Content)
	}
	return nil
}

// Report is a titled list of tables and sections. Data, when set, replaces
// the sections in the JSON and TOON formats.
type Report struct {
	Title    string
	Sections []Renderable
	Data     any
}

func (r *Report) RenderData() any {
	if r.Data != nil {
		return r.Data
	}
	parts := make([]any, len(r.Sections))
	for i, s := range r.Sections {
		parts[i] = s.RenderData()
	}
	return map[string]any{
		"title":    r.Title,
		"sections": parts,
	}
}

func (r *Report) RenderText(w io.Writer, colored bool) error {
	if r.Title != "" {
		if colored {
			color.New(color.Bold, color.FgCyan).Fprintln(w, r.Title)
		} else {
			fmt.Fprintln(w, r.Title)
		}
		fmt.Fprintln(w, strings.Repeat("=", len(r.Title)))
	}
	for _, s := range r.Sections {
		fmt.Fprintln(w)
		if err := s.RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) RenderMarkdown(w io.Writer) error {
	if r.Title != "" {
		fmt.Fprintf(w, "# %s\n\n", r.Title)
	}
	for _, s := range r.Sections {
		if err := s.RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

func writeHeading(w io.Writer, title string, colored bool, underline string) {
	if title == "" {
		return
	}
	if colored {
		color.New(color.Bold).Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintln(w, strings.Repeat(underline, len(title)))
}

// KindColor colors text by how much of an import an operation removes:
// whole declarations in red, partial removals in yellow.
func KindColor(declaration bool, text string) string {
	if declaration {
		return color.RedString(text)
	}
	return color.YellowString(text)
}
