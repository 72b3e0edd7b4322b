// Package console renders batch results for people reading a terminal.
package console

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/redemptions/internal/batch"
	"github.com/JonMunkholm/redemptions/internal/codes"
	"github.com/JonMunkholm/redemptions/internal/core"
	"github.com/JonMunkholm/redemptions/internal/schema"
)

const (
	colorGreen   lipgloss.Color = "#a6e3a1"
	colorYellow  lipgloss.Color = "#f9e2af"
	colorRed     lipgloss.Color = "#f38ba8"
	colorTeal    lipgloss.Color = "#94e2d5"
	colorOverlay lipgloss.Color = "#7f849c"
)

// Printer writes human-readable diagnostics. Colors are used only when the
// destination supports them.
type Printer struct {
	w       io.Writer
	verbose bool

	ok    lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
	info  lipgloss.Style
	muted lipgloss.Style
	bold  lipgloss.Style
}

// NewPrinter creates a printer writing to w. When verbose is set every
// header resolution is listed, not only the ones worth attention.
func NewPrinter(w io.Writer, verbose bool) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		verbose: verbose,
		ok:      r.NewStyle().Foreground(colorGreen),
		warn:    r.NewStyle().Foreground(colorYellow),
		fail:    r.NewStyle().Foreground(colorRed).Bold(true),
		info:    r.NewStyle().Foreground(colorTeal),
		muted:   r.NewStyle().Foreground(colorOverlay),
		bold:    r.NewStyle().Bold(true),
	}
}

// Summary prints every file result followed by the totals.
func (p *Printer) Summary(s *batch.Summary) {
	for i := range s.Files {
		p.File(&s.Files[i])
	}

	totals := fmt.Sprintf("%d succeeded, %d failed", s.Succeeded, s.Failed)
	style := p.ok
	if s.Failed > 0 {
		style = p.warn
	}
	fmt.Fprintf(p.w, "\n%s %s\n", p.bold.Render("Summary:"), style.Render(totals))
}

// File prints the outcome for one file.
func (p *Printer) File(f *batch.FileResult) {
	name := filepath.Base(f.Path)
	if ue := f.UserError(); ue != nil {
		fmt.Fprintf(p.w, "%s %s: %s\n", p.fail.Render("✘"), p.bold.Render(name), ue.Error())
		if !core.IsUserFacing(ue.Technical) {
			fmt.Fprintf(p.w, "    %s %v\n", p.muted.Render("cause:"), ue.Technical)
		}
		return
	}

	r := f.Report
	fmt.Fprintf(p.w, "%s %s → %s %s\n",
		p.ok.Render("✔"),
		p.bold.Render(name),
		filepath.Base(f.Output),
		p.muted.Render(fmt.Sprintf("(%d read, %d written, %d removed)", r.RowsRead, r.RowsWritten, r.RowsRemoved)),
	)

	width := 0
	for _, m := range r.Matches {
		width = max(width, lipgloss.Width(m.Raw))
	}
	for _, m := range r.Matches {
		if !p.verbose && m.Kind == core.MatchExact {
			continue
		}
		p.match(m, width)
	}

	if len(r.Missing) > 0 {
		fmt.Fprintf(p.w, "    %s %s\n", p.warn.Render("missing:"), joinFields(r.Missing))
	}
	for _, d := range r.Dropped {
		fmt.Fprintf(p.w, "    %s %q (a later column maps to %s)\n", p.warn.Render("dropped duplicate:"), d.Raw, d.Name())
	}
	for _, d := range r.Dates {
		p.date(d)
	}
	p.coercion(r.Coercion)
	if f.Info.Repaired > 0 {
		fmt.Fprintf(p.w, "    %s %d cells had invalid UTF-8\n", p.warn.Render("repaired:"), f.Info.Repaired)
	}
}

func (p *Printer) match(m core.HeaderMatch, width int) {
	pad := strings.Repeat(" ", width-lipgloss.Width(m.Raw))
	switch m.Kind {
	case core.MatchExact:
		fmt.Fprintf(p.w, "    %s%s → %s\n", m.Raw, pad, p.ok.Render(m.Name()))
	case core.MatchForcedDate:
		fmt.Fprintf(p.w, "    %s%s → %s %s\n", m.Raw, pad, p.info.Render(m.Name()), p.muted.Render("(date)"))
	case core.MatchFuzzy:
		fmt.Fprintf(p.w, "    %s%s → %s %s\n", m.Raw, pad, p.warn.Render(m.Name()), p.muted.Render(fmt.Sprintf("(fuzzy %.2f)", m.Score)))
	default:
		fmt.Fprintf(p.w, "    %s%s → %s\n", m.Raw, pad, p.muted.Render("kept as extra"))
	}
}

func (p *Printer) date(d core.DateDecision) {
	line := fmt.Sprintf("%s: %s (%s, %d day-first / %d month-first)",
		d.Column, d.Chosen, d.Reason, d.DayFirstCount, d.MonthFirstCount)
	fmt.Fprintf(p.w, "    %s %s", p.info.Render("dates"), line)
	if d.Nulled > 0 {
		fmt.Fprintf(p.w, ", %s", p.warn.Render(fmt.Sprintf("%d unreadable set empty", d.Nulled)))
	}
	fmt.Fprintln(p.w)
}

func (p *Printer) coercion(c core.CoercionStats) {
	var parts []string
	if c.QuantityInvalid > 0 {
		parts = append(parts, fmt.Sprintf("%d invalid quantity", c.QuantityInvalid))
	}
	if c.QuantityTruncated > 0 {
		parts = append(parts, fmt.Sprintf("%d quantity truncated", c.QuantityTruncated))
	}
	if c.SalesValueInvalid > 0 {
		parts = append(parts, fmt.Sprintf("%d invalid sales_value", c.SalesValueInvalid))
	}
	if c.TextArtifacts > 0 {
		parts = append(parts, fmt.Sprintf("%d placeholder text", c.TextArtifacts))
	}
	if len(parts) > 0 {
		fmt.Fprintf(p.w, "    %s %s\n", p.warn.Render("values:"), strings.Join(parts, ", "))
	}
}

func joinFields(fields []schema.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return strings.Join(names, ", ")
}

// Codes prints the outcome of a unique-code extraction written to path.
func (p *Printer) Codes(path string, res *codes.Result) {
	for _, f := range res.Files {
		if f.Err != nil {
			fmt.Fprintf(p.w, "%s %s: %s\n", p.warn.Render("skipped"), filepath.Base(f.Path), core.FormatUserError(f.Err))
		}
	}
	fmt.Fprintf(p.w, "%s %d unique codes → %s\n", p.ok.Render("✔"), len(res.Codes), path)
}

// Wrote prints that rows rows were written to path.
func (p *Printer) Wrote(path string, rows int) {
	fmt.Fprintf(p.w, "%s %d rows → %s\n", p.ok.Render("✔"), rows, path)
}
