// Package report prints the result of an optimizer run for humans.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/cottand/motifsat/optimizer"
	"github.com/cottand/motifsat/saturate"
)

type Printer struct {
	w        io.Writer
	useColor bool
}

// NewPrinter writes to w, which defaults to stdout. Colour is only used on terminals.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) && !color.NoColor
	}
	return &Printer{w: w, useColor: useColor}
}

func (p *Printer) colorize(s string, attrs ...color.Attribute) string {
	if !p.useColor {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// Print writes the generation time, the motifs of the best expression, its costs and the
// simplified expression of every input.
func (p *Printer) Print(res *optimizer.Result) error {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "%s %s\n", p.colorize("generation time:", color.Bold), formatDuration(res.Elapsed))
	fmt.Fprintf(sb, "%s %s after %d iterations (%d classes, %d nodes)\n\n",
		p.colorize("saturation:", color.Bold),
		p.colorize(string(res.Saturation.Stop), stopColor(res)),
		res.Saturation.Iterations,
		res.Saturation.Classes,
		res.Saturation.Nodes,
	)

	if err := p.motifTable(sb, res.Motifs); err != nil {
		return err
	}

	fmt.Fprintf(sb, "\n%s %s\n", p.colorize("cost:", color.Bold), p.colorize(formatCost(res.Cost), color.FgGreen))
	fmt.Fprintf(sb, "%s %s\n", p.colorize("distinct cost:", color.Bold), p.colorize(formatCost(res.DistinctCost), color.FgGreen))
	fmt.Fprintf(sb, "%s %s\n\n", p.colorize("best:", color.Bold), res.Best)

	for i, s := range res.Simplified {
		fmt.Fprintf(sb, "%s %s\n", p.colorize(fmt.Sprintf("input %d:", i), color.FgCyan), res.Inputs[i])
		fmt.Fprintf(sb, "  = %s\n", s)
	}
	_, err := io.WriteString(p.w, sb.String())
	return err
}

func (p *Printer) motifTable(w io.Writer, motifs []optimizer.Motif) error {
	if len(motifs) == 0 {
		_, err := io.WriteString(w, "_No motifs_\n")
		return err
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment([]tw.Align{tw.AlignNone, tw.AlignRight, tw.AlignRight}),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"motif", "multiplicity", "cost"})
	for _, m := range motifs {
		table.Append([]string{m.Key, strconv.Itoa(m.Multiplicity), formatCost(m.Cost)})
	}
	table.Render()
	return nil
}

func stopColor(res *optimizer.Result) color.Attribute {
	if res.Saturation.Stop == saturate.Saturated {
		return color.FgGreen
	}
	return color.FgYellow
}

func formatCost(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
