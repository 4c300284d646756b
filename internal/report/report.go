// Package report renders the human-facing console output of a run.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/veranemoloko/mdk-downloader/internal/domain"
)

const ruleWidth = 70

// Printer writes progress and summary lines to an output stream.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) rule() {
	fmt.Fprintln(p.out, strings.Repeat("=", ruleWidth))
}

// Banner prints the startup header.
func (p *Printer) Banner(root string, previouslyCompleted int) {
	p.rule()
	fmt.Fprintln(p.out, "Forge MDK bulk downloader")
	p.rule()
	fmt.Fprintf(p.out, "Target directory: %s\n", root)
	fmt.Fprintf(p.out, "Found %d previously completed downloads\n\n", previouslyCompleted)
}

// Discovery prints the scan result of one coarse identifier.
func (p *Printer) Discovery(d domain.Discovery) {
	switch {
	case d.Failed():
		fmt.Fprintf(p.out, "  Scanning MC %s... failed: %v\n", d.Coarse, d.Err)
	case len(d.Fines) == 0:
		fmt.Fprintf(p.out, "  Scanning MC %s... None found\n", d.Coarse)
	default:
		fmt.Fprintf(p.out, "  Scanning MC %s... Found %d versions\n", d.Coarse, len(d.Fines))
	}
}

// Outcome prints one line per finished task.
func (p *Printer) Outcome(out domain.Outcome) {
	key := out.Task.Key()
	switch {
	case out.Status == domain.FetchSkipped && out.Existing:
		fmt.Fprintf(p.out, "⊙ EXISTS: %s\n", key)
	case out.Status == domain.FetchSkipped:
		fmt.Fprintf(p.out, "⊙ SKIP: %s\n", key)
	case out.Status == domain.FetchSuccess:
		fmt.Fprintf(p.out, "✓ SUCCESS: %s\n", key)
	default:
		fmt.Fprintf(p.out, "✗ FAILED: %s (%v)\n", key, out.Err)
	}
}

// Queue prints the planned task count before the transfer phase starts.
func (p *Printer) Queue(total, pending, workers int) {
	fmt.Fprintf(p.out, "\nTotal tasks in queue: %d (%d pending)\n", total, pending)
	fmt.Fprintf(p.out, "Starting downloads with %d concurrent workers...\n", workers)
	p.rule()
}

// Checkpoint prints the rate and estimated remaining time.
func (p *Printer) Checkpoint(stats domain.RunStats, elapsed time.Duration) {
	rate := Rate(stats.Completed, elapsed)
	fmt.Fprintf(p.out, "[%d/%d] Rate: %.1f/s | ETA: %s\n",
		stats.Completed, stats.Total, rate, ETA(stats.Total-stats.Completed, rate))
}

// Summary prints the final counters as a table.
func (p *Printer) Summary(stats domain.RunStats, elapsed time.Duration, root string) {
	fmt.Fprintln(p.out)
	p.rule()
	fmt.Fprintln(p.out, "FINAL SUMMARY")

	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.AppendRows([]table.Row{
		{"Downloaded", stats.Downloaded},
		{"Skipped", stats.Skipped},
		{"Failed", stats.Failed},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"TOTAL", stats.Total},
		{"TIME", fmt.Sprintf("%.2f minutes", elapsed.Minutes())},
		{"RATE", fmt.Sprintf("%.2f files/second", Rate(stats.Total, elapsed))},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()

	p.rule()
	fmt.Fprintf(p.out, "All MDKs saved to: %s\n", root)
}

// Rate returns completed tasks per second, zero when no time has elapsed.
func Rate(completed int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(completed) / elapsed.Seconds()
}

// ETA estimates the time left for remaining tasks at rate.
func ETA(remaining int, rate float64) string {
	if rate <= 0 {
		return "calculating..."
	}
	if remaining <= 0 {
		return formatDuration(0)
	}
	return formatDuration(time.Duration(float64(remaining) / rate * float64(time.Second)))
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}
