package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aleister1102/ayumi/internal/models"
)

const labelWidth = 16

// Summary renders a finished run for the operator
type Summary struct {
	Run     models.RunSummary
	Usage   *ResourceUsage
	noColor bool
}

// NewSummary wraps run. Pass usage as nil to omit the resources block.
func NewSummary(run models.RunSummary, usage *ResourceUsage, noColor bool) Summary {
	return Summary{Run: run, Usage: usage, noColor: noColor}
}

// BySeverity totals findings per tier across every action
func (s Summary) BySeverity() map[models.Severity]int {
	totals := make(map[models.Severity]int)
	for _, a := range s.Run.Actions {
		for sev, n := range a.BySeverity {
			totals[sev] += n
		}
	}
	return totals
}

// ByKind totals findings per kind across every action
func (s Summary) ByKind() map[string]int {
	totals := make(map[string]int)
	for _, a := range s.Run.Actions {
		for kind, n := range a.ByKind {
			totals[kind] += n
		}
	}
	return totals
}

// Render returns the human-readable summary block
func (s Summary) Render() string {
	st := newStyles(s.noColor)
	var b strings.Builder

	row := func(label, value string) {
		fmt.Fprintf(&b, "  %s %s\n", padRight(st.label.Render(label), labelWidth), value)
	}

	b.WriteString(st.title.Render("Run Summary"))
	b.WriteString("\n\n")

	row("Run ID:", st.value.Render(s.Run.RunID))
	if s.Run.Input != "" {
		row("Input:", s.Run.Input)
	}
	if s.Run.OutputPath != "" {
		row("Output:", s.Run.OutputPath)
	}
	row("Status:", st.status(s.Run.Status).Render(string(s.Run.Status)))
	row("Duration:", formatDuration(s.Run.Duration))
	row("Findings:", st.value.Render(fmt.Sprintf("%d", s.Run.TotalFindings())))

	totals := s.BySeverity()
	b.WriteString("\n")
	b.WriteString(st.section.Render("By severity"))
	b.WriteString("\n")
	for _, sev := range models.AllSeverities {
		row(string(sev)+":", st.severity(sev).Render(fmt.Sprintf("%d", totals[sev])))
	}

	if kinds := s.ByKind(); len(kinds) > 0 {
		b.WriteString("\n")
		b.WriteString(st.section.Render("By kind"))
		b.WriteString("\n")
		for _, kind := range sortedKeys(kinds) {
			row(kind+":", fmt.Sprintf("%d", kinds[kind]))
		}
	}

	if len(s.Run.Actions) > 0 {
		b.WriteString("\n")
		b.WriteString(st.section.Render("Actions"))
		b.WriteString("\n")
		for _, a := range s.Run.Actions {
			line := fmt.Sprintf("%s %d/%d targets, %d findings, %s",
				st.status(a.Status).Render(string(a.Status)),
				a.UniqueTargets, a.RawTargets, a.Findings, formatDuration(a.Duration))
			if a.Tool != "" {
				line += st.muted.Render(" [" + a.Tool + "]")
			}
			row(a.Action+":", line)
			if a.Error != "" {
				row("", st.muted.Render("error: "+a.Error))
			}
			for _, w := range a.Warnings {
				row("", st.muted.Render("warning: "+w))
			}
		}
	}

	if s.Usage != nil {
		b.WriteString("\n")
		b.WriteString(st.section.Render("Resources"))
		b.WriteString("\n")
		row("Memory:", fmt.Sprintf("%d MB alloc, %d MB sys", s.Usage.AllocMB, s.Usage.SysMB))
		row("Goroutines:", fmt.Sprintf("%d", s.Usage.Goroutines))
		if s.Usage.SystemMemTotalMB > 0 {
			row("Host memory:", fmt.Sprintf("%d/%d MB (%.1f%%)",
				s.Usage.SystemMemUsedMB, s.Usage.SystemMemTotalMB, s.Usage.SystemMemUsedPercent))
		}
		row("CPU:", fmt.Sprintf("%.1f%%", s.Usage.CPUUsagePercent))
	}

	return b.String()
}

// Print writes the rendered summary to w
func (s Summary) Print(w io.Writer) error {
	_, err := io.WriteString(w, s.Render())
	return err
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
