package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vanderheijden86/orgchart/pkg/analysis"
	"github.com/vanderheijden86/orgchart/pkg/hierarchy"
)

// ReportOptions configures GenerateMarkdown.
type ReportOptions struct {
	Title string
	// MermaidDepth limits the hierarchy diagram to this many levels below
	// the root. 0 draws only the root.
	MermaidDepth int
	// Now stamps the report; zero means time.Now.
	Now time.Time
}

// DefaultReportOptions returns the options used by the report command.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{Title: "Org Chart Report", MermaidDepth: 2}
}

// GenerateMarkdown creates a markdown report of the organisation and the
// quality of its data.
func GenerateMarkdown(data *Dataset, in *analysis.Insights, opts ReportOptions) (string, error) {
	if data == nil || data.Tree == nil {
		return "", fmt.Errorf("no data to report")
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	tree := data.Tree
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", opts.Title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC1123)))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Records**: %d\n", len(data.Records)))
	sb.WriteString(fmt.Sprintf("- **In chart**: %d\n", tree.Len()))
	sb.WriteString(fmt.Sprintf("- **Root**: %s\n", personLabel(tree.Record(tree.Root()).Name, tree.ID(tree.Root()))))
	if in != nil {
		sp := in.Span
		sb.WriteString(fmt.Sprintf("- **Managers**: %d\n", sp.Managers))
		sb.WriteString(fmt.Sprintf("- **Individual contributors**: %d\n", sp.Leaves))
		sb.WriteString(fmt.Sprintf("- **Levels**: %d\n", sp.MaxDepth+1))
		sb.WriteString(fmt.Sprintf("- **Average span of control**: %.1f\n", sp.AvgSpan))
	}
	sb.WriteString("\n")

	writeDiagnostics(&sb, data.Diagnostics)

	if in != nil {
		writeCycles(&sb, in.CycleBreak)
		writeSpans(&sb, in.WidestSpans)
		writeConnectors(&sb, in.Connectors)
	}

	// Hierarchy (Mermaid)
	sb.WriteString("## Hierarchy\n\n")
	sb.WriteString("```mermaid\ngraph TD\n")
	tree.Walk(func(i hierarchy.NodeIndex) bool {
		if tree.Depth(i) > opts.MermaidDepth {
			return false
		}
		r := tree.Record(i)
		sb.WriteString(fmt.Sprintf("    %s[\"%s <br/> %s\"]\n", mermaidID(r.ID), mermaidText(r.Name), mermaidText(r.Title)))
		if p := tree.Parent(i); p != hierarchy.NoParent {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", mermaidID(tree.ID(p)), mermaidID(r.ID)))
		}
		return true
	})
	sb.WriteString("```\n\n")

	// Directory
	sb.WriteString("## Directory\n\n")
	sb.WriteString("| Name | Title | Reports to | Office | Reports |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	tree.Walk(func(i hierarchy.NodeIndex) bool {
		r := tree.Record(i)
		manager := ""
		if p := tree.Parent(i); p != hierarchy.NoParent {
			manager = tree.Record(p).Name
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d |\n",
			cell(r.Name), cell(r.Title), cell(manager), cell(r.OfficeLine()), len(tree.Children(i))))
		return true
	})
	sb.WriteString("\n")

	return sb.String(), nil
}

func writeDiagnostics(sb *strings.Builder, d hierarchy.Diagnostics) {
	sb.WriteString("## Data Quality\n\n")
	if d.Empty() {
		sb.WriteString("No problems found.\n\n")
		return
	}
	list := func(label string, ids []string) {
		if len(ids) == 0 {
			return
		}
		sb.WriteString(fmt.Sprintf("- **%s** (%d): %s\n", label, len(ids), strings.Join(ids, ", ")))
	}
	list("Unknown parent", d.Orphans)
	list("Duplicate id", d.Duplicates)
	list("Extra root", d.ExtraRoots)
	list("Not below the root", d.Unreachable)
	list("Missing id or name", d.Invalid)
	sb.WriteString("\n")
}

func writeCycles(sb *strings.Builder, res analysis.CycleBreakResult) {
	if res.CycleCount == 0 {
		return
	}
	sb.WriteString("## Reporting Loops\n\n")
	sb.WriteString(res.Advisory + "\n\n")
	sb.WriteString("| Loop | Reassign | Current parent | Note |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, s := range res.Suggestions {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			strings.Join(s.Cycle, " → "), s.ID, s.ParentID, cell(s.Rationale)))
	}
	if res.Status.Capped {
		sb.WriteString(fmt.Sprintf("\n_%d more not shown._\n", res.Status.Limited-res.Status.Count))
	}
	sb.WriteString("\n")
}

func writeSpans(sb *strings.Builder, spans []analysis.ManagerSpan) {
	if len(spans) == 0 {
		return
	}
	sb.WriteString("## Widest Spans of Control\n\n")
	sb.WriteString("| Manager | Direct reports |\n")
	sb.WriteString("|---|---|\n")
	for _, s := range spans {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", cell(personLabel(s.Name, s.ID)), s.Reports))
	}
	sb.WriteString("\n")
}

func writeConnectors(sb *strings.Builder, res analysis.ConnectorResult) {
	if len(res.Items) == 0 {
		return
	}
	sb.WriteString("## Key Connectors\n\n")
	sb.WriteString(fmt.Sprintf("Betweenness (%s).\n\n", res.Mode))
	sb.WriteString("| Person | Score |\n")
	sb.WriteString("|---|---|\n")
	for _, c := range res.Items {
		sb.WriteString(fmt.Sprintf("| %s | %.1f |\n", cell(personLabel(c.Name, c.ID)), c.Score))
	}
	sb.WriteString("\n")
}

func personLabel(name, id string) string {
	if name == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", name, id)
}

// mermaidID makes an id safe as a mermaid node name.
func mermaidID(id string) string {
	var sb strings.Builder
	sb.WriteString("p_")
	for _, r := range id {
		if r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			sb.WriteRune(r)
		} else {
			sb.WriteString(fmt.Sprintf("x%x", r))
		}
	}
	return sb.String()
}

func mermaidText(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.NewReplacer("[", "", "]", "", "(", "", ")", "").Replace(s)
	if r := []rune(s); len(r) > 30 {
		s = string(r[:27]) + "..."
	}
	return s
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// SaveMarkdownToFile writes the generated report to filename.
func SaveMarkdownToFile(data *Dataset, in *analysis.Insights, opts ReportOptions, filename string) error {
	content, err := GenerateMarkdown(data, in, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(content), 0644)
}
