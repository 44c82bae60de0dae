package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ppiankov/nounclass/internal/model"
)

// Renderer writes reports as text, JSON and Markdown
type Renderer struct {
	includeCounts bool
}

// NewRenderer creates a renderer. includeCounts adds the per-noun table
// to Markdown reports.
func NewRenderer(includeCounts bool) *Renderer {
	return &Renderer{includeCounts: includeCounts}
}

// RenderText prints the five buckets, one line each, in report order:
//
//	Exclusively informational nouns:  ['claim', 'rumour']
func (r *Renderer) RenderText(w io.Writer, report *model.Report) error {
	for _, class := range model.Classes {
		if _, err := fmt.Fprintf(w, "%s:  %s\n", class.Label(), listRepr(report.Buckets.Get(class))); err != nil {
			return errors.Wrap(err, "write report")
		}
	}
	return nil
}

// RenderSummary prints per-source and corpus counters, for stderr
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	for _, src := range report.Sources {
		cached := ""
		if src.FromCache {
			cached = " (cached)"
		}
		fmt.Fprintf(w, "✓ %s: %d bytes, %d tokens%s\n", src.Name, src.Bytes, src.Tokens, cached)
	}
	s := report.Stats
	fmt.Fprintf(w, "✓ %d documents, %d tokens, %d candidate nouns (%d skipped at document edges)\n",
		s.Documents, s.Tokens, s.Candidates, s.Skipped)
	fmt.Fprintf(w, "✓ %d nouns classified\n", report.Buckets.Total())
}

// RenderJSON writes the report as indented JSON. Empty buckets are written
// as [] rather than null.
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	out := *report
	out.Buckets = nonNilBuckets(report.Buckets)

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// RenderMarkdown writes the Markdown rendering of the report to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(report)), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// Markdown renders the report as a Markdown document
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	b.WriteString("# Noun classification report\n\n")
	fmt.Fprintf(&b, "- Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Tagger: %s\n", report.Tagger)
	fmt.Fprintf(&b, "- Nouns classified: %d\n\n", report.Buckets.Total())

	if len(report.Sources) > 0 {
		b.WriteString("## Sources\n\n")
		b.WriteString("| Name | URL | Bytes | Tokens | Cached |\n")
		b.WriteString("|---|---|---:|---:|---|\n")
		for _, src := range report.Sources {
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %s |\n",
				mdEscape(src.Name), src.URL, src.Bytes, src.Tokens, yesNo(src.FromCache))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Classes\n\n")
	for _, class := range model.Classes {
		nouns := report.Buckets.Get(class)
		fmt.Fprintf(&b, "### %s (%d)\n\n", class.Label(), len(nouns))
		if len(nouns) == 0 {
			b.WriteString("_none_\n\n")
			continue
		}
		escaped := make([]string, len(nouns))
		for i, n := range nouns {
			escaped[i] = mdEscape(n)
		}
		b.WriteString(strings.Join(escaped, ", "))
		b.WriteString("\n\n")
	}

	if r.includeCounts && len(report.Nouns) > 0 {
		b.WriteString("## Counts\n\n")
		b.WriteString("| Noun | Info | Event | Class |\n")
		b.WriteString("|---|---:|---:|---|\n")
		for _, n := range report.Nouns {
			fmt.Fprintf(&b, "| %s | %d | %d | %s |\n", mdEscape(n.Noun), n.Info, n.Event, n.Class)
		}
		b.WriteString("\n")
	}

	s := report.Stats
	b.WriteString("## Corpus pass\n\n")
	fmt.Fprintf(&b, "- Documents: %d\n", s.Documents)
	fmt.Fprintf(&b, "- Tokens: %d\n", s.Tokens)
	fmt.Fprintf(&b, "- Candidate nouns: %d\n", s.Candidates)
	fmt.Fprintf(&b, "- Nouns at document edges (not evaluated): %d\n", s.Skipped)
	for _, name := range sortedMatchNames(s.Matches) {
		fmt.Fprintf(&b, "- Matches by %s: %d\n", name, s.Matches[name])
	}

	return b.String()
}

// listRepr formats nouns the way a Python list of strings prints
func listRepr(nouns []string) string {
	parts := make([]string, len(nouns))
	for i, n := range nouns {
		parts[i] = strRepr(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func strRepr(s string) string {
	quote := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		quote = `"`
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	if quote == "'" {
		s = strings.ReplaceAll(s, "'", `\'`)
	}
	return quote + s + quote
}

func nonNilBuckets(b model.Buckets) model.Buckets {
	for _, class := range model.Classes {
		if b.Get(class) == nil {
			b.Set(class, []string{})
		}
	}
	return b
}

func sortedMatchNames(m map[string]int) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mdEscape(s string) string {
	return strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`).Replace(s)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
