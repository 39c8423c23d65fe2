// Package report renders a scored benchmark as a markdown summary, and as
// HTML for browsers.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"alignbench/domain/scoring"
)

const notComputable = "n/a"

var summaryHeader = []string{"", "PAS raw", "PAS norm", "ECS (CCC)", "ECS r", "slope a", "bias b", "p_null", "sig agree", "missing", "tests"}

// Markdown renders the benchmark, domain and study summaries as tables
func Markdown(result *scoring.BenchmarkResult) string {
	var b strings.Builder

	b.WriteString("# Alignment benchmark\n\n")
	fmt.Fprintf(&b, "%d studies, %d tests.", result.NStudies, result.NTests)
	if result.PASInverseVariance != nil && result.PASSE != nil {
		fmt.Fprintf(&b, " Inverse-variance PAS %s ± %s.", num(result.PASInverseVariance), num(result.PASSE))
	}
	b.WriteString("\n\n")

	writeHeader(&b)
	writeRow(&b, "**benchmark**", result.ScoreSummary)

	if len(result.Domains) > 0 {
		b.WriteString("\n## Domains\n\n")
		writeHeader(&b)
		for _, d := range result.Domains {
			writeRow(&b, d.Domain, d.ScoreSummary)
		}
	}

	if len(result.Studies) > 0 {
		b.WriteString("\n## Studies\n\n")
		writeHeader(&b)
		for _, s := range result.Studies {
			label := s.StudyID
			if s.Domain != "" {
				label = fmt.Sprintf("%s (%s)", s.StudyID, s.Domain)
			}
			writeRow(&b, label, s.ScoreSummary)
		}

		b.WriteString("\n## Findings\n\n")
		b.WriteString("| study | finding | score | weight | p_value | tests |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, s := range result.Studies {
			for _, f := range s.Findings {
				fmt.Fprintf(&b, "| %s | %s | %.3f | %g | %s | %d |\n",
					s.StudyID, f.FindingID, f.Score, f.Weight, num(f.PValue), f.NTests)
			}
		}
	}

	return b.String()
}

// HTML renders Markdown as an HTML fragment
func HTML(result *scoring.BenchmarkResult) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(Markdown(result)), p, renderer)
}

func writeHeader(b *strings.Builder) {
	b.WriteString("| " + strings.Join(summaryHeader, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(summaryHeader)) + "\n")
}

func writeRow(b *strings.Builder, label string, s scoring.ScoreSummary) {
	a, bias := notComputable, notComputable
	if s.Caricature != nil {
		a = fmt.Sprintf("%.3f", s.Caricature.A)
		bias = fmt.Sprintf("%.3f", s.Caricature.B)
	}
	cells := []string{
		label,
		num(s.PASRaw),
		num(s.PASNorm),
		num(s.ECS),
		num(s.ECSPearson),
		a,
		bias,
		num(s.PNull),
		num(s.SigAgreement),
		fmt.Sprintf("%.1f%%", 100*s.MissingRate),
		fmt.Sprintf("%d", s.NTests),
	}
	b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}

func num(v *float64) string {
	if v == nil {
		return notComputable
	}
	return fmt.Sprintf("%.3f", *v)
}
