// Package view renders an information state for inspection, as styled
// terminal output and as a standalone HTML page.
package view

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/parley-dm/parley/internal/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	itemStyle    = lipgloss.NewStyle().PaddingLeft(2)
	topStyle     = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("220"))
	dimStyle     = lipgloss.NewStyle().PaddingLeft(2).Faint(true)
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// Render returns a terminal rendering of the state.
func Render(st *domain.InformationState) string {
	if st == nil {
		return dimStyle.Render("(no state)")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Information State"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("QUD"))
	b.WriteString("\n")
	if len(st.Shared.QUD) == 0 {
		b.WriteString(dimStyle.Render("(empty)"))
		b.WriteString("\n")
	} else {
		// Top of stack first.
		for i := len(st.Shared.QUD) - 1; i >= 0; i-- {
			q := st.Shared.QUD[i]
			line := fmt.Sprintf("%s  [%s]", q.Key(), q.Kind())
			if i == len(st.Shared.QUD)-1 {
				b.WriteString(topStyle.Render("▸ " + line))
			} else {
				b.WriteString(itemStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Commitments"))
	b.WriteString("\n")
	if len(st.Shared.Commitments) == 0 {
		b.WriteString(dimStyle.Render("(none)"))
		b.WriteString("\n")
	} else {
		for _, c := range st.Shared.Commitments {
			b.WriteString(itemStyle.Render("• " + c))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Plans"))
	b.WriteString("\n")
	if len(st.Private.Plans) == 0 {
		b.WriteString(dimStyle.Render("(none)"))
		b.WriteString("\n")
	} else {
		for i := len(st.Private.Plans) - 1; i >= 0; i-- {
			writePlan(&b, st.Private.Plans[i], 0)
		}
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Agenda"))
	b.WriteString("\n")
	if len(st.Private.Agenda) == 0 {
		b.WriteString(dimStyle.Render("(empty)"))
		b.WriteString("\n")
	} else {
		for _, m := range st.Private.Agenda {
			b.WriteString(itemStyle.Render(fmt.Sprintf("%s: %s", m.Type, domain.ContentText(m.Content))))
			b.WriteString("\n")
		}
	}

	if len(st.Private.Issues) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Issues"))
		b.WriteString("\n")
		for _, q := range st.Private.Issues {
			b.WriteString(itemStyle.Render("? " + q.Key()))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Control"))
	b.WriteString("\n")
	b.WriteString(itemStyle.Render("next speaker: " + st.Control.NextSpeaker))
	b.WriteString("\n")
	if st.Control.PendingGround != nil {
		b.WriteString(itemStyle.Render("pending ground: " + domain.ContentText(st.Control.PendingGround.Content)))
		b.WriteString("\n")
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func writePlan(b *strings.Builder, p *domain.Plan, depth int) {
	indent := strings.Repeat("  ", depth)
	label := fmt.Sprintf("%s%s %s", indent, p.Type, p.Goal())
	switch p.Status {
	case domain.PlanCompleted:
		b.WriteString(itemStyle.Render(doneStyle.Render("✓ " + label)))
	case domain.PlanAbandoned:
		b.WriteString(itemStyle.Render(doneStyle.Render("✗ " + label)))
	default:
		b.WriteString(itemStyle.Render("› " + label))
	}
	b.WriteString("\n")
	for _, sub := range p.Subplans {
		writePlan(b, sub, depth+1)
	}
}

const htmlPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Dialogue State</title>
<style>
body { font-family: monospace; background: #1e1e2e; color: #cdd6f4; margin: 2em; }
h1 { color: #f38ba8; }
h2 { color: #89b4fa; border-bottom: 1px solid #45475a; }
ul { list-style: none; padding-left: 1em; }
.top { color: #f9e2af; font-weight: bold; }
.done { color: #6c7086; text-decoration: line-through; }
.empty { color: #6c7086; font-style: italic; }
</style>
</head>
<body>
<h1>Information State</h1>
<h2>QUD</h2>
{{if .QUD}}<ul>{{range .QUD}}<li{{if .Top}} class="top"{{end}}>{{.Text}}</li>{{end}}</ul>{{else}}<p class="empty">empty</p>{{end}}
<h2>Commitments</h2>
{{if .Commitments}}<ul>{{range .Commitments}}<li>{{.}}</li>{{end}}</ul>{{else}}<p class="empty">none</p>{{end}}
<h2>Plans</h2>
{{if .Plans}}<ul>{{range .Plans}}<li{{if .Done}} class="done"{{end}} style="padding-left: {{.Depth}}em">{{.Text}}</li>{{end}}</ul>{{else}}<p class="empty">none</p>{{end}}
<h2>Moves</h2>
{{if .Moves}}<ul>{{range .Moves}}<li>{{.}}</li>{{end}}</ul>{{else}}<p class="empty">none</p>{{end}}
</body>
</html>
`

var htmlTmpl = template.Must(template.New("state").Parse(htmlPage))

type htmlQuestion struct {
	Text string
	Top  bool
}

type htmlPlan struct {
	Text  string
	Depth int
	Done  bool
}

type htmlData struct {
	QUD         []htmlQuestion
	Commitments []string
	Plans       []htmlPlan
	Moves       []string
}

// RenderHTML writes a standalone HTML page describing the state.
func RenderHTML(w io.Writer, st *domain.InformationState) error {
	data := htmlData{Commitments: st.Shared.Commitments}
	for i := len(st.Shared.QUD) - 1; i >= 0; i-- {
		q := st.Shared.QUD[i]
		data.QUD = append(data.QUD, htmlQuestion{
			Text: fmt.Sprintf("%s [%s]", q.Key(), q.Kind()),
			Top:  i == len(st.Shared.QUD)-1,
		})
	}
	for i := len(st.Private.Plans) - 1; i >= 0; i-- {
		data.Plans = appendHTMLPlan(data.Plans, st.Private.Plans[i], 0)
	}
	for _, m := range st.Shared.Moves {
		data.Moves = append(data.Moves, fmt.Sprintf("%s %s: %s", m.Speaker, m.Type, domain.ContentText(m.Content)))
	}
	return htmlTmpl.Execute(w, data)
}

func appendHTMLPlan(out []htmlPlan, p *domain.Plan, depth int) []htmlPlan {
	out = append(out, htmlPlan{
		Text:  fmt.Sprintf("%s %s", p.Type, p.Goal()),
		Depth: depth,
		Done:  p.Status != domain.PlanActive,
	})
	for _, sub := range p.Subplans {
		out = appendHTMLPlan(out, sub, depth+1)
	}
	return out
}
