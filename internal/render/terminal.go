// Package render draws the popup on a terminal with lipgloss and encodes
// result lists as JSON or YAML for scripting.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/dsbrowser/internal/models"
	"github.com/dmitrijs2005/dsbrowser/internal/ui"
)

const (
	createdDateLayout = "2006/1/2"
	noResultsText     = "No data sources found"
	certifiedText     = "✓ Certified"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	certifiedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)

	severityStyles = map[ui.Severity]lipgloss.Style{
		ui.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		ui.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		ui.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

// Terminal is a ui.View that appends to a writer. A scrolling terminal can
// not take back what it printed, so clearing the status line and hiding the
// results only change what Visible reports.
type Terminal struct {
	mu             sync.Mutex
	out            io.Writer
	connectEnabled bool
	statusVisible  bool
	resultsVisible bool
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out, connectEnabled: true}
}

func (t *Terminal) SetForm(f models.Form) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, FormatForm(f))
}

func (t *Terminal) ShowNotification(n ui.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusVisible = true
	fmt.Fprintln(t.out, FormatNotification(n))
}

func (t *Terminal) ClearNotification() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusVisible = false
}

func (t *Terminal) SetConnectEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connectEnabled = enabled
}

func (t *Terminal) ShowDataSources(sources []models.DataSource) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resultsVisible = true
	fmt.Fprintln(t.out, FormatDataSources(sources))
}

func (t *Terminal) HideResults() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resultsVisible = false
}

// Visible reports whether the status line and the results section are
// currently shown, and whether connect is enabled.
func (t *Terminal) Visible() (status, results, connectEnabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusVisible, t.resultsVisible, t.connectEnabled
}

// FormatNotification renders a status message with its severity colour.
func FormatNotification(n ui.Notification) string {
	style, ok := severityStyles[n.Severity]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return style.Render(fmt.Sprintf("[%s] %s", n.Severity, n.Text))
}

// FormatForm renders the form; the token secret is masked.
func FormatForm(f models.Form) string {
	secret := "(not set)"
	if f.TokenSecret != "" {
		secret = "********"
	}
	rows := [][2]string{
		{"Server URL", f.ServerURL},
		{"Site name", f.SiteName},
		{"Token name", f.TokenName},
		{"Token secret", secret},
	}

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-13s", r[0]+":")))
		b.WriteByte(' ')
		b.WriteString(r[1])
	}
	return b.String()
}

// FormatDataSources renders the results section, or a placeholder for an
// empty list.
func FormatDataSources(sources []models.DataSource) string {
	if len(sources) == 0 {
		return placeholderStyle.Render(noResultsText)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Data sources (%d)", len(sources))))
	for _, ds := range sources {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(FormatDataSource(ds), "\n"))
	}
	return b.String()
}

// FormatDataSource renders one item: the name, then only the optional
// attributes the record actually has.
func FormatDataSource(ds models.DataSource) []string {
	lines := []string{nameStyle.Render(ds.DisplayName())}

	if ds.Type != nil {
		lines = append(lines, "  "+typeStyle.Render(*ds.Type))
	}
	if ds.ProjectName != nil {
		lines = append(lines, "  "+labelStyle.Render("Project:")+" "+*ds.ProjectName)
	}
	if ds.OwnerName != nil {
		lines = append(lines, "  "+labelStyle.Render("Owner:")+" "+*ds.OwnerName)
	}
	if ds.CreatedAt != nil {
		lines = append(lines, "  "+labelStyle.Render("Created:")+" "+ds.CreatedAt.Local().Format(createdDateLayout))
	}
	if ds.IsCertified {
		lines = append(lines, "  "+certifiedStyle.Render(certifiedText))
	}
	return lines
}
