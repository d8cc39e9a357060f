package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/despensa/internal/logtail"
)

// logTailLines bounds how much of the log file the log view reads.
const logTailLines = 300

// logModal shows the end of the application log, newest last.
type logModal struct {
	path    string
	entries []logtail.Entry
	err     string
	offset  int // lines scrolled up from the bottom
}

func newLogModal(path string) *logModal {
	l := &logModal{path: path}
	l.reload()
	return l
}

func (l *logModal) reload() {
	l.offset = 0
	if strings.TrimSpace(l.path) == "" {
		l.entries, l.err = nil, "Registro desativado (log_file vazio)"
		return
	}
	entries, err := logtail.Tail(l.path, logTailLines)
	if err != nil {
		l.entries, l.err = nil, err.Error()
		return
	}
	l.entries, l.err = entries, ""
}

func (l *logModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil, false
	}
	switch {
	case key.Matches(km, keys.Cancel), key.Matches(km, keys.ShowLog), key.Matches(km, keys.Quit):
		return l, nil, true
	case key.Matches(km, keys.Retry):
		l.reload()
	case key.Matches(km, keys.Up):
		l.offset = min(l.offset+1, max(len(l.entries)-1, 0))
	case key.Matches(km, keys.Down):
		l.offset = max(l.offset-1, 0)
	case key.Matches(km, keys.Top):
		l.offset = max(len(l.entries)-1, 0)
	case key.Matches(km, keys.Bottom):
		l.offset = 0
	}
	return l, nil, false
}

func (l *logModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Registro"))
	b.WriteString("  ")
	b.WriteString(styles.FaintText.Render(truncate(l.path, 60)))
	b.WriteString("\n\n")

	rows := max(height-8, 3)
	lineWidth := max(width-10, 20)
	switch {
	case l.err != "":
		b.WriteString(styles.DangerText.Render(l.err))
	case len(l.entries) == 0:
		b.WriteString(styles.MutedText.Render("Nenhum registro ainda."))
	default:
		end := len(l.entries) - l.offset
		start := max(end-rows, 0)
		lines := make([]string, 0, end-start)
		for _, e := range l.entries[start:end] {
			lines = append(lines, renderLogEntry(styles, e, lineWidth))
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("j/k rola · r recarrega · esc fecha"))

	box := styles.Modal.Width(max(width-4, 20)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func renderLogEntry(styles Styles, e logtail.Entry, width int) string {
	if e.Level == "" {
		return styles.MutedText.Render(truncate(e.Raw, width))
	}
	levelStyle := styles.InfoText
	switch e.Level {
	case "ERROR":
		levelStyle = styles.DangerText
	case "WARN":
		levelStyle = styles.WarningText
	case "DEBUG":
		levelStyle = styles.FaintText
	}
	stamp := "--:--:--"
	if !e.Time.IsZero() {
		stamp = e.Time.Local().Format("15:04:05")
	}
	rest := truncate(e.Message+" "+e.AttrString(), max(width-16, 10))
	return styles.FaintText.Render(stamp) + " " +
		levelStyle.Render(padRight(e.Level, 5)) + " " +
		styles.Text.Render(rest)
}
