// Package tui shows two documents side by side in the terminal and lets
// the user walk and merge the regions where they differ.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/nicolagi/linemerge/internal/diff"
	"github.com/nicolagi/linemerge/internal/session"
	log "github.com/sirupsen/logrus"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	gutterWidth   = 6
	tabWidth      = 8
)

// Saver writes a document back to where it came from.
type Saver func(side session.Side, text string) error

type styles struct {
	changed lipgloss.Style
	current lipgloss.Style
	gutter  lipgloss.Style
	status  lipgloss.Style
	divider lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		changed: lipgloss.NewStyle().Background(lipgloss.Color("236")),
		current: lipgloss.NewStyle().Background(lipgloss.Color("24")).Bold(true),
		gutter:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		status:  lipgloss.NewStyle().Reverse(true),
		divider: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

type Model struct {
	sess   *session.Session
	save   Saver
	styles styles

	width  int
	height int

	message string
}

var _ tea.Model = (*Model)(nil)

func New(sess *session.Session, save Saver) *Model {
	return &Model{
		sess:   sess,
		save:   save,
		styles: defaultStyles(),
		width:  defaultWidth,
		height: defaultHeight,
	}
}

// Run takes over the terminal until the user quits.
func Run(sess *session.Session, save Saver) error {
	_, err := tea.NewProgram(New(sess, save), tea.WithAltScreen()).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		m.message = ""
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "n", "j", "down":
			m.sess.Next()
		case "p", "k", "up":
			m.sess.Prev()
		case ">", "l":
			m.merge(diff.ToRight)
		case "<", "h":
			m.merge(diff.ToLeft)
		case "w":
			m.write()
		}
	}
	return m, nil
}

func (m *Model) merge(dir diff.Direction) {
	if !m.sess.Merge(dir) {
		m.message = "nothing to merge"
	}
}

func (m *Model) write() {
	if m.save == nil {
		m.message = "nowhere to write"
		return
	}
	for _, side := range []session.Side{session.Left, session.Right} {
		if err := m.save(side, m.sess.Text(side)); err != nil {
			log.WithField("side", side).Errorf("Could not write: %v", err)
			m.message = fmt.Sprintf("could not write %v: %v", side, err)
			return
		}
	}
	m.message = "wrote both documents"
}

func (m *Model) View() string {
	rows := m.height - 1
	if rows < 1 {
		rows = 1
	}
	leftWidth := (m.width - 1) / 2
	if leftWidth < gutterWidth+1 {
		leftWidth = gutterWidth + 1
	}
	rightWidth := m.width - 1 - leftWidth
	if rightWidth < gutterWidth+1 {
		rightWidth = gutterWidth + 1
	}
	leftFocus, rightFocus, _ := m.sess.Focus()
	left := m.pane(session.Left, leftFocus, leftWidth, rows)
	right := m.pane(session.Right, rightFocus, rightWidth, rows)
	var b strings.Builder
	divider := m.styles.divider.Render("│")
	for i := 0; i < rows; i++ {
		b.WriteString(left[i])
		b.WriteString(divider)
		b.WriteString(right[i])
		b.WriteByte('\n')
	}
	b.WriteString(m.styles.status.Render(runewidth.FillRight(runewidth.Truncate(m.statusLine(), m.width, ""), m.width)))
	return b.String()
}

func (m *Model) statusLine() string {
	status := fmt.Sprintf(" %s | %s | %s", nameOr(m.sess.Name(session.Left), "left"), nameOr(m.sess.Name(session.Right), "right"), m.sess.Status())
	if r, ok := m.sess.Current(); ok {
		status += " " + r.String()
	}
	if m.message != "" {
		status += " | " + m.message
	}
	return status
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// pane renders rows lines of one document, each exactly width cells wide,
// scrolled so that the focus line sits in the upper third.
func (m *Model) pane(side session.Side, focus int, width int, rows int) []string {
	lines := m.sess.Lines(side)
	lineStyles := m.sess.LineStyles(side)
	first := focus - rows/3
	if first < 1 {
		first = 1
	}
	textWidth := width - gutterWidth
	out := make([]string, 0, rows)
	for i := 0; i < rows; i++ {
		n := first + i
		if n > len(lines) {
			out = append(out, strings.Repeat(" ", width))
			continue
		}
		mark, style := ' ', lipgloss.NewStyle()
		switch st := lineStyles[n-1]; {
		case st.Has(session.Current):
			mark, style = '>', m.styles.current
		case st.Has(session.Changed):
			mark, style = '|', m.styles.changed
		}
		gutter := fmt.Sprintf("%4d%c ", n, mark)
		text := runewidth.Truncate(expandTabs(lines[n-1]), textWidth, "")
		text = runewidth.FillRight(text, textWidth)
		out = append(out, m.styles.gutter.Render(gutter)+style.Render(text))
	}
	return out
}

func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}
