package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

var columns = []string{"Name", "Labware", "Length", "Width", "Height", "Wells", "Volume"}

// refreshMsg carries a freshly read table.
type refreshMsg struct {
	names []string
	rows  [][]string
}

// Browser lists the registry and hosts the add form and the detail
// view of one entry.
type Browser struct {
	store   Store
	watcher *Watcher // may be nil
	names   []string
	rows    [][]string
	cursor  int
	form    *Form
	detail  string // full record of the selected entry, when shown
	err     string
	status  string
}

func NewBrowser(store Store, watcher *Watcher) Browser {
	return Browser{store: store, watcher: watcher}
}

// Rows reads one table row per registry name.
func Rows(store Store) (names []string, rows [][]string) {
	names = store.List()
	for _, name := range names {
		lw, err := store.Get(name)
		if err != nil {
			rows = append(rows, []string{name, err.Error(), "", "", "", "", ""})
			continue
		}
		p := lw.Plate()
		rows = append(rows, []string{
			name,
			lw.Name(),
			ftoa(p.Length),
			ftoa(p.Width),
			ftoa(p.Height),
			strconv.Itoa(p.WellNum),
			ftoa(p.Well.Volume),
		})
	}
	return
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (m Browser) refresh() tea.Msg {
	names, rows := Rows(m.store)
	return refreshMsg{names: names, rows: rows}
}

func (m Browser) Init() tea.Cmd {
	if m.watcher == nil {
		return m.refresh
	}
	return tea.Batch(m.refresh, m.watcher.Next())
}

func (m Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.names, m.rows = msg.names, msg.rows
		if m.cursor >= len(m.rows) {
			m.cursor = len(m.rows) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil
	case ChangedMsg:
		if m.watcher == nil {
			return m, m.refresh
		}
		return m, tea.Batch(m.refresh, m.watcher.Next())
	case WatchErrMsg:
		m.err = msg.Err.Error()
		return m, nil
	case SubmitMsg:
		m.form = nil
		err := m.store.Put(msg.Name, msg.Labware)
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.err = ""
		m.status = "added " + msg.Labware.Name()
		return m, m.refresh
	case CancelMsg:
		m.form = nil
		return m, nil
	}

	if m.form != nil {
		form, cmd := m.form.Update(msg)
		m.form = &form
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok && m.detail != "" {
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc", "enter", "q":
			m.detail = ""
		}
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "j", "down":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			return m, m.refresh
		case "enter":
			if len(m.names) == 0 {
				return m, nil
			}
			detail, err := m.describe(m.names[m.cursor])
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.err = ""
			m.detail = detail
		case "a":
			form := NewForm()
			m.form = &form
			m.status = ""
			return m, form.Init()
		case "d":
			if len(m.names) == 0 {
				return m, nil
			}
			name := m.names[m.cursor]
			err := m.store.Remove(name)
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.err = ""
			m.status = "removed " + name
			return m, m.refresh
		}
	}
	return m, nil
}

// describe renders every field of the labware filed under name.
func (m Browser) describe(name string) (string, error) {
	lw, err := m.store.Get(name)
	if err != nil {
		return "", err
	}
	buf, err := yaml.Marshal(lw.Record())
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(name))
	b.WriteString("\n")
	b.WriteString(string(buf))
	b.WriteString("id: " + lw.ID() + "\n")
	return b.String(), nil
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	cellStyle     = lipgloss.NewStyle().PaddingRight(2)
)

func (m Browser) table() string {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range m.rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	line := func(cells []string) string {
		var parts []string
		for i, cell := range cells {
			parts = append(parts, cellStyle.Width(widths[i]+2).Render(cell))
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(line(columns)))
	b.WriteString("\n")
	for i, row := range m.rows {
		l := line(row)
		if i == m.cursor {
			l = selectedStyle.Render(l)
		}
		b.WriteString(l + "\n")
	}
	return b.String()
}

func (m Browser) View() string {
	if m.form != nil {
		return m.form.View()
	}
	if m.detail != "" {
		return m.detail + "\n" + helpStyle.Render("esc back")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Labware Registry"))
	b.WriteString("\n")
	if len(m.rows) == 0 {
		b.WriteString(helpStyle.Render("no labware registered") + "\n")
	} else {
		b.WriteString(m.table())
	}
	if m.err != "" {
		b.WriteString("\n" + errStyle.Render(m.err) + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("enter info • a add • d delete • r refresh • q quit"))
	return b.String()
}
