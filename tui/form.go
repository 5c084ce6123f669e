package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	li "github.com/t7a/labindex"
)

type kind int

const (
	kindText kind = iota
	kindBool
	kindFloat
	kindInt
)

// formField is one labelled input.  key is the dotted record path;
// the registry name has no key because it is not part of the record.
type formField struct {
	key   string
	label string
	kind  kind
	input textinput.Model
}

var formLayout = []struct {
	key, label string
	kind       kind
	initial    string
}{
	{"", "Custom Name", kindText, ""},
	{"name", "Labware Name", kindText, ""},
	{"plate.sterile", "Sterile", kindBool, ""},
	{"plate.skirted", "Skirted", kindBool, ""},
	{"plate.enzyme_free", "DNase/RNase free", kindBool, ""},
	{"plate.length", "Plate Length", kindFloat, ""},
	{"plate.width", "Plate Width", kindFloat, ""},
	{"plate.height", "Plate Height", kindFloat, ""},
	{"plate.well_spacing", "Well Spacing", kindFloat, ""},
	{"plate.well_num", "Well Number", kindInt, ""},
	{"plate.composition", "Composition", kindText, li.UnknownComposition},
	{"well.volume", "Well Volume", kindFloat, ""},
	{"well.depth", "Well Depth", kindFloat, ""},
	{"well.top_diameter", "Top Diameter", kindFloat, ""},
	{"well.bottom_diameter", "Bottom Diameter", kindFloat, ""},
}

// SubmitMsg is sent when the form holds a valid record.
type SubmitMsg struct {
	Name    string // registry name; empty means the labware's own name
	Labware *li.Labware
}

// CancelMsg is sent when the user abandons the form.
type CancelMsg struct{}

// Form collects the fields of one labware type.
type Form struct {
	fields []formField
	focus  int
	err    string
}

// NewForm returns an empty form with focus on the first field.
func NewForm() Form {
	f := Form{}
	for _, l := range formLayout {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 28
		ti.SetValue(l.initial)
		if l.kind == kindBool {
			ti.Placeholder = "true/false"
		}
		f.fields = append(f.fields, formField{key: l.key, label: l.label, kind: l.kind, input: ti})
	}
	f.fields[0].input.Focus()
	return f
}

// Set fills the input for key, or the registry name when key is "".
func (f *Form) Set(key, value string) {
	for i := range f.fields {
		if f.fields[i].key == key {
			f.fields[i].input.SetValue(value)
			return
		}
	}
}

// Err returns the message from the last failed submit.
func (f Form) Err() string {
	return f.err
}

// Fields converts the inputs to a raw record.  Blank inputs are left
// out so that record construction reports them as missing.
func (f Form) Fields() (name string, fields li.Fields, err error) {
	fields = li.Fields{}
	for _, ff := range f.fields {
		raw := strings.TrimSpace(ff.input.Value())
		if ff.key == "" {
			name = raw
			continue
		}
		if raw == "" {
			continue
		}
		var v interface{}
		switch ff.kind {
		case kindText:
			v = raw
		case kindBool:
			v, err = strconv.ParseBool(raw)
		case kindFloat:
			v, err = strconv.ParseFloat(raw, 64)
		case kindInt:
			v, err = strconv.Atoi(raw)
		}
		if err != nil {
			return "", nil, &li.MalformedRecordError{
				Field:  ff.key,
				Reason: fmt.Sprintf("can't parse %q", raw),
			}
		}
		setPath(fields, ff.key, v)
	}
	return
}

func setPath(fields li.Fields, key string, v interface{}) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) == 1 {
		fields[key] = v
		return
	}
	sub, ok := fields[parts[0]].(map[string]interface{})
	if !ok {
		sub = map[string]interface{}{}
		fields[parts[0]] = sub
	}
	sub[parts[1]] = v
}

func (f Form) submit() (Form, tea.Cmd) {
	name, fields, err := f.Fields()
	if err != nil {
		f.err = err.Error()
		return f, nil
	}
	lw, err := li.FromFields(fields)
	if err != nil {
		f.err = err.Error()
		return f, nil
	}
	f.err = ""
	return f, func() tea.Msg { return SubmitMsg{Name: name, Labware: lw} }
}

func (f Form) move(delta int) Form {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Focus()
	return f
}

func (f Form) Init() tea.Cmd {
	return textinput.Blink
}

func (f Form) Update(msg tea.Msg) (Form, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return f, func() tea.Msg { return CancelMsg{} }
		case "ctrl+s":
			return f.submit()
		case "enter":
			if f.focus == len(f.fields)-1 {
				return f.submit()
			}
			return f.move(1), nil
		case "tab", "down":
			return f.move(1), nil
		case "shift+tab", "up":
			return f.move(-1), nil
		}
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Width(18)
	focusStyle = lipgloss.NewStyle().Width(18).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

func (f Form) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Add Labware"))
	b.WriteString("\n")
	for i, ff := range f.fields {
		style := labelStyle
		if i == f.focus {
			style = focusStyle
		}
		b.WriteString(style.Render(ff.label))
		b.WriteString(ff.input.View())
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString("\n" + errStyle.Render(f.err) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("tab/shift+tab move • ctrl+s save • esc cancel"))
	return b.String()
}
