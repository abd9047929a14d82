package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type fieldKind int

const (
	textField fieldKind = iota
	choiceField
	readOnlyField
)

// choice is one selectable option; value is the id sent to the backend.
type choice struct {
	label string
	value int
}

// formField is one row of a form. Keys are the json field names so backend
// and validation errors land on the right row.
type formField struct {
	key     string
	label   string
	kind    fieldKind
	input   textinput.Model
	choices []choice
	index   int
	text    string
}

func newTextField(key, label, value string) *formField {
	in := textinput.New()
	in.Prompt = ""
	in.Width = 40
	in.SetValue(value)
	return &formField{key: key, label: label, kind: textField, input: in}
}

// newChoiceField preselects the option whose value is selected, if any.
func newChoiceField(key, label string, choices []choice, selected int) *formField {
	f := &formField{key: key, label: label, kind: choiceField, choices: choices}
	for i, c := range choices {
		if c.value == selected {
			f.index = i
			break
		}
	}
	return f
}

func newReadOnlyField(key, label, text string) *formField {
	return &formField{key: key, label: label, kind: readOnlyField, text: text}
}

func (f *formField) value() string {
	switch f.kind {
	case textField:
		return strings.TrimSpace(f.input.Value())
	case choiceField:
		if c, ok := f.selected(); ok {
			return c.label
		}
		return ""
	default:
		return f.text
	}
}

// intValue parses the field as a number. Unparseable text is zero so the
// bounds check reports it.
func (f *formField) intValue() int {
	if f.kind == choiceField {
		c, _ := f.selected()
		return c.value
	}
	n, err := strconv.Atoi(f.value())
	if err != nil {
		return 0
	}
	return n
}

func (f *formField) selected() (choice, bool) {
	if f.index < 0 || f.index >= len(f.choices) {
		return choice{}, false
	}
	return f.choices[f.index], true
}

func (f *formField) cycle(delta int) {
	if len(f.choices) == 0 {
		return
	}
	f.index = (f.index + delta + len(f.choices)) % len(f.choices)
}

type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
)

type form struct {
	title  string
	fields []*formField
	focus  int
}

func newForm(title string, fields ...*formField) *form {
	f := &form{title: title, fields: fields, focus: -1}
	f.move(1)
	return f
}

func (f *form) field(key string) *formField {
	for _, field := range f.fields {
		if field.key == key {
			return field
		}
	}
	return nil
}

func (f *form) focused() *formField {
	if f.focus < 0 || f.focus >= len(f.fields) {
		return nil
	}
	return f.fields[f.focus]
}

// move shifts focus to the next editable field in direction delta.
func (f *form) move(delta int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	if cur := f.focused(); cur != nil && cur.kind == textField {
		cur.input.Blur()
	}
	idx := f.focus
	for range f.fields {
		idx = (idx + delta + len(f.fields)) % len(f.fields)
		if f.fields[idx].kind != readOnlyField {
			f.focus = idx
			if f.fields[idx].kind == textField {
				return f.fields[idx].input.Focus()
			}
			return nil
		}
	}
	return nil
}

func (f *form) Update(msg tea.KeyMsg) (tea.Cmd, formAction) {
	switch msg.String() {
	case "enter":
		return nil, formSubmit
	case "esc":
		return nil, formCancel
	case "tab", "down":
		return f.move(1), formNone
	case "shift+tab", "up":
		return f.move(-1), formNone
	}
	cur := f.focused()
	if cur == nil {
		return nil, formNone
	}
	if cur.kind == choiceField {
		switch msg.String() {
		case "left", "h":
			cur.cycle(-1)
		case "right", "l", " ":
			cur.cycle(1)
		}
		return nil, formNone
	}
	var cmd tea.Cmd
	cur.input, cmd = cur.input.Update(msg)
	return cmd, formNone
}

// View renders the form. errs returns the message attached to a field key.
func (f *form) View(errs func(key string) string, pending bool) string {
	lines := []string{titleStyle.Render(f.title), ""}
	for i, field := range f.fields {
		label := labelStyle.Render(field.label)
		if i == f.focus {
			label = focusStyle.Render("› " + field.label)
		}
		var value string
		switch field.kind {
		case textField:
			value = field.input.View()
		case choiceField:
			if c, ok := field.selected(); ok {
				value = "‹ " + c.label + " ›"
			} else {
				value = mutedStyle.Render("(sin opciones)")
			}
		default:
			value = mutedStyle.Render(field.text)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(24).Render(label), value))
		if msg := errs(field.key); msg != "" {
			lines = append(lines, lipgloss.NewStyle().PaddingLeft(24).Render(fieldErr.Render(msg)))
		}
	}
	lines = append(lines, "")
	if pending {
		lines = append(lines, mutedStyle.Render("Enviando..."))
	} else {
		lines = append(lines, hintStyle.Render("[tab] campo · [←/→] opcion · [enter] guardar · [esc] cancelar"))
	}
	return strings.Join(lines, "\n")
}
