package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// option is one choice of a picker field.
type option struct {
	id    int64
	label string
	hint  string
}

// picker turns a text input into a filter over options.
type picker struct {
	options  []option
	selected int // index into the filtered options
}

func (p *picker) filtered(filter string) []option {
	if strings.TrimSpace(filter) == "" {
		return p.options
	}
	var out []option
	for _, o := range p.options {
		if containsFold(o.label, filter) || containsFold(o.hint, filter) {
			out = append(out, o)
		}
	}
	return out
}

func (p *picker) chosen(filter string) (option, bool) {
	opts := p.filtered(filter)
	if len(opts) == 0 {
		return option{}, false
	}
	idx := min(max(p.selected, 0), len(opts)-1)
	return opts[idx], true
}

func (p *picker) move(delta int, filter string) {
	n := len(p.filtered(filter))
	if n == 0 {
		p.selected = 0
		return
	}
	p.selected = min(max(p.selected+delta, 0), n-1)
}

type field struct {
	label  string
	input  textinput.Model
	picker *picker
}

// submitFunc validates the form values and returns the command that performs
// the operation. picks holds the chosen option id for picker fields, zero
// elsewhere.
type submitFunc func(values []string, picks []int64) (tea.Cmd, error)

// formModal is a stack of labelled text inputs. Enter advances to the next
// field and submits on the last one. Validation and server errors are shown
// inline and keep the form open.
type formModal struct {
	kind   formKind
	title  string
	fields []field
	focus  int
	err    string
	busy   bool
	submit submitFunc
}

// formKind tags forms whose picker options follow the stores.
type formKind int

const (
	formPlain formKind = iota
	formAddItem
	formProduto
)

func newFormModal(title string, submit submitFunc) *formModal {
	return &formModal{title: title, submit: submit}
}

// addField appends a text field prefilled with value.
func (f *formModal) addField(label, placeholder, value string) *formModal {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 120
	in.Width = ModalWidth - 8
	in.SetValue(value)
	if len(f.fields) == 0 {
		in.Focus()
	}
	f.fields = append(f.fields, field{label: label, input: in})
	return f
}

// addPicker appends a field that filters options. preselect picks the initial
// option by id when the filter is empty.
func (f *formModal) addPicker(label, placeholder string, options []option, preselect int64) *formModal {
	f.addField(label, placeholder, "")
	p := &picker{options: options}
	for i, o := range options {
		if o.id == preselect {
			p.selected = i
			break
		}
	}
	f.fields[len(f.fields)-1].picker = p
	return f
}

// setOptions swaps the options of the picker at idx, keeping the current
// choice when it is still offered.
func (f *formModal) setOptions(idx int, options []option) {
	if idx < 0 || idx >= len(f.fields) || f.fields[idx].picker == nil {
		return
	}
	fl := &f.fields[idx]
	prev, had := fl.picker.chosen(fl.input.Value())
	fl.picker.options = options
	fl.picker.selected = 0
	if !had {
		return
	}
	for i, o := range fl.picker.filtered(fl.input.Value()) {
		if o.id == prev.id {
			fl.picker.selected = i
			break
		}
	}
}

// fail reopens the form for editing with msg shown.
func (f *formModal) fail(msg string) {
	f.busy = false
	f.err = msg
}

func (f *formModal) setFocus(idx int) {
	if len(f.fields) == 0 {
		return
	}
	idx = (idx + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Blur()
	f.focus = idx
	f.fields[f.focus].input.Focus()
}

func (f *formModal) values() ([]string, []int64) {
	values := make([]string, len(f.fields))
	picks := make([]int64, len(f.fields))
	for i, fl := range f.fields {
		values[i] = fl.input.Value()
		if fl.picker != nil {
			if o, ok := fl.picker.chosen(values[i]); ok {
				picks[i] = o.id
			}
		}
	}
	return values, picks
}

func (f *formModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		if len(f.fields) == 0 {
			return f, nil, false
		}
		var cmd tea.Cmd
		f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
		return f, cmd, false
	}
	if key.Matches(km, keys.Cancel) {
		return f, nil, true
	}
	if f.busy {
		return f, nil, false
	}

	current := &f.fields[f.focus]
	switch {
	case key.Matches(km, keys.NextField):
		f.setFocus(f.focus + 1)
		return f, nil, false
	case key.Matches(km, keys.PrevField):
		f.setFocus(f.focus - 1)
		return f, nil, false
	case km.Type == tea.KeyUp && current.picker != nil:
		current.picker.move(-1, current.input.Value())
		return f, nil, false
	case km.Type == tea.KeyDown && current.picker != nil:
		current.picker.move(1, current.input.Value())
		return f, nil, false
	case key.Matches(km, keys.Confirm):
		if f.focus < len(f.fields)-1 {
			f.setFocus(f.focus + 1)
			return f, nil, false
		}
		values, picks := f.values()
		cmd, err := f.submit(values, picks)
		if err != nil {
			f.err = err.Error()
			return f, nil, false
		}
		f.err = ""
		f.busy = true
		return f, cmd, false
	}

	before := current.input.Value()
	var cmd tea.Cmd
	current.input, cmd = current.input.Update(msg)
	if current.picker != nil && current.input.Value() != before {
		current.picker.selected = 0
	}
	return f, cmd, false
}

func (f *formModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder

	b.WriteString(styles.AccentText.Bold(true).Render(f.title))
	b.WriteString("\n\n")

	for i, fl := range f.fields {
		label := styles.MutedText.Render(fl.label)
		if i == f.focus {
			label = styles.WarningText.Render(fl.label)
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(fl.input.View())
		b.WriteString("\n")
		if fl.picker != nil {
			b.WriteString(f.renderPicker(styles, fl, i == f.focus))
		}
		b.WriteString("\n")
	}

	switch {
	case f.busy:
		b.WriteString(styles.InfoText.Render("Salvando..."))
	case f.err != "":
		b.WriteString(styles.DangerText.Render(f.err))
	default:
		b.WriteString(styles.FaintText.Render("enter avança/salva · tab troca campo · esc cancela"))
	}
	return placeModal(theme, width, height, b.String())
}

func (f *formModal) renderPicker(styles Styles, fl field, focused bool) string {
	opts := fl.picker.filtered(fl.input.Value())
	if len(opts) == 0 {
		return styles.DangerText.Render("  nenhuma opção") + "\n"
	}
	chosen, _ := fl.picker.chosen(fl.input.Value())
	if !focused {
		return styles.SuccessText.Render("  ✓ "+chosen.label) + "\n"
	}

	sel := min(fl.picker.selected, len(opts)-1)
	start := max(0, sel-PickerRows+1)
	end := min(len(opts), start+PickerRows)

	var b strings.Builder
	for _, o := range opts[start:end] {
		line := "  " + truncate(o.label, ModalWidth-20)
		if o.hint != "" {
			line += "  " + styles.FaintText.Render(truncate(o.hint, 16))
		}
		if o.id == chosen.id {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		b.WriteString("\n")
	}
	if len(opts) > end {
		b.WriteString(styles.FaintText.Render("  …"))
		b.WriteString("\n")
	}
	return b.String()
}
