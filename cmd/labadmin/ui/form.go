package ui

import (
	"fmt"
	"os"
	"strings"

	"labadmin/internal/crud"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ImageTypes are the extensions offered by the attachment picker.
var ImageTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"}

// FormAction is what the user asked the form to do.
type FormAction int

const (
	FormNone FormAction = iota
	FormSubmit
	FormCancel
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindArea
	kindOptions
	kindImage
)

type formField struct {
	spec    crud.FieldSpec
	kind    fieldKind
	input   textinput.Model
	area    textarea.Model
	options []string
	option  int
}

func (f *formField) value() string {
	switch f.kind {
	case kindArea:
		return f.area.Value()
	case kindOptions:
		if f.option < 0 || f.option >= len(f.options) {
			return ""
		}
		return f.options[f.option]
	default:
		return f.input.Value()
	}
}

func (f *formField) focus() tea.Cmd {
	switch f.kind {
	case kindArea:
		return f.area.Focus()
	case kindOptions:
		return nil
	default:
		return f.input.Focus()
	}
}

func (f *formField) blur() {
	switch f.kind {
	case kindArea:
		f.area.Blur()
	case kindOptions:
	default:
		f.input.Blur()
	}
}

// FormModel edits one draft. The image field, when the entity has one, takes
// a file path typed in or chosen with the picker.
type FormModel struct {
	title   string
	fields  []*formField
	focus   int
	picking bool
	picker  filepicker.Model
	styles  Styles
	width   int
	note    string
}

// NewFormModel builds a form for desc initialized from draft. existingImage is
// shown as a hint when editing.
func NewFormModel(title string, desc crud.Descriptor, draft crud.Draft, existingImage string, styles Styles) FormModel {
	m := FormModel{title: title, styles: styles, width: 60}
	for _, spec := range desc.Fields {
		f := &formField{spec: spec}
		value := draft.Get(spec.Name)
		switch {
		case len(spec.Options) > 0:
			f.kind = kindOptions
			// an empty choice keeps "not selected yet" distinguishable
			f.options = append([]string{""}, spec.Options...)
			for i, o := range f.options {
				if strings.EqualFold(o, value) {
					f.option = i
				}
			}
		case spec.Multiline:
			f.kind = kindArea
			ta := textarea.New()
			ta.ShowLineNumbers = false
			ta.SetWidth(m.width)
			ta.SetHeight(5)
			ta.Placeholder = spec.Label
			ta.SetValue(value)
			ta.Blur()
			f.area = ta
		default:
			f.kind = kindText
			ti := textinput.New()
			ti.Placeholder = spec.Label
			ti.Prompt = "│ "
			ti.Width = m.width
			ti.SetValue(value)
			f.input = ti
		}
		m.fields = append(m.fields, f)
	}
	if desc.Image.Enabled {
		ti := textinput.New()
		ti.Prompt = "│ "
		ti.Width = m.width
		ti.Placeholder = "path to image (ctrl+o to browse)"
		m.fields = append(m.fields, &formField{
			spec:  crud.FieldSpec{Name: crud.ImageField, Label: "Image"},
			kind:  kindImage,
			input: ti,
		})
		if existingImage != "" {
			m.note = "Current image: " + existingImage + " (leave empty to keep)"
		}
	}
	if len(m.fields) > 0 {
		m.fields[0].focus()
	}
	return m
}

// Values returns the text fields by wire name.
func (m FormModel) Values() map[string]string {
	out := make(map[string]string, len(m.fields))
	for _, f := range m.fields {
		if f.kind == kindImage {
			continue
		}
		out[f.spec.Name] = f.value()
	}
	return out
}

// ImagePath is the selected attachment path, empty when none.
func (m FormModel) ImagePath() string {
	for _, f := range m.fields {
		if f.kind == kindImage {
			return strings.TrimSpace(f.input.Value())
		}
	}
	return ""
}

// SetWidth resizes inputs.
func (m *FormModel) SetWidth(w int) {
	if w < 20 {
		w = 20
	}
	m.width = w
	for _, f := range m.fields {
		switch f.kind {
		case kindArea:
			f.area.SetWidth(w)
		case kindText, kindImage:
			f.input.Width = w
		}
	}
}

// Picking reports whether the file picker is open.
func (m FormModel) Picking() bool { return m.picking }

func (m *FormModel) move(delta int) tea.Cmd {
	if len(m.fields) == 0 {
		return nil
	}
	m.fields[m.focus].blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	return m.fields[m.focus].focus()
}

func (m *FormModel) openPicker() tea.Cmd {
	fp := filepicker.New()
	fp.AllowedTypes = ImageTypes
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}
	fp.Height = 12
	m.picker = fp
	m.picking = true
	return m.picker.Init()
}

// Update handles input. The returned action tells the page to submit or cancel.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd, FormAction) {
	if m.picking {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			m.picking = false
			return m, nil, FormNone
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		if ok, path := m.picker.DidSelectFile(msg); ok {
			m.picking = false
			for _, f := range m.fields {
				if f.kind == kindImage {
					f.input.SetValue(path)
				}
			}
		}
		return m, cmd, FormNone
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.forward(msg)
	}
	if len(m.fields) == 0 {
		if key.String() == "esc" {
			return m, nil, FormCancel
		}
		return m, nil, FormNone
	}

	current := m.fields[m.focus]
	switch key.String() {
	case "esc":
		return m, nil, FormCancel
	case "ctrl+s":
		return m, nil, FormSubmit
	case "tab", "down":
		if current.kind == kindArea && key.String() == "down" {
			break
		}
		return m, m.move(1), FormNone
	case "shift+tab", "up":
		if current.kind == kindArea && key.String() == "up" {
			break
		}
		return m, m.move(-1), FormNone
	case "enter":
		if current.kind != kindArea {
			if m.focus == len(m.fields)-1 {
				return m, nil, FormSubmit
			}
			return m, m.move(1), FormNone
		}
	case "left", "right":
		if current.kind == kindOptions {
			n := len(current.options)
			if key.String() == "right" {
				current.option = (current.option + 1) % n
			} else {
				current.option = (current.option - 1 + n) % n
			}
			return m, nil, FormNone
		}
	case "ctrl+o":
		if current.kind == kindImage {
			return m, m.openPicker(), FormNone
		}
	}
	return m.forward(msg)
}

func (m FormModel) forward(msg tea.Msg) (FormModel, tea.Cmd, FormAction) {
	if len(m.fields) == 0 {
		return m, nil, FormNone
	}
	f := m.fields[m.focus]
	var cmd tea.Cmd
	switch f.kind {
	case kindArea:
		f.area, cmd = f.area.Update(msg)
	case kindText, kindImage:
		f.input, cmd = f.input.Update(msg)
	}
	return m, cmd, FormNone
}

// View renders the form.
func (m FormModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(m.title))
	sb.WriteString("\n")

	if m.picking {
		sb.WriteString(m.styles.Subtitle.Render("Select an image (esc to go back)"))
		sb.WriteString("\n\n")
		sb.WriteString(m.picker.View())
		return sb.String()
	}

	for i, f := range m.fields {
		label := m.styles.Label
		if i == m.focus {
			label = m.styles.FocusLabel
		}
		text := f.spec.Label
		if f.spec.Required {
			text += " *"
		}
		sb.WriteString(label.Render(text))
		sb.WriteString("\n")
		switch f.kind {
		case kindArea:
			sb.WriteString(f.area.View())
		case kindOptions:
			sb.WriteString(m.renderOptions(f, i == m.focus))
		default:
			sb.WriteString(f.input.View())
		}
		sb.WriteString("\n\n")
	}
	if m.note != "" {
		sb.WriteString(m.styles.Muted.Render(m.note))
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.Footer.Render("tab next • ctrl+s save • esc cancel"))
	return sb.String()
}

func (m FormModel) renderOptions(f *formField, focused bool) string {
	parts := make([]string, 0, len(f.options)-1)
	for i, o := range f.options {
		if o == "" {
			continue
		}
		if i == f.option {
			parts = append(parts, m.styles.Selected.Render(fmt.Sprintf("(•) %s", o)))
		} else {
			parts = append(parts, m.styles.Muted.Render(fmt.Sprintf("( ) %s", o)))
		}
	}
	line := strings.Join(parts, "  ")
	if focused {
		line += m.styles.Muted.Render("  ←/→")
	}
	return line
}
