package ui

import (
	"strings"

	"labadmin/internal/crud"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DialogKind distinguishes alerts from confirmations.
type DialogKind int

const (
	DialogNone DialogKind = iota
	DialogAlert
	DialogConfirm
)

// DialogModel is a modal alert or yes/no confirmation.
type DialogModel struct {
	kind    DialogKind
	level   crud.Level
	title   string
	message string
	yes     bool // confirm: focused button
	reply   chan<- bool
	styles  Styles
}

// NewDialogModel returns a hidden dialog.
func NewDialogModel(styles Styles) DialogModel {
	return DialogModel{styles: styles}
}

// Alert shows a notice until dismissed.
func (d *DialogModel) Alert(n crud.Notice) {
	d.kind = DialogAlert
	d.level = n.Level
	d.title = n.Title
	d.message = n.Message
	d.reply = nil
}

// Confirm shows a yes/no question. Cancel is focused.
func (d *DialogModel) Confirm(description string, reply chan<- bool) {
	d.kind = DialogConfirm
	d.level = crud.LevelWarning
	d.title = "Are you sure?"
	d.message = description
	d.yes = false
	d.reply = reply
}

// Visible reports whether the dialog is shown.
func (d DialogModel) Visible() bool { return d.kind != DialogNone }

// Kind returns the dialog kind.
func (d DialogModel) Kind() DialogKind { return d.kind }

// Title returns the heading.
func (d DialogModel) Title() string { return d.title }

// Message returns the body text.
func (d DialogModel) Message() string { return d.message }

func (d *DialogModel) answer(ok bool) {
	if d.reply != nil {
		d.reply <- ok
	}
	d.kind = DialogNone
	d.reply = nil
}

// Update handles keys while the dialog is visible.
func (d DialogModel) Update(msg tea.Msg) (DialogModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !d.Visible() {
		return d, nil
	}

	if d.kind == DialogAlert {
		switch key.String() {
		case "enter", "esc", " ", "q":
			d.kind = DialogNone
		}
		return d, nil
	}

	switch key.String() {
	case "y", "Y":
		d.answer(true)
	case "n", "N", "esc":
		d.answer(false)
	case "left", "right", "tab", "shift+tab", "h", "l":
		d.yes = !d.yes
	case "enter":
		d.answer(d.yes)
	}
	return d, nil
}

// View renders the dialog box.
func (d DialogModel) View() string {
	if !d.Visible() {
		return ""
	}
	var title lipgloss.Style
	switch d.level {
	case crud.LevelSuccess:
		title = d.styles.Success
	case crud.LevelError:
		title = d.styles.Error
	case crud.LevelWarning:
		title = d.styles.Warning
	default:
		title = d.styles.Info
	}

	var sb strings.Builder
	sb.WriteString(title.Render(d.title))
	sb.WriteString("\n\n")
	sb.WriteString(d.styles.Body.Render(d.message))
	sb.WriteString("\n\n")

	if d.kind == DialogConfirm {
		yes, no := d.styles.Muted.Render("[ Yes, delete it! ]"), d.styles.Bold.Render("[ Cancel ]")
		if d.yes {
			yes, no = d.styles.Error.Render("[ Yes, delete it! ]"), d.styles.Muted.Render("[ Cancel ]")
		}
		sb.WriteString(yes + "  " + no)
		sb.WriteString("\n")
		sb.WriteString(d.styles.Muted.Render("y/n • ←/→ to choose • enter to confirm"))
	} else {
		sb.WriteString(d.styles.Muted.Render("enter to dismiss"))
	}
	return d.styles.Dialog.Render(sb.String())
}
