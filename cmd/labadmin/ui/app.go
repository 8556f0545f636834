package ui

import (
	"strings"

	"labadmin/internal/crud"
	"labadmin/internal/logging"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// AppModel is the root model: a tab bar over the pages and a modal dialog for
// notices and delete confirmations.
type AppModel struct {
	name    string
	styles  Styles
	pages   []Page
	active  int
	dialog  DialogModel
	pending []crud.Notice
	width   int
	height  int
	logger  *zap.Logger
}

// NewAppModel creates the root model. name is shown in the header.
func NewAppModel(name string, styles Styles, pages ...Page) AppModel {
	return AppModel{
		name:   name,
		styles: styles,
		pages:  pages,
		dialog: NewDialogModel(styles),
		width:  80,
		height: 24,
		logger: logging.Get(logging.CategoryUI),
	}
}

// Active returns the index of the shown tab.
func (m AppModel) Active() int { return m.active }

// Dialog returns the dialog state.
func (m AppModel) Dialog() DialogModel { return m.dialog }

func (m AppModel) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.pages))
	for _, p := range m.pages {
		cmds = append(cmds, p.Init())
	}
	return tea.Batch(cmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for _, p := range m.pages {
			p.SetSize(msg.Width, msg.Height-4)
		}
		return m, nil

	case noticeMsg:
		m.logger.Debug("notice", zap.String("level", string(msg.notice.Level)), zap.String("message", msg.notice.Message))
		if m.dialog.Visible() {
			m.pending = append(m.pending, msg.notice)
		} else {
			m.dialog.Alert(msg.notice)
		}
		return m, nil

	case confirmRequestMsg:
		if m.dialog.Kind() == DialogConfirm {
			// only one destructive action runs at a time
			msg.reply <- false
			return m, nil
		}
		if m.dialog.Kind() == DialogAlert {
			m.pending = append([]crud.Notice{{Level: m.dialog.level, Title: m.dialog.title, Message: m.dialog.message}}, m.pending...)
		}
		m.dialog.Confirm(msg.description, msg.reply)
		return m, nil

	case pageMsg, spinner.TickMsg:
		cmds := make([]tea.Cmd, 0, len(m.pages))
		for i, p := range m.pages {
			var cmd tea.Cmd
			m.pages[i], cmd = p.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.dialog.Kind() == DialogConfirm {
				m.dialog.answer(false)
			}
			return m, tea.Quit
		}
		if m.dialog.Visible() {
			var cmd tea.Cmd
			m.dialog, cmd = m.dialog.Update(msg)
			if !m.dialog.Visible() && len(m.pending) > 0 {
				m.dialog.Alert(m.pending[0])
				m.pending = m.pending[1:]
			}
			return m, cmd
		}
		if len(m.pages) == 0 {
			return m, nil
		}
		if !m.pages[m.active].Editing() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "tab", "right", "l":
				m.active = (m.active + 1) % len(m.pages)
				return m, nil
			case "shift+tab", "left", "h":
				m.active = (m.active - 1 + len(m.pages)) % len(m.pages)
				return m, nil
			case "1", "2", "3", "4", "5", "6", "7", "8", "9":
				if i := int(msg.String()[0] - '1'); i < len(m.pages) {
					m.active = i
				}
				return m, nil
			}
		}
	}

	if len(m.pages) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.pages[m.active], cmd = m.pages[m.active].Update(msg)
	return m, cmd
}

func (m AppModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render(m.name))
	sb.WriteString(" ")
	for i, p := range m.pages {
		if i == m.active {
			sb.WriteString(m.styles.ActiveTab.Render(p.Title()))
		} else {
			sb.WriteString(m.styles.Tab.Render(p.Title()))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.RenderDivider(m.width))
	sb.WriteString("\n")

	if m.dialog.Visible() {
		sb.WriteString(lipgloss.Place(m.width, m.height-4, lipgloss.Center, lipgloss.Center, m.dialog.View()))
	} else if len(m.pages) > 0 {
		sb.WriteString(m.pages[m.active].View())
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render("tab switch • 1-9 jump • q quit"))
	return sb.String()
}
