package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"labadmin/internal/crud"
	"labadmin/internal/logging"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

// Page is one tab of the console.
type Page interface {
	Title() string
	Init() tea.Cmd
	Update(msg tea.Msg) (Page, tea.Cmd)
	View() string
	SetSize(width, height int)
	// Editing reports whether the page owns the keyboard (form, detail or
	// sub-page open), so global keys such as tab and q are passed through.
	Editing() bool
}

// pageMsg is an async result addressed to one page.
type pageMsg interface {
	pageKey() string
}

type loadedMsg struct {
	key string
	err error
}

func (m loadedMsg) pageKey() string { return m.key }

type submitDoneMsg struct {
	key string
	err error
}

func (m submitDoneMsg) pageKey() string { return m.key }

type deleteDoneMsg struct {
	key     string
	deleted bool
	err     error
}

func (m deleteDoneMsg) pageKey() string { return m.key }

// PageConfig adapts the generic list page to one entity type.
type PageConfig[T crud.Record] struct {
	Key     string
	Title   string
	Headers []string
	Row     func(T) []string
	Empty   string
	// Detail renders the selected item as markdown for the 'v' view.
	Detail func(T) string
	// Extra binds additional keys to the selected item.
	Extra     map[string]func(T) tea.Cmd
	ExtraHelp string
}

// EntityPage lists one collection and drives its controller: a add, e edit,
// d delete, r reload, v view.
type EntityPage[T crud.Record] struct {
	cfg     PageConfig[T]
	ctrl    *crud.Controller[T]
	ctx     context.Context
	styles  Styles
	logger  *zap.Logger
	cursor  int
	form    *FormModel
	detail  *viewport.Model
	busy    bool
	status  string
	spinner spinner.Model
	width   int
	height  int
}

// NewEntityPage creates a page for ctrl. Controller work runs on ctx.
func NewEntityPage[T crud.Record](ctx context.Context, cfg PageConfig[T], ctrl *crud.Controller[T], styles Styles) *EntityPage[T] {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner
	if cfg.Empty == "" {
		cfg.Empty = fmt.Sprintf("No %ss found.", ctrl.Descriptor().Name)
	}
	return &EntityPage[T]{
		cfg:     cfg,
		ctrl:    ctrl,
		ctx:     ctx,
		styles:  styles,
		logger:  logging.Get(logging.CategoryUI).With(zap.String("page", cfg.Key)),
		spinner: s,
		width:   80,
		height:  24,
	}
}

func (p *EntityPage[T]) Title() string { return p.cfg.Title }

// Controller returns the driven controller.
func (p *EntityPage[T]) Controller() *crud.Controller[T] { return p.ctrl }

// Busy reports whether a load, submit or delete is in flight.
func (p *EntityPage[T]) Busy() bool { return p.busy }

// Cursor is the selected row.
func (p *EntityPage[T]) Cursor() int { return p.cursor }

// Status is the last inline message.
func (p *EntityPage[T]) Status() string { return p.status }

func (p *EntityPage[T]) Editing() bool { return p.form != nil || p.detail != nil }

func (p *EntityPage[T]) SetSize(width, height int) {
	p.width, p.height = width, height
	if p.form != nil {
		p.form.SetWidth(width - 8)
	}
	if p.detail != nil {
		p.detail.Width = width
		p.detail.Height = height - 4
	}
}

func (p *EntityPage[T]) Init() tea.Cmd {
	p.busy = true
	ctrl, key, ctx := p.ctrl, p.cfg.Key, p.ctx
	return tea.Batch(p.spinner.Tick, func() tea.Msg {
		return loadedMsg{key: key, err: ctrl.Mount(ctx)}
	})
}

func (p *EntityPage[T]) reload() tea.Cmd {
	p.busy = true
	p.status = ""
	ctrl, key, ctx := p.ctrl, p.cfg.Key, p.ctx
	return tea.Batch(p.spinner.Tick, func() tea.Msg {
		return loadedMsg{key: key, err: ctrl.Reload(ctx)}
	})
}

func (p *EntityPage[T]) selected() (T, bool) {
	items := p.ctrl.Store().Items()
	if p.cursor < 0 || p.cursor >= len(items) {
		var zero T
		return zero, false
	}
	return items[p.cursor], true
}

func (p *EntityPage[T]) clampCursor() {
	n := p.ctrl.Store().Len()
	if p.cursor >= n {
		p.cursor = n - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *EntityPage[T]) Update(msg tea.Msg) (Page, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.busy {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case loadedMsg:
		if msg.key != p.cfg.Key {
			return p, nil
		}
		p.busy = false
		p.clampCursor()
		if msg.err != nil {
			p.status = msg.err.Error()
			var ce *crud.Error
			if errors.As(msg.err, &ce) {
				p.status = ce.Message()
			}
		}
		return p, nil

	case submitDoneMsg:
		if msg.key != p.cfg.Key {
			return p, nil
		}
		p.busy = false
		p.clampCursor()
		switch {
		case msg.err == nil:
			p.form = nil
		case errors.Is(msg.err, crud.ErrSessionClosed), errors.Is(msg.err, crud.ErrSubmitInFlight):
			p.status = msg.err.Error()
		}
		return p, nil

	case deleteDoneMsg:
		if msg.key != p.cfg.Key {
			return p, nil
		}
		p.busy = false
		p.clampCursor()
		if msg.err != nil && !crud.IsKind(msg.err, crud.KindDeleteFailed) {
			p.status = msg.err.Error()
		}
		return p, nil
	}

	if p.detail != nil {
		return p.updateDetail(msg)
	}
	if p.form != nil {
		return p.updateForm(msg)
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok || p.busy {
		return p, nil
	}

	n := p.ctrl.Store().Len()
	switch key.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < n-1 {
			p.cursor++
		}
	case "home", "g":
		p.cursor = 0
	case "end", "G":
		if n > 0 {
			p.cursor = n - 1
		}
	case "r":
		return p, p.reload()
	case "a":
		if err := p.ctrl.OpenForCreate(); err != nil {
			p.status = fmt.Sprintf("%s entries cannot be added here", p.ctrl.Descriptor().Title)
			return p, nil
		}
		return p, p.openForm("Add " + p.ctrl.Descriptor().Title)
	case "e", "enter":
		item, ok := p.selected()
		if !ok {
			return p, nil
		}
		if err := p.ctrl.OpenForEdit(item.RecordID()); err != nil {
			p.status = err.Error()
			return p, nil
		}
		return p, p.openForm("Edit " + p.ctrl.Descriptor().Title)
	case "d", "delete":
		item, ok := p.selected()
		if !ok {
			return p, nil
		}
		p.busy = true
		p.status = ""
		ctrl, k, ctx, id := p.ctrl, p.cfg.Key, p.ctx, item.RecordID()
		return p, tea.Batch(p.spinner.Tick, func() tea.Msg {
			deleted, err := ctrl.Delete(ctx, id)
			return deleteDoneMsg{key: k, deleted: deleted, err: err}
		})
	case "v":
		item, ok := p.selected()
		if !ok || p.cfg.Detail == nil {
			return p, nil
		}
		p.openDetail(p.cfg.Detail(item))
	default:
		if fn, ok := p.cfg.Extra[key.String()]; ok {
			if item, ok := p.selected(); ok {
				return p, fn(item)
			}
		}
	}
	return p, nil
}

func (p *EntityPage[T]) openForm(title string) tea.Cmd {
	s := p.ctrl.Session()
	form := NewFormModel(title, p.ctrl.Descriptor(), s.Draft(), s.ExistingImage(), p.styles)
	form.SetWidth(p.width - 8)
	p.form = &form
	p.status = ""
	return nil
}

func (p *EntityPage[T]) updateForm(msg tea.Msg) (Page, tea.Cmd) {
	if p.busy {
		// keep the spinner and picker alive, drop edits
		if _, ok := msg.(tea.KeyMsg); ok {
			return p, nil
		}
	}
	form, cmd, action := p.form.Update(msg)
	p.form = &form
	switch action {
	case FormCancel:
		p.ctrl.Cancel()
		p.form = nil
		p.status = ""
		return p, nil
	case FormSubmit:
		return p, p.submit()
	}
	return p, cmd
}

func (p *EntityPage[T]) submit() tea.Cmd {
	for name, value := range p.form.Values() {
		p.ctrl.UpdateField(name, value)
	}
	// an empty path unstages an earlier pick
	var att *crud.Attachment
	if path := p.form.ImagePath(); path != "" {
		a, err := crud.AttachmentFromFile(path)
		if err != nil {
			p.status = err.Error()
			return nil
		}
		att = a
	}
	p.ctrl.StageAttachment(att)
	p.busy = true
	p.status = ""
	ctrl, key, ctx := p.ctrl, p.cfg.Key, p.ctx
	p.logger.Debug("submitting", zap.String("mode", ctrl.Session().Mode().String()))
	return tea.Batch(p.spinner.Tick, func() tea.Msg {
		return submitDoneMsg{key: key, err: ctrl.Submit(ctx)}
	})
}

func (p *EntityPage[T]) openDetail(markdown string) {
	vp := viewport.New(p.width, p.height-4)
	vp.SetContent(RenderMarkdown(markdown, p.width-4, p.styles.Theme.IsDark))
	p.detail = &vp
}

func (p *EntityPage[T]) updateDetail(msg tea.Msg) (Page, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q", "v":
			p.detail = nil
			return p, nil
		}
	}
	vp, cmd := p.detail.Update(msg)
	p.detail = &vp
	return p, cmd
}

func (p *EntityPage[T]) View() string {
	if p.detail != nil {
		return p.detail.View() + "\n" + p.styles.Footer.Render("↑/↓ scroll • esc back")
	}

	var sb strings.Builder
	if p.form != nil {
		sb.WriteString(p.form.View())
	} else {
		sb.WriteString(p.listView())
	}
	sb.WriteString("\n")
	if p.busy {
		sb.WriteString(p.spinner.View() + " " + p.styles.Muted.Render("Working..."))
		sb.WriteString("\n")
	}
	if p.status != "" {
		sb.WriteString(p.styles.Warning.Render(p.status))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (p *EntityPage[T]) listView() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render(p.cfg.Title))
	sb.WriteString("\n")

	items := p.ctrl.Store().Items()
	if len(items) == 0 {
		if p.ctrl.Store().Loaded() {
			sb.WriteString(p.styles.Muted.Render(p.cfg.Empty))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(p.styles.Footer.Render(p.help()))
		return sb.String()
	}

	// window the rows around the cursor
	rows := p.height - 8
	if rows < 3 {
		rows = 3
	}
	start := 0
	if p.cursor >= rows {
		start = p.cursor - rows + 1
	}
	end := start + rows
	if end > len(items) {
		end = len(items)
	}

	table := NewSimpleTable("", p.cfg.Headers)
	table.MaxWidth = maxCell(p.width, len(p.cfg.Headers))
	for _, item := range items[start:end] {
		table.AddRow(p.cfg.Row(item)...)
	}
	sb.WriteString(table.ViewSelected(p.styles, p.cursor-start))
	if len(items) > rows {
		sb.WriteString(p.styles.Muted.Render(fmt.Sprintf("%d-%d of %d", start+1, end, len(items))))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(p.styles.Footer.Render(p.help()))
	return sb.String()
}

func (p *EntityPage[T]) help() string {
	parts := []string{"↑/↓ select"}
	if p.ctrl.Descriptor().CanCreate() {
		parts = append(parts, "a add")
	}
	parts = append(parts, "e edit", "d delete", "r reload")
	if p.cfg.Detail != nil {
		parts = append(parts, "v view")
	}
	if p.cfg.ExtraHelp != "" {
		parts = append(parts, p.cfg.ExtraHelp)
	}
	return strings.Join(parts, " • ")
}

func maxCell(width, cols int) int {
	if cols == 0 || width <= 0 {
		return 0
	}
	w := (width - 8) / cols
	if w < 8 {
		w = 8
	}
	return w
}

// RenderMarkdown renders md with glamour, falling back to the raw text.
func RenderMarkdown(md string, width int, dark bool) string {
	if width < 20 {
		width = 20
	}
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
