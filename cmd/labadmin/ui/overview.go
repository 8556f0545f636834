package ui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"labadmin/internal/bootstrap"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Loader fetches the bootstrap data shown on the overview tab.
type Loader func(ctx context.Context) (*bootstrap.AppData, error)

type overviewLoadedMsg struct {
	data *bootstrap.AppData
	err  error
}

func (overviewLoadedMsg) pageKey() string { return "overview" }

// OverviewPage shows the about text and how many entries each section holds.
type OverviewPage struct {
	ctx      context.Context
	load     Loader
	styles   Styles
	data     *bootstrap.AppData
	failed   []string
	err      error
	loading  bool
	spinner  spinner.Model
	viewport viewport.Model
	width    int
	height   int
}

// NewOverviewPage creates the overview tab.
func NewOverviewPage(ctx context.Context, load Loader, styles Styles) *OverviewPage {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner
	return &OverviewPage{
		ctx:      ctx,
		load:     load,
		styles:   styles,
		spinner:  s,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
}

func (o *OverviewPage) Title() string { return "Overview" }

func (o *OverviewPage) Editing() bool { return false }

// Data returns the last loaded data, nil before the first load.
func (o *OverviewPage) Data() *bootstrap.AppData { return o.data }

func (o *OverviewPage) SetSize(width, height int) {
	o.width, o.height = width, height
	o.viewport.Width = width
	o.viewport.Height = height - 2
	o.refresh()
}

func (o *OverviewPage) Init() tea.Cmd {
	o.loading = true
	ctx, load := o.ctx, o.load
	return tea.Batch(o.spinner.Tick, func() tea.Msg {
		data, err := load(ctx)
		return overviewLoadedMsg{data: data, err: err}
	})
}

func (o *OverviewPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewLoadedMsg:
		o.loading = false
		o.data, o.err, o.failed = msg.data, msg.err, nil
		var fe *bootstrap.FetchError
		if errors.As(msg.err, &fe) {
			o.failed = fe.Sections()
		}
		o.refresh()
		return o, nil
	case spinner.TickMsg:
		if !o.loading {
			return o, nil
		}
		var cmd tea.Cmd
		o.spinner, cmd = o.spinner.Update(msg)
		return o, cmd
	case tea.KeyMsg:
		if msg.String() == "r" && !o.loading {
			return o, o.Init()
		}
	}
	var cmd tea.Cmd
	o.viewport, cmd = o.viewport.Update(msg)
	return o, cmd
}

func (o *OverviewPage) refresh() {
	o.viewport.SetContent(o.render())
}

func (o *OverviewPage) render() string {
	if o.data == nil {
		if o.err != nil {
			return o.styles.Error.Render("Failed to load site data: " + o.err.Error())
		}
		return ""
	}

	var sb strings.Builder
	sb.WriteString(o.styles.Title.Render("Site content"))
	sb.WriteString("\n")

	counts := o.data.Counts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	table := NewSimpleTable("", []string{"Section", "Entries"})
	for _, name := range names {
		table.AddRow(strings.ReplaceAll(name, "_", " "), fmt.Sprint(counts[name]))
	}
	sb.WriteString(table.View(o.styles))

	if len(o.failed) > 0 {
		sb.WriteString("\n")
		sb.WriteString(o.styles.Warning.Render("Could not load: " + strings.Join(o.failed, ", ")))
		sb.WriteString("\n")
	}
	if !o.data.LoadedAt.IsZero() {
		sb.WriteString(o.styles.Muted.Render("Loaded " + o.data.LoadedAt.Format("2006-01-02 15:04:05")))
		sb.WriteString("\n")
	}

	if o.data.About != "" {
		sb.WriteString("\n")
		sb.WriteString(o.styles.Title.Render("About"))
		sb.WriteString("\n")
		sb.WriteString(RenderMarkdown(o.data.About, o.width-4, o.styles.Theme.IsDark))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (o *OverviewPage) View() string {
	if o.loading {
		return o.spinner.View() + " " + o.styles.Muted.Render("Loading site data...")
	}
	return o.viewport.View() + "\n" + o.styles.Footer.Render("↑/↓ scroll • r reload")
}
