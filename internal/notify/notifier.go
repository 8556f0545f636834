package notify

import (
	"fmt"
	"io"
	"sync"

	"labadmin/internal/crud"

	"github.com/charmbracelet/lipgloss"
)

// Styles colors notices by level.
type Styles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Message lipgloss.Style
}

// DefaultStyles uses adaptive colors that read on light and dark terminals.
func DefaultStyles() Styles {
	return Styles{
		Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"}),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"}),
		Warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}),
		Info:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}),
		Message: lipgloss.NewStyle(),
	}
}

// PlainStyles renders without any escape codes.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Success: s, Error: s, Warning: s, Info: s, Message: s}
}

func (s Styles) forLevel(l crud.Level) lipgloss.Style {
	switch l {
	case crud.LevelSuccess:
		return s.Success
	case crud.LevelError:
		return s.Error
	case crud.LevelWarning:
		return s.Warning
	default:
		return s.Info
	}
}

// Printer writes each notice as one "Title: message" line.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles
}

// NewPrinter creates a notifier writing to out.
func NewPrinter(out io.Writer, styles Styles) *Printer {
	return &Printer{out: out, styles: styles}
}

// Notify implements crud.Notifier.
func (p *Printer) Notify(n crud.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s\n", p.styles.forLevel(n.Level).Render(n.Title+":"), p.styles.Message.Render(n.Message))
}

// Collector keeps notices in memory.
type Collector struct {
	mu      sync.Mutex
	notices []crud.Notice
}

// Notify implements crud.Notifier.
func (c *Collector) Notify(n crud.Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

// Notices returns a copy of everything collected.
func (c *Collector) Notices() []crud.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]crud.Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

// Last returns the most recent notice.
func (c *Collector) Last() (crud.Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.notices) == 0 {
		return crud.Notice{}, false
	}
	return c.notices[len(c.notices)-1], true
}

// Fanout delivers each notice to every notifier.
type Fanout []crud.Notifier

// Notify implements crud.Notifier.
func (f Fanout) Notify(n crud.Notice) {
	for _, nt := range f {
		nt.Notify(n)
	}
}
