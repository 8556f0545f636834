package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// NoSelection renders a table without a highlighted row.
const NoSelection = -1

// SimpleTable renders static rows with a header, used by list pages and the
// CLI list commands.
type SimpleTable struct {
	Title    string
	Headers  []string
	Rows     [][]string
	MaxWidth int // per column, 0 = unlimited
}

// NewSimpleTable creates a new SimpleTable with the given title and headers.
func NewSimpleTable(title string, headers []string) *SimpleTable {
	return &SimpleTable{
		Title:   title,
		Headers: headers,
		Rows:    make([][]string, 0),
	}
}

// AddRow adds a row to the table.
func (t *SimpleTable) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// View renders the table using the provided styles.
func (t *SimpleTable) View(styles Styles) string {
	return t.ViewSelected(styles, NoSelection)
}

// ViewSelected renders the table highlighting row selected.
func (t *SimpleTable) ViewSelected(styles Styles, selected int) string {
	if len(t.Rows) == 0 {
		return ""
	}

	var sb strings.Builder

	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	colWidths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(colWidths) {
				if w := lipgloss.Width(t.clip(cell)); w > colWidths[i] {
					colWidths[i] = w
				}
			}
		}
	}
	// lipgloss Width includes padding
	for i := range colWidths {
		colWidths[i] += 2
	}

	headerStyle := styles.Bold.Padding(0, 1)
	rowStyle := styles.Body.Padding(0, 1)
	selStyle := styles.Selected.Padding(0, 1)
	sepStyle := styles.Muted

	for i, h := range t.Headers {
		sb.WriteString(headerStyle.Width(colWidths[i]).Render(h))
		if i < len(t.Headers)-1 {
			sb.WriteString(sepStyle.Render("|"))
		}
	}
	sb.WriteString("\n")

	totalWidth := len(t.Headers) - 1
	for _, w := range colWidths {
		totalWidth += w
	}
	sb.WriteString(sepStyle.Render(strings.Repeat("-", totalWidth)) + "\n")

	for r, row := range t.Rows {
		style := rowStyle
		if r == selected {
			style = selStyle
		}
		for i, cell := range row {
			if i >= len(colWidths) {
				break
			}
			sb.WriteString(style.Width(colWidths[i]).Render(t.clip(cell)))
			if i < len(row)-1 && i < len(colWidths)-1 {
				sb.WriteString(sepStyle.Render("|"))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (t *SimpleTable) clip(cell string) string {
	cell = strings.ReplaceAll(cell, "\n", " ")
	if t.MaxWidth > 0 {
		return truncate(cell, t.MaxWidth)
	}
	return cell
}

func truncate(s string, l int) string {
	r := []rune(s)
	if len(r) <= l {
		return s
	}
	if l <= 3 {
		return string(r[:l])
	}
	return string(r[:l-3]) + "..."
}
