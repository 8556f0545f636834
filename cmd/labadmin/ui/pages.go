package ui

import (
	"context"
	"fmt"
	"strings"

	"labadmin/internal/crud"
	"labadmin/internal/site"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// NewAchievementsPage lists achievements with their image reference.
func NewAchievementsPage(ctx context.Context, ctrl *crud.Controller[site.Achievement], styles Styles) *EntityPage[site.Achievement] {
	return NewEntityPage(ctx, PageConfig[site.Achievement]{
		Key:     "achievements",
		Title:   "Achievements",
		Headers: []string{"ID", "Body", "Image"},
		Row: func(a site.Achievement) []string {
			return []string{a.ID.String(), a.Body, a.Image}
		},
		Detail: func(a site.Achievement) string {
			md := a.Body
			if a.Image != "" {
				md += "\n\n![image](" + a.Image + ")"
			}
			return md
		},
	}, ctrl, styles)
}

// NewContactsPage lists contacts in their display form.
func NewContactsPage(ctx context.Context, ctrl *crud.Controller[site.Contact], styles Styles) *EntityPage[site.Contact] {
	return NewEntityPage(ctx, PageConfig[site.Contact]{
		Key:     "contacts",
		Title:   "Contacts",
		Headers: []string{"ID", "Type", "Contact", "Link"},
		Row: func(c site.Contact) []string {
			v := site.RenderContact(c)
			return []string{c.ID.String(), c.Type, v.Line(), v.Href}
		},
		Empty: site.EmptyContacts,
	}, ctrl, styles)
}

// openPeopleMsg asks the research page to show the people of one vertical.
type openPeopleMsg struct {
	vertical site.ResearchVertical
}

// VerticalMarkdown is the detail view of a research vertical.
func VerticalMarkdown(v site.ResearchVertical) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", v.Name)
	if v.Overview != "" {
		sb.WriteString("## Overview\n\n")
		sb.WriteString(v.Overview)
		sb.WriteString("\n\n")
	}
	if v.KeyObjectives != "" {
		sb.WriteString("## Key Objectives\n\n")
		sb.WriteString(v.KeyObjectives)
		sb.WriteString("\n")
	}
	return sb.String()
}

// PeopleFactory builds the controller for the people of one vertical.
type PeopleFactory func(verticalID crud.Identifier) *crud.Controller[site.ResearchPerson]

// ResearchPage lists research verticals and opens the people of the selected
// vertical as a sub-page.
type ResearchPage struct {
	ctx       context.Context
	styles    Styles
	verticals *EntityPage[site.ResearchVertical]
	people    *EntityPage[site.ResearchPerson]
	vertical  site.ResearchVertical
	newPeople PeopleFactory
	width     int
	height    int
}

// NewResearchPage creates the research tab.
func NewResearchPage(ctx context.Context, ctrl *crud.Controller[site.ResearchVertical], people PeopleFactory, styles Styles) *ResearchPage {
	verticals := NewEntityPage(ctx, PageConfig[site.ResearchVertical]{
		Key:     "research",
		Title:   "Research Verticals",
		Headers: []string{"ID", "Name", "Overview"},
		Row: func(v site.ResearchVertical) []string {
			return []string{v.ID.String(), v.Name, v.Overview}
		},
		Detail: VerticalMarkdown,
		Extra: map[string]func(site.ResearchVertical) tea.Cmd{
			"p": func(v site.ResearchVertical) tea.Cmd {
				return func() tea.Msg { return openPeopleMsg{vertical: v} }
			},
		},
		ExtraHelp: "p people",
	}, ctrl, styles)
	return &ResearchPage{
		ctx:       ctx,
		styles:    styles,
		verticals: verticals,
		newPeople: people,
		width:     80,
		height:    24,
	}
}

func (r *ResearchPage) Title() string { return "Research" }

func (r *ResearchPage) Init() tea.Cmd { return r.verticals.Init() }

// People returns the open people sub-page, nil when none.
func (r *ResearchPage) People() *EntityPage[site.ResearchPerson] { return r.people }

func (r *ResearchPage) Editing() bool {
	return r.people != nil || r.verticals.Editing()
}

func (r *ResearchPage) SetSize(width, height int) {
	r.width, r.height = width, height
	r.verticals.SetSize(width, height)
	if r.people != nil {
		r.people.SetSize(width, height-2)
	}
}

func (r *ResearchPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	switch msg := msg.(type) {
	case openPeopleMsg:
		r.vertical = msg.vertical
		r.people = NewEntityPage(r.ctx, PageConfig[site.ResearchPerson]{
			Key:     "people/" + msg.vertical.ID.String(),
			Title:   "People · " + msg.vertical.Name,
			Headers: []string{"ID", "Name", "Category", "Description"},
			Row: func(p site.ResearchPerson) []string {
				return []string{p.ID.String(), p.Name, p.Category, p.Description}
			},
			Detail: func(p site.ResearchPerson) string {
				md := fmt.Sprintf("# %s\n\n*%s*\n\n%s", p.Name, p.Category, p.Description)
				if p.Image != "" {
					md += "\n\n![photo](" + p.Image + ")"
				}
				return md
			},
			Empty:     "No people found for this vertical.",
			ExtraHelp: "esc back",
		}, r.newPeople(msg.vertical.ID), r.styles)
		r.people.SetSize(r.width, r.height-2)
		return r, r.people.Init()

	case pageMsg, spinner.TickMsg:
		var cmds []tea.Cmd
		_, cmd := r.verticals.Update(msg)
		cmds = append(cmds, cmd)
		if r.people != nil {
			_, cmd = r.people.Update(msg)
			cmds = append(cmds, cmd)
		}
		return r, tea.Batch(cmds...)
	}

	if r.people != nil {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" && !r.people.Editing() && !r.people.Busy() {
			r.people = nil
			return r, nil
		}
		_, cmd := r.people.Update(msg)
		return r, cmd
	}
	_, cmd := r.verticals.Update(msg)
	return r, cmd
}

func (r *ResearchPage) View() string {
	if r.people != nil {
		crumb := r.styles.Muted.Render("Research › " + r.vertical.Name)
		return crumb + "\n" + r.people.View()
	}
	return r.verticals.View()
}
