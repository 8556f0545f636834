package main

import (
	"context"
	"fmt"

	"labadmin/cmd/labadmin/ui"
	"labadmin/internal/api"
	"labadmin/internal/bootstrap"
	"labadmin/internal/crud"
	"labadmin/internal/site"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// runInteractive starts the terminal console. Notices and delete
// confirmations are shown as dialogs through the bridge.
func runInteractive(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	bridge := ui.NewBridge()
	client := api.NewClient(cfg.Backend.BaseURL, cfg.GetBackendTimeout())
	e := &env{
		client:   client,
		journal:  openJournal(),
		gate:     bridge,
		notifier: bridge,
		out:      cmd.OutOrStdout(),
	}
	defer e.Close()

	model := buildConsole(ctx, e)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console failed: %w", err)
	}
	return nil
}

// buildConsole assembles the tabs of the console on top of e.
func buildConsole(ctx context.Context, e *env) ui.AppModel {
	styles := ui.NewStyles(ui.ThemeByName(cfg.UI.Theme))

	overview := ui.NewOverviewPage(ctx, func(ctx context.Context) (*bootstrap.AppData, error) {
		return bootstrap.Init(ctx, e.client)
	}, styles)
	achievements := ui.NewAchievementsPage(ctx, newController[site.Achievement](e, site.Achievements()), styles)
	contacts := ui.NewContactsPage(ctx, newController[site.Contact](e, site.Contacts()), styles)
	research := ui.NewResearchPage(ctx, newController[site.ResearchVertical](e, site.ResearchVerticals()),
		func(id crud.Identifier) *crud.Controller[site.ResearchPerson] {
			return newController[site.ResearchPerson](e, site.ResearchPeople(id))
		}, styles)

	return ui.NewAppModel(cfg.Name, styles, overview, achievements, contacts, research)
}
