package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"labadmin/cmd/labadmin/ui"
	"labadmin/internal/crud"
	"labadmin/internal/site"

	"github.com/spf13/cobra"
)

// entitySpec describes the command group of one managed collection.
type entitySpec[T crud.Record] struct {
	Use     string
	Aliases []string
	Short   string
	// Descriptor returns the collection configuration. scope is the value of
	// ScopeFlag, empty when the collection is not scoped.
	Descriptor func(scope string) crud.Descriptor
	ScopeFlag  string
	ScopeUsage string
	Headers    []string
	Row        func(T) []string
	Empty      string
	// Detail renders one item as markdown for the show command.
	Detail func(T) string
}

// newEntityCmd builds list, add, edit, delete and show for spec.
func newEntityCmd[T crud.Record](spec entitySpec[T]) *cobra.Command {
	var scope string
	probe := spec.Descriptor("")

	group := &cobra.Command{
		Use:     spec.Use,
		Aliases: spec.Aliases,
		Short:   spec.Short,
	}
	if spec.ScopeFlag != "" {
		group.PersistentFlags().StringVar(&scope, spec.ScopeFlag, "", spec.ScopeUsage)
		_ = group.MarkPersistentFlagRequired(spec.ScopeFlag)
	}

	withController := func(cmd *cobra.Command, fn func(e *env, ctrl *crud.Controller[T]) error) error {
		e := newEnv(cmd)
		defer e.Close()
		return fn(e, newController[T](e, spec.Descriptor(scope)))
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   fmt.Sprintf("List %s", spec.Use),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			return withController(cmd, func(e *env, ctrl *crud.Controller[T]) error {
				if err := ctrl.Mount(ctx); err != nil {
					return reported(err)
				}
				items := ctrl.Store().Items()
				if len(items) == 0 {
					fmt.Fprintln(e.out, spec.Empty)
					return nil
				}
				table := ui.NewSimpleTable("", spec.Headers)
				table.MaxWidth = 60
				for _, item := range items {
					table.AddRow(spec.Row(item)...)
				}
				fmt.Fprint(e.out, table.View(ui.DefaultStyles()))
				return nil
			})
		},
	}
	group.AddCommand(listCmd)

	if probe.CanCreate() {
		var fields []string
		var image string
		addCmd := &cobra.Command{
			Use:   "add",
			Short: fmt.Sprintf("Add a %s", probe.Name),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()
				return withController(cmd, func(e *env, ctrl *crud.Controller[T]) error {
					values, att, err := parseFieldFlags(ctrl.Descriptor(), fields, image)
					if err != nil {
						return err
					}
					if err := ctrl.OpenForCreate(); err != nil {
						return err
					}
					stage(ctrl, values, att)
					return reported(ctrl.Submit(ctx))
				})
			},
		}
		addFieldFlags(addCmd, probe, &fields, &image)
		group.AddCommand(addCmd)
	}

	var editFields []string
	var editImage string
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: fmt.Sprintf("Edit a %s", probe.Name),
		Long:  "Fields not given with --field keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			return withController(cmd, func(e *env, ctrl *crud.Controller[T]) error {
				values, att, err := parseFieldFlags(ctrl.Descriptor(), editFields, editImage)
				if err != nil {
					return err
				}
				if len(values) == 0 && att == nil {
					return fmt.Errorf("nothing to change: pass --field name=value")
				}
				if err := ctrl.Mount(ctx); err != nil {
					return reported(err)
				}
				if err := ctrl.OpenForEdit(crud.Identifier(args[0])); err != nil {
					return err
				}
				stage(ctrl, values, att)
				return reported(ctrl.Submit(ctx))
			})
		},
	}
	addFieldFlags(editCmd, probe, &editFields, &editImage)
	group.AddCommand(editCmd)

	deleteCmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Delete a %s", probe.Name),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			return withController(cmd, func(e *env, ctrl *crud.Controller[T]) error {
				deleted, err := ctrl.Delete(ctx, crud.Identifier(args[0]))
				if err != nil {
					if crud.IsKind(err, crud.KindDeleteFailed) {
						return reported(err)
					}
					return err
				}
				if !deleted {
					fmt.Fprintln(e.out, "Cancelled.")
				}
				return nil
			})
		},
	}
	group.AddCommand(deleteCmd)

	if spec.Detail != nil {
		showCmd := &cobra.Command{
			Use:   "show <id>",
			Short: fmt.Sprintf("Show a %s", probe.Name),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()
				return withController(cmd, func(e *env, ctrl *crud.Controller[T]) error {
					if err := ctrl.Mount(ctx); err != nil {
						return reported(err)
					}
					item, ok := ctrl.Store().Find(crud.Identifier(args[0]))
					if !ok {
						return fmt.Errorf("%s %s: %w", probe.Name, args[0], crud.ErrNotFound)
					}
					styles := ui.NewStyles(ui.ThemeByName(cfg.UI.Theme))
					fmt.Fprintln(e.out, ui.RenderMarkdown(spec.Detail(item), 80, styles.Theme.IsDark))
					return nil
				})
			},
		}
		group.AddCommand(showCmd)
	}

	return group
}

func addFieldFlags(cmd *cobra.Command, desc crud.Descriptor, fields *[]string, image *string) {
	cmd.Flags().StringArrayVarP(fields, "field", "f", nil,
		fmt.Sprintf("Field value as name=value, @file reads the value from a file (fields: %s)", fieldNames(desc)))
	if desc.Image.Enabled {
		cmd.Flags().StringVar(image, "image", "", "Image file to upload")
	}
}

// parseFieldFlags turns name=value pairs into draft values and loads the image.
func parseFieldFlags(desc crud.Descriptor, pairs []string, image string) (map[string]string, *crud.Attachment, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid --field %q: expected name=value", pair)
		}
		name = strings.TrimSpace(name)
		if _, known := desc.Field(name); !known {
			return nil, nil, fmt.Errorf("unknown field %q for %s (fields: %s)", name, desc.Name, fieldNames(desc))
		}
		if strings.HasPrefix(value, "@") {
			data, err := os.ReadFile(value[1:])
			if err != nil {
				return nil, nil, fmt.Errorf("failed to read value of %s: %w", name, err)
			}
			value = string(data)
		}
		values[name] = value
	}

	var att *crud.Attachment
	if image != "" {
		a, err := crud.AttachmentFromFile(image)
		if err != nil {
			return nil, nil, err
		}
		att = a
	}
	return values, att, nil
}

func fieldNames(desc crud.Descriptor) string {
	names := make([]string, 0, len(desc.Fields))
	for _, f := range desc.Fields {
		names = append(names, f.Name)
	}
	return strings.Join(names, ", ")
}

func stage[T crud.Record](ctrl *crud.Controller[T], values map[string]string, att *crud.Attachment) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ctrl.UpdateField(name, values[name])
	}
	if att != nil {
		ctrl.StageAttachment(att)
	}
}

func newAchievementsCmd() *cobra.Command {
	return newEntityCmd(entitySpec[site.Achievement]{
		Use:        "achievements",
		Aliases:    []string{"achievement"},
		Short:      "Manage achievements",
		Descriptor: func(string) crud.Descriptor { return site.Achievements() },
		Headers:    []string{"ID", "Body", "Image"},
		Row: func(a site.Achievement) []string {
			return []string{a.ID.String(), a.Body, a.Image}
		},
		Empty: "No achievements found.",
	})
}

func newContactsCmd() *cobra.Command {
	return newEntityCmd(entitySpec[site.Contact]{
		Use:        "contacts",
		Aliases:    []string{"contact"},
		Short:      "Manage contacts",
		Descriptor: func(string) crud.Descriptor { return site.Contacts() },
		Headers:    []string{"ID", "Contact", "Link"},
		Row: func(c site.Contact) []string {
			v := site.RenderContact(c)
			return []string{c.ID.String(), v.Line(), v.Href}
		},
		Empty: site.EmptyContacts,
	})
}

func newResearchCmd() *cobra.Command {
	research := newEntityCmd(entitySpec[site.ResearchVertical]{
		Use:        "research",
		Aliases:    []string{"verticals"},
		Short:      "Manage research verticals",
		Descriptor: func(string) crud.Descriptor { return site.ResearchVerticals() },
		Headers:    []string{"ID", "Name", "Overview"},
		Row: func(v site.ResearchVertical) []string {
			return []string{v.ID.String(), v.Name, v.Overview}
		},
		Empty:  "No research verticals found.",
		Detail: ui.VerticalMarkdown,
	})
	research.AddCommand(newEntityCmd(entitySpec[site.ResearchPerson]{
		Use:        "people",
		Aliases:    []string{"person"},
		Short:      "Manage the people of a research vertical",
		Descriptor: func(scope string) crud.Descriptor { return site.ResearchPeople(crud.Identifier(scope)) },
		ScopeFlag:  "vertical",
		ScopeUsage: "Research vertical id (required)",
		Headers:    []string{"ID", "Name", "Category", "Description"},
		Row: func(p site.ResearchPerson) []string {
			return []string{p.ID.String(), p.Name, p.Category, p.Description}
		},
		Empty: "No people found for this vertical.",
	}))
	return research
}
