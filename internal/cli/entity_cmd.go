package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/atelier/internal/cli/formatter"
	"github.com/alexanderramin/atelier/internal/domain"
	"github.com/alexanderramin/atelier/internal/service"
	"github.com/spf13/cobra"
)

// newEntityCmd builds the "client", "instrument" or "note" command group.
// Every subcommand goes through a service.ListModel scoped the same way the
// TUI scopes its screens.
func newEntityCmd(app *App, kind domain.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: "Manage " + kind.Plural(),
	}

	cmd.AddCommand(
		newEntityAddCmd(app, kind),
		newEntityListCmd(app, kind),
		newEntityRemoveCmd(app, kind),
	)
	if kind == domain.KindNote {
		cmd.AddCommand(newNoteEditCmd(app))
	}
	return cmd
}

// parentFlag registers the required --client / --instrument flag for kinds
// that have a parent.
func parentFlag(cmd *cobra.Command, kind domain.Kind, target *string) {
	parent, ok := kind.Parent()
	if !ok {
		return
	}
	cmd.Flags().StringVar(target, string(parent), "", "ID of the owning "+string(parent))
	_ = cmd.MarkFlagRequired(string(parent))
}

func textArg(kind domain.Kind) string {
	if kind == domain.KindNote {
		return "TEXT"
	}
	return "NAME"
}

func newEntityAddCmd(app *App, kind domain.Kind) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "add " + textArg(kind),
		Short: "Add a " + string(kind),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := service.NewListModel(app.Entities, kind, parentID, app.Observer)
			m.SetInput(strings.Join(args, " "))
			e, err := m.Add(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s %q %s\n",
				formatter.StyleGreen.Render("✔"), kind, e.Text, formatter.Dim("(id "+e.ID+")"))
			return nil
		},
	}
	parentFlag(cmd, kind, &parentID)
	return cmd
}

func newEntityListCmd(app *App, kind domain.Kind) *cobra.Command {
	var parentID, query string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List " + kind.Plural() + ", newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := service.NewListModel(app.Entities, kind, parentID, app.Observer)
			if err := m.Load(cmd.Context()); err != nil {
				return err
			}
			if query != "" {
				m.SetQuery(query)
				m.Search()
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.EntityTable(kind, m.Visible()))
			return nil
		},
	}
	parentFlag(cmd, kind, &parentID)
	cmd.Flags().StringVarP(&query, "search", "s", "", "show only entries containing this text (case-insensitive)")
	return cmd
}

func newEntityRemoveCmd(app *App, kind domain.Kind) *cobra.Command {
	var yes bool

	short := "Remove a " + string(kind)
	if child, ok := kind.Child(); ok {
		short += " and all its " + child.Plural()
	}

	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   short,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			m, err := scopedModel(ctx, app, kind, args[0])
			if err != nil {
				return err
			}
			prompt, err := m.RequestRemove(args[0])
			if err != nil {
				return err
			}
			if !yes && !promptYesNoIO(app.stdin(), out, prompt+" [y/N]: ") {
				m.CancelRemove()
				fmt.Fprintln(out, formatter.Dim("Cancelled."))
				return nil
			}

			removed := m.Pending()
			if err := m.ConfirmRemove(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Removed: %s\n", formatter.StyleGreen.Render("✔"), removed.Text)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newNoteEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID TEXT",
		Short: "Replace the text of a note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := scopedModel(ctx, app, domain.KindNote, args[0])
			if err != nil {
				return err
			}
			e, err := m.Edit(ctx, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Updated note %s: %s\n",
				formatter.StyleGreen.Render("✔"), e.ID, e.Text)
			return nil
		},
	}
}

// scopedModel loads the list that contains id, the same list the TUI would
// show when the entity is selected.
func scopedModel(ctx context.Context, app *App, kind domain.Kind, id string) (*service.ListModel, error) {
	e, err := app.Entities.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	m := service.NewListModel(app.Entities, kind, e.ParentID, app.Observer)
	if err := m.Load(ctx); err != nil {
		return nil, err
	}
	return m, nil
}
