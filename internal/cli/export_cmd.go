package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/atelier/internal/cli/formatter"
	"github.com/alexanderramin/atelier/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var format, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every client, instrument and note as one document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := export.Tree(cmd.Context(), app.Entities)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating export file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := export.Write(w, doc, export.Format(format)); err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %d clients to %s\n",
					formatter.StyleGreen.Render("✔"), len(doc.Clients), outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatYAML), "output format: yaml or json")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

func newTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show clients, instruments and notes as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := export.Tree(cmd.Context(), app.Entities)
			if err != nil {
				return err
			}
			if len(doc.Clients) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No clients."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTree(treeItems(doc)))
			return nil
		},
	}
}

func treeItems(doc *export.Document) []formatter.TreeItem {
	var items []formatter.TreeItem
	for ci, c := range doc.Clients {
		items = append(items, formatter.TreeItem{
			Title:  c.Name,
			IsLast: ci == len(doc.Clients)-1,
		})
		for ii, inst := range c.Instruments {
			items = append(items, formatter.TreeItem{
				Title:  inst.Name,
				Level:  1,
				IsLast: ii == len(c.Instruments)-1,
			})
			for ni, n := range inst.Notes {
				item := formatter.TreeItem{
					Title:  formatter.Truncate(n.Text, 60),
					Level:  2,
					IsLast: ni == len(inst.Notes)-1,
				}
				if n.CreatedAt != nil {
					item.Detail = formatter.CreatedLabel(*n.CreatedAt)
				}
				items = append(items, item)
			}
		}
	}
	return items
}
