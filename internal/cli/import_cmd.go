package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/atelier/internal/cli/formatter"
	"github.com/alexanderramin/atelier/internal/export"
	"github.com/alexanderramin/atelier/internal/importer"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Add every client, instrument and note of an exported document",
		Long: `Reads a document written by "atelier export" and adds its entries under
new ids. Existing data is kept. The format follows the file extension
unless --format is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f := importer.FormatForPath(path)
			if format != "" {
				f = export.Format(format)
			}

			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening import file: %w", err)
			}
			defer file.Close()

			doc, err := importer.Decode(file, f)
			if err != nil {
				return err
			}
			res, err := importer.Import(cmd.Context(), app.Entities, doc)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Imported %d clients, %d instruments, %d notes from %s\n",
				formatter.StyleGreen.Render("✔"), res.Clients, res.Instruments, res.Notes, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: yaml or json")
	return cmd
}
