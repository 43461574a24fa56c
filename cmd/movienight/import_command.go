package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"movienight/internal/catalog"
	"movienight/internal/importer"
	"movienight/internal/logging"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var listName string

	cmd := &cobra.Command{
		Use:   "import <csv>",
		Short: "Import title[,year] rows into a pick list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *catalog.Store) error {
				imp, err := importer.New(store,
					importer.WithLogger(logging.NewComponentLogger(logger, "import")))
				if err != nil {
					return err
				}
				summary, err := imp.ImportFile(runContext(cmd), args[0], listName)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"Imported %d rows into %q: %d new, %d matched, %d skipped.\n",
					summary.Rows, listName, summary.Created, summary.Matched, summary.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&listName, "list", "", "Pick list the rows join")
	_ = cmd.MarkFlagRequired("list")
	return cmd
}
