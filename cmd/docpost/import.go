package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/docpost"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Read the content directory into the post database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := docpost.New(appConfig, docpost.WithAppLogger(logger))
		defer app.Close()

		n, err := app.Import(cmd.Context(), os.DirFS(appConfig.ContentDir))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d posts into %s\n", n, appConfig.DatabasePath)
		return nil
	},
}
