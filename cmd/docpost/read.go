package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eringen/docpost"
	"github.com/eringen/docpost/markup"
)

var readNoContent bool

var readCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Assemble one source file and print the post as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, name := filepath.Split(args[0])
		if dir == "" {
			dir = "."
		}

		var renderer markup.Renderer
		for _, r := range appConfig.Renderers() {
			if r.Supports(name) {
				renderer = r
				break
			}
		}
		if renderer == nil {
			return fmt.Errorf("%s: unsupported source format", args[0])
		}

		reader := docpost.NewReader(os.DirFS(dir), name, appConfig,
			docpost.WithRenderer(renderer),
			docpost.WithLogger(logger),
		)
		post, err := reader.Render()
		if err != nil {
			return err
		}
		if readNoContent {
			post.Content = ""
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(post)
	},
}

func init() {
	readCmd.Flags().BoolVar(&readNoContent, "no-content", false, "omit the rendered body")
}
