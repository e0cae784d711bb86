package main

import (
	"github.com/dhamidi/codeonline/lsp"
	"github.com/spf13/cobra"
)

func newLSPCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		Long: `Start a language server on stdin/stdout. Documents ending in ` + lsp.FragmentSuffix + ` are
compiled as fragments, .java documents as complete compilation units.
Logs go to stderr or to --log-file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewServer(newQueue(cmd.Context(), g.cfg), lsp.Options{
				Imports: g.cfg.Fragment.Imports,
				Name:    g.cfg.Fragment.Name,
				Version: version,
			})
			return server.RunStdio()
		},
	}
}
