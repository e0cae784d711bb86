package main

import (
	"fmt"

	"github.com/dhamidi/codeonline/java/fragment"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

func newGenerateCmd(g *globals) *cobra.Command {
	var imports string

	cmd := &cobra.Command{
		Use:   "generate <file>",
		Short: "Print the compilation unit synthesized from a fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("imports") {
				imports = g.cfg.Fragment.Imports
			}
			gen := fragment.Generate(src, imports)
			if gen.Verbatim() {
				commonlog.GetLogger("codeonline.cli").Warningf("%s could not be classified; printed verbatim", args[0])
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), gen.Text())
			return err
		},
	}

	cmd.Flags().StringVar(&imports, "imports", "", "imports injected after the header (default from configuration)")

	return cmd
}
