package main

import (
	"fmt"
	"path/filepath"

	"github.com/dhamidi/codeonline/files"
	"github.com/dhamidi/codeonline/signatures"
	"github.com/spf13/cobra"
)

func newPackCmd(g *globals) *cobra.Command {
	var (
		out      string
		platform string
	)

	cmd := &cobra.Command{
		Use:   "pack [--out DIR] [--platform JAR] [JAR...]",
		Short: "Build the per-package class archives the compiler reads",
		Long: `Split the class files of the platform and of the given jars into one
archive per package, and write the index of available archives.

The platform is a ct.sym or a jar of platform classes; without --platform
only class path archives are built. Without jar arguments every jar in the
configured libs directory is packed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("out") {
				out = g.cfg.Resolve(g.cfg.ClassPath.Archives)
			}
			jars := args
			if len(jars) == 0 {
				var err error
				jars, err = filepath.Glob(filepath.Join(g.cfg.Resolve(g.cfg.ClassPath.Libs), "*.jar"))
				if err != nil {
					return err
				}
			}
			if platform == "" && len(jars) == 0 {
				return fmt.Errorf("nothing to pack: no --platform and no jars")
			}
			archives, err := signatures.Pack(cmd.Context(), out, platform, jars)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d archives and %s to %s\n", len(archives), files.IndexName, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default from configuration)")
	cmd.Flags().StringVar(&platform, "platform", "", "ct.sym or jar holding the platform classes")

	return cmd
}
