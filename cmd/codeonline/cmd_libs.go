package main

import (
	"fmt"

	"github.com/dhamidi/codeonline/pom"
	"github.com/spf13/cobra"
)

func newLibsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "libs",
		Short: "Manage the jars fragments are compiled against",
	}
	cmd.AddCommand(newLibsFetchCmd(g))
	return cmd
}

func newLibsFetchCmd(g *globals) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "fetch <group:artifact:version>...",
		Short: "Download jars from a Maven repository",
		Long: `Download the jars of the given Maven coordinates. The repository is
` + pom.DefaultMavenRepoURL + ` unless ` + pom.EnvMavenRepoURL + ` is set.
Run "codeonline pack" afterwards to make them available to the compiler.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("dir") {
				dir = g.cfg.Resolve(g.cfg.ClassPath.Libs)
			}
			coords := make([]pom.Coordinate, 0, len(args))
			for _, arg := range args {
				c, err := pom.ParseCoordinate(arg)
				if err != nil {
					return err
				}
				coords = append(coords, c)
			}

			fetcher := pom.NewMavenFetcher()
			for _, c := range coords {
				path, err := fetcher.DownloadJar(cmd.Context(), c, dir)
				if err != nil {
					return fmt.Errorf("fetch %s: %w", c, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", c, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory to download into (default from configuration)")

	return cmd
}
