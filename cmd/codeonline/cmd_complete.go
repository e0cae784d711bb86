package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dhamidi/codeonline/compiler"
	"github.com/spf13/cobra"
)

func newCompleteCmd(g *globals) *cobra.Command {
	var (
		offset int
		full   bool
	)

	cmd := &cobra.Command{
		Use:   "complete <file> --offset N",
		Short: "List completions at a character offset of a fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			if offset < 0 || offset > len([]rune(src)) {
				return fmt.Errorf("offset %d outside of %s", offset, args[0])
			}
			req := newRequest(g.cfg, src)
			req.Full = full
			req.CompletionOffset = offset

			list, ok := newHandler(g.cfg).Handle(cmd.Context(), req).(*compiler.CompletionList)
			if !ok || !list.Success {
				return fmt.Errorf("completion failed; rerun with -vv for details")
			}
			return printCompletions(cmd.OutOrStdout(), list.Items)
		},
	}

	cmd.Flags().IntVarP(&offset, "offset", "o", 0, "character offset to complete at")
	cmd.Flags().BoolVar(&full, "full", false, "treat the file as a complete compilation unit")
	_ = cmd.MarkFlagRequired("offset")

	return cmd
}

func printCompletions(w io.Writer, items []compiler.CompletionItem) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", item.Text, noteColor.Sprint(item.ClassName), item.DisplayText)
	}
	return tw.Flush()
}
