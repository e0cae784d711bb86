package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dhamidi/codeonline/java/fragment"
	"github.com/spf13/cobra"
)

func newClassifyCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file>",
		Short: "Print the scope of every statement in a fragment",
		Long: `Split a fragment into statements and print the scope each run of
statements is placed in (HEADER, GLOBAL, MEMBER or LOCAL), followed by
the incomplete tail. Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			return runClassify(cmd.OutOrStdout(), src)
		},
	}
}

func runClassify(w io.Writer, src string) error {
	chars := []rune(src)
	cls, err := fragment.Classify(chars)
	if err != nil && !errors.Is(err, fragment.ErrUnexpectedEOF) {
		return err
	}
	for _, seg := range cls.Segments {
		fmt.Fprintf(w, "%-6s %-10s %s\n", seg.Scope, seg.Range, strconv.Quote(string(chars[seg.Range.Start:seg.Range.End])))
	}
	if cls.Tail.Len() > 0 {
		fmt.Fprintf(w, "%-6s %-10s %s\n", "TAIL", cls.Tail, strconv.Quote(string(chars[cls.Tail.Start:cls.Tail.End])))
	}
	if err != nil {
		fmt.Fprintln(w, warningColor.Sprint("warning:"), err)
	}
	return nil
}
