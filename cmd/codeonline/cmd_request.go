package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dhamidi/codeonline/compiler"
	"github.com/dhamidi/codeonline/java/diag"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
)

func newRequestCmd(g *globals) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Handle one request read from stdin",
		Long: `Read a single request from stdin, handle it and write the response to
stdout in the same encoding. Requests that cannot be decoded are answered
with an unsuccessful compilation result.

  {"source": "int x = 1;", "imports": "", "full": false, "name": "Main", "completionOffset": -1}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read request: %w", err)
			}
			handler := newHandler(g.cfg)

			switch format {
			case "json":
				out := handler.HandleJSON(cmd.Context(), data)
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out)
				return err
			case "msgpack":
				var resp compiler.Response
				req, err := compiler.DecodeMsgpack(data)
				if err != nil {
					fmt.Fprintln(os.Stderr, warningColor.Sprint("warning:"), err)
					resp = &compiler.CompilationResult{Diagnostics: []diag.Diagnostic{}}
				} else {
					resp = handler.Handle(cmd.Context(), req)
				}
				out, err := msgpack.Marshal(resp)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			default:
				return fmt.Errorf("invalid --format %q (want json or msgpack)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "request and response encoding (json|msgpack)")

	return cmd
}
