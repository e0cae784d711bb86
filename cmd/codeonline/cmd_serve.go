package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dhamidi/codeonline/ui"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

func newServeCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web editor and the HTTP request endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = g.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			queue := newQueue(ctx, g.cfg)
			server, err := ui.NewServer(queue, ui.PageDefaults{
				Imports: g.cfg.Fragment.Imports,
				Name:    g.cfg.Fragment.Name,
			})
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			httpServer := &http.Server{Addr: addr, Handler: server}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					commonlog.GetLogger("codeonline.cli").Errorf("shutdown: %s", err)
				}
			}()

			displayAddr := addr
			if strings.HasPrefix(addr, ":") {
				displayAddr = "localhost" + addr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Starting server at http://%s\n", displayAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			queue.Wait()
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "address to listen on (default from configuration)")

	return cmd
}
