package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/cashbox/internal/httpapi"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			ws, err := opts.open(reg, true)
			if err != nil {
				return err
			}
			defer func() { _ = ws.log.Sync() }()

			if addr == "" {
				addr = ws.cfg.Server.Address
			}
			if !ws.cfg.Log.Development {
				gin.SetMode(gin.ReleaseMode)
			}

			srv := &http.Server{
				Addr:         addr,
				Handler:      httpapi.NewRouter(ws.svc, ws.log, reg),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				ws.log.Info("starting cashbox API", zap.String("addr", addr), zap.String("dir", ws.root))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			ws.log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if _, err := ws.commit("serve: snapshot on shutdown"); err != nil {
				ws.log.Warn("auto-commit failed", zap.Error(err))
			}
			ws.log.Info("server exited")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.address)")
	return cmd
}
