package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/docpost"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Import the content directory and serve a preview",
	Long: `The serve command imports the content directory, then starts the preview
server. With --watch it re-imports whenever a source file changes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		app := docpost.New(cfg, docpost.WithAppLogger(logger))
		defer app.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if _, err := app.Import(ctx, os.DirFS(cfg.ContentDir)); err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(app.Start)
		if serveWatch {
			g.Go(func() error {
				return app.Watch(gctx, cfg.ContentDir)
			})
		}
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := app.Shutdown(shutdownCtx); err != nil {
				logger.Warn("shutdown", zap.Error(err))
			}
			return nil
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config addr)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "re-import when content changes")
}
