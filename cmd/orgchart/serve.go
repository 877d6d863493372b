package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/orgchart/pkg/collapse"
	"github.com/vanderheijden86/orgchart/pkg/config"
	"github.com/vanderheijden86/orgchart/pkg/export"
)

func newServeCmd(app *App) *cobra.Command {
	var (
		addr      string
		title     string
		accordion bool
		watch     bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive chart over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				app.Config.Server.Addr = addr
			}
			if cmd.Flags().Changed("accordion") {
				app.Config.Server.Accordion = accordion
			}
			if cmd.Flags().Changed("watch") {
				app.Config.Server.Watch = watch
			}
			return app.serve(cmd.Context(), title)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().StringVar(&title, "title", "Org Chart", "Page title")
	cmd.Flags().BoolVar(&accordion, "accordion", false, "Collapse siblings when a person is expanded")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload when the data or config file changes")
	return cmd
}

func (a *App) serve(ctx context.Context, title string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	data, err := a.loadDataset(ctx)
	if err != nil {
		return err
	}

	opts := []export.ServerOption{
		export.WithTitle(title),
		export.WithPolicy(collapse.Policy{Accordion: a.Config.Server.Accordion}),
		export.WithLogger(a.Logger),
	}

	var srv *export.Server
	var hub *export.LiveReloadHub
	if a.Config.Server.Watch {
		files := a.watchedFiles()
		if len(files) == 0 {
			a.Logger.Warn("nothing to watch: the source is not a local file")
		} else {
			hub, err = export.NewLiveReloadHub(files, func() error {
				return srv.Reload(func() (*export.Dataset, error) { return a.reloadDataset(ctx) })
			}, a.Logger)
			if err != nil {
				return err
			}
			opts = append(opts, export.WithLiveReload(hub))
		}
	}
	srv = export.NewServer(data, opts...)

	httpServer := &http.Server{
		Addr:              a.Config.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("serving chart", "addr", httpServer.Addr, "people", data.Tree.Len())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", httpServer.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if hub != nil {
		g.Go(func() error { return hub.Run(gctx) })
	}
	return g.Wait()
}

// reloadDataset re-reads the config file, when there is one, and the data.
func (a *App) reloadDataset(ctx context.Context) (*export.Dataset, error) {
	cfg := a.Config
	if a.configFile != "" {
		loaded, err := config.Load(a.configFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
		cfg.Server = a.Config.Server
	}
	records, err := a.loadRecords(ctx)
	if err != nil {
		return nil, err
	}
	return export.NewDataset(records, cfg)
}
