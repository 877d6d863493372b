package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/orgchart/pkg/config"
	"github.com/vanderheijden86/orgchart/pkg/export"
	"github.com/vanderheijden86/orgchart/pkg/model"
	"github.com/vanderheijden86/orgchart/pkg/source"
)

// App carries the state shared by every subcommand.
type App struct {
	ConfigPath string
	Source     string
	Debug      bool

	Config     config.Config
	configFile string
	Logger     *slog.Logger
}

func newRootCommand() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "orgchart",
		Short:         "Render and explore an organisation chart from a personnel sheet",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.initialize(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Path to config.yaml (default: discovered .orgchart/config.yaml)")
	cmd.PersistentFlags().StringVarP(&app.Source, "source", "s", "", "CSV URL, CSV file or sqlite:<path>?table=<name>")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		newRenderCmd(app),
		newServeCmd(app),
		newTreeCmd(app),
		newReportCmd(app),
		newFindCmd(app),
		newInitCmd(app),
		newImportCmd(app),
		newSourcesCmd(app),
	)
	return cmd
}

func (a *App) initialize(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.Debug {
		level = slog.LevelDebug
	}
	a.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, path, err := config.Resolve(a.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.Config = *cfg
	a.configFile = path
	if path != "" {
		a.Logger.Debug("using config", "path", path)
	}
	return nil
}

// location returns the data source to read.
func (a *App) location() string {
	return source.Resolve(a.Source, a.Config.Source)
}

// loadRecords fetches the records, bounded by the configured fetch timeout.
func (a *App) loadRecords(ctx context.Context) ([]model.PersonRecord, error) {
	loc := a.location()
	if a.Config.Server.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config.Server.FetchTimeout)
		defer cancel()
	}
	start := time.Now()
	records, err := source.Load(ctx, loc)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug("loaded records", "count", len(records), "elapsed", time.Since(start))
	return records, nil
}

// loadDataset loads the records and builds the tree, logging anything the
// builder had to drop.
func (a *App) loadDataset(ctx context.Context) (*export.Dataset, error) {
	records, err := a.loadRecords(ctx)
	if err != nil {
		return nil, err
	}
	data, err := export.NewDataset(records, a.Config)
	if err != nil {
		return nil, err
	}
	if !data.Diagnostics.Empty() {
		a.Logger.Warn("data problems", "summary", data.Diagnostics.String())
	}
	return data, nil
}

// watchedFiles lists the local files behind the current source, if any.
func (a *App) watchedFiles() []string {
	var files []string
	if src, err := source.Open(a.location()); err == nil {
		if w, ok := src.(source.Watchable); ok {
			files = append(files, w.Path())
		}
	}
	if a.configFile != "" {
		files = append(files, a.configFile)
	}
	return files
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
