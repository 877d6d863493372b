package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/orgchart/pkg/analysis"
	"github.com/vanderheijden86/orgchart/pkg/config"
	"github.com/vanderheijden86/orgchart/pkg/export"
	"github.com/vanderheijden86/orgchart/pkg/hierarchy"
	"github.com/vanderheijden86/orgchart/pkg/source"
	"github.com/vanderheijden86/orgchart/pkg/ui"
)

func newTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Browse the chart in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := app.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			return ui.Run(data.Tree, data.Config)
		},
	}
}

func newReportCmd(app *App) *cobra.Command {
	var (
		out    string
		asJSON bool
		depth  int
		sample int
		title  string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise data quality and structure as Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := app.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			icfg := analysis.DefaultInsightsConfig()
			if sample > 0 {
				icfg.SampleSize = sample
			}
			insights := analysis.NewAnalyzer(data.Records).Insights(icfg)

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(insights)
			}

			opts := export.DefaultReportOptions()
			opts.MermaidDepth = depth
			if title != "" {
				opts.Title = title
			}
			if out != "" {
				if err := export.SaveMarkdownToFile(data, insights, opts, out); err != nil {
					return err
				}
				app.Logger.Info("report written", "path", out)
				return nil
			}

			md, err := export.GenerateMarkdown(data, insights, opts)
			if err != nil {
				return err
			}
			if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				width, _, err := term.GetSize(int(f.Fd()))
				if err != nil || width <= 0 {
					width = 100
				}
				r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
				if err == nil {
					if rendered, err := r.Render(md); err == nil {
						md = rendered
					}
				}
			}
			_, err = fmt.Fprint(w, md)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the Markdown to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON instead")
	cmd.Flags().IntVar(&depth, "mermaid-depth", export.DefaultReportOptions().MermaidDepth, "Levels shown in the hierarchy diagram")
	cmd.Flags().IntVar(&sample, "sample", 0, "Betweenness sample size (0 picks one from the head count)")
	cmd.Flags().StringVar(&title, "title", "", "Report title")
	return cmd
}

func newFindCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy-find people by id, name, title or office",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := app.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			matches := data.Tree.Search(strings.Join(args, " "))
			if len(matches) == 0 {
				return fmt.Errorf("no one matches %q", strings.Join(args, " "))
			}
			if limit > 0 && len(matches) > limit {
				matches = matches[:limit]
			}
			w := cmd.OutOrStdout()
			for _, m := range matches {
				rec := data.Tree.Record(m.Index)
				fmt.Fprintf(w, "%s\t%s\t%s\n", rec.ID, ui.PersonLine(rec), reportingLine(data.Tree, m.Index))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Show at most this many matches (0 for all)")
	return cmd
}

// reportingLine names the managers above i, root first.
func reportingLine(t *hierarchy.Tree, i hierarchy.NodeIndex) string {
	anc := t.Ancestors(i)
	names := make([]string, 0, len(anc))
	for k := len(anc) - 1; k >= 0; k-- {
		names = append(names, t.Record(anc[k]).Name)
	}
	return strings.Join(names, " > ")
}

func newInitCmd(app *App) *cobra.Command {
	var (
		force    bool
		defaults bool
		dir      string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create .orgchart/config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := filepath.Join(dir, config.Dir, config.FileName)
			if fileExists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := app.Config
			if app.Source != "" {
				cfg.Source = app.Source
			}
			if !defaults {
				var err error
				cfg, err = ui.RunConfigWizard(cfg, config.ScanSources(dir, 3))
				if err != nil {
					return err
				}
			}

			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Skip the questions and write the current settings")
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to create the config in")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var (
		table     string
		gitignore bool
	)
	cmd := &cobra.Command{
		Use:   "import <database>",
		Short: "Copy the current source into a SQLite table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := app.loadRecords(cmd.Context())
			if err != nil {
				return err
			}
			if err := source.WriteSQLite(cmd.Context(), args[0], table, records); err != nil {
				return err
			}
			if gitignore {
				if err := config.EnsureIgnored(filepath.Dir(args[0]), filepath.Base(args[0])); err != nil {
					return fmt.Errorf("update .gitignore: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records; use --source 'sqlite:%s?table=%s'\n",
				len(records), args[0], table)
			return nil
		},
	}
	cmd.Flags().StringVar(&table, "table", source.DefaultTable, "Table to write")
	cmd.Flags().BoolVar(&gitignore, "gitignore", false, "List the database in .gitignore next to it")
	return cmd
}

func newSourcesCmd(_ *App) *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "sources [dir]",
		Short: "List local CSV and SQLite files usable as --source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			found := config.ScanSources(dir, depth)
			if len(found) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No data files found.")
				return nil
			}
			for _, f := range found {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 3, "How many directory levels to search")
	return cmd
}
