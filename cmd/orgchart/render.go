package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/orgchart/pkg/chart"
	"github.com/vanderheijden86/orgchart/pkg/collapse"
	"github.com/vanderheijden86/orgchart/pkg/export"
)

type expandFlags struct {
	all   bool
	depth int
	ids   []string
}

func (f *expandFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.all, "expand-all", false, "Expand every person")
	cmd.Flags().IntVar(&f.depth, "depth", -1, "Expand down to this depth (0 shows only the root)")
	cmd.Flags().StringSliceVar(&f.ids, "expand", nil, "Reveal these ids (comma-separated)")
}

// apply moves s to the requested expansion.
func (f expandFlags) apply(s chart.State) (chart.State, error) {
	switch {
	case f.all:
		s, _ = s.ExpandAll()
	case f.depth >= 0:
		s, _ = s.ExpandToDepth(f.depth)
	}
	for _, id := range f.ids {
		var err error
		if s, _, err = s.Reveal(strings.TrimSpace(id)); err != nil {
			return s, err
		}
	}
	return s, nil
}

func newRenderCmd(app *App) *cobra.Command {
	var (
		out    string
		title  string
		scale  float64
		expand expandFlags
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the chart to an SVG, PNG or standalone HTML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := app.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			state, err := expand.apply(data.Chart(collapse.Policy{}))
			if err != nil {
				return err
			}
			if out == "" {
				out = export.SnapshotFilename(title, "svg")
			}
			err = export.SaveSnapshot(out, state.Frame(), export.SnapshotOptions{
				Title:  title,
				Legend: data.Config.Palette.Legend(),
				Scale:  scale,
			})
			if err != nil {
				return fmt.Errorf("write %s: %w", filepath.Base(out), err)
			}
			app.Logger.Info("chart written", "path", out, "people", len(state.Frame().Nodes))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file; the extension picks the format (default: timestamped .svg)")
	cmd.Flags().StringVar(&title, "title", "Org Chart", "Title for HTML output")
	cmd.Flags().Float64Var(&scale, "scale", 1, "Pixel scale for PNG output")
	expand.register(cmd)
	return cmd
}
