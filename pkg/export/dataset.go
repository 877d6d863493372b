package export

import (
	"fmt"
	"time"

	"github.com/vanderheijden86/orgchart/pkg/chart"
	"github.com/vanderheijden86/orgchart/pkg/collapse"
	"github.com/vanderheijden86/orgchart/pkg/config"
	"github.com/vanderheijden86/orgchart/pkg/hierarchy"
	"github.com/vanderheijden86/orgchart/pkg/model"
	"github.com/vanderheijden86/orgchart/pkg/render"
)

// Dataset is one loaded generation of personnel data with everything derived
// from it that sessions share. It is never modified after construction.
type Dataset struct {
	Records     []model.PersonRecord
	Tree        *hierarchy.Tree
	Diagnostics hierarchy.Diagnostics
	Config      config.Config
	Renderer    *render.Renderer
	LoadedAt    time.Time
}

// NewDataset builds the tree and card renderer for records.
func NewDataset(records []model.PersonRecord, cfg config.Config) (*Dataset, error) {
	var opts []hierarchy.Option
	if cfg.Strict {
		opts = append(opts, hierarchy.WithStrict())
	}
	tree, diag, err := hierarchy.Build(records, opts...)
	if err != nil {
		return nil, fmt.Errorf("build hierarchy: %w", err)
	}
	return &Dataset{
		Records:     records,
		Tree:        tree,
		Diagnostics: diag,
		Config:      cfg,
		Renderer:    render.NewRenderer(tree, cfg),
		LoadedAt:    time.Now(),
	}, nil
}

// Chart returns the initial chart state for this dataset.
func (d *Dataset) Chart(policy collapse.Policy) chart.State {
	return chart.New(d.Tree, d.Config, chart.WithPolicy(policy), chart.WithRenderer(d.Renderer))
}
