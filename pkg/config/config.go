package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/orgchart/pkg/layout"
)

// DefaultAvatarURL is the placeholder image shown on every card.
const DefaultAvatarURL = "https://cdn-icons-png.flaticon.com/512/149/149071.png"

var validate = validator.New()

// Config represents an orgchart configuration file (.orgchart/config.yaml)
type Config struct {
	// Source is the data location used when neither --source nor
	// ORGCHART_SOURCE is given
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	// Strict rejects duplicate ids and extra roots instead of reporting them
	Strict bool `yaml:"strict,omitempty" json:"strict,omitempty"`

	Card    CardLayout   `yaml:"card" json:"card"`
	Layout  LayoutConfig `yaml:"layout" json:"layout"`
	Palette Palette      `yaml:"palette" json:"palette"`
	Server  ServerConfig `yaml:"server" json:"server"`
}

// FieldStyle describes one line of the card's text stack below the name.
type FieldStyle struct {
	// Column is the record column the value comes from
	Column string `yaml:"column" json:"column" validate:"required,oneof=title img office location billable nonbillable projects projectscount customerscount trainees"`

	// Prefix and Suffix decorate the value (e.g. "T-" or " Projects")
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Suffix string `yaml:"suffix,omitempty" json:"suffix,omitempty"`

	Color  string `yaml:"color,omitempty" json:"color,omitempty"`
	Weight string `yaml:"weight,omitempty" json:"weight,omitempty" validate:"omitempty,oneof=normal bold"`
}

// Format returns the decorated value, or "" when value is empty.
func (f FieldStyle) Format(value string) string {
	if value == "" {
		return ""
	}
	return f.Prefix + value + f.Suffix
}

// CardLayout holds every size, offset and colour used to draw a card.
// Offsets are relative to the card's top-left corner unless noted.
type CardLayout struct {
	Width        float64 `yaml:"width" json:"width" validate:"gt=0"`
	Height       float64 `yaml:"height" json:"height" validate:"gt=0"`
	CornerRadius float64 `yaml:"corner_radius" json:"corner_radius" validate:"gte=0"`
	Stroke       string  `yaml:"stroke" json:"stroke"`

	AvatarURL      string  `yaml:"avatar_url" json:"avatar_url"`
	AvatarSize     float64 `yaml:"avatar_size" json:"avatar_size" validate:"gte=0"`
	AvatarInset    float64 `yaml:"avatar_inset" json:"avatar_inset"`
	UseRecordImage bool    `yaml:"use_record_image,omitempty" json:"use_record_image,omitempty"`

	// TextInset is the x offset of the text column, TextTop the baseline of
	// the first name line.
	TextInset    float64 `yaml:"text_inset" json:"text_inset"`
	TextTop      float64 `yaml:"text_top" json:"text_top"`
	LineHeight   float64 `yaml:"line_height" json:"line_height" validate:"gt=0"`
	FieldAdvance float64 `yaml:"field_advance" json:"field_advance" validate:"gt=0"`
	WrapWidth    int     `yaml:"wrap_width" json:"wrap_width" validate:"gt=0"`

	FontFamily string       `yaml:"font_family" json:"font_family"`
	FontSize   float64      `yaml:"font_size" json:"font_size" validate:"gt=0"`
	NameColor  string       `yaml:"name_color" json:"name_color"`
	Fields     []FieldStyle `yaml:"fields" json:"fields" validate:"dive"`

	FooterFontSize float64 `yaml:"footer_font_size" json:"footer_font_size" validate:"gt=0"`
	FooterColor    string  `yaml:"footer_color" json:"footer_color"`
	FooterInset    float64 `yaml:"footer_inset" json:"footer_inset"`

	ToggleRadius  float64 `yaml:"toggle_radius" json:"toggle_radius" validate:"gte=0"`
	ToggleFill    string  `yaml:"toggle_fill" json:"toggle_fill"`
	ToggleStroke  string  `yaml:"toggle_stroke" json:"toggle_stroke"`
	GlyphFontSize float64 `yaml:"glyph_font_size" json:"glyph_font_size" validate:"gt=0"`

	LinkColor string  `yaml:"link_color" json:"link_color"`
	LinkWidth float64 `yaml:"link_width" json:"link_width" validate:"gt=0"`
}

// LayoutConfig is the spacing section of the file.
type LayoutConfig struct {
	HorizontalGap    float64 `yaml:"horizontal_gap" json:"horizontal_gap" validate:"gte=0"`
	VerticalGap      float64 `yaml:"vertical_gap" json:"vertical_gap" validate:"gte=0"`
	CousinSeparation float64 `yaml:"cousin_separation" json:"cousin_separation" validate:"gte=1"`
	Margin           float64 `yaml:"margin" json:"margin" validate:"gte=0"`
	ExtraWidth       float64 `yaml:"extra_width" json:"extra_width" validate:"gte=0"`
	ExtraHeight      float64 `yaml:"extra_height" json:"extra_height" validate:"gte=0"`
}

// Palette maps job titles to card fill colours.
type Palette struct {
	Fallback string            `yaml:"fallback" json:"fallback" validate:"required"`
	Titles   map[string]string `yaml:"titles,omitempty" json:"titles,omitempty"`

	// folded title -> colour, built by Indexed
	fold map[string]string
}

// LegendEntry is one row of the colour legend.
type LegendEntry struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

// foldTitle is the key titles are matched on.
func foldTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// sortedTitles returns the palette titles in byte order.
func (p Palette) sortedTitles() []string {
	titles := make([]string, 0, len(p.Titles))
	for t := range p.Titles {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// Indexed returns a copy with the case-insensitive lookup built. When two
// titles fold to the same key the one sorting first wins.
func (p Palette) Indexed() Palette {
	p.fold = make(map[string]string, len(p.Titles))
	for _, t := range p.sortedTitles() {
		if _, dup := p.fold[foldTitle(t)]; !dup {
			p.fold[foldTitle(t)] = p.Titles[t]
		}
	}
	return p
}

// Collisions lists titles that differ only in case or surrounding
// whitespace from an earlier title, in sorted order.
func (p Palette) Collisions() []string {
	seen := make(map[string]string, len(p.Titles))
	var out []string
	for _, t := range p.sortedTitles() {
		if first, ok := seen[foldTitle(t)]; ok {
			out = append(out, fmt.Sprintf("%q/%q", first, t))
			continue
		}
		seen[foldTitle(t)] = t
	}
	return out
}

// Fill returns the card colour for title. Matching ignores case and
// surrounding whitespace.
func (p Palette) Fill(title string) string {
	if c, ok := p.Titles[title]; ok {
		return c
	}
	if p.fold == nil {
		p = p.Indexed()
	}
	if c, ok := p.fold[foldTitle(title)]; ok {
		return c
	}
	return p.Fallback
}

// mergeTitles lays user titles over the defaults. A user title replaces any
// default it matches case-insensitively.
func mergeTitles(defaults, user map[string]string) map[string]string {
	out := make(map[string]string, len(defaults)+len(user))
	taken := make(map[string]bool, len(user))
	for t, c := range user {
		out[t] = c
		taken[foldTitle(t)] = true
	}
	for t, c := range defaults {
		if !taken[foldTitle(t)] {
			out[t] = c
		}
	}
	return out
}

// Legend returns the palette ordered by title.
func (p Palette) Legend() []LegendEntry {
	out := make([]LegendEntry, 0, len(p.Titles))
	for t, c := range p.Titles {
		out = append(out, LegendEntry{Title: t, Color: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// ServerConfig configures `orgchart serve`.
type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr" validate:"required"`
	Accordion    bool          `yaml:"accordion,omitempty" json:"accordion,omitempty"`
	Watch        bool          `yaml:"watch,omitempty" json:"watch,omitempty"`
	Transition   time.Duration `yaml:"transition" json:"transition" validate:"gte=0"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout" validate:"gt=0"`
}

// DefaultFields returns the stock text stack: title, then the metrics.
func DefaultFields() []FieldStyle {
	return []FieldStyle{
		{Column: "title", Color: "black", Weight: "normal"},
		{Column: "billable", Suffix: " B", Color: "green", Weight: "bold"},
		{Column: "nonbillable", Suffix: " F", Color: "red", Weight: "bold"},
		{Column: "projectscount", Suffix: " Projects", Color: "#1976d2", Weight: "bold"},
		{Column: "customerscount", Suffix: " Customers", Color: "#6a1b9a", Weight: "bold"},
		{Column: "trainees", Prefix: "T-", Color: "#ef6c00", Weight: "bold"},
	}
}

// DefaultCardLayout returns the stock card.
func DefaultCardLayout() CardLayout {
	return CardLayout{
		Width:          290,
		Height:         150,
		CornerRadius:   10,
		Stroke:         "#ccc",
		AvatarURL:      DefaultAvatarURL,
		AvatarSize:     50,
		AvatarInset:    10,
		TextInset:      70,
		TextTop:        20,
		LineHeight:     14,
		FieldAdvance:   18,
		WrapWidth:      28,
		FontFamily:     "sans-serif",
		FontSize:       12,
		NameColor:      "black",
		Fields:         DefaultFields(),
		FooterFontSize: 10,
		FooterColor:    "gray",
		FooterInset:    10,
		ToggleRadius:   10,
		ToggleFill:     "#f2f2f2",
		ToggleStroke:   "#555",
		GlyphFontSize:  14,
		LinkColor:      "#ccc",
		LinkWidth:      2,
	}
}

// DefaultPalette returns the stock title colours.
func DefaultPalette() Palette {
	return Palette{
		Fallback: "#fff",
		Titles: map[string]string{
			"CEO":               "#fff8e1",
			"CTO":               "#e3f2fd",
			"Director":          "#e8f5e9",
			"Manager":           "#f3e5f5",
			"Team Lead":         "#e0f7fa",
			"Software Engineer": "#ffffff",
		},
	}.Indexed()
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	def := layout.DefaultConfig()
	return Config{
		Card: DefaultCardLayout(),
		Layout: LayoutConfig{
			HorizontalGap:    def.HorizontalGap,
			VerticalGap:      def.VerticalGap,
			CousinSeparation: def.CousinSeparation,
			Margin:           def.Margin,
			ExtraWidth:       def.ExtraWidth,
			ExtraHeight:      def.ExtraHeight,
		},
		Palette: DefaultPalette(),
		Server: ServerConfig{
			Addr:         ":8080",
			Transition:   300 * time.Millisecond,
			FetchTimeout: 30 * time.Second,
		},
	}
}

// Engine returns the layout parameters for the configured card size.
func (c Config) Engine() layout.Config {
	return layout.Config{
		NodeWidth:        c.Card.Width,
		NodeHeight:       c.Card.Height,
		HorizontalGap:    c.Layout.HorizontalGap,
		VerticalGap:      c.Layout.VerticalGap,
		CousinSeparation: c.Layout.CousinSeparation,
		Margin:           c.Layout.Margin,
		ExtraWidth:       c.Layout.ExtraWidth,
		ExtraHeight:      c.Layout.ExtraHeight,
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if dups := c.Palette.Collisions(); len(dups) > 0 {
		return fmt.Errorf("Palette.Titles: titles differ only in case: %s", strings.Join(dups, ", "))
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q check (value %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Load reads a configuration file. Keys absent from the file keep their
// default values; palette titles are merged with the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	defaults := cfg.Palette.Titles
	cfg.Palette.Titles = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// collisions inside the file are errors; a default is simply replaced
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.Palette.Titles = mergeTitles(defaults, cfg.Palette.Titles)
	cfg.Palette = cfg.Palette.Indexed()

	return &cfg, nil
}

// Resolve returns the configuration named by path, or the discovered one
// when path is empty, or the defaults when nothing is found. The second
// return value is the file that was used ("" for defaults).
func Resolve(path string) (*Config, string, error) {
	if path == "" {
		found, ok := DetectConfig()
		if !ok {
			cfg := DefaultConfig()
			return &cfg, "", nil
		}
		path = found
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
