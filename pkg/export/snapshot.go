package export

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/orgchart/pkg/config"
	"github.com/vanderheijden86/orgchart/pkg/render"
)

// ErrUnknownFormat is returned for snapshot paths with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown snapshot format")

// SnapshotOptions configures SaveSnapshot.
type SnapshotOptions struct {
	Title  string
	Legend []config.LegendEntry
	Scale  float64 // PNG only; 0 means 1
}

// SaveSnapshot writes f to path in the format named by its extension:
// .svg, .png or .html.
func SaveSnapshot(path string, f render.Frame, opts SnapshotOptions) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".svg":
		return render.SaveSVG(path, f)
	case ".png":
		scale := opts.Scale
		if scale <= 0 {
			scale = 1
		}
		return render.SavePNG(path, f, scale)
	case ".html", ".htm":
		return SaveStandalone(path, opts.Title, opts.Legend, f)
	default:
		return fmt.Errorf("%w: %q (want .svg, .png or .html)", ErrUnknownFormat, ext)
	}
}

// SnapshotFilename creates a timestamped filename.
// Format: {project}_{YYYYMMDD}_{HHMMSS}_{gitshort}.{ext}
func SnapshotFilename(projectName, ext string) string {
	now := time.Now()
	dateStr := now.Format("20060102_150405")

	gitShort := "nogit"
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	if output, err := cmd.Output(); err == nil {
		gitShort = strings.TrimSpace(string(output))
	}

	safeName := strings.ReplaceAll(projectName, " ", "_")
	safeName = strings.ReplaceAll(safeName, "/", "_")
	if safeName == "" {
		safeName = "orgchart"
	}
	return fmt.Sprintf("%s_%s_%s.%s", safeName, dateStr, gitShort, strings.TrimPrefix(ext, "."))
}
