package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Dir is the directory that holds the configuration file.
const Dir = ".orgchart"

// FileName is the configuration file inside Dir.
const FileName = "config.yaml"

// DetectConfig attempts to find the configuration by walking up from the
// current directory looking for .orgchart/config.yaml.
func DetectConfig() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	return FindConfig(dir)
}

// FindConfig walks up from dir looking for .orgchart/config.yaml.
func FindConfig(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		candidate := filepath.Join(dir, Dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		// Don't go above home directory
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

// sourceExts are the file types ScanSources reports.
var sourceExts = map[string]bool{
	".csv":     true,
	".db":      true,
	".sqlite":  true,
	".sqlite3": true,
}

// ScanSources walks root up to maxDepth levels deep and returns the local data
// files that `orgchart render --source` can read.
func ScanSources(root string, maxDepth int) []string {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	root = expandHome(root)
	var results []string

	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return filepath.SkipDir
		}

		currentDepth := strings.Count(filepath.Clean(path), string(filepath.Separator)) - rootDepth
		if d.IsDir() {
			if currentDepth > maxDepth {
				return filepath.SkipDir
			}
			// Skip hidden directories except the config directory
			name := d.Name()
			if path != root && strings.HasPrefix(name, ".") && name != Dir {
				return filepath.SkipDir
			}
			return nil
		}

		if sourceExts[strings.ToLower(filepath.Ext(path))] {
			results = append(results, path)
		}
		return nil
	})

	return results
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
