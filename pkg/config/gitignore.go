package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// EnsureIgnored makes sure pattern is listed in dir/.gitignore, creating the
// file when needed. Existing content is kept and the call is idempotent.
func EnsureIgnored(dir, pattern string) error {
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return err
		}
	}
	path := filepath.Join(dir, ".gitignore")

	present, err := isIgnored(path, pattern)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if present {
		return nil
	}
	return appendToGitignore(path, pattern)
}

// isIgnored reports whether a line of the .gitignore at path covers pattern.
func isIgnored(path, pattern string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if matchesPattern(line, pattern) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// matchesPattern checks whether a gitignore line covers pattern. A leading or
// trailing slash is ignored, and a directory pattern is also covered by its
// "/*" and "/**" forms. Globs other than those are not expanded.
func matchesPattern(line, pattern string) bool {
	norm := func(s string) string {
		return strings.TrimSuffix(strings.TrimPrefix(s, "/"), "/")
	}
	line, pattern = norm(line), norm(pattern)
	for _, form := range []string{pattern, pattern + "/*", pattern + "/**", pattern + "/**/*"} {
		if line == form {
			return true
		}
	}
	return false
}

func appendToGitignore(path, pattern string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	var toWrite string
	if len(content) > 0 {
		if content[len(content)-1] != '\n' {
			toWrite = "\n"
		}
		toWrite += "\n"
	}
	toWrite += "# orgchart local data\n" + pattern + "\n"

	_, err = file.WriteString(toWrite)
	return err
}
