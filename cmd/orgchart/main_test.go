package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

const testCSV = `id,parent_id,name,title,office,location
1,,Ada Lovelace,CEO,HQ,London
2,1,Grace Hopper,CTO,HQ,Arlington
3,1,Alan Turing,Researcher,Lab,Manchester
4,2,Linus Torvalds,Engineer,Remote,Portland
5,99,Lost Soul,Intern,,
`

// setup writes a config and a CSV into a temp dir and returns the flags
// pointing at them.
func setup(t *testing.T) (dir string, flags []string) {
	t.Helper()
	dir = t.TempDir()
	csvPath := filepath.Join(dir, "people.csv")
	if err := os.WriteFile(csvPath, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("strict: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, []string{"--config", cfgPath, "--source", csvPath}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderWritesEachFormat(t *testing.T) {
	dir, flags := setup(t)
	for _, name := range []string{"chart.svg", "chart.png", "chart.html"} {
		t.Run(name, func(t *testing.T) {
			out := filepath.Join(dir, name)
			if _, err := execute(t, append([]string{"render", "--out", out, "--expand-all"}, flags...)...); err != nil {
				t.Fatalf("render: %v", err)
			}
			info, err := os.Stat(out)
			if err != nil {
				t.Fatalf("stat: %v", err)
			}
			if info.Size() == 0 {
				t.Error("empty output")
			}
		})
	}
}

func TestRenderExpandsRequestedPeople(t *testing.T) {
	dir, flags := setup(t)
	out := filepath.Join(dir, "chart.svg")
	if _, err := execute(t, append([]string{"render", "-o", out, "--expand", "4"}, flags...)...); err != nil {
		t.Fatalf("render: %v", err)
	}
	svg, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "Linus Torvalds") {
		t.Error("revealed person missing from the chart")
	}

	if _, err := execute(t, append([]string{"render", "-o", out, "--expand", "nobody"}, flags...)...); err == nil {
		t.Error("expected an error for an unknown id")
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	dir, flags := setup(t)
	_, err := execute(t, append([]string{"render", "-o", filepath.Join(dir, "chart.gif")}, flags...)...)
	if err == nil || !strings.Contains(err.Error(), "unknown snapshot format") {
		t.Errorf("err = %v", err)
	}
}

func TestFind(t *testing.T) {
	_, flags := setup(t)
	out, err := execute(t, append([]string{"find", "linus"}, flags...)...)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !strings.HasPrefix(out, "4\tLinus Torvalds, Engineer, Remote Portland\tAda Lovelace > Grace Hopper") {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := execute(t, append([]string{"find", "zzzz"}, flags...)...); err == nil {
		t.Error("expected an error when nothing matches")
	}
}

func TestReportMarkdownAndJSON(t *testing.T) {
	dir, flags := setup(t)

	out, err := execute(t, append([]string{"report"}, flags...)...)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	for _, want := range []string{"# Org Chart Report", "## Data Quality", "```mermaid"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}

	out, err = execute(t, append([]string{"report", "--json"}, flags...)...)
	if err != nil {
		t.Fatalf("report --json: %v", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	file := filepath.Join(dir, "report.md")
	if _, err := execute(t, append([]string{"report", "-o", file}, flags...)...); err != nil {
		t.Fatalf("report -o: %v", err)
	}
	if _, err := os.Stat(file); err != nil {
		t.Errorf("report file not written: %v", err)
	}
}

func TestImportThenRenderFromSQLite(t *testing.T) {
	dir, flags := setup(t)
	db := filepath.Join(dir, "people.db")
	out, err := execute(t, append([]string{"import", db, "--gitignore"}, flags...)...)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported 5 records") {
		t.Errorf("unexpected output %q", out)
	}
	ignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil || !strings.Contains(string(ignore), "people.db") {
		t.Errorf(".gitignore not updated: %q, %v", ignore, err)
	}

	svg := filepath.Join(dir, "from-db.svg")
	_, err = execute(t, "render", "--config", flags[1], "--source", "sqlite:"+db+"?table=people", "-o", svg)
	if err != nil {
		t.Fatalf("render from sqlite: %v", err)
	}
	if _, err := os.Stat(svg); err != nil {
		t.Error(err)
	}
}

func TestSources(t *testing.T) {
	dir, _ := setup(t)
	out, err := execute(t, "sources", dir)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	if !strings.Contains(out, "people.csv") {
		t.Errorf("people.csv not listed:\n%s", out)
	}

	empty := t.TempDir()
	out, err = execute(t, "sources", empty)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No data files found") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestInitDefaults(t *testing.T) {
	_, flags := setup(t)
	target := t.TempDir()
	args := append([]string{"init", "--defaults", "--dir", target}, flags...)
	if _, err := execute(t, args...); err != nil {
		t.Fatalf("init: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(target, ".orgchart", "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "people.csv") {
		t.Errorf("source not saved:\n%s", data)
	}

	if _, err := execute(t, args...); err == nil {
		t.Error("expected refusal to overwrite")
	}
	if _, err := execute(t, append(args, "--force")...); err != nil {
		t.Errorf("--force: %v", err)
	}
}

func TestBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(cfg, []byte("card:\n  width: -5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "sources", dir, "--config", cfg)
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Errorf("err = %v", err)
	}
}
