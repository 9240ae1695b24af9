//go:build !short

package config_test

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/toolhub/ynabhub/internal/config"
	"github.com/toolhub/ynabhub/internal/tools"
)

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file location")
	}
	abs, err := filepath.Abs(filepath.Join(filepath.Dir(file), "..", ".."))
	if err != nil {
		t.Fatalf("cannot resolve repo root: %v", err)
	}
	if _, err := os.Stat(filepath.Join(abs, "README.md")); err != nil {
		t.Fatalf("repo root %q does not contain README.md", abs)
	}
	return abs
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read %s: %v", path, err)
	}
	return string(data)
}

func TestDocDrift_EnvVarsInExample(t *testing.T) {
	envExample := readFile(t, filepath.Join(repoRoot(t), ".env.example"))

	// Commented-out lines count: optional settings are documented disabled.
	reEnvLine := regexp.MustCompile(`(?m)^#?\s*([A-Z][A-Z0-9_]*)=`)
	exampleVars := make(map[string]bool)
	for _, m := range reEnvLine.FindAllStringSubmatch(envExample, -1) {
		exampleVars[m[1]] = true
	}

	var missing []string
	for _, v := range config.EnvVars() {
		if !exampleVars[v] {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		t.Errorf("env vars read by config but missing from .env.example:\n  %s",
			strings.Join(missing, "\n  "))
	}
}

func TestDocDrift_MCPToolsInREADME(t *testing.T) {
	readme := readFile(t, filepath.Join(repoRoot(t), "README.md"))

	reMCPSection := regexp.MustCompile(`(?s)## MCP Tools\n(.*?)(?:\n## |\z)`)
	sectionMatch := reMCPSection.FindStringSubmatch(readme)
	if sectionMatch == nil {
		t.Fatal("cannot find '## MCP Tools' section in README.md")
	}

	reToolInREADME := regexp.MustCompile("`(mcp_ynab_[a-z_]+)`")
	readmeTools := make(map[string]bool)
	for _, m := range reToolInREADME.FindAllStringSubmatch(sectionMatch[1], -1) {
		readmeTools[m[1]] = true
	}

	registered := make(map[string]bool)
	for _, tool := range tools.Definitions() {
		registered[tool.Name] = true
	}

	var missingInREADME, missingInRegistry []string
	for name := range registered {
		if !readmeTools[name] {
			missingInREADME = append(missingInREADME, name)
		}
	}
	for name := range readmeTools {
		if !registered[name] {
			missingInRegistry = append(missingInRegistry, name)
		}
	}
	sort.Strings(missingInREADME)
	sort.Strings(missingInRegistry)

	if len(missingInREADME) > 0 {
		t.Errorf("tools defined but missing from README:\n  %s",
			strings.Join(missingInREADME, "\n  "))
	}
	if len(missingInRegistry) > 0 {
		t.Errorf("tools listed in README but not defined:\n  %s",
			strings.Join(missingInRegistry, "\n  "))
	}
}
