package core

import (
	"fmt"
	"sort"
	"strings"
)

// Policy enforces the tool allowlist and read-only mode. An empty allowlist
// enables every tool.
type Policy struct {
	allowedTools map[string]bool
	readOnly     bool
}

// NewPolicy creates a Policy from a comma-separated tool allowlist.
func NewPolicy(toolCSV string, readOnly bool) *Policy {
	return &Policy{
		allowedTools: parseCSV(toolCSV),
		readOnly:     readOnly,
	}
}

// PolicyError explains why a tool was refused.
type PolicyError struct {
	Tool   string
	Code   string
	Reason string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("tool %q %s", e.Tool, e.Reason)
}

func (e *PolicyError) ErrorCode() string {
	return e.Code
}

// CheckTool returns a *PolicyError if toolName may not run. readOnly says
// whether the tool only reads upstream data.
func (p *Policy) CheckTool(toolName string, readOnly bool) error {
	if len(p.allowedTools) > 0 && !p.allowedTools[toolName] {
		return &PolicyError{Tool: toolName, Code: "tool_not_allowed", Reason: "not in allowlist"}
	}
	if p.readOnly && !readOnly {
		return &PolicyError{Tool: toolName, Code: "read_only", Reason: "is disabled in read-only mode"}
	}
	return nil
}

func (p *Policy) ReadOnly() bool {
	return p.readOnly
}

// AllowedTools returns the allowlist sorted, or nil when every tool is
// allowed.
func (p *Policy) AllowedTools() []string {
	if len(p.allowedTools) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.allowedTools))
	for name := range p.allowedTools {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func parseCSV(s string) map[string]bool {
	m := make(map[string]bool)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			m[item] = true
		}
	}
	return m
}
