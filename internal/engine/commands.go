package engine

import "strings"

// CommandCandidate is one quick-action from the fixed catalog.
type CommandCandidate struct {
	ID          string
	Description string
}

// CommandCatalog is the fixed set of quick-actions. Filtering is local and
// synchronous, so the command picker never waits on a data source.
var CommandCatalog = []CommandCandidate{
	{ID: "explain", Description: "explain the selected code"},
	{ID: "fix", Description: "fix the reported problem"},
	{ID: "refactor", Description: "refactor for clarity"},
	{ID: "test", Description: "write tests"},
	{ID: "doc", Description: "write documentation"},
	{ID: "optimize", Description: "improve performance"},
	{ID: "security", Description: "review for vulnerabilities"},
	{ID: "review", Description: "code review"},
	{ID: "convert", Description: "convert to another language"},
}

// FilterCommands returns catalog entries whose id contains query,
// case-insensitively. An empty query returns the whole catalog.
func FilterCommands(query string) []CommandCandidate {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return append([]CommandCandidate(nil), CommandCatalog...)
	}
	var out []CommandCandidate
	for _, c := range CommandCatalog {
		if strings.Contains(strings.ToLower(c.ID), query) {
			out = append(out, c)
		}
	}
	return out
}
