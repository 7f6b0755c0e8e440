package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"romnorm/internal/normalize"
	"romnorm/internal/registry"
)

// inspectInputs classifies and validates each argument as one input item.
func inspectInputs(args []string, platformID string, formats []registry.FormatDefinition) ([]normalize.Item, error) {
	items := make([]normalize.Item, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", arg, err)
		}
		items = append(items, normalize.Inspect(abs, platformID, formats))
	}
	return items, nil
}

func issueSummary(item normalize.Item) string {
	if len(item.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(item.Issues))
	for _, issue := range item.Issues {
		if issue.Message != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", issue.Code, issue.Message))
			continue
		}
		parts = append(parts, string(issue.Code))
	}
	return strings.Join(parts, "; ")
}
