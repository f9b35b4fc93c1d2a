package ai

import (
	_ "embed"
	"fmt"
	"strings"

	"newsdesk/internal/domain/site"
)

//go:embed styleguide.md
var styleGuide string

// SystemPrompt is the style guide followed by what the model should know about this deployment.
func SystemPrompt(cfg site.SiteConfig) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(styleGuide))
	b.WriteString("\n\nSite: ")
	b.WriteString(cfg.SiteName)
	if cfg.Tagline != "" {
		fmt.Fprintf(&b, " (%s)", cfg.Tagline)
	}
	if len(cfg.Categories) > 0 {
		b.WriteString("\nCategories: ")
		b.WriteString(strings.Join(cfg.Categories, ", "))
	}
	return b.String()
}

// splitDraft takes the first level-one heading as the headline. Without one, the first
// non-empty line is used.
func splitDraft(markdown string) (title, body string) {
	lines := strings.Split(strings.TrimSpace(markdown), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		rest := strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		if h, ok := strings.CutPrefix(trimmed, "# "); ok {
			return strings.TrimSpace(h), rest
		}
		return strings.Trim(trimmed, "#* "), rest
	}
	return "", ""
}
