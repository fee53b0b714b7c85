package rewrite

import (
	_ "embed"
	"strings"
)

//go:embed rewrite.md
var promptTemplate string

// BuildPrompt renders the rewrite instruction for one task. Placeholders are
// substituted in a single pass, so braces inside the query or answer are kept.
func BuildPrompt(query, answer string, instructions ...string) string {
	var extra []string
	for _, s := range instructions {
		if s = strings.TrimSpace(s); s != "" {
			extra = append(extra, s)
		}
	}

	section := ""
	if len(extra) > 0 {
		section = strings.Join(extra, "\n") + "\n"
	}

	r := strings.NewReplacer(
		"{{INSTRUCTIONS}}\n", section,
		"{{QUERY}}", query,
		"{{ANSWER}}", answer,
	)
	return r.Replace(promptTemplate)
}
