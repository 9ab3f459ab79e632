// Package render resolves {{name}} placeholders in message templates.
package render

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {{identifier}} tokens. The identifier is one
// or more non-brace characters.
var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Substitute replaces every {{key}} occurrence in template with its value
// from vars. Unknown keys are left as literal tokens. The template is
// scanned exactly once: substituted values are never re-scanned, so a
// value containing a placeholder token survives verbatim.
func Substitute(template string, vars map[string]string) string {
	if template == "" || len(vars) == 0 {
		return template
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := strings.TrimSuffix(strings.TrimPrefix(token, "{{"), "}}")
		if value, ok := vars[key]; ok {
			return value
		}
		return token
	})
}
