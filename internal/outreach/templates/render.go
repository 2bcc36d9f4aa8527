// Package templates substitutes lead merge tags into email copy.
package templates

import "strings"

// Fields are the lead attributes the renderer knows about.
type Fields struct {
	FirstName string
	LastName  string
	Company   string
	Email     string
}

// Render replaces the four supported merge tags with the lead's values,
// empty string when unset. Unknown tags are left verbatim. An empty
// template renders to an empty string.
func Render(template string, f Fields) string {
	if template == "" {
		return ""
	}

	replacer := strings.NewReplacer(
		"{{first_name}}", f.FirstName,
		"{{last_name}}", f.LastName,
		"{{company}}", f.Company,
		"{{email}}", f.Email,
	)
	return replacer.Replace(template)
}
