// Package templates embeds the HTML views.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed html/*.tmpl
var files embed.FS

var funcMap = template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	},
	"add": func(a, b int) int {
		return a + b
	},
	"withCSRF": func(list interface{}, token string) map[string]interface{} {
		return map[string]interface{}{"List": list, "CSRFToken": token}
	},
}

// Load parses every embedded template. Pages are addressed by file name,
// e.g. "lists.tmpl".
func Load() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(files, "html/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}
