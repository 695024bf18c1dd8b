package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
)

// Renderer turns a view struct into a response
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data interface{}) error
}

// TemplateRenderer executes named html templates
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer creates a renderer over parsed templates
func NewTemplateRenderer(templates *template.Template) *TemplateRenderer {
	return &TemplateRenderer{templates: templates}
}

// Render executes into a buffer first so a template error never sends a partial page
func (t *TemplateRenderer) Render(w http.ResponseWriter, status int, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := t.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// JSONRenderer writes the view struct as JSON, for API clients and tests
type JSONRenderer struct{}

func (JSONRenderer) Render(w http.ResponseWriter, status int, _ string, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}
