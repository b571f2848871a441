package envserver

import (
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
)

//go:embed templates/environment.js.tmpl
var templatesFS embed.FS

func loadTemplate() (*template.Template, error) {
	b, err := templatesFS.ReadFile("templates/environment.js.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read embedded environment template: %w", err)
	}
	t, err := template.New("environment.js.tmpl").
		Option("missingkey=error").
		Funcs(template.FuncMap{"json": jsString}).
		Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("parse embedded environment template: %w", err)
	}
	return t, nil
}

// jsString quotes s as a JSON string, which is also a valid JS literal.
func jsString(s string) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
