// Package scaffold materializes the static stack files (compose file,
// Dockerfile, Caddyfile, php.ini, .env template) from embedded templates.
//
// The templates ship inside the binary so a bare "laraup up" in an empty
// directory produces a complete, buildable stack. Existing files are
// never overwritten: once materialized they belong to the operator, and
// local edits must survive re-runs.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"
)

//go:embed templates
var templates embed.FS

// Data parameterizes the embedded templates.
type Data struct {
	// AppMount is the host path of the Laravel source tree as the
	// application container mounts it, relative to the stack directory
	// where possible so the stack stays relocatable.
	AppMount string
}

// files maps embedded template names to their on-disk names inside the
// stack directory. env.example is stored without the leading dot because
// go:embed skips dotfiles.
var files = map[string]string{
	"docker-compose.yml": "docker-compose.yml",
	"Dockerfile":         "Dockerfile",
	"Caddyfile":          "Caddyfile",
	"php.ini":            "php.ini",
	"env.example":        ".env.example",
}

// Materialize writes any missing stack files into dir, creating it if
// needed. Returns the names of the files actually written, sorted.
func Materialize(dir string, data Data) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create stack directory %s: %w", dir, err)
	}

	var written []string
	for src, dst := range files {
		target := filepath.Join(dir, dst)
		if _, err := os.Stat(target); err == nil {
			continue
		}

		content, err := render(src, data)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(target, content, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", target, err)
		}
		written = append(written, dst)
	}

	sort.Strings(written)
	return written, nil
}

// render executes one embedded template against data. Templates without
// directives pass through unchanged.
func render(name string, data Data) ([]byte, error) {
	raw, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("embedded template %s missing: %w", name, err)
	}

	tmpl, err := template.New(name).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("embedded template %s is invalid: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
