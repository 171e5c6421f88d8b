package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"govsupport-chatbot/pkg/registry"
)

// scaffold is the data every template sees.
type scaffold struct {
	Dir         string
	PackageName string
	TaskType    string
	DisplayName string
	Description string
	Timeout     string
	Input       []field
	Output      []field
	ErrorCodes  []string
}

type field struct {
	Name string
	Type string
	Tag  string
}

var initialisms = map[string]string{"id": "ID", "url": "URL", "api": "API", "json": "JSON"}

// Generate writes config.go, models.go, handler.go and handler_test.go
// for a under root/<category>/<id> and returns the written paths.
// Existing files are left alone unless force is set.
func Generate(a registry.Activity, root string, force bool) ([]string, error) {
	if a.ID == "" || a.TaskType == "" || a.Category == "" {
		return nil, fmt.Errorf("activity needs id, taskType and category")
	}

	d, err := a.TimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("activity %s: invalid timeout %q: %w", a.ID, a.Timeout, err)
	}
	timeout := "10 * time.Second"
	if d > 0 {
		timeout = durationLiteral(d)
	}

	group := string(a.Category)
	dir := filepath.Join(root, group, a.ID)
	data := scaffold{
		Dir:         filepath.ToSlash(filepath.Join("internal/workers", group, a.ID)),
		PackageName: strings.ReplaceAll(a.ID, "-", ""),
		TaskType:    a.TaskType,
		DisplayName: a.DisplayName,
		Description: a.Description,
		Timeout:     timeout,
		Input:       fieldsFromSchema(a.InputSchema),
		Output:      fieldsFromSchema(a.OutputSchema),
		ErrorCodes:  a.ErrorCodes,
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil && !force {
			return written, fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		src, err := render(name, templates[name], data)
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func render(name, text string, data scaffold) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", name, err)
	}
	return src, nil
}

// fieldsFromSchema maps a flat {"name": "jsonType"} schema to struct
// fields in name order.
func fieldsFromSchema(schema registry.FieldTypes) []field {
	names := schema.Names()
	fields := make([]field, 0, len(names))
	for _, k := range names {
		fields = append(fields, field{
			Name: exportedName(k),
			Type: goType(schema[k]),
			Tag:  fmt.Sprintf("`json:\"%s\"`", k),
		})
	}
	return fields
}

func goType(jsonType string) string {
	switch jsonType {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "array":
		return "[]interface{}"
	case "object":
		return "map[string]interface{}"
	default:
		return "interface{}"
	}
}

// exportedName turns userId or user_id into UserID.
func exportedName(key string) string {
	var parts []string
	start := 0
	for i, r := range key {
		switch {
		case r == '_' || r == '-':
			parts = append(parts, key[start:i])
			start = i + 1
		case r >= 'A' && r <= 'Z' && i > start:
			parts = append(parts, key[start:i])
			start = i
		}
	}
	parts = append(parts, key[start:])

	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if up, ok := initialisms[strings.ToLower(p)]; ok {
			b.WriteString(up)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}

func durationLiteral(d time.Duration) string {
	switch {
	case d%time.Minute == 0:
		return fmt.Sprintf("%d * time.Minute", d/time.Minute)
	case d%time.Second == 0:
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	default:
		return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
	}
}
