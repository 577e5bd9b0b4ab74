package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/conditions"
)

// loadVars loads variables from a file, choosing the format by extension.
// Supported extensions: .yaml, .yml, .json
func loadVars(path string) (map[string]conditions.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vars file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return varsFromYAML(data)
	case ".json":
		return varsFromJSON(data)
	default:
		return nil, fmt.Errorf("unsupported vars file extension: %q", ext)
	}
}

// varsFromYAML parses a YAML mapping of variable names to scalars.
func varsFromYAML(data []byte) (map[string]conditions.Value, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return toValues(m)
}

// varsFromJSON parses a JSON object of variable names to scalars. Numbers
// without a fraction or exponent become ints.
func varsFromJSON(data []byte) (map[string]conditions.Value, error) {
	var m map[string]any
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()
	if err := d.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	for k, v := range m {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			m[k] = i
			continue
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", k, err)
		}
		m[k] = f
	}
	return toValues(m)
}

// toValues converts decoded variables. Null entries are left unbound.
func toValues(m map[string]any) (map[string]conditions.Value, error) {
	r := make(map[string]conditions.Value, len(m))
	for k, x := range m {
		if x == nil {
			continue
		}
		v, err := conditions.ValueOf(x)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", k, err)
		}
		r[k] = v
	}
	return r, nil
}
