package clone

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromFile reads a single Persona from a YAML file.
func LoadFromFile(path string) (*Persona, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("read persona file %s: %w", path, err)
	}

	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse persona file %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validate persona file %s: %w", path, err)
	}

	return &p, nil
}

// LoadCatalog returns the built-in personas overridden by every .yaml/.yml
// file in dir. An empty or missing directory yields the built-ins.
func LoadCatalog(dir string) (Catalog, error) {
	catalog := BuiltinPersonas()
	if dir == "" {
		return catalog, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return catalog, nil
		}
		return nil, fmt.Errorf("read persona directory %s: %w", dir, err)
	}

	var overrides []Persona
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		p, err := LoadFromFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, *p)
	}

	return catalog.Merge(overrides), nil
}
