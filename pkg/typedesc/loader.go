package typedesc

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type documentFile struct {
	Types []Declaration `json:"types" yaml:"types"`
}

// LoadFS walks fsys and registers every type declared in JSON or YAML files.
// A nil fsys yields an empty registry.
func LoadFS(fsys fs.FS) (*Registry, error) {
	registry, _ := NewRegistry()
	if fsys == nil {
		return registry, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDescriptionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("typedesc: read %s: %w", path, err)
		}
		return registerDocument(registry, data, path)
	})
	if err != nil {
		return nil, err
	}
	return registry, nil
}

// Parse decodes a single JSON or YAML document into a registry.
func Parse(data []byte, source string) (*Registry, error) {
	registry, _ := NewRegistry()
	if err := registerDocument(registry, data, source); err != nil {
		return nil, err
	}
	return registry, nil
}

func registerDocument(registry *Registry, data []byte, source string) error {
	doc, err := parseDocument(data, source)
	if err != nil {
		return err
	}
	for _, decl := range doc.Types {
		if strings.TrimSpace(decl.Name) == "" {
			return fmt.Errorf("typedesc: file %s declares a type without a name", source)
		}
		if err := registry.Register(decl); err != nil {
			return fmt.Errorf("%w (file %s)", err, source)
		}
	}
	return nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("typedesc: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("typedesc: parse %s: invalid JSON or YAML", source)
}

func isDescriptionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
