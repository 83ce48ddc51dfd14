package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Format identifies the encoding of an item document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks a format from a file extension; anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes an item document. name is used only in error messages.
func Parse(data []byte, format Format, name string) (*Item, error) {
	item, err := parseTyped[Item](data, format, name)
	if err != nil {
		return nil, err
	}
	if item.Name == "" {
		return nil, fmt.Errorf("parsing item %s: missing required 'name' field", name)
	}
	if item.Type == "" {
		return nil, fmt.Errorf("parsing item %s: missing required 'type' field", name)
	}
	return item, nil
}

// ParseFile reads and decodes an item file, choosing the format by extension.
func ParseFile(path string) (*Item, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, FormatFor(path), path)
}

// ParseIndex decodes a registry index document.
func ParseIndex(data []byte, format Format, name string) (Index, error) {
	idx, err := parseTyped[Index](data, format, name)
	if err != nil {
		return nil, err
	}
	return *idx, nil
}

// parseTyped unmarshals data into T using the requested format.
func parseTyped[T any](data []byte, format Format, name string) (*T, error) {
	var v T
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &v)
	default:
		err = json.Unmarshal(data, &v)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing item %s: %w", name, err)
	}
	return &v, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
