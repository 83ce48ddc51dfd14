package manifest

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/agentx-labs/uikit/internal/schema"
)

//go:embed schema/registry-item.schema.json
var schemaBytes []byte

var itemSchema = schema.New("registry-item.schema.json", schemaBytes)

// Validate validates an item document against the registry item schema.
// YAML documents are converted to JSON first. The error return is for
// decoding or schema compilation failures.
func Validate(data []byte, format Format) (*schema.Result, error) {
	jsonData := data
	if format == FormatYAML {
		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		var err error
		jsonData, err = json.Marshal(normalizeYAML(raw))
		if err != nil {
			return nil, fmt.Errorf("converting to JSON: %w", err)
		}
	}
	return itemSchema.Validate(jsonData)
}

// ValidateFile reads a file and validates it against the item schema.
func ValidateFile(path string) (*schema.Result, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data, FormatFor(path))
}

// normalizeYAML converts YAML-decoded values into JSON-encodable ones.
// yaml.v3 decodes mappings with non-string keys as map[interface{}]interface{}.
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, v := range val {
			m[k] = normalizeYAML(v)
		}
		return m
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, v := range val {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case []interface{}:
		a := make([]interface{}, len(val))
		for i, v := range val {
			a[i] = normalizeYAML(v)
		}
		return a
	default:
		return val
	}
}
