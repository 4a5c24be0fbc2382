package widgetconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a configuration document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the document format from a file extension,
// defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseRawConfig decodes a legacy configuration document.
func ParseRawConfig(data []byte, format Format) (RawConfig, error) {
	var out map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("widgetconfig: parse yaml: %w", err)
		}
	case FormatJSON, "":
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("widgetconfig: parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("widgetconfig: unsupported format %q", format)
	}
	if out == nil {
		return nil, fmt.Errorf("widgetconfig: document is empty")
	}
	return RawConfig(out), nil
}

// LoadRawConfig reads and decodes the configuration document at path.
func LoadRawConfig(path string) (RawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("widgetconfig: read %s: %w", path, err)
	}
	return ParseRawConfig(data, FormatFromPath(path))
}

// ParseCompatibleConfig decodes a document already in canonical form, with
// the global fields at the top level next to configGroups.
func ParseCompatibleConfig(data []byte, format Format) (CompatibleConfig, map[string]any, error) {
	raw, err := ParseRawConfig(data, format)
	if err != nil {
		return CompatibleConfig{}, nil, err
	}
	doc := map[string]any(raw)
	globals, residual := Factorize(raw)
	config := CompatibleConfig{Globals: globals}
	if items, ok := asSlice(residual[FieldConfigGroups]); ok {
		for _, item := range items {
			if group, ok := asMap(item); ok {
				config.ConfigGroups = append(config.ConfigGroups, ConfigGroup(group))
			}
		}
	}
	return config, doc, nil
}
