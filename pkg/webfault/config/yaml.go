// yaml.go loads a MapSource from a YAML settings file.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NewYAMLSource reads a flat YAML mapping of setting name to value and
// returns a source over it. Scalar values of any YAML type are accepted;
// they are re-read with the typed getters' parsing rules.
func NewYAMLSource(path, baseDir string) (*MapSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse settings file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for key, v := range raw {
		switch typed := v.(type) {
		case nil:
			values[key] = ""
		case string:
			values[key] = typed
		default:
			values[key] = fmt.Sprint(typed)
		}
	}
	return NewMapSource(baseDir, values), nil
}
