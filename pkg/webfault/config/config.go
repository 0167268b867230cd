// Package config provides ConfigurationSource implementations for the
// webfault pipeline: an in-memory map, a YAML file loader, and an
// environment-variable loader.
package config

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oversite/web-fault-observe/pkg/webfault"
)

// MapSource resolves settings from an in-memory map of raw string values.
// It is the backing store for the YAML loader and the natural test double.
type MapSource struct {
	baseDir string
	values  map[string]string
}

var _ webfault.ConfigurationSource = (*MapSource)(nil)

// NewMapSource creates a source over the given values. Relative paths
// returned by GetPath are resolved against baseDir.
func NewMapSource(baseDir string, values map[string]string) *MapSource {
	if values == nil {
		values = map[string]string{}
	}
	return &MapSource{baseDir: baseDir, values: values}
}

// GetString returns the named value, or def when absent.
func (s *MapSource) GetString(key, def string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// GetBool returns the named value, or def when absent or unparseable.
func (s *MapSource) GetBool(key string, def bool) bool {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return parsed
}

// GetInt returns the named value, or def when absent or unparseable.
func (s *MapSource) GetInt(key string, def int) int {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return parsed
}

// GetPath returns the named value resolved as a path: a leading "~/" prefix
// is stripped, then relative paths are resolved against the base directory.
// Absent keys and empty values return "".
func (s *MapSource) GetPath(key string) string {
	return ResolvePath(s.baseDir, s.values[key])
}

// ResolvePath applies the path resolution rules to a raw configured value.
func ResolvePath(baseDir, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	raw = strings.TrimPrefix(raw, "~/")
	if filepath.IsAbs(raw) {
		return raw
	}
	return filepath.Join(baseDir, raw)
}
