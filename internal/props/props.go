// Package props loads configuration files shipped inside a project's source
// tree and caches the parsed objects.
//
// Two formats are supported: flat "key=value" properties files (the default)
// and YAML files (by .yaml/.yml suffix), which are flattened into dotted keys.
// Parsed objects are immutable from the store's point of view; every caller
// receives an independent clone.
package props

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Properties is a parsed configuration object: a flat set of string keys and
// values.
type Properties struct {
	values map[string]string
}

// New returns an empty Properties.
func New() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Load parses the file at path. Files ending in .yaml or .yml are parsed as
// YAML and flattened; everything else is parsed as key=value lines, with '#'
// line comments and blank lines ignored.
func Load(path string) (*Properties, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return loadFlat(path)
	}
}

func loadFlat(path string) (*Properties, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open properties %s: %w", path, err)
	}
	defer file.Close()

	p := New()
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return nil, fmt.Errorf("parse properties %s:%d: missing '='", path, line)
		}
		p.values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read properties %s: %w", path, err)
	}
	return p, nil
}

func loadYAML(path string) (*Properties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open properties %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml %s: %w", path, err)
	}

	p := New()
	flatten("", raw, p.values)
	return p, nil
}

// flatten turns nested YAML maps into dotted keys: {a: {b: 1}} -> "a.b"="1".
func flatten(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(full, v, out)
		case nil:
			out[full] = ""
		default:
			out[full] = fmt.Sprintf("%v", v)
		}
	}
}

// Get returns the value for a key and whether it was present.
func (p *Properties) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// GetDefault returns the value for a key, or def when absent.
func (p *Properties) GetDefault(key, def string) string {
	if v, ok := p.values[key]; ok {
		return v
	}
	return def
}

// Set stores a key/value pair.
func (p *Properties) Set(key, value string) {
	p.values[key] = value
}

// Len returns the number of keys.
func (p *Properties) Len() int {
	return len(p.values)
}

// Keys returns all keys, sorted.
func (p *Properties) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy. Mutating the clone never affects the
// original or any other clone.
func (p *Properties) Clone() *Properties {
	out := &Properties{values: make(map[string]string, len(p.values))}
	for k, v := range p.values {
		out.values[k] = v
	}
	return out
}
