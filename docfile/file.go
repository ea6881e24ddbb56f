package docfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/keelconf/keel"
)

// Options configures document loading behavior.
type Options struct {
	// Format: "yaml", "json", or "toml". Auto-detected from extension if empty.
	Format string

	// Required: if true, missing files cause an error. Default: false
	// (returns an empty document).
	Required bool
}

// Load reads and parses the file into an ordered document tree.
func Load(path string, opts Options) (*keel.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if opts.Required {
				return nil, fmt.Errorf("required config file not found: %s: %w", path, err)
			}
			return keel.NewMapping(), nil
		}
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	format := opts.Format
	if format == "" {
		format = inferFormat(path)
		if format == "" {
			return nil, fmt.Errorf("unsupported file format: %s (supported: yaml, json, toml)", filepath.Ext(path))
		}
	}

	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s file %s: %w", strings.ToUpper(format), path, err)
	}
	return doc, nil
}

// Parse decodes raw document bytes of the given format.
func Parse(data []byte, format string) (*keel.Mapping, error) {
	switch format {
	case "yaml", "yml":
		return parseYAML(data)
	case "json":
		return parseJSON(data)
	case "toml":
		return parseTOML(data)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: yaml, json, toml)", format)
	}
}

func parseYAML(data []byte) (*keel.Mapping, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return keel.NewMapping(), nil
	}
	top, err := fromYAML(root.Content[0])
	if err != nil {
		return nil, err
	}
	m, ok := top.(*keel.Mapping)
	if !ok {
		return nil, fmt.Errorf("top-level document is not a key-value mapping")
	}
	return m, nil
}

// fromYAML converts a document node tree, keeping mapping key order.
func fromYAML(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		m := keel.NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			var key string
			if err := keyNode.Decode(&key); err != nil {
				return nil, fmt.Errorf("line %d: mapping key is not a string", keyNode.Line)
			}
			val, err := fromYAML(valNode)
			if err != nil {
				return nil, err
			}
			m.Set(key, val)
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			val, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func parseJSON(data []byte) (*keel.Mapping, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON document")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("top-level document is not a key-value mapping")
	}
	m, _ := fromJSON(root).(*keel.Mapping)
	return m, nil
}

// fromJSON converts a parsed result, keeping object key order.
func fromJSON(r gjson.Result) any {
	switch {
	case r.IsObject():
		m := keel.NewMapping()
		r.ForEach(func(k, v gjson.Result) bool {
			m.Set(k.String(), fromJSON(v))
			return true
		})
		return m
	case r.IsArray():
		items := r.Array()
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, fromJSON(item))
		}
		return out
	default:
		switch r.Type {
		case gjson.True:
			return true
		case gjson.False:
			return false
		case gjson.String:
			return r.String()
		case gjson.Number:
			if f := r.Float(); f == float64(int(f)) {
				return int(f)
			}
			return r.Float()
		default:
			return nil
		}
	}
}

func parseTOML(data []byte) (*keel.Mapping, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return fromTOML(raw), nil
}

// fromTOML normalizes a decoded table into a mapping with sorted keys.
func fromTOML(raw map[string]any) *keel.Mapping {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := keel.NewMapping()
	for _, k := range keys {
		m.Set(k, normalizeTOML(raw[k]))
	}
	return m
}

func normalizeTOML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return fromTOML(t)
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			out = append(out, normalizeTOML(item))
		}
		return out
	case int64:
		return int(t)
	default:
		return v
	}
}

func inferFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}
