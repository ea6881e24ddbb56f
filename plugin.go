package keel

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Plugin is one installed extension point instance. Each instance owns
// a validated config of its declared schema.
type Plugin interface {
	// ConfigSchema declares the plugin's own option schema. A nil
	// schema means the plugin accepts no options of its own.
	ConfigSchema() Schema

	// SetConfig hands the plugin its validated config.
	SetConfig(cfg *Config)
}

// MultiInstance is implemented by plugins that may be listed more than
// once; each occurrence then becomes a separate instance.
type MultiInstance interface {
	SupportsMultipleInstances() bool
}

// Callback handles one lifecycle event.
type Callback func(payload any) (any, error)

// EventListener is implemented by plugins that subscribe to lifecycle
// events by name.
type EventListener interface {
	Callbacks() map[string]Callback
}

// Registry resolves installed plugin names to constructors.
type Registry interface {
	Lookup(name string) (func() Plugin, bool)
}

// MapRegistry is a Registry backed by a plain map.
type MapRegistry map[string]func() Plugin

func (r MapRegistry) Lookup(name string) (func() Plugin, bool) {
	ctor, ok := r[name]
	return ctor, ok
}

// PluginCollection holds resolved plugin instances in load order.
type PluginCollection struct {
	names []string
	items map[string]Plugin
}

// NewPluginCollection creates an empty collection.
func NewPluginCollection() *PluginCollection {
	return &PluginCollection{items: make(map[string]Plugin)}
}

// Add appends an instance under its resolved name.
func (pc *PluginCollection) Add(name string, p Plugin) {
	if _, ok := pc.items[name]; !ok {
		pc.names = append(pc.names, name)
	}
	pc.items[name] = p
}

// Get returns the instance registered under name.
func (pc *PluginCollection) Get(name string) (Plugin, bool) {
	p, ok := pc.items[name]
	return p, ok
}

// Names returns the instance names in load order.
func (pc *PluginCollection) Names() []string {
	out := make([]string, len(pc.names))
	copy(out, pc.names)
	return out
}

// Len returns the number of instances.
func (pc *PluginCollection) Len() int { return len(pc.names) }

// Copy returns a collection holding the same instances under the same
// names; the containers are independent, the instances are shared.
func (pc *PluginCollection) Copy() *PluginCollection {
	out := NewPluginCollection()
	for _, name := range pc.names {
		out.Add(name, pc.items[name])
	}
	return out
}

// Events aggregates the callbacks of every listening instance, keyed
// by event name, in load order.
func (pc *PluginCollection) Events() map[string][]Callback {
	events := make(map[string][]Callback)
	for _, name := range pc.names {
		l, ok := pc.items[name].(EventListener)
		if !ok {
			continue
		}
		for event, cb := range l.Callbacks() {
			events[event] = append(events[event], cb)
		}
	}
	return events
}

// PluginsOption resolves a list or mapping of plugin names against a
// registry, validates each plugin's own options, and produces a
// PluginCollection.
type PluginsOption struct {
	BaseOption
	registry Registry
	themeKey string
	logger   zerolog.Logger
}

// Plugins creates a plugin-list option resolving names against reg.
func Plugins(reg Registry) *PluginsOption {
	return &PluginsOption{
		BaseOption: requiredBase(),
		registry:   reg,
		logger:     zerolog.Nop(),
	}
}

// WithThemeKey names a sibling field whose value namespaces plugin
// lookups: an unqualified name is first tried as "<theme>/<name>".
func (o *PluginsOption) WithThemeKey(key string) *PluginsOption {
	o.themeKey = key
	return o
}

// WithDefault sets the plugin list applied when the field is absent or
// null.
func (o *PluginsOption) WithDefault(def []any) *PluginsOption {
	o.setDefault(def)
	return o
}

// WithLogger routes resolution tracing to the given logger.
func (o *PluginsOption) WithLogger(logger zerolog.Logger) *PluginsOption {
	o.logger = logger
	return o
}

// Coerce implements Option.
func (o *PluginsOption) Coerce(ctx *Context, value any) (any, error) {
	entries, err := pluginEntries(value)
	if err != nil {
		return nil, err
	}

	collection := NewPluginCollection()
	seen := make(map[string]int)
	for _, entry := range entries {
		name, plugin, err := o.load(ctx, entry.name, entry.options)
		if err != nil {
			return nil, err
		}

		seen[name]++
		if n := seen[name]; n > 1 {
			if m, ok := plugin.(MultiInstance); !ok || !m.SupportsMultipleInstances() {
				ctx.Warn(fmt.Sprintf(
					"Plugin '%s' was specified multiple times - this is likely a mistake, "+
						"because the plugin doesn't declare `supports_multiple_instances`.", name))
			}
			name = fmt.Sprintf("%s #%d", name, n)
		}
		collection.Add(name, plugin)
	}
	return collection, nil
}

type pluginEntry struct {
	name    string
	options any
}

// pluginEntries normalizes the two accepted input shapes into an
// ordered (name, options) list.
func pluginEntries(value any) ([]pluginEntry, error) {
	switch v := value.(type) {
	case []any:
		entries := make([]pluginEntry, 0, len(v))
		for _, item := range v {
			switch it := item.(type) {
			case string:
				entries = append(entries, pluginEntry{name: it})
			default:
				m, ok := asMapping(it)
				if !ok {
					return nil, errValue(CodeStructure, "'%s' is not a valid plugin name.", formatValue(item))
				}
				if m.Len() != 1 {
					return nil, errValue(CodeStructure, "Invalid Plugins configuration")
				}
				name := m.Keys()[0]
				entries = append(entries, pluginEntry{name: name, options: m.MustGet(name)})
			}
		}
		return entries, nil
	default:
		m, ok := asMapping(value)
		if !ok {
			return nil, errValue(CodeStructure, "Invalid Plugins configuration. Expected a list or dict.")
		}
		entries := make([]pluginEntry, 0, m.Len())
		for _, name := range m.Keys() {
			entries = append(entries, pluginEntry{name: name, options: m.MustGet(name)})
		}
		return entries, nil
	}
}

// load resolves one plugin name, instantiates it and validates its
// options against the plugin's own schema.
func (o *PluginsOption) load(ctx *Context, name string, options any) (string, Plugin, error) {
	resolved, ctor, err := o.resolve(ctx, name)
	if err != nil {
		return "", nil, err
	}
	o.logger.Debug().Str("plugin", resolved).Msg("loading plugin")

	plugin := ctor()
	cfg := NewConfig(plugin.ConfigSchema()).WithFilePath(ctx.FilePath())

	if options != nil {
		om, ok := asMapping(options)
		if !ok {
			return "", nil, errValue(CodeStructure, "Invalid config options for the '%s' plugin.", name)
		}
		if err := cfg.Load(om); err != nil {
			return "", nil, errValue(CodeStructure, "Invalid config options for the '%s' plugin.", name)
		}
	}

	errs, warns := cfg.Validate()
	for _, w := range warns {
		ctx.Warn(fmt.Sprintf("Plugin '%s' option '%s': %s", resolved, w.Key, w.Message))
	}
	if len(errs) > 0 {
		e := errs[0]
		return "", nil, errValue(codeOrStructure(e.Code),
			"Plugin '%s' option '%s': %s", resolved, e.Key, e.Message)
	}

	plugin.SetConfig(cfg)
	return resolved, plugin, nil
}

// resolve maps a configured name to an installed plugin constructor.
// A leading "/" pins the lookup to the bare name; otherwise an
// unqualified name is first tried under the active theme's namespace.
func (o *PluginsOption) resolve(ctx *Context, name string) (string, func() Plugin, error) {
	if stripped, ok := strings.CutPrefix(name, "/"); ok {
		ctor, found := o.registry.Lookup(stripped)
		if !found {
			return "", nil, errValue(CodeNamespace, "The %q plugin is not installed", stripped)
		}
		return stripped, ctor, nil
	}

	if theme := o.themeName(ctx); theme != "" && !strings.Contains(name, "/") {
		namespaced := theme + "/" + name
		if ctor, found := o.registry.Lookup(namespaced); found {
			return namespaced, ctor, nil
		}
	}

	ctor, found := o.registry.Lookup(name)
	if !found {
		return "", nil, errValue(CodeNamespace, "The %q plugin is not installed", name)
	}
	return name, ctor, nil
}

// themeName reads the sibling theme field, which may be a plain name or
// a mapping with a "name" entry.
func (o *PluginsOption) themeName(ctx *Context) string {
	if o.themeKey == "" {
		return ""
	}
	switch v := ctx.Config.Get(o.themeKey).(type) {
	case string:
		return v
	default:
		m, ok := asMapping(v)
		if !ok {
			return ""
		}
		name, _ := m.MustGet("name").(string)
		return name
	}
}

func codeOrStructure(code string) string {
	if code == "" {
		return CodeStructure
	}
	return code
}
