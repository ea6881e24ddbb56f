package keel

// ExtensionValidator checks that a named extension can actually be
// loaded by the consuming pipeline. A non-nil error fails validation
// of the whole extension list.
type ExtensionValidator func(name string) error

// ExtensionsOption validates a list of processing-extension names with
// optional per-extension option mappings. The coerced value is the
// ordered, de-duplicated name list; the collected option mappings are
// written to a sibling field.
type ExtensionsOption struct {
	BaseOption
	validator ExtensionValidator
	builtins  []string
	configKey string
}

// Extensions creates an extension-list option. A nil validator accepts
// every name.
func Extensions(validator ExtensionValidator) *ExtensionsOption {
	o := &ExtensionsOption{validator: validator}
	o.setDefault([]any{})
	return o
}

// WithBuiltins prepends always-enabled extensions to the configured
// list.
func (o *ExtensionsOption) WithBuiltins(names ...string) *ExtensionsOption {
	o.builtins = names
	return o
}

// WithConfigKey names the sibling field receiving the per-extension
// option mappings. The sibling is owned by this option and should be
// declared Private.
func (o *ExtensionsOption) WithConfigKey(key string) *ExtensionsOption {
	o.configKey = key
	return o
}

// WithDefault replaces the default extension list.
func (o *ExtensionsOption) WithDefault(def []any) *ExtensionsOption {
	o.setDefault(def)
	return o
}

// Coerce implements Option.
func (o *ExtensionsOption) Coerce(ctx *Context, value any) (any, error) {
	entries, err := extensionEntries(value)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(o.builtins)+len(entries))
	index := make(map[string]bool)
	add := func(name string) {
		if !index[name] {
			index[name] = true
			names = append(names, name)
		}
	}
	for _, b := range o.builtins {
		add(b)
	}

	configs := NewMapping()
	for _, entry := range entries {
		add(entry.name)
		if entry.options == nil {
			continue
		}
		om, ok := asMapping(entry.options)
		if !ok {
			return nil, errValue(CodeStructure,
				"Invalid config options for extension '%s'.", entry.name)
		}
		if om.Len() == 0 {
			continue
		}
		merged, _ := configs.MustGet(entry.name).(*Mapping)
		if merged == nil {
			merged = NewMapping()
			configs.Set(entry.name, merged)
		}
		for _, k := range om.Keys() {
			merged.Set(k, om.MustGet(k))
		}
	}

	if o.validator != nil {
		for _, name := range names {
			if err := o.validator(name); err != nil {
				return nil, errValue(CodeExternal, "Failed to load extension '%s'.\n%v", name, err)
			}
		}
	}

	if o.configKey != "" {
		ctx.Config.Set(o.configKey, configs)
	}
	return names, nil
}

type extensionEntry struct {
	name    string
	options any
}

// extensionEntries normalizes the accepted input shapes: a list of
// names or single-entry mappings, or a mapping of name to options.
func extensionEntries(value any) ([]extensionEntry, error) {
	switch v := value.(type) {
	case []any:
		entries := make([]extensionEntry, 0, len(v))
		for _, item := range v {
			switch it := item.(type) {
			case string:
				entries = append(entries, extensionEntry{name: it})
			default:
				m, ok := asMapping(it)
				if !ok || m.Len() != 1 {
					return nil, errValue(CodeStructure, "Invalid Extensions configuration")
				}
				name := m.Keys()[0]
				entries = append(entries, extensionEntry{name: name, options: m.MustGet(name)})
			}
		}
		return entries, nil
	default:
		m, ok := asMapping(value)
		if !ok {
			return nil, errValue(CodeStructure, "Invalid Extensions configuration")
		}
		entries := make([]extensionEntry, 0, m.Len())
		for _, name := range m.Keys() {
			entries = append(entries, extensionEntry{name: name, options: m.MustGet(name)})
		}
		return entries, nil
	}
}
