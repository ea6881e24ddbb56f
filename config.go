package keel

import (
	"fmt"
)

// Field pairs a configuration key with the option validating it.
type Field struct {
	Name   string
	Option Option
}

// Schema is the ordered field list defining a config's shape.
type Schema []Field

// Extend composes a derived schema from a parent: the parent's order is
// kept, same-named fields are replaced in place, and new fields are
// appended. This is the explicit substitute for inheritance chains.
func Extend(parent Schema, fields ...Field) Schema {
	out := make(Schema, len(parent))
	copy(out, parent)
	for _, f := range fields {
		replaced := false
		for i := range out {
			if out[i].Name == f.Name {
				out[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, f)
		}
	}
	return out
}

// Origin records where a resolved value came from.
type Origin int

const (
	// OriginUnset means the field has no value from any source.
	OriginUnset Origin = iota
	// OriginDefault means the schema default was applied.
	OriginDefault
	// OriginDocument means the loaded document supplied the value.
	OriginDocument
	// OriginMigrated means a deprecated field's value was moved here.
	OriginMigrated
)

// Config is an ordered named collection of options forming a schema.
// Once loaded and validated it also holds the resolved values and is
// usable as an ordered string-keyed mapping.
//
// A Config is single-threaded: construct, load, validate, read.
// Validate always starts from the loaded document, so validating a
// Config (or a Copy of it) repeatedly yields identical outcomes.
type Config struct {
	schema   Schema
	filePath string

	loaded  *Mapping // raw document as loaded, never mutated by validation
	values  *Mapping // resolved values of the latest validation pass
	origins map[string]Origin
}

// NewConfig creates a Config over the given schema.
func NewConfig(schema Schema) *Config {
	return &Config{
		schema:  schema,
		loaded:  NewMapping(),
		values:  NewMapping(),
		origins: make(map[string]Origin),
	}
}

// WithFilePath records the location of the config document so that
// relative filesystem fields and hook paths can be resolved against it.
func (c *Config) WithFilePath(path string) *Config {
	c.filePath = path
	return c
}

// FilePath returns the config document location, or "".
func (c *Config) FilePath() string { return c.filePath }

// Schema returns the config's schema.
func (c *Config) Schema() Schema { return c.schema }

// Load merges a raw document into the config. Later loads override
// earlier keys. The document must be mapping-shaped.
func (c *Config) Load(doc any) error {
	m, ok := asMapping(doc)
	if !ok {
		return fmt.Errorf("keel: cannot load %s document, expected a mapping", kindName(doc))
	}
	for _, k := range m.Keys() {
		c.loaded.Set(k, deepCopyValue(m.MustGet(k)))
	}
	return nil
}

// Validate runs the two-phase validation pass over the loaded document
// and returns the ordered error and warning lists. One field's failure
// never blocks sibling fields; post-validation runs only when no errors
// were collected, so cross-field checks observe fully-coerced siblings.
func (c *Config) Validate() (errs, warns []Issue) {
	// Fresh value set: defaults in schema order, then the document.
	c.values = NewMapping()
	c.origins = make(map[string]Origin)
	for _, f := range c.schema {
		if d, ok := f.Option.Default(); ok {
			c.values.Set(f.Name, deepCopyValue(d))
			c.origins[f.Name] = OriginDefault
		} else {
			c.values.Set(f.Name, nil)
			c.origins[f.Name] = OriginUnset
		}
	}
	for _, k := range c.loaded.Keys() {
		c.values.Set(k, deepCopyValue(c.loaded.MustGet(k)))
		c.origins[k] = OriginDocument
	}

	failed := make(map[string]bool)
	record := func(key string, err error) {
		errs = append(errs, Issue{Key: key, Code: codeOf(err), Message: err.Error()})
		failed[key] = true
	}
	fieldContext := func(name string) *Context {
		return &Context{
			Config: c,
			Key:    name,
			warn: func(message string) {
				warns = append(warns, Issue{Key: name, Message: message})
			},
		}
	}

	for _, f := range c.schema {
		if err := f.Option.PreValidate(fieldContext(f.Name)); err != nil {
			record(f.Name, err)
		}
	}

	for _, f := range c.schema {
		if failed[f.Name] {
			continue
		}
		value, err := resolveOption(f.Option, fieldContext(f.Name), c.values.MustGet(f.Name))
		if err != nil {
			record(f.Name, err)
			continue
		}
		c.values.Set(f.Name, value)
	}

	for _, k := range c.loaded.Keys() {
		if !c.inSchema(k) {
			warns = append(warns, Issue{Key: k, Message: "Unrecognised configuration name: " + k})
		}
	}

	if len(errs) == 0 {
		for _, f := range c.schema {
			if err := f.Option.PostValidate(fieldContext(f.Name)); err != nil {
				record(f.Name, err)
			}
		}
	}

	return errs, warns
}

// Check validates and converts any failures into a single error value.
func (c *Config) Check() error {
	errs, _ := c.Validate()
	if len(errs) > 0 {
		return &ValidationError{Issues: errs}
	}
	return nil
}

func (c *Config) inSchema(key string) bool {
	for _, f := range c.schema {
		if f.Name == key {
			return true
		}
	}
	return false
}

// Get returns the resolved value for key (nil when null or unknown).
func (c *Config) Get(key string) any {
	return c.values.MustGet(key)
}

// GetOK returns the resolved value for key and whether it exists.
func (c *Config) GetOK(key string) (any, bool) {
	return c.values.Get(key)
}

// Set overwrites a resolved value. Options use this from their phases
// (deprecation moves, hook insertion); callers rarely need it.
func (c *Config) Set(key string, value any) {
	c.values.Set(key, value)
}

// Keys returns the resolved field names in order: schema fields first,
// then retained unknown document keys.
func (c *Config) Keys() []string {
	return c.values.Keys()
}

// Resolved returns the live resolved-value mapping.
func (c *Config) Resolved() *Mapping {
	return c.values
}

// Origin reports where the current raw value of key came from.
func (c *Config) Origin(key string) Origin {
	return c.origins[key]
}

// Copy returns a deep copy sharing no mutable containers with c. The
// schema is shared; it is immutable after construction.
func (c *Config) Copy() *Config {
	out := &Config{
		schema:   c.schema,
		filePath: c.filePath,
		loaded:   c.loaded.Copy(),
		values:   c.values.Copy(),
		origins:  make(map[string]Origin, len(c.origins)),
	}
	for k, v := range c.origins {
		out.origins[k] = v
	}
	return out
}

// Dump flattens the resolved values into a map of dot-separated key
// paths, for debug output and snapshotting.
func (c *Config) Dump() map[string]any {
	out := make(map[string]any)
	dumpInto(out, "", c.values)
	return out
}

func dumpInto(out map[string]any, prefix string, m *Mapping) {
	for _, k := range m.Keys() {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch v := m.MustGet(k).(type) {
		case *Mapping:
			dumpInto(out, path, v)
		case *Config:
			dumpInto(out, path, v.values)
		default:
			out[path] = v
		}
	}
}
