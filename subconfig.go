package keel

// SubConfigOption validates a nested mapping against its own child
// schema, re-keying every resulting message as "Sub-option '<name>': ".
// Unknown keys are retained verbatim in the nested config; whether they
// are also reported depends on the reporting mode.
type SubConfigOption struct {
	BaseOption
	schema Schema
	report bool
}

// Sub creates a sub-config option. With a nil schema the mapping is
// accepted free-form and nothing is reported; with a schema, nested
// errors and warnings surface on the enclosing field.
func Sub(schema Schema) *SubConfigOption {
	o := &SubConfigOption{schema: schema, report: schema != nil}
	o.setDefault(NewMapping())
	return o
}

// ValidateUnknown turns on reporting even for a schema-less sub-config,
// so unrecognized keys produce a warning while still being retained.
func (o *SubConfigOption) ValidateUnknown() *SubConfigOption {
	o.report = true
	return o
}

// ChildSchema returns the nested schema (nil for free-form sub-configs).
func (o *SubConfigOption) ChildSchema() Schema { return o.schema }

func (o *SubConfigOption) coercesNull() {}

// Coerce implements Option. Explicit null input is rejected like any
// other non-mapping value; an absent field validates the schema's
// defaults through the empty-mapping default instead.
func (o *SubConfigOption) Coerce(ctx *Context, value any) (any, error) {
	m, ok := asMapping(value)
	if !ok {
		return nil, errValue(CodeStructure,
			"The configuration is invalid. Expected a key-value mapping but received: %s",
			kindName(value))
	}
	return o.validateChild(ctx, m)
}

// validateChild runs a transient nested config over the mapping and
// surfaces its findings on the enclosing field.
func (o *SubConfigOption) validateChild(ctx *Context, m *Mapping) (*Config, error) {
	child := NewConfig(o.schema).WithFilePath(ctx.FilePath())
	if err := child.Load(m); err != nil {
		return nil, errValue(CodeStructure, "%s", err.Error())
	}
	errs, warns := child.Validate()
	if o.report {
		if len(errs) > 0 {
			return nil, rekey("Sub-option '"+errs[0].Key+"': ", &valueError{
				code: errs[0].Code, msg: errs[0].Message,
			})
		}
		for _, w := range warns {
			ctx.Warn("Sub-option '" + w.Key + "': " + w.Message)
		}
	}
	return child, nil
}

// PropagatingSubConfigOption extends SubConfigOption: a top-level
// shorthand assignment is copied into every nested group that declares
// a field of that name, unless the group overrides it explicitly. The
// propagated shorthand is removed from the top level.
type PropagatingSubConfigOption struct {
	SubConfigOption
}

// Propagating creates a propagating sub-config over the given schema.
func Propagating(schema Schema) *PropagatingSubConfigOption {
	o := &PropagatingSubConfigOption{}
	o.schema = schema
	o.report = schema != nil
	o.setDefault(NewMapping())
	return o
}

// Coerce implements Option.
func (o *PropagatingSubConfigOption) Coerce(ctx *Context, value any) (any, error) {
	if m, ok := asMapping(value); ok {
		value = o.propagate(m)
	}
	return o.SubConfigOption.Coerce(ctx, value)
}

// propagate copies shorthand leaves into the nested groups that know
// them and drops the consumed shorthand keys.
func (o *PropagatingSubConfigOption) propagate(m *Mapping) *Mapping {
	out := m.Copy()
	consumed := make(map[string]bool)

	for _, group := range o.schema {
		provider, ok := group.Option.(interface{ ChildSchema() Schema })
		if !ok {
			continue
		}
		for _, leaf := range provider.ChildSchema() {
			if !out.Has(leaf.Name) {
				continue
			}
			raw := out.MustGet(group.Name)
			gv, isMapping := asMapping(raw)
			if !isMapping {
				if raw != nil {
					continue // leave the group's own type error to validation
				}
				gv = NewMapping()
			}
			if !gv.Has(leaf.Name) {
				gv.Set(leaf.Name, deepCopyValue(out.MustGet(leaf.Name)))
			}
			out.Set(group.Name, gv)
			consumed[leaf.Name] = true
		}
	}
	for k := range consumed {
		out.Delete(k)
	}
	return out
}
