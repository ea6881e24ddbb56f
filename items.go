package keel

import (
	"fmt"
	"sort"
)

// runItem validates one element of a composite option through all three
// phases, using a transient single-field config so the item option can
// resolve relative paths and read its own value the same way it would at
// the top level. The item option's required/default gate is bypassed:
// elements are validated as given, so a nil element reaches Coerce
// unless the item option is Optional.
func runItem(ctx *Context, item Option, key string, value any) (any, error) {
	holder := NewConfig(Schema{{Name: key, Option: item}}).WithFilePath(ctx.FilePath())
	holder.Set(key, value)
	itemCtx := ctx.child(holder, key)

	if err := item.PreValidate(itemCtx); err != nil {
		return nil, err
	}
	out, err := item.Coerce(itemCtx, holder.Get(key))
	if err != nil {
		return nil, err
	}
	holder.Set(key, out)
	if err := item.PostValidate(itemCtx); err != nil {
		return nil, err
	}
	return holder.Get(key), nil
}

// ListOption validates every element of a sequence through an item
// option, failing fast on the first invalid element.
type ListOption struct {
	BaseOption
	item Option
}

// ListOf creates a list option over the given item option.
func ListOf(item Option) *ListOption {
	return &ListOption{BaseOption: requiredBase(), item: item}
}

// WithDefault sets the sequence used when the field is absent. An
// explicit null input is still rejected as missing required config.
func (o *ListOption) WithDefault(v []any) *ListOption {
	o.setDefault(v)
	return o
}

func (o *ListOption) nullStrict() {}

// Coerce implements Option.
func (o *ListOption) Coerce(ctx *Context, value any) (any, error) {
	seq, ok := value.([]any)
	if !ok {
		return nil, errValue(CodeStructure,
			"Expected a list of items, but a %s was given.", kindName(value))
	}
	out := make([]any, len(seq))
	for i, elem := range seq {
		v, err := runItem(ctx, o.item, fmt.Sprintf("%s[%d]", ctx.Key, i), elem)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// DictOption validates every value of a string-keyed mapping through an
// item option, preserving the mapping's order.
type DictOption struct {
	BaseOption
	item Option
}

// DictOf creates a dict option over the given item option.
func DictOf(item Option) *DictOption {
	return &DictOption{BaseOption: requiredBase(), item: item}
}

// WithDefault sets the mapping used when the field is absent. An
// explicit null input is still rejected as missing required config.
func (o *DictOption) WithDefault(v *Mapping) *DictOption {
	o.setDefault(v)
	return o
}

func (o *DictOption) nullStrict() {}

// Coerce implements Option.
func (o *DictOption) Coerce(ctx *Context, value any) (any, error) {
	m, err := o.mapping(value)
	if err != nil {
		return nil, err
	}
	out := NewMapping()
	for _, k := range m.Keys() {
		v, err := runItem(ctx, o.item, fmt.Sprintf("%s['%s']", ctx.Key, k), m.MustGet(k))
		if err != nil {
			return nil, err
		}
		out.Set(k, v)
	}
	return out, nil
}

// mapping normalizes the raw value, reporting non-string keys by name
// and value. Generic decoders hand such documents over as map[any]any.
func (o *DictOption) mapping(value any) (*Mapping, error) {
	if generic, ok := value.(map[any]any); ok {
		keys := make([]any, 0, len(generic))
		for k := range generic {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
		})
		m := NewMapping()
		for _, k := range keys {
			s, ok := k.(string)
			if !ok {
				return nil, errValue(CodeType,
					"Expected type: string for keys, but received: %s (key=%v)", kindName(k), k)
			}
			m.Set(s, generic[k])
		}
		return m, nil
	}
	if m, ok := asMapping(value); ok {
		return m, nil
	}
	return nil, errValue(CodeStructure,
		"Expected a dict of items, but a %s was given.", kindName(value))
}
