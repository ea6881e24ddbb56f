package keel

import (
	"fmt"
	"strings"
)

// TypeOption passes a value whose runtime kind is among the accepted
// kinds, optionally requiring an exact length.
type TypeOption struct {
	BaseOption
	kinds  []Kind
	length int // 0 means unchecked
}

// Type creates a type-check option accepting the given kinds.
func Type(kinds ...Kind) *TypeOption {
	if len(kinds) == 0 {
		panic("keel: Type requires at least one kind")
	}
	return &TypeOption{BaseOption: requiredBase(), kinds: kinds}
}

// WithLength requires the value's length to match exactly. Only
// meaningful for string and list kinds.
func (o *TypeOption) WithLength(n int) *TypeOption {
	o.length = n
	return o
}

// WithDefault sets the value used when the field is absent or null.
func (o *TypeOption) WithDefault(v any) *TypeOption {
	o.setDefault(v)
	return o
}

func (o *TypeOption) expected() string {
	if len(o.kinds) == 1 {
		return o.kinds[0].String()
	}
	names := make([]string, len(o.kinds))
	for i, k := range o.kinds {
		names[i] = k.String()
	}
	return "(" + strings.Join(names, ", ") + ")"
}

// Coerce implements Option.
func (o *TypeOption) Coerce(ctx *Context, value any) (any, error) {
	matched := false
	for _, k := range o.kinds {
		if KindOf(value) == k {
			matched = true
			break
		}
	}
	if !matched {
		return nil, errValue(CodeType,
			"Expected type: %s but received: %s", o.expected(), kindName(value))
	}
	if o.length > 0 {
		n, ok := valueLength(value)
		if ok && n != o.length {
			return nil, errValue(CodeLength,
				"Expected type: %s with length %d but received: %s with length %d",
				o.expected(), o.length, formatValue(value), n)
		}
	}
	return value, nil
}

func valueLength(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		return len(t), true
	case []any:
		return len(t), true
	case *Mapping:
		return t.Len(), true
	}
	return 0, false
}

// ChoiceOption passes a value that is a member of a fixed domain.
type ChoiceOption struct {
	BaseOption
	domain []any
}

// Choice creates an option over the given domain. An empty domain is a
// schema-definition mistake and panics.
func Choice(domain ...any) *ChoiceOption {
	if len(domain) == 0 {
		panic("keel: Choice requires a non-empty domain")
	}
	return &ChoiceOption{BaseOption: requiredBase(), domain: domain}
}

// WithDefault sets the value used when the field is absent or null.
// A default outside the domain panics at schema-definition time.
func (o *ChoiceOption) WithDefault(v any) *ChoiceOption {
	if !o.member(v) {
		panic(fmt.Sprintf("keel: Choice default %s is not one of %s", formatValue(v), o.domainString()))
	}
	o.setDefault(v)
	return o
}

func (o *ChoiceOption) member(v any) bool {
	for _, d := range o.domain {
		if d == v {
			return true
		}
	}
	return false
}

func (o *ChoiceOption) domainString() string {
	parts := make([]string, len(o.domain))
	for i, d := range o.domain {
		parts[i] = formatValue(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Coerce implements Option.
func (o *ChoiceOption) Coerce(ctx *Context, value any) (any, error) {
	if !o.member(value) {
		return nil, errValue(CodeChoice,
			"Expected one of: %s but received: %s", o.domainString(), formatValue(value))
	}
	return value, nil
}
