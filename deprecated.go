package keel

import (
	"fmt"
	"strings"
)

// DeprecatedOption signals migration or removal of a field. It is a
// no-op when the field is absent.
type DeprecatedOption struct {
	BaseOption
	message    string
	movedTo    string
	removed    bool
	optionType Option
}

// Deprecated creates a deprecation marker for a field.
func Deprecated() *DeprecatedOption {
	return &DeprecatedOption{}
}

// WithMessage overrides the migration warning. The message may contain
// one "%s" placeholder for the field name.
func (o *DeprecatedOption) WithMessage(message string) *DeprecatedOption {
	o.message = message
	return o
}

// MovedTo names the replacement field as a dotted path; the coerced
// value is written there during pre-validation and the original field
// is reset to null.
func (o *DeprecatedOption) MovedTo(path string) *DeprecatedOption {
	o.movedTo = path
	return o
}

// Removed marks the field as removed: providing it is an error.
func (o *DeprecatedOption) Removed() *DeprecatedOption {
	o.removed = true
	return o
}

// WithType additionally type-checks a provided value.
func (o *DeprecatedOption) WithType(opt Option) *DeprecatedOption {
	o.optionType = opt
	return o
}

// PreValidate implements the deprecation protocol: removal error,
// migration warning, and the optional move into the replacement path.
func (o *DeprecatedOption) PreValidate(ctx *Context) error {
	value := ctx.Config.Get(ctx.Key)
	if value == nil {
		return nil
	}

	if o.removed {
		if o.movedTo != "" {
			return errValue(CodeRemoved,
				"The configuration option '%s' was removed. Use '%s' instead.", ctx.Key, o.movedTo)
		}
		return errValue(CodeRemoved, "The configuration option '%s' was removed.", ctx.Key)
	}

	ctx.Warn(o.warning(ctx.Key))

	if o.movedTo != "" {
		o.move(ctx, value)
	}
	return nil
}

func (o *DeprecatedOption) warning(key string) string {
	if o.message != "" {
		if strings.Contains(o.message, "%s") {
			return fmt.Sprintf(o.message, key)
		}
		return o.message
	}
	msg := fmt.Sprintf(
		"The configuration option '%s' has been deprecated and will be removed in a future release.", key)
	if o.movedTo != "" {
		msg += fmt.Sprintf(" Use '%s' instead.", o.movedTo)
	}
	return msg
}

// move writes the value into the dotted replacement path, creating
// intermediate mappings and descending into existing ones, then resets
// the original field to null. A non-mapping in the way aborts the move
// so the conflicting field fails its own validation instead.
func (o *DeprecatedOption) move(ctx *Context, value any) {
	segments := strings.Split(o.movedTo, ".")
	cur := ctx.Config.Resolved()
	for _, seg := range segments[:len(segments)-1] {
		next := cur.MustGet(seg)
		if next == nil {
			m := NewMapping()
			cur.Set(seg, m)
			cur = m
			continue
		}
		m, ok := asMapping(next)
		if !ok {
			return
		}
		cur.Set(seg, m)
		cur = m
	}

	// Whether the replacement is already set is judged against the
	// loaded document: schema defaults are pre-applied to the working
	// values and must not block the migration.
	if !documentHas(ctx.Config.loaded, segments) {
		cur.Set(segments[len(segments)-1], value)
		ctx.Config.origins[segments[0]] = OriginMigrated
	}
	ctx.Config.Set(ctx.Key, nil)
}

// documentHas reports whether the loaded document supplies a value at
// the dotted path, walking nested mappings.
func documentHas(doc *Mapping, segments []string) bool {
	cur := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := asMapping(cur.MustGet(seg))
		if !ok {
			return false
		}
		cur = next
	}
	return cur.Has(segments[len(segments)-1])
}

// Coerce applies the optional type check to a provided value.
func (o *DeprecatedOption) Coerce(ctx *Context, value any) (any, error) {
	if o.optionType != nil {
		return o.optionType.Coerce(ctx, value)
	}
	return value, nil
}
