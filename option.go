package keel

// Option describes how one configuration field is validated and coerced.
// Concrete options embed BaseOption and override the phases they need.
//
// Validation runs in three phases per field:
//   - PreValidate may inspect and rewrite sibling raw values (for example
//     to resolve a relative path against the config document location).
//   - Coerce consumes the raw-or-default value and produces the typed
//     value, or fails.
//   - PostValidate runs only after every field of the same Config has
//     finished Coerce, so cross-field checks observe coerced siblings.
type Option interface {
	// Required reports whether a nil value (after defaults) is an error.
	Required() bool

	// Default returns the schema-declared default and whether one exists.
	Default() (any, bool)

	// PreValidate runs before any field of the config is coerced.
	PreValidate(ctx *Context) error

	// Coerce turns the raw value into the option's typed value.
	Coerce(ctx *Context, value any) (any, error)

	// PostValidate runs after every field of the config has been coerced.
	PostValidate(ctx *Context) error
}

// Context carries the state an option phase may consult: the enclosing
// config, the key under validation, and the warning sink.
type Context struct {
	// Config is the config instance currently being validated.
	Config *Config

	// Key identifies the field under validation. For nested values it
	// carries positional context (e.g. "option[2]").
	Key string

	warn func(message string)
}

// Warn records a non-fatal finding for the field under validation.
func (ctx *Context) Warn(message string) {
	ctx.warn(message)
}

// FilePath returns the location of the config document, or "" if the
// document did not come from a file.
func (ctx *Context) FilePath() string {
	if ctx.Config == nil {
		return ""
	}
	return ctx.Config.filePath
}

// child derives a context for a nested value, rewriting the key while
// keeping the warning sink.
func (ctx *Context) child(cfg *Config, key string) *Context {
	return &Context{Config: cfg, Key: key, warn: ctx.warn}
}

// BaseOption carries the state shared by every option kind: the
// required flag and the optional default. The zero value is a required
// option with no default; phases are no-ops unless overridden.
type BaseOption struct {
	required   bool
	hasDefault bool
	defaultVal any
}

// requiredBase is the embeddable starting state for most options.
func requiredBase() BaseOption {
	return BaseOption{required: true}
}

// Required implements Option.
func (o *BaseOption) Required() bool { return o.required }

// Default implements Option.
func (o *BaseOption) Default() (any, bool) { return o.defaultVal, o.hasDefault }

// PreValidate implements Option as a no-op.
func (o *BaseOption) PreValidate(*Context) error { return nil }

// PostValidate implements Option as a no-op.
func (o *BaseOption) PostValidate(*Context) error { return nil }

func (o *BaseOption) setDefault(v any) {
	o.hasDefault = true
	o.defaultVal = v
}

// OptionalOption wraps another option and short-circuits to nil on
// absent input without ever invoking the wrapped option's coercion.
type OptionalOption struct {
	BaseOption
	inner Option
}

// Optional makes inner nullable. Wrapping an option that already
// declares a default is a schema-definition mistake and panics.
func Optional(inner Option) *OptionalOption {
	if _, ok := inner.Default(); ok {
		panic("keel: option with a default doesn't need to be wrapped into Optional")
	}
	return &OptionalOption{inner: inner}
}

// PreValidate delegates to the wrapped option.
func (o *OptionalOption) PreValidate(ctx *Context) error {
	return o.inner.PreValidate(ctx)
}

// Coerce resolves directly to nil on null input, never invoking the
// wrapped option's coercion; any other value is delegated.
func (o *OptionalOption) Coerce(ctx *Context, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	return o.inner.Coerce(ctx, value)
}

// PostValidate delegates to the wrapped option.
func (o *OptionalOption) PostValidate(ctx *Context) error {
	return o.inner.PostValidate(ctx)
}

// nullStrict marks options whose default applies only to an absent key:
// an explicit null input is still a missing required value.
type nullStrict interface {
	nullStrict()
}

// nullCoercer marks options that want Coerce invoked even for null
// input, taking over the default/required handling themselves.
type nullCoercer interface {
	coercesNull()
}

// resolveOption applies the raw-or-default rule shared by all options
// and dispatches to Coerce. A nil result with a nil error means the
// field resolves to null.
func resolveOption(opt Option, ctx *Context, value any) (any, error) {
	if value == nil {
		if _, ok := opt.(nullCoercer); ok {
			return opt.Coerce(ctx, nil)
		}
		if _, ok := opt.(nullStrict); ok {
			return nil, errRequired()
		}
		if d, ok := opt.Default(); ok {
			value = deepCopyValue(d)
		}
	}
	if value == nil {
		if opt.Required() {
			return nil, errRequired()
		}
		return nil, nil
	}
	return opt.Coerce(ctx, value)
}

// PrivateOption guards a field that is populated programmatically by a
// sibling option. A value coming from the loaded document is an error;
// values written during validation pass through untouched.
type PrivateOption struct {
	BaseOption
}

// Private creates a programmatic-only option.
func Private() *PrivateOption {
	return &PrivateOption{}
}

func (o *PrivateOption) Coerce(ctx *Context, value any) (any, error) {
	if ctx.Config.loaded.Has(ctx.Key) {
		return nil, errValue(CodeStructure, "For internal use only.")
	}
	return value, nil
}
