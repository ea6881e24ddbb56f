package keel

import (
	"testing"
)

func subSchema() Schema {
	return Schema{
		{Name: "option", Option: Sub(Schema{
			{Name: "cc", Option: Choice("foo", "bar").WithDefault("foo")},
		})},
	}
}

func TestSub_Valid(t *testing.T) {
	cfg := getConfig(t, subSchema(), MappingOf("option", MappingOf("cc", "bar")))
	child, ok := cfg.Get("option").(*Config)
	if !ok {
		t.Fatalf("value type %T, want *Config", cfg.Get("option"))
	}
	if got := child.Get("cc"); got != "bar" {
		t.Errorf("cc = %v, want bar", got)
	}
}

func TestSub_DefaultsWhenAbsent(t *testing.T) {
	cfg := getConfig(t, subSchema(), NewMapping())
	child := cfg.Get("option").(*Config)
	if got := child.Get("cc"); got != "foo" {
		t.Errorf("cc = %v, want schema default foo", got)
	}
}

func TestSub_GenericMappingInput(t *testing.T) {
	doc := NewMapping()
	doc.Set("option", map[any]any{"cc": "bar"})

	cfg := getConfig(t, subSchema(), doc)
	child := cfg.Get("option").(*Config)
	if got := child.Get("cc"); got != "bar" {
		t.Errorf("cc = %v, want bar", got)
	}
}

func TestSub_WrongShape(t *testing.T) {
	tests := []struct {
		name  string
		value any
		kind  string
	}{
		{"string", "not a mapping", "string"},
		{"list", []any{1}, "list"},
		{"null", nil, "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, subSchema(), MappingOf("option", tt.value),
				"option",
				"The configuration is invalid. Expected a key-value mapping but received: "+tt.kind)
		})
	}
}

func TestSub_NestedErrorRekeyed(t *testing.T) {
	expectError(t, subSchema(), MappingOf("option", MappingOf("cc", "go")),
		"option",
		"Sub-option 'cc': Expected one of: ('foo', 'bar') but received: 'go'")
}

func TestSub_NestedWarningRekeyed(t *testing.T) {
	expectWarning(t, subSchema(), MappingOf("option", MappingOf("cc", "bar", "extra", 1)),
		"option", "Sub-option 'extra': Unrecognised configuration name: extra")
}

func TestSub_FreeForm(t *testing.T) {
	schema := Schema{
		{Name: "option", Option: Sub(nil)},
	}
	// Without a schema, arbitrary keys pass silently and are retained.
	cfg := getConfig(t, schema, MappingOf("option", MappingOf("anything", 1)))
	child := cfg.Get("option").(*Config)
	if got := child.Get("anything"); got != 1 {
		t.Errorf("anything = %v, want 1", got)
	}
}

func TestSub_FreeFormValidateUnknown(t *testing.T) {
	schema := Schema{
		{Name: "option", Option: Sub(nil).ValidateUnknown()},
	}
	expectWarning(t, schema, MappingOf("option", MappingOf("anything", 1)),
		"option", "Sub-option 'anything': Unrecognised configuration name: anything")
}

func propagatingSchema() Schema {
	group := Schema{
		{Name: "lang", Option: Optional(Type(KindString))},
		{Name: "only_here", Option: Optional(Type(KindInt))},
	}
	return Schema{
		{Name: "option", Option: Propagating(Schema{
			{Name: "alpha", Option: Sub(group)},
			{Name: "beta", Option: Sub(group)},
		})},
	}
}

func TestPropagating_CopiesShorthandIntoGroups(t *testing.T) {
	doc := MappingOf("option", MappingOf(
		"lang", "fr",
		"alpha", MappingOf("lang", "de"),
	))
	cfg := getConfig(t, propagatingSchema(), doc)
	child := cfg.Get("option").(*Config)

	alpha := child.Get("alpha").(*Config)
	if got := alpha.Get("lang"); got != "de" {
		t.Errorf("alpha.lang = %v, want explicit de", got)
	}
	beta := child.Get("beta").(*Config)
	if got := beta.Get("lang"); got != "fr" {
		t.Errorf("beta.lang = %v, want propagated fr", got)
	}

	// The consumed shorthand disappears from the top level.
	if child.Resolved().Has("lang") {
		t.Error("shorthand key should be removed after propagation")
	}
}

func TestPropagating_LeavesGroupTypeErrors(t *testing.T) {
	doc := MappingOf("option", MappingOf(
		"lang", "fr",
		"alpha", "not a mapping",
	))
	expectError(t, propagatingSchema(), doc, "option",
		"Sub-option 'alpha': The configuration is invalid. Expected a key-value mapping but received: string")
}
