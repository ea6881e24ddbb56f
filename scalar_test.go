package keel

import (
	"testing"
)

func TestType_SingleKind(t *testing.T) {
	schema := Schema{
		{Name: "option", Option: Type(KindString)},
	}

	cfg := getConfig(t, schema, MappingOf("option", "Testing"))
	if got := cfg.Get("option"); got != "Testing" {
		t.Errorf("option = %v, want Testing", got)
	}

	expectError(t, schema, MappingOf("option", 3),
		"option", "Expected type: string but received: int")
}

func TestType_MultipleKinds(t *testing.T) {
	schema := Schema{
		{Name: "option", Option: Type(KindString, KindInt)},
	}

	if got := getConfig(t, schema, MappingOf("option", "x")).Get("option"); got != "x" {
		t.Errorf("option = %v, want x", got)
	}
	if got := getConfig(t, schema, MappingOf("option", 5)).Get("option"); got != 5 {
		t.Errorf("option = %v, want 5", got)
	}

	expectError(t, schema, MappingOf("option", 2.5),
		"option", "Expected type: (string, int) but received: float")
}

func TestType_Length(t *testing.T) {
	schema := Schema{
		{Name: "option", Option: Type(KindString).WithLength(7)},
	}

	if got := getConfig(t, schema, MappingOf("option", "Testing")).Get("option"); got != "Testing" {
		t.Errorf("option = %v, want Testing", got)
	}

	expectError(t, schema, MappingOf("option", "Testing Typed Length"),
		"option",
		"Expected type: string with length 7 but received: 'Testing Typed Length' with length 20")
}

func TestChoice(t *testing.T) {
	schema := Schema{
		{Name: "option", Option: Choice("python", "node", "ruby")},
	}

	if got := getConfig(t, schema, MappingOf("option", "node")).Get("option"); got != "node" {
		t.Errorf("option = %v, want node", got)
	}

	expectError(t, schema, MappingOf("option", "go"),
		"option", "Expected one of: ('python', 'node', 'ruby') but received: 'go'")
}

func TestChoice_Default(t *testing.T) {
	schema := Schema{
		{Name: "option", Option: Choice("a", "b").WithDefault("a")},
	}

	// Default applies to both the absent key and an explicit null.
	if got := getConfig(t, schema, NewMapping()).Get("option"); got != "a" {
		t.Errorf("absent option = %v, want default a", got)
	}
	if got := getConfig(t, schema, MappingOf("option", nil)).Get("option"); got != "a" {
		t.Errorf("null option = %v, want default a", got)
	}
}

func TestChoice_InvalidConstruction(t *testing.T) {
	t.Run("empty domain", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic on empty domain")
			}
		}()
		Choice()
	})

	t.Run("default outside domain", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic on non-member default")
			}
		}()
		Choice("a", "b").WithDefault("c")
	})
}
