package keel

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPath_CoercesToAbsolute(t *testing.T) {
	schema := Schema{
		{Name: "option", Option: FSPath()},
	}
	cfg := getConfig(t, schema, MappingOf("option", filepath.Join("not", "a", "real", "path")))

	got, _ := cfg.Get("option").(string)
	if !filepath.IsAbs(got) {
		t.Errorf("path %q not absolute", got)
	}
}

func TestPath_WrongType(t *testing.T) {
	schema := Schema{
		{Name: "option", Option: FSPath()},
	}
	expectError(t, schema, MappingOf("option", 1),
		"option", "Expected type: string but received: int")
	expectError(t, schema, MappingOf("option", []any{}),
		"option", "Expected type: string but received: list")
}

func TestPath_MustExist(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	writeTestFile(t, file)
	missing := filepath.Join(dir, "missing")

	tests := []struct {
		name    string
		option  Option
		value   string
		message string
	}{
		{"any exists", FSPath().MustExist(), file, ""},
		{"dir exists", DirPath().MustExist(), dir, ""},
		{"file exists", FilePath().MustExist(), file, ""},
		{"any missing", FSPath().MustExist(), missing,
			"The path '" + missing + "' isn't an existing file or directory."},
		{"dir is file", DirPath().MustExist(), file,
			"The path '" + file + "' isn't an existing directory."},
		{"file is dir", FilePath().MustExist(), dir,
			"The path '" + dir + "' isn't an existing file."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := Schema{{Name: "option", Option: tt.option}}
			doc := MappingOf("option", tt.value)
			if tt.message == "" {
				getConfig(t, schema, doc)
			} else {
				expectError(t, schema, doc, "option", tt.message)
			}
		})
	}
}

func TestPath_RelativeToConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "docs", "index.md"))

	schema := Schema{
		{Name: "docs", Option: DirPath().MustExist()},
	}
	cfg := NewConfig(schema).WithFilePath(filepath.Join(dir, "keel.yml"))
	if err := cfg.Load(MappingOf("docs", "docs")); err != nil {
		t.Fatal(err)
	}
	if errs, _ := cfg.Validate(); len(errs) > 0 {
		t.Fatalf("validation errors: %v", errs)
	}
	if got := cfg.Get("docs"); got != filepath.Join(dir, "docs") {
		t.Errorf("docs = %v, want resolved against config file dir", got)
	}
}

func TestDocsDir_RejectsConfigParent(t *testing.T) {
	dir := t.TempDir()

	schema := Schema{
		{Name: "docs_dir", Option: DocsDirPath()},
	}
	cfg := NewConfig(schema).WithFilePath(filepath.Join(dir, "keel.yml"))
	if err := cfg.Load(MappingOf("docs_dir", ".")); err != nil {
		t.Fatal(err)
	}
	errs, _ := cfg.Validate()
	if len(errs) != 1 {
		t.Fatalf("errors = %v", errs)
	}
	want := "The 'docs_dir' should not be the parent directory of the config file. " +
		"Use a child directory instead so that the 'docs_dir' is a sibling of the config file."
	if errs[0].Message != want {
		t.Errorf("message\ngot:  %q\nwant: %q", errs[0].Message, want)
	}
}

func TestSiteDir_OverlapChecks(t *testing.T) {
	dir := t.TempDir()

	schema := Schema{
		{Name: "docs_dir", Option: DirPath()},
		{Name: "site_dir", Option: SiteDirPath("docs_dir")},
	}
	validate := func(docs, site string) []Issue {
		cfg := NewConfig(schema).WithFilePath(filepath.Join(dir, "keel.yml"))
		if err := cfg.Load(MappingOf("docs_dir", docs, "site_dir", site)); err != nil {
			t.Fatal(err)
		}
		errs, _ := cfg.Validate()
		return errs
	}

	if errs := validate("docs", "site"); len(errs) > 0 {
		t.Errorf("disjoint dirs should pass: %v", errs)
	}
	if errs := validate("docs", "docs-site"); len(errs) > 0 {
		t.Errorf("shared prefix is not containment: %v", errs)
	}

	errs := validate(filepath.Join("site", "docs"), "site")
	if len(errs) != 1 || errs[0].Key != "site_dir" {
		t.Fatalf("docs inside site: errs = %v", errs)
	}

	errs = validate("docs", filepath.Join("docs", "site"))
	if len(errs) != 1 || errs[0].Key != "site_dir" {
		t.Fatalf("site inside docs: errs = %v", errs)
	}
}

func TestListOfPaths(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	writeTestFile(t, file)

	schema := Schema{
		{Name: "option", Option: ListOfPaths()},
	}

	cfg := getConfig(t, schema, MappingOf("option", []any{file}))
	out := cfg.Get("option").([]any)
	if len(out) != 1 || out[0] != file {
		t.Errorf("option = %v", out)
	}

	if got := getConfig(t, schema, NewMapping()).Get("option").([]any); len(got) != 0 {
		t.Errorf("absent = %v, want empty default", got)
	}

	missing := filepath.Join(dir, "does", "not", "exist")
	expectError(t, schema, MappingOf("option", []any{missing}),
		"option", "The path '"+missing+"' isn't an existing file or directory.")

	expectError(t, schema, MappingOf("option", []any{file, nil}),
		"option", "Expected type: string but received: nil")
}
