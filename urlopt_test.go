package keel

import (
	"testing"
)

func TestURL(t *testing.T) {
	schema := Schema{
		{Name: "option", Option: URL()},
	}

	if got := getConfig(t, schema, MappingOf("option", "https://mydomain.org")).Get("option"); got != "https://mydomain.org" {
		t.Errorf("option = %v", got)
	}
	if got := getConfig(t, schema, MappingOf("option", "")).Get("option"); got != "" {
		t.Errorf("empty string should pass through, got %v", got)
	}

	expectError(t, schema, MappingOf("option", "www.mydomain.org"),
		"option", "The URL isn't valid, it should include the http:// (scheme)")
	expectError(t, schema, MappingOf("option", 1),
		"option", "Expected a string, got int")
}

func TestURL_AsDir(t *testing.T) {
	schema := Schema{
		{Name: "option", Option: URL().AsDir()},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"https://mydomain.org", "https://mydomain.org/"},
		{"https://mydomain.org/", "https://mydomain.org/"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := getConfig(t, schema, MappingOf("option", tt.input)).Get("option"); got != tt.want {
			t.Errorf("AsDir(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func repoSchema() Schema {
	return Schema{
		{Name: "repo_url", Option: Optional(URL())},
		{Name: "repo_name", Option: Optional(RepoName("repo_url"))},
		{Name: "edit_uri", Option: Optional(EditURI("repo_url"))},
	}
}

func TestRepoName_Derived(t *testing.T) {
	tests := []struct {
		url      string
		wantName string
		wantEdit string
	}{
		{"https://github.com/keelconf/keel", "GitHub", "edit/master/docs/"},
		{"https://bitbucket.org/gutworth/six/", "Bitbucket", "src/default/docs/"},
		{"https://gitlab.com/gitlab-org/gitlab-ce/", "GitLab", "edit/master/docs/"},
		{"https://launchpad.net/python-tuskarclient", "Launchpad", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg := getConfig(t, repoSchema(), MappingOf("repo_url", tt.url))
			if got := cfg.Get("repo_name"); got != tt.wantName {
				t.Errorf("repo_name = %v, want %v", got, tt.wantName)
			}
			got, _ := cfg.Get("edit_uri").(string)
			if got != tt.wantEdit {
				t.Errorf("edit_uri = %q, want %q", got, tt.wantEdit)
			}
		})
	}
}

func TestRepoName_ExplicitWins(t *testing.T) {
	doc := MappingOf(
		"repo_url", "https://github.com/keelconf/keel",
		"repo_name", "keel",
		"edit_uri", "blob/master/docs/",
	)
	cfg := getConfig(t, repoSchema(), doc)
	if got := cfg.Get("repo_name"); got != "keel" {
		t.Errorf("repo_name = %v, want explicit keel", got)
	}
	if got := cfg.Get("edit_uri"); got != "blob/master/docs/" {
		t.Errorf("edit_uri = %v, want explicit value", got)
	}
}

func TestURITemplate(t *testing.T) {
	schema := Schema{
		{Name: "edit_uri", Option: Optional(Type(KindString))},
		{Name: "edit_uri_template", Option: Optional(URITemplate("edit_uri"))},
	}

	valid := []string{
		"edit/master/{path}",
		"edit/master/{path_noext}.md",
		"{path!q}",
		"{path:>10}",
		"{path!q:>10}",
		"literal {{braces}} kept",
	}
	for _, input := range valid {
		t.Run(input, func(t *testing.T) {
			cfg := getConfig(t, schema, MappingOf("edit_uri_template", input))
			if got := cfg.Get("edit_uri_template"); got != input {
				t.Errorf("value = %v, want %v", got, input)
			}
		})
	}

	invalid := []struct {
		input   string
		message string
	}{
		{"edit/master/{path", "Single '{' encountered in format string"},
		{"edit/master/path}", "Single '}' encountered in format string"},
		{"{path!r}", "Unknown conversion specifier: 'r'"},
		{"{pathh}", "Unknown template substitute: 'pathh'"},
		{"{pathh:>10}", "Unknown template substitute: 'pathh'"},
	}
	for _, tt := range invalid {
		t.Run(tt.input, func(t *testing.T) {
			expectError(t, schema, MappingOf("edit_uri_template", tt.input),
				"edit_uri_template", tt.message)
		})
	}
}

func TestURITemplate_WarnsWhenBothSet(t *testing.T) {
	schema := Schema{
		{Name: "edit_uri", Option: Optional(Type(KindString))},
		{Name: "edit_uri_template", Option: Optional(URITemplate("edit_uri"))},
	}
	doc := MappingOf(
		"edit_uri", "edit/master/docs/",
		"edit_uri_template", "{path}",
	)
	expectWarning(t, schema, doc, "edit_uri_template",
		"The option 'edit_uri' has no effect when 'edit_uri_template' is set.")
}
