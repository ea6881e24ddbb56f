package keel

import (
	"fmt"
	"net/url"
	"strings"
)

// URLOption accepts an empty string or a URL with an explicit scheme.
type URLOption struct {
	BaseOption
	isDir bool
}

// URL creates a URL option.
func URL() *URLOption {
	return &URLOption{BaseOption: requiredBase()}
}

// AsDir normalizes the value by appending a trailing slash.
func (o *URLOption) AsDir() *URLOption {
	o.isDir = true
	return o
}

// WithDefault sets the URL used when the field is absent or null.
func (o *URLOption) WithDefault(v string) *URLOption {
	o.setDefault(v)
	return o
}

// Coerce implements Option.
func (o *URLOption) Coerce(ctx *Context, value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, errValue(CodeType, "Expected a string, got %s", kindName(value))
	}
	if s == "" {
		return "", nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errValue(CodeFormat, "The URL isn't valid, it should include the http:// (scheme)")
	}
	if o.isDir && !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s, nil
}

// Hosting providers recognized when deriving repository names and edit
// path conventions from a repository URL.
const (
	hostGitHub    = "github.com"
	hostBitbucket = "bitbucket.org"
	hostGitLab    = "gitlab.com"
)

func repoHost(ctx *Context, urlKey string) string {
	s, _ := ctx.Config.Get(urlKey).(string)
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// RepoNameOption derives a human-readable repository name from a
// sibling URL field when the user did not set one.
type RepoNameOption struct {
	BaseOption
	urlKey string
}

// RepoName creates a derived-name option reading the URL under urlKey.
func RepoName(urlKey string) *RepoNameOption {
	return &RepoNameOption{BaseOption: requiredBase(), urlKey: urlKey}
}

// Coerce implements Option.
func (o *RepoNameOption) Coerce(ctx *Context, value any) (any, error) {
	if _, ok := value.(string); !ok {
		return nil, errValue(CodeType, "Expected a string, got %s", kindName(value))
	}
	return value, nil
}

// PostValidate fills in the name from the sibling URL's host.
func (o *RepoNameOption) PostValidate(ctx *Context) error {
	if s, _ := ctx.Config.Get(ctx.Key).(string); s != "" {
		return nil
	}
	host := repoHost(ctx, o.urlKey)
	if host == "" {
		return nil
	}
	switch host {
	case hostGitHub:
		ctx.Config.Set(ctx.Key, "GitHub")
	case hostBitbucket:
		ctx.Config.Set(ctx.Key, "Bitbucket")
	case hostGitLab:
		ctx.Config.Set(ctx.Key, "GitLab")
	default:
		// Unknown host: title-case its first label ("launchpad.net" -> "Launchpad").
		label := strings.TrimPrefix(host, "www.")
		if i := strings.Index(label, "."); i > 0 {
			label = label[:i]
		}
		if label != "" {
			ctx.Config.Set(ctx.Key, strings.ToUpper(label[:1])+label[1:])
		}
	}
	return nil
}

// EditURIOption derives the edit-path convention for a known hosting
// provider from a sibling URL field.
type EditURIOption struct {
	BaseOption
	urlKey string
}

// EditURI creates an edit-path option reading the URL under urlKey.
func EditURI(urlKey string) *EditURIOption {
	return &EditURIOption{BaseOption: requiredBase(), urlKey: urlKey}
}

// Coerce implements Option.
func (o *EditURIOption) Coerce(ctx *Context, value any) (any, error) {
	if _, ok := value.(string); !ok {
		return nil, errValue(CodeType, "Expected a string, got %s", kindName(value))
	}
	return value, nil
}

// PostValidate fills in the provider's edit-path convention.
func (o *EditURIOption) PostValidate(ctx *Context) error {
	if s, _ := ctx.Config.Get(ctx.Key).(string); s != "" {
		return nil
	}
	switch repoHost(ctx, o.urlKey) {
	case hostGitHub, hostGitLab:
		ctx.Config.Set(ctx.Key, "edit/master/docs/")
	case hostBitbucket:
		ctx.Config.Set(ctx.Key, "src/default/docs/")
	}
	return nil
}

// Substitution names recognized inside URI templates.
var templateSubstitutes = map[string]bool{
	"path":       true,
	"path_noext": true,
}

// URITemplateOption validates a user-supplied template string's
// placeholder syntax against the recognized substitution names.
type URITemplateOption struct {
	BaseOption
	uriKey string // sibling field made ineffective when the template is set
}

// URITemplate creates a template option. When uriKey names a sibling
// field, setting both produces a warning that the sibling has no effect.
func URITemplate(uriKey string) *URITemplateOption {
	return &URITemplateOption{BaseOption: requiredBase(), uriKey: uriKey}
}

// Coerce implements Option.
func (o *URITemplateOption) Coerce(ctx *Context, value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, errValue(CodeType, "Expected a string, got %s", kindName(value))
	}
	if err := validateTemplate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// PostValidate warns when the overridden sibling field is also set.
func (o *URITemplateOption) PostValidate(ctx *Context) error {
	if o.uriKey == "" {
		return nil
	}
	if s, _ := ctx.Config.Get(ctx.Key).(string); s == "" {
		return nil
	}
	if v := ctx.Config.Get(o.uriKey); v != nil && v != "" {
		ctx.Warn(fmt.Sprintf("The option '%s' has no effect when '%s' is set.", o.uriKey, ctx.Key))
	}
	return nil
}

// validateTemplate checks brace pairing, conversion specifiers and
// substitution names of a "{name}" style template.
func validateTemplate(s string) error {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				i++ // literal "}}"
				continue
			}
			return errValue(CodeFormat, "Single '}' encountered in format string")
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				i++ // literal "{{"
				continue
			}
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return errValue(CodeFormat, "Single '{' encountered in format string")
			}
			field := s[i+1 : i+end]
			// A format spec follows the first ':' and is not part of
			// the substitute name.
			field, _, _ = strings.Cut(field, ":")
			name, conv, hasConv := strings.Cut(field, "!")
			if hasConv && conv != "q" {
				return errValue(CodeFormat, "Unknown conversion specifier: '%s'", conv)
			}
			if !templateSubstitutes[name] {
				return errValue(CodeFormat, "Unknown template substitute: '%s'", name)
			}
			i += end
		}
	}
	return nil
}
