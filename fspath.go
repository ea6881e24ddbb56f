package keel

import (
	"os"
	"path/filepath"
)

type pathMode int

const (
	pathAny pathMode = iota
	pathDir
	pathFile
)

// PathOption validates a filesystem path. Relative paths are resolved
// against the directory of the loaded document before validation, and
// the coerced value is always absolute.
type PathOption struct {
	BaseOption
	mode      pathMode
	mustExist bool
}

// FSPath creates an option accepting a path to a file or directory.
func FSPath() *PathOption {
	return &PathOption{BaseOption: requiredBase(), mode: pathAny}
}

// DirPath creates an option accepting a directory path.
func DirPath() *PathOption {
	return &PathOption{BaseOption: requiredBase(), mode: pathDir}
}

// FilePath creates an option accepting a file path.
func FilePath() *PathOption {
	return &PathOption{BaseOption: requiredBase(), mode: pathFile}
}

// MustExist requires the path to exist on disk, matching the option's
// mode, at validation time.
func (o *PathOption) MustExist() *PathOption {
	o.mustExist = true
	return o
}

// WithDefault sets a fallback path.
func (o *PathOption) WithDefault(path string) *PathOption {
	o.setDefault(path)
	return o
}

// PreValidate resolves a relative path against the directory of the
// document being validated, so that existence checks and the coerced
// value are independent of the process working directory.
func (o *PathOption) PreValidate(ctx *Context) error {
	value, ok := ctx.Config.GetOK(ctx.Key)
	if !ok {
		return nil
	}
	s, ok := value.(string)
	if !ok || filepath.IsAbs(s) {
		return nil
	}
	if base := ctx.FilePath(); base != "" {
		ctx.Config.Set(ctx.Key, filepath.Join(filepath.Dir(base), s))
	}
	return nil
}

// Coerce checks the path and returns it in absolute form.
func (o *PathOption) Coerce(ctx *Context, value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, errValue(CodeType, "Expected type: string but received: %s", kindName(value))
	}
	if o.mustExist {
		if err := o.checkExists(s); err != nil {
			return nil, err
		}
	}
	abs, err := filepath.Abs(s)
	if err != nil {
		return nil, errValue(CodeFormat, "The path '%s' isn't valid.", s)
	}
	return abs, nil
}

func (o *PathOption) checkExists(path string) error {
	info, err := os.Stat(path)
	switch o.mode {
	case pathDir:
		if err != nil || !info.IsDir() {
			return errValue(CodeExistence, "The path '%s' isn't an existing directory.", path)
		}
	case pathFile:
		if err != nil || info.IsDir() {
			return errValue(CodeExistence, "The path '%s' isn't an existing file.", path)
		}
	default:
		if err != nil {
			return errValue(CodeExistence, "The path '%s' isn't an existing file or directory.", path)
		}
	}
	return nil
}

// DocsDirOption is a directory path that must not be the parent
// directory of the document being validated.
type DocsDirOption struct {
	PathOption
}

// DocsDirPath creates a source-directory option.
func DocsDirPath() *DocsDirOption {
	return &DocsDirOption{PathOption: PathOption{BaseOption: requiredBase(), mode: pathDir}}
}

// WithDefault sets a fallback path.
func (o *DocsDirOption) WithDefault(path string) *DocsDirOption {
	o.setDefault(path)
	return o
}

func (o *DocsDirOption) PostValidate(ctx *Context) error {
	base := ctx.FilePath()
	if base == "" {
		return nil
	}
	dir, ok := ctx.Config.Get(ctx.Key).(string)
	if !ok {
		return nil
	}
	parent, err := filepath.Abs(filepath.Dir(base))
	if err != nil {
		return nil
	}
	if samePath(dir, parent) {
		return errValue(CodeExistence,
			"The '%s' should not be the parent directory of the config file. "+
				"Use a child directory instead so that the '%s' is a sibling of the config file.",
			ctx.Key, ctx.Key)
	}
	return nil
}

// SiteDirOption is a directory path that must not overlap with the
// source directory named by another field.
type SiteDirOption struct {
	PathOption
	docsKey string
}

// SiteDirPath creates an output-directory option checked for overlap
// against the source directory held under docsKey.
func SiteDirPath(docsKey string) *SiteDirOption {
	return &SiteDirOption{
		PathOption: PathOption{BaseOption: requiredBase(), mode: pathDir},
		docsKey:    docsKey,
	}
}

// WithDefault sets a fallback path.
func (o *SiteDirOption) WithDefault(path string) *SiteDirOption {
	o.setDefault(path)
	return o
}

func (o *SiteDirOption) PostValidate(ctx *Context) error {
	siteDir, ok := ctx.Config.Get(ctx.Key).(string)
	if !ok {
		return nil
	}
	docsDir, ok := ctx.Config.Get(o.docsKey).(string)
	if !ok {
		return nil
	}
	if containsPath(siteDir, docsDir) {
		return errValue(CodeExistence,
			"The '%s' should not be within the '%s' as this can mean the source files are overwritten by the output or deleted when the output is cleaned. (%s: '%s', %s: '%s')",
			o.docsKey, ctx.Key, o.docsKey, docsDir, ctx.Key, siteDir)
	}
	if containsPath(docsDir, siteDir) {
		return errValue(CodeExistence,
			"The '%s' should not be within the '%s' as this will cause the output to be overwritten or deleted. (%s: '%s', %s: '%s')",
			ctx.Key, o.docsKey, o.docsKey, docsDir, ctx.Key, siteDir)
	}
	return nil
}

// samePath reports whether two absolute paths name the same location.
func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

// containsPath reports whether child is inside parent (or equal to it).
func containsPath(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !hasDotDotPrefix(rel)
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

// ListOfPaths accepts a list of existing paths, defaulting to an empty
// list.
func ListOfPaths() *ListOption {
	return ListOf(FSPath().MustExist()).WithDefault([]any{})
}
