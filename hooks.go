package keel

import (
	"fmt"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// LuaHook is a single hook script wrapped as a plugin instance. Every
// global function named "on_<event>" in the script becomes an event
// callback.
type LuaHook struct {
	path      string
	state     *lua.LState
	callbacks map[string]Callback
}

// ConfigSchema implements Plugin; hook scripts take no options.
func (h *LuaHook) ConfigSchema() Schema { return nil }

// SetConfig implements Plugin as a no-op.
func (h *LuaHook) SetConfig(*Config) {}

// Callbacks implements EventListener.
func (h *LuaHook) Callbacks() map[string]Callback { return h.callbacks }

// Path returns the script location the hook was loaded from.
func (h *LuaHook) Path() string { return h.path }

// Close releases the script's interpreter state. Callbacks must not be
// invoked after Close.
func (h *LuaHook) Close() {
	h.state.Close()
}

// CloseHooks releases the interpreter state of every hook script in
// the collection. Each validation pass loads hook scripts into fresh
// interpreters; a caller re-validating a config owns the previous
// collection and should close it first.
func (pc *PluginCollection) CloseHooks() {
	for _, name := range pc.names {
		if h, ok := pc.items[name].(*LuaHook); ok {
			h.Close()
		}
	}
}

// loadLuaHook runs the script once and collects its event functions.
func loadLuaHook(path string) (*LuaHook, error) {
	state := lua.NewState()
	if err := state.DoFile(path); err != nil {
		state.Close()
		return nil, err
	}

	hook := &LuaHook{path: path, state: state, callbacks: make(map[string]Callback)}
	state.G.Global.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok {
			return
		}
		event, found := strings.CutPrefix(string(name), "on_")
		if !found || event == "" {
			return
		}
		fn, ok := v.(*lua.LFunction)
		if !ok {
			return
		}
		hook.callbacks[event] = hook.callback(fn)
	})
	return hook, nil
}

func (h *LuaHook) callback(fn *lua.LFunction) Callback {
	return func(payload any) (any, error) {
		if err := h.state.CallByParam(
			lua.P{Fn: fn, NRet: 1, Protect: true},
			toLua(h.state, payload),
		); err != nil {
			return nil, fmt.Errorf("hook %s: %w", h.path, err)
		}
		ret := h.state.Get(-1)
		h.state.Pop(1)
		return fromLua(ret), nil
	}
}

// toLua converts a document value into its Lua representation.
func toLua(state *lua.LState, v any) lua.LValue {
	switch t := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(t)
	case int:
		return lua.LNumber(t)
	case int64:
		return lua.LNumber(t)
	case float64:
		return lua.LNumber(t)
	case string:
		return lua.LString(t)
	case []any:
		tbl := state.NewTable()
		for _, item := range t {
			tbl.Append(toLua(state, item))
		}
		return tbl
	case *Mapping:
		tbl := state.NewTable()
		for _, key := range t.Keys() {
			tbl.RawSetString(key, toLua(state, t.MustGet(key)))
		}
		return tbl
	default:
		return lua.LString(fmt.Sprintf("%v", t))
	}
}

// fromLua converts a Lua return value back into a document value.
func fromLua(v lua.LValue) any {
	switch t := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(t)
	case lua.LNumber:
		f := float64(t)
		if f == float64(int64(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(t)
	case *lua.LTable:
		// A table with consecutive integer keys is a list, anything
		// else a mapping.
		if n := t.Len(); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(t.RawGetInt(i)))
			}
			return out
		}
		out := NewMapping()
		t.ForEach(func(k, val lua.LValue) {
			out.Set(k.String(), fromLua(val))
		})
		return out
	default:
		return nil
	}
}

// HooksOption loads standalone hook scripts and registers them as
// plugin instances alongside the regularly installed plugins.
type HooksOption struct {
	BaseOption
	pluginsKey string
}

// Hooks creates a hook-script option. Loaded hooks are inserted into
// the already-coerced plugin collection under pluginsKey; the schema
// must therefore list that field before this one.
//
// Every validation pass loads the scripts into fresh interpreter
// states. The caller owns each pass's collection and releases it with
// CloseHooks (or LuaHook.Close) before validating again.
func Hooks(pluginsKey string) *HooksOption {
	o := &HooksOption{pluginsKey: pluginsKey}
	o.setDefault([]any{})
	return o
}

// Coerce implements Option.
func (o *HooksOption) Coerce(ctx *Context, value any) (any, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, errValue(CodeStructure,
			"Expected a list of items, but a %s was given.", kindName(value))
	}

	collection, _ := ctx.Config.Get(o.pluginsKey).(*PluginCollection)

	paths := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, errValue(CodeType,
				"Expected type: string but received: %s", kindName(item))
		}

		resolved := s
		if !filepath.IsAbs(resolved) {
			if base := ctx.FilePath(); base != "" {
				resolved = filepath.Join(filepath.Dir(base), resolved)
			}
		}

		hook, err := loadLuaHook(resolved)
		if err != nil {
			return nil, errValue(CodeExternal, "Failed to load hook script '%s'.\n%v", s, err)
		}
		if collection != nil {
			collection.Add(s, hook)
		}
		paths = append(paths, resolved)
	}
	return paths, nil
}
