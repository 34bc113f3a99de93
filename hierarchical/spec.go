package hierarchical

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/sartorproj/goreconcile/reconcile"
)

// Spec selects a registered method and overrides some of its parameters.
type Spec struct {
	Method string            `yaml:"method" mapstructure:"method"`
	Params map[string]string `yaml:"params,omitempty" mapstructure:"params"`
}

// ParseSpec parses "name" or "name:key=value,key=value".
func ParseSpec(s string) (Spec, error) {
	name, rest, hasParams := strings.Cut(strings.TrimSpace(s), ":")
	spec := Spec{Method: strings.TrimSpace(name)}
	if spec.Method == "" {
		return Spec{}, reconcile.NewConfigError("", reconcile.ErrUnknownMethod, "empty method in %q", s)
	}
	if !hasParams {
		return spec, nil
	}

	spec.Params = make(map[string]string)
	for _, kv := range strings.Split(rest, ",") {
		key, value, ok := strings.Cut(kv, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" {
			return Spec{}, reconcile.NewConfigError(spec.Method, nil, "malformed parameter %q", kv)
		}
		spec.Params[key] = value
	}
	return spec, nil
}

// String formats the spec in the syntax ParseSpec reads.
func (s Spec) String() string {
	if len(s.Params) == 0 {
		return s.Method
	}
	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + s.Params[k]
	}
	return s.Method + ":" + strings.Join(parts, ",")
}

// step is a spec resolved against the registry.
type step struct {
	method Method
	params Params
	name   string
}

// resolve looks up the method, fills in defaults and checks every parameter.
func resolve(spec Spec) (step, error) {
	m, ok := Lookup(spec.Method)
	if !ok {
		return step{}, reconcile.NewConfigError(spec.Method, reconcile.ErrUnknownMethod, "unknown method %q", spec.Method)
	}

	for name := range spec.Params {
		if _, ok := m.Param(name); !ok {
			return step{}, reconcile.NewConfigError(m.Name, nil, "unknown parameter %q", name)
		}
	}

	params := make(Params, len(m.Params))
	for _, p := range m.Params {
		value, ok := spec.Params[p.Name]
		switch {
		case ok:
		case p.HasDefault:
			value = p.Default
		default:
			return step{}, reconcile.NewConfigError(m.Name, nil, "missing required parameter %q", p.Name)
		}
		if len(p.Allowed) > 0 && !slices.Contains(p.Allowed, value) {
			return step{}, reconcile.NewConfigError(m.Name, reconcile.ErrUnknownMethod,
				"%s %q is not one of %s", p.Name, value, strings.Join(p.Allowed, ", "))
		}
		params[p.Name] = value
	}

	return step{method: m, params: params, name: DisplayName(m, params)}, nil
}

// DisplayName names a method run for output columns: the method name, then
// "_name-value" for every parameter, in declaration order, whose value
// differs from its default. Parameters without a default always appear.
func DisplayName(m Method, params Params) string {
	var b strings.Builder
	b.WriteString(m.Name)
	for _, p := range m.Params {
		value, ok := params[p.Name]
		if !ok || (p.HasDefault && value == p.Default) {
			continue
		}
		fmt.Fprintf(&b, "_%s-%s", p.Name, value)
	}
	return b.String()
}
