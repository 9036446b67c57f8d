package typesystem

import (
	"sort"
	"strings"
)

// Subst maps type parameter keys (TParam.Key) to types.
type Subst map[string]Type

// NewSubst binds params to args positionally. The caller checks arity.
func NewSubst(params []TParam, args []Type) Subst {
	s := make(Subst, len(params))
	for i, p := range params {
		if i < len(args) {
			s[p.Key()] = args[i]
		}
	}
	return s
}

// Compose combines two substitutions: applying the result equals applying
// s2 first and then s1.
func (s1 Subst) Compose(s2 Subst) Subst {
	out := make(Subst, len(s1)+len(s2))
	for k, v := range s2 {
		out[k] = v.Apply(s1)
	}
	for k, v := range s1 {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// Without returns a copy of s with the given parameters removed. Used to
// keep a generic method's own parameters from being captured by the class
// substitution.
func (s Subst) Without(params []TParam) Subst {
	if len(params) == 0 || len(s) == 0 {
		return s
	}
	drop := make(map[string]bool, len(params))
	for _, p := range params {
		drop[p.Key()] = true
	}
	out := make(Subst, len(s))
	for k, v := range s {
		if !drop[k] {
			out[k] = v
		}
	}
	return out
}

func (s Subst) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " := " + s[k].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
