package eval

import (
	"fmt"

	"github.com/shoalcove/scalegen/internal/model"
)

// Scope is the flat binding environment one evaluation runs against.
// The iteration binding "n" and the standard function library are
// installed at construction; assignment steps add bindings as the run
// progresses.
type Scope struct {
	vars map[string]Value
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{vars: make(map[string]Value)}
}

// Bind sets a binding, replacing any previous value.
func (s *Scope) Bind(name string, v Value) {
	s.vars[name] = v
}

// Lookup resolves a binding.
func (s *Scope) Lookup(name string) (Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// InitScope builds the starting scope for one evaluation pass.
//
// For each variable: a mode-based variable whose dimension has a mode
// chosen in modeCtx and a matching table entry resolves to that entry;
// everything else resolves to its default. Values parse per declared
// type. The scope then receives the iteration binding "n" and any
// external overrides, in that order, so overrides win.
func InitScope(alg *model.Algorithm, iteration int, overrides map[string]Value, modeCtx map[string]string) (*Scope, error) {
	sc := NewScope()
	for _, vr := range alg.Variables {
		raw := vr.DefaultValue
		if vr.ModeBased && vr.DimensionID != "" {
			if modeID, ok := modeCtx[vr.DimensionID]; ok {
				if tableValue, ok := vr.ModeValues[modeID]; ok {
					raw = tableValue
				}
			}
		}
		v, err := ParseTyped(vr.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", vr.Name, err)
		}
		sc.Bind(vr.Name, v)
	}
	sc.Bind("n", Number(iteration))
	for name, v := range overrides {
		sc.Bind(name, v)
	}
	return sc, nil
}
