package scope

// Class is the tri-state outcome of a name lookup.
type Class int

const (
	// NotFound means no scope declares the name; it is an implicit global.
	NotFound Class = iota
	// ModuleScope means the name is declared in the outermost module scope.
	ModuleScope
	// NestedScope means the name is declared in a function, block or other
	// inner scope.
	NestedScope
)

func (c Class) String() string {
	switch c {
	case ModuleScope:
		return "module"
	case NestedScope:
		return "nested"
	default:
		return "not-found"
	}
}

// Binding is the resolved declaration of a name.
type Binding struct {
	Class      Class
	Scope      *Scope
	Definition *Definition
}

// IsImportBinding reports whether the name was introduced by an import
// declaration.
func (b Binding) IsImportBinding() bool {
	return b.Definition != nil && b.Definition.Kind == DefImportBinding
}

// TopLevel reports whether the name refers to a module-level or implicit
// global declaration.
func (b Binding) TopLevel() bool {
	return b.Class != NestedScope
}

// FindScope searches scopes from the most recently created backwards for the
// first one declaring name. Returns nil when no scope declares it.
func (m *Manager) FindScope(name string) *Scope {
	if m == nil {
		return nil
	}
	for i := len(m.Scopes) - 1; i >= 0; i-- {
		v := m.Scopes[i].Variable(name)
		if v == nil {
			continue
		}
		for _, id := range v.Identifiers {
			if id.Name == name {
				return m.Scopes[i]
			}
		}
	}
	return nil
}

// FindDefinition returns the definition of name within s whose binding
// identifier carries that name.
func FindDefinition(s *Scope, name string) *Definition {
	v := s.Variable(name)
	if v == nil {
		return nil
	}
	for i := range v.Defs {
		if v.Defs[i].Name != nil && v.Defs[i].Name.Name == name {
			return &v.Defs[i]
		}
	}
	return nil
}

// Lookup resolves name and classifies where it was found.
func (m *Manager) Lookup(name string) Binding {
	s := m.FindScope(name)
	if s == nil {
		return Binding{Class: NotFound}
	}
	b := Binding{Class: NestedScope, Scope: s, Definition: FindDefinition(s, name)}
	if s.Kind == ScopeModule || s.Kind == ScopeGlobal {
		b.Class = ModuleScope
	}
	return b
}
