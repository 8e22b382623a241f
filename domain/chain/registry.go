package chain

import "fmt"

// DeriveFunc computes a derived scalar from one chain step.
type DeriveFunc func(Sample) float64

// Registry maps variable names to derivation functions. The six physical
// names are reserved and always resolvable; user variables are added once at
// load time and the registry is read-only afterwards.
type Registry struct {
	derived map[string]DeriveFunc
}

// NewRegistry returns a registry containing only the physical variables.
func NewRegistry() *Registry {
	return &Registry{derived: make(map[string]DeriveFunc)}
}

// Register attaches a derivation function under a unique name. Reserved and
// duplicate names are rejected.
func (r *Registry) Register(name string, fn DeriveFunc) error {
	if fn == nil {
		return fmt.Errorf("derivation function for %q must not be nil", name)
	}
	for _, phys := range PhysicalVariables {
		if name == phys {
			return fmt.Errorf("variable name %q is reserved", name)
		}
	}
	if _, exists := r.derived[name]; exists {
		return fmt.Errorf("variable %q already registered", name)
	}
	r.derived[name] = fn
	return nil
}

// Lookup returns the derivation function for a derived variable.
func (r *Registry) Lookup(name string) (DeriveFunc, bool) {
	fn, ok := r.derived[name]
	return fn, ok
}

// Has reports whether name is resolvable, physical or derived.
func (r *Registry) Has(name string) bool {
	for _, phys := range PhysicalVariables {
		if name == phys {
			return true
		}
	}
	_, ok := r.derived[name]
	return ok
}

// Names returns all resolvable variable names, physical first.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(PhysicalVariables)+len(r.derived))
	names = append(names, PhysicalVariables...)
	for name := range r.derived {
		names = append(names, name)
	}
	return names
}

// MissingVariableError reports a variable that neither the batch nor the
// registry can resolve.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("variable %q not present in chain or registry", e.Name)
}

// RaggedBatchError reports mismatched column lengths within one batch.
type RaggedBatchError struct {
	Name string
	Want int
	Got  int
}

func (e *RaggedBatchError) Error() string {
	return fmt.Sprintf("column %q has %d rows, expected %d", e.Name, e.Got, e.Want)
}
