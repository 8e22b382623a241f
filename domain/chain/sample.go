package chain

import "math"

// The six physical oscillation parameters every chain must carry.
const (
	VarDeltaCP   = "DeltaCP"
	VarTheta13   = "Theta13"
	VarTheta23   = "Theta23"
	VarTheta12   = "Theta12"
	VarDeltam232 = "Deltam2_32"
	VarDeltam221 = "Deltam2_21"
)

// PhysicalVariables lists the compulsory variable names in canonical order.
var PhysicalVariables = []string{
	VarDeltaCP,
	VarTheta13,
	VarTheta23,
	VarTheta12,
	VarDeltam232,
	VarDeltam221,
}

// Ordering is the discrete mass-ordering label carried implicitly by every
// sample through the sign of Deltam2_32.
type Ordering int

const (
	NormalOrdering Ordering = iota
	InvertedOrdering
)

func (o Ordering) String() string {
	if o == InvertedOrdering {
		return "IO"
	}
	return "NO"
}

// OrderingOf classifies a sample by the sign of its Deltam2_32 value.
// Zero is grouped with Normal so every sample routes to exactly one label.
func OrderingOf(deltam232 float64) Ordering {
	if deltam232 < 0 {
		return InvertedOrdering
	}
	return NormalOrdering
}

// Sample is one MCMC step: the six physical parameters in canonical order.
// Derived quantities are computed from it through the Registry, never stored.
type Sample struct {
	DeltaCP   float64
	Theta13   float64
	Theta23   float64
	Theta12   float64
	Deltam232 float64
	Deltam221 float64
}

// Value returns the named physical parameter, false if the name is not one of
// the six physical variables.
func (s Sample) Value(name string) (float64, bool) {
	switch name {
	case VarDeltaCP:
		return s.DeltaCP, true
	case VarTheta13:
		return s.Theta13, true
	case VarTheta23:
		return s.Theta23, true
	case VarTheta12:
		return s.Theta12, true
	case VarDeltam232:
		return s.Deltam232, true
	case VarDeltam221:
		return s.Deltam221, true
	}
	return 0, false
}

// Ordering returns the sample's mass-ordering label.
func (s Sample) Ordering() Ordering {
	return OrderingOf(s.Deltam232)
}

// Valid reports whether all six parameters are finite. Malformed rows are
// skipped during fill, not fatal.
func (s Sample) Valid() bool {
	for _, v := range []float64{s.DeltaCP, s.Theta13, s.Theta23, s.Theta12, s.Deltam232, s.Deltam221} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Batch is a column-oriented slice of consecutive chain steps as delivered by
// a sample source. Physical columns are always present; derived columns are
// materialized on demand via Materialize.
type Batch struct {
	columns map[string][]float64
	length  int
}

// NewBatch builds a batch from physical columns. All six physical columns
// must be present and equal-length.
func NewBatch(columns map[string][]float64) (*Batch, error) {
	n := -1
	for _, name := range PhysicalVariables {
		col, ok := columns[name]
		if !ok {
			return nil, &MissingVariableError{Name: name}
		}
		if n == -1 {
			n = len(col)
		} else if len(col) != n {
			return nil, &RaggedBatchError{Name: name, Want: n, Got: len(col)}
		}
	}
	cp := make(map[string][]float64, len(columns))
	for name, col := range columns {
		cp[name] = col
	}
	return &Batch{columns: cp, length: n}, nil
}

// Len returns the number of steps in the batch.
func (b *Batch) Len() int { return b.length }

// Column returns the named column, materializing it through the registry when
// it is a derived variable not yet present.
func (b *Batch) Column(name string, reg *Registry) ([]float64, error) {
	if col, ok := b.columns[name]; ok {
		return col, nil
	}
	if reg == nil {
		return nil, &MissingVariableError{Name: name}
	}
	fn, ok := reg.Lookup(name)
	if !ok {
		return nil, &MissingVariableError{Name: name}
	}
	col := make([]float64, b.length)
	for i := 0; i < b.length; i++ {
		col[i] = fn(b.Sample(i))
	}
	b.columns[name] = col
	return col, nil
}

// Sample reassembles row i as a Sample value.
func (b *Batch) Sample(i int) Sample {
	return Sample{
		DeltaCP:   b.columns[VarDeltaCP][i],
		Theta13:   b.columns[VarTheta13][i],
		Theta23:   b.columns[VarTheta23][i],
		Theta12:   b.columns[VarTheta12][i],
		Deltam232: b.columns[VarDeltam232][i],
		Deltam221: b.columns[VarDeltam221][i],
	}
}

// Orderings returns the per-row mass-ordering labels.
func (b *Batch) Orderings() []Ordering {
	out := make([]Ordering, b.length)
	col := b.columns[VarDeltam232]
	for i, v := range col {
		out[i] = OrderingOf(v)
	}
	return out
}
