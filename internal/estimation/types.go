package estimation

// Calculator encapsulates one derived quantity (e.g. "energy consumption", "energy cost").
type Calculator interface {
	// Name returns the name of this calculator, used as the key in Engine results.
	Name() string
	// Keys returns the list of Param keys this calculator depends on.
	Keys() []string
	// Calculate runs the derivation using the provided params.
	Calculate(params map[string]Param) (Estimation, error)
}

// Param represents an input for a Calculator
type Param struct {
	Key   string
	Value interface{}
}

// Estimation is the result of a Calculator calculation
type Estimation struct {
	Value  float64
	Unit   string
	Reason string
}

// Criterion requires the trimmed cell of Column to equal the trimmed Value.
type Criterion struct {
	Column string
	Value  string
}

// Criteria is an ordered conjunction of Criterion.
type Criteria []Criterion

// Map returns the criteria keyed by column. A later criterion on the same column wins.
func (c Criteria) Map() map[string]string {
	m := make(map[string]string, len(c))
	for _, cr := range c {
		m[cr.Column] = cr.Value
	}
	return m
}

// Field is one client supplied key/value pair, kept in request declaration order.
type Field struct {
	Key   string
	Value string
}
