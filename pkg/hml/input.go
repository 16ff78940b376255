package hml

type inputKind int

const (
	literalInput inputKind = iota
	paramInput
	outputInput
)

// Input binds one named argument of an operation to its source. Inputs are
// passed as an ordered slice, never a map: the order they are given in is
// the order their flags appear in the generated command line.
type Input struct {
	Name string

	kind   inputKind
	value  any
	param  *Param
	source *Op
}

// Value binds a literal value. A *Param or *Op passed here classifies as a
// parameter reference or task-output reference respectively, mirroring
// registration by value inspection; anything else is treated as a literal.
func Value(name string, value any) Input {
	switch v := value.(type) {
	case *Param:
		return FromParam(name, v)
	case *Op:
		return FromOutput(name, v)
	default:
		return Input{Name: name, kind: literalInput, value: value}
	}
}

// FromParam binds an existing pipeline-level parameter.
func FromParam(name string, param *Param) Input {
	return Input{Name: name, kind: paramInput, param: param}
}

// FromOutput binds the output of a previously registered operation.
func FromOutput(name string, source *Op) Input {
	return Input{Name: name, kind: outputInput, source: source}
}

// Source returns the operation this input depends on, or nil for literal and
// parameter inputs.
func (in Input) Source() *Op {
	return in.source
}
