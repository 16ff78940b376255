package hml

import "fmt"

// Param is a pipeline-level parameter. A Param either carries a value set at
// submission time, or refers to the output of another operation when OpName
// is not empty.
type Param struct {
	Name   string
	Value  string
	OpName string
}

// Placeholder renders the templating token the external executor substitutes
// at run time. The exact textual form is part of the workflow builder
// boundary and must not change.
func (p *Param) Placeholder() string {
	if p.OpName != "" {
		return fmt.Sprintf("{{tasks.%s.outputs.parameters.%s}}", p.OpName, p.Name)
	}

	return fmt.Sprintf("{{inputs.parameters.%s}}", p.Name)
}
