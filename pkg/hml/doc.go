// Package hml turns plain Go functions into pipeline operations.
//
// A Pipeline is a named collection of operations. Registering a function
// produces an Op whose command-line argument list encodes how each of its
// inputs is sourced: a literal value, a pipeline-level parameter, or the
// output of another operation. The argument list is what the external
// workflow executor passes back to this application inside the operation's
// container, so the tokens it contains must match the executor's templating
// syntax byte for byte.
//
// The package does not schedule anything itself. DAG execution, retries and
// container scheduling belong to the external workflow and cluster
// platforms; this layer only builds the descriptors they consume, plus a
// small local runner for executing the registered functions directly during
// development and tests.
package hml
