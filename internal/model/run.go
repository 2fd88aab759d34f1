package model

import (
	"fmt"
	"strconv"
	"strings"

	tf "github.com/hdu-hh/tensorflow/tensorflow/go"
)

// Run executes the model on named inputs and returns the requested outputs
// by name. For SavedModels the names are layer names and are translated to
// node names before the session call; for frozen graphs they are node names
// and pass through verbatim.
func (m *Model) Run(inputs map[string]*tf.Tensor, outputNames []string) (map[string]*tf.Tensor, error) {
	feeds := make(map[tf.Output]*tf.Tensor, len(inputs))
	for name, tensor := range inputs {
		out, err := m.resolve(name)
		if err != nil {
			return nil, err
		}
		feeds[out] = tensor
	}

	fetches := make([]tf.Output, len(outputNames))
	for i, name := range outputNames {
		out, err := m.resolve(name)
		if err != nil {
			return nil, err
		}
		fetches[i] = out
	}

	results, err := m.sess.Run(feeds, fetches, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to run model: %w", err)
	}

	outputs := make(map[string]*tf.Tensor, len(results))
	for i, tensor := range results {
		outputs[outputNames[i]] = tensor
	}
	return outputs, nil
}

// RunSingle executes a single-input/single-output model without naming
// anything. Models with other input/output counts are rejected before any
// runtime call.
func (m *Model) RunSingle(input *tf.Tensor) (*tf.Tensor, error) {
	if m.NumInputs() != 1 || m.NumOutputs() != 1 {
		return nil, fmt.Errorf(
			"RunSingle is only available for single-input/single-output models: found %d inputs and %d outputs",
			m.NumInputs(), m.NumOutputs())
	}
	outputs, err := m.Run(map[string]*tf.Tensor{m.inputNames[0]: input}, []string{m.outputNames[0]})
	if err != nil {
		return nil, err
	}
	return outputs[m.outputNames[0]], nil
}

// RunAll executes the model on positional inputs, assigned to the model's
// inputs in default order, and returns all outputs in default order. An
// input count mismatch is rejected before any runtime call, reporting both
// counts.
func (m *Model) RunAll(inputs []*tf.Tensor) ([]*tf.Tensor, error) {
	if len(inputs) != m.NumInputs() {
		return nil, fmt.Errorf("model has %d inputs, but %d input tensors were given",
			m.NumInputs(), len(inputs))
	}

	named := make(map[string]*tf.Tensor, len(inputs))
	for i, tensor := range inputs {
		named[m.inputNames[i]] = tensor
	}
	outputs, err := m.Run(named, m.outputNames)
	if err != nil {
		return nil, err
	}

	ordered := make([]*tf.Tensor, len(m.outputNames))
	for i, name := range m.outputNames {
		ordered[i] = outputs[name]
	}
	return ordered, nil
}

// resolve maps a user-facing name to a graph output. SavedModel layer names
// go through the name map first; anything else is treated as a node
// reference of the form "name" or "name:index".
func (m *Model) resolve(name string) (tf.Output, error) {
	node := name
	if m.IsSavedModel() {
		if mapped, ok := m.names.LayerToNode[name]; ok {
			node = mapped
		} else {
			return tf.Output{}, fmt.Errorf("unknown layer name %q", name)
		}
	}
	return m.output(node)
}

func (m *Model) output(ref string) (tf.Output, error) {
	name, index := ref, 0
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		idx, err := strconv.Atoi(ref[i+1:])
		if err != nil {
			return tf.Output{}, fmt.Errorf("invalid node reference %q", ref)
		}
		name, index = ref[:i], idx
	}
	op := m.graph.Operation(name)
	if op == nil {
		return tf.Output{}, fmt.Errorf("node %q not found in graph", name)
	}
	return op.Output(index), nil
}
