package model

import (
	"fmt"

	"github.com/hdu-hh/tensorflow/tensorflow/go/pbs"

	"github.com/tfbridge/tfbridge/internal/bundle"
	"github.com/tfbridge/tfbridge/internal/graphdef"
)

// NodeShape returns the declared shape of a named input or output. For
// SavedModels the name may be a layer name or a node name; for frozen
// graphs it is a node name. Unbound dimensions stay -1. Unknown names
// degrade to an empty shape.
func (m *Model) NodeShape(name string) []int64 {
	if m.IsFrozenGraph() {
		return graphdef.NodeShape(m.graphDef, name)
	}
	return bundle.NodeShape(m.sig, m.nodeName(name))
}

// NodeType returns the declared element type of a named input or output,
// with the same name handling as NodeShape. Unknown names degrade to
// DT_INVALID.
func (m *Model) NodeType(name string) pbs.DataType {
	if m.IsFrozenGraph() {
		return graphdef.NodeType(m.graphDef, name)
	}
	return bundle.NodeType(m.sig, m.nodeName(name))
}

// nodeName maps a layer name to its node name, passing through names that
// are not declared layers so callers may query by node name directly.
func (m *Model) nodeName(name string) string {
	if node, ok := m.names.LayerToNode[name]; ok {
		return node
	}
	return name
}

// InputShape returns the shape of the model input. Only available for
// single-input models; other models are rejected with their input count.
func (m *Model) InputShape() ([]int64, error) {
	if m.NumInputs() != 1 {
		return nil, fmt.Errorf("InputShape is only available for single-input models: found %d inputs",
			m.NumInputs())
	}
	return m.NodeShape(m.inputNames[0]), nil
}

// OutputShape returns the shape of the model output. Only available for
// single-output models.
func (m *Model) OutputShape() ([]int64, error) {
	if m.NumOutputs() != 1 {
		return nil, fmt.Errorf("OutputShape is only available for single-output models: found %d outputs",
			m.NumOutputs())
	}
	return m.NodeShape(m.outputNames[0]), nil
}

// InputType returns the element type of the model input. Only available for
// single-input models.
func (m *Model) InputType() (pbs.DataType, error) {
	if m.NumInputs() != 1 {
		return pbs.DataType_DT_INVALID, fmt.Errorf(
			"InputType is only available for single-input models: found %d inputs", m.NumInputs())
	}
	return m.NodeType(m.inputNames[0]), nil
}

// OutputType returns the element type of the model output. Only available
// for single-output models.
func (m *Model) OutputType() (pbs.DataType, error) {
	if m.NumOutputs() != 1 {
		return pbs.DataType_DT_INVALID, fmt.Errorf(
			"OutputType is only available for single-output models: found %d outputs", m.NumOutputs())
	}
	return m.NodeType(m.outputNames[0]), nil
}

// InputShapes returns the shapes of all inputs in the model's input order.
func (m *Model) InputShapes() [][]int64 {
	shapes := make([][]int64, len(m.inputNames))
	for i, name := range m.inputNames {
		shapes[i] = m.NodeShape(name)
	}
	return shapes
}

// OutputShapes returns the shapes of all outputs in the model's output order.
func (m *Model) OutputShapes() [][]int64 {
	shapes := make([][]int64, len(m.outputNames))
	for i, name := range m.outputNames {
		shapes[i] = m.NodeShape(name)
	}
	return shapes
}

// InputTypes returns the element types of all inputs in input order.
func (m *Model) InputTypes() []pbs.DataType {
	types := make([]pbs.DataType, len(m.inputNames))
	for i, name := range m.inputNames {
		types[i] = m.NodeType(name)
	}
	return types
}

// OutputTypes returns the element types of all outputs in output order.
func (m *Model) OutputTypes() []pbs.DataType {
	types := make([]pbs.DataType, len(m.outputNames))
	for i, name := range m.outputNames {
		types[i] = m.NodeType(name)
	}
	return types
}
