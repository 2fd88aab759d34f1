package model

// These tests cover the wrapper's own logic: convenience-call validation,
// name handling and sample tensor construction. They link against the
// TensorFlow C library like everything else in this package but create no
// sessions. End-to-end load/run coverage lives in e2e_test.go and needs
// model fixtures.

import (
	"testing"

	tf "github.com/hdu-hh/tensorflow/tensorflow/go"
	"github.com/hdu-hh/tensorflow/tensorflow/go/pbs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfbridge/tfbridge/internal/format"
)

func twoInputModel() *Model {
	return &Model{
		kind:        format.FrozenGraph,
		inputNames:  []string{"a", "b"},
		outputNames: []string{"out"},
	}
}

func TestRunAllCountMismatchFailsBeforeRuntimeCall(t *testing.T) {
	m := twoInputModel()
	// The model has no session at all: if validation did not fire first,
	// this would crash rather than return an error.
	_, err := m.RunAll([]*tf.Tensor{nil, nil, nil})
	require.Error(t, err)
	assert.EqualError(t, err, "model has 2 inputs, but 3 input tensors were given")
}

func TestRunSingleRejectsMultiInputModels(t *testing.T) {
	m := twoInputModel()
	_, err := m.RunSingle(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only available for single-input/single-output models")
	assert.Contains(t, err.Error(), "2 inputs")
	assert.Contains(t, err.Error(), "1 outputs")
}

func TestSingleInputGettersRejectMultiInputModels(t *testing.T) {
	m := twoInputModel()

	_, err := m.InputShape()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only available for single-input models")
	assert.Contains(t, err.Error(), "2 inputs")

	_, err = m.InputType()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 inputs")
}

func TestSingleOutputGettersRejectMultiOutputModels(t *testing.T) {
	m := &Model{
		kind:        format.FrozenGraph,
		inputNames:  []string{"x"},
		outputNames: []string{"scores", "logits"},
	}

	_, err := m.OutputShape()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only available for single-output models")
	assert.Contains(t, err.Error(), "2 outputs")

	_, err = m.OutputType()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 outputs")
}

func TestNodeShapeFromGraphDef(t *testing.T) {
	m := &Model{
		kind: format.FrozenGraph,
		graphDef: &pbs.GraphDef{Node: []*pbs.NodeDef{{
			Name: "x",
			Op:   "Placeholder",
			Attr: map[string]*pbs.AttrValue{
				"shape": {Value: &pbs.AttrValue_Shape{Shape: &pbs.TensorShapeProto{
					Dim: []*pbs.TensorShapeProto_Dim{{Size: -1}, {Size: 28}, {Size: 28}},
				}}},
				"dtype": {Value: &pbs.AttrValue_Type{Type: pbs.DataType_DT_FLOAT}},
			},
		}}},
		inputNames:  []string{"x"},
		outputNames: []string{"softmax"},
	}

	shape, err := m.InputShape()
	require.NoError(t, err)
	assert.Equal(t, []int64{-1, 28, 28}, shape)

	dtype, err := m.InputType()
	require.NoError(t, err)
	assert.Equal(t, pbs.DataType_DT_FLOAT, dtype)

	// Degrading query for the unknown node.
	assert.Empty(t, m.NodeShape("no_such_node"))
	assert.Equal(t, pbs.DataType_DT_INVALID, m.NodeType("no_such_node"))
}

func TestSampleTensorSubstitutesBatchDimension(t *testing.T) {
	tensor, err := SampleTensor(pbs.DataType_DT_FLOAT, []int64{-1, 28, 28})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 28, 28}, tensor.Shape())
}

func TestSampleTensorScalar(t *testing.T) {
	tensor, err := SampleTensor(pbs.DataType_DT_INT64, nil)
	require.NoError(t, err)
	assert.Empty(t, tensor.Shape())
	assert.Equal(t, int64(0), tensor.Value())
}

func TestSampleTensorZeroFilled(t *testing.T) {
	tensor, err := SampleTensor(pbs.DataType_DT_INT32, []int64{2, 3})
	require.NoError(t, err)
	assert.Equal(t, [][]int32{{0, 0, 0}, {0, 0, 0}}, tensor.Value())
}

func TestSampleTensorUnsupportedType(t *testing.T) {
	_, err := SampleTensor(pbs.DataType_DT_HALF, []int64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported element type")

	_, err = SampleTensor(pbs.DataType_DT_QINT8, []int64{1})
	require.Error(t, err)
}

func TestSampleTensorRejectsNegativeDimensions(t *testing.T) {
	_, err := SampleTensor(pbs.DataType_DT_FLOAT, []int64{-2, 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid dimension")
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.True(t, opts.Config.AllowGrowth)
	assert.Equal(t, []string{"serve"}, opts.Tags)
	assert.Equal(t, "serving_default", opts.SignatureKey)
	assert.False(t, opts.Warmup)
}
