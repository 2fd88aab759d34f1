package model

// End-to-end coverage against real model files. The fixtures are not
// checked in; point the environment variables at a single-input
// ([-1,28,28] float32) / single-output ([-1,10] float32) classifier:
//
//	TFBRIDGE_TEST_SAVED_MODEL=/path/to/saved_model_dir
//	TFBRIDGE_TEST_FROZEN_GRAPH=/path/to/frozen_graph.pb

import (
	"os"
	"testing"

	tf "github.com/hdu-hh/tensorflow/tensorflow/go"
	"github.com/hdu-hh/tensorflow/tensorflow/go/pbs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, env string) *Model {
	t.Helper()
	path := os.Getenv(env)
	if path == "" {
		t.Skipf("%s not set", env)
	}
	m, err := Load(path, DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestSavedModelEndToEnd(t *testing.T) {
	m := loadFixture(t, "TFBRIDGE_TEST_SAVED_MODEL")

	assert.True(t, m.IsSavedModel())
	assert.Equal(t, 1, m.NumInputs())
	assert.Equal(t, 1, m.NumOutputs())

	shape, err := m.InputShape()
	require.NoError(t, err)
	assert.Equal(t, []int64{-1, 28, 28}, shape)

	dtype, err := m.InputType()
	require.NoError(t, err)
	assert.Equal(t, pbs.DataType_DT_FLOAT, dtype)

	outShape, err := m.OutputShape()
	require.NoError(t, err)
	assert.Equal(t, []int64{-1, 10}, outShape)

	input, err := SampleTensor(pbs.DataType_DT_FLOAT, shape)
	require.NoError(t, err)

	output, err := m.RunSingle(input)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 10}, output.Shape())
}

func TestFrozenGraphEndToEnd(t *testing.T) {
	m := loadFixture(t, "TFBRIDGE_TEST_FROZEN_GRAPH")

	assert.True(t, m.IsFrozenGraph())
	require.Equal(t, 1, m.NumInputs())

	shapes := m.InputShapes()
	require.Len(t, shapes, 1)

	input, err := SampleTensor(m.InputTypes()[0], shapes[0])
	require.NoError(t, err)

	outputs, err := m.RunAll([]*tf.Tensor{input})
	require.NoError(t, err)
	require.Len(t, outputs, m.NumOutputs())
}

func TestWarmupEndToEnd(t *testing.T) {
	path := os.Getenv("TFBRIDGE_TEST_SAVED_MODEL")
	if path == "" {
		t.Skip("TFBRIDGE_TEST_SAVED_MODEL not set")
	}
	opts := DefaultOptions()
	opts.Warmup = true
	m, err := Load(path, opts)
	require.NoError(t, err)
	require.NoError(t, m.Close())
}
