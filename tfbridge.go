// Package tfbridge is a convenience layer over the TensorFlow runtime for
// loading, inspecting and running models from Go.
//
// Two on-disk formats are supported and exposed behind one Model type:
//
//   - SavedModel: a directory bundle with signatures mapping external layer
//     names to internal node names, shapes and element types.
//   - FrozenGraph: a single ".pb" file holding a serialized graph; inputs
//     and outputs are discovered heuristically from the node list.
//
// The format is picked from the filename suffix alone: paths ending in
// ".pb" load as frozen graphs, everything else as SavedModel directories.
//
// # Example Usage
//
//	import "github.com/tfbridge/tfbridge"
//
//	model, err := tfbridge.Load("mnist_saved_model")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer model.Close()
//
//	fmt.Println(model.Info())
//
//	shape, err := model.InputShape() // e.g. [-1 28 28]
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	output, err := model.RunSingle(input)
//
// For SavedModels, inputs and outputs are addressed by their layer names
// (the names chosen at model-authoring time); the translation to runtime
// node names happens internally. For frozen graphs, node names are used
// directly. Automatic output discovery on frozen graphs is a convenience
// default: pass explicit output names to Run when the heuristic guesses
// wrong.
//
// A loaded Model is not safe for concurrent use; callers wanting
// concurrency must serialize access or load one Model per goroutine.
package tfbridge

import (
	tf "github.com/hdu-hh/tensorflow/tensorflow/go"
	"github.com/hdu-hh/tensorflow/tensorflow/go/pbs"

	"github.com/tfbridge/tfbridge/internal/format"
	"github.com/tfbridge/tfbridge/internal/model"
	"github.com/tfbridge/tfbridge/internal/session"
)

// DataType is the runtime's element-type tag. DataTypeInvalid marks an
// absent or unknown type.
type DataType = pbs.DataType

// DataTypeInvalid is returned by type queries when the node is unknown or
// declares no element type.
const DataTypeInvalid = pbs.DataType_DT_INVALID

// Kind identifies an on-disk model format.
type Kind = format.Kind

// Model format kinds, selected by filename suffix at load time.
const (
	SavedModel  = format.SavedModel
	FrozenGraph = format.FrozenGraph
)

// Detect reports which format a path would load as. Purely suffix-based;
// the path does not need to exist.
func Detect(path string) Kind {
	return format.Detect(path)
}

// SessionConfig carries the GPU session settings passed at load time.
type SessionConfig = session.Config

// DefaultSessionConfig returns the default session settings: grow GPU
// usage dynamically, no memory cap, all devices visible.
func DefaultSessionConfig() SessionConfig {
	return session.DefaultConfig()
}

// LoadSessionConfig decodes a SessionConfig from a yaml file.
func LoadSessionConfig(path string) (SessionConfig, error) {
	return session.LoadFile(path)
}

// Options configures model loading. Start from DefaultOptions and override
// fields; the zero value disables GPU growth.
type Options = model.Options

// DefaultOptions returns the default load options: default session config,
// the "serve" meta-graph tag, the "serving_default" signature, no warmup.
func DefaultOptions() Options {
	return model.DefaultOptions()
}

// Model is a loaded SavedModel or FrozenGraph ready for introspection and
// execution.
type Model interface {
	// Run executes the model on named inputs and returns the requested
	// outputs by name.
	Run(inputs map[string]*tf.Tensor, outputNames []string) (map[string]*tf.Tensor, error)

	// RunSingle executes a single-input/single-output model; models with
	// other counts are rejected before any runtime call.
	RunSingle(input *tf.Tensor) (*tf.Tensor, error)

	// RunAll executes the model on positional inputs in default input
	// order and returns all outputs in default output order. An input
	// count mismatch is rejected before any runtime call.
	RunAll(inputs []*tf.Tensor) ([]*tf.Tensor, error)

	// NodeShape returns the declared shape of a named input or output;
	// -1 marks an unbound dimension. Unknown names yield an empty shape.
	NodeShape(name string) []int64

	// NodeType returns the declared element type of a named input or
	// output. Unknown names yield DataTypeInvalid.
	NodeType(name string) DataType

	// InputShape and friends are shortcuts for single-input/-output
	// models; they fail with the model's actual counts otherwise.
	InputShape() ([]int64, error)
	OutputShape() ([]int64, error)
	InputType() (DataType, error)
	OutputType() (DataType, error)

	// InputShapes, OutputShapes, InputTypes and OutputTypes report all
	// inputs/outputs in the model's name order.
	InputShapes() [][]int64
	OutputShapes() [][]int64
	InputTypes() []DataType
	OutputTypes() []DataType

	// InputNames returns the model's input names: layer names for
	// SavedModels, node names for frozen graphs.
	InputNames() []string
	OutputNames() []string
	NumInputs() int
	NumOutputs() int

	IsSavedModel() bool
	IsFrozenGraph() bool

	// Info returns a formatted description of the model's inputs and
	// outputs with shapes and element types.
	Info() string

	// Session and Graph expose the underlying runtime objects for callers
	// that need to go below the wrapper.
	Session() *tf.Session
	Graph() *tf.Graph

	// Close releases the runtime session.
	Close() error
}

// Load loads a model from a SavedModel directory or a frozen graph file.
//
// Example:
//
//	opts := tfbridge.DefaultOptions()
//	opts.Warmup = true
//	model, err := tfbridge.Load("frozen_graph.pb", opts)
func Load(path string, opts ...Options) (Model, error) {
	opt := model.DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	return model.Load(path, opt)
}

// SampleTensor builds a zero-filled tensor of the given element type and
// declared shape, substituting unbound (-1) dimensions with 1. Useful for
// smoke-testing a freshly loaded model.
func SampleTensor(dtype DataType, shape []int64) (*tf.Tensor, error) {
	return model.SampleTensor(dtype, shape)
}
