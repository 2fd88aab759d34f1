// Package model wraps a loaded TensorFlow model behind one type, uniform
// over the SavedModel and FrozenGraph on-disk formats.
//
// The format is picked once at load time from the filename suffix. All
// introspection data (input/output names, shapes, element types, the
// layer/node name maps) is derived once during Load and is read-only
// afterwards; the wrapper assumes single-owner, single-thread access.
package model

import (
	"fmt"
	"os"

	tf "github.com/hdu-hh/tensorflow/tensorflow/go"
	"github.com/hdu-hh/tensorflow/tensorflow/go/pbs"

	"github.com/tfbridge/tfbridge/internal/bundle"
	"github.com/tfbridge/tfbridge/internal/format"
	"github.com/tfbridge/tfbridge/internal/graphdef"
	"github.com/tfbridge/tfbridge/internal/session"
)

// Options configures model loading. The zero value disables GPU growth;
// start from DefaultOptions and override fields.
type Options struct {
	// Config carries the GPU session settings.
	Config session.Config

	// Tags select the SavedModel meta-graph. Empty defaults to the serving
	// tag. Ignored for frozen graphs.
	Tags []string

	// SignatureKey selects the SavedModel signature to introspect. Empty
	// defaults to "serving_default". Ignored for frozen graphs.
	SignatureKey string

	// Warmup runs one inference on zero-filled sample inputs after loading
	// to speed up the first real call.
	Warmup bool
}

// DefaultOptions returns the default load options.
func DefaultOptions() Options {
	return Options{
		Config:       session.DefaultConfig(),
		Tags:         []string{bundle.ServeTag},
		SignatureKey: bundle.DefaultSignatureKey,
	}
}

// Model is a loaded SavedModel or FrozenGraph ready to run.
type Model struct {
	kind  format.Kind
	sess  *tf.Session
	graph *tf.Graph

	// FrozenGraph introspection source.
	graphDef *pbs.GraphDef

	// SavedModel introspection source.
	saved *pbs.SavedModel
	sig   *pbs.SignatureDef
	names bundle.NameMap

	// Layer names for SavedModels, node names for frozen graphs. For
	// SavedModels the order follows the lexicographically sorted node
	// names; for frozen graphs it is graph declaration order.
	inputNames  []string
	outputNames []string
}

// Load loads a SavedModel directory or a frozen graph file, dispatching on
// the filename suffix (".pb" means frozen graph). Any runtime-reported load
// error aborts with a wrapped diagnostic.
func Load(path string, opts Options) (*Model, error) {
	cfg, err := opts.Config.Marshal()
	if err != nil {
		return nil, err
	}
	sessOpts := &tf.SessionOptions{Config: cfg}

	m := &Model{kind: format.Detect(path)}
	switch m.kind {
	case format.FrozenGraph:
		err = m.loadFrozenGraph(path, sessOpts)
	default:
		err = m.loadSavedModel(path, sessOpts, opts)
	}
	if err != nil {
		return nil, err
	}

	if opts.Warmup {
		if err := m.warmup(); err != nil {
			m.Close()
			return nil, err
		}
	}
	return m, nil
}

func (m *Model) loadFrozenGraph(path string, sessOpts *tf.SessionOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read frozen graph: %w", err)
	}
	if m.graphDef, err = graphdef.Parse(data); err != nil {
		return err
	}

	m.graph = tf.NewGraph()
	if err := m.graph.Import(data, ""); err != nil {
		return fmt.Errorf("failed to load graph into session: %w", err)
	}
	if m.sess, err = tf.NewSession(m.graph, sessOpts); err != nil {
		return fmt.Errorf("failed to create new session: %w", err)
	}

	m.inputNames = graphdef.InputNames(m.graphDef)
	m.outputNames = graphdef.OutputNames(m.graphDef)
	return nil
}

func (m *Model) loadSavedModel(dir string, sessOpts *tf.SessionOptions, opts Options) error {
	saved, err := bundle.Load(dir)
	if err != nil {
		return err
	}
	mg, err := bundle.MetaGraph(saved, opts.Tags...)
	if err != nil {
		return err
	}
	sig, err := bundle.Signature(mg, opts.SignatureKey)
	if err != nil {
		return err
	}

	tags := opts.Tags
	if len(tags) == 0 {
		tags = []string{bundle.ServeTag}
	}
	sm, err := tf.LoadSavedModel(dir, tags, sessOpts)
	if err != nil {
		return fmt.Errorf("failed to load SavedModel: %w", err)
	}

	m.saved = saved
	m.sig = sig
	m.sess = sm.Session
	m.graph = sm.Graph
	m.names = bundle.BuildNameMap(sig)

	for _, node := range bundle.InputNodeNames(sig) {
		m.inputNames = append(m.inputNames, m.names.NodeToLayer[node])
	}
	for _, node := range bundle.OutputNodeNames(sig) {
		m.outputNames = append(m.outputNames, m.names.NodeToLayer[node])
	}
	return nil
}

// InputNames returns the model's input names: layer names for SavedModels,
// node names for frozen graphs.
func (m *Model) InputNames() []string { return m.inputNames }

// OutputNames returns the model's output names.
func (m *Model) OutputNames() []string { return m.outputNames }

// NumInputs returns the number of model inputs.
func (m *Model) NumInputs() int { return len(m.inputNames) }

// NumOutputs returns the number of model outputs.
func (m *Model) NumOutputs() int { return len(m.outputNames) }

// IsSavedModel reports whether the model was loaded from a directory bundle.
func (m *Model) IsSavedModel() bool { return m.kind == format.SavedModel }

// IsFrozenGraph reports whether the model was loaded from a frozen graph.
func (m *Model) IsFrozenGraph() bool { return m.kind == format.FrozenGraph }

// Session exposes the underlying runtime session.
func (m *Model) Session() *tf.Session { return m.sess }

// Graph exposes the underlying runtime graph.
func (m *Model) Graph() *tf.Graph { return m.graph }

// Info returns a formatted description of the model's inputs and outputs.
func (m *Model) Info() string {
	if m.IsFrozenGraph() {
		return graphdef.Info(m.graphDef)
	}
	return bundle.Info(m.saved)
}

// Close releases the runtime session.
func (m *Model) Close() error {
	if m.sess == nil {
		return nil
	}
	return m.sess.Close()
}
