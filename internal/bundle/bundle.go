// Package bundle inspects SavedModel directory bundles.
//
// A bundle's saved_model.pb describes one or more meta-graphs, each tagged
// and carrying named signatures. A signature maps external layer names
// (chosen at model-authoring time) to internal node descriptors with the
// true node name, shape and element type. Decoding the proto directly keeps
// introspection independent of the runtime: no session is needed to answer
// "what are this model's inputs".
//
// As in package graphdef, shape/type/name lookups degrade to empty results;
// only loading and meta-graph/signature selection fail loudly.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/hdu-hh/tensorflow/tensorflow/go/pbs"
	"google.golang.org/protobuf/proto"
)

const (
	// ServeTag marks the meta-graph exported for serving.
	ServeTag = "serve"
	// DefaultSignatureKey is the signature queried when the caller does not
	// pick one.
	DefaultSignatureKey = "serving_default"

	savedModelFilename = "saved_model.pb"
)

// NameMap is the bidirectional translation between external layer names and
// internal node names, built once per signature. The two maps are exact
// inverses over the signature's declared inputs and outputs.
type NameMap struct {
	LayerToNode map[string]string
	NodeToLayer map[string]string
}

// Load reads and decodes <dir>/saved_model.pb.
func Load(dir string) (*pbs.SavedModel, error) {
	data, err := os.ReadFile(filepath.Join(dir, savedModelFilename))
	if err != nil {
		return nil, fmt.Errorf("failed to read SavedModel: %w", err)
	}
	model := &pbs.SavedModel{}
	if err := proto.Unmarshal(data, model); err != nil {
		return nil, fmt.Errorf("failed to decode SavedModel %s: %w", dir, err)
	}
	return model, nil
}

// MetaGraph selects the meta-graph carrying all of the given tags. With no
// tags it defaults to the serving tag.
func MetaGraph(model *pbs.SavedModel, tags ...string) (*pbs.MetaGraphDef, error) {
	if len(tags) == 0 {
		tags = []string{ServeTag}
	}
	var available []string
	for _, mg := range model.GetMetaGraphs() {
		got := mg.GetMetaInfoDef().GetTags()
		available = append(available, strings.Join(got, ","))
		matched := true
		for _, tag := range tags {
			if !slices.Contains(got, tag) {
				matched = false
				break
			}
		}
		if matched {
			return mg, nil
		}
	}
	return nil, fmt.Errorf("no meta-graph with tags %v, available tag-sets: %v", tags, available)
}

// Signature selects a signature by key. With an empty key it defaults to
// "serving_default".
func Signature(mg *pbs.MetaGraphDef, key string) (*pbs.SignatureDef, error) {
	if key == "" {
		key = DefaultSignatureKey
	}
	if sig, ok := mg.GetSignatureDef()[key]; ok {
		return sig, nil
	}
	keys := make([]string, 0, len(mg.GetSignatureDef()))
	for k := range mg.GetSignatureDef() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return nil, fmt.Errorf("no signature %q, available signatures: %v", key, keys)
}

// InputNodeNames returns the node names of the signature's declared inputs,
// sorted lexicographically. Declaration order is not stable across model
// reloads, so sorting by node name is the deterministic order every
// multi-node query uses.
func InputNodeNames(sig *pbs.SignatureDef) []string {
	return sortedNodeNames(sig.GetInputs())
}

// OutputNodeNames returns the node names of the signature's declared
// outputs, sorted lexicographically.
func OutputNodeNames(sig *pbs.SignatureDef) []string {
	return sortedNodeNames(sig.GetOutputs())
}

func sortedNodeNames(entries map[string]*pbs.TensorInfo) []string {
	names := make([]string, 0, len(entries))
	for _, info := range entries {
		names = append(names, info.GetName())
	}
	sort.Strings(names)
	return names
}

// BuildNameMap records layer->node and node->layer for every declared input
// and output entry in a single pass. Duplicate layer or node names silently
// overwrite earlier entries; signatures produced by the runtime's exporters
// do not contain duplicates.
func BuildNameMap(sig *pbs.SignatureDef) NameMap {
	m := NameMap{
		LayerToNode: make(map[string]string),
		NodeToLayer: make(map[string]string),
	}
	for _, entries := range []map[string]*pbs.TensorInfo{sig.GetInputs(), sig.GetOutputs()} {
		for layer, info := range entries {
			m.LayerToNode[layer] = info.GetName()
			m.NodeToLayer[info.GetName()] = layer
		}
	}
	return m
}

// NodeByLayer resolves a layer name to its node name, or "" if the layer is
// not declared by the signature.
func NodeByLayer(sig *pbs.SignatureDef, layerName string) string {
	for _, entries := range []map[string]*pbs.TensorInfo{sig.GetInputs(), sig.GetOutputs()} {
		if info, ok := entries[layerName]; ok {
			return info.GetName()
		}
	}
	return ""
}

// LayerByNode resolves a node name to its layer name, or "" if no declared
// entry uses that node.
func LayerByNode(sig *pbs.SignatureDef, nodeName string) string {
	for _, entries := range []map[string]*pbs.TensorInfo{sig.GetInputs(), sig.GetOutputs()} {
		for layer, info := range entries {
			if info.GetName() == nodeName {
				return layer
			}
		}
	}
	return ""
}

// NodeShape returns the declared shape of the entry with the given node
// name. Unbound dimensions stay -1. Unknown nodes yield an empty shape.
func NodeShape(sig *pbs.SignatureDef, nodeName string) []int64 {
	if info := findNode(sig, nodeName); info != nil {
		return dims(info.GetTensorShape())
	}
	return nil
}

// NodeType returns the declared element type of the entry with the given
// node name, or DT_INVALID for unknown nodes.
func NodeType(sig *pbs.SignatureDef, nodeName string) pbs.DataType {
	if info := findNode(sig, nodeName); info != nil {
		return info.GetDtype()
	}
	return pbs.DataType_DT_INVALID
}

func findNode(sig *pbs.SignatureDef, nodeName string) *pbs.TensorInfo {
	for _, entries := range []map[string]*pbs.TensorInfo{sig.GetInputs(), sig.GetOutputs()} {
		for _, info := range entries {
			if info.GetName() == nodeName {
				return info
			}
		}
	}
	return nil
}

// Info returns a formatted description of every signature of every
// meta-graph: layer names, node names, shapes and element types.
func Info(model *pbs.SavedModel) string {
	var b strings.Builder
	b.WriteString("SavedModel Info:\n")
	for _, mg := range model.GetMetaGraphs() {
		fmt.Fprintf(&b, "Tags: %v\n", mg.GetMetaInfoDef().GetTags())
		b.WriteString("Signatures:\n")

		keys := make([]string, 0, len(mg.GetSignatureDef()))
		for k := range mg.GetSignatureDef() {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			sig := mg.GetSignatureDef()[key]
			fmt.Fprintf(&b, "  %s\n", key)
			writeEntries(&b, "Inputs", sig.GetInputs())
			writeEntries(&b, "Outputs", sig.GetOutputs())
		}
	}
	return b.String()
}

func writeEntries(b *strings.Builder, label string, entries map[string]*pbs.TensorInfo) {
	fmt.Fprintf(b, "    %s: %d\n", label, len(entries))
	layers := make([]string, 0, len(entries))
	for layer := range entries {
		layers = append(layers, layer)
	}
	sort.Strings(layers)
	for _, layer := range layers {
		info := entries[layer]
		fmt.Fprintf(b, "      %s: %s\n", layer, info.GetName())
		fmt.Fprintf(b, "        Shape: %v\n", dims(info.GetTensorShape()))
		fmt.Fprintf(b, "        DataType: %s\n", info.GetDtype())
	}
}

func dims(shape *pbs.TensorShapeProto) []int64 {
	if shape == nil || shape.GetUnknownRank() {
		return nil
	}
	sizes := make([]int64, 0, len(shape.GetDim()))
	for _, d := range shape.GetDim() {
		sizes = append(sizes, d.GetSize())
	}
	return sizes
}
