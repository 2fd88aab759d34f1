// Package graphdef inspects frozen TensorFlow graphs.
//
// A frozen graph is a single binary-serialized GraphDef. The package decodes
// it into the pregenerated proto types and answers introspection questions
// by scanning the node list: which nodes are graph inputs, which are likely
// outputs, and what shape and element type a named node declares.
//
// Shape and type lookups are degrading queries: a missing node and a missing
// attribute both yield an empty result rather than an error. Callers that
// need to tell the two apart should check node presence themselves.
package graphdef

import (
	"fmt"
	"os"
	"strings"

	"github.com/hdu-hh/tensorflow/tensorflow/go/pbs"
	"google.golang.org/protobuf/proto"
)

// placeholderOp marks a graph input node.
const placeholderOp = "Placeholder"

// unlikelyOutputOps are op types that are never meaningful graph outputs:
// constant initialization, variable assignment, no-op barriers, input
// placeholders and runtime assertions.
var unlikelyOutputOps = map[string]bool{
	"Const":       true,
	"Assign":      true,
	"NoOp":        true,
	"Placeholder": true,
	"Assert":      true,
}

// Load reads and decodes a frozen graph file.
func Load(path string) (*pbs.GraphDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frozen graph: %w", err)
	}
	return Parse(data)
}

// Parse decodes a binary-serialized GraphDef.
func Parse(data []byte) (*pbs.GraphDef, error) {
	graph := &pbs.GraphDef{}
	if err := proto.Unmarshal(data, graph); err != nil {
		return nil, fmt.Errorf("failed to decode frozen graph: %w", err)
	}
	return graph, nil
}

// InputNames returns the names of all graph input nodes, i.e. every node
// whose op is "Placeholder", in graph declaration order. A graph without
// placeholders yields an empty list; that is unusual but not an error.
func InputNames(graph *pbs.GraphDef) []string {
	var names []string
	for _, node := range graph.GetNode() {
		if node.GetOp() == placeholderOp {
			names = append(names, node.GetName())
		}
	}
	return names
}

// OutputNames returns the names of the likely graph output nodes.
//
// A node is considered an output if no other node references it in its input
// list and its op type is not one of the unlikely-output ops. Input
// references are compared verbatim, so an indexed reference such as "x:1" or
// a control dependency "^x" does not count as consuming node "x".
//
// This is a best-effort heuristic: dead-end debug nodes of other op types
// are over-reported, and true outputs consumed by bookkeeping nodes are
// missed. Callers should treat the result as a convenience default and pass
// explicit output names when they know them.
func OutputNames(graph *pbs.GraphDef) []string {
	referenced := make(map[string]bool)
	for _, node := range graph.GetNode() {
		for _, input := range node.GetInput() {
			referenced[input] = true
		}
	}
	var names []string
	for _, node := range graph.GetNode() {
		if !referenced[node.GetName()] && !unlikelyOutputOps[node.GetOp()] {
			names = append(names, node.GetName())
		}
	}
	return names
}

// NodeShape returns the declared shape of the named node. Dimensions of -1
// denote an unbound (batch) size and are returned unchanged. An unknown node
// or a node without a shape attribute yields an empty shape.
func NodeShape(graph *pbs.GraphDef, name string) []int64 {
	for _, node := range graph.GetNode() {
		if node.GetName() != name {
			continue
		}
		attr, ok := node.GetAttr()["shape"]
		if !ok {
			return nil
		}
		return dims(attr.GetShape())
	}
	return nil
}

// NodeType returns the declared element type of the named node. An unknown
// node or a node without a dtype attribute yields DT_INVALID.
func NodeType(graph *pbs.GraphDef, name string) pbs.DataType {
	for _, node := range graph.GetNode() {
		if node.GetName() != name {
			continue
		}
		attr, ok := node.GetAttr()["dtype"]
		if !ok {
			return pbs.DataType_DT_INVALID
		}
		return attr.GetType()
	}
	return pbs.DataType_DT_INVALID
}

// Info returns a formatted description of the graph's discovered inputs and
// outputs with their shapes and element types.
func Info(graph *pbs.GraphDef) string {
	var b strings.Builder
	b.WriteString("FrozenGraph Info:\n")

	inputs := InputNames(graph)
	fmt.Fprintf(&b, "Inputs: %d\n", len(inputs))
	for _, name := range inputs {
		writeNodeInfo(&b, graph, name)
	}

	outputs := OutputNames(graph)
	fmt.Fprintf(&b, "Outputs: %d\n", len(outputs))
	for _, name := range outputs {
		writeNodeInfo(&b, graph, name)
	}

	return b.String()
}

func writeNodeInfo(b *strings.Builder, graph *pbs.GraphDef, name string) {
	fmt.Fprintf(b, "  %s\n", name)
	fmt.Fprintf(b, "    Shape: %v\n", NodeShape(graph, name))
	fmt.Fprintf(b, "    DataType: %s\n", NodeType(graph, name))
}

// dims flattens a shape proto into its dimension sizes. An unknown-rank
// shape has no dimensions.
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
