// Package format decides which on-disk model format a path refers to.
package format

import "strings"

// Kind identifies an on-disk model format.
type Kind int

const (
	// SavedModel is a directory bundle with a saved_model.pb, variables
	// and a computation graph.
	SavedModel Kind = iota
	// FrozenGraph is a single binary-serialized GraphDef file.
	FrozenGraph
)

func (k Kind) String() string {
	switch k {
	case SavedModel:
		return "SavedModel"
	case FrozenGraph:
		return "FrozenGraph"
	default:
		return "Unknown"
	}
}

// Detect selects the format from the filename suffix alone: a path ending
// in ".pb" is a FrozenGraph, anything else is a SavedModel directory.
// The path is not touched on disk and may not exist.
func Detect(path string) Kind {
	if strings.HasSuffix(path, ".pb") {
		return FrozenGraph
	}
	return SavedModel
}
