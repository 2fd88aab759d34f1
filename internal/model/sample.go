package model

import (
	"fmt"
	"reflect"

	tf "github.com/hdu-hh/tensorflow/tensorflow/go"
	"github.com/hdu-hh/tensorflow/tensorflow/go/pbs"
)

// sampleElemTypes maps element types to the Go types sample tensors are
// built from. Half precision, bfloat16 and the quantized variants have no
// Go representation and are unsupported.
var sampleElemTypes = map[pbs.DataType]reflect.Type{
	pbs.DataType_DT_FLOAT:      reflect.TypeOf(float32(0)),
	pbs.DataType_DT_DOUBLE:     reflect.TypeOf(float64(0)),
	pbs.DataType_DT_INT8:       reflect.TypeOf(int8(0)),
	pbs.DataType_DT_INT16:      reflect.TypeOf(int16(0)),
	pbs.DataType_DT_INT32:      reflect.TypeOf(int32(0)),
	pbs.DataType_DT_INT64:      reflect.TypeOf(int64(0)),
	pbs.DataType_DT_UINT8:      reflect.TypeOf(uint8(0)),
	pbs.DataType_DT_UINT16:     reflect.TypeOf(uint16(0)),
	pbs.DataType_DT_UINT32:     reflect.TypeOf(uint32(0)),
	pbs.DataType_DT_UINT64:     reflect.TypeOf(uint64(0)),
	pbs.DataType_DT_BOOL:       reflect.TypeOf(false),
	pbs.DataType_DT_STRING:     reflect.TypeOf(""),
	pbs.DataType_DT_COMPLEX64:  reflect.TypeOf(complex64(0)),
	pbs.DataType_DT_COMPLEX128: reflect.TypeOf(complex128(0)),
}

// SampleTensor builds a zero-filled tensor of the given element type and
// declared shape. Unbound (-1) dimensions are substituted with 1; this is
// the only place such substitution happens, introspection always reports
// declared shapes unchanged.
func SampleTensor(dtype pbs.DataType, shape []int64) (*tf.Tensor, error) {
	elem, ok := sampleElemTypes[dtype]
	if !ok {
		return nil, fmt.Errorf("unsupported element type %s for sample tensor", dtype)
	}

	dims := make([]int, len(shape))
	for i, d := range shape {
		if d == -1 {
			d = 1
		}
		if d < 0 {
			return nil, fmt.Errorf("invalid dimension %d in shape %v", d, shape)
		}
		dims[i] = int(d)
	}

	tensor, err := tf.NewTensor(zeroValue(elem, dims))
	if err != nil {
		return nil, fmt.Errorf("failed to build sample tensor: %w", err)
	}
	return tensor, nil
}

// zeroValue builds a zero-filled nested slice (or scalar for an empty
// shape) with the given element type.
func zeroValue(elem reflect.Type, dims []int) interface{} {
	typ := elem
	for range dims {
		typ = reflect.SliceOf(typ)
	}
	return makeZero(typ, dims).Interface()
}

func makeZero(typ reflect.Type, dims []int) reflect.Value {
	if len(dims) == 0 {
		return reflect.Zero(typ)
	}
	s := reflect.MakeSlice(typ, dims[0], dims[0])
	for i := 0; i < dims[0]; i++ {
		s.Index(i).Set(makeZero(typ.Elem(), dims[1:]))
	}
	return s
}

// warmup runs one inference on zero-filled sample inputs so the first real
// call does not pay the runtime's lazy initialization cost.
func (m *Model) warmup() error {
	shapes := m.InputShapes()
	types := m.InputTypes()

	inputs := make([]*tf.Tensor, m.NumInputs())
	for i := range inputs {
		tensor, err := SampleTensor(types[i], shapes[i])
		if err != nil {
			return fmt.Errorf("warmup: %w", err)
		}
		inputs[i] = tensor
	}

	if _, err := m.RunAll(inputs); err != nil {
		return fmt.Errorf("warmup inference failed: %w", err)
	}
	return nil
}
