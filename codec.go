package uanode

import (
	"math"
	"reflect"
)

// Codec converts between a Go value and the Variant stored in a Value attribute.
type Codec[T any] interface {
	Decode(v Variant, sc SerializationContext) (T, error)
	Encode(v T, sc SerializationContext) (Variant, error)
}

// CodecFunc adapts a pair of functions to a Codec.
type CodecFunc[T any] struct {
	DecodeFunc func(v Variant, sc SerializationContext) (T, error)
	EncodeFunc func(v T, sc SerializationContext) (Variant, error)
}

func (c CodecFunc[T]) Decode(v Variant, sc SerializationContext) (T, error) {
	return c.DecodeFunc(v, sc)
}

func (c CodecFunc[T]) Encode(v T, sc SerializationContext) (Variant, error) {
	return c.EncodeFunc(v, sc)
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

type scalarCodec[T any] struct{}

// Scalar is the codec of a builtin scalar type carried as-is.
func Scalar[T any]() Codec[T] { return scalarCodec[T]{} }

func (scalarCodec[T]) Decode(v Variant, _ SerializationContext) (T, error) {
	var zero T
	if v.IsNull() {
		return zero, nil
	}
	typed, ok := v.Value.(T)
	if !ok {
		return zero, typeMismatch(typeName[T](), v.Value)
	}
	return typed, nil
}

func (scalarCodec[T]) Encode(v T, _ SerializationContext) (Variant, error) {
	return NewVariant(v), nil
}

type arrayCodec[T any] struct{}

// Array is the codec of a one-dimensional array of a builtin type. Besides
// []T it accepts []any whose elements are all T.
func Array[T any]() Codec[[]T] { return arrayCodec[T]{} }

func (arrayCodec[T]) Decode(v Variant, _ SerializationContext) ([]T, error) {
	switch raw := v.Value.(type) {
	case nil:
		return nil, nil
	case []T:
		return raw, nil
	case []any:
		out := make([]T, len(raw))
		for i, e := range raw {
			typed, ok := e.(T)
			if !ok {
				return nil, typeMismatch(typeName[[]T](), v.Value)
			}
			out[i] = typed
		}
		return out, nil
	}
	return nil, typeMismatch(typeName[[]T](), v.Value)
}

func (arrayCodec[T]) Encode(v []T, _ SerializationContext) (Variant, error) {
	return NewVariant(v), nil
}

type enumCodec[E ~int32] struct{}

// Enum is the codec of an enumeration. The wire form is int32; decoding also
// tolerates E itself and the other integer widths a server may send.
func Enum[E ~int32]() Codec[E] { return enumCodec[E]{} }

func (enumCodec[E]) Decode(v Variant, _ SerializationContext) (E, error) {
	if v.IsNull() {
		return 0, nil
	}
	e, ok := toEnum[E](v.Value)
	if !ok {
		return 0, typeMismatch(typeName[E](), v.Value)
	}
	return e, nil
}

func (enumCodec[E]) Encode(v E, _ SerializationContext) (Variant, error) {
	return NewVariant(int32(v)), nil
}

type enumArrayCodec[E ~int32] struct{}

// EnumArray is the codec of an enumeration array; untyped integer arrays are
// converted element by element.
func EnumArray[E ~int32]() Codec[[]E] { return enumArrayCodec[E]{} }

func (enumArrayCodec[E]) Decode(v Variant, _ SerializationContext) ([]E, error) {
	if v.IsNull() {
		return nil, nil
	}
	if typed, ok := v.Value.([]E); ok {
		return typed, nil
	}

	rv := reflect.ValueOf(v.Value)
	if rv.Kind() != reflect.Slice {
		return nil, typeMismatch(typeName[[]E](), v.Value)
	}
	out := make([]E, rv.Len())
	for i := range out {
		e, ok := toEnum[E](rv.Index(i).Interface())
		if !ok {
			return nil, typeMismatch(typeName[[]E](), v.Value)
		}
		out[i] = e
	}
	return out, nil
}

func (enumArrayCodec[E]) Encode(v []E, _ SerializationContext) (Variant, error) {
	out := make([]int32, len(v))
	for i, e := range v {
		out[i] = int32(e)
	}
	return NewVariant(out), nil
}

func toEnum[E ~int32](raw any) (E, bool) {
	switch x := raw.(type) {
	case E:
		return x, true
	case int32:
		return E(x), true
	case int:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return 0, false
		}
		return E(x), true
	case int64:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return 0, false
		}
		return E(x), true
	case uint32:
		if x > math.MaxInt32 {
			return 0, false
		}
		return E(x), true
	}
	return 0, false
}

type structCodec[T any] struct{}

// Struct is the codec of a structured type. The Variant carries an
// ExtensionObject, converted through the SerializationContext.
func Struct[T any]() Codec[T] { return structCodec[T]{} }

func (structCodec[T]) Decode(v Variant, sc SerializationContext) (T, error) {
	var zero T
	if v.IsNull() {
		return zero, nil
	}
	return decodeStruct[T](v.Value, sc)
}

func (structCodec[T]) Encode(v T, sc SerializationContext) (Variant, error) {
	eo, err := encodeStruct(v, sc)
	if err != nil {
		return Variant{}, err
	}
	return NewVariant(eo), nil
}

type structArrayCodec[T any] struct{}

// StructArray is the codec of an array of a structured type, carried as
// []ExtensionObject.
func StructArray[T any]() Codec[[]T] { return structArrayCodec[T]{} }

func (structArrayCodec[T]) Decode(v Variant, sc SerializationContext) ([]T, error) {
	switch raw := v.Value.(type) {
	case nil:
		return nil, nil
	case []T:
		return raw, nil
	case []ExtensionObject:
		out := make([]T, len(raw))
		for i, eo := range raw {
			typed, err := decodeStruct[T](eo, sc)
			if err != nil {
				return nil, err
			}
			out[i] = typed
		}
		return out, nil
	case []any:
		out := make([]T, len(raw))
		for i, e := range raw {
			typed, err := decodeStruct[T](e, sc)
			if err != nil {
				return nil, err
			}
			out[i] = typed
		}
		return out, nil
	}
	return nil, typeMismatch(typeName[[]T](), v.Value)
}

func (structArrayCodec[T]) Encode(v []T, sc SerializationContext) (Variant, error) {
	out := make([]ExtensionObject, len(v))
	for i := range v {
		eo, err := encodeStruct(v[i], sc)
		if err != nil {
			return Variant{}, err
		}
		out[i] = eo
	}
	return NewVariant(out), nil
}

func decodeStruct[T any](raw any, sc SerializationContext) (T, error) {
	var zero T
	switch x := raw.(type) {
	case T:
		return x, nil
	case ExtensionObject:
		if sc == nil {
			return zero, errNoSerializationContext
		}
		decoded, err := sc.DecodeStruct(x)
		if err != nil {
			return zero, err
		}
		switch d := decoded.(type) {
		case T:
			return d, nil
		case *T:
			return *d, nil
		}
		return zero, typeMismatch(typeName[T](), decoded)
	}
	return zero, typeMismatch(typeName[T](), raw)
}

func encodeStruct(v any, sc SerializationContext) (ExtensionObject, error) {
	if sc == nil {
		return ExtensionObject{}, errNoSerializationContext
	}
	return sc.EncodeStruct(v)
}

var errNoSerializationContext = StatusError{
	Code:    BadDataEncodingUnsupported,
	Message: "no serialization context",
}
