package uanode

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/chenyanchen/uanode/internal/cbor"
)

// SerializationContext converts structured values to and from their
// ExtensionObject wire form.
type SerializationContext interface {
	EncodeStruct(v any) (ExtensionObject, error)
	DecodeStruct(eo ExtensionObject) (any, error)
}

// StructDefinition describes how one Go structure type is carried on the wire.
// Encode and Decode default to CBOR.
type StructDefinition[T any] struct {
	Name       string
	DataTypeID NodeID
	Encode     func(v T) ([]byte, error)
	Decode     func(body []byte) (T, error)
}

// DataTypeInfo describes one registered structure.
type DataTypeInfo struct {
	Name       string `json:"name"`
	GoType     string `json:"goType"`
	DataTypeID NodeID `json:"dataTypeId"`
	EncodingID NodeID `json:"encodingId"`
}

type compiledStruct struct {
	info   DataTypeInfo
	encode func(v any) ([]byte, error)
	decode func(body []byte) (any, error)
}

// DataTypeRegistry is a SerializationContext backed by registered StructDefinitions.
type DataTypeRegistry struct {
	mu         sync.RWMutex
	byType     map[reflect.Type]*compiledStruct
	byEncoding map[NodeID]*compiledStruct
}

func NewDataTypeRegistry() *DataTypeRegistry {
	return &DataTypeRegistry{
		byType:     make(map[reflect.Type]*compiledStruct),
		byEncoding: make(map[NodeID]*compiledStruct),
	}
}

// RegisterStruct registers T under encodingID.
func RegisterStruct[T any](r *DataTypeRegistry, encodingID NodeID, def StructDefinition[T]) error {
	if r == nil {
		return fmt.Errorf("register struct: registry is nil")
	}
	if encodingID.IsNull() {
		return fmt.Errorf("register struct: encoding id is null")
	}

	goType := reflect.TypeOf((*T)(nil)).Elem()
	name := def.Name
	if name == "" {
		name = goType.Name()
	}
	encodeFn := def.Encode
	if encodeFn == nil {
		encodeFn = defaultEncode[T]
	}
	decodeFn := def.Decode
	if decodeFn == nil {
		decodeFn = defaultDecode[T]
	}

	compiled := &compiledStruct{
		info: DataTypeInfo{
			Name:       name,
			GoType:     goType.String(),
			DataTypeID: def.DataTypeID,
			EncodingID: encodingID,
		},
		encode: func(v any) ([]byte, error) {
			switch typed := v.(type) {
			case T:
				return encodeFn(typed)
			case *T:
				return encodeFn(*typed)
			}
			return nil, fmt.Errorf("encode type mismatch: want=%T got=%T", *new(T), v)
		},
		decode: func(body []byte) (any, error) {
			return decodeFn(body)
		},
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byType[goType]; exists {
		return fmt.Errorf("register struct: duplicate registration for %s", goType)
	}
	if _, exists := r.byEncoding[encodingID]; exists {
		return fmt.Errorf("register struct: duplicate encoding id %s", encodingID)
	}
	r.byType[goType] = compiled
	r.byEncoding[encodingID] = compiled
	return nil
}

// MustRegisterStruct panics on registration error; intended for bootstrap code paths.
func MustRegisterStruct[T any](r *DataTypeRegistry, encodingID NodeID, def StructDefinition[T]) {
	if err := RegisterStruct(r, encodingID, def); err != nil {
		panic(err)
	}
}

// EncodeStruct implements SerializationContext.
func (r *DataTypeRegistry) EncodeStruct(v any) (ExtensionObject, error) {
	t := reflect.TypeOf(v)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	r.mu.RLock()
	compiled, ok := r.byType[t]
	r.mu.RUnlock()
	if !ok {
		return ExtensionObject{}, StatusError{
			Code:    BadDataEncodingUnsupported,
			Message: fmt.Sprintf("no encoding registered for %T", v),
		}
	}

	body, err := compiled.encode(v)
	if err != nil {
		return ExtensionObject{}, StatusError{
			Code:    BadEncodingError,
			Message: "encode " + compiled.info.Name,
			Cause:   err,
		}
	}
	return ExtensionObject{TypeID: compiled.info.EncodingID, Body: body}, nil
}

// DecodeStruct implements SerializationContext.
func (r *DataTypeRegistry) DecodeStruct(eo ExtensionObject) (any, error) {
	r.mu.RLock()
	compiled, ok := r.byEncoding[eo.TypeID]
	r.mu.RUnlock()
	if !ok {
		return nil, StatusError{
			Code:    BadDataEncodingUnsupported,
			Message: "no decoding registered for encoding " + eo.TypeID.String(),
		}
	}

	v, err := compiled.decode(eo.Body)
	if err != nil {
		return nil, StatusError{
			Code:    BadDecodingError,
			Message: "decode " + compiled.info.Name,
			Cause:   err,
		}
	}
	return v, nil
}

// DataTypes lists the registrations ordered by name.
func (r *DataTypeRegistry) DataTypes() []DataTypeInfo {
	r.mu.RLock()
	out := make([]DataTypeInfo, 0, len(r.byType))
	for _, c := range r.byType {
		out = append(out, c.info)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func defaultEncode[T any](v T) ([]byte, error) {
	return cbor.Marshal(v)
}

func defaultDecode[T any](body []byte) (T, error) {
	var v T
	if len(body) == 0 {
		return v, nil
	}
	if err := cbor.DecodeBytes(body, &v); err != nil {
		return v, err
	}
	return v, nil
}
