package uanode

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/text/unicode/norm"
)

// StandardNamespace is the URI of namespace 0.
const StandardNamespace = "http://opcfoundation.org/UA/"

// QualifiedName names a member relationship: a browse name within a namespace.
// Namespace is the namespace URI.
type QualifiedName struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	Name      string `json:"name" yaml:"name"`
}

// NewQualifiedName returns the qualified name with name normalized to NFC.
func NewQualifiedName(namespace, name string) QualifiedName {
	return QualifiedName{Namespace: namespace, Name: norm.NFC.String(name)}
}

func (q QualifiedName) nfc() QualifiedName {
	return NewQualifiedName(q.Namespace, q.Name)
}

// String returns the name in Clark notation, {namespace}name.
func (q QualifiedName) String() string {
	if q.Namespace == "" {
		return q.Name
	}
	return "{" + q.Namespace + "}" + q.Name
}

// LocalizedText is human readable text with an optional locale.
type LocalizedText struct {
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty"`
	Text   string `json:"text" yaml:"text"`
}

// AttributeID selects one attribute of a node.
type AttributeID uint32

const (
	AttributeNodeID      AttributeID = 1
	AttributeNodeClass   AttributeID = 2
	AttributeBrowseName  AttributeID = 3
	AttributeDisplayName AttributeID = 4
	AttributeDescription AttributeID = 5
	AttributeValue       AttributeID = 13
)

func (a AttributeID) String() string {
	switch a {
	case AttributeNodeID:
		return "NodeId"
	case AttributeNodeClass:
		return "NodeClass"
	case AttributeBrowseName:
		return "BrowseName"
	case AttributeDisplayName:
		return "DisplayName"
	case AttributeDescription:
		return "Description"
	case AttributeValue:
		return "Value"
	}
	return "Attribute(" + strconv.FormatUint(uint64(a), 10) + ")"
}

// NodeClass is the class of a node.
type NodeClass uint32

const (
	NodeClassUnspecified   NodeClass = 0
	NodeClassObject        NodeClass = 1
	NodeClassVariable      NodeClass = 2
	NodeClassMethod        NodeClass = 4
	NodeClassObjectType    NodeClass = 8
	NodeClassVariableType  NodeClass = 16
	NodeClassReferenceType NodeClass = 32
	NodeClassDataType      NodeClass = 64
	NodeClassView          NodeClass = 128
)

func (c NodeClass) String() string {
	switch c {
	case NodeClassUnspecified:
		return "Unspecified"
	case NodeClassObject:
		return "Object"
	case NodeClassVariable:
		return "Variable"
	case NodeClassMethod:
		return "Method"
	case NodeClassObjectType:
		return "ObjectType"
	case NodeClassVariableType:
		return "VariableType"
	case NodeClassReferenceType:
		return "ReferenceType"
	case NodeClassDataType:
		return "DataType"
	case NodeClassView:
		return "View"
	}
	return "NodeClass(" + strconv.FormatUint(uint64(c), 10) + ")"
}

// ValueRank declares whether a value is a scalar or an array.
type ValueRank int32

const (
	ValueRankAny                 ValueRank = -2
	ValueRankScalar              ValueRank = -1
	ValueRankOneOrMoreDimensions ValueRank = 0
	ValueRankOneDimension        ValueRank = 1
)

// IsArray reports whether r admits only array values.
func (r ValueRank) IsArray() bool {
	return r >= ValueRankOneOrMoreDimensions
}

// Variant is the tagged-value envelope carried by attributes.
//
// Structured values are never stored natively: they travel as ExtensionObject
// (or []ExtensionObject) and are decoded through a SerializationContext.
type Variant struct {
	Value any
}

// NewVariant wraps v.
func NewVariant(v any) Variant {
	return Variant{Value: v}
}

// IsNull reports whether the variant holds no value.
func (v Variant) IsNull() bool {
	return v.Value == nil
}

// ExtensionObject is the self-describing wrapper of an encoded structure.
// TypeID is the encoding id the body was produced with.
type ExtensionObject struct {
	TypeID NodeID
	Body   []byte
}

// DataValue is an attribute value as returned by a read.
type DataValue struct {
	Value           Variant
	Status          StatusCode
	SourceTimestamp time.Time
	ServerTimestamp time.Time
}

// ValueOnly returns a DataValue carrying v with a Good status and no timestamps.
func ValueOnly(v Variant) DataValue {
	return DataValue{Value: v}
}

// BrowseDescription selects the references to follow from a node.
// A null ReferenceTypeID means HierarchicalReferences.
type BrowseDescription struct {
	NodeID          NodeID
	ReferenceTypeID NodeID
	IncludeSubtypes bool
	NodeClassMask   uint32
}

// ReferenceDescription describes one forward or inverse reference found by a browse.
type ReferenceDescription struct {
	ReferenceTypeID NodeID        `json:"referenceTypeId"`
	IsForward       bool          `json:"isForward"`
	NodeID          NodeID        `json:"nodeId"`
	BrowseName      QualifiedName `json:"browseName"`
	DisplayName     LocalizedText `json:"displayName"`
	NodeClass       NodeClass     `json:"nodeClass"`
	TypeDefinition  NodeID        `json:"typeDefinition"`
}

// Session is the transport a Client issues requests on.
// Implementations must be safe for concurrent use.
type Session interface {
	Browse(ctx context.Context, desc BrowseDescription) ([]ReferenceDescription, error)
	Read(ctx context.Context, id NodeID, attr AttributeID) (DataValue, error)
	Write(ctx context.Context, id NodeID, attr AttributeID, value DataValue) (StatusCode, error)
}

// SerializationContextProvider is implemented by sessions that own the
// encoding context for structured values.
type SerializationContextProvider interface {
	SerializationContext() SerializationContext
}
