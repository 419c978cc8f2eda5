package model

import (
	"sort"
	"time"

	"github.com/chenyanchen/uanode"
)

// Type definition node ids.
var (
	ServerTypeID            = uanode.NewNumericNodeID(0, 2004)
	ServerStatusTypeID      = uanode.NewNumericNodeID(0, 2138)
	BuildInfoTypeID         = uanode.NewNumericNodeID(0, 3051)
	TwoStateVariableTypeID  = uanode.NewNumericNodeID(0, 8995)
	NamespaceMetadataTypeID = uanode.NewNumericNodeID(0, 11616)
)

// TypeDefinition lists the typed members of one object or variable type.
type TypeDefinition struct {
	Name      string
	NodeID    uanode.NodeID
	NodeClass uanode.NodeClass
	Members   []uanode.PropertyDescriptor
}

// Member returns the descriptor named name in namespace 0.
func (d TypeDefinition) Member(name string) (uanode.PropertyDescriptor, bool) {
	qn := uanode.NewQualifiedName(uanode.StandardNamespace, name)
	for _, m := range d.Members {
		if m.Name == qn {
			return m, true
		}
	}
	return uanode.PropertyDescriptor{}, false
}

func property(name string, dataType uanode.NodeID, rank uanode.ValueRank) uanode.PropertyDescriptor {
	return uanode.PropertyDescriptor{
		Name:            uanode.NewQualifiedName(uanode.StandardNamespace, name),
		ReferenceTypeID: uanode.HasProperty,
		TypeDefinition:  uanode.PropertyType,
		DataType:        dataType,
		ValueRank:       rank,
	}
}

func component(name string, typeDefinition, dataType uanode.NodeID) uanode.PropertyDescriptor {
	return uanode.PropertyDescriptor{
		Name:            uanode.NewQualifiedName(uanode.StandardNamespace, name),
		ReferenceTypeID: uanode.HasComponent,
		TypeDefinition:  typeDefinition,
		DataType:        dataType,
		ValueRank:       uanode.ValueRankScalar,
	}
}

type ServerTypeMembers struct {
	ServerArray         uanode.Property[[]string]
	NamespaceArray      uanode.Property[[]string]
	UrisVersion         uanode.Property[uint32]
	ServiceLevel        uanode.Property[byte]
	Auditing            uanode.Property[bool]
	EstimatedReturnTime uanode.Property[time.Time]
	ServerStatus        uanode.Property[ServerStatusDataType]
}

var ServerType = ServerTypeMembers{
	ServerArray:         uanode.NewProperty(property("ServerArray", uanode.DataTypeString, uanode.ValueRankOneDimension), uanode.Array[string]()),
	NamespaceArray:      uanode.NewProperty(property("NamespaceArray", uanode.DataTypeString, uanode.ValueRankOneDimension), uanode.Array[string]()),
	UrisVersion:         uanode.NewProperty(property("UrisVersion", DataTypeVersionTime, uanode.ValueRankScalar), uanode.Scalar[uint32]()),
	ServiceLevel:        uanode.NewProperty(property("ServiceLevel", uanode.DataTypeByte, uanode.ValueRankScalar), uanode.Scalar[byte]()),
	Auditing:            uanode.NewProperty(property("Auditing", uanode.DataTypeBoolean, uanode.ValueRankScalar), uanode.Scalar[bool]()),
	EstimatedReturnTime: uanode.NewProperty(property("EstimatedReturnTime", uanode.DataTypeDateTime, uanode.ValueRankScalar), uanode.Scalar[time.Time]()),
	ServerStatus:        uanode.NewProperty(component("ServerStatus", ServerStatusTypeID, DataTypeServerStatusDataType), uanode.Struct[ServerStatusDataType]()),
}

func (m ServerTypeMembers) Definition() TypeDefinition {
	return TypeDefinition{
		Name:      "ServerType",
		NodeID:    ServerTypeID,
		NodeClass: uanode.NodeClassObjectType,
		Members: []uanode.PropertyDescriptor{
			m.ServerArray.Descriptor,
			m.NamespaceArray.Descriptor,
			m.UrisVersion.Descriptor,
			m.ServiceLevel.Descriptor,
			m.Auditing.Descriptor,
			m.EstimatedReturnTime.Descriptor,
			m.ServerStatus.Descriptor,
		},
	}
}

type ServerStatusTypeMembers struct {
	StartTime           uanode.Property[time.Time]
	CurrentTime         uanode.Property[time.Time]
	State               uanode.Property[ServerState]
	BuildInfo           uanode.Property[BuildInfo]
	SecondsTillShutdown uanode.Property[uint32]
	ShutdownReason      uanode.Property[uanode.LocalizedText]
}

var ServerStatusType = ServerStatusTypeMembers{
	StartTime:           uanode.NewProperty(component("StartTime", uanode.BaseDataVariableType, DataTypeUtcTime), uanode.Scalar[time.Time]()),
	CurrentTime:         uanode.NewProperty(component("CurrentTime", uanode.BaseDataVariableType, DataTypeUtcTime), uanode.Scalar[time.Time]()),
	State:               uanode.NewProperty(component("State", uanode.BaseDataVariableType, DataTypeServerState), uanode.Enum[ServerState]()),
	BuildInfo:           uanode.NewProperty(component("BuildInfo", BuildInfoTypeID, DataTypeBuildInfo), uanode.Struct[BuildInfo]()),
	SecondsTillShutdown: uanode.NewProperty(component("SecondsTillShutdown", uanode.BaseDataVariableType, uanode.DataTypeUInt32), uanode.Scalar[uint32]()),
	ShutdownReason:      uanode.NewProperty(component("ShutdownReason", uanode.BaseDataVariableType, uanode.DataTypeLocalizedText), uanode.Scalar[uanode.LocalizedText]()),
}

func (m ServerStatusTypeMembers) Definition() TypeDefinition {
	return TypeDefinition{
		Name:      "ServerStatusType",
		NodeID:    ServerStatusTypeID,
		NodeClass: uanode.NodeClassVariableType,
		Members: []uanode.PropertyDescriptor{
			m.StartTime.Descriptor,
			m.CurrentTime.Descriptor,
			m.State.Descriptor,
			m.BuildInfo.Descriptor,
			m.SecondsTillShutdown.Descriptor,
			m.ShutdownReason.Descriptor,
		},
	}
}

type TwoStateVariableTypeMembers struct {
	ID                      uanode.Property[bool]
	TransitionTime          uanode.Property[time.Time]
	EffectiveTransitionTime uanode.Property[time.Time]
	TrueState               uanode.Property[uanode.LocalizedText]
	FalseState              uanode.Property[uanode.LocalizedText]
}

var TwoStateVariableType = TwoStateVariableTypeMembers{
	ID:                      uanode.NewProperty(property("Id", uanode.DataTypeBoolean, uanode.ValueRankScalar), uanode.Scalar[bool]()),
	TransitionTime:          uanode.NewProperty(property("TransitionTime", DataTypeUtcTime, uanode.ValueRankScalar), uanode.Scalar[time.Time]()),
	EffectiveTransitionTime: uanode.NewProperty(property("EffectiveTransitionTime", DataTypeUtcTime, uanode.ValueRankScalar), uanode.Scalar[time.Time]()),
	TrueState:               uanode.NewProperty(property("TrueState", uanode.DataTypeLocalizedText, uanode.ValueRankScalar), uanode.Scalar[uanode.LocalizedText]()),
	FalseState:              uanode.NewProperty(property("FalseState", uanode.DataTypeLocalizedText, uanode.ValueRankScalar), uanode.Scalar[uanode.LocalizedText]()),
}

func (m TwoStateVariableTypeMembers) Definition() TypeDefinition {
	return TypeDefinition{
		Name:      "TwoStateVariableType",
		NodeID:    TwoStateVariableTypeID,
		NodeClass: uanode.NodeClassVariableType,
		Members: []uanode.PropertyDescriptor{
			m.ID.Descriptor,
			m.TransitionTime.Descriptor,
			m.EffectiveTransitionTime.Descriptor,
			m.TrueState.Descriptor,
			m.FalseState.Descriptor,
		},
	}
}

type NamespaceMetadataTypeMembers struct {
	NamespaceURI              uanode.Property[string]
	NamespaceVersion          uanode.Property[string]
	NamespacePublicationDate  uanode.Property[time.Time]
	IsNamespaceSubset         uanode.Property[bool]
	StaticNodeIdTypes         uanode.Property[[]IdType]
	StaticNumericNodeIdRange  uanode.Property[[]string]
	StaticStringNodeIdPattern uanode.Property[string]
	DefaultRolePermissions    uanode.Property[[]RolePermissionType]
	ConfigurationVersion      uanode.Property[uint32]
}

var NamespaceMetadataType = NamespaceMetadataTypeMembers{
	NamespaceURI:              uanode.NewProperty(property("NamespaceUri", uanode.DataTypeString, uanode.ValueRankScalar), uanode.Scalar[string]()),
	NamespaceVersion:          uanode.NewProperty(property("NamespaceVersion", uanode.DataTypeString, uanode.ValueRankScalar), uanode.Scalar[string]()),
	NamespacePublicationDate:  uanode.NewProperty(property("NamespacePublicationDate", uanode.DataTypeDateTime, uanode.ValueRankScalar), uanode.Scalar[time.Time]()),
	IsNamespaceSubset:         uanode.NewProperty(property("IsNamespaceSubset", uanode.DataTypeBoolean, uanode.ValueRankScalar), uanode.Scalar[bool]()),
	StaticNodeIdTypes:         uanode.NewProperty(property("StaticNodeIdTypes", DataTypeIdType, uanode.ValueRankOneDimension), uanode.EnumArray[IdType]()),
	StaticNumericNodeIdRange:  uanode.NewProperty(property("StaticNumericNodeIdRange", DataTypeNumericRange, uanode.ValueRankOneDimension), uanode.Array[string]()),
	StaticStringNodeIdPattern: uanode.NewProperty(property("StaticStringNodeIdPattern", uanode.DataTypeString, uanode.ValueRankScalar), uanode.Scalar[string]()),
	DefaultRolePermissions:    uanode.NewProperty(property("DefaultRolePermissions", DataTypeRolePermissionType, uanode.ValueRankOneDimension), uanode.StructArray[RolePermissionType]()),
	ConfigurationVersion:      uanode.NewProperty(property("ConfigurationVersion", DataTypeVersionTime, uanode.ValueRankScalar), uanode.Scalar[uint32]()),
}

func (m NamespaceMetadataTypeMembers) Definition() TypeDefinition {
	return TypeDefinition{
		Name:      "NamespaceMetadataType",
		NodeID:    NamespaceMetadataTypeID,
		NodeClass: uanode.NodeClassObjectType,
		Members: []uanode.PropertyDescriptor{
			m.NamespaceURI.Descriptor,
			m.NamespaceVersion.Descriptor,
			m.NamespacePublicationDate.Descriptor,
			m.IsNamespaceSubset.Descriptor,
			m.StaticNodeIdTypes.Descriptor,
			m.StaticNumericNodeIdRange.Descriptor,
			m.StaticStringNodeIdPattern.Descriptor,
			m.DefaultRolePermissions.Descriptor,
			m.ConfigurationVersion.Descriptor,
		},
	}
}

// Types lists every type definition of this package, sorted by name.
var Types = sortedTypes(
	ServerType.Definition(),
	ServerStatusType.Definition(),
	TwoStateVariableType.Definition(),
	NamespaceMetadataType.Definition(),
)

func sortedTypes(defs ...TypeDefinition) []TypeDefinition {
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Lookup returns the type definition called name.
func Lookup(name string) (TypeDefinition, bool) {
	for _, d := range Types {
		if d.Name == name {
			return d, true
		}
	}
	return TypeDefinition{}, false
}
