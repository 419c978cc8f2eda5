package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/chenyanchen/uanode"
)

// Standard data type ids.
var (
	DataTypeIdType               = uanode.NewNumericNodeID(0, 256)
	DataTypeNumericRange         = uanode.NewNumericNodeID(0, 291)
	DataTypeUtcTime              = uanode.NewNumericNodeID(0, 294)
	DataTypeBuildInfo            = uanode.NewNumericNodeID(0, 338)
	DataTypeServerState          = uanode.NewNumericNodeID(0, 852)
	DataTypeServerStatusDataType = uanode.NewNumericNodeID(0, 862)
	DataTypeKeyValuePair         = uanode.NewNumericNodeID(0, 14533)
	DataTypeRolePermissionType   = uanode.NewNumericNodeID(0, 96)
	DataTypeVersionTime          = uanode.NewNumericNodeID(0, 20998)
)

// Default binary encoding ids of the structured types.
var (
	EncodingRolePermissionType   = uanode.NewNumericNodeID(0, 128)
	EncodingBuildInfo            = uanode.NewNumericNodeID(0, 340)
	EncodingServerStatusDataType = uanode.NewNumericNodeID(0, 864)
	EncodingKeyValuePair         = uanode.NewNumericNodeID(0, 14846)
)

type ServerState int32

const (
	ServerStateRunning ServerState = iota
	ServerStateFailed
	ServerStateNoConfiguration
	ServerStateSuspended
	ServerStateShutdown
	ServerStateTest
	ServerStateCommunicationFault
	ServerStateUnknown
)

var serverStateNames = [...]string{
	"Running", "Failed", "NoConfiguration", "Suspended",
	"Shutdown", "Test", "CommunicationFault", "Unknown",
}

func (s ServerState) String() string {
	if s >= 0 && int(s) < len(serverStateNames) {
		return serverStateNames[s]
	}
	return "ServerState(" + strconv.Itoa(int(s)) + ")"
}

// IdType is the kind of identifier a node id carries.
type IdType int32

const (
	IdTypeNumeric IdType = iota
	IdTypeString
	IdTypeGuid
	IdTypeOpaque
)

func (t IdType) String() string {
	switch t {
	case IdTypeNumeric:
		return "Numeric"
	case IdTypeString:
		return "String"
	case IdTypeGuid:
		return "Guid"
	case IdTypeOpaque:
		return "Opaque"
	}
	return "IdType(" + strconv.Itoa(int(t)) + ")"
}

type BuildInfo struct {
	ProductURI       string    `json:"productUri"`
	ManufacturerName string    `json:"manufacturerName"`
	ProductName      string    `json:"productName"`
	SoftwareVersion  string    `json:"softwareVersion"`
	BuildNumber      string    `json:"buildNumber"`
	BuildDate        time.Time `json:"buildDate"`
}

type ServerStatusDataType struct {
	StartTime           time.Time            `json:"startTime"`
	CurrentTime         time.Time            `json:"currentTime"`
	State               ServerState          `json:"state"`
	BuildInfo           BuildInfo            `json:"buildInfo"`
	SecondsTillShutdown uint32               `json:"secondsTillShutdown"`
	ShutdownReason      uanode.LocalizedText `json:"shutdownReason"`
}

// KeyValuePair values are carried untyped; numbers come back as the widest
// type of their sign after a round trip.
type KeyValuePair struct {
	Key   uanode.QualifiedName `json:"key"`
	Value any                  `json:"value"`
}

type RolePermissionType struct {
	RoleID      uanode.NodeID `json:"roleId"`
	Permissions uint32        `json:"permissions"`
}

// RegisterDataTypes registers every structured type of this package in r.
func RegisterDataTypes(r *uanode.DataTypeRegistry) error {
	regs := []func() error{
		func() error {
			return uanode.RegisterStruct(r, EncodingBuildInfo, uanode.StructDefinition[BuildInfo]{
				Name: "BuildInfo", DataTypeID: DataTypeBuildInfo,
			})
		},
		func() error {
			return uanode.RegisterStruct(r, EncodingServerStatusDataType, uanode.StructDefinition[ServerStatusDataType]{
				Name: "ServerStatusDataType", DataTypeID: DataTypeServerStatusDataType,
			})
		},
		func() error {
			return uanode.RegisterStruct(r, EncodingKeyValuePair, uanode.StructDefinition[KeyValuePair]{
				Name: "KeyValuePair", DataTypeID: DataTypeKeyValuePair,
			})
		},
		func() error {
			return uanode.RegisterStruct(r, EncodingRolePermissionType, uanode.StructDefinition[RolePermissionType]{
				Name: "RolePermissionType", DataTypeID: DataTypeRolePermissionType,
			})
		},
	}
	for _, reg := range regs {
		if err := reg(); err != nil {
			return fmt.Errorf("register model data types: %w", err)
		}
	}
	return nil
}

// NewDataTypes returns a registry holding this package's structured types.
func NewDataTypes() *uanode.DataTypeRegistry {
	r := uanode.NewDataTypeRegistry()
	if err := RegisterDataTypes(r); err != nil {
		panic(err)
	}
	return r
}
