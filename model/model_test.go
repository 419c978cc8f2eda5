package model_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenyanchen/uanode"
	"github.com/chenyanchen/uanode/memsession"
	"github.com/chenyanchen/uanode/model"
)

var (
	statusID   = uanode.NewNumericNodeID(0, 2256)
	stateID    = uanode.NewNumericNodeID(0, 2259)
	buildID    = uanode.NewNumericNodeID(0, 2260)
	auditingID = uanode.NewNumericNodeID(0, 2994)
	levelID    = uanode.NewNumericNodeID(0, 2267)
	nsArrayID  = uanode.NewNumericNodeID(0, 2255)
	metaID     = uanode.MustParseNodeID("ns=1;s=Meta")
	idTypesID  = uanode.MustParseNodeID("ns=1;s=Meta.StaticNodeIdTypes")
	rolesID    = uanode.MustParseNodeID("ns=1;s=Meta.DefaultRolePermissions")
)

var started = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func std(name string) uanode.QualifiedName {
	return uanode.NewQualifiedName(uanode.StandardNamespace, name)
}

func encode(t *testing.T, reg *uanode.DataTypeRegistry, v any) uanode.ExtensionObject {
	t.Helper()
	eo, err := reg.EncodeStruct(v)
	require.NoError(t, err)
	return eo
}

func serverSpace(t *testing.T) (*memsession.Session, *uanode.Client) {
	t.Helper()
	reg := model.NewDataTypes()
	build := model.BuildInfo{ProductURI: "urn:example:server", ProductName: "Example", SoftwareVersion: "1.2.0", BuildDate: started}

	s := memsession.New(memsession.WithDataTypes(reg))
	s.MustAddNode(memsession.NodeSpec{ID: uanode.ObjectsFolder, BrowseName: std("Objects"), NodeClass: uanode.NodeClassObject})
	s.MustAddNode(memsession.NodeSpec{
		ID: uanode.Server, Parent: uanode.ObjectsFolder, ReferenceType: uanode.Organizes,
		BrowseName: std("Server"), NodeClass: uanode.NodeClassObject, TypeDefinition: model.ServerTypeID,
	})
	s.MustAddNode(memsession.NodeSpec{
		ID: nsArrayID, Parent: uanode.Server, ReferenceType: uanode.HasProperty, BrowseName: std("NamespaceArray"),
		NodeClass: uanode.NodeClassVariable, TypeDefinition: uanode.PropertyType,
		Value: uanode.NewVariant([]any{uanode.StandardNamespace, "urn:example:server"}),
	})
	s.MustAddNode(memsession.NodeSpec{
		ID: auditingID, Parent: uanode.Server, ReferenceType: uanode.HasProperty, BrowseName: std("Auditing"),
		NodeClass: uanode.NodeClassVariable, TypeDefinition: uanode.PropertyType, Value: uanode.NewVariant(false),
	})
	s.MustAddNode(memsession.NodeSpec{
		ID: levelID, Parent: uanode.Server, ReferenceType: uanode.HasProperty, BrowseName: std("ServiceLevel"),
		NodeClass: uanode.NodeClassVariable, TypeDefinition: uanode.PropertyType, Value: uanode.NewVariant(byte(200)),
	})
	s.MustAddNode(memsession.NodeSpec{
		ID: statusID, Parent: uanode.Server, ReferenceType: uanode.HasComponent, BrowseName: std("ServerStatus"),
		NodeClass: uanode.NodeClassVariable, TypeDefinition: model.ServerStatusTypeID,
		Value: uanode.NewVariant(encode(t, reg, model.ServerStatusDataType{
			StartTime: started, CurrentTime: started.Add(time.Hour), State: model.ServerStateRunning, BuildInfo: build,
		})),
	})
	s.MustAddNode(memsession.NodeSpec{
		ID: stateID, Parent: statusID, ReferenceType: uanode.HasComponent, BrowseName: std("State"),
		NodeClass: uanode.NodeClassVariable, TypeDefinition: uanode.BaseDataVariableType, Value: uanode.NewVariant(int32(0)),
	})
	s.MustAddNode(memsession.NodeSpec{
		ID: buildID, Parent: statusID, ReferenceType: uanode.HasComponent, BrowseName: std("BuildInfo"),
		NodeClass: uanode.NodeClassVariable, TypeDefinition: model.BuildInfoTypeID, Value: uanode.NewVariant(encode(t, reg, build)),
	})
	s.MustAddNode(memsession.NodeSpec{
		ID: metaID, Parent: uanode.Server, ReferenceType: uanode.HasComponent, BrowseName: uanode.NewQualifiedName("http://example/", "Meta"),
		NodeClass: uanode.NodeClassObject, TypeDefinition: model.NamespaceMetadataTypeID,
	})
	s.MustAddNode(memsession.NodeSpec{
		ID: idTypesID, Parent: metaID, ReferenceType: uanode.HasProperty, BrowseName: std("StaticNodeIdTypes"),
		NodeClass: uanode.NodeClassVariable, TypeDefinition: uanode.PropertyType, Value: uanode.NewVariant([]int32{0, 1}),
	})
	s.MustAddNode(memsession.NodeSpec{
		ID: rolesID, Parent: metaID, ReferenceType: uanode.HasProperty, BrowseName: std("DefaultRolePermissions"),
		NodeClass: uanode.NodeClassVariable, TypeDefinition: uanode.PropertyType,
		Value: uanode.NewVariant([]uanode.ExtensionObject{
			encode(t, reg, model.RolePermissionType{RoleID: uanode.NewNumericNodeID(0, 15644), Permissions: 0x1}),
		}),
	})

	c, err := uanode.NewClient(s)
	require.NoError(t, err)
	return s, c
}

func TestServerTypeMembers(t *testing.T) {
	ctx := context.Background()
	_, c := serverSpace(t)
	server, err := c.Node(ctx, uanode.Server)
	require.NoError(t, err)

	auditing, err := model.ServerType.Auditing.On(server).Read(ctx)
	require.NoError(t, err)
	assert.False(t, auditing)

	level, err := model.ServerType.ServiceLevel.On(server).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(200), level)

	namespaces, err := model.ServerType.NamespaceArray.On(server).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{uanode.StandardNamespace, "urn:example:server"}, namespaces)

	status, err := model.ServerType.ServerStatus.On(server).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ServerStateRunning, status.State)
	assert.True(t, started.Equal(status.StartTime))
	assert.Equal(t, "1.2.0", status.BuildInfo.SoftwareVersion)

	// Absent members of a type are reported, not invented.
	_, err = model.ServerType.EstimatedReturnTime.On(server).Read(ctx)
	assert.ErrorIs(t, err, uanode.StatusError{Code: uanode.BadNotFound})
}

func TestServerStatusTypeMembers(t *testing.T) {
	ctx := context.Background()
	s, c := serverSpace(t)
	server, err := c.Node(ctx, uanode.Server)
	require.NoError(t, err)
	statusNode, err := model.ServerType.ServerStatus.On(server).Node(ctx)
	require.NoError(t, err)
	require.NotNil(t, statusNode)
	assert.Equal(t, model.ServerStatusTypeID, statusNode.TypeDefinition())

	state := model.ServerStatusType.State.On(statusNode)
	got, err := state.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ServerStateRunning, got)

	require.NoError(t, state.Write(ctx, model.ServerStateSuspended))
	dv, ok := s.ServerValue(stateID)
	require.True(t, ok)
	assert.Equal(t, int32(3), dv.Value.Value)
	assert.Equal(t, "Suspended", model.ServerStateSuspended.String())

	build, err := model.ServerStatusType.BuildInfo.On(statusNode).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "urn:example:server", build.ProductURI)
}

func TestNamespaceMetadataMembers(t *testing.T) {
	ctx := context.Background()
	_, c := serverSpace(t)
	meta, err := c.Node(ctx, metaID)
	require.NoError(t, err)

	idTypes, err := model.NamespaceMetadataType.StaticNodeIdTypes.On(meta).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.IdType{model.IdTypeNumeric, model.IdTypeString}, idTypes)

	roles, err := model.NamespaceMetadataType.DefaultRolePermissions.On(meta).Read(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, uanode.NewNumericNodeID(0, 15644), roles[0].RoleID)
	assert.Equal(t, uint32(1), roles[0].Permissions)
}

func TestRegisterDataTypes(t *testing.T) {
	reg := uanode.NewDataTypeRegistry()
	require.NoError(t, model.RegisterDataTypes(reg))

	names := make([]string, 0)
	for _, info := range reg.DataTypes() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"BuildInfo", "KeyValuePair", "RolePermissionType", "ServerStatusDataType"}, names)

	err := model.RegisterDataTypes(reg)
	assert.ErrorContains(t, err, "duplicate")

	kv := model.KeyValuePair{Key: std("Site"), Value: "north"}
	eo, err := reg.EncodeStruct(kv)
	require.NoError(t, err)
	assert.Equal(t, model.EncodingKeyValuePair, eo.TypeID)
	back, err := reg.DecodeStruct(eo)
	require.NoError(t, err)
	assert.Equal(t, kv, back)
}

func TestTypesTable(t *testing.T) {
	names := make([]string, len(model.Types))
	for i, d := range model.Types {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"NamespaceMetadataType", "ServerStatusType", "ServerType", "TwoStateVariableType"}, names)

	d, ok := model.Lookup("TwoStateVariableType")
	require.True(t, ok)
	assert.Equal(t, uanode.NodeClassVariableType, d.NodeClass)
	assert.Len(t, d.Members, 5)

	id, ok := d.Member("Id")
	require.True(t, ok)
	assert.Equal(t, uanode.HasProperty, id.ReferenceTypeID)
	assert.Equal(t, uanode.PropertyType, id.TypeDefinition)

	status, ok := model.ServerType.Definition().Member("ServerStatus")
	require.True(t, ok)
	assert.Equal(t, uanode.HasComponent, status.ReferenceTypeID)
	assert.Equal(t, model.ServerStatusTypeID, status.TypeDefinition)

	_, ok = model.Lookup("NoSuchType")
	assert.False(t, ok)
	assert.Equal(t, "IdType(9)", model.IdType(9).String())
}
