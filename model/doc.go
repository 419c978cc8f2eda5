// Package model is a small catalog of standard object and variable types
// expressed as tables of typed properties.
//
// Each XxxType variable groups the uanode.Property values of one type; bind
// them to a node of that type to read and write its members:
//
//	status := model.ServerType.ServerStatus.On(server)
//	v, err := status.Read(ctx)
//
// Structured values need the types registered with RegisterDataTypes in the
// serialization context the accessor uses.
package model
