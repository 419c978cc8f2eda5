// Package uanode is a client core for OPC UA style address spaces.
//
// It offers:
// - member resolution by qualified name, memoized per parent node and deduplicated across goroutines
// - typed accessors over a member's Value: local Get/Set on the cached value, remote Read/Write
// - blocking and Future based forms of every remote operation, with failures normalized to StatusError
// - structured value encoding through a pluggable SerializationContext (DataTypeRegistry)
// - member tree export as DOT or Mermaid
//
// The transport is supplied by the caller as a Session.
package uanode
