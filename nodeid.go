package uanode

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeID identifies a node in a server address space.
//
// Namespace is the namespace index, NamespaceURI optionally names the namespace
// instead (expanded form). ID carries the identifier together with its kind
// prefix: "i=" numeric, "s=" string, "g=" guid, "b=" opaque.
type NodeID struct {
	Namespace    uint16
	NamespaceURI string
	ID           string
}

// NewNumericNodeID returns the numeric node id i in namespace ns.
func NewNumericNodeID(ns uint16, i uint32) NodeID {
	return NodeID{Namespace: ns, ID: "i=" + strconv.FormatUint(uint64(i), 10)}
}

// NewStringNodeID returns the string node id s in namespace ns.
func NewStringNodeID(ns uint16, s string) NodeID {
	return NodeID{Namespace: ns, ID: "s=" + s}
}

// IsNull reports whether id is the zero NodeID.
func (id NodeID) IsNull() bool {
	return id == NodeID{}
}

func (id NodeID) String() string {
	if id.IsNull() {
		return ""
	}
	switch {
	case id.NamespaceURI != "":
		return "nsu=" + id.NamespaceURI + ";" + id.ID
	case id.Namespace != 0:
		return "ns=" + strconv.FormatUint(uint64(id.Namespace), 10) + ";" + id.ID
	default:
		return id.ID
	}
}

// MarshalText implements encoding.TextMarshaler.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *NodeID) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseNodeID parses the text form produced by NodeID.String.
// The empty string parses to the null NodeID.
func ParseNodeID(s string) (NodeID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NodeID{}, nil
	}

	var id NodeID
	rest := s
	switch {
	case strings.HasPrefix(rest, "nsu="):
		uri, tail, ok := strings.Cut(rest[len("nsu="):], ";")
		if !ok || uri == "" {
			return NodeID{}, fmt.Errorf("parse node id %q: missing namespace uri", s)
		}
		id.NamespaceURI = uri
		rest = tail
	case strings.HasPrefix(rest, "ns="):
		idx, tail, ok := strings.Cut(rest[len("ns="):], ";")
		if !ok {
			return NodeID{}, fmt.Errorf("parse node id %q: missing identifier", s)
		}
		ns, err := strconv.ParseUint(idx, 10, 16)
		if err != nil {
			return NodeID{}, fmt.Errorf("parse node id %q: namespace index: %w", s, err)
		}
		id.Namespace = uint16(ns)
		rest = tail
	}

	if len(rest) < 3 || rest[1] != '=' {
		return NodeID{}, fmt.Errorf("parse node id %q: malformed identifier", s)
	}
	switch rest[0] {
	case 'i':
		if _, err := strconv.ParseUint(rest[2:], 10, 32); err != nil {
			return NodeID{}, fmt.Errorf("parse node id %q: numeric identifier: %w", s, err)
		}
	case 's', 'g', 'b':
	default:
		return NodeID{}, fmt.Errorf("parse node id %q: unknown identifier kind %q", s, rest[0])
	}
	id.ID = rest
	return id, nil
}

// MustParseNodeID is ParseNodeID that panics on error; intended for constants.
func MustParseNodeID(s string) NodeID {
	id, err := ParseNodeID(s)
	if err != nil {
		panic(err)
	}
	return id
}
