package memsession

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chenyanchen/uanode"
)

// File is the YAML description of an address space.
//
//	namespaces:
//	  ex: http://example/
//	nodes:
//	  - id: ns=1;s=Pump
//	    parent: i=85
//	    reference: i=35
//	    browse_name: ex:Pump
//	    class: Object
//	  - id: ns=1;s=Pump.Severity
//	    parent: ns=1;s=Pump
//	    browse_name: ex:Severity
//	    class: Variable
//	    type: uint16
//	    value: 250
type File struct {
	Namespaces map[string]string `yaml:"namespaces"`
	Nodes      []FileNode        `yaml:"nodes"`
}

type FileNode struct {
	ID             uanode.NodeID `yaml:"id"`
	Parent         uanode.NodeID `yaml:"parent"`
	Reference      uanode.NodeID `yaml:"reference"`
	BrowseName     string        `yaml:"browse_name"`
	DisplayName    string        `yaml:"display_name"`
	Class          string        `yaml:"class"`
	TypeDefinition uanode.NodeID `yaml:"type_definition"`
	Type           string        `yaml:"type"`
	Value          yaml.Node     `yaml:"value"`
}

// LoadFile reads the YAML file at path into s.
func (s *Session) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load address space: %w", err)
	}
	defer f.Close()
	return s.Load(f)
}

// Load reads a YAML address space from r into s.
func (s *Session) Load(r io.Reader) error {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return fmt.Errorf("decode address space: %w", err)
	}
	for i, fn := range file.Nodes {
		spec, err := fn.spec(file.Namespaces)
		if err != nil {
			return fmt.Errorf("node %d (%s): %w", i, fn.ID, err)
		}
		if err := s.AddNode(spec); err != nil {
			return err
		}
	}
	return nil
}

// ParseQualifiedName parses "prefix:Name", "{uri}Name" or a bare name
// (namespace 0). Prefixes are looked up in namespaces.
func ParseQualifiedName(s string, namespaces map[string]string) (uanode.QualifiedName, error) {
	if strings.HasPrefix(s, "{") {
		uri, name, ok := strings.Cut(s[1:], "}")
		if !ok || name == "" {
			return uanode.QualifiedName{}, fmt.Errorf("malformed qualified name %q", s)
		}
		return uanode.NewQualifiedName(uri, name), nil
	}
	if prefix, name, ok := strings.Cut(s, ":"); ok {
		uri, known := namespaces[prefix]
		if !known {
			return uanode.QualifiedName{}, fmt.Errorf("unknown namespace prefix %q in %q", prefix, s)
		}
		return uanode.NewQualifiedName(uri, name), nil
	}
	if s == "" {
		return uanode.QualifiedName{}, fmt.Errorf("empty qualified name")
	}
	return uanode.NewQualifiedName(uanode.StandardNamespace, s), nil
}

var nodeClasses = map[string]uanode.NodeClass{
	"object":        uanode.NodeClassObject,
	"variable":      uanode.NodeClassVariable,
	"method":        uanode.NodeClassMethod,
	"objecttype":    uanode.NodeClassObjectType,
	"variabletype":  uanode.NodeClassVariableType,
	"referencetype": uanode.NodeClassReferenceType,
	"datatype":      uanode.NodeClassDataType,
	"view":          uanode.NodeClassView,
}

func (fn FileNode) spec(namespaces map[string]string) (NodeSpec, error) {
	name, err := ParseQualifiedName(fn.BrowseName, namespaces)
	if err != nil {
		return NodeSpec{}, err
	}
	class := uanode.NodeClassObject
	if fn.Class != "" {
		c, ok := nodeClasses[strings.ToLower(fn.Class)]
		if !ok {
			return NodeSpec{}, fmt.Errorf("unknown node class %q", fn.Class)
		}
		class = c
	}
	value, err := DecodeValue(fn.Type, &fn.Value)
	if err != nil {
		return NodeSpec{}, err
	}
	spec := NodeSpec{
		ID:             fn.ID,
		Parent:         fn.Parent,
		ReferenceType:  fn.Reference,
		BrowseName:     name,
		NodeClass:      class,
		TypeDefinition: fn.TypeDefinition,
		Value:          value,
	}
	if fn.DisplayName != "" {
		spec.DisplayName = uanode.LocalizedText{Text: fn.DisplayName}
	}
	return spec, nil
}

// DecodeValue decodes a YAML value node as the named builtin type. A type
// suffixed with "[]" decodes a sequence. An empty node yields a null Variant.
func DecodeValue(typ string, n *yaml.Node) (uanode.Variant, error) {
	if n == nil || n.Kind == 0 {
		return uanode.Variant{}, nil
	}
	if typ == "" {
		return uanode.Variant{}, fmt.Errorf("value without type")
	}
	elem, isArray := strings.CutSuffix(strings.ToLower(typ), "[]")
	var (
		v   any
		err error
	)
	switch elem {
	case "boolean", "bool":
		v, err = decodeAs[bool](n, isArray)
	case "byte":
		v, err = decodeAs[uint8](n, isArray)
	case "uint16":
		v, err = decodeAs[uint16](n, isArray)
	case "int32":
		v, err = decodeAs[int32](n, isArray)
	case "uint32":
		v, err = decodeAs[uint32](n, isArray)
	case "int64":
		v, err = decodeAs[int64](n, isArray)
	case "double":
		v, err = decodeAs[float64](n, isArray)
	case "string":
		v, err = decodeAs[string](n, isArray)
	case "localizedtext":
		v, err = decodeAs[uanode.LocalizedText](n, isArray)
	default:
		return uanode.Variant{}, fmt.Errorf("unsupported value type %q", typ)
	}
	if err != nil {
		return uanode.Variant{}, fmt.Errorf("decode %s value: %w", typ, err)
	}
	return uanode.NewVariant(v), nil
}

func decodeAs[T any](n *yaml.Node, isArray bool) (any, error) {
	if isArray {
		var out []T
		if err := n.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var out T
	if err := n.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
