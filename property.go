package uanode

import (
	"context"
)

// PropertyDescriptor is the static description of one typed member of an
// object or variable type.
type PropertyDescriptor struct {
	Name            QualifiedName
	ReferenceTypeID NodeID
	TypeDefinition  NodeID
	DataType        NodeID
	ValueRank       ValueRank
}

// Hint returns the member lookup hint of d.
func (d PropertyDescriptor) Hint() MemberHint {
	return MemberHint{ReferenceTypeID: d.ReferenceTypeID, TypeDefinition: d.TypeDefinition}
}

// Property pairs a descriptor with the codec of its value. Properties are
// immutable and meant to be declared once as package variables.
type Property[T any] struct {
	Descriptor PropertyDescriptor
	Codec      Codec[T]
}

// NewProperty returns a property of d decoded with codec.
func NewProperty[T any](d PropertyDescriptor, codec Codec[T]) Property[T] {
	return Property[T]{Descriptor: d, Codec: codec}
}

// Bind returns an accessor for p on parent that converts structured values
// through sc.
func (p Property[T]) Bind(parent *Node, sc SerializationContext) Accessor[T] {
	return Accessor[T]{prop: p, parent: parent, sc: sc}
}

// On returns an accessor for p on parent using the client's default
// serialization context.
func (p Property[T]) On(parent *Node) Accessor[T] {
	return p.Bind(parent, parent.client.DataTypes())
}

// Accessor reads and writes one typed member of a parent node.
//
// Get and Set act on the member's locally cached Value only. Read and Write go
// to the server; Read refreshes the local Value, a Good Write replaces it.
type Accessor[T any] struct {
	prop   Property[T]
	parent *Node
	sc     SerializationContext
}

func (a Accessor[T]) Descriptor() PropertyDescriptor { return a.prop.Descriptor }

// Node resolves the member node. A member the server does not have yields (nil, nil).
func (a Accessor[T]) Node(ctx context.Context) (*Node, error) {
	return Await(ctx, a.NodeAsync(ctx))
}

// NodeAsync is the future form of Node.
func (a Accessor[T]) NodeAsync(ctx context.Context) *Future[*Node] {
	return a.parent.MemberAsync(ctx, a.prop.Descriptor.Name, a.prop.Descriptor.Hint())
}

// Get returns the locally cached Value of the member decoded as T.
func (a Accessor[T]) Get(ctx context.Context) (T, error) {
	var zero T
	n, err := a.member(ctx)
	if err != nil {
		return zero, err
	}
	v, err := a.prop.Codec.Decode(n.Value().Value, a.sc)
	if err != nil {
		return zero, normalize(err)
	}
	return v, nil
}

// Set replaces the locally cached Value of the member. Nothing is sent to the server.
func (a Accessor[T]) Set(ctx context.Context, v T) error {
	n, err := a.member(ctx)
	if err != nil {
		return err
	}
	variant, err := a.prop.Codec.Encode(v, a.sc)
	if err != nil {
		return normalize(err)
	}
	n.SetValue(variant)
	return nil
}

// Read is the blocking form of ReadAsync.
func (a Accessor[T]) Read(ctx context.Context) (T, error) {
	return Await(ctx, a.ReadAsync(ctx))
}

// ReadAsync reads the member's Value from the server, stores it locally and
// decodes it as T.
func (a Accessor[T]) ReadAsync(ctx context.Context) *Future[T] {
	return Then(ctx, a.memberAsync(ctx), func(ctx context.Context, n *Node) (T, error) {
		var zero T
		dv, err := n.ReadAttribute(ctx, AttributeValue)
		if err != nil {
			return zero, err
		}
		return a.prop.Codec.Decode(dv.Value, a.sc)
	})
}

// Write is the blocking form of WriteAsync; a Bad status is returned as a StatusError.
func (a Accessor[T]) Write(ctx context.Context, v T) error {
	status, err := Await(ctx, a.WriteAsync(ctx, v))
	if err != nil {
		return err
	}
	if status.IsBad() {
		return StatusError{Code: status, Message: "write " + a.prop.Descriptor.Name.String()}
	}
	return nil
}

// WriteAsync encodes v and writes it to the member's Value. The future
// carries the per-attribute status of the write.
func (a Accessor[T]) WriteAsync(ctx context.Context, v T) *Future[StatusCode] {
	variant, err := a.prop.Codec.Encode(v, a.sc)
	if err != nil {
		return Failed[StatusCode](err)
	}
	return Then(ctx, a.memberAsync(ctx), func(ctx context.Context, n *Node) (StatusCode, error) {
		return n.WriteAttribute(ctx, AttributeValue, ValueOnly(variant))
	})
}

func (a Accessor[T]) member(ctx context.Context) (*Node, error) {
	return Await(ctx, a.memberAsync(ctx))
}

// memberAsync resolves the member and fails with BadNotFound when the server
// has no such member.
func (a Accessor[T]) memberAsync(ctx context.Context) *Future[*Node] {
	name := a.prop.Descriptor.Name
	parent := a.parent
	if m, ok := parent.CachedMember(name); ok {
		if m == nil {
			return Failed[*Node](a.notFound())
		}
		return Completed(m)
	}
	return Go(ctx, func(ctx context.Context) (*Node, error) {
		m, err := parent.Member(ctx, name, a.prop.Descriptor.Hint())
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, a.notFound()
		}
		return m, nil
	})
}

func (a Accessor[T]) notFound() StatusError {
	return StatusError{
		Code:    BadNotFound,
		Message: "member " + a.prop.Descriptor.Name.String() + " of " + a.parent.id.String(),
	}
}
