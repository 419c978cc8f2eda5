package uanode

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Node is a client-side handle on one remote node.
//
// It holds the node's last-known Value, the browse metadata it was discovered
// with, and the members already resolved beneath it. Nodes are shared by
// pointer: resolving the same member twice returns the same *Node.
type Node struct {
	client *Client
	id     NodeID

	metaMu         sync.RWMutex
	browseName     QualifiedName
	nodeClass      NodeClass
	typeDefinition NodeID

	valueMu sync.RWMutex
	value   DataValue

	membersMu sync.RWMutex
	members   map[QualifiedName]*Node // nil value: confirmed absent
	byID      map[NodeID]*Node
	sf        singleflight.Group
}

func newNode(c *Client, ref ReferenceDescription) *Node {
	return &Node{
		client:         c,
		id:             ref.NodeID,
		browseName:     ref.BrowseName,
		nodeClass:      ref.NodeClass,
		typeDefinition: ref.TypeDefinition,
		members:        make(map[QualifiedName]*Node),
		byID:           make(map[NodeID]*Node),
	}
}

// describe fills browse metadata the node was created without.
func (n *Node) describe(ref ReferenceDescription) {
	if ref.NodeClass == NodeClassUnspecified {
		return
	}
	n.metaMu.Lock()
	defer n.metaMu.Unlock()
	if n.nodeClass != NodeClassUnspecified {
		return
	}
	n.browseName = ref.BrowseName
	n.nodeClass = ref.NodeClass
	n.typeDefinition = ref.TypeDefinition
}

func (n *Node) ID() NodeID { return n.id }

func (n *Node) Client() *Client { return n.client }

// BrowseName is the name the node was discovered under; zero for nodes
// obtained directly by id.
func (n *Node) BrowseName() QualifiedName {
	n.metaMu.RLock()
	defer n.metaMu.RUnlock()
	return n.browseName
}

func (n *Node) NodeClass() NodeClass {
	n.metaMu.RLock()
	defer n.metaMu.RUnlock()
	return n.nodeClass
}

func (n *Node) TypeDefinition() NodeID {
	n.metaMu.RLock()
	defer n.metaMu.RUnlock()
	return n.typeDefinition
}

func (n *Node) String() string { return n.id.String() }

// Value returns the locally cached Value attribute.
func (n *Node) Value() DataValue {
	n.valueMu.RLock()
	defer n.valueMu.RUnlock()
	return n.value
}

// SetValue overwrites the locally cached Value. Nothing is sent to the server.
func (n *Node) SetValue(v Variant) {
	n.storeValue(ValueOnly(v))
}

func (n *Node) storeValue(dv DataValue) {
	n.valueMu.Lock()
	n.value = dv
	n.valueMu.Unlock()
}

// ReadAttributeAsync reads attr from the server. A Bad per-attribute status
// fails the future; a successful read of Value updates the local cache.
func (n *Node) ReadAttributeAsync(ctx context.Context, attr AttributeID) *Future[DataValue] {
	return Go(ctx, func(ctx context.Context) (DataValue, error) {
		dv, err := n.client.read(ctx, n.id, attr)
		if err != nil {
			return DataValue{}, err
		}
		if attr == AttributeValue {
			n.storeValue(dv)
		}
		return dv, nil
	})
}

// ReadAttribute is the blocking form of ReadAttributeAsync.
func (n *Node) ReadAttribute(ctx context.Context, attr AttributeID) (DataValue, error) {
	return Await(ctx, n.ReadAttributeAsync(ctx, attr))
}

// WriteAttributeAsync writes dv to attr and completes with the per-attribute
// status. A Good write of Value stores dv as the local Value.
func (n *Node) WriteAttributeAsync(ctx context.Context, attr AttributeID, dv DataValue) *Future[StatusCode] {
	return Go(ctx, func(ctx context.Context) (StatusCode, error) {
		status, err := n.client.write(ctx, n.id, attr, dv)
		if err != nil {
			return 0, err
		}
		if status.IsGood() && attr == AttributeValue {
			n.storeValue(dv)
		}
		return status, nil
	})
}

// WriteAttribute is the blocking form of WriteAttributeAsync. A Bad status is
// returned, not converted to an error.
func (n *Node) WriteAttribute(ctx context.Context, attr AttributeID, dv DataValue) (StatusCode, error) {
	return Await(ctx, n.WriteAttributeAsync(ctx, attr, dv))
}

// ReadValue reads the Value attribute.
func (n *Node) ReadValue(ctx context.Context) (DataValue, error) {
	return n.ReadAttribute(ctx, AttributeValue)
}

// WriteValue writes v to the Value attribute; a Bad status is returned as a StatusError.
func (n *Node) WriteValue(ctx context.Context, v Variant) error {
	status, err := n.WriteAttribute(ctx, AttributeValue, ValueOnly(v))
	if err != nil {
		return err
	}
	if status.IsBad() {
		return StatusError{Code: status, Message: "write Value of " + n.id.String()}
	}
	return nil
}
