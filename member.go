package uanode

import (
	"context"
	"fmt"
	"sort"
)

// MemberHint narrows and validates a member lookup.
//
// ReferenceTypeID is the reference type browsed from the parent (subtypes
// included); the null id means HierarchicalReferences. When several members
// share the requested name, the one whose TypeDefinition equals the hint's wins.
type MemberHint struct {
	ReferenceTypeID NodeID
	TypeDefinition  NodeID
}

// CachedMember returns the member resolved under name without any remote
// call. ok is false when the name was never resolved; a confirmed-absent
// entry returns (nil, true).
func (n *Node) CachedMember(name QualifiedName) (*Node, bool) {
	name = name.nfc()
	n.membersMu.RLock()
	defer n.membersMu.RUnlock()
	m, ok := n.members[name]
	return m, ok
}

// Member returns the member of n named name, browsing the server the first
// time. A member that does not exist yields (nil, nil) and is remembered as
// absent. Browse failures are returned and not remembered.
//
// Concurrent first lookups of one name share a single browse.
func (n *Node) Member(ctx context.Context, name QualifiedName, hint MemberHint) (*Node, error) {
	name = name.nfc()
	if m, ok := n.CachedMember(name); ok {
		return m, nil
	}

	// The shared lookup outlives any one caller so that a cancelled waiter
	// does not fail the others.
	lookupCtx := context.WithoutCancel(ctx)
	ch := n.sf.DoChan(name.String(), func() (any, error) {
		return n.resolveMember(lookupCtx, name, hint)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		m, _ := res.Val.(*Node)
		return m, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("resolve member %s of %s: %w", name, n.id, ctx.Err())
	}
}

// MemberAsync is the future form of Member. A cached entry completes
// immediately without starting a goroutine.
func (n *Node) MemberAsync(ctx context.Context, name QualifiedName, hint MemberHint) *Future[*Node] {
	if m, ok := n.CachedMember(name); ok {
		return Completed(m)
	}
	return Go(ctx, func(ctx context.Context) (*Node, error) {
		return n.Member(ctx, name, hint)
	})
}

// ResolveMembers browses n once and caches every forward target of refType
// (subtypes included; null means HierarchicalReferences) under its browse
// name. Names already cached keep their entry. It returns the members found
// by this browse ordered by browse name.
func (n *Node) ResolveMembers(ctx context.Context, refType NodeID) ([]*Node, error) {
	if refType.IsNull() {
		refType = HierarchicalReferences
	}
	refs, err := n.client.browse(ctx, BrowseDescription{
		NodeID:          n.id,
		ReferenceTypeID: refType,
		IncludeSubtypes: true,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve members of %s: %w", n.id, err)
	}

	var out []memberEntry
	seen := make(map[QualifiedName]struct{})
	for _, ref := range refs {
		name := ref.BrowseName.nfc()
		if !ref.IsForward {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		m, ok := n.CachedMember(name)
		if !ok {
			n.membersMu.RLock()
			m = n.byID[ref.NodeID]
			n.membersMu.RUnlock()
			if m == nil {
				if m, err = n.client.nodeFor(ctx, ref); err != nil {
					return nil, fmt.Errorf("resolve members of %s: %w", n.id, err)
				}
			}
			m = n.insertMember(name, m)
		}
		if m != nil {
			out = append(out, memberEntry{name: name, node: m})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].name.String() < out[j].name.String()
	})

	nodes := make([]*Node, len(out))
	for i, e := range out {
		nodes[i] = e.node
	}
	return nodes, nil
}

// Members returns the resolved members ordered by browse name.
func (n *Node) Members() []*Node {
	entries := n.memberEntries()
	out := make([]*Node, len(entries))
	for i, e := range entries {
		out[i] = e.node
	}
	return out
}

type memberEntry struct {
	name QualifiedName
	node *Node
}

func (n *Node) memberEntries() []memberEntry {
	n.membersMu.RLock()
	out := make([]memberEntry, 0, len(n.members))
	for name, m := range n.members {
		if m != nil {
			out = append(out, memberEntry{name: name, node: m})
		}
	}
	n.membersMu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].name.String() < out[j].name.String()
	})
	return out
}

func (n *Node) resolveMember(ctx context.Context, name QualifiedName, hint MemberHint) (*Node, error) {
	if m, ok := n.CachedMember(name); ok {
		return m, nil
	}

	refType := hint.ReferenceTypeID
	if refType.IsNull() {
		refType = HierarchicalReferences
	}
	refs, err := n.client.browse(ctx, BrowseDescription{
		NodeID:          n.id,
		ReferenceTypeID: refType,
		IncludeSubtypes: true,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve member %s of %s: %w", name, n.id, err)
	}

	ref, found := selectMember(refs, name, hint.TypeDefinition)
	if !found {
		n.client.logger.Debug("member not found", "parent", n.id.String(), "name", name.String())
		return n.insertMember(name, nil), nil
	}

	n.membersMu.RLock()
	m := n.byID[ref.NodeID]
	n.membersMu.RUnlock()
	if m == nil {
		m, err = n.client.nodeFor(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("resolve member %s of %s: %w", name, n.id, err)
		}
	}

	n.client.logger.Debug("member resolved",
		"parent", n.id.String(), "name", name.String(), "node_id", ref.NodeID.String())
	return n.insertMember(name, m), nil
}

// insertMember stores m under name unless an entry already exists, and
// returns the entry that is now cached.
func (n *Node) insertMember(name QualifiedName, m *Node) *Node {
	n.membersMu.Lock()
	defer n.membersMu.Unlock()
	if existing, ok := n.members[name]; ok {
		return existing
	}
	n.members[name] = m
	if m != nil {
		if _, ok := n.byID[m.id]; !ok {
			n.byID[m.id] = m
		}
	}
	return m
}

func selectMember(refs []ReferenceDescription, name QualifiedName, typeDefinition NodeID) (ReferenceDescription, bool) {
	var (
		first ReferenceDescription
		found bool
	)
	for _, ref := range refs {
		if !ref.IsForward || ref.BrowseName.nfc() != name {
			continue
		}
		if typeDefinition.IsNull() || ref.TypeDefinition == typeDefinition {
			return ref, true
		}
		if !found {
			first, found = ref, true
		}
	}
	return first, found
}
