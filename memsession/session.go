// Package memsession is an in-memory address space implementing uanode.Session.
//
// It records call counts, echoes writes back on later reads, and lets callers
// inject per-node browse failures and per-attribute status codes.
package memsession

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chenyanchen/uanode"
)

// NodeSpec declares one node and the reference that links it to its parent.
type NodeSpec struct {
	ID             uanode.NodeID
	Parent         uanode.NodeID // null for a root
	ReferenceType  uanode.NodeID // defaults to HasComponent
	BrowseName     uanode.QualifiedName
	DisplayName    uanode.LocalizedText
	NodeClass      uanode.NodeClass
	TypeDefinition uanode.NodeID
	Value          uanode.Variant
}

// Counts are the number of calls served, by kind.
type Counts struct {
	Browse int64
	Read   int64
	Write  int64
}

type node struct {
	spec     NodeSpec
	value    uanode.DataValue
	children []uanode.NodeID
}

// Option configures a Session.
type Option func(*Session)

// WithDataTypes makes the session provide sc as its serialization context.
func WithDataTypes(sc uanode.SerializationContext) Option {
	return func(s *Session) { s.dataTypes = sc }
}

// WithLatency delays every call by d, honouring ctx.
func WithLatency(d time.Duration) Option {
	return func(s *Session) { s.latency = d }
}

// WithClock sets the source of server timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

type Session struct {
	dataTypes uanode.SerializationContext
	latency   time.Duration
	now       func() time.Time

	mu           sync.RWMutex
	nodes        map[uanode.NodeID]*node
	roots        []uanode.NodeID
	browseFaults map[uanode.NodeID]error
	statuses     map[uanode.NodeID]uanode.StatusCode

	browses atomic.Int64
	reads   atomic.Int64
	writes  atomic.Int64
}

var _ uanode.Session = (*Session)(nil)

func New(opts ...Option) *Session {
	s := &Session{
		now:          time.Now,
		nodes:        make(map[uanode.NodeID]*node),
		browseFaults: make(map[uanode.NodeID]error),
		statuses:     make(map[uanode.NodeID]uanode.StatusCode),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SerializationContext returns the context configured with WithDataTypes.
func (s *Session) SerializationContext() uanode.SerializationContext {
	return s.dataTypes
}

// AddNode adds spec to the address space. The parent, if any, must exist.
func (s *Session) AddNode(spec NodeSpec) error {
	if spec.ID.IsNull() {
		return fmt.Errorf("add node %q: id is null", spec.BrowseName)
	}
	if spec.ReferenceType.IsNull() {
		spec.ReferenceType = uanode.HasComponent
	}
	if spec.DisplayName.Text == "" {
		spec.DisplayName = uanode.LocalizedText{Text: spec.BrowseName.Name}
	}
	spec.BrowseName = uanode.NewQualifiedName(spec.BrowseName.Namespace, spec.BrowseName.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[spec.ID]; exists {
		return fmt.Errorf("add node %s: duplicate id", spec.ID)
	}
	if spec.Parent.IsNull() {
		s.roots = append(s.roots, spec.ID)
	} else {
		parent, ok := s.nodes[spec.Parent]
		if !ok {
			return fmt.Errorf("add node %s: parent %s not found", spec.ID, spec.Parent)
		}
		parent.children = append(parent.children, spec.ID)
	}
	s.nodes[spec.ID] = &node{spec: spec, value: uanode.ValueOnly(spec.Value)}
	return nil
}

// MustAddNode is AddNode that panics on error.
func (s *Session) MustAddNode(spec NodeSpec) {
	if err := s.AddNode(spec); err != nil {
		panic(err)
	}
}

// SetValue replaces the server-side Value of id.
func (s *Session) SetValue(id uanode.NodeID, v uanode.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return uanode.StatusError{Code: uanode.BadNodeIDUnknown, Message: id.String()}
	}
	n.value = uanode.DataValue{Value: v, ServerTimestamp: s.now()}
	return nil
}

// ServerValue returns the server-side Value of id without counting a read.
func (s *Session) ServerValue(id uanode.NodeID) (uanode.DataValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return uanode.DataValue{}, false
	}
	return n.value, true
}

// SetStatus makes reads and writes of id's Value report code. Good clears it.
func (s *Session) SetStatus(id uanode.NodeID, code uanode.StatusCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == uanode.Good {
		delete(s.statuses, id)
		return
	}
	s.statuses[id] = code
}

// FailBrowse makes browsing id fail with err. A nil err clears it.
func (s *Session) FailBrowse(id uanode.NodeID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.browseFaults, id)
		return
	}
	s.browseFaults[id] = err
}

// Roots returns the ids of nodes added without a parent, in insertion order.
func (s *Session) Roots() []uanode.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]uanode.NodeID(nil), s.roots...)
}

func (s *Session) Counts() Counts {
	return Counts{
		Browse: s.browses.Load(),
		Read:   s.reads.Load(),
		Write:  s.writes.Load(),
	}
}

func (s *Session) Browse(ctx context.Context, desc uanode.BrowseDescription) ([]uanode.ReferenceDescription, error) {
	s.browses.Add(1)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.browseFaults[desc.NodeID]; err != nil {
		return nil, err
	}
	parent, ok := s.nodes[desc.NodeID]
	if !ok {
		return nil, uanode.StatusError{Code: uanode.BadNodeIDUnknown, Message: desc.NodeID.String()}
	}

	want := desc.ReferenceTypeID
	if want.IsNull() {
		want = uanode.HierarchicalReferences
	}
	out := make([]uanode.ReferenceDescription, 0, len(parent.children))
	for _, id := range parent.children {
		child := s.nodes[id]
		if !referenceMatches(child.spec.ReferenceType, want, desc.IncludeSubtypes) {
			continue
		}
		if desc.NodeClassMask != 0 && uint32(child.spec.NodeClass)&desc.NodeClassMask == 0 {
			continue
		}
		out = append(out, uanode.ReferenceDescription{
			ReferenceTypeID: child.spec.ReferenceType,
			IsForward:       true,
			NodeID:          child.spec.ID,
			BrowseName:      child.spec.BrowseName,
			DisplayName:     child.spec.DisplayName,
			NodeClass:       child.spec.NodeClass,
			TypeDefinition:  child.spec.TypeDefinition,
		})
	}
	return out, nil
}

func (s *Session) Read(ctx context.Context, id uanode.NodeID, attr uanode.AttributeID) (uanode.DataValue, error) {
	s.reads.Add(1)
	if err := s.wait(ctx); err != nil {
		return uanode.DataValue{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return uanode.DataValue{Status: uanode.BadNodeIDUnknown}, nil
	}

	var v any
	switch attr {
	case uanode.AttributeValue:
		if code, ok := s.statuses[id]; ok {
			return uanode.DataValue{Status: code}, nil
		}
		return n.value, nil
	case uanode.AttributeNodeID:
		v = n.spec.ID
	case uanode.AttributeNodeClass:
		v = int32(n.spec.NodeClass)
	case uanode.AttributeBrowseName:
		v = n.spec.BrowseName
	case uanode.AttributeDisplayName:
		v = n.spec.DisplayName
	default:
		return uanode.DataValue{Status: uanode.BadAttributeIDInvalid}, nil
	}
	return uanode.DataValue{Value: uanode.NewVariant(v), ServerTimestamp: s.now()}, nil
}

func (s *Session) Write(ctx context.Context, id uanode.NodeID, attr uanode.AttributeID, value uanode.DataValue) (uanode.StatusCode, error) {
	s.writes.Add(1)
	if err := s.wait(ctx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return uanode.BadNodeIDUnknown, nil
	}
	if attr != uanode.AttributeValue {
		return uanode.BadNotWritable, nil
	}
	if code, ok := s.statuses[id]; ok {
		return code, nil
	}
	if value.ServerTimestamp.IsZero() {
		value.ServerTimestamp = s.now()
	}
	n.value = value
	return uanode.Good, nil
}

func (s *Session) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func referenceMatches(got, want uanode.NodeID, subtypes bool) bool {
	if got == want {
		return true
	}
	if !subtypes || want != uanode.HierarchicalReferences {
		return false
	}
	switch got {
	case uanode.Organizes, uanode.HasComponent, uanode.HasProperty:
		return true
	}
	return false
}
