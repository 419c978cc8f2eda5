package uanode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	kvpkg "github.com/chenyanchen/kv"
	"github.com/chenyanchen/kv/cachekv"
	"github.com/google/uuid"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"
	"golang.org/x/sync/singleflight"

	"github.com/chenyanchen/uanode/internal/opentr"
)

const (
	DefaultNodeCacheSize = 1024
	DefaultNodeCacheTTL  = 2 * time.Minute
)

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	logger    *slog.Logger
	tracer    opentracing.Tracer
	dataTypes SerializationContext
	sessionID string
	cacheSize int
	cacheTTL  time.Duration
}

// WithLogger sets the structured logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithTracer sets the tracer remote calls are reported to.
func WithTracer(t opentracing.Tracer) Option {
	return func(o *clientOptions) { o.tracer = t }
}

// WithDataTypes sets the default serialization context for structured values.
func WithDataTypes(sc SerializationContext) Option {
	return func(o *clientOptions) { o.dataTypes = sc }
}

// WithSessionID overrides the generated session id used to tag logs and spans.
func WithSessionID(id string) Option {
	return func(o *clientOptions) { o.sessionID = id }
}

// WithNodeCache sizes the address-space node cache.
func WithNodeCache(size int, ttl time.Duration) Option {
	return func(o *clientOptions) {
		o.cacheSize = size
		o.cacheTTL = ttl
	}
}

// Client owns a Session and the nodes created on it.
//
// Nodes obtained through Client.Node are cached by id for a bounded time, so
// that resolving the same id twice in a short window yields the same *Node.
// Member maps hold their nodes for the lifetime of the parent regardless.
type Client struct {
	session   Session
	logger    *slog.Logger
	tracer    opentracing.Tracer
	dataTypes SerializationContext
	sessionID string

	nodes kvpkg.KV[NodeID, *Node]
	sf    singleflight.Group
}

func NewClient(session Session, opts ...Option) (*Client, error) {
	if session == nil {
		return nil, fmt.Errorf("new client: session is nil")
	}

	o := clientOptions{
		cacheSize: DefaultNodeCacheSize,
		cacheTTL:  DefaultNodeCacheTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.tracer == nil {
		o.tracer = opentracing.NoopTracer{}
	}
	if o.dataTypes == nil {
		if p, ok := session.(SerializationContextProvider); ok {
			o.dataTypes = p.SerializationContext()
		}
	}
	if o.sessionID == "" {
		o.sessionID = uuid.Must(uuid.NewV7()).String()
	}
	if o.cacheSize <= 0 {
		return nil, fmt.Errorf("new client: node cache size must be positive, got %d", o.cacheSize)
	}

	nodes, err := cachekv.NewLRU[NodeID, *Node](o.cacheSize, nil, o.cacheTTL)
	if err != nil {
		return nil, fmt.Errorf("new client: node cache: %w", err)
	}

	return &Client{
		session:   session,
		logger:    o.logger.With("session_id", o.sessionID),
		tracer:    o.tracer,
		dataTypes: o.dataTypes,
		sessionID: o.sessionID,
		nodes:     nodes,
	}, nil
}

// SessionID returns the id tagging this client's logs and spans.
func (c *Client) SessionID() string { return c.sessionID }

// DataTypes returns the default serialization context, nil if none was configured.
func (c *Client) DataTypes() SerializationContext { return c.dataTypes }

// Node returns the node for id, creating it on first use. No remote call is made.
func (c *Client) Node(ctx context.Context, id NodeID) (*Node, error) {
	if id.IsNull() {
		return nil, StatusError{Code: BadNodeIDUnknown, Message: "null node id"}
	}
	return c.nodeFor(ctx, ReferenceDescription{NodeID: id})
}

// nodeFor returns the cached node for ref.NodeID or creates one described by ref.
func (c *Client) nodeFor(ctx context.Context, ref ReferenceDescription) (*Node, error) {
	n, err := c.nodes.Get(ctx, ref.NodeID)
	if err == nil {
		n.describe(ref)
		return n, nil
	}
	if !errors.Is(err, kvpkg.ErrNotFound) {
		return nil, fmt.Errorf("node cache get %s: %w", ref.NodeID, err)
	}

	v, err, _ := c.sf.Do(ref.NodeID.String(), func() (any, error) {
		if cached, err := c.nodes.Get(ctx, ref.NodeID); err == nil {
			return cached, nil
		}
		created := newNode(c, ref)
		if err := c.nodes.Set(ctx, ref.NodeID, created); err != nil {
			return nil, fmt.Errorf("node cache set %s: %w", ref.NodeID, err)
		}
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	n = v.(*Node)
	n.describe(ref)
	return n, nil
}

func (c *Client) browse(ctx context.Context, desc BrowseDescription) ([]ReferenceDescription, error) {
	span, ctx := opentr.Start(ctx, c.tracer, "uanode browse")
	defer span.Finish()
	opentr.AddSessionID(span, c.sessionID)
	opentr.SetupBrowse(span, desc.NodeID.String(), desc.ReferenceTypeID.String())

	refs, err := c.session.Browse(ctx, desc)
	if err != nil {
		opentr.LogError(span, StatusOf(err).String(), err)
		c.logger.Warn("browse failed", "node_id", desc.NodeID.String(), "err", err)
		return nil, fmt.Errorf("browse %s: %w", desc.NodeID, err)
	}
	opentr.LogSuccess(span, Good.String(), log.Int("references", len(refs)))
	return refs, nil
}

func (c *Client) read(ctx context.Context, id NodeID, attr AttributeID) (DataValue, error) {
	span, ctx := opentr.Start(ctx, c.tracer, "uanode read")
	defer span.Finish()
	opentr.AddSessionID(span, c.sessionID)
	opentr.SetupAttribute(span, "read", id.String(), attr.String())

	dv, err := c.session.Read(ctx, id, attr)
	if err != nil {
		opentr.LogError(span, StatusOf(err).String(), err)
		return DataValue{}, fmt.Errorf("read %s of %s: %w", attr, id, err)
	}
	if dv.Status.IsBad() {
		err := StatusError{Code: dv.Status, Message: fmt.Sprintf("read %s of %s", attr, id)}
		opentr.LogError(span, dv.Status.String(), err)
		return DataValue{}, err
	}
	opentr.LogSuccess(span, dv.Status.String())
	return dv, nil
}

func (c *Client) write(ctx context.Context, id NodeID, attr AttributeID, dv DataValue) (StatusCode, error) {
	span, ctx := opentr.Start(ctx, c.tracer, "uanode write")
	defer span.Finish()
	opentr.AddSessionID(span, c.sessionID)
	opentr.SetupAttribute(span, "write", id.String(), attr.String())

	status, err := c.session.Write(ctx, id, attr, dv)
	if err != nil {
		opentr.LogError(span, StatusOf(err).String(), err)
		return 0, fmt.Errorf("write %s of %s: %w", attr, id, err)
	}
	if status.IsBad() {
		span.SetTag("error", true)
	}
	opentr.LogSuccess(span, status.String())
	return status, nil
}
