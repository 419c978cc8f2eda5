package refresh

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/chenyanchen/uanode"
	"github.com/chenyanchen/uanode/internal/cbor"
)

const DefaultConcurrency = 8

// Failure is one read that did not succeed.
type Failure struct {
	NodeID uanode.NodeID
	Err    error
}

// Result describes the outcome of one Refresh. Every slice is sorted by node id.
type Result struct {
	Refreshed []uanode.NodeID // Value read successfully.
	Changed   []uanode.NodeID // Subset of Refreshed whose value or status differs from before.
	Failed    []Failure
}

type Option func(*Refresher)

// WithConcurrency bounds the number of reads in flight. Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(r *Refresher) {
		if n < 1 {
			n = 1
		}
		r.concurrency = n
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Refresher) { r.logger = l }
}

// Refresher re-reads values of resolved variables.
type Refresher struct {
	concurrency int
	logger      *slog.Logger
}

func New(opts ...Option) *Refresher {
	r := &Refresher{
		concurrency: DefaultConcurrency,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh reads the Value of root and of every Variable reachable from it
// through resolved members. Read failures land in Result.Failed; the
// returned error is non-nil only when ctx ends before all reads finish.
func (r *Refresher) Refresh(ctx context.Context, root *uanode.Node) (Result, error) {
	if root == nil {
		return Result{}, fmt.Errorf("refresh: root is nil")
	}
	targets := variables(root)

	var (
		mu  sync.Mutex
		out Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, n := range targets {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			before := fingerprint(n.Value())
			dv, err := n.ReadValue(gctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Warn("refresh failed", "node_id", n.ID().String(), "err", err)
				out.Failed = append(out.Failed, Failure{NodeID: n.ID(), Err: err})
				return nil
			}
			out.Refreshed = append(out.Refreshed, n.ID())
			if fingerprint(dv) != before {
				out.Changed = append(out.Changed, n.ID())
			}
			return nil
		})
	}
	_ = g.Wait()

	sortIDs(out.Refreshed)
	sortIDs(out.Changed)
	sort.Slice(out.Failed, func(i, j int) bool {
		return out.Failed[i].NodeID.String() < out.Failed[j].NodeID.String()
	})
	r.logger.Debug("refresh finished",
		"root", root.ID().String(),
		"refreshed", len(out.Refreshed),
		"changed", len(out.Changed),
		"failed", len(out.Failed))

	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("refresh %s: %w", root.ID(), err)
	}
	return out, nil
}

// variables returns root and its resolved descendants of class Variable, each once.
func variables(root *uanode.Node) []*uanode.Node {
	seen := map[uanode.NodeID]struct{}{root.ID(): {}}
	queue := []*uanode.Node{root}
	var out []*uanode.Node
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.NodeClass() == uanode.NodeClassVariable {
			out = append(out, n)
		}
		for _, m := range n.Members() {
			if _, ok := seen[m.ID()]; ok {
				continue
			}
			seen[m.ID()] = struct{}{}
			queue = append(queue, m)
		}
	}
	return out
}

// fingerprint hashes the value and status of dv; timestamps are ignored.
func fingerprint(dv uanode.DataValue) string {
	h := sha256.New()
	var status [4]byte
	binary.BigEndian.PutUint32(status[:], uint32(dv.Status))
	h.Write(status[:])
	if err := cbor.Encode(h, dv.Value.Value); err != nil {
		fmt.Fprintf(h, "%T:%v", dv.Value.Value, dv.Value.Value)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sortIDs(ids []uanode.NodeID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}
