package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chenyanchen/uanode"
	"github.com/chenyanchen/uanode/exp/refresh"
	"github.com/chenyanchen/uanode/model"
)

// expand resolves the members of n and of its members, depth levels deep.
// A negative depth has no limit.
func expand(ctx context.Context, n *uanode.Node, depth int, seen map[uanode.NodeID]struct{}) error {
	if depth == 0 {
		return nil
	}
	if _, ok := seen[n.ID()]; ok {
		return nil
	}
	seen[n.ID()] = struct{}{}

	members, err := n.ResolveMembers(ctx, uanode.NodeID{})
	if err != nil {
		return err
	}
	for _, m := range members {
		if err := expand(ctx, m, depth-1, seen); err != nil {
			return err
		}
	}
	return nil
}

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	Format string
	Depth  int
}

func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{}
	cmd := &cobra.Command{
		Use:   "graph <node> [name...]",
		Short: "Export the member tree of a node as DOT or Mermaid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "dot" && opts.Format != "mermaid" {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be dot or mermaid", opts.Format))
			}
			rt, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := cmd.Context()
			n, err := rootOpts.walk(ctx, rt, args[0], args[1:])
			if err != nil {
				return err
			}
			if err := expand(ctx, n, opts.Depth, map[uanode.NodeID]struct{}{}); err != nil {
				return err
			}

			g := n.GraphDepth(opts.Depth)
			if opts.Format == "mermaid" {
				fmt.Fprint(cmd.OutOrStdout(), g.Mermaid())
			} else {
				fmt.Fprint(cmd.OutOrStdout(), g.DOT())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "dot", "output format (dot|mermaid)")
	cmd.Flags().IntVarP(&opts.Depth, "depth", "d", -1, "member levels to include, -1 for all")
	return cmd
}

func NewRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "refresh <node> [name...]",
		Short: "Read every variable in the member tree of a node",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := cmd.Context()
			n, err := rootOpts.walk(ctx, rt, args[0], args[1:])
			if err != nil {
				return err
			}
			if err := expand(ctx, n, -1, map[uanode.NodeID]struct{}{}); err != nil {
				return err
			}

			r := refresh.New(refresh.WithConcurrency(concurrency), refresh.WithLogger(rt.Logger))
			res, err := r.Refresh(ctx, n)
			if err != nil {
				return err
			}

			out := newPainter(cmd.OutOrStdout())
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, id := range res.Refreshed {
				m, err := rt.Client.Node(ctx, id)
				if err != nil {
					return err
				}
				dv := m.Value()
				fmt.Fprintf(w, "%s\t%s\t%s\n", id, formatValue(dv.Value, rt.Client.DataTypes()), out.status(dv.Status))
			}
			for _, f := range res.Failed {
				fmt.Fprintf(w, "%s\t-\t%s\n", f.NodeID, out.status(uanode.StatusOf(f.Err)))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if len(res.Failed) > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d of %d reads failed", len(res.Failed), len(res.Failed)+len(res.Refreshed)))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", refresh.DefaultConcurrency, "reads in flight")
	return cmd
}

func NewTypesCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types [type...]",
		Short: "List the built-in type descriptor tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			defs := model.Types
			if len(args) > 0 {
				defs = nil
				for _, name := range args {
					d, ok := model.Lookup(name)
					if !ok {
						return NewExitError(ExitCommandError, fmt.Sprintf("unknown type %q", name))
					}
					defs = append(defs, d)
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, d := range defs {
				fmt.Fprintf(w, "%s (%s, %s)\n", d.Name, d.NodeID, d.NodeClass)
				for _, m := range d.Members {
					fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", m.Name.Name, referenceName(m.ReferenceTypeID), m.DataType, rankName(m.ValueRank))
				}
			}
			return w.Flush()
		},
	}
}

func referenceName(id uanode.NodeID) string {
	switch id {
	case uanode.HasProperty:
		return "HasProperty"
	case uanode.HasComponent:
		return "HasComponent"
	case uanode.Organizes:
		return "Organizes"
	}
	return id.String()
}

func rankName(r uanode.ValueRank) string {
	switch {
	case r == uanode.ValueRankAny:
		return "any"
	case r.IsArray():
		return "array"
	}
	return "scalar"
}
