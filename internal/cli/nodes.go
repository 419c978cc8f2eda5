package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chenyanchen/uanode"
	"github.com/chenyanchen/uanode/memsession"
)

func NewMembersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "members <node> [name...]",
		Short: "List the hierarchical members of a node",
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
			members, err := n.ResolveMembers(ctx, uanode.NodeID{})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, m := range members {
				typeDef := "-"
				if !m.TypeDefinition().IsNull() {
					typeDef = m.TypeDefinition().String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.BrowseName(), m.ID(), m.NodeClass(), typeDef)
			}
			return w.Flush()
		},
	}
}

func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <node> <name>...",
		Short: "Resolve a member path and print the node it leads to",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			n, err := rootOpts.walk(cmd.Context(), rt, args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", n.ID(), n.NodeClass(), n.BrowseName())
			return nil
		},
	}
}

func NewReadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read <node> [name...]",
		Short: "Read the Value attribute of a node or member",
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
			out := newPainter(cmd.OutOrStdout())
			dv, err := n.ReadValue(ctx)
			if err != nil {
				if se, ok := uanode.ExtractStatusError(err); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out.status(se.Code))
				}
				return WrapExitError(ExitFailure, "read "+n.ID().String(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatValue(dv.Value, rt.Client.DataTypes()), out.status(dv.Status))
			return nil
		},
	}
}

// WriteOptions holds flags for the write command.
type WriteOptions struct {
	Type  string
	Value string
}

func NewWriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WriteOptions{}
	cmd := &cobra.Command{
		Use:   "write <node> [name...] --type <type> --value <yaml>",
		Short: "Write the Value attribute of a node or member",
		Long: `Write a typed value to the Value attribute. --type is one of boolean, byte,
uint16, int32, uint32, int64, double, string, localizedtext, optionally
suffixed with [] for arrays; --value is YAML, e.g. 250 or "[1, 2]".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseValue(opts.Type, opts.Value)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse value", err)
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
			status, err := n.WriteAttribute(ctx, uanode.AttributeValue, uanode.ValueOnly(v))
			if err != nil {
				return WrapExitError(ExitFailure, "write "+n.ID().String(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), newPainter(cmd.OutOrStdout()).status(status))
			if status.IsBad() {
				return NewExitError(ExitFailure, fmt.Sprintf("write %s: %s", n.ID(), status))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "value type (required)")
	cmd.Flags().StringVar(&opts.Value, "value", "", "value as YAML (required)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func parseValue(typ, raw string) (uanode.Variant, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return uanode.Variant{}, err
	}
	if len(doc.Content) == 0 {
		return uanode.Variant{}, fmt.Errorf("empty value")
	}
	return memsession.DecodeValue(typ, doc.Content[0])
}
