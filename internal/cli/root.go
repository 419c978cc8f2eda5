// Package cli implements the uanode command line over a YAML-described
// in-memory address space.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chenyanchen/uanode"
	"github.com/chenyanchen/uanode/config"
	"github.com/chenyanchen/uanode/memsession"
	"github.com/chenyanchen/uanode/model"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Space     string
	Config    string
	Namespace string
	Verbose   bool
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "uanode",
		Short: "Browse, read and write a YAML-described address space",
		Long: `uanode resolves members of nodes in an address space and reads or writes
their values the way a client library user would. The address space is
loaded from a YAML file (--space); an optional config file selects logging
and the browse cache backend.

Member names are "{uri}Name", or a bare Name in the --ns namespace
(namespace 0 when --ns is not set).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.Space, "space", "s", "", "address space YAML file (required by every command but types)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "config YAML file")
	cmd.PersistentFlags().StringVar(&opts.Namespace, "ns", "", "namespace URI of bare member names")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging to stderr")

	cmd.AddCommand(NewMembersCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewReadCommand(opts))
	cmd.AddCommand(NewWriteCommand(opts))
	cmd.AddCommand(NewGraphCommand(opts))
	cmd.AddCommand(NewRefreshCommand(opts))
	cmd.AddCommand(NewTypesCommand(opts))

	return cmd
}

// open loads the address space and opens a runtime over it.
func (o *RootOptions) open(cmd *cobra.Command) (*config.Runtime, error) {
	if o.Space == "" {
		return nil, NewExitError(ExitCommandError, "--space is required")
	}
	cfg := config.Default()
	if o.Config != "" {
		loaded, err := config.Load(o.Config)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "load config", err)
		}
		cfg = loaded
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	cfg.LogOutput = cmd.ErrOrStderr()

	session := memsession.New(memsession.WithDataTypes(model.NewDataTypes()))
	if err := session.LoadFile(o.Space); err != nil {
		return nil, WrapExitError(ExitCommandError, "load address space", err)
	}
	rt, err := config.Open(cmd.Context(), cfg, session)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open client", err)
	}
	return rt, nil
}

func (o *RootOptions) qualifiedName(s string) (uanode.QualifiedName, error) {
	if o.Namespace != "" && !strings.HasPrefix(s, "{") && s != "" {
		return uanode.NewQualifiedName(o.Namespace, s), nil
	}
	qn, err := memsession.ParseQualifiedName(s, nil)
	if err != nil {
		return uanode.QualifiedName{}, NewExitError(ExitCommandError, err.Error())
	}
	return qn, nil
}

// walk returns the node reached from start through the member path names.
func (o *RootOptions) walk(ctx context.Context, rt *config.Runtime, start string, names []string) (*uanode.Node, error) {
	id, err := uanode.ParseNodeID(start)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "parse node id", err)
	}
	n, err := rt.Client.Node(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, s := range names {
		name, err := o.qualifiedName(s)
		if err != nil {
			return nil, err
		}
		m, err := n.Member(ctx, name, uanode.MemberHint{})
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, NewExitError(ExitFailure, fmt.Sprintf("%s has no member %s", n.ID(), name))
		}
		n = m
	}
	return n, nil
}
