package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xxxsen/davc/client"
	"github.com/xxxsen/davc/davxml"
)

type proppatchArgs struct {
	set    []string
	remove []string
	tokens []string
}

func buildPatch(ns *davxml.Namespaces, args *proppatchArgs) ([]davxml.PatchInstruction, error) {
	ins := make([]davxml.PatchInstruction, 0, 2)
	if len(args.set) > 0 {
		props := make([]davxml.Property, 0, len(args.set))
		for _, item := range args.set {
			qname, value, ok := strings.Cut(item, "=")
			if !ok {
				return nil, fmt.Errorf("invalid set item, want name=value, got:%s", item)
			}
			name, err := ns.Resolve(qname)
			if err != nil {
				return nil, err
			}
			props = append(props, davxml.Property{Name: name, Value: value})
		}
		ins = append(ins, davxml.SetProps(props...))
	}
	if len(args.remove) > 0 {
		names, err := ns.ResolveAll(args.remove)
		if err != nil {
			return nil, err
		}
		ins = append(ins, davxml.RemoveProps(names...))
	}
	if len(ins) == 0 {
		return nil, fmt.Errorf("nothing to patch, use --set or --remove")
	}
	return ins, nil
}

func NewProppatchCmd(c *Context) *cobra.Command {
	args := &proppatchArgs{}
	ctx := context.Background()
	subc := &cobra.Command{
		Use:   "proppatch <path>",
		Short: "Set or remove dead properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ins, err := buildPatch(c.Client.Namespaces(), args)
			if err != nil {
				return err
			}
			rs, err := c.Client.Proppatch(ctx, argv[0], ins, client.WithLockTokens(args.tokens...))
			if err != nil {
				return err
			}
			return expect(rs)
		},
	}
	subc.Flags().StringArrayVar(&args.set, "set", nil, "property to set as prefix:name=value")
	subc.Flags().StringArrayVar(&args.remove, "remove", nil, "property to remove as prefix:name")
	subc.Flags().StringSliceVar(&args.tokens, "lock-token", nil, "lock token to submit")
	return subc
}

func init() {
	register(NewProppatchCmd)
}
