package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/xxxsen/davc/client"
	"github.com/xxxsen/davc/multistatus"
)

type opFunc func(ctx context.Context, cli client.IClient, args []string) (*client.Result[*multistatus.MultiStatus], error)

func newOpCmd(c *Context, use string, short string, nargs int, fn opFunc) *cobra.Command {
	ctx := context.Background()
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := fn(ctx, c.Client, args)
			if err != nil {
				return err
			}
			return expect(rs)
		},
	}
}

func NewRemoveCmd(c *Context) *cobra.Command {
	var tokens []string
	subc := newOpCmd(c, "rm <path>", "Delete a resource", 1,
		func(ctx context.Context, cli client.IClient, args []string) (*client.Result[*multistatus.MultiStatus], error) {
			return cli.Delete(ctx, args[0], client.WithLockTokens(tokens...))
		})
	subc.Flags().StringSliceVar(&tokens, "lock-token", nil, "lock token to submit")
	return subc
}

func NewMkdirCmd(c *Context) *cobra.Command {
	return newOpCmd(c, "mkdir <path>", "Create a collection", 1,
		func(ctx context.Context, cli client.IClient, args []string) (*client.Result[*multistatus.MultiStatus], error) {
			return cli.Mkcol(ctx, args[0])
		})
}

type transferFlags struct {
	overwrite bool
	recursive bool
	tokens    []string
}

func (f *transferFlags) options() []client.CallOption {
	return []client.CallOption{
		client.WithOverwrite(f.overwrite),
		client.WithRecursive(f.recursive),
		client.WithLockTokens(f.tokens...),
	}
}

func NewCopyCmd(c *Context) *cobra.Command {
	f := &transferFlags{}
	subc := newOpCmd(c, "cp <src> <dst>", "Copy a resource", 2,
		func(ctx context.Context, cli client.IClient, args []string) (*client.Result[*multistatus.MultiStatus], error) {
			return cli.Copy(ctx, args[0], args[1], f.options()...)
		})
	subc.Flags().BoolVar(&f.overwrite, "overwrite", true, "replace an existing destination")
	subc.Flags().BoolVarP(&f.recursive, "recursive", "r", false, "copy collection members")
	subc.Flags().StringSliceVar(&f.tokens, "lock-token", nil, "lock token to submit")
	return subc
}

func NewMoveCmd(c *Context) *cobra.Command {
	f := &transferFlags{}
	subc := newOpCmd(c, "mv <src> <dst>", "Move a resource", 2,
		func(ctx context.Context, cli client.IClient, args []string) (*client.Result[*multistatus.MultiStatus], error) {
			opts := []client.CallOption{client.WithOverwrite(f.overwrite), client.WithLockTokens(f.tokens...)}
			return cli.Move(ctx, args[0], args[1], opts...)
		})
	subc.Flags().BoolVar(&f.overwrite, "overwrite", true, "replace an existing destination")
	subc.Flags().StringSliceVar(&f.tokens, "lock-token", nil, "lock token to submit")
	return subc
}

func init() {
	register(NewRemoveCmd)
	register(NewMkdirCmd)
	register(NewCopyCmd)
	register(NewMoveCmd)
}
