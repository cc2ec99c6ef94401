package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/davc/client"
	"github.com/xxxsen/davc/lock"
	"github.com/xxxsen/davc/multistatus"
)

type lockArgs struct {
	timeout int64
	shared  bool
	deep    bool
	owner   string
	refresh string
}

func printLock(w io.Writer, l *lock.Lock) {
	expire := "never"
	if !l.IsInfinite() {
		expire = humanize.Time(time.Now().Add(time.Duration(l.Timeout()) * time.Second))
	}
	fmt.Fprintf(w, "token: %s\n", l.Token())
	fmt.Fprintf(w, "path: %s\n", l.Path())
	fmt.Fprintf(w, "scope: %s, depth: %s, owner: %s\n", l.Scope(), l.Depth(), l.Owner())
	fmt.Fprintf(w, "expire: %s\n", expire)
}

func NewLockCmd(c *Context) *cobra.Command {
	args := &lockArgs{}
	ctx := context.Background()
	subc := &cobra.Command{
		Use:   "lock <path>",
		Short: "Create or refresh a write lock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			var rs *client.Result[*lock.Lock]
			var err error
			if len(args.refresh) > 0 {
				rs, err = c.Client.RefreshLock(ctx, argv[0], args.refresh, args.timeout)
			} else {
				opts := []client.CallOption{
					client.WithLockTimeout(args.timeout),
					client.WithLockOwner(args.owner),
					client.WithRecursive(args.deep),
				}
				if args.shared {
					opts = append(opts, client.WithLockScope(lock.ScopeShared))
				}
				rs, err = c.Client.CreateLock(ctx, argv[0], opts...)
			}
			if err != nil {
				return err
			}
			if err := expect(rs); err != nil {
				return err
			}
			printLock(cmd.OutOrStdout(), rs.Value)
			return nil
		},
	}
	subc.Flags().Int64Var(&args.timeout, "timeout", lock.TimeoutInfinite, "lock lifetime in seconds, -1 for infinite")
	subc.Flags().BoolVar(&args.shared, "shared", false, "take a shared lock")
	subc.Flags().BoolVar(&args.deep, "deep", false, "lock the whole collection tree")
	subc.Flags().StringVar(&args.owner, "owner", "", "lock owner")
	subc.Flags().StringVar(&args.refresh, "refresh", "", "refresh the lock with this token instead of creating one")
	return subc
}

func NewUnlockCmd(c *Context) *cobra.Command {
	return newOpCmd(c, "unlock <path> <token>", "Release a lock", 2,
		func(ctx context.Context, cli client.IClient, args []string) (*client.Result[*multistatus.MultiStatus], error) {
			return cli.ReleaseLock(ctx, args[0], args[1])
		})
}

func init() {
	register(NewLockCmd)
	register(NewUnlockCmd)
}
