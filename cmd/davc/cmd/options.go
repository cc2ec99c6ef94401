package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/retry"
	"go.uber.org/zap"
)

func NewOptionsCmd(c *Context) *cobra.Command {
	ctx := context.Background()
	return &cobra.Command{
		Use:   "options [path]",
		Short: "Show compliance classes and allowed methods",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			rs, err := c.Client.Options(ctx, path)
			if err != nil {
				return err
			}
			if err := expect(rs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dav: %s\n", strings.Join(rs.Value.Classes, ", "))
			fmt.Fprintf(cmd.OutOrStdout(), "allow: %s\n", strings.Join(rs.Value.Methods, ", "))
			return nil
		},
	}
}

type pingArgs struct {
	times    int
	interval time.Duration
}

func NewPingCmd(c *Context) *cobra.Command {
	args := &pingArgs{}
	ctx := context.Background()
	subc := &cobra.Command{
		Use:   "ping",
		Short: "Wait until the server answers OPTIONS as a WebDAV server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return onRunPing(ctx, cmd, c, args)
		},
	}
	subc.Flags().IntVar(&args.times, "times", 3, "max attempts")
	subc.Flags().DurationVar(&args.interval, "interval", 2*time.Second, "wait between attempts")
	return subc
}

func onRunPing(ctx context.Context, cmd *cobra.Command, c *Context, args *pingArgs) error {
	start := time.Now()
	var classes []string
	if err := retry.RetryDo(ctx, uint32(args.times), args.interval, func(ctx context.Context) error {
		cls, err := c.Client.ComplianceClasses(ctx)
		if err != nil {
			logutil.GetLogger(ctx).Error("ping server failed, wait retry", zap.Error(err))
			return err
		}
		if len(cls) == 0 {
			return fmt.Errorf("no dav compliance class found")
		}
		classes = cls
		return nil
	}); err != nil {
		return fmt.Errorf("ping failed, err:%w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is up, dav: %s, cost: %s\n", c.Client.BaseURL(), strings.Join(classes, ", "), time.Since(start).Round(time.Millisecond))
	return nil
}

func init() {
	register(NewOptionsCmd)
	register(NewPingCmd)
}
