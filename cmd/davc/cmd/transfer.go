package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davc/client"
	"go.uber.org/zap"
)

type getArgs struct {
	output string
	tokens []string
}

func NewGetCmd(c *Context) *cobra.Command {
	args := &getArgs{}
	ctx := context.Background()
	subc := &cobra.Command{
		Use:   "get <path>",
		Short: "Download a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			rs, err := c.Client.Get(ctx, argv[0], client.WithLockTokens(args.tokens...))
			if err != nil {
				return err
			}
			if err := expect(rs); err != nil {
				return err
			}
			if len(args.output) == 0 {
				_, err := cmd.OutOrStdout().Write(rs.Value)
				return err
			}
			if err := os.WriteFile(args.output, rs.Value, 0644); err != nil {
				return fmt.Errorf("write file:%w", err)
			}
			return nil
		},
	}
	subc.Flags().StringVarP(&args.output, "output", "o", "", "local file, stdout when empty")
	subc.Flags().StringSliceVar(&args.tokens, "lock-token", nil, "lock token to submit")
	return subc
}

type putArgs struct {
	file        string
	contentType string
	tokens      []string
}

func NewPutCmd(c *Context) *cobra.Command {
	args := &putArgs{}
	ctx := context.Background()
	subc := &cobra.Command{
		Use:   "put <path>",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			return onRunPut(ctx, c, argv[0], args)
		},
	}
	subc.Flags().StringVarP(&args.file, "file", "f", "", "local file to upload")
	subc.Flags().StringVar(&args.contentType, "content-type", "", "content type, detected from the data when empty")
	subc.Flags().StringSliceVar(&args.tokens, "lock-token", nil, "lock token to submit")
	return subc
}

func onRunPut(ctx context.Context, c *Context, path string, args *putArgs) error {
	if len(args.file) == 0 {
		return fmt.Errorf("no upload file found")
	}
	raw, err := os.ReadFile(args.file)
	if err != nil {
		return fmt.Errorf("read file:%w", err)
	}
	ct := args.contentType
	if len(ct) == 0 {
		ct = mimetype.Detect(raw).String()
	}
	start := time.Now()
	rs, err := c.Client.Put(ctx, path, raw, client.WithContentType(ct), client.WithLockTokens(args.tokens...))
	if err != nil {
		return fmt.Errorf("put file failed, err:%w", err)
	}
	if err := expect(rs); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("put file succ", zap.String("path", path), zap.String("content_type", ct),
		zap.String("size", humanize.IBytes(uint64(len(raw)))), zap.Duration("cost", time.Since(start)))
	return nil
}

func init() {
	register(NewGetCmd)
	register(NewPutCmd)
}
