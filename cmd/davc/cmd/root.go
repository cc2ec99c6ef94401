package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/davc/client"
	"github.com/xxxsen/davc/cmd/davc/config"
	"github.com/xxxsen/davc/transport"
)

const (
	defaultConfigFileEnv = "DAVC_CONFIG"
	defaultConfigFile    = "/etc/davc/davc.yaml"
)

var cmds []CreateFunc

type Context struct {
	Client client.IClient
	Config *config.Config
}

type CreateFunc func(ctx *Context) *cobra.Command

func register(cr CreateFunc) {
	cmds = append(cmds, cr)
}

func findConfig(explicit string) string {
	if len(explicit) > 0 {
		return explicit
	}
	if f, ok := os.LookupEnv(defaultConfigFileEnv); ok && len(f) > 0 {
		return f
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return ""
}

func buildClient(c *config.Config) (client.IClient, error) {
	if len(c.Server) == 0 {
		return nil, fmt.Errorf("no server found, set it in config or with --server")
	}
	tp := transport.NewHTTPTransport(
		transport.WithTimeout(time.Duration(c.Timeout)*time.Second),
		transport.WithMaxBodySize(c.MaxBodySize),
	)
	opts := []client.Option{
		client.WithTransport(tp),
		client.WithUserAgent(c.UserAgent),
		client.WithErrorPolicy(client.PolicyRaise),
	}
	if len(c.User) > 0 {
		opts = append(opts, client.WithBasicAuth(c.User, c.Password))
	}
	for _, item := range c.Namespaces {
		opts = append(opts, client.WithNamespace(item.URI, item.Prefix))
	}
	return client.New(c.Server, opts...)
}

func initContext(ctx *Context, cfg string, server string) error {
	c, err := config.Parse(findConfig(cfg))
	if err != nil {
		return fmt.Errorf("load config failed, err:%w", err)
	}
	if len(server) > 0 {
		c.Server = server
	}
	ctx.Config = c
	logger.Init("", c.LogLevel, 0, 0, 0, true)
	cli, err := buildClient(c)
	if err != nil {
		return err
	}
	ctx.Client = cli
	return nil
}

func NewRoot() *cobra.Command {
	var configFile string
	var server string
	ctx := &Context{}
	var rootCmd = &cobra.Command{
		Use:           "davc",
		Short:         "WebDAV CLI tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, cr := range cmds {
		rootCmd.AddCommand(cr(ctx))
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initContext(ctx, configFile, server)
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "server base url, overrides config")
	return rootCmd
}

func expect[T any](rs *client.Result[T]) error {
	if !rs.Succeeded {
		return fmt.Errorf("unexpected status:%d", rs.Status)
	}
	return nil
}
