package cmd

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/davc/client"
	"github.com/xxxsen/davc/davxml"
	"github.com/xxxsen/davc/lock"
	"github.com/xxxsen/davc/multistatus"
)

var (
	propResourceType  = xml.Name{Space: davxml.NamespaceDAV, Local: "resourcetype"}
	propContentLength = xml.Name{Space: davxml.NamespaceDAV, Local: "getcontentlength"}
	propLastModified  = xml.Name{Space: davxml.NamespaceDAV, Local: "getlastmodified"}
)

var listProps = []string{"D:resourcetype", "D:getcontentlength", "D:getlastmodified"}

func isCollection(e multistatus.Entry) bool {
	p, ok := e.Property(propResourceType)
	return ok && strings.Contains(p.InnerXML, "collection")
}

func sizeOf(e multistatus.Entry) string {
	p, ok := e.Property(propContentLength)
	if !ok || !p.OK() {
		return "-"
	}
	sz, err := strconv.ParseUint(strings.TrimSpace(p.Value), 10, 64)
	if err != nil {
		return p.Value
	}
	return humanize.IBytes(sz)
}

func valueOf(e multistatus.Entry, name xml.Name) string {
	p, ok := e.Property(name)
	if !ok || !p.OK() || len(p.Value) == 0 {
		return "-"
	}
	return p.Value
}

func NewListCmd(c *Context) *cobra.Command {
	ctx := context.Background()
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List a collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			rs, err := c.Client.Propfind(ctx, path, listProps, client.WithDepth(lock.DepthOne))
			if err != nil {
				return err
			}
			if err := expect(rs); err != nil {
				return err
			}
			for _, e := range rs.Value.Entries {
				kind := "f"
				if isCollection(e) {
					kind = "d"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", kind, sizeOf(e), valueOf(e, propLastModified), e.Href)
			}
			return nil
		},
	}
}

func NewStatCmd(c *Context) *cobra.Command {
	ctx := context.Background()
	var props []string
	subc := &cobra.Command{
		Use:   "stat <path>",
		Short: "Show the properties of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := c.Client.Propfind(ctx, args[0], props)
			if err != nil {
				return err
			}
			if err := expect(rs); err != nil {
				return err
			}
			for _, e := range rs.Value.Entries {
				fmt.Fprintf(cmd.OutOrStdout(), "href: %s\n", e.Href)
				for _, name := range e.PropertyNames() {
					p, _ := e.Property(name)
					v := p.Value
					if name == propContentLength {
						v = sizeOf(e)
					}
					if !p.OK() {
						v = p.Status.String()
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  {%s}%s: %s\n", name.Space, name.Local, v)
				}
			}
			return nil
		},
	}
	subc.Flags().StringSliceVarP(&props, "prop", "p", nil, "property to fetch, e.g. D:getetag, all properties when empty")
	return subc
}

func init() {
	register(NewListCmd)
	register(NewStatCmd)
}
