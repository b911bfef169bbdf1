package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	// Packages
	httpclient "github.com/mutablelogic/go-dms/pkg/httpclient"
	navtree "github.com/mutablelogic/go-dms/pkg/navtree"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type NodeCommands struct {
	Tree       TreeCommand       `cmd:"" group:"HIERARCHY" help:"Show the navigation tree"`
	Node       NodeCommand       `cmd:"" group:"HIERARCHY" help:"Show a node, its breadcrumb and children"`
	NodeCreate NodeCreateCommand `cmd:"" group:"HIERARCHY" help:"Create a department, category, subcategory or folder"`
	NodeRename NodeRenameCommand `cmd:"" group:"HIERARCHY" help:"Rename a node"`
	NodeDelete NodeDeleteCommand `cmd:"" group:"HIERARCHY" help:"Delete an empty node"`
}

type TreeCommand struct {
	Filter string `name:"filter" short:"f" help:"Only show nodes whose name contains this text, with their paths"`
	IDs    bool   `name:"ids" help:"Show node identifiers"`
}

type NodeCommand struct {
	Node string `arg:"" help:"Node path (e.g. /Finance/Invoices) or identifier"`
}

type NodeCreateCommand struct {
	Kind   string `arg:"" enum:"department,category,subcategory,folder" help:"Node kind (${enum})"`
	Name   string `arg:"" help:"Node name"`
	Parent string `name:"parent" short:"p" help:"Parent path or identifier, required except for departments"`
}

type NodeRenameCommand struct {
	NodeCommand
	Name string `arg:"" help:"New name"`
}

type NodeDeleteCommand struct {
	NodeCommand
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *TreeCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	response, err := c.Tree(app.ctx)
	if err != nil {
		return err
	}
	if app.Debug {
		return prettyJSON(response)
	}
	tree := navtree.New(response.Body)

	// Jump-to-folder search
	if cmd.Filter != "" {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, node := range tree.Filter(cmd.Filter) {
			fmt.Fprintf(w, "%s\t%s\t%s\n", node.ID, node.Kind, tree.Path(node.ID))
		}
		return w.Flush()
	}

	return tree.Walk(func(node schema.Node, depth int) error {
		line := strings.Repeat("  ", depth) + bold(node.Name)
		if node.Kind != schema.NodeFolder {
			line += " (" + string(node.Kind) + ")"
		}
		if cmd.IDs {
			line += "  " + node.ID
		}
		fmt.Println(line)
		return nil
	})
}

func (cmd *NodeCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	id, err := resolveNode(app.ctx, c, cmd.Node)
	if err != nil {
		return err
	}
	response, err := c.GetNode(app.ctx, id)
	if err != nil {
		return err
	}
	if app.Debug {
		return prettyJSON(response)
	}
	fmt.Printf("%s  %s (%s)\n\n", response.Breadcrumb, response.ID, response.Kind)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, child := range response.Children {
		fmt.Fprintf(w, "%s\t%s\t%s\n", child.ID, child.Kind, bold(child.Name))
	}
	return w.Flush()
}

func (cmd *NodeCreateCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	meta := schema.NodeMeta{Kind: schema.NodeKind(cmd.Kind), Name: cmd.Name}
	if cmd.Parent != "" {
		if meta.Parent, err = resolveNode(app.ctx, c, cmd.Parent); err != nil {
			return err
		}
	}
	node, err := c.CreateNode(app.ctx, meta)
	if err != nil {
		return err
	}
	return prettyJSON(node)
}

func (cmd *NodeRenameCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	id, err := resolveNode(app.ctx, c, cmd.Node)
	if err != nil {
		return err
	}
	node, err := c.RenameNode(app.ctx, id, cmd.Name)
	if err != nil {
		return err
	}
	return prettyJSON(node)
}

func (cmd *NodeDeleteCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	id, err := resolveNode(app.ctx, c, cmd.Node)
	if err != nil {
		return err
	}
	node, err := c.DeleteNode(app.ctx, id)
	if err != nil {
		return err
	}
	return prettyJSON(node)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// resolveNode returns the identifier for a display path such as
// "/Finance/Invoices", or ref unchanged when it is not a path
func resolveNode(ctx context.Context, c *httpclient.Client, ref string) (string, error) {
	if !strings.HasPrefix(ref, "/") {
		return ref, nil
	}
	response, err := c.Tree(ctx)
	if err != nil {
		return "", err
	}
	node, err := navtree.New(response.Body).Resolve(ref)
	if err != nil {
		return "", httpresponse.ErrNotFound.Withf("%q: %v", ref, err)
	}
	return node.ID, nil
}

// resolveFolder resolves ref and checks it is a folder
func resolveFolder(ctx context.Context, c *httpclient.Client, ref string) (string, error) {
	id, err := resolveNode(ctx, c, ref)
	if err != nil {
		return "", err
	}
	node, err := c.GetNode(ctx, id)
	if err != nil {
		return "", err
	} else if node.Kind != schema.NodeFolder {
		return "", httpresponse.ErrBadRequest.Withf("%q is a %s, not a folder", ref, node.Kind)
	}
	return id, nil
}
