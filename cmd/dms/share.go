package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ShareCommands struct {
	Share   ShareCommand   `cmd:"" group:"SHARING" help:"Share a document with a user"`
	Shares  SharesCommand  `cmd:"" group:"SHARING" help:"List the shares of a document"`
	Unshare UnshareCommand `cmd:"" group:"SHARING" help:"Remove a share"`
}

type ShareCommand struct {
	DocumentCommand
	User       string `arg:"" help:"User to share with"`
	Permission string `name:"permission" short:"p" default:"view" enum:"view,edit" help:"Permission (${enum})"`
}

type SharesCommand struct {
	DocumentCommand
}

type UnshareCommand struct {
	Share string `arg:"" help:"Share identifier"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *ShareCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	share, err := c.Share(app.ctx, cmd.Document, schema.ShareRequest{
		User:       cmd.User,
		Permission: schema.Permission(cmd.Permission),
	})
	if err != nil {
		return err
	}
	return printShares([]schema.Share{*share})
}

func (cmd *SharesCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	response, err := c.ListShares(app.ctx, cmd.Document)
	if err != nil {
		return err
	}
	if app.Debug {
		return prettyJSON(response)
	}
	return printShares(response.Body)
}

func (cmd *UnshareCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	share, err := c.Unshare(app.ctx, cmd.Share)
	if err != nil {
		return err
	}
	return printShares([]schema.Share{*share})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func printShares(shares []schema.Share) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, share := range shares {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", share.ID, share.Permission, bold(share.User), formatModTime(share.Created))
	}
	return w.Flush()
}
