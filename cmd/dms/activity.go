package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ActivityCommand struct {
	Document string `name:"document" help:"Only activity for this document"`
	Node     string `name:"node" help:"Only activity for this node path or identifier"`
	User     string `name:"user" help:"Only activity by this user"`
	Action   string `name:"action" help:"Only this action (create, rename, move, delete, restore, purge, upload, tag, untag, share, unshare)"`
	Limit    int    `name:"limit" short:"n" default:"20" help:"Number of entries"`
	Follow   bool   `name:"follow" short:"f" help:"Keep printing new activity until interrupted"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *ActivityCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	req := schema.ActivityListRequest{
		Document: cmd.Document,
		User:     cmd.User,
		Action:   schema.Action(cmd.Action),
		Limit:    cmd.Limit,
	}
	if cmd.Node != "" {
		if req.Node, err = resolveNode(app.ctx, c, cmd.Node); err != nil {
			return err
		}
	}

	// Stream
	if cmd.Follow {
		return c.FollowActivity(app.ctx, req, func(a schema.Activity) error {
			if app.Debug {
				return prettyJSON(a)
			}
			fmt.Println(formatActivity(a))
			return nil
		})
	}

	response, err := c.ListActivity(app.ctx, req)
	if err != nil {
		return err
	}
	if app.Debug {
		return prettyJSON(response)
	}

	// Oldest first, like a log
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i := len(response.Body) - 1; i >= 0; i-- {
		fmt.Fprintln(w, formatActivity(response.Body[i]))
	}
	return w.Flush()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func formatActivity(a schema.Activity) string {
	line := fmt.Sprintf("%s\t%s\t%s\t%s", a.Time.Local().Format(time.DateTime), a.User, a.Action, bold(a.Name))
	if a.Detail != "" {
		line += "\t" + a.Detail
	}
	return line
}
