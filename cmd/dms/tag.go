package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type TagCommand struct {
	DocumentCommand
	Tags []string `arg:"" help:"Tags to add"`
}

type UntagCommand struct {
	DocumentCommand
	Tags []string `arg:"" help:"Tags to remove"`
}

type TagsCommand struct{}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *TagCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	var doc *schema.Document
	for _, tag := range cmd.Tags {
		if doc, err = c.AddTag(app.ctx, cmd.Document, tag); err != nil {
			return fmt.Errorf("%s: %w", tag, err)
		}
	}
	return printTags(doc)
}

func (cmd *UntagCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	var doc *schema.Document
	for _, tag := range cmd.Tags {
		if doc, err = c.RemoveTag(app.ctx, cmd.Document, tag); err != nil {
			return fmt.Errorf("%s: %w", tag, err)
		}
	}
	return printTags(doc)
}

func (cmd *TagsCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	response, err := c.ListTags(app.ctx)
	if err != nil {
		return err
	}
	if app.Debug {
		return prettyJSON(response)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, tag := range response.Body {
		fmt.Fprintf(w, "%6d\t#%s\n", tag.Count, tag.Tag)
	}
	return w.Flush()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func printTags(doc *schema.Document) error {
	if doc == nil {
		return errors.New("no tags given")
	}
	if len(doc.Tags) == 0 {
		fmt.Printf("%s: no tags\n", bold(doc.Name))
	} else {
		fmt.Printf("%s: #%s\n", bold(doc.Name), strings.Join(doc.Tags, " #"))
	}
	return nil
}
