package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type DocumentCommands struct {
	List     ListCommand     `cmd:"" name:"ls" group:"DOCUMENTS" help:"List documents"`
	Get      GetCommand      `cmd:"" name:"get" group:"DOCUMENTS" help:"Download document content"`
	URL      URLCommand      `cmd:"" name:"url" group:"DOCUMENTS" help:"Print a presigned download URL"`
	Rename   RenameCommand   `cmd:"" name:"rename" group:"DOCUMENTS" help:"Rename a document"`
	Move     MoveCommand     `cmd:"" name:"mv" group:"DOCUMENTS" help:"Move a document to another folder"`
	Delete   DeleteCommand   `cmd:"" name:"rm" group:"DOCUMENTS" help:"Move documents to the trash"`
	Restore  RestoreCommand  `cmd:"" name:"restore" group:"DOCUMENTS" help:"Restore documents from the trash"`
	Purge    PurgeCommand    `cmd:"" name:"purge" group:"DOCUMENTS" help:"Permanently remove trashed documents"`
	Tag      TagCommand      `cmd:"" name:"tag" group:"DOCUMENTS" help:"Add tags to a document"`
	Untag    UntagCommand    `cmd:"" name:"untag" group:"DOCUMENTS" help:"Remove tags from a document"`
	Tags     TagsCommand     `cmd:"" name:"tags" group:"DOCUMENTS" help:"List tags in use"`
	Activity ActivityCommand `cmd:"" name:"activity" group:"DOCUMENTS" help:"Show the activity log"`
}

type ListCommand struct {
	Folder     string `arg:"" optional:"" help:"Folder path or identifier (default: all folders)"`
	Tag        string `name:"tag" help:"Only documents with this tag"`
	Query      string `name:"query" short:"q" help:"Only documents whose name contains this text"`
	Type       string `name:"type" help:"Only documents whose content type starts with this, e.g. image/"`
	SharedWith string `name:"shared-with" help:"Only documents shared with this user"`
	Deleted    bool   `name:"deleted" help:"List the trash"`
	Sort       string `name:"sort" default:"name" enum:"name,size,created,modified,type" help:"Sort key (${enum})"`
	Desc       bool   `name:"desc" help:"Sort in descending order"`
	Limit      int    `name:"limit" short:"n" help:"Maximum number of documents to return" default:"100"`
	Offset     int    `name:"offset" help:"Number of documents to skip" default:"0"`
}

type DocumentCommand struct {
	Document string `arg:"" help:"Document identifier"`
}

type DocumentsCommand struct {
	Documents []string `arg:"" help:"Document identifiers"`
}

type GetCommand struct {
	DocumentCommand
	Output string `name:"output" short:"o" help:"Write to file instead of stdout"`
}

type URLCommand struct {
	DocumentCommand
}

type RenameCommand struct {
	DocumentCommand
	Name string `arg:"" help:"New name"`
}

type MoveCommand struct {
	DocumentCommand
	Folder string `arg:"" help:"Destination folder path or identifier"`
}

type DeleteCommand struct {
	DocumentsCommand
}

type RestoreCommand struct {
	DocumentsCommand
}

type PurgeCommand struct {
	DocumentsCommand
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *ListCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	req := schema.DocumentListRequest{
		Tag:        cmd.Tag,
		Query:      cmd.Query,
		Type:       cmd.Type,
		SharedWith: cmd.SharedWith,
		Deleted:    cmd.Deleted,
		Sort:       cmd.Sort,
		Offset:     cmd.Offset,
		Limit:      min(cmd.Limit, schema.MaxListLimit),
	}
	if cmd.Desc {
		req.Order = schema.OrderDesc
	}
	if cmd.Folder != "" {
		if req.Folder, err = resolveFolder(app.ctx, c, cmd.Folder); err != nil {
			return err
		}
	}
	response, err := c.ListDocuments(app.ctx, req)
	if err != nil {
		return err
	}
	if app.Debug {
		return prettyJSON(response)
	}
	printDocuments(response.Body, response.Count)
	return nil
}

func (cmd *GetCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	var out io.Writer = os.Stdout
	var outFile *os.File
	if cmd.Output != "" {
		if outFile, err = os.Create(cmd.Output); err != nil {
			return err
		}
		out = outFile
	}
	_, err = c.ReadDocument(app.ctx, cmd.Document, out)
	if outFile != nil {
		err = errors.Join(err, outFile.Close())
		if err != nil {
			os.Remove(cmd.Output)
		}
	}
	return err
}

func (cmd *URLCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	response, err := c.DocumentURL(app.ctx, cmd.Document)
	if err != nil {
		return err
	}
	if app.Debug {
		return prettyJSON(response)
	}
	fmt.Println(response.URL)
	return nil
}

func (cmd *RenameCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	doc, err := c.UpdateDocument(app.ctx, cmd.Document, schema.DocumentUpdate{Name: &cmd.Name})
	if err != nil {
		return err
	}
	printDocument(doc)
	return nil
}

func (cmd *MoveCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	folder, err := resolveFolder(app.ctx, c, cmd.Folder)
	if err != nil {
		return err
	}
	doc, err := c.UpdateDocument(app.ctx, cmd.Document, schema.DocumentUpdate{Folder: &folder})
	if err != nil {
		return err
	}
	printDocument(doc)
	return nil
}

func (cmd *DeleteCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	return eachDocument(cmd.Documents, "trashed", func(id string) (*schema.Document, error) {
		return c.DeleteDocument(app.ctx, id)
	})
}

func (cmd *RestoreCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	return eachDocument(cmd.Documents, "restored", func(id string) (*schema.Document, error) {
		return c.RestoreDocument(app.ctx, id)
	})
}

func (cmd *PurgeCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	return eachDocument(cmd.Documents, "purged", func(id string) (*schema.Document, error) {
		return c.PurgeDocument(app.ctx, id)
	})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// eachDocument applies fn to each document, reporting failures and
// continuing with the rest
func eachDocument(ids []string, verb string, fn func(string) (*schema.Document, error)) error {
	var result error
	for _, id := range ids {
		doc, err := fn(id)
		if err != nil {
			result = errors.Join(result, fmt.Errorf("%s: %w", id, err))
			continue
		}
		fmt.Printf("%s %s (%s)\n", verb, bold(doc.Name), doc.ID)
	}
	return result
}
