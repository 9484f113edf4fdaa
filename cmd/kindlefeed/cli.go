package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/kindlefeed"
	"github.com/fwojciec/kindlefeed/feed"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Syncer  *feed.Syncer
	History kindlefeed.DeliveryService

	// Used by the extract command.
	Articles  kindlefeed.ArticleExtractor
	Converter kindlefeed.Converter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool   `short:"v" help:"Log every request at debug level"`
	DB      string `name:"db" env:"KINDLEFEED_DB" help:"Delivery history database path" type:"path"`

	Sync    SyncCmd    `cmd:"" default:"withargs" help:"Send pending saved links to the reader (default)"`
	History HistoryCmd `cmd:"" help:"List past deliveries"`
	Extract ExtractCmd `cmd:"" help:"Extract one article and print it"`
}

// SyncCmd is the "sync" subcommand.
type SyncCmd struct {
	DryRun          bool   `short:"n" help:"Assemble the document without sending it or marking entries"`
	DumpDir         string `short:"d" name:"dump-dir" help:"Write articles, the document and the raw registry response here" type:"path"`
	Extractor       string `default:"readability" enum:"readability,trafilatura" help:"Content extractor (${enum})"`
	Fetcher         string `default:"http" enum:"http,browser" help:"Page fetcher (${enum})"`
	IsolateFailures bool   `name:"isolate-failures" help:"Send the remaining articles when some fail"`
	MarkSkipped     bool   `name:"mark-skipped" help:"Also mark skipped non-HTML entries read after sending"`
	Retries         int    `default:"0" help:"Retries per fetch with exponential backoff"`
	NoHistory       bool   `name:"no-history" help:"Do not record the delivery in the history database"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL       string `arg:"" help:"Article URL"`
	HTML      bool   `help:"Print the extracted HTML instead of Markdown"`
	Extractor string `default:"readability" enum:"readability,trafilatura" help:"Content extractor (${enum})"`
	Fetcher   string `default:"http" enum:"http,browser" help:"Page fetcher (${enum})"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	URL      string `help:"Only deliveries that included this URL"`
	Limit    int    `short:"l" default:"20" help:"Maximum number of deliveries"`
	Articles bool   `short:"a" help:"List the articles of each delivery"`
}

// errorText returns the message of an application error or the full text
// of any other error.
func errorText(err error) string {
	if kindlefeed.ErrorCode(err) == kindlefeed.EINTERNAL {
		return err.Error()
	}
	return kindlefeed.ErrorMessage(err)
}
