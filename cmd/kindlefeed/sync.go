package main

import (
	"fmt"

	"github.com/fwojciec/kindlefeed/feed"
)

// Run executes the sync command.
func (c *SyncCmd) Run(deps *Dependencies) error {
	s := deps.Syncer
	s.DryRun = c.DryRun
	s.IsolateFailures = c.IsolateFailures
	s.MarkSkipped = c.MarkSkipped

	progress := func(event feed.ProgressEvent) {
		switch event.Type {
		case feed.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Found %d entries\n", event.Total)
		case feed.ProgressSkipped:
			fmt.Fprintf(deps.Stderr, "  skip %s: not an HTML page\n", event.Entry.URL)
		case feed.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  fail %s: %s\n", event.Entry.URL, errorText(event.Error))
		case feed.ProgressMarkFailed:
			fmt.Fprintf(deps.Stderr, "  warning: %s\n", errorText(event.Error))
		case feed.ProgressWarning:
			fmt.Fprintf(deps.Stderr, "  warning: %v\n", event.Error)
		}
	}

	result, err := s.Sync(deps.Ctx, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	if result.AlreadyRead > 0 {
		fmt.Fprintf(deps.Stdout, "  Ignored %d entries already read\n", result.AlreadyRead)
	}

	if result.Document == nil {
		fmt.Fprintln(deps.Stdout, "Nothing to send.")
		return nil
	}

	doc := result.Document
	size := feed.FormatBytes(len(doc.HTML))
	if !result.Sent {
		fmt.Fprintf(deps.Stdout, "Assembled %q with %d articles (%s), not sent\n", doc.Title, len(doc.Articles), size)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Sent %q with %d articles (%s)\n", doc.Title, len(doc.Articles), size)
	fmt.Fprintf(deps.Stdout, "  Marked %d entries read\n", len(result.Marked))

	if len(result.Failed) > 0 {
		fmt.Fprintf(deps.Stdout, "  %d articles failed:\n", len(result.Failed))
		for _, f := range result.Failed {
			fmt.Fprintf(deps.Stdout, "    %s\n", feed.DisplayURL(f.Entry.URL))
		}
	}
	if len(result.MarkFailures) > 0 {
		fmt.Fprintf(deps.Stdout, "  %d entries could not be marked read and will be sent again\n", len(result.MarkFailures))
	}

	return nil
}
