package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/kindlefeed"
	"github.com/fwojciec/kindlefeed/feed"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := kindlefeed.DeliveryFilter{Limit: c.Limit}
	if c.URL != "" {
		filter.URL = &c.URL
	}

	deliveries, err := deps.History.FindDeliveries(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	if len(deliveries) == 0 {
		fmt.Fprintln(deps.Stdout, "No deliveries found. Use 'kindlefeed sync' to send one.")
		return nil
	}

	for _, d := range deliveries {
		fmt.Fprintf(deps.Stdout, "%s  %s  %d articles  %s\n",
			d.SentAt.Local().Format(time.DateTime), d.Title, len(d.Articles), feed.FormatBytes(d.Bytes))
		if c.Articles {
			for _, a := range d.Articles {
				title := a.Title
				if title == "" {
					title = "(untitled)"
				}
				fmt.Fprintf(deps.Stdout, "    %d. %s  %s\n", a.Position+1, title, a.URL)
			}
		}
	}

	return nil
}
