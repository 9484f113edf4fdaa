package main

import (
	"fmt"
	"strings"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	article, err := deps.Articles.ExtractArticle(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	title := article.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(deps.Stdout, "# %s\n\n", title)

	if c.HTML || strings.TrimSpace(article.Content) == "" {
		fmt.Fprintln(deps.Stdout, article.Content)
		return nil
	}

	md, err := deps.Converter.Convert(article.Content)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, md)
	return nil
}
