package mock

import "github.com/fwojciec/kindlefeed"

var _ kindlefeed.Converter = (*Converter)(nil)

// Converter is a mock implementation of kindlefeed.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
