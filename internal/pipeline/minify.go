package pipeline

import (
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"

	"github.com/sitepipe/sitepipe/internal/stylesheet"
)

var cssMinifier = func() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	return m
}()

// renderCSS serializes sheet, minified in production.
func (c *Config) renderCSS(sheet *stylesheet.Sheet) ([]byte, error) {
	out := sheet.String()
	if !c.Production {
		return []byte(out), nil
	}
	minified, err := cssMinifier.String("text/css", out)
	if err != nil {
		return nil, fmt.Errorf("error minifying CSS: %w", err)
	}
	return []byte(minified), nil
}
