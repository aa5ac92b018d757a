// Package templates embeds the HTML assets: the form page and the read-only
// invoice template.
package templates

import "embed"

//go:embed *.html
var FS embed.FS
