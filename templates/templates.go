// Package templates embeds the built-in emission templates, laid out as
// <language namespace>/<template name>.tmpl.
package templates

import "embed"

//go:embed java/*.tmpl scala/*.tmpl
var FS embed.FS
