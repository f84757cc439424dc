// Package static embeds the single-page UI served at the root.
package static

import "embed"

//go:embed index.html
var FS embed.FS
