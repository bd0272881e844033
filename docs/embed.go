// Package docs holds long-form guides bundled with the packsync binary.
package docs

import "embed"

// FS contains the Markdown guides shown by `packsync guide`.
//
//go:embed *.md
var FS embed.FS
