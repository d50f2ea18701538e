// Package appfs embeds the SQL migrations, templates and static assets into the binaries.
package appfs

import "embed"

//go:embed migrations templates assets
var FS embed.FS
