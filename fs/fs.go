// Package appfs embeds the files shipped with the binaries: SQL migrations, templates and assets.
package appfs

import "embed"

// Layouts start with "_" and are skipped by directory patterns, hence the explicit glob.
//go:embed migrations assets assets/templates/*/_*
var FS embed.FS
