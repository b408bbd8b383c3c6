// Package migrations embeds the SQL schema of the device binding store.
package migrations

import "embed"

// FS holds the numbered golang-migrate files (NNNNNN_name.up.sql / .down.sql)
//
//go:embed *.sql
var FS embed.FS
