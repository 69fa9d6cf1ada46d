// Package migrations embeds the SQL schema migrations so cmd/migrate can
// run them from a single binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
