// Package migrations embeds the SQL schema and demo seed applied by
// `medication-server migrate up`.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
