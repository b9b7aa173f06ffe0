// Package migrations embeds the SQL migration files so binaries can migrate
// without a checkout of the repository.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
