// Package migrations embebe el esquema SQL de Postgres (goose).
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
