package migrations

import "embed"

// FS SQL миграции схемы, применяются через golang-migrate
//
//go:embed *.sql
var FS embed.FS
