// Package migrations содержит SQL миграции схемы, встроенные в бинарник
package migrations

import "embed"

// FS файлы вида {version}_{description}.sql
//
//go:embed *.sql
var FS embed.FS
