// migrations содержит SQL-схему сервиса для postgres и sqlite
// и применяет её через goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Up применяет все неприменённые миграции для указанного диалекта.
// Используется goose.Provider: без глобального состояния goose, поэтому
// безопасно для параллельных тестов.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect) error {
	const op = "storage.migrations.Up"

	var dir string
	switch dialect {
	case goose.DialectPostgres:
		dir = "postgres"
	case goose.DialectSQLite3:
		dir = "sqlite"
	default:
		return fmt.Errorf("%s: unsupported dialect %q", op, dialect)
	}

	fsys, err := fs.Sub(files, dir)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
