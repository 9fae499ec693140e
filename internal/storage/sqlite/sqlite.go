// sqlite реализует storage.Storage поверх SQLite (modernc.org/sqlite, без cgo).
// Это хранилище по умолчанию: один файл БД, схема применяется при открытии.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/pribylovaa/go-contacts-service/internal/storage"
	"github.com/pribylovaa/go-contacts-service/internal/storage/migrations"
)

// Прагмы применяются к каждому соединению пула.
const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

type Storage struct {
	db *sql.DB
}

// New открывает файл БД по пути path и применяет миграции.
func New(ctx context.Context, path string) (*Storage, error) {
	const op = "storage.sqlite.New"

	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%s: storage path is required", op)
	}

	dsn := "file:" + filepath.Clean(path) + "?" + pragmas
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := migrations.Up(ctx, db, goose.DialectSQLite3); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// Ping проверяет доступность БД.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close() {
	_ = s.db.Close()
}

// toMillis/fromMillis хранят время в миллисекундах UTC.
func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// isUniqueViolation распознаёт нарушение UNIQUE/PRIMARY KEY.
func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3lib.SQLITE_CONSTRAINT:
		// Без расширенных кодов различаем по тексту ошибки.
		return strings.Contains(sqliteErr.Error(), "UNIQUE")
	default:
		return false
	}
}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)
