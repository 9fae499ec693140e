package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/go-contacts-service/internal/storage"
	"github.com/pribylovaa/go-contacts-service/internal/storage/storagetest"
)

// Интеграционные тесты пакета postgres:
// - поднимают реальный PostgreSQL через testcontainers-go (образ postgres:16-alpine);
// - миграции применяются самим New;
// - прогоняют общий контрактный набор storagetest.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

// startPostgres поднимает один контейнер на тест и возвращает DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())
}

func TestIntegration_StorageContract(t *testing.T) {
	dsn := startPostgres(t)

	storagetest.Run(t, func(t *testing.T) storage.Storage {
		st, err := New(context.Background(), dsn)
		require.NoError(t, err)

		// Контрактные тесты ожидают пустые таблицы.
		_, err = st.db.Exec(context.Background(), `TRUNCATE contacts, users RESTART IDENTITY CASCADE`)
		require.NoError(t, err)

		t.Cleanup(st.Close)
		return st
	})
}

// TestIntegration_New_Idempotent - повторный New на той же БД не падает на миграциях.
func TestIntegration_New_Idempotent(t *testing.T) {
	dsn := startPostgres(t)

	st1, err := New(context.Background(), dsn)
	require.NoError(t, err)
	st1.Close()

	st2, err := New(context.Background(), dsn)
	require.NoError(t, err)
	st2.Close()
}

func TestIntegration_ContextDeadlineExceeded(t *testing.T) {
	dsn := startPostgres(t)

	st, err := New(context.Background(), dsn)
	require.NoError(t, err)
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err = st.ListContacts(ctx, 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew_BadDSN(t *testing.T) {
	_, err := New(context.Background(), "://not a dsn")
	require.Error(t, err)
}
