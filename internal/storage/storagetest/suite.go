// storagetest - общий набор контрактных тестов для реализаций storage.Storage.
// Каждая реализация (sqlite, postgres) прогоняет один и тот же набор,
// передавая фабрику чистого хранилища.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-contacts-service/internal/models"
	"github.com/pribylovaa/go-contacts-service/internal/storage"
)

// Factory возвращает пустое хранилище; очистка - через t.Cleanup.
type Factory func(t *testing.T) storage.Storage

// Run прогоняет контрактные тесты.
func Run(t *testing.T, newStorage Factory) {
	t.Run("SaveUser_And_Lookup", func(t *testing.T) { testSaveUserAndLookup(t, newStorage(t)) })
	t.Run("SaveUser_DuplicateEmail", func(t *testing.T) { testDuplicateEmail(t, newStorage(t)) })
	t.Run("Email_CaseSensitive", func(t *testing.T) { testEmailCaseSensitive(t, newStorage(t)) })
	t.Run("User_NotFound", func(t *testing.T) { testUserNotFound(t, newStorage(t)) })
	t.Run("Contacts_RoundTrip_InsertionOrder", func(t *testing.T) { testContactsRoundTrip(t, newStorage(t)) })
	t.Run("UpdateContact_Partial", func(t *testing.T) { testUpdatePartial(t, newStorage(t)) })
	t.Run("DeleteContact", func(t *testing.T) { testDeleteContact(t, newStorage(t)) })
	t.Run("Contacts_CrossTenantIsolation", func(t *testing.T) { testCrossTenant(t, newStorage(t)) })
	t.Run("DeleteUser_CascadesContacts", func(t *testing.T) { testDeleteUserCascade(t, newStorage(t)) })
	t.Run("UpdateContact_Concurrent", func(t *testing.T) { testConcurrentUpdates(t, newStorage(t)) })
	t.Run("Ping", func(t *testing.T) { require.NoError(t, newStorage(t).Ping(context.Background())) })
}

func strPtr(s string) *string { return &s }

func mustUser(t *testing.T, st storage.Storage, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "hash-" + email}
	require.NoError(t, st.SaveUser(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func mustContact(t *testing.T, st storage.Storage, ownerID int64, name, phone string) *models.Contact {
	t.Helper()
	c := &models.Contact{OwnerID: ownerID, Name: name, Phone: phone}
	require.NoError(t, st.SaveContact(context.Background(), c))
	require.NotZero(t, c.ID)
	return c
}

func testSaveUserAndLookup(t *testing.T, st storage.Storage) {
	ctx := context.Background()
	u := mustUser(t, st, "alice@example.com")
	require.False(t, u.CreatedAt.IsZero())

	byEmail, err := st.UserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
	require.Equal(t, "hash-alice@example.com", byEmail.PasswordHash)

	byID, err := st.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", byID.Email)
}

func testDuplicateEmail(t *testing.T, st storage.Storage) {
	mustUser(t, st, "dup@example.com")

	err := st.SaveUser(context.Background(), &models.User{Email: "dup@example.com", PasswordHash: "other"})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func testEmailCaseSensitive(t *testing.T, st storage.Storage) {
	ctx := context.Background()
	lower := mustUser(t, st, "bob@example.com")
	upper := mustUser(t, st, "Bob@example.com")
	require.NotEqual(t, lower.ID, upper.ID)

	got, err := st.UserByEmail(ctx, "Bob@example.com")
	require.NoError(t, err)
	require.Equal(t, upper.ID, got.ID)
}

func testUserNotFound(t *testing.T, st storage.Storage) {
	ctx := context.Background()

	_, err := st.UserByEmail(ctx, "ghost@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByID(ctx, 987654)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.ErrorIs(t, st.DeleteUser(ctx, 987654), storage.ErrNotFound)
}

func testContactsRoundTrip(t *testing.T, st storage.Storage) {
	ctx := context.Background()
	u := mustUser(t, st, "owner@example.com")

	empty, err := st.ListContacts(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	alice := mustContact(t, st, u.ID, "Alice", "555-0001")
	bob := mustContact(t, st, u.ID, "Bob", "555-0002")

	list, err := st.ListContacts(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, alice.ID, list[0].ID)
	require.Equal(t, "Alice", list[0].Name)
	require.Equal(t, "555-0001", list[0].Phone)
	require.Equal(t, u.ID, list[0].OwnerID)
	require.Equal(t, bob.ID, list[1].ID)
}

func testUpdatePartial(t *testing.T, st storage.Storage) {
	ctx := context.Background()
	u := mustUser(t, st, "patch@example.com")
	c := mustContact(t, st, u.ID, "Alice", "555-0001")

	got, err := st.UpdateContact(ctx, c.ID, u.ID, models.ContactPatch{Name: strPtr("Alicia")})
	require.NoError(t, err)
	require.Equal(t, "Alicia", got.Name)
	require.Equal(t, "555-0001", got.Phone)

	got, err = st.UpdateContact(ctx, c.ID, u.ID, models.ContactPatch{Phone: strPtr("555-9999")})
	require.NoError(t, err)
	require.Equal(t, "Alicia", got.Name)
	require.Equal(t, "555-9999", got.Phone)

	got, err = st.UpdateContact(ctx, c.ID, u.ID, models.ContactPatch{})
	require.NoError(t, err)
	require.Equal(t, "Alicia", got.Name)
	require.Equal(t, "555-9999", got.Phone)

	got, err = st.UpdateContact(ctx, c.ID, u.ID, models.ContactPatch{Name: strPtr("")})
	require.NoError(t, err)
	require.Equal(t, "", got.Name)

	_, err = st.UpdateContact(ctx, c.ID+1000, u.ID, models.ContactPatch{Name: strPtr("x")})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func testDeleteContact(t *testing.T, st storage.Storage) {
	ctx := context.Background()
	u := mustUser(t, st, "del@example.com")
	keep := mustContact(t, st, u.ID, "Keep", "1")
	gone := mustContact(t, st, u.ID, "Gone", "2")

	require.NoError(t, st.DeleteContact(ctx, gone.ID, u.ID))

	list, err := st.ListContacts(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, keep.ID, list[0].ID)

	require.ErrorIs(t, st.DeleteContact(ctx, gone.ID, u.ID), storage.ErrNotFound)
}

func testCrossTenant(t *testing.T, st storage.Storage) {
	ctx := context.Background()
	a := mustUser(t, st, "a@example.com")
	b := mustUser(t, st, "b@example.com")
	bc := mustContact(t, st, b.ID, "Secret", "555-0000")

	listA, err := st.ListContacts(ctx, a.ID)
	require.NoError(t, err)
	require.Empty(t, listA)

	_, err = st.UpdateContact(ctx, bc.ID, a.ID, models.ContactPatch{Name: strPtr("pwned")})
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.ErrorIs(t, st.DeleteContact(ctx, bc.ID, a.ID), storage.ErrNotFound)

	listB, err := st.ListContacts(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, listB, 1)
	require.Equal(t, "Secret", listB[0].Name)
}

func testDeleteUserCascade(t *testing.T, st storage.Storage) {
	ctx := context.Background()
	u := mustUser(t, st, "cascade@example.com")
	c := mustContact(t, st, u.ID, "X", "1")
	other := mustUser(t, st, "other@example.com")
	oc := mustContact(t, st, other.ID, "Y", "2")

	require.NoError(t, st.DeleteUser(ctx, u.ID))

	_, err := st.UserByEmail(ctx, "cascade@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	list, err := st.ListContacts(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, list)

	_, err = st.UpdateContact(ctx, c.ID, u.ID, models.ContactPatch{Name: strPtr("z")})
	require.ErrorIs(t, err, storage.ErrNotFound)

	otherList, err := st.ListContacts(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, otherList, 1)
	require.Equal(t, oc.ID, otherList[0].ID)
}

// testConcurrentUpdates - параллельные патчи разных полей одной записи не теряют
// друг друга: каждое UPDATE атомарно, последнее значение каждого поля - одно из записанных.
func testConcurrentUpdates(t *testing.T, st storage.Storage) {
	ctx := context.Background()
	u := mustUser(t, st, "race@example.com")
	c := mustContact(t, st, u.ID, "n0", "p0")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)

	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := st.UpdateContact(ctx, c.ID, u.ID, models.ContactPatch{Name: strPtr(fmt.Sprintf("n%d", i+1))})
			errs <- err
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := st.UpdateContact(ctx, c.ID, u.ID, models.ContactPatch{Phone: strPtr(fmt.Sprintf("p%d", i+1))})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	list, err := st.ListContacts(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotEqual(t, "n0", list[0].Name)
	require.NotEqual(t, "p0", list[0].Phone)
}
