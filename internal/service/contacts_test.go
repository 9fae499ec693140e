package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-contacts-service/internal/models"
	"github.com/pribylovaa/go-contacts-service/internal/storage"
	"github.com/pribylovaa/go-contacts-service/mocks"
)

func TestListContacts_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	want := []models.Contact{{ID: 1, OwnerID: 2, Name: "Alice", Phone: "555-0001"}}
	st.EXPECT().ListContacts(gomock.Any(), int64(2)).Return(want, nil)

	got, err := svc.ListContacts(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestCreateContact_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().SaveContact(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *models.Contact) error {
		require.Equal(t, int64(2), c.OwnerID)
		require.Equal(t, "Alice", c.Name)
		require.Equal(t, "555-0001", c.Phone)
		c.ID = 11
		return nil
	})

	c, err := svc.CreateContact(context.Background(), 2, "Alice", "555-0001")
	require.NoError(t, err)
	require.Equal(t, int64(11), c.ID)
}

func TestCreateContact_EmptyFields(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().SaveContact(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *models.Contact) error {
		require.Empty(t, c.Name)
		require.Empty(t, c.Phone)
		c.ID = 12
		return nil
	})

	c, err := svc.CreateContact(context.Background(), 2, "", "")
	require.NoError(t, err)
	require.Equal(t, int64(12), c.ID)
}

func TestUpdateContact_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	patch := models.ContactPatch{Name: strPtr("Bob")}
	st.EXPECT().UpdateContact(gomock.Any(), int64(11), int64(2), patch).
		Return(&models.Contact{ID: 11, OwnerID: 2, Name: "Bob", Phone: "555-0001"}, nil)

	c, err := svc.UpdateContact(context.Background(), 2, 11, patch)
	require.NoError(t, err)
	require.Equal(t, "Bob", c.Name)
	require.Equal(t, "555-0001", c.Phone)
}

func TestUpdateContact_NotFound(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UpdateContact(gomock.Any(), int64(11), int64(2), gomock.Any()).Return(nil, storage.ErrNotFound)

	_, err := svc.UpdateContact(context.Background(), 2, 11, models.ContactPatch{Phone: strPtr("1")})
	require.ErrorIs(t, err, ErrContactNotFound)
}

func TestUpdateContact_EmptyStringOverwrites(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	patch := models.ContactPatch{Name: strPtr("")}
	st.EXPECT().UpdateContact(gomock.Any(), int64(11), int64(2), patch).
		Return(&models.Contact{ID: 11, OwnerID: 2, Name: "", Phone: "555-0001"}, nil)

	c, err := svc.UpdateContact(context.Background(), 2, 11, patch)
	require.NoError(t, err)
	require.Empty(t, c.Name)
	require.Equal(t, "555-0001", c.Phone)
}

func TestDeleteContact(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().DeleteContact(gomock.Any(), int64(11), int64(2)).Return(nil)
	require.NoError(t, svc.DeleteContact(context.Background(), 2, 11))

	st.EXPECT().DeleteContact(gomock.Any(), int64(12), int64(2)).Return(storage.ErrNotFound)
	require.ErrorIs(t, svc.DeleteContact(context.Background(), 2, 12), ErrContactNotFound)

	dbErr := errors.New("db down")
	st.EXPECT().DeleteContact(gomock.Any(), int64(13), int64(2)).Return(dbErr)
	err := svc.DeleteContact(context.Background(), 2, 13)
	require.ErrorIs(t, err, dbErr)
	require.NotErrorIs(t, err, ErrContactNotFound)
}

func TestDeleteUser_EvictsCache(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	c := mocks.NewMockUserCache(ctrl)
	svc.SetUserCache(c, time.Minute)

	gomock.InOrder(
		st.EXPECT().UserByID(gomock.Any(), int64(4)).Return(&models.User{ID: 4, Email: "bye@example.com"}, nil),
		st.EXPECT().DeleteUser(gomock.Any(), int64(4)).Return(nil),
		c.EXPECT().Delete(gomock.Any(), "bye@example.com").Return(nil),
	)

	require.NoError(t, svc.DeleteUser(context.Background(), 4))
}

func TestDeleteUser_Unknown(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByID(gomock.Any(), int64(4)).Return(nil, storage.ErrNotFound)

	require.ErrorIs(t, svc.DeleteUser(context.Background(), 4), ErrUnknownUser)
}
