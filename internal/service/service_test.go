package service

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-contacts-service/internal/auth"
	"github.com/pribylovaa/go-contacts-service/internal/config"
	"github.com/pribylovaa/go-contacts-service/mocks"
)

func testCfg() config.AuthConfig {
	return config.AuthConfig{
		SecretKey:      "unit-secret",
		AccessTokenTTL: 30 * time.Minute,
		BcryptCost:     bcrypt.MinCost,
	}
}

func newSvc(t *testing.T, opts ...auth.TokenOption) (*Service, *mocks.MockStorage, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	svc := New(st, testCfg(), opts...)
	return svc, st, ctrl
}

func mustHashPW(t *testing.T, pw string) string {
	t.Helper()
	h, err := auth.NewPasswordHasher(bcrypt.MinCost).Hash(pw)
	require.NoError(t, err)
	return h
}

func strPtr(s string) *string { return &s }
