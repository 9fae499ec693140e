package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	tcs := []struct {
		name string
		in   string
		want string
	}{
		{"long_local", "alice@example.com", "al***@example.com"},
		{"short_local", "al@example.com", "***@example.com"},
		{"no_at", "not-an-email", "***"},
		{"empty_domain", "alice@", "***"},
		{"two_at", "a@b@c", "***"},
		{"empty", "", "***"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Email(tc.in))
		})
	}
}

func TestToken_KeepsOnlyScheme(t *testing.T) {
	tcs := []struct {
		name string
		in   string
		want string
	}{
		{"bearer", "Bearer eyJhbGciOiJIUzI1NiJ9.e30.sig", "Bearer [REDACTED_TOKEN]"},
		{"empty_bearer", "Bearer ", "Bearer [REDACTED_TOKEN]"},
		{"bare_token", "eyJhbGciOiJIUzI1NiJ9.e30.sig", "[REDACTED_TOKEN]"},
		{"absent", "", ""},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got := Token(tc.in)
			require.Equal(t, tc.want, got)
			require.NotContains(t, got, "eyJ")
		})
	}
}
