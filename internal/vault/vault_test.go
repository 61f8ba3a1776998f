package vault

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/dmitrijs2005/farmkeeper/internal/common"
	"github.com/stretchr/testify/require"
)

func TestVault_RoundTrip(t *testing.T) {
	v, err := New("master-secret")
	require.NoError(t, err)

	tests := []struct {
		name   string
		bundle Bundle
	}{
		{name: "full bundle", bundle: Bundle{Password: "p@ss", TwoFA: "ABCD1234", Note: "shared inbox"}},
		{name: "empty bundle", bundle: Bundle{}},
		{name: "unicode note", bundle: Bundle{Password: "x", Note: "ghi chú tiếng Việt"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ct, err := v.Encrypt(tc.bundle)
			require.NoError(t, err)

			got, err := v.Decrypt(ct)
			require.NoError(t, err)
			require.Equal(t, tc.bundle, got)
		})
	}
}

func TestVault_DerivationIsReproducible(t *testing.T) {
	// A vault built later from the same secret must read earlier ciphertexts,
	// as happens across process restarts.
	v1, err := New("master-secret")
	require.NoError(t, err)
	v2, err := New("master-secret")
	require.NoError(t, err)

	ct, err := v1.Encrypt(Bundle{Password: "secret"})
	require.NoError(t, err)

	got, err := v2.Decrypt(ct)
	require.NoError(t, err)
	require.Equal(t, "secret", got.Password)
}

func TestVault_WrongKeyFails(t *testing.T) {
	v1, err := New("secret-one")
	require.NoError(t, err)
	v2, err := New("secret-two")
	require.NoError(t, err)

	ct, err := v1.Encrypt(Bundle{Password: "secret"})
	require.NoError(t, err)

	_, err = v2.Decrypt(ct)
	require.ErrorIs(t, err, common.ErrDecryptFailed)
}

func TestVault_CorruptedCiphertextFails(t *testing.T) {
	v, err := New("master-secret")
	require.NoError(t, err)

	ct, err := v.Encrypt(Bundle{Password: "secret"})
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(ct)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff

	_, err = v.Decrypt(base64.StdEncoding.EncodeToString(raw))
	if !errors.Is(err, common.ErrDecryptFailed) {
		t.Fatalf("expected ErrDecryptFailed, got %v", err)
	}
}

func TestVault_GarbageInputFails(t *testing.T) {
	v, err := New("master-secret")
	require.NoError(t, err)

	for _, ct := range []string{"", "not base64 at all!!!", base64.StdEncoding.EncodeToString([]byte("short"))} {
		_, err := v.Decrypt(ct)
		require.ErrorIs(t, err, common.ErrDecryptFailed)
	}
}
