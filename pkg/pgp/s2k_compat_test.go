package pgp

import (
	"bytes"
	"testing"

	pms2k "github.com/ProtonMail/go-crypto/openpgp/s2k"
	"github.com/stretchr/testify/require"

	"example.com/pgpseckey/pkg/crypto/hash"
)

// Cross-check DeriveKey against the go-crypto S2K implementation over
// the serialized descriptor, for each real specifier.
func TestDeriveKeyMatchesGoCrypto(t *testing.T) {
	cases := []struct {
		name string
		s2k  S2K
	}{
		{"simple-sha256", S2K{Specifier: S2KSimple, HashID: hash.SHA256}},
		{"salted-sha1", S2K{Specifier: S2KSalted, HashID: hash.SHA1, Salt: s2kTestSalt}},
		{"iterated-sha256", S2K{Specifier: S2KIteratedSalted, HashID: hash.SHA256, Salt: s2kTestSalt, CountByte: 0x60}},
		{"iterated-small-count", S2K{Specifier: S2KIteratedSalted, HashID: hash.SHA1, Salt: s2kTestSalt, CountByte: 0x00}},
	}
	pass := []byte("cross check passphrase")
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := pms2k.Parse(bytes.NewReader(tc.s2k.Encode()))
			require.NoError(t, err)
			want := make([]byte, 24)
			f(want, pass)

			key, err := tc.s2k.DeriveKey(pass, 24)
			require.NoError(t, err)
			defer key.Destroy()
			require.Equal(t, want, key.Bytes())
		})
	}
}
