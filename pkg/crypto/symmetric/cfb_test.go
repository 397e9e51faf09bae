package symmetric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizes(t *testing.T) {
	cases := []struct {
		alg        byte
		key, block int
	}{
		{SYM_3DES, 24, 8},
		{SYM_CAST5, 16, 8},
		{SYM_BLOWFISH, 16, 8},
		{SYM_AES128, 16, 16},
		{SYM_AES192, 24, 16},
		{SYM_AES256, 32, 16},
	}
	for _, c := range cases {
		k, err := KeySize(c.alg)
		require.NoError(t, err)
		assert.Equal(t, c.key, k, "alg %d", c.alg)
		b, err := BlockSize(c.alg)
		require.NoError(t, err)
		assert.Equal(t, c.block, b, "alg %d", c.alg)
	}

	_, err := KeySize(1) // IDEA, unsupported
	assert.Error(t, err)
	_, err = BlockSize(99)
	assert.Error(t, err)
}

func TestCFBRoundTrip(t *testing.T) {
	pt := []byte("the quick brown fox jumps over the lazy dog, twice over")
	for _, alg := range []byte{SYM_3DES, SYM_CAST5, SYM_BLOWFISH, SYM_AES128, SYM_AES192, SYM_AES256} {
		keyLen, _ := KeySize(alg)
		blockLen, _ := BlockSize(alg)
		key := make([]byte, keyLen)
		iv := make([]byte, blockLen)
		for i := range key {
			key[i] = byte(i * 7)
		}
		for i := range iv {
			iv[i] = byte(i + 1)
		}
		ct, err := EncryptCFB(alg, key, iv, pt)
		require.NoError(t, err, "alg %d", alg)
		assert.Len(t, ct, len(pt))
		assert.NotEqual(t, pt, ct)

		back, err := DecryptCFB(alg, key, iv, ct)
		require.NoError(t, err, "alg %d", alg)
		assert.Equal(t, pt, back, "alg %d", alg)
	}
}

func TestCFBBadParameters(t *testing.T) {
	_, err := DecryptCFB(SYM_AES128, make([]byte, 5), make([]byte, 16), []byte("x"))
	assert.Error(t, err)
	_, err = DecryptCFB(SYM_AES128, make([]byte, 16), make([]byte, 8), []byte("x"))
	assert.Error(t, err)
	_, err = EncryptCFB(0, make([]byte, 16), make([]byte, 16), []byte("x"))
	assert.Error(t, err)
}
