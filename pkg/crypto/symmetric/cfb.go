package symmetric

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"fmt"

	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/cast5"
)

// Symmetric algorithm IDs (RFC 9580 / IANA OpenPGP registry)
const (
	SYM_3DES     = 2
	SYM_CAST5    = 3
	SYM_BLOWFISH = 4
	SYM_AES128   = 7
	SYM_AES192   = 8
	SYM_AES256   = 9
)

func KeySize(alg byte) (int, error) {
	switch alg {
	case SYM_3DES:
		return 24, nil
	case SYM_CAST5, SYM_BLOWFISH, SYM_AES128:
		return 16, nil
	case SYM_AES192:
		return 24, nil
	case SYM_AES256:
		return 32, nil
	default:
		return 0, fmt.Errorf("unsupported symmetric algorithm: %d", alg)
	}
}

func BlockSize(alg byte) (int, error) {
	switch alg {
	case SYM_3DES, SYM_CAST5, SYM_BLOWFISH:
		return 8, nil
	case SYM_AES128, SYM_AES192, SYM_AES256:
		return 16, nil
	default:
		return 0, fmt.Errorf("unsupported symmetric algorithm: %d", alg)
	}
}

func newBlock(alg byte, key []byte) (cipher.Block, error) {
	if want, err := KeySize(alg); err != nil {
		return nil, err
	} else if len(key) != want {
		return nil, fmt.Errorf("symmetric alg %d: key length %d (want %d)", alg, len(key), want)
	}
	switch alg {
	case SYM_3DES:
		return des.NewTripleDESCipher(key)
	case SYM_CAST5:
		return cast5.NewCipher(key)
	case SYM_BLOWFISH:
		return blowfish.NewCipher(key)
	default:
		return aes.NewCipher(key)
	}
}

// DecryptCFB decrypts ct with the cipher identified by alg in CFB mode.
func DecryptCFB(alg byte, key, iv, ct []byte) ([]byte, error) {
	block, err := newBlock(alg, key)
	if err != nil {
		return nil, err
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("symmetric alg %d: iv length %d (want %d)", alg, len(iv), block.BlockSize())
	}
	pt := make([]byte, len(ct))
	cipher.NewCFBDecrypter(block, iv).XORKeyStream(pt, ct)
	return pt, nil
}

// EncryptCFB is the inverse of DecryptCFB; used when protecting key material.
func EncryptCFB(alg byte, key, iv, pt []byte) ([]byte, error) {
	block, err := newBlock(alg, key)
	if err != nil {
		return nil, err
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("symmetric alg %d: iv length %d (want %d)", alg, len(iv), block.BlockSize())
	}
	ct := make([]byte, len(pt))
	cipher.NewCFBEncrypter(block, iv).XORKeyStream(ct, pt)
	return ct, nil
}
