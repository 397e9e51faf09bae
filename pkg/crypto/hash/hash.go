package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"golang.org/x/crypto/ripemd160"
)

// Hash algorithm IDs (RFC 9580 / IANA OpenPGP registry)
const (
	MD5       = 1
	SHA1      = 2
	RIPEMD160 = 3
	SHA256    = 8
	SHA384    = 9
	SHA512    = 10
	SHA224    = 11
)

// New returns a constructor for the hash with the given OpenPGP id.
func New(id byte) (func() hash.Hash, error) {
	switch id {
	case MD5:
		return md5.New, nil
	case SHA1:
		return sha1.New, nil
	case RIPEMD160:
		return ripemd160.New, nil
	case SHA256:
		return sha256.New, nil
	case SHA384:
		return sha512.New384, nil
	case SHA512:
		return sha512.New, nil
	case SHA224:
		return sha256.New224, nil
	default:
		return nil, fmt.Errorf("unsupported hash id: %d", id)
	}
}

func Size(id byte) (int, error) {
	f, err := New(id)
	if err != nil {
		return 0, err
	}
	return f().Size(), nil
}

func Digest(id byte, data []byte) ([]byte, error) {
	f, err := New(id)
	if err != nil {
		return nil, err
	}
	h := f()
	h.Write(data)
	return h.Sum(nil), nil
}

func Name(id byte) string {
	switch id {
	case MD5:
		return "md5"
	case SHA1:
		return "sha1"
	case RIPEMD160:
		return "ripemd160"
	case SHA256:
		return "sha256"
	case SHA384:
		return "sha384"
	case SHA512:
		return "sha512"
	case SHA224:
		return "sha224"
	}
	return fmt.Sprintf("hash-%d", id)
}
