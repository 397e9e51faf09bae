package pgp

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Public-key algorithm IDs (RFC 9580 / IANA OpenPGP registry)
const (
	PKALG_RSA              = 1
	PKALG_RSA_ENCRYPT_ONLY = 2
	PKALG_RSA_SIGN_ONLY    = 3
	PKALG_ELGAMAL          = 16
	PKALG_DSA              = 17
	PKALG_ECDH             = 18
	PKALG_X25519           = 25
	PKALG_X448             = 26
)

// RSAAlgorithm reports whether alg is one of the RSA tags.
func RSAAlgorithm(alg byte) bool {
	return alg == PKALG_RSA || alg == PKALG_RSA_ENCRYPT_ONLY || alg == PKALG_RSA_SIGN_ONLY
}

// PublicKey holds the fields shared by public-key and secret-key
// packets of versions 3 and 4: header fields plus the algorithm's
// public MPIs.
type PublicKey struct {
	Version   byte
	Created   time.Time
	DaysValid uint16 // v3 only
	Algorithm byte
	MPIs      []MPI
}

func publicMPIIdentifiers(alg byte) []string {
	switch {
	case RSAAlgorithm(alg):
		return []string{"N", "E"}
	case alg == PKALG_DSA:
		return []string{"P", "Q", "G", "Y"}
	case alg == PKALG_ELGAMAL:
		return []string{"P", "G", "Y"}
	}
	return nil
}

// ParsePublicKey decodes the shared public-key fields from the start
// of a key packet body and returns the number of bytes consumed.
func ParsePublicKey(body []byte) (PublicKey, int, error) {
	var pk PublicKey
	if len(body) < 6 {
		return pk, 0, fmt.Errorf("public key header: %w", ErrTruncated)
	}
	pk.Version = body[0]
	if pk.Version != 3 && pk.Version != 4 {
		return pk, 0, fmt.Errorf("public key version %d: %w", pk.Version, ErrUnsupportedVersion)
	}
	pk.Created = time.Unix(int64(binary.BigEndian.Uint32(body[1:5])), 0).UTC()
	off := 5
	if pk.Version == 3 {
		if len(body) < 8 {
			return pk, 0, fmt.Errorf("v3 validity: %w", ErrTruncated)
		}
		pk.DaysValid = binary.BigEndian.Uint16(body[5:7])
		off = 7
	}
	pk.Algorithm = body[off]
	off++
	ids := publicMPIIdentifiers(pk.Algorithm)
	if ids == nil {
		return pk, 0, fmt.Errorf("public key algorithm %d: %w", pk.Algorithm, ErrUnsupportedAlgorithm)
	}
	for _, id := range ids {
		m, n, err := ReadMPI(body, off, id)
		if err != nil {
			return pk, 0, err
		}
		pk.MPIs = append(pk.MPIs, m)
		off += n
	}
	return pk, off, nil
}

// Encode serializes the shared public-key fields.
func (pk PublicKey) Encode() []byte {
	out := []byte{pk.Version}
	var t [4]byte
	binary.BigEndian.PutUint32(t[:], uint32(pk.Created.Unix()))
	out = append(out, t[:]...)
	if pk.Version == 3 {
		out = append(out, byte(pk.DaysValid>>8), byte(pk.DaysValid))
	}
	out = append(out, pk.Algorithm)
	for _, m := range pk.MPIs {
		out = append(out, m.Encode()...)
	}
	return out
}

// MPI returns the public MPI with the given identifier.
func (pk PublicKey) MPI(id string) (MPI, bool) {
	for _, m := range pk.MPIs {
		if m.Identifier == id {
			return m, true
		}
	}
	return MPI{}, false
}
