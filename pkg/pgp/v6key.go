package pgp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cloudflare/circl/dh/x25519"
	"github.com/cloudflare/circl/dh/x448"
)

// v6 (RFC 9580) keys for X25519/X448 store native byte strings instead
// of MPIs and bypass the S2K machinery here (only usage octet 0 is
// built or accepted).

// V6Key is a parsed v6 public- or secret-key packet body.
type V6Key struct {
	Version    byte
	Created    time.Time
	Algorithm  byte
	ECCPublic  []byte
	ECCPrivate []byte // nil for a public-key packet
}

func v6MaterialLen(alg byte) (int, error) {
	switch alg {
	case PKALG_X25519:
		return 32, nil
	case PKALG_X448:
		return 56, nil
	}
	return 0, fmt.Errorf("algorithm %d for v6 native key: %w", alg, ErrUnsupportedAlgorithm)
}

// BuildPublicKeyV6 builds a v6 Public-Key (Tag 6) packet:
// version(6) || created(4) || alg(1) || pubMatLen(4) || pubMat
func BuildPublicKeyV6(alg byte, pub []byte) ([]byte, error) {
	need, err := v6MaterialLen(alg)
	if err != nil {
		return nil, err
	}
	if len(pub) != need {
		return nil, fmt.Errorf("v6 public material %d bytes (want %d): %w", len(pub), need, ErrPacket)
	}
	b := make([]byte, 0, 1+4+1+4+need)
	b = append(b, 6)
	var t [4]byte
	binary.BigEndian.PutUint32(t[:], uint32(time.Now().Unix()))
	b = append(b, t[:]...)
	b = append(b, alg)
	binary.BigEndian.PutUint32(t[:], uint32(need))
	b = append(b, t[:]...)
	b = append(b, pub...)
	return Packet(6, b), nil
}

// BuildSecretKeyV6 builds a v6 Secret-Key (Tag 5) packet with S2K
// usage 0: the public fields, a zero usage octet, then the secret
// material in native bytes.
func BuildSecretKeyV6(alg byte, pub, priv []byte) ([]byte, error) {
	pubPkt, err := BuildPublicKeyV6(alg, pub)
	if err != nil {
		return nil, err
	}
	_, pubBody, _, err := ReadPacket(pubPkt)
	if err != nil {
		return nil, err
	}
	need, _ := v6MaterialLen(alg)
	if len(priv) != need {
		return nil, fmt.Errorf("v6 secret material %d bytes (want %d): %w", len(priv), need, ErrPacket)
	}
	body := make([]byte, 0, len(pubBody)+1+need)
	body = append(body, pubBody...)
	body = append(body, byte(UsageNone))
	body = append(body, priv...)
	return Packet(5, body), nil
}

func parseV6Body(body []byte) (V6Key, int, error) {
	var k V6Key
	if len(body) < 10 {
		return k, 0, fmt.Errorf("v6 key header: %w", ErrTruncated)
	}
	k.Version = body[0]
	if k.Version != 6 {
		return k, 0, fmt.Errorf("key version %d (want 6): %w", k.Version, ErrUnsupportedVersion)
	}
	k.Created = time.Unix(int64(binary.BigEndian.Uint32(body[1:5])), 0).UTC()
	k.Algorithm = body[5]
	matLen := int(binary.BigEndian.Uint32(body[6:10]))
	need, err := v6MaterialLen(k.Algorithm)
	if err != nil {
		return k, 0, err
	}
	if matLen != need || len(body) < 10+matLen {
		return k, 0, fmt.Errorf("v6 public material: %w", ErrTruncated)
	}
	k.ECCPublic = append([]byte(nil), body[10:10+matLen]...)
	return k, 10 + matLen, nil
}

// ParsePublicKeyV6 parses a v6 Public-Key packet.
func ParsePublicKeyV6(pkt []byte) (*V6Key, error) {
	tag, body, rest, err := ReadPacket(pkt)
	if err != nil {
		return nil, err
	}
	if tag != 6 || len(rest) != 0 {
		return nil, fmt.Errorf("v6 public key framing: %w", ErrPacket)
	}
	k, n, err := parseV6Body(body)
	if err != nil {
		return nil, err
	}
	if n != len(body) {
		return nil, fmt.Errorf("v6 public key trailing data: %w", ErrPacket)
	}
	return &k, nil
}

// ParseSecretKeyV6 parses a v6 Secret-Key packet with usage octet 0
// and validates the secret scalar by re-deriving the public point.
func ParseSecretKeyV6(pkt []byte) (*V6Key, error) {
	tag, body, rest, err := ReadPacket(pkt)
	if err != nil {
		return nil, err
	}
	if tag != 5 || len(rest) != 0 {
		return nil, fmt.Errorf("v6 secret key framing: %w", ErrPacket)
	}
	k, n, err := parseV6Body(body)
	if err != nil {
		return nil, err
	}
	body = body[n:]
	if len(body) < 1 {
		return nil, fmt.Errorf("v6 s2k usage octet: %w", ErrTruncated)
	}
	if S2KUsage(body[0]) != UsageNone {
		return nil, fmt.Errorf("v6 s2k usage %d: %w", body[0], ErrUnsupportedState)
	}
	need, _ := v6MaterialLen(k.Algorithm)
	if len(body) != 1+need {
		return nil, fmt.Errorf("v6 secret material: %w", ErrTruncated)
	}
	k.ECCPrivate = append([]byte(nil), body[1:]...)
	if err := validateV6Secret(&k); err != nil {
		return nil, err
	}
	return &k, nil
}

// validateV6Secret re-derives the public point from the secret scalar
// and compares; a mismatch means corrupt or foreign secret material.
func validateV6Secret(k *V6Key) error {
	switch k.Algorithm {
	case PKALG_X25519:
		var sk, pk x25519.Key
		copy(sk[:], k.ECCPrivate)
		x25519.KeyGen(&pk, &sk)
		if !bytes.Equal(pk[:], k.ECCPublic) {
			return fmt.Errorf("v6 secret does not match public point: %w", ErrNoSecretMaterial)
		}
	case PKALG_X448:
		var sk, pk x448.Key
		copy(sk[:], k.ECCPrivate)
		x448.KeyGen(&pk, &sk)
		if !bytes.Equal(pk[:], k.ECCPublic) {
			return fmt.Errorf("v6 secret does not match public point: %w", ErrNoSecretMaterial)
		}
	}
	return nil
}
