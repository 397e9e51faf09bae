package pgp

import (
	"fmt"

	"example.com/pgpseckey/pkg/crypto/hash"
	"example.com/pgpseckey/pkg/util/securemem"
)

// S2K specifiers (RFC 9580 §3.7.1 plus the GnuPG dummy extension).
type S2KSpecifier byte

const (
	S2KSimple         S2KSpecifier = 0
	S2KSalted         S2KSpecifier = 1
	S2KIteratedSalted S2KSpecifier = 3
	S2KGnuDummy       S2KSpecifier = 101
)

const s2kSaltSize = 8

// S2K describes how a passphrase turns into a symmetric session key.
// Salt is meaningful only for the salted specifiers and CountByte only
// for S2KIteratedSalted. A descriptor is immutable once parsed or
// constructed.
type S2K struct {
	Specifier S2KSpecifier
	HashID    byte
	Salt      [s2kSaltSize]byte
	CountByte byte
	GnuExt    byte

	// Synthetic marks the Simple/MD5 descriptor fabricated for legacy
	// secret keys whose usage octet is a bare cipher id; it has no wire
	// representation of its own.
	Synthetic bool
}

// Count decodes the one-octet exponential iteration count.
func (s S2K) Count() int {
	return (16 + int(s.CountByte&15)) << (uint(s.CountByte>>4) + 6)
}

func (s S2K) Salted() bool {
	return s.Specifier == S2KSalted || s.Specifier == S2KIteratedSalted
}

// ParseS2K decodes the S2K structure starting at buf[off] and returns
// it together with the number of bytes consumed.
func ParseS2K(buf []byte, off int) (S2K, int, error) {
	if off+2 > len(buf) {
		return S2K{}, 0, fmt.Errorf("s2k header: %w", ErrTruncated)
	}
	s := S2K{Specifier: S2KSpecifier(buf[off]), HashID: buf[off+1]}
	n := 2
	switch s.Specifier {
	case S2KSimple:
	case S2KSalted, S2KIteratedSalted:
		if off+n+s2kSaltSize > len(buf) {
			return S2K{}, 0, fmt.Errorf("s2k salt: %w", ErrTruncated)
		}
		copy(s.Salt[:], buf[off+n:off+n+s2kSaltSize])
		n += s2kSaltSize
		if s.Specifier == S2KIteratedSalted {
			if off+n+1 > len(buf) {
				return S2K{}, 0, fmt.Errorf("s2k count: %w", ErrTruncated)
			}
			s.CountByte = buf[off+n]
			n++
		}
	case S2KGnuDummy:
		// GnuPG extension: "GNU" marker then an extension octet; the
		// secret lives off-card, no key material follows.
		if off+n+4 > len(buf) {
			return S2K{}, 0, fmt.Errorf("s2k gnu extension: %w", ErrTruncated)
		}
		if string(buf[off+n:off+n+3]) != "GNU" {
			return S2K{}, 0, fmt.Errorf("s2k specifier 101 without GNU marker: %w", ErrPacket)
		}
		s.GnuExt = buf[off+n+3]
		n += 4
	default:
		return S2K{}, 0, fmt.Errorf("s2k specifier %d: %w", s.Specifier, ErrPacket)
	}
	return s, n, nil
}

// Encode serializes the descriptor to its wire form.
func (s S2K) Encode() []byte {
	out := []byte{byte(s.Specifier), s.HashID}
	switch s.Specifier {
	case S2KSalted:
		out = append(out, s.Salt[:]...)
	case S2KIteratedSalted:
		out = append(out, s.Salt[:]...)
		out = append(out, s.CountByte)
	case S2KGnuDummy:
		out = append(out, 'G', 'N', 'U', s.GnuExt)
	}
	return out
}

// DeriveKey turns a passphrase into a session key of keyLen bytes,
// held in locked memory. Each digest pass hashes the input prefixed
// with one more zero octet than the pass before, and the digests are
// concatenated until keyLen bytes are available. Deterministic: the
// same inputs always yield the same key.
func (s S2K) DeriveKey(passphrase []byte, keyLen int) (*securemem.Secret, error) {
	if s.Specifier == S2KGnuDummy {
		return nil, fmt.Errorf("s2k gnu-dummy holds no key material: %w", ErrNoSecretMaterial)
	}
	newHash, err := hash.New(s.HashID)
	if err != nil {
		return nil, fmt.Errorf("s2k: %w", err)
	}

	var in []byte
	if s.Salted() {
		in = append(in, s.Salt[:]...)
	}
	in = append(in, passphrase...)
	defer securemem.Wipe(in)

	total := len(in)
	if s.Specifier == S2KIteratedSalted && s.Count() > total {
		total = s.Count()
	}

	var out []byte
	zero := []byte{0}
	for pass := 0; len(out) < keyLen; pass++ {
		h := newHash()
		for i := 0; i < pass; i++ {
			h.Write(zero)
		}
		// in, repeated to exactly total bytes, truncating the final
		// repetition
		for written := 0; written < total; {
			chunk := in
			if total-written < len(chunk) {
				chunk = chunk[:total-written]
			}
			h.Write(chunk)
			written += len(chunk)
		}
		out = h.Sum(out)
	}
	key := securemem.New(out[:keyLen:keyLen])
	securemem.Wipe(out)
	return key, nil
}
