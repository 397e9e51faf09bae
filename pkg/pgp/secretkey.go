package pgp

import (
	"crypto/subtle"
	"fmt"

	"example.com/pgpseckey/pkg/crypto/hash"
	"example.com/pgpseckey/pkg/crypto/symmetric"
	"example.com/pgpseckey/pkg/util/securemem"
)

// S2K usage octet of a secret-key packet.
type S2KUsage byte

const (
	UsageNone            S2KUsage = 0   // secret MPIs stored in the clear
	UsageEncryptedHashed S2KUsage = 254 // protected, SHA-1 integrity suffix
	UsageEncrypted       S2KUsage = 255 // protected, 2-octet checksum suffix
)

const (
	maxBlockSize = 16
	maxKeySize   = 32
	sha1Size     = 20
)

// SecretKey is a secret-key packet (Tag 5). A value is immutable once
// parsed: Decrypt returns a new value in the plain state and never
// mutates the receiver, so independent goroutines may share a parsed
// packet read-only. Exactly one of the encrypted payload and the
// secret MPI list is authoritative at any time.
type SecretKey struct {
	PublicKey

	Usage  S2KUsage
	Cipher byte
	S2K    *S2K
	IV     []byte

	encrypted []byte
	secret    []MPI

	// WasDecrypted is monotonic: set by Decrypt, never cleared.
	WasDecrypted bool
}

func secretMPIIdentifiers(alg byte) []string {
	switch {
	case RSAAlgorithm(alg):
		return []string{"D", "P", "Q", "U"}
	case alg == PKALG_DSA, alg == PKALG_ELGAMAL:
		return []string{"X"}
	}
	// unknown algorithms carry opaque secret material; the RSA engine
	// rejects them later, this is not a parse-time failure
	return nil
}

// ParseSecretKey decodes a secret-key packet body (public fields
// included). Keys whose usage octet is neither 0, 254 nor 255 take the
// legacy path: the octet itself is the cipher id and a Simple/MD5 S2K
// is synthesized.
func ParseSecretKey(body []byte) (*SecretKey, error) {
	pk, off, err := ParsePublicKey(body)
	if err != nil {
		return nil, err
	}
	sk := &SecretKey{PublicKey: pk}
	if off >= len(body) {
		return nil, fmt.Errorf("s2k usage octet: %w", ErrTruncated)
	}
	usage := body[off]
	off++

	switch S2KUsage(usage) {
	case UsageNone:
		sk.Usage = UsageNone
		mpis, _, err := parseSecretMaterial(pk.Algorithm, UsageNone, body[off:])
		if err != nil {
			return nil, err
		}
		sk.secret = mpis
		return sk, nil
	case UsageEncryptedHashed, UsageEncrypted:
		sk.Usage = S2KUsage(usage)
		if off >= len(body) {
			return nil, fmt.Errorf("cipher octet: %w", ErrTruncated)
		}
		sk.Cipher = body[off]
		off++
		s2k, n, err := ParseS2K(body, off)
		if err != nil {
			return nil, err
		}
		sk.S2K = &s2k
		off += n
	default:
		// legacy v3 form: the usage octet is the cipher id itself
		sk.Usage = UsageEncrypted
		sk.Cipher = usage
		sk.S2K = &S2K{Specifier: S2KSimple, HashID: hash.MD5, Synthetic: true}
	}

	if sk.S2K.Specifier == S2KGnuDummy {
		// the secret is held externally; no IV, empty payload
		sk.encrypted = append([]byte(nil), body[off:]...)
		return sk, nil
	}
	bs, err := symmetric.BlockSize(sk.Cipher)
	if err != nil {
		return nil, fmt.Errorf("cipher %d: %w", sk.Cipher, ErrUnsupportedAlgorithm)
	}
	if bs > maxBlockSize {
		return nil, fmt.Errorf("cipher %d block size %d: %w", sk.Cipher, bs, ErrPacket)
	}
	if off+bs > len(body) {
		return nil, fmt.Errorf("iv: %w", ErrTruncated)
	}
	sk.IV = append([]byte(nil), body[off:off+bs]...)
	off += bs
	sk.encrypted = append([]byte(nil), body[off:]...)
	return sk, nil
}

// parseSecretMaterial parses the unencrypted form of the secret part:
// MPIs followed by an integrity suffix (SHA-1 digest for usage 254, a
// 2-octet big-endian byte-sum checksum otherwise). The full buffer is
// consumed either way; an integrity mismatch is reported as
// ErrPassphraseInvalid, never silently dropped.
func parseSecretMaterial(alg byte, usage S2KUsage, buf []byte) ([]MPI, int, error) {
	suffix := 2
	if usage == UsageEncryptedHashed {
		suffix = sha1Size
	}
	if len(buf) < suffix {
		return nil, 0, fmt.Errorf("secret material suffix: %w", ErrTruncated)
	}
	payload, tail := buf[:len(buf)-suffix], buf[len(buf)-suffix:]

	if usage == UsageEncryptedHashed {
		want, err := hash.Digest(hash.SHA1, payload)
		if err != nil {
			return nil, 0, err
		}
		if subtle.ConstantTimeCompare(want, tail) != 1 {
			return nil, len(buf), fmt.Errorf("secret material hash mismatch: %w", ErrPassphraseInvalid)
		}
	} else {
		var sum uint16
		for _, b := range payload {
			sum += uint16(b)
		}
		if tail[0] != byte(sum>>8) || tail[1] != byte(sum) {
			return nil, len(buf), fmt.Errorf("secret material checksum mismatch: %w", ErrPassphraseInvalid)
		}
	}

	var mpis []MPI
	off := 0
	for _, id := range secretMPIIdentifiers(alg) {
		m, n, err := ReadMPI(payload, off, id)
		if err != nil {
			return nil, 0, err
		}
		mpis = append(mpis, m)
		off += n
	}
	return mpis, len(buf), nil
}

// IsEncrypted reports whether the secret MPIs are still protected.
func (sk *SecretKey) IsEncrypted() bool { return sk.secret == nil }

// Decrypt derives the session key from the passphrase, decrypts the
// protected block and returns a new packet value in the plain state.
// The receiver is never modified; calling Decrypt on an already plain
// packet returns the receiver unchanged. A gnu-dummy key, or a packet
// without an IV, has nothing to decrypt.
func (sk *SecretKey) Decrypt(passphrase []byte) (*SecretKey, error) {
	if !sk.IsEncrypted() {
		return sk, nil
	}
	if sk.S2K == nil || sk.S2K.Specifier == S2KGnuDummy || len(sk.IV) == 0 {
		return nil, fmt.Errorf("decrypt: %w", ErrNoSecretMaterial)
	}
	keyLen, err := symmetric.KeySize(sk.Cipher)
	if err != nil {
		return nil, fmt.Errorf("cipher %d: %w", sk.Cipher, ErrUnsupportedAlgorithm)
	}
	if keyLen > maxKeySize {
		return nil, fmt.Errorf("cipher %d key size %d: %w", sk.Cipher, keyLen, ErrPacket)
	}
	session, err := sk.S2K.DeriveKey(passphrase, keyLen)
	if err != nil {
		return nil, err
	}
	defer session.Destroy()

	plain, err := symmetric.DecryptCFB(sk.Cipher, session.Bytes(), sk.IV, sk.encrypted)
	if err != nil {
		return nil, fmt.Errorf("pgp: %w", err)
	}
	defer securemem.Wipe(plain)

	mpis, _, err := parseSecretMaterial(sk.Algorithm, sk.Usage, plain)
	if err != nil {
		return nil, err
	}
	return &SecretKey{
		PublicKey:    sk.PublicKey,
		Usage:        sk.Usage,
		Cipher:       sk.Cipher,
		S2K:          sk.S2K,
		IV:           append([]byte(nil), sk.IV...),
		secret:       mpis,
		WasDecrypted: true,
	}, nil
}

// SecretMPI returns the secret MPI with the given identifier; the
// packet must be in the plain state.
func (sk *SecretKey) SecretMPI(id string) (MPI, error) {
	if sk.secret == nil {
		return MPI{}, fmt.Errorf("secret MPI %q of encrypted key: %w", id, ErrNoSecretMaterial)
	}
	for _, m := range sk.secret {
		if m.Identifier == id {
			return m, nil
		}
	}
	return MPI{}, fmt.Errorf("secret MPI %q: %w", id, ErrNoSecretMaterial)
}

// SecretMPIs returns a copy of the secret MPI list, in wire order.
func (sk *SecretKey) SecretMPIs() []MPI {
	return append([]MPI(nil), sk.secret...)
}

// Export serializes the packet body back to wire form. A packet that
// was decrypted but whose usage octet still demands encryption cannot
// be exported; callers must re-protect it first.
func (sk *SecretKey) Export() ([]byte, error) {
	out := sk.PublicKey.Encode()
	switch {
	case sk.Usage == UsageNone:
		out = append(out, byte(UsageNone))
		var block []byte
		for _, m := range sk.secret {
			block = append(block, m.Encode()...)
		}
		var sum uint16
		for _, b := range block {
			sum += uint16(b)
		}
		out = append(out, block...)
		out = append(out, byte(sum>>8), byte(sum))
	case sk.secret != nil:
		return nil, fmt.Errorf("export of decrypted key without re-encryption: %w", ErrUnsupportedState)
	case sk.S2K != nil && sk.S2K.Synthetic:
		// legacy form: the cipher id doubles as the usage octet
		out = append(out, sk.Cipher)
		out = append(out, sk.IV...)
		out = append(out, sk.encrypted...)
	default:
		out = append(out, byte(sk.Usage), sk.Cipher)
		out = append(out, sk.S2K.Encode()...)
		out = append(out, sk.IV...)
		out = append(out, sk.encrypted...)
	}
	return out, nil
}

// Wipe zeroes the packet's secret buffers. The owner calls it once the
// key is no longer needed; the packet must not be used afterwards.
func (sk *SecretKey) Wipe() {
	for _, m := range sk.secret {
		securemem.WipeBig(m.Value)
	}
	sk.secret = nil
	securemem.Wipe(sk.encrypted)
	sk.encrypted = nil
}
