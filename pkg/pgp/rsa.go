package pgp

import (
	"fmt"
	"math/big"

	"example.com/pgpseckey/pkg/crypto/pubkey/rsaraw"
)

// The four raw RSA primitives, exposed at the packet level. Encrypt
// and verify-recover need only the public MPIs; decrypt and sign need
// a plain-state secret-key packet.

func (pk PublicKey) rsaPublic() (n, e *big.Int, err error) {
	if !RSAAlgorithm(pk.Algorithm) {
		return nil, nil, fmt.Errorf("algorithm %d: %w", pk.Algorithm, ErrUnsupportedAlgorithm)
	}
	nm, ok := pk.MPI("N")
	if !ok {
		return nil, nil, fmt.Errorf("public MPI N: %w", ErrPacket)
	}
	em, ok := pk.MPI("E")
	if !ok {
		return nil, nil, fmt.Errorf("public MPI E: %w", ErrPacket)
	}
	return nm.Value, em.Value, nil
}

// EncryptRaw computes message^e mod n at the modulus width.
func (pk PublicKey) EncryptRaw(message []byte) ([]byte, error) {
	n, e, err := pk.rsaPublic()
	if err != nil {
		return nil, err
	}
	return rsaraw.PublicEncrypt(pk.Algorithm, message, n, e)
}

// RecoverRaw computes signature^e mod n at the modulus width; the
// caller compares the result to the digest block it expects.
func (pk PublicKey) RecoverRaw(signature []byte) ([]byte, error) {
	n, e, err := pk.rsaPublic()
	if err != nil {
		return nil, err
	}
	return rsaraw.PublicDecrypt(pk.Algorithm, signature, n, e)
}

func (sk *SecretKey) rsaSecret() (d, wireP, wireQ *big.Int, err error) {
	dm, err := sk.SecretMPI("D")
	if err != nil {
		return nil, nil, nil, err
	}
	pm, err := sk.SecretMPI("P")
	if err != nil {
		return nil, nil, nil, err
	}
	qm, err := sk.SecretMPI("Q")
	if err != nil {
		return nil, nil, nil, err
	}
	return dm.Value, pm.Value, qm.Value, nil
}

// DecryptRaw computes ciphertext^d mod n via the CRT.
func (sk *SecretKey) DecryptRaw(ciphertext []byte) ([]byte, error) {
	n, e, err := sk.rsaPublic()
	if err != nil {
		return nil, err
	}
	d, wireP, wireQ, err := sk.rsaSecret()
	if err != nil {
		return nil, err
	}
	return rsaraw.PrivateDecrypt(sk.Algorithm, ciphertext, n, e, d, wireP, wireQ)
}

// SignRaw computes message^d mod n.
func (sk *SecretKey) SignRaw(message []byte) ([]byte, error) {
	n, e, err := sk.rsaPublic()
	if err != nil {
		return nil, err
	}
	d, wireP, wireQ, err := sk.rsaSecret()
	if err != nil {
		return nil, err
	}
	return rsaraw.PrivateEncrypt(sk.Algorithm, message, n, e, d, wireP, wireQ)
}
