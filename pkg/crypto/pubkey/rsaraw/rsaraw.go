// Package rsaraw performs the four RSA primitive operations at the
// modular-exponentiation level. No padding scheme is applied here;
// OpenPGP applies its own padding above this layer, so every operation
// is deterministic and fixed-width on the public side.
package rsaraw

import (
	"errors"
	"fmt"
	"math/big"

	"example.com/pgpseckey/pkg/util/securemem"
)

var (
	ErrUnsupportedAlgorithm = errors.New("rsaraw: not an RSA algorithm")
	ErrKeyInconsistent      = errors.New("rsaraw: key fails consistency check")
	ErrMessageTooLarge      = errors.New("rsaraw: message exceeds modulus size")
	ErrOperationFailed      = errors.New("rsaraw: primitive operation failed")
)

// RSA public-key algorithm tags (RFC 9580)
const (
	algRSA            = 1
	algRSAEncryptOnly = 2
	algRSASignOnly    = 3
)

var one = big.NewInt(1)

func rsaAlgorithm(alg byte) bool {
	return alg == algRSA || alg == algRSAEncryptOnly || alg == algRSASignOnly
}

// privateMaterial holds a reconstructed private key. All fields are
// private copies; wipe zeroes them and must run on every exit path of
// an operation that built one.
type privateMaterial struct {
	n, e, d, p, q *big.Int
}

func (k *privateMaterial) wipe() {
	securemem.WipeBig(k.d)
	securemem.WipeBig(k.p)
	securemem.WipeBig(k.q)
}

// reconstruct builds private key material from wire MPIs and verifies
// its consistency before it may be used. The wire stores the primes
// under "P" and "Q" in the opposite order of the p < q convention the
// arithmetic below inherits from the original big-number backend, so
// the prime bound to p here is the wire's "Q" and vice versa. This
// swap is load-bearing; it lives only here.
func reconstruct(n, e, d, wireP, wireQ *big.Int) (*privateMaterial, error) {
	k := &privateMaterial{
		n: new(big.Int).Set(n),
		e: new(big.Int).Set(e),
		d: new(big.Int).Set(d),
		p: new(big.Int).Set(wireQ),
		q: new(big.Int).Set(wireP),
	}
	if err := k.check(); err != nil {
		k.wipe()
		return nil, err
	}
	return k, nil
}

// check verifies n = p*q and d*e = 1 (mod lcm(p-1, q-1)).
func (k *privateMaterial) check() error {
	if k.p.Sign() <= 0 || k.q.Sign() <= 0 {
		return fmt.Errorf("non-positive prime: %w", ErrKeyInconsistent)
	}
	pq := new(big.Int).Mul(k.p, k.q)
	defer securemem.WipeBig(pq)
	if pq.Cmp(k.n) != 0 {
		return fmt.Errorf("n != p*q: %w", ErrKeyInconsistent)
	}
	pm1 := new(big.Int).Sub(k.p, one)
	qm1 := new(big.Int).Sub(k.q, one)
	gcd := new(big.Int).GCD(nil, nil, pm1, qm1)
	lambda := new(big.Int).Div(pm1, gcd)
	lambda.Mul(lambda, qm1)
	de := new(big.Int).Mul(k.d, k.e)
	de.Mod(de, lambda)
	ok := de.Cmp(one) == 0
	for _, x := range []*big.Int{pm1, qm1, gcd, lambda, de} {
		securemem.WipeBig(x)
	}
	if !ok {
		return fmt.Errorf("d*e != 1 mod lcm(p-1,q-1): %w", ErrKeyInconsistent)
	}
	return nil
}

// rightJustify places b at the end of a width-byte buffer.
func rightJustify(b []byte, width int) ([]byte, error) {
	if len(b) > width {
		return nil, fmt.Errorf("result %d bytes exceeds modulus width %d: %w", len(b), width, ErrOperationFailed)
	}
	out := make([]byte, width)
	copy(out[width-len(b):], b)
	return out, nil
}

func modulusWidth(n *big.Int) int { return (n.BitLen() + 7) / 8 }

// PublicEncrypt computes message^e mod n, right-justified to the byte
// length of n.
func PublicEncrypt(alg byte, message []byte, n, e *big.Int) ([]byte, error) {
	if !rsaAlgorithm(alg) {
		return nil, fmt.Errorf("algorithm %d: %w", alg, ErrUnsupportedAlgorithm)
	}
	m := new(big.Int).SetBytes(message)
	c := new(big.Int).Exp(m, e, n)
	return rightJustify(c.Bytes(), modulusWidth(n))
}

// PublicDecrypt recovers signature^e mod n, right-justified to the
// byte length of n. Verification semantics stay with the caller, which
// compares the recovered block to the digest encoding it expects.
func PublicDecrypt(alg byte, signature []byte, n, e *big.Int) ([]byte, error) {
	if !rsaAlgorithm(alg) {
		return nil, fmt.Errorf("algorithm %d: %w", alg, ErrUnsupportedAlgorithm)
	}
	s := new(big.Int).SetBytes(signature)
	r := new(big.Int).Exp(s, e, n)
	return rightJustify(r.Bytes(), modulusWidth(n))
}

// PrivateDecrypt recovers ciphertext^d mod n via the CRT and returns
// the message at its natural length. The key is reconstructed and
// consistency-checked first; on any failure no exponentiation runs and
// no partial result escapes.
func PrivateDecrypt(alg byte, ciphertext []byte, n, e, d, wireP, wireQ *big.Int) ([]byte, error) {
	if !rsaAlgorithm(alg) {
		return nil, fmt.Errorf("algorithm %d: %w", alg, ErrUnsupportedAlgorithm)
	}
	key, err := reconstruct(n, e, d, wireP, wireQ)
	if err != nil {
		return nil, err
	}
	defer key.wipe()

	pm1 := new(big.Int).Sub(key.p, one)
	qm1 := new(big.Int).Sub(key.q, one)
	dP := new(big.Int).Mod(key.d, pm1)
	dQ := new(big.Int).Mod(key.d, qm1)
	qInv := new(big.Int).ModInverse(key.q, key.p)
	scratch := []*big.Int{pm1, qm1, dP, dQ}
	defer func() {
		for _, x := range scratch {
			securemem.WipeBig(x)
		}
	}()
	if qInv == nil {
		return nil, fmt.Errorf("q not invertible mod p: %w", ErrOperationFailed)
	}
	scratch = append(scratch, qInv)

	c := new(big.Int).SetBytes(ciphertext)
	m1 := new(big.Int).Exp(c, dP, key.p)
	m2 := new(big.Int).Exp(c, dQ, key.q)
	h := new(big.Int).Sub(m1, m2)
	h.Mul(h, qInv)
	h.Mod(h, key.p)
	m := h.Mul(h, key.q)
	m.Add(m, m2)
	out := m.Bytes()
	scratch = append(scratch, m1, m2, m)
	return out, nil
}

// PrivateEncrypt computes message^d mod n (a raw signature). The
// message may not be wider than the modulus.
func PrivateEncrypt(alg byte, message []byte, n, e, d, wireP, wireQ *big.Int) ([]byte, error) {
	if !rsaAlgorithm(alg) {
		return nil, fmt.Errorf("algorithm %d: %w", alg, ErrUnsupportedAlgorithm)
	}
	if len(message) > modulusWidth(n) {
		return nil, fmt.Errorf("message %d bytes, modulus %d: %w", len(message), modulusWidth(n), ErrMessageTooLarge)
	}
	key, err := reconstruct(n, e, d, wireP, wireQ)
	if err != nil {
		return nil, err
	}
	defer key.wipe()

	m := new(big.Int).SetBytes(message)
	s := new(big.Int).Exp(m, key.d, key.n)
	out := s.Bytes()
	securemem.WipeBig(s)
	return out, nil
}
