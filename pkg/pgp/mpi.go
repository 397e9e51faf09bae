package pgp

import (
	"fmt"
	"math/big"
)

// MPI is an OpenPGP multi-precision integer: a non-negative big-endian
// integer prefixed on the wire with its bit length in two octets. The
// identifier names the integer's role inside a key packet ("N", "E",
// "D", "P", "Q", "U", "X"). MPIs are immutable once constructed; Value
// must not be modified through the returned pointer.
type MPI struct {
	Identifier string
	Value      *big.Int
}

func NewMPI(id string, v *big.Int) MPI {
	return MPI{Identifier: id, Value: new(big.Int).Set(v)}
}

// ReadMPI decodes the MPI starting at buf[off] and returns it together
// with the number of bytes consumed.
func ReadMPI(buf []byte, off int, id string) (MPI, int, error) {
	if off+2 > len(buf) {
		return MPI{}, 0, fmt.Errorf("mpi %q bit count: %w", id, ErrTruncated)
	}
	bits := int(buf[off])<<8 | int(buf[off+1])
	nbytes := (bits + 7) / 8
	if off+2+nbytes > len(buf) {
		return MPI{}, 0, fmt.Errorf("mpi %q wants %d bytes: %w", id, nbytes, ErrTruncated)
	}
	v := new(big.Int).SetBytes(buf[off+2 : off+2+nbytes])
	return MPI{Identifier: id, Value: v}, 2 + nbytes, nil
}

// Encode serializes m with a bit count reflecting the true bit length
// of the value and the minimal byte representation that implies.
func (m MPI) Encode() []byte {
	bits := m.Value.BitLen()
	raw := m.Value.Bytes()
	out := make([]byte, 0, 2+len(raw))
	out = append(out, byte(bits>>8), byte(bits))
	return append(out, raw...)
}

// BitLength is the true bit length of the value, with no leading-zero
// bits counted.
func (m MPI) BitLength() int { return m.Value.BitLen() }

// EncodedLength is the wire size of m: 2 prefix octets plus the
// minimal byte count.
func (m MPI) EncodedLength() int { return 2 + (m.Value.BitLen()+7)/8 }
