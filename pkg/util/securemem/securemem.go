package securemem

import (
	"math/big"
	"runtime"

	"github.com/awnumar/memguard"
)

// Secret wraps a memguard locked buffer.
type Secret struct {
	buf *memguard.LockedBuffer
}

func NewRandom(n int) *Secret {
	return &Secret{buf: memguard.NewBufferRandom(n)}
}

// New moves b into locked memory; b is wiped as a side effect.
func New(b []byte) *Secret {
	return &Secret{buf: memguard.NewBufferFromBytes(b)}
}
func (s *Secret) Bytes() []byte { return s.buf.Bytes() }
func (s *Secret) Destroy()      { s.buf.Destroy() }

// Wipe zeroes a scratch slice that held sensitive bytes.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// WipeBig zeroes the backing words of a big.Int that held key material.
func WipeBig(x *big.Int) {
	if x == nil {
		return
	}
	w := x.Bits()
	for i := range w {
		w[i] = 0
	}
	x.SetInt64(0)
}
