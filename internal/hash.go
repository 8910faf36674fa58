package internal

import (
	"golang.org/x/crypto/sha3"
)

// NewXOF returns a SHAKE256 stream absorbing seed.
func NewXOF(seed []byte) sha3.ShakeHash {
	xof := sha3.NewShake256()
	xof.Write(seed)
	return xof
}

// HashH is the random oracle H: it expands m into an error vector e = e0||e1
// of 2r bits and weight t, packed into ceil(2r/8) bytes.
func HashH(m []byte, r, t int) ([]byte, error) {
	return SampleFixedWeight(NewXOF(m), 2*r, t)
}

// HashL is the random oracle L: SHA3-384(e0||e1) truncated to len(out) bytes.
func HashL(e0, e1 []byte, out []byte) {
	h := sha3.New384()
	h.Write(e0)
	h.Write(e1)
	sum := h.Sum(nil)
	copy(out, sum)
	clear(sum)
}

// HashK is the random oracle K: SHA3-384(m||c0||c1) truncated to len(out) bytes.
func HashK(m, c0, c1 []byte, out []byte) {
	h := sha3.New384()
	h.Write(m)
	h.Write(c0)
	h.Write(c1)
	sum := h.Sum(nil)
	copy(out, sum)
	clear(sum)
}
