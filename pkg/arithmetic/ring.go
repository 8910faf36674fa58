// Package arithmetic provides polynomial arithmetic in GF(2)[x]/(x^r+1) for BIKE-KEM
package arithmetic

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

var (
	// ErrUnsupportedDegree indicates that a ring was requested for an r outside the BIKE parameter sets
	ErrUnsupportedDegree = errors.New("arithmetic: unsupported ring degree")

	// ErrMalformedElement indicates that an encoded ring element has the wrong length or stray high bits
	ErrMalformedElement = errors.New("arithmetic: malformed ring element")
)

// supportedDegrees lists the ring degrees r of the bike128, bike192 and bike256 parameter sets.
var supportedDegrees = map[int]struct{}{
	12323: {},
	24659: {},
	40973: {},
}

// IsSupportedDegree reports whether r is the ring degree of one of the BIKE parameter sets.
func IsSupportedDegree(r int) bool {
	_, ok := supportedDegrees[r]
	return ok
}

// Element is a polynomial of degree < r over GF(2), packed little-endian into 64-bit limbs.
// Bit i of the packed value is the coefficient of x^i. Bits at positions >= r are always zero.
type Element []uint64

// Ring implements arithmetic in R = GF(2)[x]/(x^r+1).
// A Ring is immutable after construction and may be shared between goroutines;
// every operation allocates its own scratch space.
type Ring struct {
	r     int
	words int
	// mask of the valid bits in the final limb
	mask uint64
	mul  CarrylessMultiplier
}

// NewRing creates the ring of degree r using the fastest carryless multiplier available on this CPU.
func NewRing(r int) (*Ring, error) {
	return NewRingWithMultiplier(r, DefaultMultiplier())
}

// NewRingWithMultiplier creates the ring of degree r using the given word multiplier.
func NewRingWithMultiplier(r int, m CarrylessMultiplier) (*Ring, error) {
	if !IsSupportedDegree(r) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDegree, r)
	}
	if m == nil {
		m = Portable
	}
	return newRing(r, m), nil
}

func newRing(r int, m CarrylessMultiplier) *Ring {
	words := (r + 63) / 64
	mask := ^uint64(0)
	if s := r % 64; s != 0 {
		mask = 1<<uint(s) - 1
	}
	return &Ring{r: r, words: words, mask: mask, mul: m}
}

// R returns the ring degree.
func (r *Ring) R() int { return r.r }

// Words returns the number of 64-bit limbs of an element.
func (r *Ring) Words() int { return r.words }

// ByteSize returns the size in bytes of an encoded element, ceil(r/8).
func (r *Ring) ByteSize() int { return (r.r + 7) / 8 }

// Multiplier returns the carryless multiplier used by this ring.
func (r *Ring) Multiplier() CarrylessMultiplier { return r.mul }

// NewElement returns the zero element.
func (r *Ring) NewElement() Element {
	return make(Element, r.words)
}

// One returns the multiplicative identity.
func (r *Ring) One() Element {
	z := r.NewElement()
	z[0] = 1
	return z
}

// Copy copies x into z.
func (r *Ring) Copy(x, z Element) {
	copy(z, x)
}

// Zero overwrites x with zeros. It is used to scrub secret intermediates.
func (x Element) Zero() {
	clear(x)
}

// Equal reports whether x and y hold the same polynomial.
func (x Element) Equal(y Element) bool {
	if len(x) != len(y) {
		return false
	}
	var acc uint64
	for i := range x {
		acc |= x[i] ^ y[i]
	}
	return acc == 0
}

// IsZero reports whether x is the zero polynomial.
func (x Element) IsZero() bool {
	var acc uint64
	for _, w := range x {
		acc |= w
	}
	return acc == 0
}

// Weight returns the Hamming weight of x.
func (x Element) Weight() int {
	n := 0
	for _, w := range x {
		n += bits.OnesCount64(w)
	}
	return n
}

// Bit returns the coefficient of x^i.
func (x Element) Bit(i int) uint64 {
	return (x[i>>6] >> uint(i&63)) & 1
}

// SetBit sets the coefficient of x^i to 1.
func (x Element) SetBit(i int) {
	x[i>>6] |= 1 << uint(i&63)
}

// DecodeBytes unpacks a little-endian encoded element.
// The input must be exactly ceil(r/8) bytes long and the bits of the final byte at positions >= r must be zero.
func (r *Ring) DecodeBytes(b []byte) (Element, error) {
	z := r.NewElement()
	if err := r.DecodeBytesTo(b, z); err != nil {
		return nil, err
	}
	return z, nil
}

// DecodeBytesTo is DecodeBytes writing into an existing element.
func (r *Ring) DecodeBytesTo(b []byte, z Element) error {
	if len(b) != r.ByteSize() {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrMalformedElement, len(b), r.ByteSize())
	}
	if rem := r.r % 8; rem != 0 && b[len(b)-1]>>uint(rem) != 0 {
		return fmt.Errorf("%w: bits beyond degree %d are set", ErrMalformedElement, r.r)
	}

	var buf [8]byte
	for i := range z {
		clear(buf[:])
		copy(buf[:], b[8*i:])
		z[i] = binary.LittleEndian.Uint64(buf[:])
	}
	return nil
}

// EncodeBytes packs x into ceil(r/8) bytes, little-endian.
func (r *Ring) EncodeBytes(x Element) []byte {
	out := make([]byte, r.ByteSize())
	r.EncodeBytesTo(x, out)
	return out
}

// EncodeBytesTo is EncodeBytes writing into out, which must be ceil(r/8) bytes long.
func (r *Ring) EncodeBytesTo(x Element, out []byte) {
	var buf [8]byte
	for i, w := range x {
		binary.LittleEndian.PutUint64(buf[:], w)
		copy(out[8*i:], buf[:])
	}
}

// Add sets z = x + y. Any of the arguments may alias.
func (r *Ring) Add(x, y, z Element) {
	for i := 0; i < r.words; i++ {
		z[i] = x[i] ^ y[i]
	}
}

// Multiply sets z = x * y mod (x^r+1). Any of the arguments may alias.
func (r *Ring) Multiply(x, y, z Element) {
	prod := make([]uint64, 2*r.words)
	scratch := make([]uint64, karatsubaScratch(r.words))
	r.karatsuba(prod, x, y, scratch)
	r.reduce(prod, z)
	clear(prod)
	clear(scratch)
}

// Square sets z = x^2 mod (x^r+1). x and z may alias.
func (r *Ring) Square(x, z Element) {
	t := make([]uint64, 2*r.words)
	r.square(x, z, t)
	clear(t)
}

// square expands every coefficient i of x to position 2i in t and folds t into z.
func (r *Ring) square(x, z Element, t []uint64) {
	for i := 0; i < r.words; i++ {
		w := x[i]
		t[2*i] = interleaveZeros(uint32(w))
		t[2*i+1] = interleaveZeros(uint32(w >> 32))
	}
	r.reduce(t, z)
}

// squarePermutationThreshold is the number of squarings above which SquareN
// switches to the coefficient permutation i -> i*2^n mod r.
const squarePermutationThreshold = 64

// SquareN sets z = x^(2^n) mod (x^r+1). x and z may alias.
func (r *Ring) SquareN(x Element, n int, z Element) {
	if n >= squarePermutationThreshold {
		r.squareNPermute(x, n, z)
		return
	}
	copy(z, x)
	if n <= 0 {
		return
	}
	t := make([]uint64, 2*r.words)
	for i := 0; i < n; i++ {
		r.square(z, z, t)
	}
	clear(t)
}

// squareNPermute computes x^(2^n) directly: squaring is linear over GF(2),
// so n squarings move coefficient i to position i*2^n mod r.
func (r *Ring) squareNPermute(x Element, n int, z Element) {
	step := powTwoMod(n, r.r)
	out := r.NewElement()
	pos := 0
	for i := 0; i < r.r; i++ {
		b := (x[i>>6] >> uint(i&63)) & 1
		out[pos>>6] |= b << uint(pos&63)
		pos += step
		if pos >= r.r {
			pos -= r.r
		}
	}
	copy(z, out)
	clear(out)
}

// Invert sets z = a^-1 mod (x^r+1).
// Since x^r+1 = (x+1)*Phi_r(x) with Phi_r irreducible, every a of odd weight other than
// the all-ones polynomial is invertible and a^-1 = a^(2^(r-1)-2). The exponent is reached with
// an Itoh-Tsujii addition chain over the bits of r-2. The result is undefined for non-invertible a.
func (r *Ring) Invert(a, z Element) {
	f := r.NewElement()
	g := r.NewElement()
	t := r.NewElement()
	copy(f, a)
	copy(t, a)

	// invariant: f = a^(2^(2^i)-1) and t = a^(2^k-1) where k = (r-2) mod 2^i
	rSub2 := r.r - 2
	nbits := bits.Len(uint(rSub2))
	for i := 1; i < nbits; i++ {
		r.SquareN(f, 1<<(i-1), g)
		r.Multiply(f, g, f)
		if rSub2&(1<<i) != 0 {
			k := rSub2 & (1<<i - 1)
			r.SquareN(f, k, g)
			r.Multiply(t, g, t)
		}
	}
	r.Square(t, z)

	f.Zero()
	g.Zero()
	t.Zero()
}

// reduce folds a double-width product t (2*words limbs, degree < 2r-1) into z:
// since x^r = 1 the bits at positions >= r are shifted down by r and added to the low half.
func (r *Ring) reduce(t []uint64, z Element) {
	q := r.r / 64
	s := uint(r.r % 64)
	for i := 0; i < r.words; i++ {
		hi := t[q+i] >> s
		if s != 0 {
			hi |= t[q+i+1] << (64 - s)
		}
		z[i] = t[i] ^ hi
	}
	z[r.words-1] &= r.mask
}

// interleaveZeros spreads the 32 bits of x to the even bit positions of the result.
func interleaveZeros(x uint32) uint64 {
	v := uint64(x)
	v = (v | v<<16) & 0x0000FFFF0000FFFF
	v = (v | v<<8) & 0x00FF00FF00FF00FF
	v = (v | v<<4) & 0x0F0F0F0F0F0F0F0F
	v = (v | v<<2) & 0x3333333333333333
	v = (v | v<<1) & 0x5555555555555555
	return v
}

// powTwoMod returns 2^n mod m.
func powTwoMod(n, m int) int {
	result, base := uint64(1)%uint64(m), uint64(2)%uint64(m)
	for e := uint(n); e > 0; e >>= 1 {
		if e&1 == 1 {
			result = result * base % uint64(m)
		}
		base = base * base % uint64(m)
	}
	return int(result)
}
