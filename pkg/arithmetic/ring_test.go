package arithmetic

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// testDegrees are primes for which 2 is a primitive root, so x^r+1 = (x+1)*Phi_r(x) with Phi_r irreducible.
var testDegrees = []int{11, 67, 131, 389}

var bikeDegrees = []int{12323, 24659, 40973}

func randomElement(rng *rand.Rand, r *Ring) Element {
	z := r.NewElement()
	for i := range z {
		z[i] = rng.Uint64()
	}
	z[len(z)-1] &= r.mask
	return z
}

func randomInvertible(rng *rand.Rand, r *Ring) Element {
	for {
		z := randomElement(rng, r)
		if z.Weight()%2 == 0 {
			z[0] ^= 1
		}
		// the all-ones polynomial is the only odd-weight element without an inverse
		if z.Weight() != r.R() {
			return z
		}
	}
}

// naiveMultiply is a bit-by-bit reference for x*y mod (x^r+1).
func naiveMultiply(r *Ring, x, y Element) Element {
	z := r.NewElement()
	for i := 0; i < r.R(); i++ {
		if x.Bit(i) == 0 {
			continue
		}
		for j := 0; j < r.R(); j++ {
			if y.Bit(j) == 1 {
				k := (i + j) % r.R()
				z[k>>6] ^= 1 << uint(k&63)
			}
		}
	}
	return z
}

func requireReduced(t *testing.T, r *Ring, x Element) {
	t.Helper()
	require.Len(t, x, r.Words())
	require.Zero(t, x[len(x)-1]&^r.mask, "bits beyond degree %d are set", r.R())
}

func TestNewRingRejectsUnsupportedDegree(t *testing.T) {
	for _, r := range []int{0, 11, 12324, 40973 * 2} {
		_, err := NewRing(r)
		require.ErrorIs(t, err, ErrUnsupportedDegree)
	}
	for _, r := range bikeDegrees {
		ring, err := NewRing(r)
		require.NoError(t, err)
		require.Equal(t, (r+7)/8, ring.ByteSize())
		require.Equal(t, (r+63)/64, ring.Words())
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, deg := range append(testDegrees, bikeDegrees...) {
		r := newRing(deg, Portable)
		t.Run(strconv.Itoa(deg), func(t *testing.T) {
			x := randomElement(rng, r)
			b := r.EncodeBytes(x)
			require.Len(t, b, (deg+7)/8)

			y, err := r.DecodeBytes(b)
			require.NoError(t, err)
			require.True(t, x.Equal(y))
			require.Equal(t, b, r.EncodeBytes(y))
		})
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	r, err := NewRing(12323)
	require.NoError(t, err)

	_, err = r.DecodeBytes(make([]byte, r.ByteSize()+1))
	require.ErrorIs(t, err, ErrMalformedElement)

	_, err = r.DecodeBytes(make([]byte, r.ByteSize()-1))
	require.ErrorIs(t, err, ErrMalformedElement)

	b := make([]byte, r.ByteSize())
	// 12323 = 8*1540 + 3, so only the low three bits of the final byte are coefficients
	b[len(b)-1] = 1 << 3
	_, err = r.DecodeBytes(b)
	require.ErrorIs(t, err, ErrMalformedElement)

	b[len(b)-1] = 0x07
	x, err := r.DecodeBytes(b)
	require.NoError(t, err)
	require.Equal(t, uint64(1), x.Bit(12322))
}

func TestAddSelfIsZero(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	r := newRing(12323, Portable)
	x := randomElement(rng, r)
	z := r.NewElement()
	r.Add(x, x, z)
	require.True(t, z.IsZero())
}

func TestMultipliersAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	reference := func(x, y uint64) (lo, hi uint64) {
		for i := uint(0); i < 64; i++ {
			if (y>>i)&1 == 1 {
				lo ^= x << i
				if i > 0 {
					hi ^= x >> (64 - i)
				}
			}
		}
		return lo, hi
	}
	hw := DefaultMultiplier()
	t.Logf("default multiplier: %s", hw.Name())
	for i := 0; i < 1000; i++ {
		x, y := rng.Uint64(), rng.Uint64()
		lo, hi := reference(x, y)
		plo, phi := Portable.Mul64(x, y)
		require.Equal(t, lo, plo)
		require.Equal(t, hi, phi)
		dlo, dhi := hw.Mul64(x, y)
		require.Equal(t, lo, dlo)
		require.Equal(t, hi, dhi)
	}
	lo, hi := Portable.Mul64(^uint64(0), ^uint64(0))
	require.Equal(t, uint64(0x5555555555555555), lo)
	require.Equal(t, uint64(0x5555555555555555), hi)
}

func TestMultiplyMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	for _, deg := range testDegrees {
		r := newRing(deg, Portable)
		t.Run(strconv.Itoa(deg), func(t *testing.T) {
			for i := 0; i < 10; i++ {
				x, y := randomElement(rng, r), randomElement(rng, r)
				z := r.NewElement()
				r.Multiply(x, y, z)
				requireReduced(t, r, z)
				require.True(t, naiveMultiply(r, x, y).Equal(z))
			}
		})
	}
}

func TestMultiplyAlgebra(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	for _, deg := range bikeDegrees {
		r, err := NewRing(deg)
		require.NoError(t, err)
		t.Run(strconv.Itoa(deg), func(t *testing.T) {
			x, y, w := randomElement(rng, r), randomElement(rng, r), randomElement(rng, r)

			xy, yx := r.NewElement(), r.NewElement()
			r.Multiply(x, y, xy)
			r.Multiply(y, x, yx)
			requireReduced(t, r, xy)
			require.True(t, xy.Equal(yx), "multiplication must commute")

			// x*(y+w) = x*y + x*w
			sum, lhs, xw, rhs := r.NewElement(), r.NewElement(), r.NewElement(), r.NewElement()
			r.Add(y, w, sum)
			r.Multiply(x, sum, lhs)
			r.Multiply(x, w, xw)
			r.Add(xy, xw, rhs)
			require.True(t, lhs.Equal(rhs))

			one := r.One()
			r.Multiply(x, one, lhs)
			require.True(t, lhs.Equal(x))

			portable := newRing(deg, Portable)
			portable.Multiply(x, y, lhs)
			require.True(t, lhs.Equal(xy))
		})
	}
}

func TestMultiplySparseIsRotation(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	r := newRing(12323, Portable)
	x := randomElement(rng, r)
	mono := r.NewElement()
	mono.SetBit(12000)
	z := r.NewElement()
	r.Multiply(x, mono, z)
	for i := 0; i < r.R(); i++ {
		require.Equal(t, x.Bit(i), z.Bit((i+12000)%r.R()))
	}
}

func TestSquare(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 14))
	for _, deg := range append(testDegrees, 12323) {
		r := newRing(deg, Portable)
		x := randomElement(rng, r)
		sq, xx := r.NewElement(), r.NewElement()
		r.Square(x, sq)
		r.Multiply(x, x, xx)
		requireReduced(t, r, sq)
		require.True(t, sq.Equal(xx), "degree %d", deg)
	}
}

func TestSquareNPermutationMatchesRepeatedSquaring(t *testing.T) {
	rng := rand.New(rand.NewPCG(15, 16))
	for _, deg := range []int{131, 12323} {
		r := newRing(deg, Portable)
		x := randomElement(rng, r)
		for _, n := range []int{0, 1, 5, squarePermutationThreshold, 100, 3 * squarePermutationThreshold} {
			want := r.NewElement()
			copy(want, x)
			for i := 0; i < n; i++ {
				r.Square(want, want)
			}
			got := r.NewElement()
			r.SquareN(x, n, got)
			require.True(t, want.Equal(got), "degree %d, n=%d", deg, n)
		}
	}
}

func TestInvert(t *testing.T) {
	rng := rand.New(rand.NewPCG(17, 18))
	for _, deg := range append(testDegrees, bikeDegrees...) {
		r := newRing(deg, DefaultMultiplier())
		t.Run(strconv.Itoa(deg), func(t *testing.T) {
			a := randomInvertible(rng, r)
			inv, prod := r.NewElement(), r.NewElement()
			r.Invert(a, inv)
			requireReduced(t, r, inv)
			r.Multiply(a, inv, prod)
			require.True(t, prod.Equal(r.One()))
		})
	}
}

func TestInvertInPlace(t *testing.T) {
	rng := rand.New(rand.NewPCG(19, 20))
	r := newRing(67, Portable)
	a := randomInvertible(rng, r)
	orig := r.NewElement()
	copy(orig, a)
	r.Invert(a, a)
	prod := r.NewElement()
	r.Multiply(orig, a, prod)
	require.True(t, prod.Equal(r.One()))
}

func BenchmarkMultiply(b *testing.B) {
	rng := rand.New(rand.NewPCG(21, 22))
	for _, m := range []CarrylessMultiplier{Portable, DefaultMultiplier()} {
		r := newRing(12323, m)
		x, y, z := randomElement(rng, r), randomElement(rng, r), r.NewElement()
		b.Run(m.Name(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				r.Multiply(x, y, z)
			}
		})
	}
}

func BenchmarkInvert(b *testing.B) {
	rng := rand.New(rand.NewPCG(23, 24))
	r := newRing(12323, DefaultMultiplier())
	a, z := randomInvertible(rng, r), r.NewElement()
	for i := 0; i < b.N; i++ {
		r.Invert(a, z)
	}
}
