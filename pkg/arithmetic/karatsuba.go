package arithmetic

// karatsuba sets z[0:2n] = x[0:n] * y[0:n] over GF(2)[x] with n = len(x) = len(y).
// Operands of any length are split into a low half of ceil(n/2) limbs and a high half of
// floor(n/2) limbs; recursion stops at single limbs, which go to the ring's word multiplier.
// scratch must hold at least karatsubaScratch(n) limbs.
func (r *Ring) karatsuba(z, x, y, scratch []uint64) {
	n := len(x)
	if n == 1 {
		z[0], z[1] = r.mul.Mul64(x[0], y[0])
		return
	}

	m := (n + 1) / 2
	h := n - m
	x0, x1 := x[:m], x[m:]
	y0, y1 := y[:m], y[m:]

	// z = x0*y0 + ((x0+x1)(y0+y1) - x0*y0 - x1*y1) X^m + x1*y1 X^2m
	r.karatsuba(z[:2*m], x0, y0, scratch)
	r.karatsuba(z[2*m:2*n], x1, y1, scratch)

	xs := scratch[:m]
	ys := scratch[m : 2*m]
	mid := scratch[2*m : 4*m]
	copy(xs, x0)
	copy(ys, y0)
	for i := 0; i < h; i++ {
		xs[i] ^= x1[i]
		ys[i] ^= y1[i]
	}
	r.karatsuba(mid, xs, ys, scratch[4*m:])

	for i := 0; i < 2*m; i++ {
		mid[i] ^= z[i]
	}
	for i := 0; i < 2*h; i++ {
		mid[i] ^= z[2*m+i]
	}
	// the middle term x0*y1 + x1*y0 spans at most n limbs
	for i := 0; i < n; i++ {
		z[m+i] ^= mid[i]
	}
}

// karatsubaScratch returns the number of scratch limbs karatsuba needs for n-limb operands.
func karatsubaScratch(n int) int {
	s := 0
	for n > 1 {
		m := (n + 1) / 2
		s += 4 * m
		n = m
	}
	return s
}
