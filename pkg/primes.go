package pkg

import (
	"math/big"
)

// isPrime reports whether n is prime.
func isPrime(n int) bool {
	return n > 1 && big.NewInt(int64(n)).ProbablyPrime(20)
}

// twoIsPrimitive reports whether 2 generates the multiplicative group modulo the prime r.
// This holds exactly when (x^r+1)/(x+1) is irreducible over GF(2), which makes every
// odd-weight element of GF(2)[x]/(x^r+1) other than the all-ones polynomial invertible.
func twoIsPrimitive(r int) bool {
	order := int64(r - 1)
	two := big.NewInt(2)
	mod := big.NewInt(int64(r))
	for _, q := range primeFactors(order) {
		if new(big.Int).Exp(two, big.NewInt(order/q), mod).Cmp(big.NewInt(1)) == 0 {
			return false
		}
	}
	return true
}

// primeFactors returns the distinct prime factors of n in ascending order.
func primeFactors(n int64) []int64 {
	var factors []int64
	for p := int64(2); p*p <= n; p++ {
		if n%p != 0 {
			continue
		}
		factors = append(factors, p)
		for n%p == 0 {
			n /= p
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	return factors
}
