package arithmetic

// CarrylessMultiplier multiplies two 64-bit polynomials over GF(2).
// Implementations are stateless and safe for concurrent use.
type CarrylessMultiplier interface {
	// Mul64 returns the 128-bit carryless product of x and y as (low, high) limbs.
	Mul64(x, y uint64) (lo, hi uint64)
	// Name identifies the implementation, e.g. in logs.
	Name() string
}

// Portable is the software carryless multiplier, available on every platform.
var Portable CarrylessMultiplier = tableMultiplier{}

// DefaultMultiplier checks CPU features once and returns the hardware carryless multiplier
// when the instruction is available, Portable otherwise.
func DefaultMultiplier() CarrylessMultiplier {
	return defaultMultiplier
}

var defaultMultiplier = selectMultiplier()

func selectMultiplier() CarrylessMultiplier {
	if m, ok := hardwareMultiplier(); ok {
		return m
	}
	return Portable
}

// tableMultiplier processes x a nibble at a time against a 16-entry table of the
// multiples of y, accumulating with Horner's rule from the most significant nibble.
type tableMultiplier struct{}

func (tableMultiplier) Name() string { return "table" }

func (tableMultiplier) Mul64(x, y uint64) (lo, hi uint64) {
	var tl, th [16]uint64
	tl[1] = y
	for i := 2; i < 16; i += 2 {
		tl[i] = tl[i/2] << 1
		th[i] = th[i/2]<<1 | tl[i/2]>>63
		tl[i+1] = tl[i] ^ y
		th[i+1] = th[i]
	}

	for k := 60; k >= 0; k -= 4 {
		n := (x >> uint(k)) & 15
		hi = hi<<4 | lo>>60
		lo <<= 4
		lo ^= tl[n]
		hi ^= th[n]
	}
	return lo, hi
}
