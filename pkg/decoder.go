package pkg

import (
	"github.com/MingLLuo/BIKE-KEM/internal"
	"github.com/MingLLuo/BIKE-KEM/pkg/arithmetic"
)

// DecodeObserver receives the outcome of every decoding run performed during decapsulation.
// Implementations must not block; the KEM result does not depend on them.
type DecodeObserver interface {
	ObserveDecode(paramSet string, syndromeWeight int, converged bool)
}

// bgfDecoder is the Black-Gray-Flip bit-flipping decoder for one parameter set.
type bgfDecoder struct {
	r          int
	nbIter     int
	tau        int
	maskThresh int
	threshold  thresholdCoefficients
}

func newDecoder(p Parameters) (*bgfDecoder, error) {
	coeffs, err := thresholdFor(p.CodeParams.R)
	if err != nil {
		return nil, err
	}
	return &bgfDecoder{
		r:          p.CodeParams.R,
		nbIter:     p.DecoderParams.NbIter,
		tau:        p.DecoderParams.Tau,
		maskThresh: (p.HalfWeight()+1)/2 + 1,
		threshold:  coeffs,
	}, nil
}

// decodeState is the working memory of one decoding run.
// The syndrome is stored twice in a row so that s[j+p] never needs a modular reduction
// for j, p < r; flips keep both copies in sync.
type decodeState struct {
	r   int
	s   []uint8
	e   []uint8
	ctr []uint8
	h   [2][]int
}

func newDecodeState(r int, syndrome []uint8, h0, h1 []int) *decodeState {
	st := &decodeState{
		r:   r,
		s:   make([]uint8, 2*r),
		e:   make([]uint8, 2*r),
		ctr: make([]uint8, 2*r),
		h:   [2][]int{h0, h1},
	}
	copy(st.s, syndrome)
	copy(st.s[r:], syndrome)
	return st
}

// compact lists the positions of the set coefficients of x.
func compact(x arithmetic.Element, r int) []int {
	idx := make([]int, 0, x.Weight())
	for i := 0; i < r; i++ {
		if x.Bit(i) == 1 {
			idx = append(idx, i)
		}
	}
	return idx
}

// counters fills the given half of ctr: entry j is the number of unsatisfied parity
// equations involving bit j of that half. It returns that half.
func (st *decodeState) counters(half int) []uint8 {
	ctr := st.ctr[half*st.r : (half+1)*st.r]
	clear(ctr)
	for _, p := range st.h[half] {
		row := st.s[p : p+st.r]
		for j := range ctr {
			ctr[j] += row[j]
		}
	}
	return ctr
}

// allCounters computes the counters of both halves against the same syndrome,
// before any of them is acted upon.
func (st *decodeState) allCounters() [2][]uint8 {
	return [2][]uint8{st.counters(0), st.counters(1)}
}

// counter is counters for a single position.
func (st *decodeState) counter(half, j int) int {
	c := 0
	for _, p := range st.h[half] {
		c += int(st.s[p+j])
	}
	return c
}

// flip toggles e[half*r+j] and adds the matching column of H to the syndrome.
func (st *decodeState) flip(half, j int) {
	st.e[half*st.r+j] ^= 1
	for _, p := range st.h[half] {
		k := p + j
		if k >= st.r {
			k -= st.r
		}
		st.s[k] ^= 1
		st.s[k+st.r] ^= 1
	}
}

func (st *decodeState) weight() int {
	return internal.HammingWeight(st.s[:st.r])
}

// maskedPass revisits the positions marked in mask and flips those whose counter,
// taken against the current syndrome, reaches th.
func (st *decodeState) maskedPass(mask []uint8, th int) {
	for half := 0; half < 2; half++ {
		for j := 0; j < st.r; j++ {
			if mask[half*st.r+j] == 0 {
				continue
			}
			if st.counter(half, j) >= th {
				st.flip(half, j)
			}
		}
	}
}

// decode runs the BGF schedule on syndrome (r bits, one per byte) against the private
// halves given by their support h0 and h1. It returns the recovered error vector as 2r bits,
// one per byte, and the weight of the residual syndrome: zero means the decoder converged.
// A non-converged result is still a vector of 2r bits; callers must not branch on it.
// h0 and h1 describe the private key and are zeroed before decode returns.
func (d *bgfDecoder) decode(syndrome []uint8, h0, h1 []int) ([]uint8, int) {
	r := d.r
	st := newDecodeState(r, syndrome, h0, h1)

	black := make([]uint8, 2*r)
	gray := make([]uint8, 2*r)

	// first round: flip above threshold and remember the near misses
	th := d.threshold.at(st.weight())
	ctrs := st.allCounters()
	for half, ctr := range ctrs {
		for j, c := range ctr {
			switch {
			case int(c) >= th:
				st.flip(half, j)
				black[half*r+j] = 1
			case int(c) >= th-d.tau:
				gray[half*r+j] = 1
			}
		}
	}
	st.maskedPass(gray, d.maskThresh)
	st.maskedPass(black, d.maskThresh)

	for it := 1; it < d.nbIter; it++ {
		th = d.threshold.at(st.weight())
		ctrs = st.allCounters()
		for half, ctr := range ctrs {
			for j, c := range ctr {
				if int(c) >= th {
					st.flip(half, j)
				}
			}
		}
	}

	w := st.weight()
	clear(st.s)
	clear(st.ctr)
	clear(black)
	clear(gray)
	clear(h0)
	clear(h1)
	return st.e, w
}
