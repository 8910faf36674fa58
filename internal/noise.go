package internal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"
)

var (
	// ErrInvalidWeight indicates a fixed-weight request that cannot be satisfied
	ErrInvalidWeight = errors.New("invalid sampling weight")

	// ErrShortRead indicates that the randomness source stopped before the vector was complete
	ErrShortRead = errors.New("randomness source exhausted")
)

// SampleFixedWeight draws a vector of n bits with exactly weight bits set, packed little-endian
// into ceil(n/8) bytes. Candidate positions are 32-bit little-endian words read from xof and
// masked to the smallest all-ones value covering n-1; candidates >= n or already set are
// rejected, so every position is equally likely.
func SampleFixedWeight(xof io.Reader, n, weight int) ([]byte, error) {
	if n <= 0 || weight < 0 || weight > n {
		return nil, fmt.Errorf("%w: %d bits out of %d", ErrInvalidWeight, weight, n)
	}

	res := make([]byte, (n+7)/8)
	mask := uint32(1)<<uint(bits.Len32(uint32(n-1))) - 1
	limit := uint32(n)

	var buf [4]byte
	for count := 0; count < weight; {
		if _, err := io.ReadFull(xof, buf[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrShortRead, err)
		}
		pos := binary.LittleEndian.Uint32(buf[:]) & mask
		if pos >= limit || CheckBit(res, int(pos)) {
			continue
		}
		SetBit(res, int(pos))
		count++
	}
	return res, nil
}
