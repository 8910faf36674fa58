package internal

import (
	"math/bits"
)

// BytesToBits unpacks the first len(dst) little-endian bits of src into dst, one bit per byte.
func BytesToBits(dst []uint8, src []byte) {
	for i := range dst {
		dst[i] = (src[i>>3] >> uint(i&7)) & 1
	}
}

// BitsToBytes packs the 0/1 values of src into dst, little-endian. dst must hold ceil(len(src)/8) bytes.
func BitsToBytes(dst []byte, src []uint8) {
	clear(dst)
	for i, b := range src {
		dst[i>>3] |= (b & 1) << uint(i&7)
	}
}

// ExtractBits returns the n bits of src starting at bit offset off, packed into ceil(n/8) bytes.
func ExtractBits(src []byte, off, n int) []byte {
	out := make([]byte, (n+7)/8)
	start := off >> 3
	shift := uint(off & 7)
	for i := range out {
		v := src[start+i] >> shift
		if shift != 0 && start+i+1 < len(src) {
			v |= src[start+i+1] << (8 - shift)
		}
		out[i] = v
	}
	if rem := n % 8; rem != 0 {
		out[len(out)-1] &= 1<<uint(rem) - 1
	}
	return out
}

// HammingWeight returns the number of set entries of a one-bit-per-byte vector.
func HammingWeight(v []uint8) int {
	n := 0
	for _, b := range v {
		n += int(b & 1)
	}
	return n
}

// HammingWeightBytes returns the number of set bits of a packed vector.
func HammingWeightBytes(b []byte) int {
	n := 0
	for _, v := range b {
		n += bits.OnesCount8(v)
	}
	return n
}

// CheckBit reports whether bit pos of the packed vector b is set.
func CheckBit(b []byte, pos int) bool {
	return (b[pos>>3]>>uint(pos&7))&1 == 1
}

// SetBit sets bit pos of the packed vector b.
func SetBit(b []byte, pos int) {
	b[pos>>3] |= 1 << uint(pos&7)
}
