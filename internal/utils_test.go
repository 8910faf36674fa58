package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitsBytesRoundTrip(t *testing.T) {
	src := []byte{0xA5, 0x0F, 0x03}
	bits := make([]uint8, 18)
	BytesToBits(bits, src)
	require.Equal(t, []uint8{1, 0, 1, 0, 0, 1, 0, 1, 1, 1, 1, 1, 0, 0, 0, 0, 1, 1}, bits)

	out := make([]byte, 3)
	BitsToBytes(out, bits)
	require.Equal(t, src, out)
	require.Equal(t, 10, HammingWeight(bits))
	require.Equal(t, 10, HammingWeightBytes(src))
}

func TestExtractBits(t *testing.T) {
	// 20 bits: low 10 are 0b1111100000, high 10 are 0b0000011111
	var v uint32 = 0b0000011111_1111100000
	src := []byte{byte(v), byte(v >> 8), byte(v >> 16)}

	lo := ExtractBits(src, 0, 10)
	require.Equal(t, []byte{0xE0, 0x03}, lo)

	hi := ExtractBits(src, 10, 10)
	require.Equal(t, []byte{0x1F, 0x00}, hi)

	require.Equal(t, src[:2], ExtractBits(src, 0, 16))
}

func TestSetCheckBit(t *testing.T) {
	b := make([]byte, 4)
	for _, pos := range []int{0, 7, 8, 31} {
		require.False(t, CheckBit(b, pos))
		SetBit(b, pos)
		require.True(t, CheckBit(b, pos))
	}
	require.Equal(t, []byte{0x81, 0x01, 0x00, 0x80}, b)
}

func TestSeededReaderIsDeterministic(t *testing.T) {
	a, b := NewSeededReaderInt(42), NewSeededReaderInt(42)
	bufA, bufB := make([]byte, 100), make([]byte, 100)
	_, err := a.Read(bufA)
	require.NoError(t, err)
	_, err = b.Read(bufB)
	require.NoError(t, err)
	require.Equal(t, bufA, bufB)

	c := NewSeededReaderInt(43)
	bufC := make([]byte, 100)
	_, err = c.Read(bufC)
	require.NoError(t, err)
	require.False(t, bytes.Equal(bufA, bufC))

	a.Reset()
	again := make([]byte, 100)
	_, err = a.Read(again)
	require.NoError(t, err)
	require.Equal(t, bufA, again)
}
