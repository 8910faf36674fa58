package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashH(t *testing.T) {
	m := bytes.Repeat([]byte{0x5a}, 32)
	e, err := HashH(m, 12323, 134)
	require.NoError(t, err)
	require.Len(t, e, (2*12323+7)/8)
	require.Equal(t, 134, HammingWeightBytes(e))

	again, err := HashH(m, 12323, 134)
	require.NoError(t, err)
	require.Equal(t, e, again)

	e0 := ExtractBits(e, 0, 12323)
	e1 := ExtractBits(e, 12323, 12323)
	require.Equal(t, 134, HammingWeightBytes(e0)+HammingWeightBytes(e1))
}

func TestHashLK(t *testing.T) {
	e0, e1 := []byte{1, 2, 3}, []byte{4, 5, 6}
	l1, l2 := make([]byte, 32), make([]byte, 32)
	HashL(e0, e1, l1)
	HashL(e0, e1, l2)
	require.Equal(t, l1, l2)

	HashL(e1, e0, l2)
	require.NotEqual(t, l1, l2)

	k1, k2 := make([]byte, 16), make([]byte, 32)
	HashK(e0, e1, []byte{7}, k1)
	HashK(e0, e1, []byte{7}, k2)
	require.Equal(t, k1, k2[:16], "truncation keeps the digest prefix")
	HashK(e0, e1, []byte{8}, k2)
	require.NotEqual(t, k1, k2[:16])
}
