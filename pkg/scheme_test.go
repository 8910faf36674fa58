package pkg

import (
	"bytes"
	"testing"

	circlkem "github.com/cloudflare/circl/kem"
	"github.com/stretchr/testify/require"
)

func TestScheme(t *testing.T) {
	s := Scheme(GetDefaultParameterSet())
	require.Equal(t, "bike128", s.Name())
	require.Equal(t, 1541, s.PublicKeySize())
	require.Equal(t, 3114, s.PrivateKeySize())
	require.Equal(t, 1573, s.CiphertextSize())
	require.Equal(t, 16, s.SharedKeySize())
	require.Equal(t, 64, s.SeedSize())
	require.Equal(t, 32, s.EncapsulationSeedSize())

	pk, sk := s.DeriveKeyPair(bytes.Repeat([]byte{1}, s.SeedSize()))
	ct, ss, err := s.Encapsulate(pk)
	require.NoError(t, err)
	ss2, err := s.Decapsulate(sk, ct)
	require.NoError(t, err)
	require.Equal(t, ss, ss2)

	ppk, err := pk.MarshalBinary()
	require.NoError(t, err)
	pk2, err := s.UnmarshalBinaryPublicKey(ppk)
	require.NoError(t, err)
	require.True(t, pk.Equal(pk2))

	psk, err := sk.MarshalBinary()
	require.NoError(t, err)
	sk2, err := s.UnmarshalBinaryPrivateKey(psk)
	require.NoError(t, err)
	require.True(t, sk.Equal(sk2))
	require.True(t, sk2.Public().Equal(pk))

	seed := bytes.Repeat([]byte{2}, s.EncapsulationSeedSize())
	ct1, ss1, err := s.EncapsulateDeterministically(pk, seed)
	require.NoError(t, err)
	ct2, ss2, err := s.EncapsulateDeterministically(pk2, seed)
	require.NoError(t, err)
	require.Equal(t, ct1, ct2)
	require.Equal(t, ss1, ss2)
}

func TestSchemeErrors(t *testing.T) {
	s := Scheme(GetDefaultParameterSet())
	other, err := GetParameterSet("bike192")
	require.NoError(t, err)
	s2 := Scheme(other)

	pk, sk, err := s.GenerateKeyPair()
	require.NoError(t, err)

	_, err = s.UnmarshalBinaryPublicKey(make([]byte, 10))
	require.ErrorIs(t, err, circlkem.ErrPubKeySize)
	_, err = s.UnmarshalBinaryPrivateKey(make([]byte, 10))
	require.ErrorIs(t, err, circlkem.ErrPrivKeySize)
	_, err = s.Decapsulate(sk, make([]byte, 10))
	require.ErrorIs(t, err, circlkem.ErrCiphertextSize)
	_, _, err = s.EncapsulateDeterministically(pk, make([]byte, 3))
	require.ErrorIs(t, err, circlkem.ErrSeedSize)

	_, _, err = s2.Encapsulate(pk)
	require.ErrorIs(t, err, circlkem.ErrTypeMismatch)
	_, err = s2.Decapsulate(sk, make([]byte, s2.CiphertextSize()))
	require.ErrorIs(t, err, circlkem.ErrTypeMismatch)

	require.Panics(t, func() { s.DeriveKeyPair(make([]byte, 3)) })
}
