package pkg

import (
	"errors"

	circlkem "github.com/cloudflare/circl/kem"
)

type scheme struct {
	kem *BikeKEM
}

type schemePublicKey struct {
	s  *scheme
	pk *PublicKey
}

type schemePrivateKey struct {
	s  *scheme
	sk *PrivateKey
}

// Scheme exposes the BIKE KEM for params through the generic circl kem.Scheme interface.
func Scheme(params Parameters) circlkem.Scheme {
	return &scheme{kem: &BikeKEM{Params: params}}
}

func (s *scheme) Name() string               { return s.kem.Params.Name }
func (s *scheme) PublicKeySize() int         { return s.kem.PublicKeySize() }
func (s *scheme) PrivateKeySize() int        { return s.kem.PrivateKeySize() }
func (s *scheme) CiphertextSize() int        { return s.kem.CiphertextSize() }
func (s *scheme) SharedKeySize() int         { return s.kem.SharedKeySize() }
func (s *scheme) SeedSize() int              { return KeyGenSeedSize }
func (s *scheme) EncapsulationSeedSize() int { return s.kem.EncapsulationSeedSize() }

func (s *scheme) GenerateKeyPair() (circlkem.PublicKey, circlkem.PrivateKey, error) {
	pk, sk, err := s.kem.GenerateKeyPair(nil)
	if err != nil {
		return nil, nil, err
	}
	return &schemePublicKey{s, pk}, &schemePrivateKey{s, sk}, nil
}

func (s *scheme) DeriveKeyPair(seed []byte) (circlkem.PublicKey, circlkem.PrivateKey) {
	if len(seed) != KeyGenSeedSize {
		panic(circlkem.ErrSeedSize)
	}
	pk, sk, err := s.kem.DeriveKeyPair(seed)
	if err != nil {
		panic(err)
	}
	return &schemePublicKey{s, pk}, &schemePrivateKey{s, sk}
}

func (s *scheme) Encapsulate(pk circlkem.PublicKey) (ct, ss []byte, err error) {
	p, ok := pk.(*schemePublicKey)
	if !ok || p.s.Name() != s.Name() {
		return nil, nil, circlkem.ErrTypeMismatch
	}
	return s.kem.Encapsulate(p.pk, nil)
}

func (s *scheme) EncapsulateDeterministically(pk circlkem.PublicKey, seed []byte) (ct, ss []byte, err error) {
	p, ok := pk.(*schemePublicKey)
	if !ok || p.s.Name() != s.Name() {
		return nil, nil, circlkem.ErrTypeMismatch
	}
	if len(seed) != s.EncapsulationSeedSize() {
		return nil, nil, circlkem.ErrSeedSize
	}
	return s.kem.EncapsulateDeterministically(p.pk, seed)
}

func (s *scheme) Decapsulate(sk circlkem.PrivateKey, ct []byte) ([]byte, error) {
	p, ok := sk.(*schemePrivateKey)
	if !ok || p.s.Name() != s.Name() {
		return nil, circlkem.ErrTypeMismatch
	}
	if len(ct) != s.CiphertextSize() {
		return nil, circlkem.ErrCiphertextSize
	}
	return s.kem.Decapsulate(p.sk, ct)
}

func (s *scheme) UnmarshalBinaryPublicKey(buf []byte) (circlkem.PublicKey, error) {
	if len(buf) != s.PublicKeySize() {
		return nil, circlkem.ErrPubKeySize
	}
	pk := &PublicKey{Params: s.kem.Params}
	if err := pk.UnmarshalBinary(buf); err != nil {
		return nil, errors.Join(circlkem.ErrPubKey, err)
	}
	return &schemePublicKey{s, pk}, nil
}

func (s *scheme) UnmarshalBinaryPrivateKey(buf []byte) (circlkem.PrivateKey, error) {
	if len(buf) != s.PrivateKeySize() {
		return nil, circlkem.ErrPrivKeySize
	}
	sk := &PrivateKey{Params: s.kem.Params}
	if err := sk.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return &schemePrivateKey{s, sk}, nil
}

func (k *schemePublicKey) Scheme() circlkem.Scheme         { return k.s }
func (k *schemePublicKey) MarshalBinary() ([]byte, error) { return k.pk.Bytes() }

func (k *schemePublicKey) Equal(other circlkem.PublicKey) bool {
	o, ok := other.(*schemePublicKey)
	return ok && k.pk.Equal(o.pk)
}

func (k *schemePrivateKey) Scheme() circlkem.Scheme         { return k.s }
func (k *schemePrivateKey) MarshalBinary() ([]byte, error) { return k.sk.Bytes() }

func (k *schemePrivateKey) Equal(other circlkem.PrivateKey) bool {
	o, ok := other.(*schemePrivateKey)
	return ok && k.sk.Equal(o.sk)
}

func (k *schemePrivateKey) Public() circlkem.PublicKey {
	return &schemePublicKey{k.s, k.sk.Public()}
}
