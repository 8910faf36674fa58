// Package bike implements the BIKE key encapsulation mechanism, a code-based KEM built on
// quasi-cyclic moderate-density parity-check codes with the Black-Gray-Flip decoder.
package bike

import (
	"crypto/rand"

	circlkem "github.com/cloudflare/circl/kem"

	"github.com/MingLLuo/BIKE-KEM/pkg"
)

type (
	KEM            = pkg.BikeKEM
	PublicKey      = pkg.PublicKey
	PrivateKey     = pkg.PrivateKey
	Parameters     = pkg.Parameters
	DecodeObserver = pkg.DecodeObserver
)

// NewKEM creates a new KEM instance with the specified parameters
func NewKEM(params Parameters) KEM {
	return KEM{
		Params: params,
	}
}

// Encapsulate generates a shared key and encapsulates it for the given public key
func Encapsulate(pk *PublicKey) (ciphertext, sharedKey []byte, err error) {
	kem := NewKEM(pk.Parameters())
	return kem.Encapsulate(pk, rand.Reader)
}

// Decapsulate recovers a shared key from a ciphertext using the given private key
func Decapsulate(sk *PrivateKey, ciphertext []byte) (sharedKey []byte, err error) {
	kem := NewKEM(sk.Parameters())
	return kem.Decapsulate(sk, ciphertext)
}

// GenerateKeyPair generates a new key pair with the specified parameters
func GenerateKeyPair(params Parameters) (*PublicKey, *PrivateKey, error) {
	kem := NewKEM(params)
	return kem.GenerateKeyPair(rand.Reader)
}

// ParsePublicKey parses a serialized public key
func ParsePublicKey(data []byte, params *Parameters) (*PublicKey, error) {
	pk := PublicKey{
		Params: *params,
	}
	if err := pk.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &pk, nil
}

// ParsePrivateKey parses a serialized private key
func ParsePrivateKey(data []byte, params *Parameters) (*PrivateKey, error) {
	sk := PrivateKey{
		Params: *params,
	}
	if err := sk.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &sk, nil
}

// ParameterSet returns a registered parameter set: bike128, bike192 or bike256
func ParameterSet(name string) (Parameters, error) {
	return pkg.GetParameterSet(name)
}

// Scheme returns the KEM for params behind the circl kem.Scheme interface
func Scheme(params Parameters) circlkem.Scheme {
	return pkg.Scheme(params)
}
