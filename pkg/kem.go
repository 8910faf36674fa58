package pkg

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"github.com/MingLLuo/BIKE-KEM/internal"
	"github.com/MingLLuo/BIKE-KEM/pkg/arithmetic"
)

// Common errors that may be returned
var (
	ErrInvalidPublicKey     = errors.New("bike: invalid public key")
	ErrInvalidPrivateKey    = errors.New("bike: invalid private key")
	ErrInvalidCiphertext    = errors.New("bike: invalid ciphertext")
	ErrInvalidSeed          = errors.New("bike: invalid seed")
	ErrParameterValidation  = errors.New("bike: parameter validation failed")
	ErrUnsupportedParameter = errors.New("bike: unsupported parameter set")
	ErrInvalidRandomSource  = errors.New("bike: invalid random source")
	ErrSerializationError   = errors.New("bike: serialization error")
)

// BikeKEM implements the BIKE key encapsulation mechanism for one parameter set.
// It holds no key material and is safe for concurrent use.
type BikeKEM struct {
	Params Parameters
	// Observer, when set, is told the outcome of every decoding run in Decapsulate.
	Observer DecodeObserver
}

// PublicKey represents a BIKE public key h = h1 * h0^-1
type PublicKey struct {
	Params Parameters
	h      []byte
}

// PrivateKey represents a BIKE private key (h0, h1, sigma)
type PrivateKey struct {
	Params Parameters
	h0     []byte
	h1     []byte
	sigma  []byte
	pk     *PublicKey
}

// Bytes returns the serialized form of the public key
func (pk *PublicKey) Bytes() ([]byte, error) {
	if len(pk.h) != pk.Params.PublicKeySize() {
		return nil, fmt.Errorf("%w: public key is not initialized", ErrSerializationError)
	}
	out := make([]byte, len(pk.h))
	copy(out, pk.h)
	return out, nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	return pk.Bytes()
}

// Parameters return the parameters used by this public key
func (pk *PublicKey) Parameters() Parameters {
	return pk.Params
}

// Equal returns true if the public keys are equal
func (pk *PublicKey) Equal(other *PublicKey) bool {
	if other == nil || pk.Params.Name != other.Params.Name {
		return false
	}
	return subtle.ConstantTimeCompare(pk.h, other.h) == 1
}

// UnmarshalBinary deserializes a public key for pk.Params
func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	if len(data) != pk.Params.PublicKeySize() {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrInvalidPublicKey, len(data), pk.Params.PublicKeySize())
	}
	rq, err := arithmetic.NewRing(pk.Params.CodeParams.R)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if _, err := rq.DecodeBytes(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	pk.h = make([]byte, len(data))
	copy(pk.h, data)
	return nil
}

// Bytes returns the serialized form h0 || h1 || sigma of the private key
func (sk *PrivateKey) Bytes() ([]byte, error) {
	if len(sk.h0) != sk.Params.RBytes() || len(sk.sigma) != sk.Params.LBytes() {
		return nil, fmt.Errorf("%w: private key is not initialized", ErrSerializationError)
	}
	out := make([]byte, 0, sk.Params.PrivateKeySize())
	out = append(out, sk.h0...)
	out = append(out, sk.h1...)
	out = append(out, sk.sigma...)
	return out, nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (sk *PrivateKey) MarshalBinary() ([]byte, error) {
	return sk.Bytes()
}

// Parameters return the parameters used by this private key
func (sk *PrivateKey) Parameters() Parameters {
	return sk.Params
}

// Public returns the public key belonging to sk.
// For keys that were parsed rather than generated it is recomputed as h1 * h0^-1.
func (sk *PrivateKey) Public() *PublicKey {
	if sk.pk != nil {
		return sk.pk
	}
	rq, err := arithmetic.NewRing(sk.Params.CodeParams.R)
	if err != nil {
		return nil
	}
	h0, err := rq.DecodeBytes(sk.h0)
	if err != nil {
		return nil
	}
	h1, err := rq.DecodeBytes(sk.h1)
	if err != nil {
		return nil
	}
	h := rq.NewElement()
	rq.Invert(h0, h)
	rq.Multiply(h, h1, h)
	h0.Zero()
	h1.Zero()
	return &PublicKey{Params: sk.Params, h: rq.EncodeBytes(h)}
}

// Equal returns true if the private keys are equal
func (sk *PrivateKey) Equal(other *PrivateKey) bool {
	if other == nil || sk.Params.Name != other.Params.Name {
		return false
	}
	eq := subtle.ConstantTimeCompare(sk.h0, other.h0) &
		subtle.ConstantTimeCompare(sk.h1, other.h1) &
		subtle.ConstantTimeCompare(sk.sigma, other.sigma)
	return eq == 1
}

// UnmarshalBinary deserializes a private key for sk.Params.
// h0 and h1 must each be well-formed and of weight w/2.
func (sk *PrivateKey) UnmarshalBinary(data []byte) error {
	p := sk.Params
	if len(data) != p.PrivateKeySize() {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrInvalidPrivateKey, len(data), p.PrivateKeySize())
	}
	rq, err := arithmetic.NewRing(p.CodeParams.R)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}

	n := p.RBytes()
	parts := [][]byte{data[:n], data[n : 2*n]}
	for i, part := range parts {
		x, err := rq.DecodeBytes(part)
		if err != nil {
			return fmt.Errorf("%w: h%d: %v", ErrInvalidPrivateKey, i, err)
		}
		weight := x.Weight()
		x.Zero()
		if weight != p.HalfWeight() {
			return fmt.Errorf("%w: h%d has weight %d, expected %d", ErrInvalidPrivateKey, i, weight, p.HalfWeight())
		}
	}

	sk.h0 = append([]byte(nil), data[:n]...)
	sk.h1 = append([]byte(nil), data[n:2*n]...)
	sk.sigma = append([]byte(nil), data[2*n:]...)
	sk.pk = nil
	return nil
}

// PublicKeySize returns the size of public keys in bytes
func (kem *BikeKEM) PublicKeySize() int {
	return kem.Params.KeyParams.PublicKeySize
}

// PrivateKeySize returns the size of private keys in bytes
func (kem *BikeKEM) PrivateKeySize() int {
	return kem.Params.KeyParams.PrivateKeySize
}

// CiphertextSize returns the size of ciphertexts in bytes
func (kem *BikeKEM) CiphertextSize() int {
	return kem.Params.KeyParams.CiphertextSize
}

// SharedKeySize returns the size of shared keys in bytes
func (kem *BikeKEM) SharedKeySize() int {
	return kem.Params.KeyParams.SharedKeySize
}

// EncapsulationSeedSize returns the size of the message m consumed by EncapsulateDeterministically
func (kem *BikeKEM) EncapsulationSeedSize() int {
	return kem.Params.LBytes()
}

func (kem *BikeKEM) ring() (*arithmetic.Ring, error) {
	rq, err := arithmetic.NewRing(kem.Params.CodeParams.R)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedParameter, err)
	}
	return rq, nil
}

// GenerateKeyPair generates a key pair using the provided randomness source
func (kem *BikeKEM) GenerateKeyPair(randSource io.Reader) (*PublicKey, *PrivateKey, error) {
	if randSource == nil {
		randSource = rand.Reader
	}

	seed := make([]byte, KeyGenSeedSize)
	defer clear(seed)
	if _, err := io.ReadFull(randSource, seed); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidRandomSource, err)
	}
	return kem.DeriveKeyPair(seed)
}

// DeriveKeyPair deterministically derives a key pair from a KeyGenSeedSize-byte seed.
// The first half of the seed is expanded with SHAKE256 into h0 and h1, the second half is sigma.
func (kem *BikeKEM) DeriveKeyPair(seed []byte) (*PublicKey, *PrivateKey, error) {
	if len(seed) != KeyGenSeedSize {
		return nil, nil, fmt.Errorf("%w: got %d bytes, expected %d", ErrInvalidSeed, len(seed), KeyGenSeedSize)
	}
	p := kem.Params
	rq, err := kem.ring()
	if err != nil {
		return nil, nil, err
	}

	xof := internal.NewXOF(seed[:KeyGenSeedSize/2])
	h0Bytes, err := internal.SampleFixedWeight(xof, p.CodeParams.R, p.HalfWeight())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sample h0: %w", err)
	}
	h1Bytes, err := internal.SampleFixedWeight(xof, p.CodeParams.R, p.HalfWeight())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sample h1: %w", err)
	}

	h0, err := rq.DecodeBytes(h0Bytes)
	if err != nil {
		return nil, nil, err
	}
	h1, err := rq.DecodeBytes(h1Bytes)
	if err != nil {
		return nil, nil, err
	}
	defer h0.Zero()
	defer h1.Zero()

	// h = h1 * h0^-1
	h := rq.NewElement()
	rq.Invert(h0, h)
	rq.Multiply(h, h1, h)

	pk := &PublicKey{Params: p, h: rq.EncodeBytes(h)}
	sk := &PrivateKey{
		Params: p,
		h0:     h0Bytes,
		h1:     h1Bytes,
		sigma:  append([]byte(nil), seed[KeyGenSeedSize/2:KeyGenSeedSize/2+p.LBytes()]...),
		pk:     pk,
	}
	return pk, sk, nil
}

// Encapsulate generates a shared key and its ciphertext for pubKey.
// A nil randSource draws m from crypto/rand.
func (kem *BikeKEM) Encapsulate(pubKey *PublicKey, randSource io.Reader) (ciphertext, sharedKey []byte, err error) {
	if randSource == nil {
		randSource = rand.Reader
	}

	m := make([]byte, kem.Params.LBytes())
	defer clear(m)
	if _, err = io.ReadFull(randSource, m); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidRandomSource, err)
	}
	return kem.EncapsulateDeterministically(pubKey, m)
}

// EncapsulateDeterministically is Encapsulate with the message m supplied by the caller.
// m must be EncapsulationSeedSize bytes of fresh randomness; reusing it reuses the shared key.
func (kem *BikeKEM) EncapsulateDeterministically(pubKey *PublicKey, m []byte) (ciphertext, sharedKey []byte, err error) {
	p := kem.Params
	if pubKey == nil || pubKey.Params.Name != p.Name {
		return nil, nil, fmt.Errorf("%w: parameter set mismatch", ErrInvalidPublicKey)
	}
	if len(m) != p.LBytes() {
		return nil, nil, fmt.Errorf("%w: got %d bytes, expected %d", ErrInvalidSeed, len(m), p.LBytes())
	}
	rq, err := kem.ring()
	if err != nil {
		return nil, nil, err
	}
	h, err := rq.DecodeBytes(pubKey.h)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	r := p.CodeParams.R
	eBytes, err := internal.HashH(m, r, p.CodeParams.T)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sample error vector: %w", err)
	}
	e0Bytes := internal.ExtractBits(eBytes, 0, r)
	e1Bytes := internal.ExtractBits(eBytes, r, r)
	defer clear(eBytes)
	defer clear(e0Bytes)
	defer clear(e1Bytes)

	e0, err := rq.DecodeBytes(e0Bytes)
	if err != nil {
		return nil, nil, err
	}
	e1, err := rq.DecodeBytes(e1Bytes)
	if err != nil {
		return nil, nil, err
	}
	defer e0.Zero()
	defer e1.Zero()

	ciphertext = make([]byte, p.CiphertextSize())
	c0 := ciphertext[:p.RBytes()]
	c1 := ciphertext[p.RBytes():]

	// c0 = e0 + e1*h
	c0Elem := rq.NewElement()
	rq.Multiply(e1, h, c0Elem)
	rq.Add(c0Elem, e0, c0Elem)
	rq.EncodeBytesTo(c0Elem, c0)

	// c1 = m xor L(e0, e1)
	internal.HashL(e0Bytes, e1Bytes, c1)
	subtle.XORBytes(c1, c1, m)

	k := make([]byte, p.LBytes())
	internal.HashK(m, c0, c1, k)
	sharedKey = k[:p.SharedKeySize()]
	return ciphertext, sharedKey, nil
}

// Decapsulate recovers the shared key from ciphertext.
// Malformed input is reported as an error. A well-formed ciphertext always yields a key:
// when decoding or the re-encryption check fails the key is derived from sigma instead of m.
func (kem *BikeKEM) Decapsulate(privKey *PrivateKey, ciphertext []byte) ([]byte, error) {
	key, _, err := kem.decapsulate(privKey, ciphertext)
	return key, err
}

// decapsulate also reports whether the decoder converged.
func (kem *BikeKEM) decapsulate(privKey *PrivateKey, ciphertext []byte) ([]byte, bool, error) {
	p := kem.Params
	if privKey == nil || privKey.Params.Name != p.Name {
		return nil, false, fmt.Errorf("%w: parameter set mismatch", ErrInvalidPrivateKey)
	}
	if len(ciphertext) != p.CiphertextSize() {
		return nil, false, fmt.Errorf("%w: got %d bytes, expected %d", ErrInvalidCiphertext, len(ciphertext), p.CiphertextSize())
	}
	rq, err := kem.ring()
	if err != nil {
		return nil, false, err
	}
	dec, err := newDecoder(p)
	if err != nil {
		return nil, false, err
	}

	c0 := ciphertext[:p.RBytes()]
	c1 := ciphertext[p.RBytes():]
	c0Elem, err := rq.DecodeBytes(c0)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	h0, err := rq.DecodeBytes(privKey.h0)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	h1, err := rq.DecodeBytes(privKey.h1)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	defer h0.Zero()
	defer h1.Zero()

	r := p.CodeParams.R
	// s = c0 * h0 = e0*h0 + e1*h1
	s := rq.NewElement()
	rq.Multiply(c0Elem, h0, s)
	sBytes := rq.EncodeBytes(s)
	syndrome := make([]uint8, r)
	internal.BytesToBits(syndrome, sBytes)
	s.Zero()
	clear(sBytes)

	// decode wipes the support views once done
	eBits, residual := dec.decode(syndrome, compact(h0, r), compact(h1, r))
	clear(syndrome)
	converged := residual == 0
	if kem.Observer != nil {
		kem.Observer.ObserveDecode(p.Name, residual, converged)
	}

	ePrime := make([]byte, p.ErrorVectorBytes())
	internal.BitsToBytes(ePrime, eBits)
	clear(eBits)
	e0Bytes := internal.ExtractBits(ePrime, 0, r)
	e1Bytes := internal.ExtractBits(ePrime, r, r)

	// m' = c1 xor L(e0', e1')
	mPrime := make([]byte, p.LBytes())
	internal.HashL(e0Bytes, e1Bytes, mPrime)
	subtle.XORBytes(mPrime, mPrime, c1)
	clear(e0Bytes)
	clear(e1Bytes)

	expected, err := internal.HashH(mPrime, r, p.CodeParams.T)
	if err != nil {
		return nil, false, fmt.Errorf("failed to sample error vector: %w", err)
	}
	ok := subtle.ConstantTimeCompare(ePrime, expected)
	clear(ePrime)
	clear(expected)

	kin := make([]byte, p.LBytes())
	copy(kin, privKey.sigma)
	subtle.ConstantTimeCopy(ok, kin, mPrime)
	clear(mPrime)

	k := make([]byte, p.LBytes())
	internal.HashK(kin, c0, c1, k)
	clear(kin)
	return k[:p.SharedKeySize()], converged, nil
}
