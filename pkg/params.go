package pkg

import (
	"fmt"
	"sync"

	"github.com/MingLLuo/BIKE-KEM/pkg/arithmetic"
)

// SecurityLevel represents a standardized security level in bits
type SecurityLevel int

const (
	// Security128 represents 128-bit security level (NIST category 1)
	Security128 SecurityLevel = 128
	// Security192 represents 192-bit security level (NIST category 3)
	Security192 SecurityLevel = 192
	// Security256 represents 256-bit security level (NIST category 5)
	Security256 SecurityLevel = 256
)

// KeyGenSeedSize is the number of random bytes consumed by key generation:
// the first half seeds the XOF that samples h0 and h1, the second half becomes sigma.
const KeyGenSeedSize = 64

// Parameters is one immutable BIKE configuration.
type Parameters struct {
	Name string
	// SecurityLevel is the claimed security level in bits
	SecurityLevel SecurityLevel
	// CodeParams defines the QC-MDPC code
	CodeParams CodeParameters
	// DecoderParams defines the BGF decoder schedule
	DecoderParams DecoderParameters
	// KeyParams holds the derived encoding sizes
	KeyParams KeyParameters
}

// CodeParameters contains the parameters of the quasi-cyclic code
type CodeParameters struct {
	// R is the prime block length, the degree of the ring GF(2)[x]/(x^r+1)
	R int
	// W is the row weight of the private parity-check matrix (h0 and h1 each have weight W/2)
	W int
	// T is the weight of the error vector (e0, e1)
	T int
	// L is the bit length of messages, sigma and the untruncated shared secret
	L int
}

// DecoderParameters contains the parameters of the Black-Gray-Flip decoder
type DecoderParameters struct {
	// NbIter is the total number of decoding rounds
	NbIter int
	// Tau is the gray-zone width below the flipping threshold
	Tau int
}

// KeyParameters contains the encoded sizes in bytes
type KeyParameters struct {
	PublicKeySize  int
	PrivateKeySize int
	CiphertextSize int
	SharedKeySize  int
}

// ParameterRegistry manages parameter sets
type ParameterRegistry struct {
	mu         sync.RWMutex
	paramSets  map[string]Parameters
	defaultSet string
}

var globalRegistry = &ParameterRegistry{
	paramSets:  make(map[string]Parameters),
	defaultSet: "bike128",
}

// Initialize the registry with the three standard parameter sets
func init() {
	RegisterParameterSet(NewParameters("bike128", Security128, 12323, 142, 134, 256, 5, 3))
	RegisterParameterSet(NewParameters("bike192", Security192, 24659, 206, 199, 256, 5, 3))
	RegisterParameterSet(NewParameters("bike256", Security256, 40973, 274, 264, 256, 5, 3))
}

// RegisterParameterSet adds a parameter set to the registry
func RegisterParameterSet(params Parameters) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	globalRegistry.paramSets[params.Name] = params
}

// GetParameterSet retrieves a parameter set by name
func GetParameterSet(name string) (Parameters, error) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	params, ok := globalRegistry.paramSets[name]
	if !ok {
		return Parameters{}, fmt.Errorf("%w: parameter set %s not found", ErrUnsupportedParameter, name)
	}

	return params, nil
}

// GetDefaultParameterSet returns the default parameter set
func GetDefaultParameterSet() Parameters {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	return globalRegistry.paramSets[globalRegistry.defaultSet]
}

// SetDefaultParameterSet sets the default parameter set
func SetDefaultParameterSet(name string) error {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, ok := globalRegistry.paramSets[name]; !ok {
		return fmt.Errorf("%w: parameter set %s not found", ErrUnsupportedParameter, name)
	}

	globalRegistry.defaultSet = name
	return nil
}

// ListParameterSets returns the registered parameter set names in ascending security order
func ListParameterSets() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	names := make([]string, 0, len(globalRegistry.paramSets))
	for _, level := range []SecurityLevel{Security128, Security192, Security256} {
		for name, p := range globalRegistry.paramSets {
			if p.SecurityLevel == level {
				names = append(names, name)
			}
		}
	}

	return names
}

// DefaultParameters returns the parameter set for the given security level
func DefaultParameters(level SecurityLevel) (Parameters, error) {
	return GetParameterSet(fmt.Sprintf("bike%d", level))
}

// NewParameters builds a parameter set and fills in the derived sizes
func NewParameters(name string, level SecurityLevel, r, w, t, l, nbIter, tau int) Parameters {
	param := Parameters{
		Name:          name,
		SecurityLevel: level,
		CodeParams: CodeParameters{
			R: r,
			W: w,
			T: t,
			L: l,
		},
		DecoderParams: DecoderParameters{
			NbIter: nbIter,
			Tau:    tau,
		},
	}
	param.KeyParams = KeyParameters{
		PublicKeySize:  param.PublicKeySize(),
		PrivateKeySize: param.PrivateKeySize(),
		CiphertextSize: param.CiphertextSize(),
		SharedKeySize:  param.SharedKeySize(),
	}
	return param
}

// RBytes is the size of an encoded ring element, ceil(r/8)
func (p Parameters) RBytes() int {
	return (p.CodeParams.R + 7) / 8
}

// LBytes is the size of m, sigma, c1 and the untruncated shared secret
func (p Parameters) LBytes() int {
	return p.CodeParams.L / 8
}

// HalfWeight is the weight of each of h0 and h1
func (p Parameters) HalfWeight() int {
	return p.CodeParams.W / 2
}

// ErrorVectorBytes is the size of a packed 2r-bit error vector
func (p Parameters) ErrorVectorBytes() int {
	return (2*p.CodeParams.R + 7) / 8
}

// PublicKeySize is ceil(r/8): the encoding of h
func (p Parameters) PublicKeySize() int {
	return p.RBytes()
}

// PrivateKeySize is the encoding of h0 || h1 || sigma
func (p Parameters) PrivateKeySize() int {
	return 2*p.RBytes() + p.LBytes()
}

// CiphertextSize is the encoding of c0 || c1
func (p Parameters) CiphertextSize() int {
	return p.RBytes() + p.LBytes()
}

// SharedKeySize is the shared secret size at the KEM boundary, securityBits/8
func (p Parameters) SharedKeySize() int {
	return int(p.SecurityLevel) / 8
}

// Validate checks that the parameters describe a usable BIKE instance
func (p Parameters) Validate() error {
	r := p.CodeParams.R
	w := p.CodeParams.W
	t := p.CodeParams.T
	l := p.CodeParams.L

	if r <= 0 || w <= 0 || t <= 0 || l <= 0 {
		return fmt.Errorf("%w: %s: non-positive code parameter", ErrParameterValidation, p.Name)
	}
	if !arithmetic.IsSupportedDegree(r) {
		return fmt.Errorf("%w: %s: r=%d", ErrUnsupportedParameter, p.Name, r)
	}
	if !isPrime(r) || !twoIsPrimitive(r) {
		return fmt.Errorf("%w: %s: x^r+1 must factor as (x+1) times an irreducible polynomial", ErrParameterValidation, p.Name)
	}
	if w%2 != 0 || (w/2)%2 == 0 {
		// odd-weight h0 is always invertible
		return fmt.Errorf("%w: %s: w/2 must be odd, got w=%d", ErrParameterValidation, p.Name, w)
	}
	if t >= 2*r || w/2 >= r {
		return fmt.Errorf("%w: %s: weights exceed block length", ErrParameterValidation, p.Name)
	}
	if l%8 != 0 || p.LBytes() > KeyGenSeedSize/2 {
		return fmt.Errorf("%w: %s: l=%d must be a multiple of 8 and at most %d bits", ErrParameterValidation, p.Name, l, 8*KeyGenSeedSize/2)
	}
	if p.SharedKeySize() <= 0 || p.SharedKeySize() > p.LBytes() {
		return fmt.Errorf("%w: %s: shared key of %d bytes cannot be cut from %d", ErrParameterValidation, p.Name, p.SharedKeySize(), p.LBytes())
	}
	if p.DecoderParams.NbIter < 1 || p.DecoderParams.Tau < 0 {
		return fmt.Errorf("%w: %s: invalid decoder schedule", ErrParameterValidation, p.Name)
	}
	coeffs, err := thresholdFor(r)
	if err != nil {
		return err
	}
	if p.DecoderParams.Tau >= coeffs.floor {
		return fmt.Errorf("%w: %s: tau=%d reaches below zero threshold", ErrParameterValidation, p.Name, p.DecoderParams.Tau)
	}
	return nil
}
