package internal

import (
	"encoding/binary"

	"github.com/tuneinsight/lattigo/v6/utils/sampling"
)

// SeededReader implements the io.Reader interface and generates deterministic random data
// from a fixed seed. It is meant for known-answer runs, never for production keys.
type SeededReader struct {
	prng *sampling.KeyedPRNG
}

// NewSeededReader creates a new SeededReader keyed with seed.
func NewSeededReader(seed []byte) (*SeededReader, error) {
	prng, err := sampling.NewKeyedPRNG(seed)
	if err != nil {
		return nil, err
	}
	return &SeededReader{prng: prng}, nil
}

// NewSeededReaderInt creates a SeededReader keyed with the little-endian encoding of seed.
func NewSeededReaderInt(seed int64) *SeededReader {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], uint64(seed))
	sr, err := NewSeededReader(key[:])
	if err != nil {
		// blake2b only rejects keys longer than 64 bytes
		panic(err)
	}
	return sr
}

// Read fills p with the next bytes of the keyed stream.
func (sr *SeededReader) Read(p []byte) (int, error) {
	return sr.prng.Read(p)
}

// Reset rewinds the stream to its first byte.
func (sr *SeededReader) Reset() {
	sr.prng.Reset()
}
