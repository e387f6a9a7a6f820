package crypto

import "fmt"

const (
	// DefaultPrimeBits is the default bit length of each generated prime,
	// giving a 1024-bit modulus. Demonstration-grade only.
	DefaultPrimeBits = 512

	// DefaultMillerRabinRounds bounds the primality error probability at
	// 4^-40 per generated prime.
	DefaultMillerRabinRounds = 40

	// minPrimeBits keeps the modulus large enough for the padding overhead
	// plus at least one plaintext byte.
	minPrimeBits = 64
)

// Config holds the engine's security-margin parameters.
type Config struct {
	// PrimeBits is the bit length of each of the two generated primes.
	PrimeBits int `yaml:"prime_bits"`

	// MillerRabinRounds is the number of Miller-Rabin rounds per candidate.
	MillerRabinRounds int `yaml:"miller_rabin_rounds"`
}

// DefaultConfig returns the demonstration defaults.
func DefaultConfig() Config {
	return Config{
		PrimeBits:         DefaultPrimeBits,
		MillerRabinRounds: DefaultMillerRabinRounds,
	}
}

func (c Config) validate() error {
	if c.PrimeBits < minPrimeBits {
		return fmt.Errorf("prime bit length %d below minimum %d", c.PrimeBits, minPrimeBits)
	}
	if c.MillerRabinRounds < 1 {
		return fmt.Errorf("miller-rabin rounds must be positive, got %d", c.MillerRabinRounds)
	}
	return nil
}
