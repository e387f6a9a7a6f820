// Package testutil provides shared fixtures for testing the sandbox: a fast
// small-modulus RSA engine and prebuilt environments with an in-memory audit
// sink.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MichaelS239/cryptography-sandbox/crypto"
	"github.com/MichaelS239/cryptography-sandbox/env"
	"github.com/MichaelS239/cryptography-sandbox/protocol"
)

// SchemeConfig is the engine configuration used across the test suites:
// 128-bit primes keep key generation fast, and the resulting 256-bit moduli
// are trivially factorable, which is fine for tests and nothing else.
var SchemeConfig = crypto.Config{
	PrimeBits:         128,
	MillerRabinRounds: 20,
}

// NewScheme returns a fast RSA engine for tests.
func NewScheme(t *testing.T) *crypto.RSA {
	t.Helper()
	scheme, err := crypto.New(SchemeConfig)
	require.NoError(t, err)
	return scheme
}

// NewEnvironment returns an environment backed by the fast scheme and an
// in-memory audit sink, plus the sink for assertions.
func NewEnvironment(t *testing.T) (*env.Environment, *env.MemorySink) {
	t.Helper()
	sink := env.NewMemorySink()
	e, err := env.New(&env.Config{Scheme: NewScheme(t), Audit: sink})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e, sink
}

// GenerateKeyPair returns a fresh key pair from the fast scheme.
func GenerateKeyPair(t *testing.T) *protocol.KeyPair {
	t.Helper()
	pair, err := NewScheme(t).GenerateKeys()
	require.NoError(t, err)
	return pair
}
