package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/MichaelS239/cryptography-sandbox/protocol"
)

const (
	// publicExponent is the fixed, well-known RSA public exponent.
	publicExponent = 65537

	// paddingOverhead is the per-block cost of the PKCS#1-v1.5-style
	// encoding: two header bytes, at least eight filler bytes, one separator.
	paddingOverhead = 11

	// maxKeygenAttempts bounds regeneration when the public exponent is not
	// coprime with the totient. With e = 65537 this effectively never trips.
	maxKeygenAttempts = 16
)

// RSA implements protocol.Scheme with modular-exponentiation RSA over
// arbitrary-precision integers. See the package documentation for the
// encoding and the security caveats.
type RSA struct {
	cfg Config
}

// New creates an engine with the given security-margin configuration.
func New(cfg Config) (*RSA, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid rsa config: %w", err)
	}
	return &RSA{cfg: cfg}, nil
}

// NewDefault creates an engine with demonstration defaults.
func NewDefault() *RSA {
	return &RSA{cfg: DefaultConfig()}
}

// Name implements protocol.Scheme.
func (r *RSA) Name() string { return SchemeName }

// GenerateKeys implements protocol.Scheme. Each call derives two fresh
// independent primes; the resulting pair shares nothing with earlier calls.
func (r *RSA) GenerateKeys() (*protocol.KeyPair, error) {
	e := big.NewInt(publicExponent)

	for attempt := 0; attempt < maxKeygenAttempts; attempt++ {
		p, err := generatePrime(r.cfg.PrimeBits, r.cfg.MillerRabinRounds)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", protocol.ErrKeyGeneration, err)
		}
		q, err := generatePrime(r.cfg.PrimeBits, r.cfg.MillerRabinRounds)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", protocol.ErrKeyGeneration, err)
		}
		if p.Cmp(q) == 0 {
			continue
		}

		n := new(big.Int).Mul(p, q)
		totient := new(big.Int).Mul(
			new(big.Int).Sub(p, one),
			new(big.Int).Sub(q, one),
		)

		// e must be invertible mod the totient; re-derive both primes if not.
		if gcd(e, totient).Cmp(one) != 0 {
			continue
		}
		d, err := modInverse(e, totient)
		if err != nil {
			continue
		}

		return &protocol.KeyPair{
			Public:  &PublicKey{n: n, e: new(big.Int).Set(e)},
			Private: &PrivateKey{n: n, d: d},
		}, nil
	}
	return nil, fmt.Errorf("%w: no valid key pair after %d attempts", protocol.ErrKeyGeneration, maxKeygenAttempts)
}

// MaxPlaintext implements protocol.Scheme. The limit is the modulus size
// minus the padding overhead.
func (r *RSA) MaxPlaintext(key protocol.PublicKey) (int, error) {
	pub, err := r.publicKey(key)
	if err != nil {
		return 0, err
	}
	return modulusSize(pub.n) - paddingOverhead, nil
}

// Encrypt implements protocol.Scheme: pad, read as an integer m, compute
// c = m^e mod n. The padded block starts with a zero byte, so m < n holds by
// construction and decryption never sees an out-of-range value it produced.
func (r *RSA) Encrypt(plaintext []byte, key protocol.PublicKey) ([]byte, error) {
	pub, err := r.publicKey(key)
	if err != nil {
		return nil, err
	}
	k := modulusSize(pub.n)
	if len(plaintext) > k-paddingOverhead {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d-byte limit of this modulus",
			protocol.ErrMessageTooLarge, len(plaintext), k-paddingOverhead)
	}

	em, err := pad(plaintext, k)
	if err != nil {
		return nil, err
	}
	m := new(big.Int).SetBytes(em)
	c := expMod(m, pub.e, pub.n)
	return c.FillBytes(make([]byte, k)), nil
}

// Decrypt implements protocol.Scheme: m = c^d mod n, then strip and verify
// the padding. Every failure mode maps to the same ErrDecryptionFailed; the
// engine does not reveal whether the key mismatched or the ciphertext was
// malformed.
func (r *RSA) Decrypt(ciphertext []byte, key protocol.PrivateKey) ([]byte, error) {
	priv, err := r.privateKey(key)
	if err != nil {
		return nil, err
	}
	c := new(big.Int).SetBytes(ciphertext)
	if c.Cmp(priv.n) >= 0 {
		return nil, protocol.ErrDecryptionFailed
	}
	m := expMod(c, priv.d, priv.n)
	em := m.FillBytes(make([]byte, modulusSize(priv.n)))
	return unpad(em)
}

// ParsePublicKey implements protocol.Scheme.
func (r *RSA) ParsePublicKey(data []byte) (protocol.PublicKey, error) {
	return parsePublicKey(data)
}

func (r *RSA) publicKey(key protocol.PublicKey) (*PublicKey, error) {
	pub, ok := key.(*PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key belongs to scheme %q, not %q", key.Scheme(), SchemeName)
	}
	return pub, nil
}

func (r *RSA) privateKey(key protocol.PrivateKey) (*PrivateKey, error) {
	priv, ok := key.(*PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key belongs to scheme %q, not %q", key.Scheme(), SchemeName)
	}
	return priv, nil
}

// modulusSize returns the modulus length in bytes.
func modulusSize(n *big.Int) int {
	return (n.BitLen() + 7) / 8
}

// pad produces the k-byte encoded block 0x00 0x02 || PS || 0x00 || plaintext
// with PS random and nonzero, at least eight bytes long.
func pad(plaintext []byte, k int) ([]byte, error) {
	em := make([]byte, k)
	em[1] = 0x02
	ps := em[2 : k-len(plaintext)-1]
	if _, err := rand.Read(ps); err != nil {
		return nil, fmt.Errorf("drawing padding: %w", err)
	}
	for i := range ps {
		for ps[i] == 0 {
			var b [1]byte
			if _, err := rand.Read(b[:]); err != nil {
				return nil, fmt.Errorf("drawing padding: %w", err)
			}
			ps[i] = b[0]
		}
	}
	copy(em[k-len(plaintext):], plaintext)
	return em, nil
}

// unpad validates the block structure and returns the plaintext. The single
// error value covers all structural defects.
func unpad(em []byte) ([]byte, error) {
	if len(em) < paddingOverhead || em[0] != 0x00 || em[1] != 0x02 {
		return nil, protocol.ErrDecryptionFailed
	}
	sep := -1
	for i := 2; i < len(em); i++ {
		if em[i] == 0x00 {
			sep = i
			break
		}
	}
	if sep < 2+8 {
		return nil, protocol.ErrDecryptionFailed
	}
	out := make([]byte, len(em)-sep-1)
	copy(out, em[sep+1:])
	return out, nil
}
