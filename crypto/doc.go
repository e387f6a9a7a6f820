// Package crypto implements the RSA engine behind the protocol.Scheme
// abstraction: textbook modular-exponentiation RSA over math/big integers.
//
// The package carries all the numeric machinery the engine needs:
//
//   - A sieve of Eratosthenes producing small primes for cheap trial division
//   - Probabilistic primality testing (repeated Miller-Rabin rounds, error
//     probability bounded by 4^-rounds and configurable)
//   - Fast modular exponentiation by square-and-multiply
//   - Modular inverses via the extended Euclidean algorithm
//
// # Key generation
//
// Two independent primes p and q of the configured bit length are generated,
// the modulus n = p*q and totient phi = (p-1)(q-1) computed, and the private
// exponent d derived as the inverse of the fixed public exponent 65537 modulo
// phi. In the rare case that 65537 divides phi, both primes are re-derived;
// generation fails with protocol.ErrKeyGeneration after bounded retries.
//
// # Encoding
//
// A plaintext block is padded PKCS#1-v1.5 style (0x00 0x02, random nonzero
// filler, 0x00, block) and read as a big-endian integer, which is strictly
// below the modulus by construction. The padding makes encryption randomized
// and gives decryption a structural validity check: a ciphertext produced
// under the wrong key unpads to garbage and fails. Blocks that do not fit the
// modulus are rejected with protocol.ErrMessageTooLarge, never truncated.
//
// # Security margin
//
// The prime bit length is a Config parameter. The defaults are sized for
// demonstrations; nothing here is hardened against side channels, and small
// configured moduli are trivially factorable. Do not use this engine to
// protect real data.
package crypto
