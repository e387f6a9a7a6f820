package protocol

import "errors"

// Sentinel errors shared by all Scheme implementations, for errors.Is checks.
var (
	// ErrKeyGeneration is returned when no valid key pair could be derived
	// within the scheme's retry bounds.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrMessageTooLarge is returned when a plaintext block does not fit the
	// key's size contract. This is explicit: schemes never truncate silently.
	ErrMessageTooLarge = errors.New("message too large for key")

	// ErrDecryptionFailed is returned when a ciphertext does not decrypt
	// under the given private key. Key mismatch and corrupted ciphertext are
	// deliberately not distinguished.
	ErrDecryptionFailed = errors.New("decryption failed")
)
