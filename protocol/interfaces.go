// Package protocol defines the cryptographic capability set every scheme in
// the sandbox must provide, together with the Message value type that moves
// key broadcasts and ciphertext between users.
//
// The Scheme interface is the extension point of the whole system: plugging
// in a new cipher means implementing Scheme and nothing else. The Environment
// and User types are written purely against this contract.
package protocol

// PublicKey is the shareable half of a key pair. Bytes returns the transport
// form, which is what key broadcasts carry and what the audit log records.
type PublicKey interface {
	// Scheme names the protocol that produced this key.
	Scheme() string

	// Bytes returns the key in transport form.
	Bytes() []byte

	// String returns the hex encoding of the transport form.
	String() string
}

// PrivateKey is the secret half of a key pair. The interface deliberately has
// no serialization method: every path that accepts loggable payloads is typed
// against transport bytes, so private key material structurally cannot reach
// a Message or the audit log.
type PrivateKey interface {
	// Scheme names the protocol that produced this key.
	Scheme() string
}

// KeyPair holds both halves of a freshly generated key pair. It exists only
// in memory, inside the User that generated it.
type KeyPair struct {
	Public  PublicKey
	Private PrivateKey
}

// Scheme is the capability set of an asymmetric cipher.
type Scheme interface {
	// Name identifies the scheme, e.g. "rsa".
	Name() string

	// GenerateKeys produces a fresh, independent key pair on every call.
	GenerateKeys() (*KeyPair, error)

	// Encrypt transforms a single plaintext block under the given public key.
	// Blocks longer than MaxPlaintext fail with ErrMessageTooLarge. The
	// transform may be randomized; the only guarantee is that Decrypt under
	// the matching private key restores the block exactly.
	Encrypt(plaintext []byte, key PublicKey) ([]byte, error)

	// Decrypt inverts Encrypt. It fails with ErrDecryptionFailed when the
	// ciphertext was not produced under the corresponding public key or is
	// structurally invalid; the two cases are not distinguished.
	Decrypt(ciphertext []byte, key PrivateKey) ([]byte, error)

	// ParsePublicKey reconstructs a public key from its transport form.
	ParsePublicKey(data []byte) (PublicKey, error)

	// MaxPlaintext reports the largest plaintext block Encrypt accepts under
	// the given key. Callers with longer payloads must chunk.
	MaxPlaintext(key PublicKey) (int, error)
}
