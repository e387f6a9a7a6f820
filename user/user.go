// Package user implements one identity inside the sandbox: its key material,
// the public keys it has learned from broadcasts, and its mailbox.
package user

import (
	"fmt"

	"github.com/MichaelS239/cryptography-sandbox/protocol"
)

// User holds one identity's key material and mailbox. Users never talk to
// each other directly: everything they produce is routed by the Environment,
// and the Environment never sees plaintext.
type User struct {
	name      string
	scheme    protocol.Scheme
	keys      *protocol.KeyPair
	knownKeys map[string]protocol.PublicKey
	mailbox   []*protocol.Message
}

// New creates a user with empty key state. Called by the Environment during
// registration.
func New(name string, scheme protocol.Scheme) *User {
	return &User{
		name:      name,
		scheme:    scheme,
		knownKeys: make(map[string]protocol.PublicKey),
	}
}

// Name returns the identity this user is registered under.
func (u *User) Name() string { return u.name }

// PublicKey returns the user's current public key, if a pair has been
// generated.
func (u *User) PublicKey() (protocol.PublicKey, bool) {
	if u.keys == nil {
		return nil, false
	}
	return u.keys.Public, true
}

// KnownKey returns the public key this user has learned for peer, if any.
func (u *User) KnownKey(peer string) (protocol.PublicKey, bool) {
	key, ok := u.knownKeys[peer]
	return key, ok
}

// CreateKeys generates a fresh key pair and returns the broadcast message
// announcing the new public key. Calling it again replaces the stored pair;
// the old private key is gone afterwards, so mailbox entries encrypted under
// it stop decrypting. That is allowed and not an error.
func (u *User) CreateKeys() (*protocol.Message, error) {
	pair, err := u.scheme.GenerateKeys()
	if err != nil {
		return nil, err
	}
	u.keys = pair
	return protocol.NewKeyBroadcast(u.name, pair.Public), nil
}

// CreateMessage encrypts text for the named receiver under the receiver's
// broadcast public key. Texts longer than one engine block are split into
// blocks and the per-block ciphertexts concatenated; the receiver's read
// operation reassembles them transparently.
func (u *User) CreateMessage(receiver, text string) (*protocol.Message, error) {
	key, ok := u.knownKeys[receiver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPublicKey, receiver)
	}
	payload, err := u.seal([]byte(text), key)
	if err != nil {
		return nil, err
	}
	return protocol.NewCiphertextMessage(u.name, receiver, payload), nil
}

// LearnKey records a peer's broadcast public key, replacing any earlier one.
// Called by the Environment while fanning out a broadcast.
func (u *User) LearnKey(peer string, key protocol.PublicKey) {
	u.knownKeys[peer] = key
}

// Deliver appends a routed message to the mailbox. Called by the Environment.
func (u *User) Deliver(msg *protocol.Message) {
	u.mailbox = append(u.mailbox, msg)
}
