package user

import "errors"

// Sentinel errors for errors.Is checks.
var (
	// ErrUnknownPublicKey is returned when a message is addressed to a peer
	// whose public key has not been broadcast to this user.
	ErrUnknownPublicKey = errors.New("receiver's public key not known")

	// ErrNoPrivateKey is returned when reading an encrypted message before
	// any key pair has been generated.
	ErrNoPrivateKey = errors.New("no key pair has been generated")

	// ErrNoMessages is returned when reading from an empty mailbox.
	ErrNoMessages = errors.New("mailbox is empty")
)
