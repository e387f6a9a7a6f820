package protocol

import (
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/sha3"
)

// BroadcastReceiver marks a message addressed to every currently registered
// user. It is also the receiver marker written to the audit log.
const BroadcastReceiver = "*"

// PayloadKind distinguishes what a message carries.
type PayloadKind string

const (
	// KindPublicKey marks a key broadcast; the payload is a public key in
	// transport form.
	KindPublicKey PayloadKind = "key"

	// KindCiphertext marks an encrypted message; the payload is ciphertext
	// produced by the sender's scheme.
	KindCiphertext PayloadKind = "ciphertext"
)

// Message is an immutable in-flight record exchanged through the Environment.
// The payload is always either a public key in transport form or ciphertext;
// plaintext never appears in a Message. Messages are created once, by a User
// or by key generation, and never mutated afterwards.
type Message struct {
	id        ulid.ULID
	sender    string
	receiver  string
	kind      PayloadKind
	payload   []byte
	timestamp time.Time
}

// NewKeyBroadcast creates the broadcast message announcing a freshly
// generated public key. Its receiver is the broadcast marker.
func NewKeyBroadcast(sender string, key PublicKey) *Message {
	return newMessage(sender, BroadcastReceiver, KindPublicKey, key.Bytes())
}

// NewCiphertextMessage creates a point-to-point message carrying ciphertext.
func NewCiphertextMessage(sender, receiver string, ciphertext []byte) *Message {
	return newMessage(sender, receiver, KindCiphertext, ciphertext)
}

func newMessage(sender, receiver string, kind PayloadKind, payload []byte) *Message {
	buf := make([]byte, len(payload))
	copy(buf, payload)
	return &Message{
		id:        ulid.Make(),
		sender:    sender,
		receiver:  receiver,
		kind:      kind,
		payload:   buf,
		timestamp: time.Now(),
	}
}

// ID returns the message's unique identifier.
func (m *Message) ID() ulid.ULID { return m.id }

// Sender returns the identity that created the message.
func (m *Message) Sender() string { return m.sender }

// Receiver returns the destination identity, or BroadcastReceiver.
func (m *Message) Receiver() string { return m.receiver }

// IsBroadcast reports whether the message is a key broadcast.
func (m *Message) IsBroadcast() bool { return m.receiver == BroadcastReceiver }

// Kind returns the payload kind.
func (m *Message) Kind() PayloadKind { return m.kind }

// Payload returns a copy of the transport payload.
func (m *Message) Payload() []byte {
	buf := make([]byte, len(m.payload))
	copy(buf, m.payload)
	return buf
}

// PayloadHex returns the payload in the fixed transport encoding used by the
// audit log.
func (m *Message) PayloadHex() string { return hex.EncodeToString(m.payload) }

// Timestamp returns the creation time of the message.
func (m *Message) Timestamp() time.Time { return m.timestamp }

// Fingerprint returns a short identifier for a public key, for diagnostics
// and operational logging. It is a truncated SHA3-256 of the transport form.
func Fingerprint(key PublicKey) string {
	sum := sha3.Sum256(key.Bytes())
	return hex.EncodeToString(sum[:8])
}
