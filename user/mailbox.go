package user

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/MichaelS239/cryptography-sandbox/protocol"
)

// Received is what the reading user actually sees: a mailbox entry after
// decryption. For key broadcasts the text is the key's transport form in hex.
type Received struct {
	Sender    string
	Receiver  string
	Text      string
	Timestamp time.Time
}

// ReadLastMessage returns the most recently arrived message, decrypted with
// this user's private key. Reading is a peek: the entry stays in the mailbox
// until deleted explicitly.
func (u *User) ReadLastMessage() (*Received, error) {
	if len(u.mailbox) == 0 {
		return nil, ErrNoMessages
	}
	return u.open(u.mailbox[len(u.mailbox)-1])
}

// ReadMessage returns the message at position i in arrival order, decrypted.
func (u *User) ReadMessage(i int) (*Received, error) {
	if len(u.mailbox) == 0 {
		return nil, ErrNoMessages
	}
	if i < 0 || i >= len(u.mailbox) {
		return nil, fmt.Errorf("message index %d out of range [0, %d)", i, len(u.mailbox))
	}
	return u.open(u.mailbox[i])
}

// ReadAllMessages returns every mailbox entry in arrival order, decrypted.
func (u *User) ReadAllMessages() ([]*Received, error) {
	out := make([]*Received, 0, len(u.mailbox))
	for _, msg := range u.mailbox {
		rec, err := u.open(msg)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// MailboxLen reports how many messages the mailbox currently holds.
func (u *User) MailboxLen() int { return len(u.mailbox) }

// DeleteLastMessage removes the most recently arrived message, if any.
func (u *User) DeleteLastMessage() {
	if len(u.mailbox) > 0 {
		u.mailbox = u.mailbox[:len(u.mailbox)-1]
	}
}

// DeleteMessage removes the message at position i in arrival order.
func (u *User) DeleteMessage(i int) error {
	if i < 0 || i >= len(u.mailbox) {
		return fmt.Errorf("message index %d out of range [0, %d)", i, len(u.mailbox))
	}
	u.mailbox = append(u.mailbox[:i], u.mailbox[i+1:]...)
	return nil
}

// DeleteAllMessages empties the mailbox.
func (u *User) DeleteAllMessages() {
	u.mailbox = nil
}

func (u *User) open(msg *protocol.Message) (*Received, error) {
	rec := &Received{
		Sender:    msg.Sender(),
		Receiver:  msg.Receiver(),
		Timestamp: msg.Timestamp(),
	}
	switch msg.Kind() {
	case protocol.KindPublicKey:
		// Broadcasts are not encrypted; expose the key's transport form.
		rec.Text = msg.PayloadHex()
		return rec, nil
	case protocol.KindCiphertext:
		if u.keys == nil {
			return nil, ErrNoPrivateKey
		}
		text, err := u.unseal(msg.Payload())
		if err != nil {
			return nil, err
		}
		rec.Text = text
		return rec, nil
	default:
		return nil, fmt.Errorf("unknown payload kind %q", msg.Kind())
	}
}

// seal splits plaintext into engine-sized blocks and concatenates the
// per-block ciphertexts, each with a 2-byte big-endian length prefix.
func (u *User) seal(plaintext []byte, key protocol.PublicKey) ([]byte, error) {
	max, err := u.scheme.MaxPlaintext(key)
	if err != nil {
		return nil, err
	}
	if max <= 0 {
		return nil, fmt.Errorf("scheme %q reports unusable block size %d", u.scheme.Name(), max)
	}

	var buf bytes.Buffer
	rest := plaintext
	for {
		block := rest
		if len(block) > max {
			block = rest[:max]
		}
		rest = rest[len(block):]

		ct, err := u.scheme.Encrypt(block, key)
		if err != nil {
			return nil, err
		}
		if len(ct) > math.MaxUint16 {
			return nil, fmt.Errorf("ciphertext block of %d bytes exceeds transport limit", len(ct))
		}
		var prefix [2]byte
		binary.BigEndian.PutUint16(prefix[:], uint16(len(ct)))
		buf.Write(prefix[:])
		buf.Write(ct)

		if len(rest) == 0 {
			break
		}
	}
	return buf.Bytes(), nil
}

// unseal parses the length-prefixed blocks and decrypts each in order.
// Framing defects count as corrupted ciphertext.
func (u *User) unseal(payload []byte) (string, error) {
	var text bytes.Buffer
	for len(payload) > 0 {
		if len(payload) < 2 {
			return "", fmt.Errorf("%w: truncated block header", protocol.ErrDecryptionFailed)
		}
		ctLen := int(binary.BigEndian.Uint16(payload))
		payload = payload[2:]
		if ctLen == 0 || len(payload) < ctLen {
			return "", fmt.Errorf("%w: truncated ciphertext block", protocol.ErrDecryptionFailed)
		}
		block, err := u.scheme.Decrypt(payload[:ctLen], u.keys.Private)
		if err != nil {
			return "", err
		}
		text.Write(block)
		payload = payload[ctLen:]
	}
	return text.String(), nil
}
