package user_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelS239/cryptography-sandbox/protocol"
	"github.com/MichaelS239/cryptography-sandbox/testutil"
	"github.com/MichaelS239/cryptography-sandbox/user"
)

// newSelfMailer returns a user that knows its own public key, so it can send
// to itself without an environment.
func newSelfMailer(t *testing.T, name string) *user.User {
	t.Helper()
	u := user.New(name, testutil.NewScheme(t))
	_, err := u.CreateKeys()
	require.NoError(t, err)
	pub, ok := u.PublicKey()
	require.True(t, ok)
	u.LearnKey(name, pub)
	return u
}

func TestNewUserHasEmptyState(t *testing.T) {
	u := user.New("Alice", testutil.NewScheme(t))

	assert.Equal(t, "Alice", u.Name())
	_, ok := u.PublicKey()
	assert.False(t, ok)
	assert.Zero(t, u.MailboxLen())
}

func TestCreateKeysBroadcast(t *testing.T) {
	u := user.New("Alice", testutil.NewScheme(t))

	msg, err := u.CreateKeys()
	require.NoError(t, err)

	assert.Equal(t, "Alice", msg.Sender())
	assert.Equal(t, protocol.BroadcastReceiver, msg.Receiver())
	assert.Equal(t, protocol.KindPublicKey, msg.Kind())

	pub, ok := u.PublicKey()
	require.True(t, ok)
	assert.Equal(t, pub.Bytes(), msg.Payload())
}

func TestCreateKeysReplacesPair(t *testing.T) {
	u := user.New("Alice", testutil.NewScheme(t))

	_, err := u.CreateKeys()
	require.NoError(t, err)
	first, _ := u.PublicKey()

	_, err = u.CreateKeys()
	require.NoError(t, err)
	second, _ := u.PublicKey()

	assert.NotEqual(t, first.Bytes(), second.Bytes())
}

func TestCreateMessageUnknownReceiver(t *testing.T) {
	u := user.New("Alice", testutil.NewScheme(t))

	_, err := u.CreateMessage("Bob", "Hello, Bob!")
	require.ErrorIs(t, err, user.ErrUnknownPublicKey)
}

func TestSendToMyself(t *testing.T) {
	u := newSelfMailer(t, "Alice")

	msg, err := u.CreateMessage("Alice", "Hello, me!")
	require.NoError(t, err)
	assert.Equal(t, "Alice", msg.Sender())
	assert.Equal(t, "Alice", msg.Receiver())
	assert.Equal(t, protocol.KindCiphertext, msg.Kind())
	assert.NotContains(t, string(msg.Payload()), "Hello, me!")

	u.Deliver(msg)

	got, err := u.ReadLastMessage()
	require.NoError(t, err)
	assert.Equal(t, "Hello, me!", got.Text)
	assert.Equal(t, "Alice", got.Sender)
}

func TestChunkedLongMessage(t *testing.T) {
	u := newSelfMailer(t, "Alice")

	// far beyond one engine block for the 256-bit test modulus
	text := strings.Repeat("A long line that does not fit into one block. ", 10)
	msg, err := u.CreateMessage("Alice", text)
	require.NoError(t, err)

	u.Deliver(msg)
	got, err := u.ReadLastMessage()
	require.NoError(t, err)
	assert.Equal(t, text, got.Text)
}

func TestEmptyMessageRoundTrip(t *testing.T) {
	u := newSelfMailer(t, "Alice")

	msg, err := u.CreateMessage("Alice", "")
	require.NoError(t, err)
	u.Deliver(msg)

	got, err := u.ReadLastMessage()
	require.NoError(t, err)
	assert.Equal(t, "", got.Text)
}

func TestReadIsPeek(t *testing.T) {
	u := newSelfMailer(t, "Alice")

	msg, err := u.CreateMessage("Alice", "still here")
	require.NoError(t, err)
	u.Deliver(msg)

	first, err := u.ReadLastMessage()
	require.NoError(t, err)
	second, err := u.ReadLastMessage()
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, u.MailboxLen())
}

func TestReadByIndexAndAll(t *testing.T) {
	u := newSelfMailer(t, "Alice")
	for _, text := range []string{"one", "two", "three"} {
		msg, err := u.CreateMessage("Alice", text)
		require.NoError(t, err)
		u.Deliver(msg)
	}

	got, err := u.ReadMessage(1)
	require.NoError(t, err)
	assert.Equal(t, "two", got.Text)

	all, err := u.ReadAllMessages()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "one", all[0].Text)
	assert.Equal(t, "three", all[2].Text)

	_, err = u.ReadMessage(3)
	require.Error(t, err)
	_, err = u.ReadMessage(-1)
	require.Error(t, err)
}

func TestDeleteMessages(t *testing.T) {
	u := newSelfMailer(t, "Alice")
	for _, text := range []string{"one", "two", "three"} {
		msg, err := u.CreateMessage("Alice", text)
		require.NoError(t, err)
		u.Deliver(msg)
	}

	u.DeleteLastMessage()
	assert.Equal(t, 2, u.MailboxLen())
	got, err := u.ReadLastMessage()
	require.NoError(t, err)
	assert.Equal(t, "two", got.Text)

	require.NoError(t, u.DeleteMessage(0))
	got, err = u.ReadMessage(0)
	require.NoError(t, err)
	assert.Equal(t, "two", got.Text)

	require.Error(t, u.DeleteMessage(5))

	u.DeleteAllMessages()
	assert.Zero(t, u.MailboxLen())
}

func TestReadEmptyMailbox(t *testing.T) {
	u := user.New("Alice", testutil.NewScheme(t))

	_, err := u.ReadLastMessage()
	require.ErrorIs(t, err, user.ErrNoMessages)
	_, err = u.ReadMessage(0)
	require.ErrorIs(t, err, user.ErrNoMessages)
}

func TestReadCiphertextWithoutKeys(t *testing.T) {
	u := user.New("Bob", testutil.NewScheme(t))
	u.Deliver(protocol.NewCiphertextMessage("Alice", "Bob", []byte{0x00, 0x03, 0x01, 0x02, 0x03}))

	_, err := u.ReadLastMessage()
	require.ErrorIs(t, err, user.ErrNoPrivateKey)
}

func TestStaleKeyNoLongerDecrypts(t *testing.T) {
	u := newSelfMailer(t, "Alice")

	msg, err := u.CreateMessage("Alice", "sealed under the old key")
	require.NoError(t, err)
	u.Deliver(msg)

	// rotation replaces the pair; the old private key is unrecoverable
	_, err = u.CreateKeys()
	require.NoError(t, err)

	_, err = u.ReadLastMessage()
	require.ErrorIs(t, err, protocol.ErrDecryptionFailed)
}

func TestBroadcastMailboxEntryNeedsNoKeys(t *testing.T) {
	sender := user.New("Bob", testutil.NewScheme(t))
	keyMsg, err := sender.CreateKeys()
	require.NoError(t, err)

	// the reader has no key pair of its own
	reader := user.New("Alice", testutil.NewScheme(t))
	reader.Deliver(keyMsg)

	got, err := reader.ReadLastMessage()
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Sender)
	assert.Equal(t, protocol.BroadcastReceiver, got.Receiver)
	assert.Equal(t, keyMsg.PayloadHex(), got.Text)
}

func TestLearnKeyReplacesEarlier(t *testing.T) {
	scheme := testutil.NewScheme(t)
	u := user.New("Alice", scheme)

	pairOld := testutil.GenerateKeyPair(t)
	pairNew := testutil.GenerateKeyPair(t)
	u.LearnKey("Bob", pairOld.Public)
	u.LearnKey("Bob", pairNew.Public)

	key, ok := u.KnownKey("Bob")
	require.True(t, ok)
	assert.Equal(t, pairNew.Public.Bytes(), key.Bytes())
}
