package session_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/session"
)

type peer struct {
	identity domain.X25519KeyPair
	oneTime  domain.X25519KeyPair
}

func newPeer(t *testing.T) peer {
	t.Helper()
	id, err := crypto.GenerateX25519KeyPair()
	require.NoError(t, err)
	otk, err := crypto.GenerateX25519KeyPair()
	require.NoError(t, err)
	return peer{identity: id, oneTime: otk}
}

// establish returns Alice's outbound and Bob's inbound session after Bob
// has read Alice's first message.
func establish(t *testing.T) (*session.Session, *session.Session) {
	t.Helper()
	alice, bob := newPeer(t), newPeer(t)

	out, err := session.NewOutbound(alice.identity, bob.identity.Public, bob.oneTime.Public)
	require.NoError(t, err)

	first, err := out.Encrypt([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, domain.MessageTypePreKey, first.Type)

	pk, err := session.ParsePreKey(first)
	require.NoError(t, err)
	in, pt, err := session.NewInbound(bob.identity, bob.oneTime, pk)
	require.NoError(t, err)
	require.Equal(t, "hello", string(pt))
	return out, in
}

func exchange(t *testing.T, from, to *session.Session, msg string) domain.OlmMessage {
	t.Helper()
	m, err := from.Encrypt([]byte(msg))
	require.NoError(t, err)
	pt, err := to.Decrypt(m)
	require.NoError(t, err)
	require.Equal(t, msg, string(pt))
	return m
}

func TestSession_FiftyRoundTripsEachWay(t *testing.T) {
	alice, bob := establish(t)

	for i := 0; i < 50; i++ {
		exchange(t, alice, bob, fmt.Sprintf("alice %d", i))
		exchange(t, bob, alice, fmt.Sprintf("bob %d", i))
	}
}

func TestSession_PreKeyUntilReply(t *testing.T) {
	alice, bob := establish(t)

	m := exchange(t, alice, bob, "still pre-key")
	assert.Equal(t, domain.MessageTypePreKey, m.Type)
	assert.False(t, alice.HasReceivedMessage())

	m = exchange(t, bob, alice, "reply")
	assert.Equal(t, domain.MessageTypeNormal, m.Type)
	assert.True(t, alice.HasReceivedMessage())

	m = exchange(t, alice, bob, "now normal")
	assert.Equal(t, domain.MessageTypeNormal, m.Type)
}

func TestSession_BurstsOutOfOrder(t *testing.T) {
	alice, bob := establish(t)
	exchange(t, bob, alice, "ack")

	var burst []domain.OlmMessage
	for i := 0; i < 5; i++ {
		m, err := alice.Encrypt([]byte(fmt.Sprint(i)))
		require.NoError(t, err)
		burst = append(burst, m)
	}
	for _, i := range []int{4, 1, 3, 0, 2} {
		pt, err := bob.Decrypt(burst[i])
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(i), string(pt))
	}
}

func flipEveryBit(t *testing.T, s *session.Session, msg domain.OlmMessage) {
	t.Helper()
	raw, err := crypto.DecodeB64(msg.Ciphertext)
	require.NoError(t, err)
	for i := range raw {
		for bit := 0; bit < 8; bit++ {
			mod := append([]byte(nil), raw...)
			mod[i] ^= 1 << bit
			_, err := s.Decrypt(domain.OlmMessage{Type: msg.Type, Ciphertext: crypto.B64(mod)})
			require.ErrorIs(t, err, domain.ErrAuthenticationFailure, "byte %d bit %d", i, bit)
		}
	}
}

func TestSession_TamperRejectedWithoutStateChange(t *testing.T) {
	alice, bob := establish(t)

	preKey, err := alice.Encrypt([]byte("pre-key"))
	require.NoError(t, err)
	flipEveryBit(t, bob, preKey)
	pt, err := bob.Decrypt(preKey)
	require.NoError(t, err)
	assert.Equal(t, "pre-key", string(pt))

	normal, err := bob.Encrypt([]byte("normal"))
	require.NoError(t, err)
	flipEveryBit(t, alice, normal)
	assert.False(t, alice.HasReceivedMessage())
	pt, err = alice.Decrypt(normal)
	require.NoError(t, err)
	assert.Equal(t, "normal", string(pt))
}

func TestSession_DecryptRejectsUnknownType(t *testing.T) {
	alice, bob := establish(t)
	m, err := alice.Encrypt([]byte("x"))
	require.NoError(t, err)

	m.Type = domain.MessageType(7)
	_, err = bob.Decrypt(m)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSession_MatchesAndID(t *testing.T) {
	alice, bob := establish(t)
	otherAlice, otherBob := establish(t)

	assert.Equal(t, alice.ID(), bob.ID())
	assert.NotEqual(t, alice.ID(), otherAlice.ID())

	preKey, err := alice.Encrypt([]byte("x"))
	require.NoError(t, err)
	assert.True(t, bob.Matches(preKey))
	assert.False(t, otherBob.Matches(preKey))

	// Matching is read-only: the message still decrypts afterwards.
	pt, err := bob.Decrypt(preKey)
	require.NoError(t, err)
	assert.Equal(t, "x", string(pt))

	normal, err := bob.Encrypt([]byte("y"))
	require.NoError(t, err)
	assert.False(t, alice.Matches(normal))
}

func TestSession_PreKeyForOtherSessionRejected(t *testing.T) {
	alice, _ := establish(t)
	_, otherBob := establish(t)

	m, err := alice.Encrypt([]byte("x"))
	require.NoError(t, err)
	_, err = otherBob.Decrypt(m)
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailure)
}

func TestNewInbound_WrongOneTimeKey(t *testing.T) {
	alice, bob := newPeer(t), newPeer(t)
	out, err := session.NewOutbound(alice.identity, bob.identity.Public, bob.oneTime.Public)
	require.NoError(t, err)
	m, err := out.Encrypt([]byte("x"))
	require.NoError(t, err)
	pk, err := session.ParsePreKey(m)
	require.NoError(t, err)

	other, err := crypto.GenerateX25519KeyPair()
	require.NoError(t, err)
	_, _, err = session.NewInbound(bob.identity, other, pk)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSession_PickleRoundTrip(t *testing.T) {
	alice, bob := establish(t)
	exchange(t, bob, alice, "ack")
	key := bytes.Repeat([]byte{3}, 32)

	blob, err := bob.Pickle(key)
	require.NoError(t, err)
	restored, err := session.FromPickle(blob, key)
	require.NoError(t, err)
	assert.Equal(t, bob.ID(), restored.ID())
	assert.True(t, restored.HasReceivedMessage())

	m, err := alice.Encrypt([]byte("after pickle"))
	require.NoError(t, err)
	pt, err := restored.Decrypt(m)
	require.NoError(t, err)
	assert.Equal(t, "after pickle", string(pt))
	pt, err = bob.Decrypt(m)
	require.NoError(t, err)
	assert.Equal(t, "after pickle", string(pt))

	// Identical randomness gives identical output from both copies.
	seed := bytes.Repeat([]byte{5}, 64)
	restore := crypto.UseDeterministicRandom(bytes.NewReader(seed))
	fromOriginal, err := bob.Encrypt([]byte("reply"))
	restore()
	require.NoError(t, err)
	restore = crypto.UseDeterministicRandom(bytes.NewReader(seed))
	fromRestored, err := restored.Encrypt([]byte("reply"))
	restore()
	require.NoError(t, err)
	assert.Equal(t, fromOriginal, fromRestored)
}

func TestSession_FromPickleErrors(t *testing.T) {
	alice, _ := establish(t)
	key := bytes.Repeat([]byte{3}, 32)
	blob, err := alice.Pickle(key)
	require.NoError(t, err)

	_, err = session.FromPickle(blob, bytes.Repeat([]byte{4}, 32))
	assert.ErrorIs(t, err, domain.ErrDecryptionFailure)

	_, err = session.FromPickle(blob, key[:16])
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

// flipEveryTextBit edits the base64 text rather than the decoded bytes.
func flipEveryTextBit(t *testing.T, s *session.Session, msg domain.OlmMessage) {
	t.Helper()
	for i := 0; i < len(msg.Ciphertext); i++ {
		for bit := 0; bit < 8; bit++ {
			mod := []byte(msg.Ciphertext)
			mod[i] ^= 1 << bit
			_, err := s.Decrypt(domain.OlmMessage{Type: msg.Type, Ciphertext: string(mod)})
			require.ErrorIs(t, err, domain.ErrAuthenticationFailure, "char %d bit %d", i, bit)
		}
	}
	for _, suffix := range []string{"=", "==", "====", "\r\n"} {
		_, err := s.Decrypt(domain.OlmMessage{Type: msg.Type, Ciphertext: msg.Ciphertext + suffix})
		require.ErrorIs(t, err, domain.ErrAuthenticationFailure, "suffix %q", suffix)
	}
}

func TestSession_EditedTextRejected(t *testing.T) {
	alice, bob := establish(t)

	preKey, err := alice.Encrypt([]byte("pre-key"))
	require.NoError(t, err)
	flipEveryTextBit(t, bob, preKey)
	pt, err := bob.Decrypt(preKey)
	require.NoError(t, err)
	assert.Equal(t, "pre-key", string(pt))

	reply, err := bob.Encrypt([]byte("reply"))
	require.NoError(t, err)
	pt, err = alice.Decrypt(reply)
	require.NoError(t, err)
	assert.Equal(t, "reply", string(pt))

	normal, err := alice.Encrypt([]byte("hello!"))
	require.NoError(t, err)
	require.Equal(t, domain.MessageTypeNormal, normal.Type)
	flipEveryTextBit(t, bob, normal)
	pt, err = bob.Decrypt(normal)
	require.NoError(t, err)
	assert.Equal(t, "hello!", string(pt))
}
