package commands_test

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratchetkit/cmd/ratchetkit/commands"
)

const pass = "Correct-Horse-42"

func execute(home string, args ...string) (string, error) {
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--home", home, "-p", pass, "--kdf", "scrypt", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func run(t *testing.T, home string, args ...string) string {
	t.Helper()
	out, err := execute(home, args...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestCLI_PairwiseAndGroup(t *testing.T) {
	alice, bob := t.TempDir(), t.TempDir()

	assert.Contains(t, run(t, alice, "init"), "Account created.")
	run(t, bob, "init")

	otks := decode[map[string]string](t, run(t, alice, "otk", "generate", "1"))
	require.Len(t, otks, 1)
	var otk string
	for _, k := range otks {
		otk = k
	}
	assert.Contains(t, run(t, alice, "otk", "publish"), "1 keys marked as published")
	assert.Empty(t, decode[map[string]string](t, run(t, alice, "otk", "list")))

	aliceID := decode[map[string]string](t, run(t, alice, "identity"))
	bobID := decode[map[string]string](t, run(t, bob, "identity"))

	assert.Contains(t, run(t, bob, "session", "outbound", "alice", aliceID["curve25519"], otk), "Session: ")
	msg := decode[struct {
		Type int    `json:"type"`
		Body string `json:"body"`
	}](t, run(t, bob, "session", "encrypt", "alice", "hello"))
	assert.Equal(t, 0, msg.Type)

	assert.Equal(t, "hello\n", run(t, alice, "session", "inbound", "bob", bobID["curve25519"], msg.Body))
	assert.Equal(t, "bob\n", run(t, alice, "session", "list"))

	reply := decode[struct {
		Type int    `json:"type"`
		Body string `json:"body"`
	}](t, run(t, alice, "session", "encrypt", "bob", "hi bob"))
	assert.Equal(t, 1, reply.Type)
	assert.Equal(t, "hi bob\n", run(t, bob, "session", "decrypt", "alice", "1", reply.Body))

	run(t, alice, "group", "create", "team")
	key := strings.TrimSpace(run(t, alice, "group", "key", "team"))
	run(t, bob, "inbound", "add", "team", key)

	ct := strings.TrimSpace(run(t, alice, "group", "encrypt", "team", "to everyone"))
	got := decode[map[string]any](t, run(t, bob, "inbound", "decrypt", "team", ct))
	assert.Equal(t, "to everyone", got["plaintext"])
	assert.EqualValues(t, 0, got["message_index"])

	exported := strings.TrimSpace(run(t, bob, "inbound", "export", "team", "1"))
	assert.NotEmpty(t, exported)
}

func TestCLI_Errors(t *testing.T) {
	t.Setenv("RATCHETKIT_PASSPHRASE", "")
	home := t.TempDir()

	cmd := commands.NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--home", home, "identity"})
	assert.Error(t, cmd.Execute())

	_, err := execute(home, "identity")
	assert.Error(t, err)

	run(t, home, "init")
	_, err = execute(home, "otk", "generate", "many")
	assert.Error(t, err)
	_, err = execute(home, "session", "decrypt", "bob", "7", "AAAA")
	assert.Error(t, err)
	_, err = execute(home, "--kdf", "md5", "identity")
	assert.Error(t, err)
}
