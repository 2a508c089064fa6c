package domain

// PickleStore persists pickled entities by kind and name. Blobs are
// already encrypted; the store only derives the key that seals them.
type PickleStore interface {
	PickleKey(passphrase string) ([]byte, error)
	Save(kind RecordKind, name, blob string) error
	Load(kind RecordKind, name string) (blob string, ok bool, err error)
	List(kind RecordKind) ([]string, error)
	Delete(kind RecordKind, name string) error
}

// IdentityService manages the local account.
type IdentityService interface {
	Init(passphrase string) (IdentityKeys, Fingerprint, error)
	IdentityKeys(passphrase string) (IdentityKeys, error)
	Fingerprint(passphrase string) (Fingerprint, error)
	Sign(passphrase string, message []byte) (string, error)
}

// PrekeyService manages the account's one-time-key pool.
type PrekeyService interface {
	GenerateOneTimeKeys(passphrase string, n int) (map[string]string, error)
	OneTimeKeys(passphrase string) (map[string]string, error)
	MarkKeysAsPublished(passphrase string) (int, error)
}

// SessionService establishes pairwise sessions, one per peer.
type SessionService interface {
	Outbound(passphrase, peer, identityKey, oneTimeKey string) (sessionID string, err error)
	Inbound(passphrase, peer, identityKey string, msg OlmMessage) ([]byte, error)
	List() ([]string, error)
}

// MessageService encrypts and decrypts over established sessions.
type MessageService interface {
	Encrypt(passphrase, peer string, plaintext []byte) (OlmMessage, error)
	Decrypt(passphrase, peer string, msg OlmMessage) ([]byte, error)
}

// GroupService manages outbound and inbound group sessions by name.
type GroupService interface {
	Create(passphrase, name string) (GroupInfo, error)
	Encrypt(passphrase, name string, plaintext []byte) (string, error)
	SessionKey(passphrase, name string) (string, error)
	Info(passphrase, name string) (GroupInfo, error)

	AddInbound(passphrase, name, sessionKey string) (GroupInfo, error)
	ImportInbound(passphrase, name, exportedKey string) (GroupInfo, error)
	Decrypt(passphrase, name, message string) (DecryptedGroupMessage, error)
	Export(passphrase, name string, index uint32) (string, error)

	List() (outbound, inbound []string, err error)
}
