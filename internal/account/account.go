package account

import (
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/session"
)

// maxConsumedKeys bounds the consumed-key record. A key that falls out of
// it is still gone from the pool, so a replay of it stays unknown.
const maxConsumedKeys = 1000

type oneTimeKey struct {
	pair      domain.X25519KeyPair
	published bool
}

// Account is a device identity plus its one-time-key pool.
type Account struct {
	policy    domain.Policy
	signing   domain.Ed25519KeyPair
	identity  domain.X25519KeyPair
	oneTime   map[domain.KeyID]oneTimeKey
	nextKeyID domain.KeyID
	consumed  *lru.Cache[domain.X25519Public, struct{}]
}

// New creates an account with fresh identity keys and an empty pool. It
// only fails if the randomness source does.
func New(opts ...domain.Option) (*Account, error) {
	signing, err := crypto.GenerateEd25519KeyPair()
	if err != nil {
		return nil, err
	}
	identity, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		return nil, err
	}
	consumed, err := newConsumedSet()
	if err != nil {
		return nil, err
	}
	return &Account{
		policy:   domain.NewPolicy(opts...),
		signing:  signing,
		identity: identity,
		oneTime:  make(map[domain.KeyID]oneTimeKey),
		consumed: consumed,
	}, nil
}

func newConsumedSet() (*lru.Cache[domain.X25519Public, struct{}], error) {
	return lru.New[domain.X25519Public, struct{}](maxConsumedKeys)
}

// IdentityKeys returns the base64 public identity keys.
func (a *Account) IdentityKeys() domain.IdentityKeys {
	return domain.IdentityKeys{
		Ed25519:    crypto.B64(a.signing.Public[:]),
		Curve25519: crypto.B64(a.identity.Public[:]),
	}
}

func (a *Account) Curve25519Key() domain.X25519Public { return a.identity.Public }
func (a *Account) Ed25519Key() domain.Ed25519Public   { return a.signing.Public }

// Sign signs message with the Ed25519 identity key and returns the
// signature as base64.
func (a *Account) Sign(message []byte) string {
	sig := crypto.SignEd25519(a.signing.Private, message)
	return crypto.B64(sig[:])
}

// MaxNumberOfOneTimeKeys is the most unpublished keys the pool will hold.
func (a *Account) MaxNumberOfOneTimeKeys() int { return a.policy.MaxOneTimeKeys }

// GenerateOneTimeKeys adds count fresh keys with increasing ids. It fails
// with domain.ErrInvalidArgument if count is not positive or the
// unpublished pool would exceed MaxNumberOfOneTimeKeys.
func (a *Account) GenerateOneTimeKeys(count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: one-time key count must be positive, got %d", domain.ErrInvalidArgument, count)
	}
	if unpublished := a.unpublished(); unpublished+count > a.policy.MaxOneTimeKeys {
		return fmt.Errorf("%w: %d unpublished one-time keys plus %d exceeds the limit of %d",
			domain.ErrInvalidArgument, unpublished, count, a.policy.MaxOneTimeKeys)
	}

	fresh := make([]domain.X25519KeyPair, 0, count)
	for i := 0; i < count; i++ {
		kp, err := crypto.GenerateX25519KeyPair()
		if err != nil {
			return err
		}
		fresh = append(fresh, kp)
	}
	for _, kp := range fresh {
		a.oneTime[a.nextKeyID] = oneTimeKey{pair: kp}
		a.nextKeyID++
	}
	a.evictPublished()
	return nil
}

// evictPublished drops the oldest published keys once the pool holds more
// than twice the unpublished limit.
func (a *Account) evictPublished() {
	limit := 2 * a.policy.MaxOneTimeKeys
	if len(a.oneTime) <= limit {
		return
	}
	for _, id := range a.sortedIDs() {
		if len(a.oneTime) <= limit {
			return
		}
		if a.oneTime[id].published {
			delete(a.oneTime, id)
		}
	}
}

func (a *Account) unpublished() int {
	n := 0
	for _, k := range a.oneTime {
		if !k.published {
			n++
		}
	}
	return n
}

func (a *Account) sortedIDs() []domain.KeyID {
	ids := make([]domain.KeyID, 0, len(a.oneTime))
	for id := range a.oneTime {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// OneTimeKeys returns the unpublished keys as key id to base64 public key.
func (a *Account) OneTimeKeys() map[string]string {
	out := make(map[string]string)
	for id, k := range a.oneTime {
		if !k.published {
			out[id.String()] = crypto.B64(k.pair.Public[:])
		}
	}
	return out
}

// MarkKeysAsPublished flags every current key as published.
func (a *Account) MarkKeysAsPublished() {
	for id, k := range a.oneTime {
		k.published = true
		a.oneTime[id] = k
	}
}

// CreateOutboundSession starts a session with a peer from their base64
// Curve25519 identity key and one of their one-time keys.
func (a *Account) CreateOutboundSession(identityKey, oneTimeKey string) (*session.Session, error) {
	peerIdentity, err := crypto.ParseCurve25519(identityKey)
	if err != nil {
		return nil, err
	}
	peerOneTime, err := crypto.ParseCurve25519(oneTimeKey)
	if err != nil {
		return nil, err
	}
	return session.NewOutbound(a.identity, peerIdentity, peerOneTime, domain.WithPolicy(a.policy))
}

// CreateInboundSession establishes a session from a peer's first message
// and returns it together with that message's plaintext. The one-time key
// the message names is consumed only once the message has authenticated.
func (a *Account) CreateInboundSession(identityKey string, msg domain.OlmMessage) (*session.Session, []byte, error) {
	if msg.Type != domain.MessageTypePreKey {
		return nil, nil, fmt.Errorf("%w: inbound sessions start from a pre-key message, got %s", domain.ErrInvalidArgument, msg.Type)
	}
	peerIdentity, err := crypto.ParseCurve25519(identityKey)
	if err != nil {
		return nil, nil, err
	}
	pk, err := session.ParsePreKey(msg)
	if err != nil {
		return nil, nil, err
	}
	if pk.Keys.IdentityKey != peerIdentity {
		return nil, nil, fmt.Errorf("%w: message was sent by a different identity key", domain.ErrInvalidKey)
	}

	otk := pk.Keys.OneTimeKey
	if a.consumed.Contains(otk) {
		return nil, nil, fmt.Errorf("%w: %s was already consumed", domain.ErrUnknownOneTimeKey, crypto.B64(otk[:]))
	}
	id, key, ok := a.findOneTimeKey(otk)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrUnknownOneTimeKey, crypto.B64(otk[:]))
	}

	sess, plaintext, err := session.NewInbound(a.identity, key.pair, pk, domain.WithPolicy(a.policy))
	if err != nil {
		return nil, nil, err
	}
	delete(a.oneTime, id)
	a.consumed.Add(otk, struct{}{})
	return sess, plaintext, nil
}

func (a *Account) findOneTimeKey(pub domain.X25519Public) (domain.KeyID, oneTimeKey, bool) {
	for id, k := range a.oneTime {
		if k.pair.Public == pub {
			return id, k, true
		}
	}
	return 0, oneTimeKey{}, false
}
