package account

import (
	"fmt"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/pickle"
)

type oneTimeKeyPickle struct {
	ID        domain.KeyID         `cbor:"id"`
	Private   domain.X25519Private `cbor:"priv"`
	Published bool                 `cbor:"published"`
}

type accountPickle struct {
	SigningPrivate  domain.Ed25519Private `cbor:"signing"`
	IdentityPrivate domain.X25519Private  `cbor:"identity"`
	OneTimeKeys     []oneTimeKeyPickle    `cbor:"otks"`
	NextKeyID       domain.KeyID          `cbor:"next_id"`
	Consumed        []domain.X25519Public `cbor:"consumed,omitempty"`
}

// Pickle seals the account under key.
func (a *Account) Pickle(key []byte) (string, error) {
	p := accountPickle{
		SigningPrivate:  a.signing.Private,
		IdentityPrivate: a.identity.Private,
		NextKeyID:       a.nextKeyID,
	}
	for _, id := range a.sortedIDs() {
		k := a.oneTime[id]
		p.OneTimeKeys = append(p.OneTimeKeys, oneTimeKeyPickle{ID: id, Private: k.pair.Private, Published: k.published})
	}
	// Oldest first, so a restore keeps the eviction order.
	p.Consumed = a.consumed.Keys()
	return pickle.Seal(pickle.KindAccount, p, key)
}

// FromPickle restores an account sealed by Pickle. Public keys are
// rederived from the stored private keys.
func FromPickle(blob string, key []byte, opts ...domain.Option) (*Account, error) {
	var p accountPickle
	if err := pickle.Open(blob, key, pickle.KindAccount, &p); err != nil {
		return nil, err
	}

	consumed, err := newConsumedSet()
	if err != nil {
		return nil, err
	}
	a := &Account{
		policy:    domain.NewPolicy(opts...),
		oneTime:   make(map[domain.KeyID]oneTimeKey, len(p.OneTimeKeys)),
		nextKeyID: p.NextKeyID,
		consumed:  consumed,
	}
	a.signing.Private = p.SigningPrivate
	copy(a.signing.Public[:], p.SigningPrivate[32:])

	a.identity.Private = p.IdentityPrivate
	if a.identity.Public, err = crypto.PublicX25519(p.IdentityPrivate); err != nil {
		return nil, fmt.Errorf("%w: identity key: %v", domain.ErrDecryptionFailure, err)
	}
	for _, k := range p.OneTimeKeys {
		if k.ID >= p.NextKeyID {
			return nil, fmt.Errorf("%w: one-time key id %d not below next id %d", domain.ErrDecryptionFailure, k.ID, p.NextKeyID)
		}
		pub, err := crypto.PublicX25519(k.Private)
		if err != nil {
			return nil, fmt.Errorf("%w: one-time key: %v", domain.ErrDecryptionFailure, err)
		}
		a.oneTime[k.ID] = oneTimeKey{
			pair:      domain.X25519KeyPair{Private: k.Private, Public: pub},
			published: k.Published,
		}
	}
	for _, pub := range p.Consumed {
		a.consumed.Add(pub, struct{}{})
	}
	return a, nil
}
