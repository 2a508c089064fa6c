package ratchet

import (
	"fmt"

	"ratchetkit/internal/domain"
)

// Snapshot is the complete serialisable content of a State, used by the
// owning session when it pickles itself.
type Snapshot struct {
	RootKey   [32]byte           `cbor:"root"`
	Sender    *SenderSnapshot    `cbor:"sender,omitempty"`
	Receivers []ReceiverSnapshot `cbor:"receivers"`
	Skipped   []SkippedSnapshot  `cbor:"skipped,omitempty"`
}

type SenderSnapshot struct {
	RatchetPrivate domain.X25519Private `cbor:"priv"`
	RatchetPublic  domain.X25519Public  `cbor:"pub"`
	ChainKey       [32]byte             `cbor:"ck"`
	Index          uint32               `cbor:"n"`
}

type ReceiverSnapshot struct {
	RatchetKey domain.X25519Public `cbor:"pub"`
	ChainKey   [32]byte            `cbor:"ck"`
	Index      uint32              `cbor:"n"`
}

// SkippedSnapshot is one cached message key. Snapshots list them oldest
// first so that restoring preserves eviction order.
type SkippedSnapshot struct {
	RatchetKey domain.X25519Public `cbor:"pub"`
	Index      uint32              `cbor:"n"`
	MessageKey [32]byte            `cbor:"mk"`
}

// Snapshot copies out the full state.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{RootKey: s.rootKey}
	if s.sender != nil {
		snap.Sender = &SenderSnapshot{
			RatchetPrivate: s.sender.ratchet.Private,
			RatchetPublic:  s.sender.ratchet.Public,
			ChainKey:       s.sender.chain.key,
			Index:          s.sender.chain.index,
		}
	}
	for _, r := range s.receivers {
		snap.Receivers = append(snap.Receivers, ReceiverSnapshot{
			RatchetKey: r.ratchet,
			ChainKey:   r.chain.key,
			Index:      r.chain.index,
		})
	}
	for _, k := range s.skipped.ordered() {
		snap.Skipped = append(snap.Skipped, SkippedSnapshot{
			RatchetKey: k.id.ratchet,
			Index:      k.id.index,
			MessageKey: k.key,
		})
	}
	return snap
}

// Restore rebuilds a State from a Snapshot. A snapshot with no chain at all
// is rejected with domain.ErrDecryptionFailure.
func Restore(snap Snapshot, opts ...domain.Option) (*State, error) {
	if snap.Sender == nil && len(snap.Receivers) == 0 {
		return nil, fmt.Errorf("%w: ratchet state has no chains", domain.ErrDecryptionFailure)
	}
	s, err := newState(snap.RootKey, domain.NewPolicy(opts...))
	if err != nil {
		return nil, err
	}
	if snap.Sender != nil {
		s.sender = &senderChain{
			ratchet: domain.X25519KeyPair{Private: snap.Sender.RatchetPrivate, Public: snap.Sender.RatchetPublic},
			chain:   chainKey{key: snap.Sender.ChainKey, index: snap.Sender.Index},
		}
	}
	for _, r := range snap.Receivers {
		if len(s.receivers) == s.policy.MaxReceiverChains {
			break
		}
		s.receivers = append(s.receivers, receiverChain{
			ratchet: r.RatchetKey,
			chain:   chainKey{key: r.ChainKey, index: r.Index},
		})
	}
	entries := make([]skippedKey, 0, len(snap.Skipped))
	for _, k := range snap.Skipped {
		entries = append(entries, skippedKey{
			id:  skippedID{ratchet: k.RatchetKey, index: k.Index},
			key: k.MessageKey,
		})
	}
	s.skipped.store(entries)
	return s, nil
}
