package ratchet

import (
	"errors"
	"fmt"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/util/memzero"
)

var errNoChain = errors.New("ratchet: no chain to send on")

type senderChain struct {
	ratchet domain.X25519KeyPair
	chain   chainKey
}

type receiverChain struct {
	ratchet domain.X25519Public
	chain   chainKey
}

// State is one side of a pairwise double ratchet.
type State struct {
	policy    domain.Policy
	rootKey   [32]byte
	sender    *senderChain
	receivers []receiverChain // newest first
	skipped   *skippedCache
}

// NewInitiator seeds the sending chain of the side that ran the key
// agreement first. ratchetKey is a fresh key pair whose public half the
// responder will see in every message header until it replies.
func NewInitiator(rootKey, ck [32]byte, ratchetKey domain.X25519KeyPair, opts ...domain.Option) (*State, error) {
	s, err := newState(rootKey, domain.NewPolicy(opts...))
	if err != nil {
		return nil, err
	}
	s.sender = &senderChain{ratchet: ratchetKey, chain: chainKey{key: ck}}
	return s, nil
}

// NewResponder seeds a receiving chain for the initiator's ratchet key. The
// responder's own sending chain is created on its first Encrypt.
func NewResponder(rootKey, ck [32]byte, remoteRatchetKey domain.X25519Public, opts ...domain.Option) (*State, error) {
	s, err := newState(rootKey, domain.NewPolicy(opts...))
	if err != nil {
		return nil, err
	}
	s.receivers = []receiverChain{{ratchet: remoteRatchetKey, chain: chainKey{key: ck}}}
	return s, nil
}

func newState(rootKey [32]byte, policy domain.Policy) (*State, error) {
	cache, err := newSkippedCache(policy.MaxSkippedMessageKeys)
	if err != nil {
		return nil, err
	}
	return &State{policy: policy, rootKey: rootKey, skipped: cache}, nil
}

// Encrypt seals plaintext under the next sending message key and returns
// the complete message (header followed by ciphertext).
func (s *State) Encrypt(plaintext []byte) ([]byte, error) {
	if s.sender == nil {
		if err := s.stepSender(); err != nil {
			return nil, err
		}
	}

	mk := s.sender.chain.messageKey()
	defer memzero.Array(&mk)

	hb := Header{RatchetKey: s.sender.ratchet.Public, Index: s.sender.chain.index}.MarshalBinary()
	ct, err := crypto.SealMessage(mk[:], cipherInfo, plaintext, hb)
	if err != nil {
		return nil, err
	}
	s.sender.chain.advance()
	return append(hb, ct...), nil
}

// stepSender performs the sending half of a DH ratchet step against the
// newest remote ratchet key.
func (s *State) stepSender() error {
	if len(s.receivers) == 0 {
		return errNoChain
	}
	kp, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		return err
	}
	dh, err := crypto.DH(kp.Private, s.receivers[0].ratchet)
	if err != nil {
		return err
	}
	root, ck, err := kdfRoot(s.rootKey, dh)
	memzero.Array(&dh)
	if err != nil {
		return err
	}
	s.rootKey = root
	s.sender = &senderChain{ratchet: kp, chain: chainKey{key: ck}}
	return nil
}

// Decrypt opens a message produced by the peer's Encrypt. On any error the
// State is unchanged.
func (s *State) Decrypt(message []byte) ([]byte, error) {
	h, ct, err := ParseMessage(message)
	if err != nil {
		return nil, err
	}
	ad := message[:HeaderSize]

	id := skippedID{ratchet: h.RatchetKey, index: h.Index}
	if mk, ok := s.skipped.peek(id); ok {
		pt, err := crypto.OpenMessage(mk[:], cipherInfo, ct, ad)
		memzero.Array(&mk)
		if err != nil {
			return nil, err
		}
		s.skipped.remove(id)
		return pt, nil
	}

	var (
		chain   receiverChain
		newRoot [32]byte
		pos     = s.findReceiver(h.RatchetKey)
	)
	if pos >= 0 {
		chain = s.receivers[pos]
	} else {
		chain, newRoot, err = s.stepReceiver(h.RatchetKey)
		if err != nil {
			return nil, err
		}
	}

	if h.Index < chain.chain.index {
		return nil, fmt.Errorf("%w: %w: index %d is behind the chain and has no stored key",
			domain.ErrMessageGap, domain.ErrAuthenticationFailure, h.Index)
	}
	if gap := h.Index - chain.chain.index; gap > s.policy.MaxMessageGap {
		return nil, fmt.Errorf("%w: %w: index %d is %d ahead of the chain (max %d)",
			domain.ErrMessageGap, domain.ErrAuthenticationFailure, h.Index, gap, s.policy.MaxMessageGap)
	}

	var pending []skippedKey
	for chain.chain.index < h.Index {
		pending = append(pending, skippedKey{
			id:  skippedID{ratchet: h.RatchetKey, index: chain.chain.index},
			key: chain.chain.messageKey(),
		})
		chain.chain.advance()
	}

	mk := chain.chain.messageKey()
	pt, err := crypto.OpenMessage(mk[:], cipherInfo, ct, ad)
	memzero.Array(&mk)
	if err != nil {
		for i := range pending {
			memzero.Array(&pending[i].key)
		}
		return nil, err
	}
	chain.chain.advance()

	if pos >= 0 {
		s.receivers[pos] = chain
	} else {
		s.rootKey = newRoot
		s.receivers = append([]receiverChain{chain}, s.receivers...)
		if len(s.receivers) > s.policy.MaxReceiverChains {
			s.receivers = s.receivers[:s.policy.MaxReceiverChains]
		}
		// The next Encrypt ratchets against the new remote key.
		s.sender = nil
	}
	s.skipped.store(pending)
	return pt, nil
}

// stepReceiver derives, without committing, the receiving chain and root
// key a new remote ratchet key would produce.
func (s *State) stepReceiver(remote domain.X25519Public) (receiverChain, [32]byte, error) {
	if s.sender == nil {
		return receiverChain{}, [32]byte{}, fmt.Errorf("%w: unexpected ratchet key", domain.ErrAuthenticationFailure)
	}
	dh, err := crypto.DH(s.sender.ratchet.Private, remote)
	if err != nil {
		return receiverChain{}, [32]byte{}, fmt.Errorf("%w: %v", domain.ErrAuthenticationFailure, err)
	}
	root, ck, err := kdfRoot(s.rootKey, dh)
	memzero.Array(&dh)
	if err != nil {
		return receiverChain{}, [32]byte{}, err
	}
	return receiverChain{ratchet: remote, chain: chainKey{key: ck}}, root, nil
}

func (s *State) findReceiver(remote domain.X25519Public) int {
	for i := range s.receivers {
		if s.receivers[i].ratchet == remote {
			return i
		}
	}
	return -1
}

// SkippedKeys reports how many message keys are cached for late messages.
func (s *State) SkippedKeys() int { return s.skipped.len() }

// ReceiverChains reports how many remote ratchet keys are remembered.
func (s *State) ReceiverChains() int { return len(s.receivers) }
