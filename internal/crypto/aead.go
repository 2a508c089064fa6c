package crypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"ratchetkit/internal/domain"
	"ratchetkit/internal/util/memzero"
)

// messageCipher expands a one-shot message key into a ChaCha20-Poly1305 key
// and nonce. Each message key is used for exactly one message, so the
// derived nonce never repeats under the same key.
func messageCipher(mk []byte, info string) (key, nonce []byte, err error) {
	okm, err := HKDF(mk, nil, info, chacha20poly1305.KeySize+chacha20poly1305.NonceSize)
	if err != nil {
		return nil, nil, err
	}
	return okm[:chacha20poly1305.KeySize], okm[chacha20poly1305.KeySize:], nil
}

// SealMessage encrypts plaintext under a message key, authenticating ad.
func SealMessage(mk []byte, info string, plaintext, ad []byte) ([]byte, error) {
	key, nonce, err := messageCipher(mk, info)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, ad), nil
}

// OpenMessage reverses SealMessage. A bad tag is reported as
// domain.ErrAuthenticationFailure.
func OpenMessage(mk []byte, info string, ciphertext, ad []byte) ([]byte, error) {
	key, nonce, err := messageCipher(mk, info)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return nil, fmt.Errorf("%w: message tag", domain.ErrAuthenticationFailure)
	}
	return pt, nil
}
