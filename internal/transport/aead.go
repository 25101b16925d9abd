package transport

import (
	"augmentloop/internal/crypto/aead"
	"augmentloop/pkg/wire"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// encryptFrame seals every part of frame independently under the shared
// pre-shared key, prepending a fresh random nonce to each sealed part.
// aead.Encrypt zeroes the key slice it's handed, so a fresh copy is made
// per call to keep the caller's configured PSK intact, and the nonce is
// generated here (rather than left to Encrypt's internal fallback) so it
// can be carried alongside the ciphertext for the receiver to recover.
func encryptFrame(frame wire.Frame, psk []byte) (sealed wire.Frame, err error) {
	sealed = make(wire.Frame, len(frame))
	for i, part := range frame {
		nonce := make([]byte, chacha20poly1305.NonceSize)
		if _, err = rand.Read(nonce); err != nil {
			err = fmt.Errorf("generate nonce for frame part %d: %w", i, err)
			return
		}

		keyCopy := append([]byte(nil), psk...)
		var ciphertext []byte
		ciphertext, err = aead.Encrypt(part, keyCopy, nonce, nil)
		if err != nil {
			err = fmt.Errorf("encrypt frame part %d: %w", i, err)
			return
		}
		sealed[i] = append(nonce, ciphertext...)
	}
	return
}

func decryptFrame(frame wire.Frame, psk []byte) (opened wire.Frame, err error) {
	opened = make(wire.Frame, len(frame))
	for i, part := range frame {
		if len(part) < chacha20poly1305.NonceSize {
			err = fmt.Errorf("frame part %d too short to carry a nonce", i)
			return
		}
		keyCopy := append([]byte(nil), psk...)
		nonce := append([]byte(nil), part[:chacha20poly1305.NonceSize]...)
		ciphertext := part[chacha20poly1305.NonceSize:]
		var plaintext []byte
		plaintext, err = aead.Decrypt(ciphertext, keyCopy, nonce, nil)
		if err != nil {
			err = fmt.Errorf("decrypt frame part %d: %w", i, err)
			return
		}
		opened[i] = plaintext
	}
	return
}
