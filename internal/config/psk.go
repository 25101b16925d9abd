package config

import (
	"augmentloop/internal/crypto/hkdf"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// pskNamespace namespaces the derived wire key away from any other secret
// this configured PSK might also be used to derive, mirroring the
// `namespace`-scoped key derivation wrappers use for their own traffic.
const pskNamespace = "augmentloop-wire-psk-v1"

// resolvePSK loads the operator-configured pre-shared key (from a file or
// an inline hex string, file taking precedence) and runs it through HKDF to
// get the actual AEAD key, rather than using operator-supplied material
// directly as a cipher key. Returns a nil key (transport runs unencrypted)
// when neither source is configured.
func resolvePSK(keyFile, keyHex string) (key []byte, err error) {
	var rawSecret []byte

	switch {
	case keyFile != "":
		rawSecret, err = os.ReadFile(keyFile)
		if err != nil {
			err = fmt.Errorf("failed to read preshared key file '%s': %w", keyFile, err)
			return
		}
		rawSecret = []byte(strings.TrimSpace(string(rawSecret)))
	case keyHex != "":
		rawSecret, err = hex.DecodeString(strings.TrimSpace(keyHex))
		if err != nil {
			err = fmt.Errorf("invalid preshared key hex: %w", err)
			return
		}
	default:
		return
	}

	key, err = DeriveWirePSK(rawSecret)
	return
}

// DeriveWirePSK runs raw secret material (from a file, a hex string, or a
// terminal prompt) through HKDF to get the actual AEAD key, rather than
// using operator-supplied material directly as a cipher key.
func DeriveWirePSK(rawSecret []byte) (key []byte, err error) {
	salt := []byte(pskNamespace)
	key, err = hkdf.DeriveKey(rawSecret, salt, pskNamespace, chacha20poly1305.KeySize)
	if err != nil {
		err = fmt.Errorf("failed to derive wire key from preshared key: %w", err)
		return
	}
	return
}
