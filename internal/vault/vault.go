// Package vault provides authenticated encryption for per-account credential
// bundles. A single AES-256 key is derived from the process-wide master
// secret when the vault is constructed and reused for the lifetime of the
// process.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/farmkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// keySalt is a fixed application salt for the key derivation. The same
// master secret must always derive the same key, otherwise ciphertexts
// persisted before a restart become unreadable; a random per-process salt
// would break that.
var keySalt = []byte("farmkeeper.vault.v1")

// Bundle is the plaintext credential record protected by the vault.
// Plaintext bundles only exist in memory around an encrypt or decrypt call;
// nothing persists or logs them.
type Bundle struct {
	Password string `json:"password"`
	TwoFA    string `json:"twofa"`
	Note     string `json:"note"`
}

type Vault struct {
	aead cipher.AEAD
}

// New derives the vault key from masterSecret via Argon2id and prepares the
// AES-256-GCM cipher. The secret itself is not retained.
func New(masterSecret string) (*Vault, error) {
	key := argon2.IDKey([]byte(masterSecret), keySalt, 1, 64*1024, 4, 32)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm init: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// Encrypt serializes the bundle to JSON and seals it with a fresh random
// nonce. The result is base64(nonce || ciphertext), safe to store in the
// aggregate as-is.
func (v *Vault) Encrypt(b Bundle) (string, error) {
	plaintext, err := json.Marshal(b)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := v.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. A ciphertext produced under a different master
// secret, or one that was tampered with, fails with common.ErrDecryptFailed
// rather than yielding garbage.
func (v *Vault) Decrypt(ciphertext string) (Bundle, error) {
	var zero Bundle

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", common.ErrDecryptFailed, err)
	}

	ns := v.aead.NonceSize()
	if len(raw) < ns {
		return zero, common.ErrDecryptFailed
	}

	plaintext, err := v.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return zero, common.ErrDecryptFailed
	}

	var b Bundle
	if err := json.Unmarshal(plaintext, &b); err != nil {
		return zero, fmt.Errorf("%w: %v", common.ErrDecryptFailed, err)
	}
	return b, nil
}
