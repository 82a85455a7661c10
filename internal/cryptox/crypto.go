// Package cryptox implements key derivation and authenticated encryption
// for credential-store files. Keys are derived with argon2id; payloads are
// sealed with AES-256-GCM.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"

	"golang.org/x/crypto/argon2"

	"github.com/jrabinow/kpsync/internal/common"
)

// NonceSize is the AES-GCM nonce length in bytes.
const NonceSize = 12

// SaltSize is the argon2 salt length in bytes.
const SaltSize = 32

// DeriveMasterKey derives a 32-byte AES key from a password and salt.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MixKeyFile folds the contents of a key file into a derived master key,
// so that opening the store requires both the password and the key file.
func MixKeyFile(key []byte, keyfile []byte) []byte {
	fileHash := sha256.Sum256(keyfile)
	h := sha256.New()
	h.Write(key)
	h.Write(fileHash[:])
	return h.Sum(nil)
}

// Seal encrypts plaintext with AES-GCM under key, generating a fresh
// random nonce. The ciphertext and nonce are returned separately.
func Seal(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(NonceSize)
	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Open decrypts ciphertext produced by Seal. A wrong key or tampered
// payload fails GCM authentication and returns an error.
func Open(ciphertext, nonce, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return aesgcm.Open(nil, nonce, ciphertext, nil)
}
