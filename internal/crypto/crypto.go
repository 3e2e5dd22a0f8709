package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

const (
	// Argon2id parameters
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	keySize       = 32 // AES-256

	// SaltFileName is the salt stored next to the encrypted config
	SaltFileName = "config.salt"
	saltSize     = 32
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// GenerateAndSaveSalt creates a random salt and writes it base64-encoded to path
func GenerateAndSaveSalt(path string) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(salt)
	if err := os.WriteFile(path, []byte(encoded), 0600); err != nil {
		return nil, fmt.Errorf("failed to write salt: %w", err)
	}
	return salt, nil
}

// LoadSalt reads a salt written by GenerateAndSaveSalt
func LoadSalt(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	salt, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("salt file is corrupt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives an AES-256 key from the master password using Argon2id
func DeriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, keySize)
}

// Sealer encrypts and decrypts JSON documents with AES-256-GCM.
// The nonce is prepended to each ciphertext.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a sealer from a derived key
func NewSealer(key []byte) (*Sealer, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce
func (s *Sealer) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a ciphertext produced by Encrypt
func (s *Sealer) Decrypt(ciphertext []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(ciphertext) < n {
		return nil, ErrCiphertextTooShort
	}
	return s.aead.Open(nil, ciphertext[:n], ciphertext[n:], nil)
}

// Seal marshals v to JSON and encrypts it
func (s *Sealer) Seal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal: %w", err)
	}
	return s.Encrypt(data)
}

// Open decrypts ciphertext and unmarshals the JSON into v
func (s *Sealer) Open(ciphertext []byte, v any) error {
	data, err := s.Decrypt(ciphertext)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
