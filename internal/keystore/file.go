// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

// wrapped key file layout: magic || salt (16) || nonce (12) || ciphertext.
// Plain key files are the raw key bytes with no framing.
var wrapMagic = []byte("CVK1")

const wrapSaltSize = 16

// FileStore keeps the key in a mode-0600 file under the user's config
// directory. When a passphrase is set, the key is stored wrapped: an
// argon2id-derived key encrypts it with AES-GCM, so the file on disk
// never contains the raw key.
type FileStore struct {
	path       string
	passphrase []byte
}

// NewFileStore returns a FileStore for the given path. passphrase may be
// nil for an unwrapped key file.
func NewFileStore(path string, passphrase []byte) *FileStore {
	return &FileStore{path: path, passphrase: passphrase}
}

// Get reads and, if necessary, unwraps the stored key.
func (s *FileStore) Get() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(s.passphrase) == 0 {
		if len(data) == 0 {
			return nil, ErrNotFound
		}
		return data, nil
	}
	return s.unwrap(data)
}

// Set writes the key with restrictive permissions, wrapping it first when
// a passphrase is configured.
func (s *FileStore) Set(key []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	data := key
	if len(s.passphrase) > 0 {
		wrapped, err := s.wrap(key)
		if err != nil {
			return err
		}
		data = wrapped
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *FileStore) wrap(key []byte) ([]byte, error) {
	salt := make([]byte, wrapSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("keystore: generating salt: %w", err)
	}
	gcm, err := wrappingCipher(s.passphrase, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("keystore: generating nonce: %w", err)
	}
	out := append([]byte{}, wrapMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, gcm.Seal(nil, nonce, key, nil)...)
	return out, nil
}

func (s *FileStore) unwrap(data []byte) ([]byte, error) {
	header := len(wrapMagic) + wrapSaltSize
	if len(data) < header || string(data[:len(wrapMagic)]) != string(wrapMagic) {
		return nil, fmt.Errorf("%w: key file is not passphrase-wrapped", ErrUnavailable)
	}
	salt := data[len(wrapMagic):header]
	gcm, err := wrappingCipher(s.passphrase, salt)
	if err != nil {
		return nil, err
	}
	rest := data[header:]
	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("%w: truncated key file", ErrUnavailable)
	}
	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	key, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: wrong passphrase or corrupt key file", ErrUnavailable)
	}
	return key, nil
}

// wrappingCipher derives the passphrase wrapping key with argon2id and
// returns an AES-GCM AEAD over it.
func wrappingCipher(passphrase, salt []byte) (cipher.AEAD, error) {
	derived := argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("keystore: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keystore: %w", err)
	}
	return gcm, nil
}

// DefaultPath returns the conventional key file location under the user
// config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return filepath.Join(dir, "clipvault", "vault.key"), nil
}
