// Package crypt provides password-based symmetric encryption for credentials
// and other short secrets. The output layout is base64(ciphertext) +
// base64(salt) + base64(iv): the salt and IV ride along with the ciphertext,
// so a value is decryptable from the string and the password alone.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN = 1 << 14
	scryptR = 8
	scryptP = 1
	keyLen  = 32

	// base64 length of one 16-byte segment (salt or IV).
	segmentLen = 24
)

// deriveKey stretches the password into an AES-256 key.
func deriveKey(password string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// pad extends s with spaces to a whole number of AES blocks. A text already
// at a block boundary gains one full block of padding.
func pad(s string) string {
	padding := aes.BlockSize - len(s)%aes.BlockSize
	return s + strings.Repeat(" ", padding)
}

// unPad strips the trailing whitespace padding.
func unPad(s string) string {
	return strings.TrimRight(s, " \t\n\r")
}

// Encrypt encrypts plainText with a key derived from password. Every call
// uses a fresh random salt and IV, so encrypting the same text twice yields
// different outputs.
func Encrypt(plainText, password string) (string, error) {
	salt := make([]byte, aes.BlockSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	key, err := deriveKey(password, salt)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	padded := []byte(pad(plainText))
	encrypted := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(encrypted, padded)

	return base64.StdEncoding.EncodeToString(encrypted) +
		base64.StdEncoding.EncodeToString(salt) +
		base64.StdEncoding.EncodeToString(iv), nil
}

// Decrypt reverses Encrypt. It fails on truncated input, undecodable
// segments or a ciphertext that is not block-aligned; a wrong password
// yields garbage rather than an error, as there is no authentication tag.
func Decrypt(encStr, password string) (string, error) {
	if len(encStr) <= 2*segmentLen {
		return "", errors.New("encrypted input is too short")
	}

	iv, err := base64.StdEncoding.DecodeString(encStr[len(encStr)-segmentLen:])
	if err != nil {
		return "", fmt.Errorf("failed to decode iv: %w", err)
	}
	salt, err := base64.StdEncoding.DecodeString(encStr[len(encStr)-2*segmentLen : len(encStr)-segmentLen])
	if err != nil {
		return "", fmt.Errorf("failed to decode salt: %w", err)
	}
	encrypted, err := base64.StdEncoding.DecodeString(encStr[:len(encStr)-2*segmentLen])
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(iv) != aes.BlockSize || len(salt) != aes.BlockSize {
		return "", errors.New("malformed salt or iv segment")
	}
	if len(encrypted) == 0 || len(encrypted)%aes.BlockSize != 0 {
		return "", errors.New("ciphertext is not block-aligned")
	}

	key, err := deriveKey(password, salt)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	decrypted := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(decrypted, encrypted)

	return unPad(string(decrypted)), nil
}
