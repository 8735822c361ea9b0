// Package wallet generates custodial keypairs and guards their private keys
// with AES-256-GCM. The encryption secret is a single process-wide value:
// losing it makes every custodial wallet unrecoverable, leaking it hands an
// attacker every wallet. Treat it accordingly.
package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/scrypt"
)

const (
	keySize = 32 // AES-256
	ivSize  = 16 // matches the legacy storage encoding
	tagSize = 16
)

// ErrDecryptionFailed is returned when the authentication tag does not
// verify. Decryption fails closed: no partial plaintext is ever returned.
var ErrDecryptionFailed = errors.New("wallet decryption failed: authentication tag mismatch")

// scryptSalt is fixed so that the same passphrase always derives the same
// vault key. The salt's only job here is domain separation.
var scryptSalt = []byte("pat3on/wallet-vault/v1")

// Vault encrypts and decrypts custodial private keys.
type Vault struct {
	key []byte
}

// NewVault builds a vault from the process-wide encryption secret. A 64
// character hex string is used directly as the AES-256 key; anything else is
// treated as a passphrase and run through scrypt.
func NewVault(secret string) (*Vault, error) {
	if secret == "" {
		return nil, fmt.Errorf("wallet encryption secret is required")
	}
	if len(secret) == 2*keySize {
		if raw, err := hex.DecodeString(secret); err == nil {
			return &Vault{key: raw}, nil
		}
	}
	key, err := scrypt.Key([]byte(secret), scryptSalt, 1<<15, 8, 1, keySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive vault key: %w", err)
	}
	return &Vault{key: key}, nil
}

// GeneratedWallet is the result of creating a new custodial wallet.
// PrivateKey is returned exactly once, for one-time display to the owner,
// and must never be persisted.
type GeneratedWallet struct {
	Address      string
	PrivateKey   string
	EncryptedKey EncryptedKey
}

// Generate produces a fresh secp256k1 keypair and encrypts its private key.
func (v *Vault) Generate() (*GeneratedWallet, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}

	privateKey := hexutil.Encode(crypto.FromECDSA(key))
	encrypted, err := v.Encrypt(privateKey)
	if err != nil {
		return nil, err
	}

	return &GeneratedWallet{
		Address:      crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivateKey:   privateKey,
		EncryptedKey: encrypted,
	}, nil
}

// Encrypt encrypts a plaintext private key with a fresh random IV.
func (v *Vault) Encrypt(plaintext string) (EncryptedKey, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return EncryptedKey{}, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return EncryptedKey{}, fmt.Errorf("failed to initialize GCM: %w", err)
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return EncryptedKey{}, fmt.Errorf("failed to generate IV: %w", err)
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	boundary := len(sealed) - tagSize

	return EncryptedKey{
		Cipher:  hex.EncodeToString(sealed[:boundary]),
		IV:      hex.EncodeToString(iv),
		AuthTag: hex.EncodeToString(sealed[boundary:]),
	}, nil
}

// Decrypt recovers the plaintext private key. Returns ErrDecryptionFailed
// if the ciphertext or tag has been altered or the secret is wrong.
func (v *Vault) Decrypt(key EncryptedKey) (string, error) {
	if err := key.validate(); err != nil {
		return "", err
	}
	iv, _ := hex.DecodeString(key.IV)
	tag, _ := hex.DecodeString(key.AuthTag)
	ciphertext, _ := hex.DecodeString(key.Cipher)

	if len(iv) != ivSize {
		return "", fmt.Errorf("encrypted key has invalid IV length: expected %d bytes, got %d", ivSize, len(iv))
	}
	if len(tag) != tagSize {
		return "", fmt.Errorf("encrypted key has invalid tag length: expected %d bytes, got %d", tagSize, len(tag))
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("failed to initialize cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return "", fmt.Errorf("failed to initialize GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// DecryptStored normalizes a raw stored key (either encoding) and decrypts it.
func (v *Vault) DecryptStored(raw string) (string, error) {
	key, err := ParseEncryptedKey(raw)
	if err != nil {
		return "", err
	}
	return v.Decrypt(key)
}
