package wallet

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// EncryptedKey is the canonical at-rest form of an encrypted private key.
// The JSON field names match what is stored in the database, so marshalling
// an EncryptedKey yields exactly the structured storage encoding.
type EncryptedKey struct {
	// Cipher is the hex-encoded ciphertext, without the authentication tag.
	Cipher string `json:"encrypted"`
	// IV is the hex-encoded initialization vector, fresh per encryption.
	IV string `json:"iv"`
	// AuthTag is the hex-encoded GCM authentication tag.
	AuthTag string `json:"authTag"`
}

// ParseEncryptedKey normalizes the two storage encodings of an encrypted
// private key into the canonical form. Legacy rows hold a colon-delimited
// "iv:authTag:cipher" string, newer rows a JSON object. Business logic never
// sees the raw encodings; this is the single place the shapes are handled.
func ParseEncryptedKey(raw string) (EncryptedKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return EncryptedKey{}, fmt.Errorf("encrypted key is empty")
	}

	var key EncryptedKey
	if strings.HasPrefix(raw, "{") {
		if err := json.Unmarshal([]byte(raw), &key); err != nil {
			return EncryptedKey{}, fmt.Errorf("invalid structured encrypted key: %w", err)
		}
	} else {
		parts := strings.Split(raw, ":")
		if len(parts) != 3 {
			return EncryptedKey{}, fmt.Errorf("invalid encrypted key format: expected iv:authTag:cipher, got %d segments", len(parts))
		}
		key = EncryptedKey{IV: parts[0], AuthTag: parts[1], Cipher: parts[2]}
	}

	if err := key.validate(); err != nil {
		return EncryptedKey{}, err
	}
	return key, nil
}

// String returns the structured storage encoding.
func (k EncryptedKey) String() string {
	data, _ := json.Marshal(k)
	return string(data)
}

func (k EncryptedKey) validate() error {
	for _, field := range []struct {
		name, value string
	}{
		{"iv", k.IV},
		{"authTag", k.AuthTag},
		{"cipher", k.Cipher},
	} {
		if field.value == "" {
			return fmt.Errorf("encrypted key is missing %s", field.name)
		}
		if _, err := hex.DecodeString(field.value); err != nil {
			return fmt.Errorf("encrypted key has invalid hex in %s: %w", field.name, err)
		}
	}
	return nil
}
