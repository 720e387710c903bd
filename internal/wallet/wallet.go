// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ErrInvalidSecret is returned when a secret cannot be parsed into an ed25519 keypair.
var ErrInvalidSecret = errors.New("invalid wallet secret")

// Wallet holds the platform signing key. The private key is never exported,
// logged or serialized; String and MarshalJSON expose only the public key.
type Wallet struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// NewWallet creates a wallet from a base58 private key or a JSON byte array
// in the solana-keygen format ("[12,34,...]").
func NewWallet(secret string) (*Wallet, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSecret)
	}

	var (
		raw []byte
		err error
	)
	if strings.HasPrefix(secret, "[") {
		raw, err = decodeByteArray(secret)
	} else {
		raw, err = base58.Decode(secret)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return fromBytes(raw)
}

// LoadFromFile reads a solana-keygen keypair file.
func LoadFromFile(path string) (*Wallet, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair file: %w", err)
	}
	return fromBytes(key)
}

func decodeByteArray(secret string) ([]byte, error) {
	var ints []int
	if err := json.Unmarshal([]byte(secret), &ints); err != nil {
		return nil, err
	}
	raw := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("byte %d out of range: %d", i, v)
		}
		raw[i] = byte(v)
	}
	return raw, nil
}

func fromBytes(raw []byte) (*Wallet, error) {
	if len(raw) != 64 {
		return nil, fmt.Errorf("%w: expected 64 bytes, got %d", ErrInvalidSecret, len(raw))
	}
	// the second half of a keypair must be the public key of the seed
	derived := ed25519.NewKeyFromSeed(raw[:32])
	if !bytes.Equal(derived[32:], raw[32:]) {
		return nil, fmt.Errorf("%w: public half does not match seed", ErrInvalidSecret)
	}
	privateKey := solana.PrivateKey(raw)
	return &Wallet{
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

// PublicKey returns the wallet address.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.publicKey
}

// SignTransaction signs tx with the wallet key for every signer slot it owns.
func (w *Wallet) SignTransaction(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.publicKey) {
			return &w.privateKey
		}
		return nil
	})
	return err
}

// String returns the wallet's public key.
func (w *Wallet) String() string {
	return w.publicKey.String()
}

// MarshalJSON serializes only the public key.
func (w *Wallet) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.publicKey.String())
}
