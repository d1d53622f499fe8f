package blockchain

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/crypto/blake2b"
)

const (
	ed25519SchemeFlag = 0x00
)

// transactionIntent prefixes transaction bytes before hashing: scope
// TransactionData, version V0, app Sui.
var transactionIntent = []byte{0x00, 0x00, 0x00}

// Signer signs Sui transactions with an ed25519 relayer key.
type Signer struct {
	key solana.PrivateKey
}

func NewSigner(key solana.PrivateKey) *Signer {
	return &Signer{key: key}
}

// SignerFromBase58 parses a base58 encoded 64-byte ed25519 private key.
func SignerFromBase58(encoded string) (*Signer, error) {
	key, err := solana.PrivateKeyFromBase58(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid relayer key: %w", err)
	}
	if len(key) != 64 {
		return nil, fmt.Errorf("invalid relayer key: %d bytes", len(key))
	}
	return NewSigner(key), nil
}

func (s *Signer) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

// Address is the Sui address of the key: blake2b-256 over flag || public key.
func (s *Signer) Address() string {
	pk := s.key.PublicKey()
	sum := blake2b.Sum256(append([]byte{ed25519SchemeFlag}, pk[:]...))
	return "0x" + hex.EncodeToString(sum[:])
}

// SignTransaction returns the serialized signature Sui expects for txBytes,
// base64(flag || signature || public key).
func (s *Signer) SignTransaction(txBytes []byte) (string, error) {
	digest := blake2b.Sum256(append(append([]byte{}, transactionIntent...), txBytes...))
	sig, err := s.key.Sign(digest[:])
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	pk := s.key.PublicKey()
	serialized := make([]byte, 0, 1+len(sig)+len(pk))
	serialized = append(serialized, ed25519SchemeFlag)
	serialized = append(serialized, sig[:]...)
	serialized = append(serialized, pk[:]...)
	return base64.StdEncoding.EncodeToString(serialized), nil
}
