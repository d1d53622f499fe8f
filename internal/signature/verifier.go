// Package signature verifies signed intents under the closed set of
// supported signature schemes.
package signature

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type Algorithm uint8

const (
	AlgorithmEd25519 Algorithm = 1
)

var ErrUnsupportedAlgorithm = errors.New("unsupported signature algorithm")

func (a Algorithm) String() string {
	switch a {
	case AlgorithmEd25519:
		return "ed25519"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

// ParseAlgorithm maps the wire tag of an intent payload to an Algorithm.
func ParseAlgorithm(tag uint8) (Algorithm, error) {
	switch Algorithm(tag) {
	case AlgorithmEd25519:
		return AlgorithmEd25519, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, tag)
	}
}

// Verify checks sig over msg for the public key pk. A signature that does not
// verify, or a key or signature of the wrong size, returns false with a nil
// error. Only an unsupported algorithm returns an error.
func Verify(alg Algorithm, pk, msg, sig []byte) (bool, error) {
	switch alg {
	case AlgorithmEd25519:
		return verifyEd25519(pk, msg, sig), nil
	default:
		return false, fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, uint8(alg))
	}
}

func verifyEd25519(pk, msg, sig []byte) bool {
	if len(pk) != solana.PublicKeyLength || len(sig) != solana.SignatureLength {
		return false
	}
	return solana.SignatureFromBytes(sig).Verify(solana.PublicKeyFromBytes(pk), msg)
}
