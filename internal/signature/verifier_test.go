package signature

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, msg []byte) (solana.PrivateKey, []byte) {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	sig, err := key.Sign(msg)
	require.NoError(t, err)
	return key, sig[:]
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm(1)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmEd25519, alg)
	assert.Equal(t, "ed25519", alg.String())

	for _, tag := range []uint8{0, 2, 255} {
		_, err := ParseAlgorithm(tag)
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	}
}

func TestVerifyEd25519(t *testing.T) {
	msg := []byte("intent payload")
	key, sig := signed(t, msg)
	pk := key.PublicKey().Bytes()

	ok, err := Verify(AlgorithmEd25519, pk, msg, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	// deterministic
	for i := 0; i < 3; i++ {
		again, err := Verify(AlgorithmEd25519, pk, msg, sig)
		require.NoError(t, err)
		assert.True(t, again)
	}
}

func TestVerifySingleBitFlip(t *testing.T) {
	msg := []byte{0x01, 0x02, 0x03, 0x04}
	key, sig := signed(t, msg)
	pk := key.PublicKey().Bytes()

	flip := func(b []byte, i int) []byte {
		out := append([]byte{}, b...)
		out[i/8] ^= 1 << (i % 8)
		return out
	}

	tests := []struct {
		name string
		pk   []byte
		msg  []byte
		sig  []byte
	}{
		{"message bit", pk, flip(msg, 3), sig},
		{"signature bit", pk, msg, flip(sig, 100)},
		{"public key bit", flip(pk, 7), msg, sig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Verify(AlgorithmEd25519, tt.pk, tt.msg, tt.sig)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestVerifyWrongLengths(t *testing.T) {
	msg := []byte("m")
	key, sig := signed(t, msg)
	pk := key.PublicKey().Bytes()

	tests := []struct {
		name string
		pk   []byte
		sig  []byte
	}{
		{"short key", pk[:31], sig},
		{"long key", append(append([]byte{}, pk...), 0), sig},
		{"short signature", pk, sig[:63]},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Verify(AlgorithmEd25519, tt.pk, msg, tt.sig)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestVerifyUnsupportedAlgorithm(t *testing.T) {
	ok, err := Verify(Algorithm(9), nil, nil, nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}
