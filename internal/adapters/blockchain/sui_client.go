package blockchain

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/rfq-engine/internal/codec"
)

const (
	executeIntentsFunction = "execute_intents"
	// SuiClockObjectID is the shared clock object passed to execute_intents.
	SuiClockObjectID = "0x6"

	statusSuccess = "success"
)

var ErrExecuteIntentsFailed = errors.New("execute_intents transaction failed")

type SuiClientConfig struct {
	PackageID     string
	Module        string
	StateObjectID string
	GasBudget     uint64
}

// SuiClient builds, signs and executes execute_intents transactions over Sui
// JSON-RPC.
type SuiClient struct {
	rpc    jsonrpc.RPCClient
	signer *Signer
	conf   SuiClientConfig
}

func NewSuiClient(rpcClient jsonrpc.RPCClient, signer *Signer, conf SuiClientConfig) *SuiClient {
	return &SuiClient{rpc: rpcClient, signer: signer, conf: conf}
}

type moveCallResult struct {
	TxBytes string `json:"txBytes"`
}

type executionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type transactionEffects struct {
	Status executionStatus `json:"status"`
}

type executeResult struct {
	Digest  string              `json:"digest"`
	Effects *transactionEffects `json:"effects"`
}

// ExecuteIntents submits one execute_intents call carrying both encoded signed
// intents and returns the 32-byte transaction digest. It is never retried.
func (c *SuiClient) ExecuteIntents(ctx context.Context, userIntent, solverIntent []byte) ([]byte, error) {
	txBytes, err := c.buildMoveCall(ctx, userIntent, solverIntent)
	if err != nil {
		return nil, fmt.Errorf("%w: build: %v", ErrExecuteIntentsFailed, err)
	}

	raw, err := base64.StdEncoding.DecodeString(txBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tx bytes: %v", ErrExecuteIntentsFailed, err)
	}
	sig, err := c.signer.SignTransaction(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecuteIntentsFailed, err)
	}

	var res executeResult
	err = c.rpc.CallForInto(ctx, &res, "sui_executeTransactionBlock", []interface{}{
		txBytes,
		[]string{sig},
		map[string]bool{"showEffects": true},
		"WaitForLocalExecution",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: execute: %v", ErrExecuteIntentsFailed, err)
	}
	if res.Effects == nil || res.Effects.Status.Status != statusSuccess {
		reason := "missing effects"
		if res.Effects != nil {
			reason = res.Effects.Status.Error
		}
		log.Warn().Str("digest", res.Digest).Str("reason", reason).Msg("[SuiClient] execute_intents failed on chain")
		return nil, fmt.Errorf("%w: %s", ErrExecuteIntentsFailed, reason)
	}

	digest, err := solana.HashFromBase58(res.Digest)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid digest %q: %v", ErrExecuteIntentsFailed, res.Digest, err)
	}
	log.Info().Str("digest", res.Digest).Msg("[SuiClient] execute_intents succeeded")
	return digest[:], nil
}

func (c *SuiClient) buildMoveCall(ctx context.Context, userIntent, solverIntent []byte) (string, error) {
	var res moveCallResult
	err := c.rpc.CallForInto(ctx, &res, "unsafe_moveCall", []interface{}{
		c.signer.Address(),
		c.conf.PackageID,
		c.conf.Module,
		executeIntentsFunction,
		[]string{},
		[]interface{}{
			c.conf.StateObjectID,
			codec.ByteArray(userIntent),
			codec.ByteArray(solverIntent),
			SuiClockObjectID,
		},
		nil,
		strconv.FormatUint(c.conf.GasBudget, 10),
	})
	if err != nil {
		return "", err
	}
	if res.TxBytes == "" {
		return "", errors.New("empty tx bytes")
	}
	return res.TxBytes, nil
}
