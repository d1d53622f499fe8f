package blockchain

import (
	"context"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/rfq-engine/internal/config"
	"github.com/hxuan190/rfq-engine/internal/services"
)

const SUI_SERVICE = "sui-service"

// SuiService exposes the settlement client to the rest of the container.
type SuiService struct {
	container.BaseDIInstance

	logger *services.ServiceLogger
	client *SuiClient
}

func (svc *SuiService) ID() string {
	return SUI_SERVICE
}

func (svc *SuiService) Configure(c container.IContainer) error {
	svc.logger = services.NewServiceLogger(svc)
	conf := c.GetConfig(config.SUI_CONFIG_KEY).(*config.SuiConfig)

	signer, err := SignerFromBase58(conf.RelayerPrivateKey)
	if err != nil {
		return err
	}

	svc.client = NewSuiClient(jsonrpc.NewClient(conf.RPCUrl), signer, SuiClientConfig{
		PackageID:     conf.PackageID,
		Module:        conf.Module,
		StateObjectID: conf.StateObjectID,
		GasBudget:     conf.GasBudget,
	})
	svc.logger.Info().
		Str("rpc", conf.RPCUrl).
		Str("relayer", signer.Address()).
		Msg("[SuiService] settlement client configured")
	return nil
}

func (svc *SuiService) Start() error {
	return nil
}

func (svc *SuiService) Stop() error {
	return nil
}

func (svc *SuiService) Client() *SuiClient {
	return svc.client
}

func (svc *SuiService) ExecuteIntents(ctx context.Context, userIntent, solverIntent []byte) ([]byte, error) {
	return svc.client.ExecuteIntents(ctx, userIntent, solverIntent)
}
