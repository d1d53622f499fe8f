package rfq

import (
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/rfq-engine/internal/adapters/blockchain"
	"github.com/hxuan190/rfq-engine/internal/adapters/persistence"
	"github.com/hxuan190/rfq-engine/internal/adapters/pubsub"
	"github.com/hxuan190/rfq-engine/internal/config"
	"github.com/hxuan190/rfq-engine/internal/services"
)

const RFQ_SERVICE = "rfq-service"

// Service wires the gateway, intake and settlement onto the shared adapters.
type Service struct {
	container.BaseDIInstance
	logger *services.ServiceLogger

	gateway    *Gateway
	intake     *Intake
	settlement *Settlement

	config *config.RFQConfig
}

func (svc *Service) ID() string {
	return RFQ_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = services.NewServiceLogger(svc)
	svc.config = c.GetConfig(config.RFQ_CONFIG_KEY).(*config.RFQConfig)

	store := c.Instance(persistence.STORAGE_SERVICE).(*persistence.StorageService).Store()
	bus := c.Instance(pubsub.BUS_SERVICE).(*pubsub.BusService).Bus()
	sui := c.Instance(blockchain.SUI_SERVICE).(*blockchain.SuiService)

	svc.gateway = NewGateway(store, bus, GatewayConfig{
		CollectionWindow: svc.config.CollectionWindow,
		QuoteTTL:         svc.config.QuoteTTL,
		Assets:           svc.config.Assets,
	})
	svc.intake = NewIntake(store, bus, svc.config.QuoteTTL)
	svc.settlement = NewSettlement(store, sui)
	return nil
}

func (svc *Service) Start() error {
	svc.logger.Info().
		Dur("window", svc.config.CollectionWindow).
		Dur("quoteTTL", svc.config.QuoteTTL).
		Int("assets", len(svc.config.Assets)).
		Msg("[rfqService] ready")
	return nil
}

func (svc *Service) Stop() error {
	return nil
}

func (svc *Service) Gateway() *Gateway {
	return svc.gateway
}

func (svc *Service) Intake() *Intake {
	return svc.intake
}

func (svc *Service) Settlement() *Settlement {
	return svc.settlement
}
