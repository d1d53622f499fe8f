package pubsub

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/rfq-engine/internal/config"
	"github.com/hxuan190/rfq-engine/internal/services"
)

const BUS_SERVICE = "bus-service"

// BusService owns the broadcast bus. Redis is used when the store is Redis;
// the in-process bus serves the single-node backends.
type BusService struct {
	container.BaseDIInstance

	logger *services.ServiceLogger
	bus    Bus
}

func (svc *BusService) ID() string {
	return BUS_SERVICE
}

func (svc *BusService) Configure(c container.IContainer) error {
	svc.logger = services.NewServiceLogger(svc)
	conf := c.GetConfig(config.STORE_CONFIG_KEY).(*config.StoreConfig)

	if conf.Backend != config.StoreBackendRedis {
		svc.bus = NewMemoryBus(DefaultSubscriberBuffer)
		svc.logger.Info().Msg("[BusService] using in-process bus")
		return nil
	}

	opts, err := redis.ParseURL(conf.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	svc.bus = NewRedisBus(client)
	svc.logger.Info().Msg("[BusService] using redis bus")
	return nil
}

func (svc *BusService) Start() error {
	return nil
}

func (svc *BusService) Stop() error {
	if svc.bus == nil {
		return nil
	}
	return svc.bus.Close()
}

func (svc *BusService) Bus() Bus {
	return svc.bus
}
