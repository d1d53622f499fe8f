package persistence

import (
	"context"
	"fmt"
	"time"

	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/rfq-engine/internal/config"
	"github.com/hxuan190/rfq-engine/internal/services"
)

const STORAGE_SERVICE = "storage-service"

// StorageService owns the quote store backend selected by StoreConfig.
type StorageService struct {
	container.BaseDIInstance

	logger *services.ServiceLogger
	conf   *config.StoreConfig
	store  *QuoteStore
}

func (svc *StorageService) ID() string {
	return STORAGE_SERVICE
}

func (svc *StorageService) Configure(c container.IContainer) error {
	svc.logger = services.NewServiceLogger(svc)
	svc.conf = c.GetConfig(config.STORE_CONFIG_KEY).(*config.StoreConfig)

	backend, err := OpenBackend(svc.conf)
	if err != nil {
		return err
	}
	svc.store = NewQuoteStore(backend)
	svc.logger.Info().Str("backend", svc.conf.Backend).Msg("[StorageService] quote store ready")
	return nil
}

func (svc *StorageService) Start() error {
	return nil
}

func (svc *StorageService) Stop() error {
	if svc.store == nil {
		return nil
	}
	if err := svc.store.Close(); err != nil {
		svc.logger.Error().Err(err).Msg("[StorageService] failed to close quote store")
		return err
	}
	return nil
}

func (svc *StorageService) Store() *QuoteStore {
	return svc.store
}

// OpenBackend builds the backend named by conf.
func OpenBackend(conf *config.StoreConfig) (Backend, error) {
	switch conf.Backend {
	case config.StoreBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := DialRedis(ctx, conf.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return NewRedisBackend(client), nil
	case config.StoreBackendMemory:
		return NewMemoryBackend(WithReapInterval(conf.ReapInterval)), nil
	case config.StoreBackendBolt:
		return NewBoltBackend(conf.BoltPath, conf.ReapInterval)
	default:
		return nil, fmt.Errorf("unknown store backend %q", conf.Backend)
	}
}
