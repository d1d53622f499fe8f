package main

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/rfq-engine/internal/adapters/blockchain"
	"github.com/hxuan190/rfq-engine/internal/adapters/persistence"
	"github.com/hxuan190/rfq-engine/internal/adapters/pubsub"
	"github.com/hxuan190/rfq-engine/internal/common"
	"github.com/hxuan190/rfq-engine/internal/config"
	"github.com/hxuan190/rfq-engine/internal/http"
	"github.com/hxuan190/rfq-engine/internal/rfq"
)

// @title RFQ Engine API
// @version 1.0
// @description Request-for-quote matching engine for intent based swaps settled on Sui.
// @description
// @description ## - Flow
// @description 1. A user posts a quote request to `POST /quotes`.
// @description 2. The quote is broadcast to every solver connected on `GET /ws`.
// @description 3. Solvers answer with signed offers during the collection window (3 s).
// @description 4. The response lists every valid offer and the best one.
// @description 5. The user signs the matching intent and posts it to `POST /quotes/offers/{offerId}/accept`, which settles both intents on chain.
// @description
// @description ## - Amounts
// @description Amounts are unsigned 256-bit integers encoded as decimal strings in base units.
// @description Byte fields (public keys, messages, signatures) are JSON arrays of integers 0-255.
// @description
// @description ## - Errors
// @description Every error body is `{"code": "...", "message": "..."}`.
// @BasePath /
// @schemes https http
// @tag.name quote
// @tag.description Request quotes and accept solver offers
// @tag.name solver
// @tag.description Solver websocket stream

func setupLogger(conf *config.GeneralConfig) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	level, err := zerolog.ParseLevel(strings.ToLower(conf.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if conf.Env == config.DevEnv {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func main() {
	// .env is optional; the environment wins
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Msg("failed to load env")
		return
	}

	general := &config.GeneralConfig{}
	if err := general.Load(); err != nil {
		log.Error().Err(err).Msg("invalid general config")
		return
	}
	setupLogger(general)

	common.InitRuntime()

	// di container config
	conf := container.NewConf(
		general,
		&config.RFQConfig{},
		&config.StoreConfig{},
		&config.SuiConfig{},
	)

	// di container
	dic, err := container.New(
		// config
		conf,

		// adapters
		&persistence.StorageService{},
		&pubsub.BusService{},
		&blockchain.SuiService{},

		// core
		&rfq.Service{},

		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	// blocks until SIGINT/SIGTERM
	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
