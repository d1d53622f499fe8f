package services

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

type namedService string

func (n namedService) ID() string { return string(n) }

func TestServiceLoggerTagsService(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	NewServiceLogger(namedService("storage-service")).Info().Msg("[storage] ready")
	assert.JSONEq(t, `{"level":"info","service":"storage-service","message":"[storage] ready"}`, buf.String())
}
