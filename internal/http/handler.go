package http

import (
	"context"
	"errors"
	gohttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/rfq-engine/internal/config"
	"github.com/hxuan190/rfq-engine/internal/http/httputil"
	"github.com/hxuan190/rfq-engine/internal/http/middlewares"
	"github.com/hxuan190/rfq-engine/internal/rfq"
	"github.com/hxuan190/rfq-engine/internal/services"
)

const HTTP_SERVICE = "http-service"

type HTTPService struct {
	container.BaseDIInstance
	logger *services.ServiceLogger

	rfqSvc *rfq.Service
	server *gohttp.Server
	conf   *config.GeneralConfig

	// sessions bounds every solver websocket
	sessions context.Context
	cancel   context.CancelFunc

	handlers []httputil.IHttpHandler
}

func (svc *HTTPService) ID() string {
	return HTTP_SERVICE
}

// NewRouter builds the engine with the shared middleware stack and mounts
// handlers at the root.
func NewRouter(handlers ...httputil.IHttpHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		httputil.InternalError(c)
	}))

	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	r.Use(cors.New(corsConf))

	r.Use(middlewares.MetricsMiddleware())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(gohttp.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	for _, h := range handlers {
		h.SetRoutes(r.Group(h.Root()))
	}
	return r
}

func (svc *HTTPService) Start() error {
	if svc.conf.Env != config.DevEnv {
		gin.SetMode(gin.ReleaseMode)
	}

	svc.server = &gohttp.Server{
		Addr:              svc.conf.HTTPHost + ":" + svc.conf.HTTPPort,
		Handler:           NewRouter(svc.handlers...),
		ReadHeaderTimeout: 10 * time.Second,
	}
	svc.logger.Info().Str("host", svc.conf.HTTPHost).Str("port", svc.conf.HTTPPort).Msg("http server started")

	if err := svc.server.ListenAndServe(); err != nil && !errors.Is(err, gohttp.ErrServerClosed) {
		return err
	}

	return nil
}

func (svc *HTTPService) Configure(c container.IContainer) error {
	svc.logger = services.NewServiceLogger(svc)
	svc.conf = c.GetConfig(config.GENERAL_CONFIG_KEY).(*config.GeneralConfig)
	if svc.conf == nil {
		return errors.New("invalid server config")
	}
	rfqConf := c.GetConfig(config.RFQ_CONFIG_KEY).(*config.RFQConfig)

	svc.rfqSvc = c.Instance(rfq.RFQ_SERVICE).(*rfq.Service)
	svc.sessions, svc.cancel = context.WithCancel(context.Background())

	svc.handlers = []httputil.IHttpHandler{
		NewQuoteHandler(svc.rfqSvc.Gateway(), svc.rfqSvc.Settlement(),
			middlewares.NewRateLimiter(rfqConf.RateLimit, rfqConf.RateBurst)),
		NewWSHandler(svc.sessions, svc.rfqSvc.Intake()),
	}
	return nil
}

func (svc *HTTPService) Stop() error {
	// hijacked websockets are not tracked by Shutdown
	svc.cancel()

	if svc.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := svc.server.Shutdown(ctx); err != nil {
		svc.logger.Error().Err(err).Msg("failed to stop http server")
		return err
	}
	svc.logger.Info().Msg("http server stopped gracefully")
	return nil
}
