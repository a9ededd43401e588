package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/qr-decoder-go/internal/config"
	"github.com/anime-shed/qr-decoder-go/internal/decoder"
	"github.com/anime-shed/qr-decoder-go/internal/logger"
	"github.com/anime-shed/qr-decoder-go/internal/observer"
	"github.com/anime-shed/qr-decoder-go/internal/service"
	"github.com/anime-shed/qr-decoder-go/internal/storage"
	"github.com/anime-shed/qr-decoder-go/internal/strategy"
	"github.com/anime-shed/qr-decoder-go/internal/transport"
	"github.com/anime-shed/qr-decoder-go/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config  *config.Config
	pool    *decoder.WorkerPool
	metrics *observer.MetricsObserver
	service service.QRCodeService
	handler http.Handler
}

// NewContainer builds the dependency graph from cfg
func NewContainer(cfg *config.Config) (*Container, error) {
	scratch, err := storage.NewScratchDir(cfg.ScratchDir)
	if err != nil {
		return nil, err
	}

	httpFetcher := storage.NewHTTPFetcher(storage.HTTPFetcherOptions{
		Timeout:     cfg.ImageFetchTimeout,
		MaxBytes:    cfg.MaxImageSize,
		InsecureTLS: cfg.FetchInsecureTLS,
	})

	var azureFetcher *storage.AzureBlobFetcher
	if cfg.AzureEnabled() {
		azureFetcher, err = storage.NewAzureBlobFetcher(cfg.AzureStorageAccount, cfg.AzureStorageKey, cfg.MaxImageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to configure azure storage: %w", err)
		}
	}

	pool := decoder.NewWorkerPool(cfg.DecodeWorkers)
	pool.Start()

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	svc := service.NewQRCodeService(service.Dependencies{
		Validator: validation.NewURLValidatorWithOptions([]string{"http", "https"}, cfg.AllowedHosts),
		Fetcher:   storage.NewRoutingFetcher(httpFetcher, azureFetcher),
		Scratch:   scratch,
		Loader:    decoder.NewImagingLoader(),
		Decoder:   strategy.NewFallbackDecoder(decoder.NewZXingDecoder()),
		Pool:      pool,
		Events:    events,
	})

	return &Container{
		config:  cfg,
		pool:    pool,
		metrics: metrics,
		service: svc,
		handler: transport.NewHandler(svc, cfg, metrics, pool),
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Service returns the decode pipeline
func (c *Container) Service() service.QRCodeService {
	return c.service
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close stops the decode workers
func (c *Container) Close() {
	c.pool.Close()
}
