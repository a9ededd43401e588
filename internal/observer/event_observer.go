package observer

import (
	"context"
	"sync"
	"time"

	"github.com/anime-shed/qr-decoder-go/internal/logger"

	"github.com/sirupsen/logrus"
)

// PipelineEvent describes one state transition of a decode request
type PipelineEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	RequestID      string                 `json:"request_id"`
	ImageURL       string                 `json:"image_url"`
	ProcessingTime time.Duration          `json:"processing_time"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the pipeline state being entered
type EventType string

const (
	// RequestRejected when the image reference fails validation
	RequestRejected EventType = "request_rejected"
	// FetchStarted when the download begins
	FetchStarted EventType = "fetch_started"
	// ImageFetched when the image is stored in its transient file
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when the download fails
	ImageFetchFailed EventType = "image_fetch_failed"
	// DecodeStarted when the image is handed to the decoder
	DecodeStarted EventType = "decode_started"
	// CodeDecoded when at least one code was decoded
	CodeDecoded EventType = "code_decoded"
	// CodeNotFound when the image holds no decodable code
	CodeNotFound EventType = "code_not_found"
	// DecodeFailed when loading or decoding the image fails
	DecodeFailed EventType = "decode_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event PipelineEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event PipelineEvent)
}

// LoggingObserver logs pipeline events
type LoggingObserver struct {
	logger *logrus.Logger
}

func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles pipeline events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"request_id": event.RequestID,
		"image_url":  event.ImageURL,
	}

	if event.ProcessingTime > 0 {
		fields["processing_time_ms"] = event.ProcessingTime.Milliseconds()
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case RequestRejected:
		entry.Warn("Image reference rejected")
	case FetchStarted:
		entry.Debug("Fetching image")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	case DecodeStarted:
		entry.Debug("Decoding image")
	case CodeDecoded:
		entry.Info("QR code decoded")
	case CodeNotFound:
		entry.Info("No QR code detected")
	case DecodeFailed:
		entry.Error("Image decode failed")
	default:
		entry.Info("Pipeline event occurred")
	}
}

func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// Metrics is a snapshot of MetricsObserver counters
type Metrics struct {
	Requests          int64         `json:"requests"`
	Rejected          int64         `json:"rejected"`
	Decoded           int64         `json:"decoded"`
	NotFound          int64         `json:"not_found"`
	FetchFailures     int64         `json:"fetch_failures"`
	DecodeFailures    int64         `json:"decode_failures"`
	AvgProcessingTime time.Duration `json:"avg_processing_time_ns"`
}

// MetricsObserver counts pipeline outcomes
type MetricsObserver struct {
	mu                  sync.RWMutex
	requests            int64
	rejected            int64
	decoded             int64
	notFound            int64
	fetchFailures       int64
	decodeFailures      int64
	completed           int64
	totalProcessingTime time.Duration
}

func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles pipeline events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case RequestRejected:
		o.requests++
		o.rejected++
	case FetchStarted:
		o.requests++
	case ImageFetchFailed:
		o.fetchFailures++
	case CodeDecoded:
		o.decoded++
		o.completed++
		o.totalProcessingTime += event.ProcessingTime
	case CodeNotFound:
		o.notFound++
		o.completed++
		o.totalProcessingTime += event.ProcessingTime
	case DecodeFailed:
		o.decodeFailures++
	}
}

func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Snapshot returns current metrics
func (o *MetricsObserver) Snapshot() Metrics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.completed > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.completed)
	}

	return Metrics{
		Requests:          o.requests,
		Rejected:          o.rejected,
		Decoded:           o.decoded,
		NotFound:          o.notFound,
		FetchFailures:     o.fetchFailures,
		DecodeFailures:    o.decodeFailures,
		AvgProcessingTime: avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers the event to every observer in order. A panicking
// observer is logged and skipped.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event PipelineEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		notify(ctx, observer, event)
	}
}

func notify(ctx context.Context, obs Observer, event PipelineEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logrus.Fields{
				"observer": obs.GetObserverName(),
				"panic":    r,
			}).Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
