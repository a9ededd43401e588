package observer

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type panickingObserver struct{}

func (panickingObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	panic("observer bug")
}

func (panickingObserver) GetObserverName() string { return "panicking" }

func TestMetricsObserver_Counts(t *testing.T) {
	metrics := NewMetricsObserver()
	publisher := NewEventPublisher()
	publisher.Subscribe(metrics)

	ctx := context.Background()
	events := []PipelineEvent{
		{EventType: RequestRejected},
		{EventType: FetchStarted},
		{EventType: ImageFetched},
		{EventType: DecodeStarted},
		{EventType: CodeDecoded, ProcessingTime: 300 * time.Millisecond},
		{EventType: FetchStarted},
		{EventType: CodeNotFound, ProcessingTime: 100 * time.Millisecond},
		{EventType: FetchStarted},
		{EventType: ImageFetchFailed},
		{EventType: FetchStarted},
		{EventType: DecodeFailed},
	}
	for _, e := range events {
		publisher.NotifyObservers(ctx, e)
	}

	snap := metrics.Snapshot()
	assert.Equal(t, int64(5), snap.Requests)
	assert.Equal(t, int64(1), snap.Rejected)
	assert.Equal(t, int64(1), snap.Decoded)
	assert.Equal(t, int64(1), snap.NotFound)
	assert.Equal(t, int64(1), snap.FetchFailures)
	assert.Equal(t, int64(1), snap.DecodeFailures)
	assert.Equal(t, 200*time.Millisecond, snap.AvgProcessingTime)
}

func TestEventPublisher_SurvivesPanickingObserver(t *testing.T) {
	metrics := NewMetricsObserver()
	publisher := NewEventPublisher()
	publisher.Subscribe(panickingObserver{})
	publisher.Subscribe(metrics)

	assert.NotPanics(t, func() {
		publisher.NotifyObservers(context.Background(), PipelineEvent{EventType: FetchStarted})
	})
	assert.Equal(t, int64(1), metrics.Snapshot().Requests)
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	metrics := NewMetricsObserver()
	publisher := NewEventPublisher()
	publisher.Subscribe(metrics)
	publisher.Unsubscribe(metrics)

	publisher.NotifyObservers(context.Background(), PipelineEvent{EventType: FetchStarted})
	assert.Equal(t, int64(0), metrics.Snapshot().Requests)
}

func TestLoggingObserver_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)

	obs := NewLoggingObserver(log)
	obs.OnEvent(context.Background(), PipelineEvent{
		EventType:    ImageFetchFailed,
		RequestID:    "req-1",
		ImageURL:     "https://example.com/qr.png",
		ErrorMessage: "404 Not Found",
		Metadata:     map[string]interface{}{"bytes": 0},
	})

	out := buf.String()
	for _, want := range []string{`"request_id":"req-1"`, `"error":"404 Not Found"`, `"level":"error"`, "Image fetch failed"} {
		assert.True(t, strings.Contains(out, want), "expected %s in %s", want, out)
	}
}
