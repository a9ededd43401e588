package service

import (
	"context"
	"time"

	"github.com/anime-shed/qr-decoder-go/internal/decoder"
	apperrors "github.com/anime-shed/qr-decoder-go/internal/errors"
	"github.com/anime-shed/qr-decoder-go/internal/observer"
	"github.com/anime-shed/qr-decoder-go/internal/storage"
	"github.com/anime-shed/qr-decoder-go/pkg/models"
	"github.com/anime-shed/qr-decoder-go/pkg/validation"

	"github.com/google/uuid"
)

// QRCodeService runs the download and decode pipeline for one image reference
type QRCodeService interface {
	// Process validates, fetches and decodes the referenced image. A result
	// without texts is a valid outcome, not an error. Errors are *AppError
	// values of type validation, fetch, decode or internal.
	Process(ctx context.Context, req models.DecodeRequest) (*models.DecodeResult, error)
}

// Dependencies wires the collaborators of the pipeline. Pool and Events are optional.
type Dependencies struct {
	Validator *validation.URLValidator
	Fetcher   storage.Fetcher
	Scratch   *storage.ScratchDir
	Loader    decoder.Loader
	Decoder   decoder.Decoder
	Pool      *decoder.WorkerPool
	Events    observer.Subject
}

type qrCodeService struct {
	validator *validation.URLValidator
	fetcher   storage.Fetcher
	scratch   *storage.ScratchDir
	loader    decoder.Loader
	decoder   decoder.Decoder
	pool      *decoder.WorkerPool
	events    observer.Subject
}

// NewQRCodeService creates a new QR code service
func NewQRCodeService(deps Dependencies) QRCodeService {
	if deps.Validator == nil {
		deps.Validator = validation.NewURLValidator()
	}
	return &qrCodeService{
		validator: deps.Validator,
		fetcher:   deps.Fetcher,
		scratch:   deps.Scratch,
		loader:    deps.Loader,
		decoder:   deps.Decoder,
		pool:      deps.Pool,
		events:    deps.Events,
	}
}

func (s *qrCodeService) Process(ctx context.Context, req models.DecodeRequest) (*models.DecodeResult, error) {
	start := time.Now()
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	ref, err := s.validator.ParseImageURL(req.ImageURL)
	if err != nil {
		s.publish(ctx, req, observer.RequestRejected, start, err, nil)
		return nil, err
	}

	// The transient file exists from here on; every return below releases it.
	file, err := s.scratch.Acquire(req.RequestID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to prepare the image", err)
	}
	defer file.Release()

	s.publish(ctx, req, observer.FetchStarted, start, nil, nil)
	n, err := s.fetcher.Fetch(ctx, ref, file)
	if err == nil {
		err = file.Close()
	}
	if err != nil {
		s.publish(ctx, req, observer.ImageFetchFailed, start, err, nil)
		return nil, apperrors.NewFetchError("Failed to download the image", err)
	}
	s.publish(ctx, req, observer.ImageFetched, start, nil, map[string]interface{}{"bytes": n})

	s.publish(ctx, req, observer.DecodeStarted, start, nil, nil)
	texts, err := s.decode(ctx, file.Name())
	if err != nil {
		s.publish(ctx, req, observer.DecodeFailed, start, err, nil)
		return nil, apperrors.NewDecodeError("Error processing the image", err)
	}

	result := &models.DecodeResult{
		ImageURL:       ref.String(),
		Texts:          texts,
		BytesFetched:   n,
		ProcessingTime: time.Since(start),
	}

	if !result.Found() {
		s.publish(ctx, req, observer.CodeNotFound, start, nil, nil)
		return result, nil
	}

	if req.ExpectedText != "" {
		result.Comparison = CompareText(req.ExpectedText, result.FirstText())
	}
	s.publish(ctx, req, observer.CodeDecoded, start, nil, map[string]interface{}{"codes": len(texts)})
	return result, nil
}

// decode loads the transient file and runs the decoder, on the worker pool
// when one is configured.
func (s *qrCodeService) decode(ctx context.Context, path string) ([]string, error) {
	var texts []string
	run := func() error {
		img, err := s.loader.Load(path)
		if err != nil {
			return err
		}
		texts, err = s.decoder.DetectAndDecode(img)
		return err
	}

	var err error
	if s.pool != nil {
		err = s.pool.Do(ctx, run)
	} else {
		err = run()
	}
	if err != nil {
		return nil, err
	}
	if texts == nil {
		texts = []string{}
	}
	return texts, nil
}

func (s *qrCodeService) publish(ctx context.Context, req models.DecodeRequest, eventType observer.EventType, start time.Time, err error, metadata map[string]interface{}) {
	if s.events == nil {
		return
	}
	event := observer.PipelineEvent{
		EventType:      eventType,
		RequestID:      req.RequestID,
		ImageURL:       req.ImageURL,
		ProcessingTime: time.Since(start),
		Metadata:       metadata,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	s.events.NotifyObservers(ctx, event)
}
