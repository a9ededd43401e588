package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/anime-shed/qr-decoder-go/internal/logger"

	"github.com/sirupsen/logrus"
)

// ScratchDir hands out uniquely named transient files inside one directory.
type ScratchDir struct {
	path string
}

func NewScratchDir(path string) (*ScratchDir, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("failed to prepare scratch directory %s: %w", path, err)
	}
	return &ScratchDir{path: path}, nil
}

func (d *ScratchDir) Path() string {
	return d.path
}

// Acquire creates a new transient file owned by the caller, who must Release it.
func (d *ScratchDir) Acquire(requestID string) (*TransientFile, error) {
	f, err := os.CreateTemp(d.path, "qr-"+sanitizeID(requestID)+"-*.img")
	if err != nil {
		return nil, fmt.Errorf("failed to create transient file: %w", err)
	}
	return &TransientFile{File: f, requestID: requestID}, nil
}

// TransientFile is a downloaded image that lives for one request.
type TransientFile struct {
	*os.File
	requestID string
	released  bool
}

// Release closes and deletes the file. Failures are logged, never returned,
// so they cannot mask the outcome of the request. Safe to call more than once.
func (t *TransientFile) Release() {
	if t == nil || t.released {
		return
	}
	t.released = true

	fields := logrus.Fields{
		"request_id": t.requestID,
		"path":       t.Name(),
	}

	if err := t.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		logger.WithError(err).WithFields(fields).Warn("Failed to close transient file")
	}

	if err := os.Remove(t.Name()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.WithFields(fields).Debug("Transient file already removed")
			return
		}
		logger.WithError(err).WithFields(fields).Warn("Failed to remove transient file")
		return
	}
	logger.WithFields(fields).Debug("Transient file removed")
}

// sanitizeID keeps the request id usable inside a file name.
func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
		if b.Len() >= 64 {
			break
		}
	}
	if b.Len() == 0 {
		return "req"
	}
	return b.String()
}
