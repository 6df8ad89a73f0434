package converter

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/robalyx/igsheet/internal/classifier"
	"github.com/robalyx/igsheet/internal/export"
	"github.com/robalyx/igsheet/internal/export/types"
	"github.com/robalyx/igsheet/internal/export/xlsx"
	"go.uber.org/zap"
)

// ErrInvalidEncoding indicates the uploaded document is not valid UTF-8 text.
var ErrInvalidEncoding = errors.New("document is not valid UTF-8")

// Document is a rendered spreadsheet ready for delivery.
type Document struct {
	Kind    types.Kind
	Name    string
	Data    []byte
	Records int
}

// Service converts raw JSON documents into styled spreadsheets.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	logger *zap.Logger
	offset time.Duration
	now    func() time.Time
}

// New creates a new conversion service. Timestamps are taken from now shifted by
// offset; a nil now uses the wall clock.
func New(logger *zap.Logger, offset time.Duration, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{
		logger: logger.Named("converter"),
		offset: offset,
		now:    now,
	}
}

// Convert classifies raw and renders one document per non-empty group, phone first.
// A valid document with no records yields no documents and no error.
func (s *Service) Convert(ctx context.Context, raw []byte) ([]*Document, error) {
	logger := s.logger.With(zap.String("request_id", uuid.New().String()))

	if !utf8.Valid(raw) {
		return nil, ErrInvalidEncoding
	}

	result, err := classifier.Classify(raw)
	if err != nil {
		logger.Debug("Rejected document", zap.Error(err))
		return nil, err
	}

	logger.Info("Classified document",
		zap.String("size", humanize.Bytes(uint64(len(raw)))),
		zap.Int("phone_records", result.Phone.Len()),
		zap.Int("email_records", result.Email.Len()))

	if result.Empty() {
		return nil, nil
	}

	// Every document from one conversion shares a timestamp
	timestamp := export.Timestamp(s.now(), s.offset)

	groups := result.Groups()
	documents := make([]*Document, 0, len(groups))

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := xlsx.Render(group)
		if err != nil {
			logger.Error("Failed to render group", zap.Stringer("kind", group.Kind), zap.Error(err))
			return nil, fmt.Errorf("failed to render %s group: %w", group.Kind, err)
		}

		documents = append(documents, &Document{
			Kind:    group.Kind,
			Name:    export.FileName(group.Kind, timestamp),
			Data:    data,
			Records: group.Len(),
		})
	}

	return documents, nil
}
